package models

// Page is the list-response envelope: total row count plus links to the
// adjacent pages (nil when there is no next/previous page).
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}
