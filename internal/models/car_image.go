package models

import "time"

// Image categories. A car holds at most one image per category.
const (
	ImageCategoryExterior = "exterior"
	ImageCategoryInterior = "interior"
	ImageCategoryEngine   = "engine"
)

// CarImage is a categorized photo attached to a car. The photo itself is an
// opaque URL; storage is handled elsewhere.
type CarImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CarID     uint      `gorm:"not null;uniqueIndex:idx_car_category" json:"car_id"`
	Category  string    `gorm:"not null;uniqueIndex:idx_car_category" json:"category"`
	Photo     string    `gorm:"not null" json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidImageCategory reports whether category is one of the known categories.
func ValidImageCategory(category string) bool {
	switch category {
	case ImageCategoryExterior, ImageCategoryInterior, ImageCategoryEngine:
		return true
	}
	return false
}
