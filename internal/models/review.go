package models

import (
	"time"

	"gorm.io/gorm"
)

// Review rating bounds and text limit, validated before persistence.
const (
	MinRating        = 1
	MaxRating        = 5
	MaxReviewTextLen = 2000
)

// Review is a user's rating of a car. The author is always the identity that
// created it; only the author may edit or delete it.
type Review struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	CarID    uint   `gorm:"not null;index" json:"car_id"`
	Car      Car    `gorm:"foreignKey:CarID" json:"car"`
	Rating   int    `gorm:"not null" json:"rating"`
	Text     string `gorm:"type:text" json:"text"`

	// TotalLikes is not persisted; computed at query time.
	TotalLikes int64 `gorm:"->;-:migration" json:"total_likes"`
	// LikedByMe indicates whether the requesting user liked this review
	// (computed; always false for anonymous readers).
	LikedByMe bool `gorm:"->;-:migration" json:"liked_by_me"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidRating reports whether rating is within [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
