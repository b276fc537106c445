package models

import "time"

// ReviewLike marks that a user likes a review.
// The (UserID, ReviewID) pair is unique: set semantics, not a counter.
// Rows are hard-deleted on unlike so the unique index keeps toggles idempotent.
type ReviewLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_review" json:"user_id"`
	ReviewID  uint      `gorm:"not null;uniqueIndex:idx_user_review" json:"review_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Review Review `gorm:"foreignKey:ReviewID" json:"-"`
}
