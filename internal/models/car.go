package models

import (
	"time"

	"gorm.io/gorm"
)

// Car is a reviewable vehicle. The (brand, model, year) triple is unique.
type Car struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Brand string `gorm:"not null;uniqueIndex:idx_brand_model_year" json:"brand"`
	Model string `gorm:"not null;uniqueIndex:idx_brand_model_year" json:"model"`
	Year  int    `gorm:"not null;uniqueIndex:idx_brand_model_year" json:"year"`

	// AverageRating is not persisted; computed at query time.
	// Nil when the car has no reviews (distinct from a zero score).
	AverageRating *float64 `gorm:"->;-:migration" json:"average_rating"`
	// Image is the representative photo URL (exterior first); computed.
	Image *string `gorm:"-" json:"image"`

	Images  []CarImage `gorm:"foreignKey:CarID" json:"images,omitempty"`
	Reviews []Review   `gorm:"foreignKey:CarID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RepresentativeImage returns the exterior photo URL if present,
// otherwise the first photo, otherwise nil.
func (c *Car) RepresentativeImage() *string {
	if len(c.Images) == 0 {
		return nil
	}
	for i := range c.Images {
		if c.Images[i].Category == ImageCategoryExterior {
			return &c.Images[i].Photo
		}
	}
	return &c.Images[0].Photo
}
