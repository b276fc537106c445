package repository

import (
	"context"
	"errors"

	"speedgarage/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository defines the interface for car image data operations
type ImageRepository interface {
	Upsert(ctx context.Context, image *models.CarImage) error
	GetByID(ctx context.Context, id uint) (*models.CarImage, error)
	GetByCarAndCategory(ctx context.Context, carID uint, category string) (*models.CarImage, error)
	ListByCar(ctx context.Context, carID uint) ([]*models.CarImage, error)
	Delete(ctx context.Context, id uint) error
}

// imageRepository implements ImageRepository
type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new car image repository
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Upsert keeps the at-most-one-image-per-(car, category) invariant: a second
// upload for the same slot replaces the photo instead of failing the index.
func (r *imageRepository) Upsert(ctx context.Context, image *models.CarImage) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "car_id"}, {Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{"photo", "updated_at"}),
		}).
		Create(image).Error
}

func (r *imageRepository) GetByID(ctx context.Context, id uint) (*models.CarImage, error) {
	var image models.CarImage
	err := r.db.WithContext(ctx).First(&image, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// GetByCarAndCategory fetches a single slot; the unique index on
// (car_id, category) guarantees at most one row.
func (r *imageRepository) GetByCarAndCategory(ctx context.Context, carID uint, category string) (*models.CarImage, error) {
	var image models.CarImage
	err := r.db.WithContext(ctx).
		Where("car_id = ? AND category = ?", carID, category).
		First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) ListByCar(ctx context.Context, carID uint) ([]*models.CarImage, error) {
	var images []*models.CarImage
	err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("category").
		Find(&images).Error
	return images, err
}

func (r *imageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CarImage{}, id).Error
}
