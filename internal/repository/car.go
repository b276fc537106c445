package repository

import (
	"context"
	"errors"
	"strings"

	"speedgarage/internal/cache"
	"speedgarage/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListCarsQuery carries filtering, ordering and pagination for car listings.
type ListCarsQuery struct {
	Limit    int
	Offset   int
	Ordering string // "brand", "model", "year", "average_rating"; "-" prefix for descending
	Search   string
}

// CarRepository defines the interface for car data operations
type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id uint) (*models.Car, error)
	List(ctx context.Context, query ListCarsQuery) ([]*models.Car, int64, error)
	Top(ctx context.Context, n int) ([]*models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	Delete(ctx context.Context, id uint) error
	ExistsTriple(ctx context.Context, brand, model string, year int, excludeID uint) (bool, error)
	Brands(ctx context.Context) ([]string, error)
	ModelsByBrand(ctx context.Context, brand string) ([]string, error)
	Years(ctx context.Context, brand, model string) ([]int, error)
}

// carRepository implements CarRepository
type carRepository struct {
	db *gorm.DB
}

// NewCarRepository creates a new car repository
func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{db: db}
}

// averageRatingSQL computes the mean review rating inline so every read sees
// the current reviews; the value is never cached or persisted.
const averageRatingSQL = "(SELECT AVG(reviews.rating) FROM reviews" +
	" WHERE reviews.car_id = cars.id AND reviews.deleted_at IS NULL)"

func (r *carRepository) applyCarDetails(db *gorm.DB) *gorm.DB {
	return db.Select("cars.*, " + averageRatingSQL + " as average_rating")
}

func (r *carRepository) applySearch(db *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return db
	}
	pattern := "%" + strings.ToLower(search) + "%"
	return db.Where(
		"LOWER(cars.brand) LIKE ? OR LOWER(cars.model) LIKE ? OR CAST(cars.year AS TEXT) LIKE ?",
		pattern, pattern, pattern,
	)
}

var carOrderings = map[string]string{
	"brand":          "cars.brand",
	"model":          "cars.model",
	"year":           "cars.year",
	"average_rating": "average_rating",
}

// applyOrdering translates an ordering parameter ("-year", "average_rating", ...)
// into an ORDER BY clause. Unknown fields fall back to the default ordering.
// Average ratings sort NULLS LAST so unreviewed cars trail either direction.
func (r *carRepository) applyOrdering(db *gorm.DB, ordering string) *gorm.DB {
	direction := "ASC"
	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		ordering = ordering[1:]
	}

	column, ok := carOrderings[ordering]
	if !ok {
		return db.Order("cars.year DESC")
	}
	if column == "average_rating" {
		return db.Order("average_rating " + direction + " NULLS LAST")
	}
	return db.Order(column + " " + direction)
}

func (r *carRepository) Create(ctx context.Context, car *models.Car) error {
	err := r.db.WithContext(ctx).Create(car).Error
	if err == nil {
		cache.InvalidateBrands(ctx)
	}
	return err
}

func (r *carRepository) GetByID(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	err := r.applyCarDetails(r.db.WithContext(ctx)).
		Preload("Images").
		First(&car, id).Error
	if err != nil {
		return nil, err
	}
	decorateCars([]*models.Car{&car})
	return &car, nil
}

func (r *carRepository) List(ctx context.Context, query ListCarsQuery) ([]*models.Car, int64, error) {
	var count int64
	countQuery := r.applySearch(r.db.WithContext(ctx).Model(&models.Car{}), query.Search)
	if err := countQuery.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var cars []*models.Car
	q := r.applyCarDetails(r.db.WithContext(ctx)).
		Preload("Images")
	q = r.applySearch(q, query.Search)
	q = r.applyOrdering(q, query.Ordering)
	err := q.Limit(query.Limit).
		Offset(query.Offset).
		Find(&cars).Error
	if err != nil {
		return nil, 0, err
	}
	decorateCars(cars)
	return cars, count, nil
}

func (r *carRepository) Top(ctx context.Context, n int) ([]*models.Car, error) {
	var cars []*models.Car
	err := r.applyCarDetails(r.db.WithContext(ctx)).
		Preload("Images").
		Order("average_rating DESC NULLS LAST").
		Limit(n).
		Find(&cars).Error
	if err != nil {
		return nil, err
	}
	decorateCars(cars)
	return cars, nil
}

func (r *carRepository) Update(ctx context.Context, car *models.Car) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(car).Error
	if err == nil {
		cache.InvalidateBrands(ctx)
	}
	return err
}

// Delete removes the car together with its reviews, their likes, and its
// images in one transaction; failed deletes leave no partial state.
func (r *carRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviewIDs := tx.Table("reviews").Select("id").Where("car_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviewIDs).Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("car_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("car_id = ?", id).Delete(&models.CarImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Car{}, id).Error
	})
	if err == nil {
		cache.InvalidateBrands(ctx)
	}
	return err
}

func (r *carRepository) ExistsTriple(ctx context.Context, brand, model string, year int, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("brand = ? AND model = ? AND year = ?", brand, model, year)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *carRepository) Brands(ctx context.Context) ([]string, error) {
	var brands []string
	err := cache.Aside(ctx, cache.BrandsKey, &brands, cache.BrandsTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Car{}).
			Distinct().
			Order("brand").
			Pluck("brand", &brands).Error
	})
	return brands, err
}

func (r *carRepository) ModelsByBrand(ctx context.Context, brand string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("brand = ?", brand).
		Distinct().
		Order("model").
		Pluck("model", &names).Error
	return names, err
}

func (r *carRepository) Years(ctx context.Context, brand, model string) ([]int, error) {
	var years []int
	err := r.db.WithContext(ctx).
		Model(&models.Car{}).
		Where("brand = ? AND model = ?", brand, model).
		Distinct().
		Order("year DESC").
		Pluck("year", &years).Error
	return years, err
}

// decorateCars fills the computed representative image on each car.
func decorateCars(cars []*models.Car) {
	for _, car := range cars {
		car.Image = car.RepresentativeImage()
	}
}

// IsNotFound reports whether err is the store's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
