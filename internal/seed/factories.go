package seed

import (
	"fmt"
	"time"

	"speedgarage/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factory builds and persists randomized records for development databases
// and tests.
type Factory struct {
	db *gorm.DB
}

// NewFactory creates a factory bound to db.
func NewFactory(db *gorm.DB) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db}
}

// CreateUser persists a randomized user. Overrides run before the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: defaultPasswordHash(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCar persists a randomized car, retrying on triple collisions so the
// unique (brand, model, year) index never aborts a seeding run.
func (f *Factory) CreateCar(overrides ...func(*models.Car)) (*models.Car, error) {
	for attempt := 0; attempt < 10; attempt++ {
		car := &models.Car{
			Brand: gofakeit.CarMaker(),
			Model: gofakeit.CarModel(),
			Year:  gofakeit.Number(1960, time.Now().Year()),
		}
		for _, override := range overrides {
			override(car)
		}

		var count int64
		if err := f.db.Model(&models.Car{}).
			Where("brand = ? AND model = ? AND year = ?", car.Brand, car.Model, car.Year).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}

		if err := f.db.Create(car).Error; err != nil {
			return nil, err
		}
		return car, nil
	}
	return nil, fmt.Errorf("could not generate a unique car after 10 attempts")
}

// CreateReview persists a review by user on car.
func (f *Factory) CreateReview(user *models.User, car *models.Car, overrides ...func(*models.Review)) (*models.Review, error) {
	review := &models.Review{
		AuthorID: user.ID,
		CarID:    car.ID,
		Rating:   gofakeit.Number(models.MinRating, models.MaxRating),
		Text:     gofakeit.Paragraph(1, 3, 8, "\n"),
	}
	for _, override := range overrides {
		override(review)
	}
	if err := f.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// CreateLike records user liking review. Idempotent like the API toggle.
func (f *Factory) CreateLike(user *models.User, review *models.Review) error {
	return f.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ReviewLike{UserID: user.ID, ReviewID: review.ID}).Error
}

// CreateImage attaches a placeholder photo to the car's category slot.
func (f *Factory) CreateImage(car *models.Car, category string) (*models.CarImage, error) {
	image := &models.CarImage{
		CarID:    car.ID,
		Category: category,
		Photo:    fmt.Sprintf("https://picsum.photos/seed/%s-%s/800/600", category, gofakeit.UUID()),
	}
	err := f.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "car_id"}, {Name: "category"}},
			DoUpdates: clause.AssignmentColumns([]string{"photo", "updated_at"}),
		}).
		Create(image).Error
	if err != nil {
		return nil, err
	}
	return image, nil
}
