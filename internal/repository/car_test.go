package repository

import (
	"context"
	"testing"

	"speedgarage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Car{},
		&models.CarImage{},
		&models.Review{},
		&models.ReviewLike{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "pw"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCar(t *testing.T, db *gorm.DB, brand, model string, year int) *models.Car {
	t.Helper()
	car := &models.Car{Brand: brand, Model: model, Year: year}
	require.NoError(t, db.Create(car).Error)
	return car
}

func createTestReview(t *testing.T, db *gorm.DB, author *models.User, car *models.Car, rating int) *models.Review {
	t.Helper()
	review := &models.Review{AuthorID: author.ID, CarID: car.ID, Rating: rating, Text: "test review"}
	require.NoError(t, db.Create(review).Error)
	return review
}

func TestCarRepository_AverageRating(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCarRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	car := createTestCar(t, db, "Toyota", "Supra", 1994)

	// No reviews yet: the average is absent, not zero.
	got, err := repo.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AverageRating)

	createTestReview(t, db, alice, car, 5)
	got, err = repo.GetByID(ctx, car.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 5.0, *got.AverageRating)

	// A second review moves the mean on the very next read.
	createTestReview(t, db, bob, car, 3)
	got, err = repo.GetByID(ctx, car.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 4.0, *got.AverageRating)
}

func TestCarRepository_AverageRatingIgnoresDeletedReviews(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	carRepo := NewCarRepository(db)
	reviewRepo := NewReviewRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	car := createTestCar(t, db, "Mazda", "RX-7", 1993)

	createTestReview(t, db, alice, car, 5)
	toDelete := createTestReview(t, db, bob, car, 1)

	require.NoError(t, reviewRepo.Delete(ctx, toDelete.ID))

	got, err := carRepo.GetByID(ctx, car.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 5.0, *got.AverageRating)
}

func TestCarRepository_ExistsTriple(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCarRepository(db)
	ctx := context.Background()

	car := createTestCar(t, db, "Honda", "NSX", 1991)

	exists, err := repo.ExistsTriple(ctx, "Honda", "NSX", 1991, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	// The same triple excluding itself: used by updates.
	exists, err = repo.ExistsTriple(ctx, "Honda", "NSX", 1991, car.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Different year is a different car.
	exists, err = repo.ExistsTriple(ctx, "Honda", "NSX", 1997, 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCarRepository_TopOrdersUnreviewedLast(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCarRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	low := createTestCar(t, db, "Brand", "Low", 2000)
	high := createTestCar(t, db, "Brand", "High", 2001)
	unreviewed := createTestCar(t, db, "Brand", "Unrated", 2002)

	createTestReview(t, db, alice, low, 2)
	createTestReview(t, db, alice, high, 5)

	cars, err := repo.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, cars, 3)
	assert.Equal(t, high.ID, cars[0].ID)
	assert.Equal(t, low.ID, cars[1].ID)
	assert.Equal(t, unreviewed.ID, cars[2].ID)
	assert.Nil(t, cars[2].AverageRating)

	// n truncates the result.
	cars, err = repo.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, high.ID, cars[0].ID)
}

func TestCarRepository_ListSearchAndOrdering(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCarRepository(db)
	ctx := context.Background()

	createTestCar(t, db, "Toyota", "Supra", 1994)
	createTestCar(t, db, "Toyota", "Celica", 1999)
	createTestCar(t, db, "Mazda", "RX-7", 1993)

	// Case-insensitive brand search.
	cars, count, err := repo.List(ctx, ListCarsQuery{Limit: 10, Search: "toyota"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, cars, 2)

	// Search matches the year as text too.
	_, count, err = repo.List(ctx, ListCarsQuery{Limit: 10, Search: "1993"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Explicit ascending year ordering.
	cars, _, err = repo.List(ctx, ListCarsQuery{Limit: 10, Ordering: "year"})
	require.NoError(t, err)
	require.Len(t, cars, 3)
	assert.Equal(t, 1993, cars[0].Year)
	assert.Equal(t, 1999, cars[2].Year)

	// Unknown ordering falls back to newest first.
	cars, _, err = repo.List(ctx, ListCarsQuery{Limit: 10, Ordering: "bogus"})
	require.NoError(t, err)
	assert.Equal(t, 1999, cars[0].Year)

	// Pagination window.
	cars, count, err = repo.List(ctx, ListCarsQuery{Limit: 2, Offset: 2, Ordering: "year"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Len(t, cars, 1)
}

func TestCarRepository_DeleteCascades(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCarRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	car := createTestCar(t, db, "Nissan", "Skyline GT-R", 1999)
	review := createTestReview(t, db, alice, car, 5)
	require.NoError(t, db.Create(&models.ReviewLike{UserID: alice.ID, ReviewID: review.ID}).Error)
	require.NoError(t, db.Create(&models.CarImage{CarID: car.ID, Category: models.ImageCategoryExterior, Photo: "https://example.com/p.jpg"}).Error)

	require.NoError(t, repo.Delete(ctx, car.ID))

	_, err := repo.GetByID(ctx, car.ID)
	assert.True(t, IsNotFound(err))

	var reviewCount, likeCount, imageCount int64
	require.NoError(t, db.Model(&models.Review{}).Where("car_id = ?", car.ID).Count(&reviewCount).Error)
	require.NoError(t, db.Model(&models.ReviewLike{}).Count(&likeCount).Error)
	require.NoError(t, db.Model(&models.CarImage{}).Where("car_id = ?", car.ID).Count(&imageCount).Error)
	assert.Zero(t, reviewCount)
	assert.Zero(t, likeCount)
	assert.Zero(t, imageCount)
}

func TestCarRepository_BrandsModelsYears(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCarRepository(db)
	ctx := context.Background()

	createTestCar(t, db, "Toyota", "Supra", 1994)
	createTestCar(t, db, "Toyota", "Supra", 1997)
	createTestCar(t, db, "Toyota", "Celica", 1999)
	createTestCar(t, db, "Mazda", "RX-7", 1993)

	brands, err := repo.Brands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mazda", "Toyota"}, brands)

	names, err := repo.ModelsByBrand(ctx, "Toyota")
	require.NoError(t, err)
	assert.Equal(t, []string{"Celica", "Supra"}, names)

	years, err := repo.Years(ctx, "Toyota", "Supra")
	require.NoError(t, err)
	assert.Equal(t, []int{1997, 1994}, years)
}

func TestCarRepository_RepresentativeImage(t *testing.T) {
	t.Parallel()

	db := setupRepoTestDB(t)
	repo := NewCarRepository(db)
	ctx := context.Background()

	car := createTestCar(t, db, "Porsche", "911 Carrera", 1989)
	require.NoError(t, db.Create(&models.CarImage{CarID: car.ID, Category: models.ImageCategoryInterior, Photo: "https://example.com/interior.jpg"}).Error)
	require.NoError(t, db.Create(&models.CarImage{CarID: car.ID, Category: models.ImageCategoryExterior, Photo: "https://example.com/exterior.jpg"}).Error)

	got, err := repo.GetByID(ctx, car.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	assert.Equal(t, "https://example.com/exterior.jpg", *got.Image)
}
