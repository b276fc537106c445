// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"speedgarage/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers   int
	NumReviews int
	// Clean drops existing rows before seeding.
	Clean bool
}

// iconicCars are always seeded so a fresh database has recognizable entries.
var iconicCars = []models.Car{
	{Brand: "Toyota", Model: "Supra", Year: 1994},
	{Brand: "Mazda", Model: "RX-7", Year: 1993},
	{Brand: "Nissan", Model: "Skyline GT-R", Year: 1999},
	{Brand: "Honda", Model: "NSX", Year: 1991},
	{Brand: "Porsche", Model: "911 Carrera", Year: 1989},
	{Brand: "BMW", Model: "M3", Year: 1988},
	{Brand: "Lancia", Model: "Delta Integrale", Year: 1992},
	{Brand: "Subaru", Model: "Impreza WRX STI", Year: 1998},
	{Brand: "Ford", Model: "Mustang GT", Year: 1967},
	{Brand: "Chevrolet", Model: "Corvette Stingray", Year: 1963},
}

var reviewSnippets = []string{
	"Bought one last spring and it has not missed a beat since.",
	"The steering feel alone is worth the price of admission.",
	"Running costs are brutal but every drive feels like an event.",
	"Surprisingly practical for daily use, even with the stiff suspension.",
	"The gearbox is the weak point; everything else is superb.",
	"Owned three of these over the years. This generation is the sweet spot.",
	"Understeers at the limit but the chassis telegraphs everything.",
	"Parts availability is getting worse, budget accordingly.",
	"The engine note above 5000 rpm is pure theatre.",
	"Looks better in person than any photo suggests.",
}

var passwordHash string

// defaultPasswordHash hashes the shared dev password once; bcrypt per row
// makes large seeds unbearably slow.
func defaultPasswordHash() string {
	if passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			panic(fmt.Sprintf("seed: bcrypt failed: %v", err))
		}
		passwordHash = string(hash)
	}
	return passwordHash
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d reviews...", opts.NumUsers, opts.NumReviews)

	if opts.Clean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	cars, err := createCars(db, factory)
	if err != nil {
		return fmt.Errorf("failed to create cars: %w", err)
	}
	log.Printf("✓ %d cars created", len(cars))

	reviews, err := createReviews(factory, users, cars, opts.NumReviews)
	if err != nil {
		return fmt.Errorf("failed to create reviews: %w", err)
	}
	log.Printf("✓ %d reviews created", len(reviews))

	likes, err := addLikes(factory, users, reviews)
	if err != nil {
		return fmt.Errorf("failed to add likes: %w", err)
	}
	log.Printf("✓ %d likes added", likes)

	images, err := addImages(factory, cars)
	if err != nil {
		return fmt.Errorf("failed to add images: %w", err)
	}
	log.Printf("✓ %d images attached", images)

	log.Println("🎉 Database seeding completed successfully!")
	log.Println("📧 All test users have the password: password123")
	return nil
}

func clearData(db *gorm.DB) error {
	// Delete in dependency order; likes and images reference the rest.
	for _, table := range []string{"review_likes", "car_images", "reviews", "cars", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	if count <= 0 {
		count = 10
	}
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createCars(db *gorm.DB, factory *Factory) ([]*models.Car, error) {
	cars := make([]*models.Car, 0, len(iconicCars)*2)

	for _, template := range iconicCars {
		car := template
		var count int64
		if err := db.Model(&models.Car{}).
			Where("brand = ? AND model = ? AND year = ?", car.Brand, car.Model, car.Year).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&car).Error; err != nil {
			return nil, err
		}
		cars = append(cars, &car)
	}

	// Pad with randomized cars so listings have something to paginate.
	for i := 0; i < len(iconicCars); i++ {
		car, err := factory.CreateCar()
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, nil
}

func createReviews(factory *Factory, users []*models.User, cars []*models.Car, count int) ([]*models.Review, error) {
	if count <= 0 {
		count = 40
	}
	if len(users) == 0 || len(cars) == 0 {
		return nil, nil
	}

	reviews := make([]*models.Review, 0, count)
	for i := 0; i < count; i++ {
		user := users[rand.Intn(len(users))]
		car := cars[rand.Intn(len(cars))]
		review, err := factory.CreateReview(user, car, func(r *models.Review) {
			r.Text = reviewSnippets[rand.Intn(len(reviewSnippets))]
		})
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

func addLikes(factory *Factory, users []*models.User, reviews []*models.Review) (int, error) {
	likes := 0
	for _, review := range reviews {
		// Roughly a third of users like each review.
		for _, user := range users {
			if rand.Intn(3) != 0 {
				continue
			}
			if err := factory.CreateLike(user, review); err != nil {
				return likes, err
			}
			likes++
		}
	}
	return likes, nil
}

func addImages(factory *Factory, cars []*models.Car) (int, error) {
	images := 0
	categories := []string{
		models.ImageCategoryExterior,
		models.ImageCategoryInterior,
		models.ImageCategoryEngine,
	}
	for _, car := range cars {
		// Every car gets an exterior shot, the rest are coin flips.
		for i, category := range categories {
			if i > 0 && rand.Intn(2) == 0 {
				continue
			}
			if _, err := factory.CreateImage(car, category); err != nil {
				return images, err
			}
			images++
		}
	}
	return images, nil
}
