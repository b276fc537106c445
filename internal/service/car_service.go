// Package service holds the domain rules sitting between the HTTP handlers
// and the repositories: ownership checks, rating validation and duplicate
// detection.
package service

import (
	"context"
	"strings"

	"speedgarage/internal/models"
	"speedgarage/internal/repository"
)

// DefaultTopN is how many cars the top listing returns when the caller
// doesn't say otherwise.
const DefaultTopN = 3

// CarService implements car CRUD rules. Cars carry no author ownership:
// any authenticated identity may edit or delete any car.
type CarService struct {
	carRepo repository.CarRepository
}

// NewCarService creates a new car service.
func NewCarService(carRepo repository.CarRepository) *CarService {
	return &CarService{carRepo: carRepo}
}

// CreateCarInput is the payload for creating a car.
type CreateCarInput struct {
	Brand string
	Model string
	Year  int
}

// UpdateCarInput is the payload for editing a car's fields.
type UpdateCarInput struct {
	CarID uint
	Brand string
	Model string
	Year  int
}

func validateCarFields(brand, model string, year int) error {
	if strings.TrimSpace(brand) == "" || strings.TrimSpace(model) == "" {
		return models.NewValidationError("Brand and model are required")
	}
	if year <= 0 {
		return models.NewValidationError("Year must be a positive integer")
	}
	return nil
}

// CreateCar validates the fields and rejects duplicate (brand, model, year)
// triples before touching the store, so duplicates always surface as a 400
// validation failure rather than a driver-level constraint error.
func (s *CarService) CreateCar(ctx context.Context, in CreateCarInput) (*models.Car, error) {
	if err := validateCarFields(in.Brand, in.Model, in.Year); err != nil {
		return nil, err
	}

	exists, err := s.carRepo.ExistsTriple(ctx, in.Brand, in.Model, in.Year, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewValidationError("A car with this brand, model and year already exists")
	}

	car := &models.Car{
		Brand: in.Brand,
		Model: in.Model,
		Year:  in.Year,
	}
	if err := s.carRepo.Create(ctx, car); err != nil {
		return nil, err
	}
	return s.carRepo.GetByID(ctx, car.ID)
}

// GetCar loads a car with its computed average rating and images.
func (s *CarService) GetCar(ctx context.Context, id uint) (*models.Car, error) {
	car, err := s.carRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Car", id)
		}
		return nil, err
	}
	return car, nil
}

// UpdateCar edits a car's fields, keeping the unique-triple invariant.
func (s *CarService) UpdateCar(ctx context.Context, in UpdateCarInput) (*models.Car, error) {
	car, err := s.GetCar(ctx, in.CarID)
	if err != nil {
		return nil, err
	}

	if in.Brand != "" {
		car.Brand = in.Brand
	}
	if in.Model != "" {
		car.Model = in.Model
	}
	if in.Year != 0 {
		car.Year = in.Year
	}
	if err := validateCarFields(car.Brand, car.Model, car.Year); err != nil {
		return nil, err
	}

	exists, err := s.carRepo.ExistsTriple(ctx, car.Brand, car.Model, car.Year, car.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewValidationError("A car with this brand, model and year already exists")
	}

	if err := s.carRepo.Update(ctx, car); err != nil {
		return nil, err
	}
	return s.carRepo.GetByID(ctx, car.ID)
}

// DeleteCar removes the car and cascades to its images and reviews.
func (s *CarService) DeleteCar(ctx context.Context, id uint) error {
	if _, err := s.GetCar(ctx, id); err != nil {
		return err
	}
	return s.carRepo.Delete(ctx, id)
}

// TopCars returns the n best-rated cars, unreviewed cars last.
// Non-positive n falls back to DefaultTopN.
func (s *CarService) TopCars(ctx context.Context, n int) ([]*models.Car, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	return s.carRepo.Top(ctx, n)
}
