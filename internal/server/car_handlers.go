package server

import (
	"strconv"

	"speedgarage/internal/models"
	"speedgarage/internal/repository"
	"speedgarage/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCars handles GET /api/cars
func (s *Server) ListCars(c *fiber.Ctx) error {
	limit, offset := s.parsePagination(c)

	cars, count, err := s.carRepo.List(c.Context(), repository.ListCarsQuery{
		Limit:    limit,
		Offset:   offset,
		Ordering: c.Query("ordering"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(buildPage(c, count, limit, offset, cars))
}

// GetCar handles GET /api/cars/:id
func (s *Server) GetCar(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	car, err := s.carService.GetCar(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(car)
}

// CreateCar handles POST /api/cars
func (s *Server) CreateCar(c *fiber.Ctx) error {
	var req struct {
		Brand string `json:"brand"`
		Model string `json:"model"`
		Year  int    `json:"year"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	car, err := s.carService.CreateCar(c.Context(), service.CreateCarInput{
		Brand: req.Brand,
		Model: req.Model,
		Year:  req.Year,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(car)
}

// UpdateCar handles PUT /api/cars/:id
func (s *Server) UpdateCar(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		Brand string `json:"brand"`
		Model string `json:"model"`
		Year  int    `json:"year"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	car, err := s.carService.UpdateCar(c.Context(), service.UpdateCarInput{
		CarID: id,
		Brand: req.Brand,
		Model: req.Model,
		Year:  req.Year,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(car)
}

// DeleteCar handles DELETE /api/cars/:id
func (s *Server) DeleteCar(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.carService.DeleteCar(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TopCars handles GET /api/cars/top. A malformed n is rejected rather than
// silently falling back to the default.
func (s *Server) TopCars(c *fiber.Ctx) error {
	n := 0
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("n must be an integer"))
		}
		n = parsed
	}

	cars, err := s.carService.TopCars(c.Context(), n)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(cars)
}

// Brands handles GET /api/cars/brands
func (s *Server) Brands(c *fiber.Ctx) error {
	brands, err := s.carRepo.Brands(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	if brands == nil {
		brands = []string{}
	}
	return c.JSON(brands)
}

// Models handles GET /api/cars/models?brand=...
func (s *Server) Models(c *fiber.Ctx) error {
	brand := c.Query("brand")
	if brand == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("brand parameter is required"))
	}

	names, err := s.carRepo.ModelsByBrand(c.Context(), brand)
	if err != nil {
		return respondServiceError(c, err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

// Years handles GET /api/cars/years?brand=...&model=...
func (s *Server) Years(c *fiber.Ctx) error {
	brand := c.Query("brand")
	model := c.Query("model")
	if brand == "" || model == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("brand and model parameters are required"))
	}

	years, err := s.carRepo.Years(c.Context(), brand, model)
	if err != nil {
		return respondServiceError(c, err)
	}
	if years == nil {
		years = []int{}
	}
	return c.JSON(years)
}
