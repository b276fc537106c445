package server

import (
	"speedgarage/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadCarImage handles POST /api/cars/:id/images. A second upload for the
// same (car, category) slot replaces the existing photo.
func (s *Server) UploadCarImage(c *fiber.Ctx) error {
	carID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		Category string `json:"category"`
		Photo    string `json:"photo"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if !models.ValidImageCategory(req.Category) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Category must be one of exterior, interior, engine"))
	}
	if req.Photo == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Photo URL is required"))
	}

	if _, err := s.carService.GetCar(c.Context(), carID); err != nil {
		return respondServiceError(c, err)
	}

	existing, err := s.imageRepo.GetByCarAndCategory(c.Context(), carID, req.Category)
	if err != nil {
		return respondServiceError(c, err)
	}

	image := &models.CarImage{
		CarID:    carID,
		Category: req.Category,
		Photo:    req.Photo,
	}
	if err := s.imageRepo.Upsert(c.Context(), image); err != nil {
		return respondServiceError(c, err)
	}

	// Re-read the slot: on the replace path the upsert doesn't report the
	// existing row's ID.
	stored, err := s.imageRepo.GetByCarAndCategory(c.Context(), carID, req.Category)
	if err != nil {
		return respondServiceError(c, err)
	}
	if stored == nil {
		stored = image
	}

	status := fiber.StatusCreated
	if existing != nil {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(stored)
}

// ListCarImages handles GET /api/cars/:id/images
func (s *Server) ListCarImages(c *fiber.Ctx) error {
	carID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if _, err := s.carService.GetCar(c.Context(), carID); err != nil {
		return respondServiceError(c, err)
	}

	images, err := s.imageRepo.ListByCar(c.Context(), carID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if images == nil {
		images = []*models.CarImage{}
	}
	return c.JSON(images)
}

// DeleteCarImage handles DELETE /api/cars/:id/images/:imageId
func (s *Server) DeleteCarImage(c *fiber.Ctx) error {
	carID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return respondServiceError(c, err)
	}

	image, err := s.imageRepo.GetByID(c.Context(), imageID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if image == nil || image.CarID != carID {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Image", imageID))
	}

	if err := s.imageRepo.Delete(c.Context(), imageID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
