package server

import (
	"strings"

	"speedgarage/internal/models"
	"speedgarage/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Me handles GET /api/me. Reads go through the cached profile lookup; the
// password hash never leaves the model, cached or not.
func (s *Server) Me(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", userID))
	}
	return c.JSON(user)
}

// UpdateMe handles PUT /api/me. Only the email address is editable; the
// write invalidates the cached profile so the next read is fresh.
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil && existing.ID != userID {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Email is already registered"))
	}

	if err := s.userRepo.UpdateEmail(c.Context(), userID, req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", userID))
	}
	return c.JSON(user)
}
