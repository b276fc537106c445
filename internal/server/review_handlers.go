package server

import (
	"strconv"

	"speedgarage/internal/models"
	"speedgarage/internal/repository"
	"speedgarage/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListReviews handles GET /api/reviews. Reads are public; the optional
// identity only feeds the computed liked_by_me field and the my=true filter.
func (s *Server) ListReviews(c *fiber.Ctx) error {
	limit, offset := s.parsePagination(c)
	currentUserID, authenticated := s.optionalUserID(c)

	query := repository.ListReviewsQuery{
		Limit:         limit,
		Offset:        offset,
		Search:        c.Query("search"),
		Ordering:      c.Query("ordering"),
		CurrentUserID: currentUserID,
	}

	if raw := c.Query("car_id"); raw != "" {
		carID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("car_id must be an integer"))
		}
		query.CarID = uint(carID)
	}

	if c.Query("my") == "true" {
		if !authenticated {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required to filter by your reviews"))
		}
		query.AuthorID = currentUserID
	}

	reviews, count, err := s.reviewService.ListReviews(c.Context(), query)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(buildPage(c, count, limit, offset, reviews))
}

// GetReview handles GET /api/reviews/:id
func (s *Server) GetReview(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	currentUserID, _ := s.optionalUserID(c)
	review, err := s.reviewService.GetReview(c.Context(), id, currentUserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(review)
}

// CreateReview handles POST /api/reviews. The author is always the caller;
// any author field in the body is ignored.
func (s *Server) CreateReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		CarID  uint   `json:"car_id"`
		Rating int    `json:"rating"`
		Text   string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.CreateReview(c.Context(), service.CreateReviewInput{
		AuthorID: userID,
		CarID:    req.CarID,
		Rating:   req.Rating,
		Text:     req.Text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// UpdateReview handles PUT /api/reviews/:id
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		Rating *int    `json:"rating"`
		Text   *string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.UpdateReview(c.Context(), service.UpdateReviewInput{
		CallerID: userID,
		ReviewID: id,
		Rating:   req.Rating,
		Text:     req.Text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/reviews/:id
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.reviewService.DeleteReview(c.Context(), userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikeReview handles POST /api/reviews/:id/like
func (s *Server) LikeReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	review, err := s.reviewService.LikeReview(c.Context(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(review)
}

// UnlikeReview handles DELETE /api/reviews/:id/like
func (s *Server) UnlikeReview(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	review, err := s.reviewService.UnlikeReview(c.Context(), userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(review)
}
