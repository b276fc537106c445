package server

import (
	"errors"
	"net/url"
	"strconv"

	"speedgarage/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return uint(id), nil
}

// parsePagination reads limit/offset query parameters, clamped to the
// configured page bounds.
func (s *Server) parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", s.config.PageSize)
	if limit <= 0 {
		limit = s.config.PageSize
	}
	if limit > s.config.MaxPageSize {
		limit = s.config.MaxPageSize
	}

	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// pageURL rebuilds the request URL with the given offset, keeping every other
// query parameter intact.
func pageURL(c *fiber.Ctx, limit, offset int) *string {
	u, err := url.Parse(c.OriginalURL())
	if err != nil {
		return nil
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	link := c.BaseURL() + u.String()
	return &link
}

// buildPage wraps a result list in the pagination envelope with next/previous
// links.
func buildPage(c *fiber.Ctx, count int64, limit, offset int, results interface{}) models.Page {
	page := models.Page{
		Count:   count,
		Results: results,
	}
	if int64(offset+limit) < count {
		page.Next = pageURL(c, limit, offset+limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		page.Previous = pageURL(c, limit, prev)
	}
	return page
}

// respondServiceError maps domain error codes onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := fiber.StatusInternalServerError
		switch appErr.Code {
		case "VALIDATION_ERROR":
			status = fiber.StatusBadRequest
		case "UNAUTHORIZED":
			status = fiber.StatusUnauthorized
		case "FORBIDDEN":
			status = fiber.StatusForbidden
		case "NOT_FOUND":
			status = fiber.StatusNotFound
		case "CONFLICT":
			status = fiber.StatusConflict
		}
		return models.RespondWithError(c, status, appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}
