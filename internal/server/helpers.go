package server

import (
	"errors"
	"strconv"

	"stackit/internal/middleware"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the authenticated user ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// parseID reads a positive numeric route parameter. The parameter name is
// echoed in the error so "/:answerId" complains about the answer id.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + param + " parameter")
	}
	return uint(id), nil
}

// parseQueryInt reads a query parameter as int, falling back to def when
// missing or malformed.
func parseQueryInt(c *fiber.Ctx, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// statusForCode maps application error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondAppError writes err as a JSON error response with the status
// implied by its code. Unexpected errors are logged and reported as 500.
func respondAppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		status := statusForCode(appErr.Code)
		if status == fiber.StatusInternalServerError {
			middleware.Logger.ErrorContext(c.UserContext(), "Internal error", "error", err)
		}
		return models.RespondWithError(c, status, appErr)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "Unexpected error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError("request", err))
}
