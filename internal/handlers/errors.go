package handlers

import (
	"errors"
	"log/slog"

	"storefront/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

const serverErrorMessage = "Server error"

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidTransition):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrOrderNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {"error": message}. Server errors never expose their cause.
func respondError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	message := serverErrorMessage
	if status != fiber.StatusInternalServerError {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			message = fiberErr.Message
		} else {
			message = apperrors.Message(err, err.Error())
		}
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// ErrorHandler is the fiber error handler for errors returned by handlers and routing.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if StatusFor(err) == fiber.StatusInternalServerError {
			logger.Error("request failed",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err))
		}
		return respondError(c, err)
	}
}

func invalidBody() error {
	return apperrors.Validation("Invalid request body")
}
