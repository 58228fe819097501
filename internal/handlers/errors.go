package handlers

import (
	"errors"

	"catalog/internal/apperror"
	"catalog/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "An internal server error has occurred"

// ErrorHandler maps errors returned by handlers to JSON responses.
// Unrecognised errors are logged and hidden behind a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			validationErr *apperror.ValidationError
			notFoundErr   *apperror.NotFoundError
			conflictErr   *apperror.ConflictError
			fiberErr      *fiber.Error
		)

		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  validationErr.Fields,
			})
		case errors.As(err, &notFoundErr):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": notFoundErr.Error(),
			})
		case errors.As(err, &conflictErr):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": conflictErr.Error(),
			})
		case errors.As(err, &fiberErr):
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"message": fiberErr.Message,
			})
		}

		logger.Error("unhandled request error",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": internalErrorMessage,
		})
	}
}
