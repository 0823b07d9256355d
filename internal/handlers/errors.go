package handlers

import (
	"errors"

	"github.com/adarsh2255-buji/amazon-clone/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the service error taxonomy to HTTP status codes. Every
// error reaches the client as a JSON message; persistence details are not
// leaked.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *apperrors.ValidationError
		stockErr      *apperrors.OutOfStockError
		dupErr        *apperrors.DuplicateReviewError
		conflictErr   *apperrors.ConflictError
		notFoundErr   *apperrors.NotFoundError
		authzErr      *apperrors.AuthorizationError
		persistErr    *apperrors.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &stockErr), errors.As(err, &dupErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.As(err, &authzErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.As(err, &persistErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "storage operation failed",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "internal server error",
		})
	}
}
