package middlewares

import (
	"errors"

	"devis-backend/calculation"
	"devis-backend/database"
	"devis-backend/quoting"
	"devis-backend/reports"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// domainStatus maps sentinel errors of the core packages to HTTP codes.
var domainStatus = []struct {
	err  error
	code int
}{
	{gorm.ErrRecordNotFound, fiber.StatusNotFound},
	{quoting.ErrSectionNotFound, fiber.StatusNotFound},
	{quoting.ErrPaymentNotFound, fiber.StatusNotFound},
	{quoting.ErrSectionHasContent, fiber.StatusConflict},
	{quoting.ErrInvalidPayment, fiber.StatusBadRequest},
	{quoting.ErrInvalidDeposit, fiber.StatusBadRequest},
	{reports.ErrInvalidRange, fiber.StatusBadRequest},
	{calculation.ErrInvalidDiscount, fiber.StatusBadRequest},
	{database.ErrInvalidSchema, fiber.StatusBadRequest},
}

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Domain errors
	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			msg := err.Error()
			if m.code == fiber.StatusNotFound {
				msg = "not found"
			}
			return c.Status(m.code).JSON(fiber.Map{"message": msg})
		}
	}

	// 4) Unknown errors (500)
	zerolog.Ctx(c.UserContext()).Error().Err(err).Msg("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}
