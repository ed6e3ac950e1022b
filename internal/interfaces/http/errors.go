package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/domain"
)

// errorMapping traduce errores de dominio a (status, código). El orden importa:
// los errores más específicos primero.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrConcurrencyConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
}

// writeError responde con dto.ErrorResponse. Los errores no mapeados (persistencia incluida)
// son 500 y no exponen el detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno, intente más tarde"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func statusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: msg})
}
