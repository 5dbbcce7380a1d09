package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Orden relevante: el primer sentinel que coincide con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrCategoryNotFound, fiber.StatusNotFound, "CATEGORY_NOT_FOUND", "la ubicación no tiene categoría tarifaria"},
	{domain.ErrRuleNotFound, fiber.StatusNotFound, "RULE_NOT_FOUND", "no existe tarifa para la categoría y clasificación"},
	{domain.ErrTaxpayerNotFound, fiber.StatusNotFound, "TAXPAYER_NOT_FOUND", "assujetti no encontrado"},
	{domain.ErrNoteNotFound, fiber.StatusNotFound, "NOTE_NOT_FOUND", "no hay nota de taxación para el ejercicio"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrAlreadyCompleted, fiber.StatusConflict, "ALREADY_COMPLETED", "la identificación ya fue completada"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "DUPLICATE_EMAIL", "el email ya está registrado"},
	{domain.ErrDuplicateEmail, fiber.StatusConflict, "DUPLICATE_EMAIL", "el email ya pertenece a otro assujetti"},
	{domain.ErrDuplicatePhone, fiber.StatusConflict, "DUPLICATE_PHONE", "el teléfono ya pertenece a otro assujetti"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrInvalidToken, fiber.StatusBadRequest, "INVALID_TOKEN", "código de pago ilegible"},
}

// writeError traduce un error de aplicación al sobre de respuesta.
// Lo que no es un sentinel conocido (integridad incluida) sale como INTERNAL y se registra.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return c.Status(m.status).JSON(dto.Fail(m.code, msg))
		}
	}
	if log != nil {
		ev := log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path())
		if errors.Is(err, domain.ErrIntegrity) || errors.Is(err, domain.ErrIdentifierExhausted) {
			ev = ev.Bool("integrity", true)
		}
		ev.Msg("error interno")
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("INTERNAL", "error interno del servidor"))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("VALIDATION", "cuerpo inválido"))
}

func ok(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.OK(data))
}
