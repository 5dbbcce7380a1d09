package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/application/identification"
	"github.com/jhoicas/redevance-api/internal/application/onboarding"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

// IdentificationHandler asistente de onboarding y finalización de la identificación.
type IdentificationHandler struct {
	finalizer  *identification.Finalizer
	onboarding *onboarding.UseCase
	log        *logger.Logger
}

// NewIdentificationHandler construye el handler.
func NewIdentificationHandler(f *identification.Finalizer, ob *onboarding.UseCase, log *logger.Logger) *IdentificationHandler {
	return &IdentificationHandler{finalizer: f, onboarding: ob, log: log}
}

// Complete godoc
// @Summary      Finalizar la identificación del assujetti
// @Description  Asigna ID fiscal y clasificación, crea declaración y nota de taxación en una sola transacción.
// @Tags         identification
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CompleteIdentificationRequest  true  "ubicación, estructura, actividades, aparatos"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/identification/complete [post]
func (h *IdentificationHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteIdentificationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.finalizer.Complete(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// Onboarding GET /api/onboarding
func (h *IdentificationHandler) Onboarding(c *fiber.Ctx) error {
	out, err := h.onboarding.Get(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// SaveStep PUT /api/onboarding/steps/:step
func (h *IdentificationHandler) SaveStep(c *fiber.Ctx) error {
	step, err := c.ParamsInt("step")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("VALIDATION", "paso inválido"))
	}
	var in dto.SaveStepRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.onboarding.SaveStep(c.UserContext(), GetSession(c), step, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
