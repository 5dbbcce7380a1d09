package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/redevance-api/internal/application/control"
	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

// ControlHandler controles de campo (agentes y administradores).
type ControlHandler struct {
	uc  *control.UseCase
	log *logger.Logger
}

// NewControlHandler construye el handler.
func NewControlHandler(uc *control.UseCase, log *logger.Logger) *ControlHandler {
	return &ControlHandler{uc: uc, log: log}
}

// Baseline declaración de referencia del assujetti.
// Sin declaración previa devuelve ceros; un assujetti inexistente responde 404 TAXPAYER_NOT_FOUND.
// GET /api/controls/baseline/:assujettiId
func (h *ControlHandler) Baseline(c *fiber.Ctx) error {
	id := c.Params("assujettiId")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("VALIDATION", "assujettiId requerido"))
	}
	out, err := h.uc.Baseline(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Evaluate calcula la discrepancia sin persistir.
// POST /api/controls/evaluate
func (h *ControlHandler) Evaluate(c *fiber.Ctx) error {
	var in dto.EvaluateControlRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Evaluate(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Save godoc
// @Summary      Guardar procès-verbal de control
// @Description  Recalcula la discrepancia; si el PV queda finalizado con importe, crea la nota de rectificación.
// @Tags         controls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.SaveControlRequest  true  "conteos declarados y observados"
// @Success      201   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      403   {object}  dto.Envelope
// @Router       /api/controls [post]
func (h *ControlHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveControlRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Save(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// Finalize godoc
// @Summary      Finalizar procès-verbal en borrador
// @Description  Pasa el PV a finalizado; si tiene importe crea la nota de rectificación.
// @Tags         controls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "id del control"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/controls/{id}/finalize [post]
func (h *ControlHandler) Finalize(c *fiber.Ctx) error {
	out, err := h.uc.Finalize(c.UserContext(), GetSession(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
