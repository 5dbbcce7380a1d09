package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/application/payment"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

// PaymentHandler consulta de pago, notas manuales y verificación de códigos.
type PaymentHandler struct {
	uc  *payment.UseCase
	log *logger.Logger
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *payment.UseCase, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{uc: uc, log: log}
}

// Details godoc
// @Summary      Nota del ejercicio vigente con su código de pago
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/payments/details [get]
func (h *PaymentHandler) Details(c *fiber.Ctx) error {
	out, err := h.uc.GetPaymentDetails(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// DetailsPDF descarga la nota vigente en PDF.
// GET /api/payments/details/pdf
func (h *PaymentHandler) DetailsPDF(c *fiber.Ctx) error {
	doc, filename, err := h.uc.NotePDF(c.UserContext(), GetSession(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(doc)
}

// SaveNote crea una nota manual en borrador.
// POST /api/notes
func (h *PaymentHandler) SaveNote(c *fiber.Ctx) error {
	var in dto.SaveNoteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SaveNoteTaxation(c.UserContext(), GetSession(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusCreated, out)
}

// Verify comprueba un código de pago escaneado.
// GET /api/payments/verify?token=
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	out, err := h.uc.VerifyPaymentToken(c.UserContext(), c.Query("token"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
