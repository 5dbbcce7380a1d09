package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/redevance-api/internal/application/catalog"
	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

// CatalogHandler geografía, cálculo de tarifa y administración del catálogo.
type CatalogHandler struct {
	calc  *catalog.TaxCalculator
	admin *catalog.AdminUseCase
	log   *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(calc *catalog.TaxCalculator, admin *catalog.AdminUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{calc: calc, admin: admin, log: log}
}

// CalculateTax godoc
// @Summary      Precio unitario para una ubicación y clasificación
// @Tags         catalog
// @Produce      json
// @Param        location_id  query  string  true  "nodo geográfico"
// @Param        entity_type  query  string  true  "pm | pmta | ppta"
// @Success      200  {object}  dto.Envelope
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/tax/calculate [get]
func (h *CatalogHandler) CalculateTax(c *fiber.Ctx) error {
	in := dto.CalculateTaxRequest{
		LocationID: c.Query("location_id"),
		EntityType: c.Query("entity_type"),
	}
	out, err := h.calc.CalculateTax(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// Geographies lista los hijos activos de parent_id (raíces si viene vacío).
// GET /api/geographies?parent_id=
func (h *CatalogHandler) Geographies(c *fiber.Ctx) error {
	out, err := h.admin.ListGeography(c.UserContext(), c.Query("parent_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// ListRules GET /api/admin/tax-rules
func (h *CatalogHandler) ListRules(c *fiber.Ctx) error {
	out, err := h.admin.ListRules(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// UpsertRule PUT /api/admin/tax-rules
func (h *CatalogHandler) UpsertRule(c *fiber.Ctx) error {
	var in dto.UpsertTaxRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.admin.UpsertRule(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// GetExchangeRate GET /api/admin/settings/exchange-rate
func (h *CatalogHandler) GetExchangeRate(c *fiber.Ctx) error {
	out, err := h.admin.GetExchangeRate(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}

// SetExchangeRate PUT /api/admin/settings/exchange-rate
func (h *CatalogHandler) SetExchangeRate(c *fiber.Ctx) error {
	var in dto.ExchangeRateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.admin.SetExchangeRate(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, fiber.StatusOK, out)
}
