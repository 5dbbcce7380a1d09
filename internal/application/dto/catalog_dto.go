package dto

import "github.com/shopspring/decimal"

// CalculateTaxRequest entrada de calculateTax.
type CalculateTaxRequest struct {
	LocationID string `json:"location_id" query:"location_id"`
	EntityType string `json:"entity_type" query:"entity_type"` // pm | pmta | ppta
}

// CalculateTaxResponse precio unitario aplicable.
type CalculateTaxResponse struct {
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	Category       string          `json:"category"`
	CategoryNodeID string          `json:"category_node_id"`
}

// GeographyNodeResponse nodo para el asistente de ubicación.
type GeographyNodeResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Level    string  `json:"level"`
	ParentID *string `json:"parent_id,omitempty"`
	Category *string `json:"category,omitempty"`
}

// UpsertTaxRuleRequest body de PUT /api/admin/tax-rules.
type UpsertTaxRuleRequest struct {
	Category       string          `json:"category"`
	Classification string          `json:"classification"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Currency       string          `json:"currency"`
}

// TaxRuleResponse tarifa del catálogo.
type TaxRuleResponse struct {
	ID             string          `json:"id"`
	Category       string          `json:"category"`
	Classification string          `json:"classification"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Currency       string          `json:"currency"`
}

// ExchangeRateRequest body de PUT /api/admin/settings/exchange-rate.
type ExchangeRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// ExchangeRateResponse tasa vigente.
type ExchangeRateResponse struct {
	Rate       decimal.Decimal `json:"rate"`
	IsFallback bool            `json:"is_fallback"`
}
