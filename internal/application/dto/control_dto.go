package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ControlBaselineResponse salida de calculateControlAction.
type ControlBaselineResponse struct {
	AssujettiID   string          `json:"assujetti_id"`
	DeclaredTV    int             `json:"declared_tv"`
	DeclaredRadio int             `json:"declared_radio"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
	FiscalYear    int             `json:"fiscal_year"`
	HasBaseline   bool            `json:"has_baseline"`
}

// ObservedIdentityRequest identidad constatada en terreno.
type ObservedIdentityRequest struct {
	Name           string `json:"name,omitempty"`
	NIF            string `json:"nif,omitempty"`
	RCCM           string `json:"rccm,omitempty"`
	IDNat          string `json:"id_nat,omitempty"`
	Representative string `json:"representative,omitempty"`
	Address        string `json:"address,omitempty"`
}

// EvaluateControlRequest body de POST /api/controls/evaluate.
type EvaluateControlRequest struct {
	AssujettiID   string                  `json:"assujetti_id"`
	DeclaredTV    int                     `json:"declared_tv"`
	DeclaredRadio int                     `json:"declared_radio"`
	ObservedTV    int                     `json:"observed_tv"`
	ObservedRadio int                     `json:"observed_radio"`
	UnitPrice     decimal.Decimal         `json:"unit_price"`
	Observed      ObservedIdentityRequest `json:"observed"`
}

// EvaluateControlResponse resultado del motor de discrepancias.
type EvaluateControlResponse struct {
	DeltaTV         int             `json:"delta_tv"`
	DeltaRadio      int             `json:"delta_radio"`
	Principal       decimal.Decimal `json:"principal"`
	Penalty         decimal.Decimal `json:"penalty"`
	Total           decimal.Decimal `json:"total"`
	IdentityConform bool            `json:"identity_conform"`
	Mismatches      []string        `json:"mismatches,omitempty"`
	Outcome         string          `json:"outcome"` // conforme | regularisation
}

// SaveControlRequest body de POST /api/controls.
// Principal/Penalty/Total son opcionales: si vienen, deben coincidir con el cálculo del servidor.
type SaveControlRequest struct {
	EvaluateControlRequest
	FiscalYear   int              `json:"fiscal_year"`
	Principal    *decimal.Decimal `json:"principal,omitempty"`
	Penalty      *decimal.Decimal `json:"penalty,omitempty"`
	Total        *decimal.Decimal `json:"total,omitempty"`
	Observations string           `json:"observations,omitempty"`
	Latitude     *float64         `json:"latitude,omitempty"`
	Longitude    *float64         `json:"longitude,omitempty"`
	Finalize     bool             `json:"finalize"`
}

// RectificationResponse nota de rectificación creada.
type RectificationResponse struct {
	ID               string          `json:"id"`
	Principal        decimal.Decimal `json:"principal"`
	Penalty          decimal.Decimal `json:"penalty"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentReference string          `json:"payment_reference"`
}

// ControlResponse PV creado.
type ControlResponse struct {
	ID            string                  `json:"id"`
	AssujettiID   string                  `json:"assujetti_id"`
	FiscalYear    int                     `json:"fiscal_year"`
	Status        string                  `json:"status"`
	Evaluation    EvaluateControlResponse `json:"evaluation"`
	CreatedAt     time.Time               `json:"created_at"`
	Rectification *RectificationResponse  `json:"rectification,omitempty"`
}
