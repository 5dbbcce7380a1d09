package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del procès-verbal de control.
const (
	ControlStatusDraft     = "draft"
	ControlStatusFinalized = "finalized"
)

// Resultado de la visita.
const (
	ControlOutcomeConforming     = "conforme"
	ControlOutcomeRegularization = "regularisation"
)

// Estado de pago de la nota de rectificación.
const (
	RectificationPending = "pending"
	RectificationPaid    = "paid"
)

// ObservedIdentity datos de identidad constatados en terreno.
type ObservedIdentity struct {
	Name           string
	NIF            string
	RCCM           string
	IDNat          string
	Representative string
	Address        string
}

// ControlRecord visita de control (PV): declarado vs. constatado. Inmutable una vez finalizado.
type ControlRecord struct {
	ID              string
	AssujettiID     string
	AgentID         string
	FiscalYear      int
	DeclaredTV      int
	DeclaredRadio   int
	ObservedTV      int
	ObservedRadio   int
	DeltaTV         int
	DeltaRadio      int
	UnitPrice       decimal.Decimal
	Principal       decimal.Decimal
	Penalty         decimal.Decimal
	Total           decimal.Decimal
	Currency        string
	Observed        ObservedIdentity
	IdentityConform bool
	Mismatches      []string
	Outcome         string
	Observations    string
	Latitude        *float64
	Longitude       *float64
	Status          string
	CreatedAt       time.Time
	FinalizedAt     *time.Time
}

// RectificationNote nota ligada 1:1 a un control con faltante.
type RectificationNote struct {
	ID               string
	ControlID        string
	AssujettiID      string
	Principal        decimal.Decimal
	Penalty          decimal.Decimal
	Total            decimal.Decimal
	Currency         string
	PaymentStatus    string
	PaymentReference string
	CreatedAt        time.Time
}
