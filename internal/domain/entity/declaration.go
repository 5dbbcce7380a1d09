package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la declaración.
const (
	DeclarationStatusDraft     = "brouillon"
	DeclarationStatusSubmitted = "soumise"
	DeclarationStatusValidated = "validee"
)

// Categorías de aparatos receptores.
const (
	DeviceTV    = "tv"
	DeviceRadio = "radio"
)

// Declaration conteo de aparatos de un assujetti para un ejercicio fiscal.
// Inmutable una vez validada, salvo por una rectificación.
type Declaration struct {
	ID           string
	AssujettiID  string
	FiscalYear   int
	TVCount      int
	RadioCount   int
	TotalDevices int
	Status       string
	CreatedAt    time.Time
	ValidatedAt  *time.Time
}

// DeclarationLine una línea por categoría de aparato efectivamente declarada.
type DeclarationLine struct {
	ID             string
	DeclarationID  string
	DeviceCategory string
	Quantity       int
	UnitPrice      decimal.Decimal
	Amount         decimal.Decimal
	Remark         string
}
