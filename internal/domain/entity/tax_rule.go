package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clasificaciones fiscales de la entidad.
const (
	ClassificationPM   = "pm"   // persona jurídica simple
	ClassificationPMTA = "pmta" // persona jurídica con ventaja comercial
	ClassificationPPTA = "ppta" // persona física con ventaja comercial
)

// TaxRule tarifa unitaria para un par (categoría, clasificación). Un solo registro activo por par.
type TaxRule struct {
	ID             string
	Category       string
	Classification string
	UnitPrice      decimal.Decimal
	Currency       string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsValidClassification indica si la clasificación es conocida.
func IsValidClassification(c string) bool {
	switch c {
	case ClassificationPM, ClassificationPMTA, ClassificationPPTA:
		return true
	}
	return false
}
