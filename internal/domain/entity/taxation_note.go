package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la nota de taxación.
const (
	NoteStatusDraft    = "draft"
	NoteStatusIssued   = "issued"
	NoteStatusPaid     = "paid"
	NoteStatusOverdue  = "overdue"
	NoteStatusDisputed = "disputed"
)

// TaxationNote demanda fiscal emitida sobre una declaración.
// Invariante: TotalDue = NetAmount + PenaltyAmount.
type TaxationNote struct {
	ID            string
	Number        string // único globalmente
	DeclarationID *string
	AssujettiID   string
	FiscalYear    int
	GrossAmount   decimal.Decimal
	NetAmount     decimal.Decimal
	PenaltyAmount decimal.Decimal
	TotalDue      decimal.Decimal
	Currency      string
	TotalDueLocal decimal.Decimal // TotalDue convertido a moneda local
	LocalCurrency string
	ExchangeRate  decimal.Decimal
	Status        string
	IssueDate     time.Time
	DueDate       time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPayable indica si la nota entra en el contrato de consulta de pago.
func (n *TaxationNote) IsPayable() bool {
	switch n.Status {
	case NoteStatusIssued, NoteStatusOverdue, NoteStatusPaid:
		return true
	}
	return false
}
