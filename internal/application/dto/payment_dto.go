package dto

import "github.com/shopspring/decimal"

// TaxationNoteResponse nota de taxación.
type TaxationNoteResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	DeclarationID string          `json:"declaration_id,omitempty"`
	FiscalYear    int             `json:"fiscal_year"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	TotalDue      decimal.Decimal `json:"total_due"`
	Currency      string          `json:"currency"`
	TotalDueLocal decimal.Decimal `json:"total_due_local"`
	LocalCurrency string          `json:"local_currency"`
	Status        string          `json:"status"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
}

// AssujettiResponse datos del assujetti.
type AssujettiResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	PersonType     string  `json:"person_type"`
	FiscalID       string  `json:"fiscal_id,omitempty"`
	Classification string  `json:"classification,omitempty"`
	NIF            string  `json:"nif,omitempty"`
	RCCM           string  `json:"rccm,omitempty"`
	IDNat          string  `json:"id_nat,omitempty"`
	Representative string  `json:"representative,omitempty"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Address        string  `json:"address,omitempty"`
	GeographyID    *string `json:"geography_id,omitempty"`
	IsActive       bool    `json:"is_active"`
}

// PaymentDetailsResponse salida de getPaymentDetails.
type PaymentDetailsResponse struct {
	Note         TaxationNoteResponse `json:"note"`
	Assujetti    AssujettiResponse    `json:"assujetti"`
	PaymentToken string               `json:"payment_token"`
}

// SaveNoteRequest body de POST /api/notes (ruta manual).
type SaveNoteRequest struct {
	NetAmount decimal.Decimal `json:"net_amount"`
	Currency  string          `json:"currency"`
}

// SaveNoteResponse número generado.
type SaveNoteResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
}

// VerifyPaymentResponse resultado de verificar un token escaneado.
type VerifyPaymentResponse struct {
	Valid      bool            `json:"valid"`
	NoteNumber string          `json:"note_number,omitempty"`
	Status     string          `json:"status,omitempty"`
	TotalDue   decimal.Decimal `json:"total_due"`
}
