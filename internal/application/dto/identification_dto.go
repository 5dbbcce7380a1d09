package dto

import "github.com/shopspring/decimal"

// CompleteIdentificationRequest body de POST /api/identification/complete.
type CompleteIdentificationRequest struct {
	LocationID     string   `json:"location_id"`
	StructureType  string   `json:"structure_type"` // physique | morale
	Activities     []string `json:"activities"`
	TVCount        int      `json:"tv_count"`
	RadioCount     int      `json:"radio_count"`
	Name           string   `json:"name,omitempty"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Address        string   `json:"address,omitempty"`
	NIF            string   `json:"nif,omitempty"`
	RCCM           string   `json:"rccm,omitempty"`
	IDNat          string   `json:"id_nat,omitempty"`
	Representative string   `json:"representative,omitempty"`
}

// PricingLineResponse línea del desglose.
type PricingLineResponse struct {
	Device    string          `json:"device"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
	Billed    bool            `json:"billed"`
	Remark    string          `json:"remark,omitempty"`
}

// CompleteIdentificationResponse resultado de la finalización.
// PaymentToken y AccessToken pueden venir vacíos si esos pasos fallaron tras el commit.
type CompleteIdentificationResponse struct {
	FiscalID       string                `json:"fiscal_id"`
	Classification string                `json:"classification"`
	Category       string                `json:"category"`
	FiscalYear     int                   `json:"fiscal_year"`
	DeclarationID  string                `json:"declaration_id"`
	NoteID         string                `json:"note_id"`
	NoteNumber     string                `json:"note_number"`
	Lines          []PricingLineResponse `json:"lines"`
	UnitPrice      decimal.Decimal       `json:"unit_price"`
	TotalUSD       decimal.Decimal       `json:"total_usd"`
	Currency       string                `json:"currency"`
	TotalLocal     decimal.Decimal       `json:"total_local"`
	LocalCurrency  string                `json:"local_currency"`
	ExchangeRate   decimal.Decimal       `json:"exchange_rate"`
	PaymentToken   string                `json:"payment_token,omitempty"`
	AccessToken    string                `json:"access_token,omitempty"`
}
