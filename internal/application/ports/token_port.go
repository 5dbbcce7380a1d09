package ports

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/pkg/jwt"
	"github.com/jhoicas/redevance-api/pkg/paytoken"
)

// PaymentTokens genera y verifica el código de pago embebido en el QR de una nota.
type PaymentTokens interface {
	Make(noteID string, totalDue decimal.Decimal, noteNumber string) string
	Verify(token, noteID string) (paytoken.Payload, error)
}

// SessionIssuer emite un token de sesión para los datos indicados.
type SessionIssuer interface {
	Issue(s jwt.Session) (string, error)
}

// NoteDocument datos de la nota impresa.
type NoteDocument struct {
	Note         entity.TaxationNote
	Assujetti    entity.Assujetti
	PaymentToken string
}

// NotePDFGenerator genera el documento PDF de una nota de taxación.
type NotePDFGenerator interface {
	Generate(doc NoteDocument) ([]byte, error)
}
