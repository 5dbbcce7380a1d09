// Package paytoken: código de verificación de pago embebido en la referencia escaneable (QR)
// de una nota de taxación.
//
// Formato: PREFIX:<numero_nota|PENDING>:<total_adeudado>:<firma>
// Firma: HMAC-SHA256 sobre "note_id:total:numero" con el secreto del proceso, hex truncado a 16 caracteres.
package paytoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PendingNumber sustituye al número de nota cuando aún no fue asignado.
const PendingNumber = "PENDING"

// SignatureLength longitud en caracteres hex de la firma truncada.
const SignatureLength = 16

var (
	ErrMalformed        = errors.New("paytoken: formato inválido")
	ErrInvalidSignature = errors.New("paytoken: firma inválida")
)

// Payload partes legibles del token.
type Payload struct {
	Prefix     string
	NoteNumber string
	TotalDue   decimal.Decimal
	Signature  string
}

// Signer genera y verifica tokens con un secreto inyectado.
type Signer struct {
	secret []byte
	prefix string
}

// NewSigner construye el firmador. El secreto es obligatorio; el prefijo no puede contener ':'.
func NewSigner(secret, prefix string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("paytoken: secreto vacío")
	}
	if prefix == "" || strings.Contains(prefix, ":") {
		return nil, fmt.Errorf("paytoken: prefijo inválido %q", prefix)
	}
	return &Signer{secret: []byte(secret), prefix: prefix}, nil
}

// Make devuelve el token para la nota. Es determinista para (noteID, totalDue, noteNumber, secreto).
func (s *Signer) Make(noteID string, totalDue decimal.Decimal, noteNumber string) string {
	number := normalizeNumber(noteNumber)
	amount := formatAmount(totalDue)
	return s.prefix + ":" + number + ":" + amount + ":" + s.sign(noteID, amount, number)
}

// Verify recalcula la firma con el id de la nota y compara en tiempo constante.
// Cualquier cambio del número o del monto invalida el token.
func (s *Signer) Verify(token, noteID string) (Payload, error) {
	p, err := Parse(token)
	if err != nil {
		return Payload{}, err
	}
	if p.Prefix != s.prefix {
		return p, ErrInvalidSignature
	}
	expected := s.sign(noteID, formatAmount(p.TotalDue), p.NoteNumber)
	if !hmac.Equal([]byte(expected), []byte(p.Signature)) {
		return p, ErrInvalidSignature
	}
	return p, nil
}

// Parse separa el token en sus partes sin verificar la firma.
func Parse(token string) (Payload, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	if len(parts) != 4 {
		return Payload{}, ErrMalformed
	}
	if parts[0] == "" || parts[1] == "" || len(parts[3]) != SignatureLength {
		return Payload{}, ErrMalformed
	}
	if _, err := hex.DecodeString(parts[3]); err != nil {
		return Payload{}, ErrMalformed
	}
	amount, err := decimal.NewFromString(parts[2])
	if err != nil {
		return Payload{}, ErrMalformed
	}
	return Payload{Prefix: parts[0], NoteNumber: parts[1], TotalDue: amount, Signature: parts[3]}, nil
}

func (s *Signer) sign(noteID, amount, number string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(noteID + ":" + amount + ":" + number))
	return hex.EncodeToString(mac.Sum(nil))[:SignatureLength]
}

func normalizeNumber(n string) string {
	n = strings.TrimSpace(n)
	if n == "" {
		return PendingNumber
	}
	return n
}

// formatAmount fija dos decimales para que 45, 45.0 y 45.00 firmen igual.
func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
