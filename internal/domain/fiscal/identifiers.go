package fiscal

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

const (
	letters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	alphanumeric = letters + digits
)

// MaxIdentifierAttempts reintentos de la unidad de trabajo ante colisión de un identificador.
const MaxIdentifierAttempts = 5

var fiscalIDPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}[A-Z]$`)

// NewFiscalID genera un identificador fiscal con forma 3 letras + 4 dígitos + 1 letra (ej. KIN4821B).
// La unicidad la garantiza la restricción de la base; el llamador reintenta ante colisión.
func NewFiscalID() (string, error) {
	return randomFrom(letters, letters, letters, digits, digits, digits, digits, letters)
}

// IsValidFiscalID valida la forma del identificador fiscal.
func IsValidFiscalID(s string) bool {
	return fiscalIDPattern.MatchString(s)
}

// IdentificationNoteNumber número de la nota emitida al completar la identificación.
func IdentificationNoteNumber(fiscalID string, fiscalYear int) string {
	return fmt.Sprintf("NT-%s-%d", fiscalID, fiscalYear)
}

// ManualNoteNumber número de una nota registrada manualmente (sufijo aleatorio).
func ManualNoteNumber(fiscalID string, fiscalYear int) (string, error) {
	suffix, err := randomString(alphanumeric, 6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("NT-%s-%d-%s", fiscalID, fiscalYear, suffix), nil
}

// RectificationReference referencia de pago de una nota de rectificación.
func RectificationReference(fiscalYear int) (string, error) {
	suffix, err := randomString(alphanumeric, 8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RECT-%d-%s", fiscalYear, suffix), nil
}

func randomString(alphabet string, n int) (string, error) {
	sets := make([]string, n)
	for i := range sets {
		sets[i] = alphabet
	}
	return randomFrom(sets...)
}

func randomFrom(alphabets ...string) (string, error) {
	out := make([]byte, len(alphabets))
	for i, a := range alphabets {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(a))))
		if err != nil {
			return "", fmt.Errorf("generar identificador: %w", err)
		}
		out[i] = a[idx.Int64()]
	}
	return string(out), nil
}
