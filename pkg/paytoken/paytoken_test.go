package paytoken_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/redevance-api/pkg/paytoken"
)

const (
	testSecret = "secreto-de-prueba"
	testNoteID = "6f1c2a9e-0000-4000-8000-000000000001"
	testNumber = "NT-ABC1234D-2026"
)

func newSigner(t *testing.T) *paytoken.Signer {
	t.Helper()
	s, err := paytoken.NewSigner(testSecret, "RDV")
	require.NoError(t, err)
	return s
}

func TestMake_FormatoDelToken(t *testing.T) {
	tok := newSigner(t).Make(testNoteID, decimal.NewFromInt(45), testNumber)

	parts := strings.Split(tok, ":")
	require.Len(t, parts, 4)
	assert.Equal(t, "RDV", parts[0])
	assert.Equal(t, testNumber, parts[1])
	assert.Equal(t, "45.00", parts[2])
	assert.Len(t, parts[3], paytoken.SignatureLength)
}

func TestMake_Determinista(t *testing.T) {
	s := newSigner(t)
	a := s.Make(testNoteID, decimal.RequireFromString("30.5"), testNumber)
	b := s.Make(testNoteID, decimal.RequireFromString("30.50"), testNumber)
	assert.Equal(t, a, b, "mismas entradas producen el mismo token")
}

func TestMake_NumeroVacioUsaPending(t *testing.T) {
	tok := newSigner(t).Make(testNoteID, decimal.NewFromInt(10), "")
	assert.True(t, strings.HasPrefix(tok, "RDV:PENDING:10.00:"))
}

func TestMake_SecretoDistintoFirmaDistinta(t *testing.T) {
	other, err := paytoken.NewSigner("otro-secreto", "RDV")
	require.NoError(t, err)

	a := newSigner(t).Make(testNoteID, decimal.NewFromInt(10), testNumber)
	b := other.Make(testNoteID, decimal.NewFromInt(10), testNumber)
	assert.NotEqual(t, a, b)
}

func TestVerify_TokenValido(t *testing.T) {
	s := newSigner(t)
	tok := s.Make(testNoteID, decimal.NewFromInt(45), testNumber)

	p, err := s.Verify(tok, testNoteID)
	require.NoError(t, err)
	assert.Equal(t, testNumber, p.NoteNumber)
	assert.True(t, p.TotalDue.Equal(decimal.NewFromInt(45)))
}

func TestVerify_MontoAlteradoInvalida(t *testing.T) {
	s := newSigner(t)
	tok := s.Make(testNoteID, decimal.NewFromInt(45), testNumber)
	tampered := strings.Replace(tok, ":45.00:", ":4.50:", 1)

	_, err := s.Verify(tampered, testNoteID)
	assert.ErrorIs(t, err, paytoken.ErrInvalidSignature)
}

func TestVerify_NumeroAlteradoInvalida(t *testing.T) {
	s := newSigner(t)
	tok := s.Make(testNoteID, decimal.NewFromInt(45), testNumber)
	tampered := strings.Replace(tok, testNumber, "NT-ZZZ9999Z-2026", 1)

	_, err := s.Verify(tampered, testNoteID)
	assert.ErrorIs(t, err, paytoken.ErrInvalidSignature)
}

func TestVerify_OtraNotaInvalida(t *testing.T) {
	s := newSigner(t)
	tok := s.Make(testNoteID, decimal.NewFromInt(45), testNumber)

	_, err := s.Verify(tok, "otra-nota")
	assert.ErrorIs(t, err, paytoken.ErrInvalidSignature)
}

func TestParse_Malformado(t *testing.T) {
	for _, tok := range []string{"", "RDV:NT:45.00", "RDV:NT:abc:0123456789abcdef", "RDV:NT:45.00:xyz", "RDV:NT:45.00:zzzzzzzzzzzzzzzz"} {
		_, err := paytoken.Parse(tok)
		assert.ErrorIs(t, err, paytoken.ErrMalformed, tok)
	}
}

func TestNewSigner_Validaciones(t *testing.T) {
	_, err := paytoken.NewSigner("", "RDV")
	assert.Error(t, err)
	_, err = paytoken.NewSigner("s", "R:D")
	assert.Error(t, err)
}
