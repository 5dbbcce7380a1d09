package payment_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/redevance-api/internal/application/catalog"
	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/application/payment"
	"github.com/jhoicas/redevance-api/internal/application/ports"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/testutil/memstore"
	"github.com/jhoicas/redevance-api/pkg/jwt"
	"github.com/jhoicas/redevance-api/pkg/paytoken"
)

const (
	userID      = "user-1"
	assujettiID = "assujetti-1"
	noteID      = "note-1"
	noteNumber  = "NT-ABC1234D-2026"
	fiscalID    = "ABC1234D"
)

var fixedNow = time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

type pdfStub struct {
	got ports.NoteDocument
	err error
}

func (p *pdfStub) Generate(doc ports.NoteDocument) ([]byte, error) {
	p.got = doc
	return []byte("%PDF-1.4"), p.err
}

type fixture struct {
	store  *memstore.Store
	signer *paytoken.Signer
	pdf    *pdfStub
	uc     *payment.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	s.SeedPendingAssujetti(userID, assujettiID, "contact@exemple.cd", "+243810000001")
	fid := fiscalID
	decl := "decl-1"
	s.SetAssujetti(entity.Assujetti{
		ID: assujettiID, UserID: userID, Name: "Hôtel du Fleuve", PersonType: entity.PersonLegal,
		FiscalID: &fid, IsActive: true, ProfileComplete: true, LastDeclarationID: &decl,
	})
	s.SeedNote(entity.TaxationNote{
		ID: noteID, Number: noteNumber, AssujettiID: assujettiID, FiscalYear: 2026,
		GrossAmount: decimal.NewFromInt(45), NetAmount: decimal.NewFromInt(45), PenaltyAmount: decimal.Zero,
		TotalDue: decimal.NewFromInt(45), Currency: "USD", TotalDueLocal: decimal.NewFromInt(128250),
		LocalCurrency: "CDF", ExchangeRate: decimal.NewFromInt(2850), Status: entity.NoteStatusIssued,
		IssueDate: fixedNow, DueDate: fixedNow.AddDate(0, 0, 30), CreatedAt: fixedNow, UpdatedAt: fixedNow,
	})

	signer, err := paytoken.NewSigner("secreto", "RDV")
	require.NoError(t, err)
	pdf := &pdfStub{}
	uc := payment.NewUseCase(
		s, s.Repos().Assujettis, s.Repos().Notes,
		catalog.NewExchangeRates(s.Settings(), decimal.NewFromInt(2850)),
		signer, pdf, nil, nil, "CDF",
	).WithClock(func() time.Time { return fixedNow })
	return &fixture{store: s, signer: signer, pdf: pdf, uc: uc}
}

func session() jwt.Session {
	return jwt.Session{UserID: userID, AssujettiID: assujettiID, Role: entity.RoleAssujetti}
}

func TestGetPaymentDetails_DevuelveNotaYToken(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.GetPaymentDetails(context.Background(), session())
	require.NoError(t, err)
	assert.Equal(t, noteNumber, res.Note.Number)
	assert.Equal(t, "2026-05-02", res.Note.IssueDate)
	assert.Equal(t, fiscalID, res.Assujetti.FiscalID)
	assert.True(t, strings.HasPrefix(res.PaymentToken, "RDV:"+noteNumber+":45.00:"))

	_, err = f.signer.Verify(res.PaymentToken, noteID)
	assert.NoError(t, err)
}

func TestGetPaymentDetails_SinSesion(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.GetPaymentDetails(context.Background(), jwt.Session{UserID: userID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetPaymentDetails_AssujettiInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.GetPaymentDetails(context.Background(), jwt.Session{UserID: userID, AssujettiID: "otro"})
	assert.ErrorIs(t, err, domain.ErrTaxpayerNotFound)
}

func TestGetPaymentDetails_SinNotaDelEjercicio(t *testing.T) {
	f := newFixture(t)
	f.uc.WithClock(func() time.Time { return fixedNow.AddDate(1, 0, 0) })

	_, err := f.uc.GetPaymentDetails(context.Background(), session())
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestGetPaymentDetails_IgnoraBorradores(t *testing.T) {
	f := newFixture(t)
	f.store.SetNoteStatus(noteID, entity.NoteStatusDraft)

	_, err := f.uc.GetPaymentDetails(context.Background(), session())
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestNotePDF_IncluyeToken(t *testing.T) {
	f := newFixture(t)

	out, name, err := f.uc.NotePDF(context.Background(), session())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, noteNumber+".pdf", name)
	assert.Equal(t, noteID, f.pdf.got.Note.ID)
	assert.NotEmpty(t, f.pdf.got.PaymentToken)
}

func TestNotePDF_ErrorDelGenerador(t *testing.T) {
	f := newFixture(t)
	f.pdf.err = errors.New("fuente no encontrada")

	_, _, err := f.uc.NotePDF(context.Background(), session())
	assert.Error(t, err)
}

func TestSaveNoteTaxation_GeneraNumeroManual(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.SaveNoteTaxation(context.Background(), session(), dto.SaveNoteRequest{
		NetAmount: decimal.NewFromInt(20), Currency: "usd",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^NT-ABC1234D-2026-[A-Z0-9]{6}$`, res.Number)
	assert.Equal(t, entity.NoteStatusDraft, res.Status)

	note, err := f.store.Repos().Notes.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.True(t, note.TotalDueLocal.Equal(decimal.NewFromInt(57000)))
	require.NotNil(t, note.DeclarationID)
	assert.Equal(t, "decl-1", *note.DeclarationID)
}

func TestSaveNoteTaxation_MonedaLocalSinConversion(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.SaveNoteTaxation(context.Background(), session(), dto.SaveNoteRequest{
		NetAmount: decimal.NewFromInt(1000), Currency: "CDF",
	})
	require.NoError(t, err)
	note, err := f.store.Repos().Notes.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.True(t, note.TotalDueLocal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, note.ExchangeRate.Equal(decimal.NewFromInt(1)))
}

func TestSaveNoteTaxation_ReintentaNumeroDuplicado(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("notes.create", domain.ErrDuplicateNoteNumber, 1)

	_, err := f.uc.SaveNoteTaxation(context.Background(), session(), dto.SaveNoteRequest{NetAmount: decimal.NewFromInt(5), Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.Counts().Notes)
}

func TestSaveNoteTaxation_Validaciones(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.SaveNoteTaxation(context.Background(), session(), dto.SaveNoteRequest{NetAmount: decimal.NewFromInt(-1), Currency: "USD"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.SaveNoteTaxation(context.Background(), session(), dto.SaveNoteRequest{NetAmount: decimal.NewFromInt(1), Currency: "dollars"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.SaveNoteTaxation(context.Background(), session(), dto.SaveNoteRequest{NetAmount: decimal.RequireFromString("10.005"), Currency: "USD"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveNoteTaxation_SinIdentificadorFiscal(t *testing.T) {
	f := newFixture(t)
	f.store.SetAssujetti(entity.Assujetti{ID: assujettiID, UserID: userID, Name: "Pendiente"})

	_, err := f.uc.SaveNoteTaxation(context.Background(), session(), dto.SaveNoteRequest{NetAmount: decimal.NewFromInt(1), Currency: "USD"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestVerifyPaymentToken(t *testing.T) {
	f := newFixture(t)
	valid := f.signer.Make(noteID, decimal.NewFromInt(45), noteNumber)

	t.Run("válido", func(t *testing.T) {
		res, err := f.uc.VerifyPaymentToken(context.Background(), valid)
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, entity.NoteStatusIssued, res.Status)
	})
	t.Run("monto alterado", func(t *testing.T) {
		res, err := f.uc.VerifyPaymentToken(context.Background(), strings.Replace(valid, ":45.00:", ":4.50:", 1))
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})
	t.Run("número inexistente", func(t *testing.T) {
		res, err := f.uc.VerifyPaymentToken(context.Background(), strings.Replace(valid, noteNumber, "NT-ZZZ9999Z-2026", 1))
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})
	t.Run("pendiente", func(t *testing.T) {
		res, err := f.uc.VerifyPaymentToken(context.Background(), f.signer.Make(noteID, decimal.NewFromInt(45), ""))
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})
	t.Run("malformado", func(t *testing.T) {
		_, err := f.uc.VerifyPaymentToken(context.Background(), "basura")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}
