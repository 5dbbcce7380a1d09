package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/redevance-api/internal/application/catalog"
	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/application/ports"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
	"github.com/jhoicas/redevance-api/pkg/jwt"
	"github.com/jhoicas/redevance-api/pkg/logger"
	"github.com/jhoicas/redevance-api/pkg/paytoken"
)

const dateLayout = "2006-01-02"

// UseCase consulta de pago, nota manual y verificación del código QR.
type UseCase struct {
	tx            repository.TxRunner
	assujettis    repository.AssujettiRepository
	notes         repository.TaxationNoteRepository
	rates         *catalog.ExchangeRates
	tokens        ports.PaymentTokens
	pdf           ports.NotePDFGenerator
	metrics       ports.Metrics
	log           *logger.Logger
	localCurrency string
	now           func() time.Time
}

// NewUseCase construye el caso de uso. pdf y metrics pueden ser nil.
func NewUseCase(
	tx repository.TxRunner,
	assujettis repository.AssujettiRepository,
	notes repository.TaxationNoteRepository,
	rates *catalog.ExchangeRates,
	tokens ports.PaymentTokens,
	pdf ports.NotePDFGenerator,
	metrics ports.Metrics,
	log *logger.Logger,
	localCurrency string,
) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		tx: tx, assujettis: assujettis, notes: notes, rates: rates, tokens: tokens,
		pdf: pdf, metrics: metrics, log: log, localCurrency: localCurrency, now: time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// GetPaymentDetails operación getPaymentDetails: nota del ejercicio en curso del assujetti autenticado.
func (uc *UseCase) GetPaymentDetails(ctx context.Context, caller jwt.Session) (*dto.PaymentDetailsResponse, error) {
	a, note, err := uc.currentNote(ctx, caller)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentDetailsResponse{
		Note:         toNoteResponse(note),
		Assujetti:    toAssujettiResponse(a),
		PaymentToken: uc.tokens.Make(note.ID, note.TotalDue, note.Number),
	}, nil
}

// NotePDF documento imprimible de la nota vigente con el código de pago en QR.
func (uc *UseCase) NotePDF(ctx context.Context, caller jwt.Session) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", errors.New("generador PDF no configurado")
	}
	a, note, err := uc.currentNote(ctx, caller)
	if err != nil {
		return nil, "", err
	}
	out, err := uc.pdf.Generate(ports.NoteDocument{
		Note:         *note,
		Assujetti:    *a,
		PaymentToken: uc.tokens.Make(note.ID, note.TotalDue, note.Number),
	})
	if err != nil {
		return nil, "", fmt.Errorf("generar PDF de la nota %s: %w", note.Number, err)
	}
	return out, note.Number + ".pdf", nil
}

func (uc *UseCase) currentNote(ctx context.Context, caller jwt.Session) (*entity.Assujetti, *entity.TaxationNote, error) {
	if caller.AssujettiID == "" {
		return nil, nil, domain.ErrUnauthorized
	}
	a, err := uc.assujettis.GetByID(ctx, caller.AssujettiID)
	if err != nil {
		return nil, nil, fmt.Errorf("cargar assujetti: %w", err)
	}
	if a == nil {
		return nil, nil, domain.ErrTaxpayerNotFound
	}
	note, err := uc.notes.GetPayableForYear(ctx, a.ID, uc.now().Year())
	if err != nil {
		return nil, nil, fmt.Errorf("cargar nota: %w", err)
	}
	if note == nil {
		return nil, nil, fmt.Errorf("%w: ejercicio %d", domain.ErrNoteNotFound, uc.now().Year())
	}
	return a, note, nil
}

// SaveNoteTaxation operación saveNoteTaxation: nota manual en borrador ligada a la última declaración.
func (uc *UseCase) SaveNoteTaxation(ctx context.Context, caller jwt.Session, in dto.SaveNoteRequest) (*dto.SaveNoteResponse, error) {
	if caller.AssujettiID == "" {
		return nil, domain.ErrUnauthorized
	}
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.NetAmount.IsNegative() || len(in.Currency) != 3 {
		return nil, domain.ErrInvalidInput
	}
	if !fiscal.IsMoneyAmount(in.NetAmount) {
		return nil, fmt.Errorf("%w: monto con más de %d decimales", domain.ErrInvalidInput, fiscal.MoneyPlaces)
	}
	a, err := uc.assujettis.GetByID(ctx, caller.AssujettiID)
	if err != nil {
		return nil, fmt.Errorf("cargar assujetti: %w", err)
	}
	if a == nil {
		return nil, domain.ErrTaxpayerNotFound
	}
	if a.FiscalID == nil {
		return nil, fmt.Errorf("%w: el assujetti aún no tiene identificador fiscal", domain.ErrConflict)
	}

	rate := decimal.NewFromInt(1)
	local := in.NetAmount
	if in.Currency != uc.localCurrency {
		rate, _, err = uc.rates.Current(ctx)
		if err != nil {
			return nil, err
		}
		local = catalog.Convert(in.NetAmount, rate)
	}

	now := uc.now()
	for attempt := 1; ; attempt++ {
		number, err := fiscal.ManualNoteNumber(*a.FiscalID, now.Year())
		if err != nil {
			return nil, err
		}
		note := &entity.TaxationNote{
			ID:            uuid.New().String(),
			Number:        number,
			DeclarationID: a.LastDeclarationID,
			AssujettiID:   a.ID,
			FiscalYear:    now.Year(),
			GrossAmount:   in.NetAmount,
			NetAmount:     in.NetAmount,
			PenaltyAmount: decimal.Zero,
			TotalDue:      in.NetAmount,
			Currency:      in.Currency,
			TotalDueLocal: local,
			LocalCurrency: uc.localCurrency,
			ExchangeRate:  rate,
			Status:        entity.NoteStatusDraft,
			IssueDate:     now,
			DueDate:       now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		err = uc.tx.RunInTx(ctx, func(r repository.TxRepos) error {
			return r.Notes.Create(ctx, note)
		})
		if err == nil {
			uc.log.Info().Str("assujetti_id", a.ID).Str("note_number", number).Msg("nota manual registrada")
			return &dto.SaveNoteResponse{ID: note.ID, Number: note.Number, Status: note.Status}, nil
		}
		if !domain.IsRetryableUniqueness(err) {
			return nil, err
		}
		if attempt >= fiscal.MaxIdentifierAttempts {
			return nil, fmt.Errorf("%w: %d intentos", domain.ErrIdentifierExhausted, attempt)
		}
	}
}

// VerifyPaymentToken valida un código escaneado contra la nota persistida.
// Un token alterado, de otra nota o con monto desactualizado se informa como no válido, sin error.
func (uc *UseCase) VerifyPaymentToken(ctx context.Context, token string) (*dto.VerifyPaymentResponse, error) {
	p, err := paytoken.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	invalid := &dto.VerifyPaymentResponse{Valid: false, TotalDue: p.TotalDue}
	if p.NoteNumber == paytoken.PendingNumber {
		uc.metrics.PaymentTokenVerified(false)
		return invalid, nil
	}
	note, err := uc.notes.GetByNumber(ctx, p.NoteNumber)
	if err != nil {
		return nil, fmt.Errorf("cargar nota: %w", err)
	}
	if note == nil {
		uc.metrics.PaymentTokenVerified(false)
		return invalid, nil
	}
	if _, err := uc.tokens.Verify(token, note.ID); err != nil || !p.TotalDue.Equal(note.TotalDue) {
		uc.log.Warn().Str("note_number", note.Number).Msg("código de pago no válido")
		uc.metrics.PaymentTokenVerified(false)
		return invalid, nil
	}
	uc.metrics.PaymentTokenVerified(true)
	return &dto.VerifyPaymentResponse{
		Valid:      true,
		NoteNumber: note.Number,
		Status:     note.Status,
		TotalDue:   note.TotalDue,
	}, nil
}

func toNoteResponse(n *entity.TaxationNote) dto.TaxationNoteResponse {
	out := dto.TaxationNoteResponse{
		ID:            n.ID,
		Number:        n.Number,
		FiscalYear:    n.FiscalYear,
		GrossAmount:   n.GrossAmount,
		NetAmount:     n.NetAmount,
		PenaltyAmount: n.PenaltyAmount,
		TotalDue:      n.TotalDue,
		Currency:      n.Currency,
		TotalDueLocal: n.TotalDueLocal,
		LocalCurrency: n.LocalCurrency,
		Status:        n.Status,
		IssueDate:     n.IssueDate.Format(dateLayout),
		DueDate:       n.DueDate.Format(dateLayout),
	}
	if n.DeclarationID != nil {
		out.DeclarationID = *n.DeclarationID
	}
	return out
}

func toAssujettiResponse(a *entity.Assujetti) dto.AssujettiResponse {
	out := dto.AssujettiResponse{
		ID:             a.ID,
		Name:           a.Name,
		PersonType:     a.PersonType,
		NIF:            a.NIF,
		RCCM:           a.RCCM,
		IDNat:          a.IDNat,
		Representative: a.Representative,
		Email:          a.Email,
		Phone:          a.Phone,
		Address:        a.Address,
		GeographyID:    a.GeographyID,
		IsActive:       a.IsActive,
	}
	if a.FiscalID != nil {
		out.FiscalID = *a.FiscalID
	}
	if a.Classification != nil {
		out.Classification = *a.Classification
	}
	return out
}
