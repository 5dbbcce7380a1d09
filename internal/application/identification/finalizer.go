// Package identification cierra la identificación de un assujetti: clasificación, tarificación,
// declaración, nota de taxación y activación de la cuenta en una sola unidad de trabajo.
package identification

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
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
)

// Config parámetros de emisión de la nota.
type Config struct {
	LocalCurrency string
	NoteDueDays   int
}

// Finalizer caso de uso completeIdentification.
type Finalizer struct {
	tx         repository.TxRunner
	assujettis repository.AssujettiRepository
	calc       *catalog.TaxCalculator
	rates      *catalog.ExchangeRates
	tokens     ports.PaymentTokens
	sessions   ports.SessionIssuer
	metrics    ports.Metrics
	log        *logger.Logger
	cfg        Config

	now         func() time.Time
	newFiscalID func() (string, error)
}

// NewFinalizer construye el finalizador. tokens, sessions y metrics pueden ser nil.
func NewFinalizer(
	tx repository.TxRunner,
	assujettis repository.AssujettiRepository,
	calc *catalog.TaxCalculator,
	rates *catalog.ExchangeRates,
	tokens ports.PaymentTokens,
	sessions ports.SessionIssuer,
	metrics ports.Metrics,
	log *logger.Logger,
	cfg Config,
) *Finalizer {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Finalizer{
		tx:          tx,
		assujettis:  assujettis,
		calc:        calc,
		rates:       rates,
		tokens:      tokens,
		sessions:    sessions,
		metrics:     metrics,
		log:         log,
		cfg:         cfg,
		now:         time.Now,
		newFiscalID: fiscal.NewFiscalID,
	}
}

// WithClock reemplaza el reloj (tests).
func (f *Finalizer) WithClock(now func() time.Time) *Finalizer {
	f.now = now
	return f
}

// WithFiscalIDGenerator reemplaza el generador de identificadores fiscales (tests).
func (f *Finalizer) WithFiscalIDGenerator(gen func() (string, error)) *Finalizer {
	f.newFiscalID = gen
	return f
}

// quote resultado de los pasos de solo lectura (resolución, clasificación, tarifa, conversión).
type quote struct {
	category       string
	classification string
	rule           *entity.TaxRule
	pricing        fiscal.Pricing
	rate           decimal.Decimal
	totalLocal     decimal.Decimal
}

// Complete ejecuta la identificación para la sesión del llamante.
// Todas las escrituras se confirman juntas o ninguna; un segundo intento sobre un assujetti ya
// identificado devuelve domain.ErrAlreadyCompleted sin crear registros.
func (f *Finalizer) Complete(ctx context.Context, caller jwt.Session, in dto.CompleteIdentificationRequest) (*dto.CompleteIdentificationResponse, error) {
	res, err := f.complete(ctx, caller, in)
	if err != nil {
		f.metrics.IdentificationFailed(failureReason(err))
		return nil, err
	}
	f.metrics.IdentificationCompleted(res.Classification)
	return res, nil
}

func (f *Finalizer) complete(ctx context.Context, caller jwt.Session, in dto.CompleteIdentificationRequest) (*dto.CompleteIdentificationResponse, error) {
	if caller.AssujettiID == "" {
		return nil, domain.ErrUnauthorized
	}
	normalize(&in)
	if err := validate(in); err != nil {
		return nil, err
	}

	current, err := f.assujettis.GetByID(ctx, caller.AssujettiID)
	if err != nil {
		return nil, fmt.Errorf("cargar assujetti: %w", err)
	}
	if current == nil {
		return nil, domain.ErrTaxpayerNotFound
	}
	if current.UserID != caller.UserID {
		return nil, domain.ErrForbidden
	}
	if current.IsIdentified() {
		return nil, domain.ErrAlreadyCompleted
	}

	q, err := f.quote(ctx, in)
	if err != nil {
		return nil, err
	}

	now := f.now()
	var (
		fiscalID string
		declID   string
		note     *entity.TaxationNote
	)
	for attempt := 1; ; attempt++ {
		fiscalID, err = f.newFiscalID()
		if err != nil {
			return nil, err
		}
		declID, note, err = f.persist(ctx, caller, in, q, fiscalID, now)
		if err == nil {
			break
		}
		if !domain.IsRetryableUniqueness(err) {
			return nil, err
		}
		f.log.Warn().Err(err).Int("attempt", attempt).Str("assujetti_id", caller.AssujettiID).Msg("colisión de identificador generado, reintentando")
		if attempt >= fiscal.MaxIdentifierAttempts {
			return nil, fmt.Errorf("%w: %d intentos", domain.ErrIdentifierExhausted, attempt)
		}
	}

	f.log.Info().
		Str("assujetti_id", caller.AssujettiID).
		Str("fiscal_id", fiscalID).
		Str("note_number", note.Number).
		Str("classification", q.classification).
		Msg("identificación completada")

	out := &dto.CompleteIdentificationResponse{
		FiscalID:       fiscalID,
		Classification: q.classification,
		Category:       q.category,
		FiscalYear:     note.FiscalYear,
		DeclarationID:  declID,
		NoteID:         note.ID,
		NoteNumber:     note.Number,
		Lines:          toLineResponses(q.pricing.Lines),
		UnitPrice:      q.rule.UnitPrice,
		TotalUSD:       q.pricing.Total,
		Currency:       q.rule.Currency,
		TotalLocal:     q.totalLocal,
		LocalCurrency:  f.cfg.LocalCurrency,
		ExchangeRate:   q.rate,
	}

	// Pasos posteriores al commit: su fallo no deshace la identificación.
	if f.tokens != nil {
		out.PaymentToken = f.tokens.Make(note.ID, note.TotalDue, note.Number)
	} else {
		f.log.Warn().Str("note_id", note.ID).Msg("firmador de pago no configurado; nota sin código de verificación")
	}
	if f.sessions != nil {
		token, err := f.sessions.Issue(jwt.Session{UserID: caller.UserID, AssujettiID: caller.AssujettiID, Role: entity.RoleAssujetti})
		if err != nil {
			f.log.Warn().Err(err).Str("user_id", caller.UserID).Msg("no se pudo renovar la sesión tras la identificación")
		} else {
			out.AccessToken = token
		}
	}
	return out, nil
}

func (f *Finalizer) quote(ctx context.Context, in dto.CompleteIdentificationRequest) (quote, error) {
	res, err := f.calc.ResolveCategory(ctx, in.LocationID)
	if err != nil {
		return quote{}, err
	}
	classification := fiscal.Classify(in.Activities, in.StructureType)
	rule, err := f.calc.PriceFor(ctx, res.Category, classification)
	if err != nil {
		return quote{}, err
	}
	pricing, err := fiscal.PriceDevices(fiscal.DeviceCounts{TV: in.TVCount, Radio: in.RadioCount}, rule.UnitPrice)
	if err != nil {
		return quote{}, err
	}

	rate := decimal.NewFromInt(1)
	totalLocal := pricing.Total
	if !strings.EqualFold(rule.Currency, f.cfg.LocalCurrency) {
		rate, _, err = f.rates.Current(ctx)
		if err != nil {
			return quote{}, err
		}
		totalLocal = catalog.Convert(pricing.Total, rate)
	}
	return quote{
		category:       res.Category,
		classification: classification,
		rule:           rule,
		pricing:        pricing,
		rate:           rate,
		totalLocal:     totalLocal,
	}, nil
}

// persist escribe los seis registros en una transacción.
func (f *Finalizer) persist(ctx context.Context, caller jwt.Session, in dto.CompleteIdentificationRequest, q quote, fiscalID string, now time.Time) (string, *entity.TaxationNote, error) {
	year := now.Year()
	declID := uuid.New().String()
	note := &entity.TaxationNote{
		ID:            uuid.New().String(),
		Number:        fiscal.IdentificationNoteNumber(fiscalID, year),
		DeclarationID: &declID,
		AssujettiID:   caller.AssujettiID,
		FiscalYear:    year,
		GrossAmount:   q.pricing.Total,
		NetAmount:     q.pricing.Total,
		PenaltyAmount: decimal.Zero,
		TotalDue:      q.pricing.Total,
		Currency:      q.rule.Currency,
		TotalDueLocal: q.totalLocal,
		LocalCurrency: f.cfg.LocalCurrency,
		ExchangeRate:  q.rate,
		Status:        entity.NoteStatusIssued,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, f.cfg.NoteDueDays),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := f.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		a, err := r.Assujettis.LockByID(ctx, caller.AssujettiID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrTaxpayerNotFound
		}
		if a.IsIdentified() {
			return domain.ErrAlreadyCompleted
		}
		applyIdentity(a, in)
		emailTaken, phoneTaken, err := r.Assujettis.ContactTaken(ctx, a.Email, a.Phone, a.ID)
		if err != nil {
			return err
		}
		if emailTaken {
			return domain.ErrDuplicateEmail
		}
		if phoneTaken {
			return domain.ErrDuplicatePhone
		}

		validatedAt := now
		decl := &entity.Declaration{
			ID:           declID,
			AssujettiID:  a.ID,
			FiscalYear:   year,
			TVCount:      in.TVCount,
			RadioCount:   in.RadioCount,
			TotalDevices: in.TVCount + in.RadioCount,
			Status:       entity.DeclarationStatusValidated,
			CreatedAt:    now,
			ValidatedAt:  &validatedAt,
		}
		if err := r.Declarations.Create(ctx, decl); err != nil {
			return err
		}
		for _, l := range q.pricing.Lines {
			if err := r.Declarations.CreateLine(ctx, &entity.DeclarationLine{
				ID:             uuid.New().String(),
				DeclarationID:  declID,
				DeviceCategory: l.Device,
				Quantity:       l.Quantity,
				UnitPrice:      l.UnitPrice,
				Amount:         l.Amount,
				Remark:         l.Remark,
			}); err != nil {
				return err
			}
		}
		if err := r.Notes.Create(ctx, note); err != nil {
			return err
		}

		a.FiscalID = &fiscalID
		a.Classification = &q.classification
		a.GeographyID = &in.LocationID
		a.Activities = in.Activities
		a.PersonType = in.StructureType
		a.ProfileComplete = true
		a.IsActive = true
		a.LastDeclarationID = &declID
		a.UpdatedAt = now
		if err := r.Assujettis.CompleteIdentification(ctx, a); err != nil {
			return err
		}
		if err := r.Users.Activate(ctx, caller.UserID, entity.RoleAssujetti); err != nil {
			return err
		}

		progress, err := r.Onboarding.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return err
		}
		if progress == nil {
			progress = fiscal.NewOnboardingProgress(uuid.New().String(), caller.UserID, now)
		}
		fiscal.CompleteOnboarding(progress, now)
		return r.Onboarding.Save(ctx, progress)
	})
	if err != nil {
		return "", nil, err
	}
	return declID, note, nil
}

func normalize(in *dto.CompleteIdentificationRequest) {
	in.LocationID = strings.TrimSpace(in.LocationID)
	in.StructureType = strings.ToLower(strings.TrimSpace(in.StructureType))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	acts := make([]string, 0, len(in.Activities))
	for _, a := range in.Activities {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			acts = append(acts, a)
		}
	}
	in.Activities = acts
}

func validate(in dto.CompleteIdentificationRequest) error {
	if in.LocationID == "" {
		return fmt.Errorf("%w: location_id requerido", domain.ErrInvalidInput)
	}
	if in.StructureType != entity.PersonPhysical && in.StructureType != entity.PersonLegal {
		return fmt.Errorf("%w: structure_type debe ser physique o morale", domain.ErrInvalidInput)
	}
	if in.TVCount < 0 || in.RadioCount < 0 {
		return fmt.Errorf("%w: cantidades negativas", domain.ErrInvalidInput)
	}
	if in.TVCount+in.RadioCount == 0 {
		return fmt.Errorf("%w: se requiere al menos un aparato", domain.ErrInvalidInput)
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
		}
	}
	return nil
}

// applyIdentity sobrescribe solo los campos informados.
func applyIdentity(a *entity.Assujetti, in dto.CompleteIdentificationRequest) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&a.Name, in.Name)
	set(&a.Email, in.Email)
	set(&a.Phone, in.Phone)
	set(&a.Address, in.Address)
	set(&a.NIF, in.NIF)
	set(&a.RCCM, in.RCCM)
	set(&a.IDNat, in.IDNat)
	set(&a.Representative, in.Representative)
}

func toLineResponses(lines []fiscal.PricedLine) []dto.PricingLineResponse {
	out := make([]dto.PricingLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.PricingLineResponse{
			Device:    l.Device,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount,
			Billed:    l.Billed,
			Remark:    l.Remark,
		})
	}
	return out
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, domain.ErrCategoryNotFound):
		return "category_not_found"
	case errors.Is(err, domain.ErrRuleNotFound):
		return "rule_not_found"
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrDuplicatePhone):
		return "duplicate_contact"
	case errors.Is(err, domain.ErrIdentifierExhausted):
		return "identifier_exhausted"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrTaxpayerNotFound):
		return "taxpayer_not_found"
	default:
		return "internal"
	}
}
