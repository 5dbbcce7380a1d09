// Package control procès-verbaux de control en terreno: línea base declarada, evaluación de
// faltantes con multa y registro del PV con su nota de rectificación.
package control

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/application/ports"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
	"github.com/jhoicas/redevance-api/pkg/jwt"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

// UseCase operaciones de control.
type UseCase struct {
	tx           repository.TxRunner
	assujettis   repository.AssujettiRepository
	declarations repository.DeclarationRepository
	metrics      ports.Metrics
	log          *logger.Logger
	currency     string
	now          func() time.Time
}

// NewUseCase construye el caso de uso. currency es la moneda de las tarifas (USD).
func NewUseCase(
	tx repository.TxRunner,
	assujettis repository.AssujettiRepository,
	declarations repository.DeclarationRepository,
	metrics ports.Metrics,
	log *logger.Logger,
	currency string,
) *UseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		tx: tx, assujettis: assujettis, declarations: declarations,
		metrics: metrics, log: log, currency: currency, now: time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Baseline operación calculateControlAction: últimos aparatos declarados y precio unitario.
// Sin declaración previa devuelve una línea base en cero.
func (uc *UseCase) Baseline(ctx context.Context, assujettiID string) (*dto.ControlBaselineResponse, error) {
	if strings.TrimSpace(assujettiID) == "" {
		return nil, domain.ErrInvalidInput
	}
	a, err := uc.assujettis.GetByID(ctx, assujettiID)
	if err != nil {
		return nil, fmt.Errorf("cargar assujetti: %w", err)
	}
	if a == nil {
		return nil, domain.ErrTaxpayerNotFound
	}
	out := &dto.ControlBaselineResponse{
		AssujettiID: a.ID,
		UnitPrice:   decimal.Zero,
		Currency:    uc.currency,
		FiscalYear:  uc.now().Year(),
	}
	decl, err := uc.declarations.GetLatestByAssujetti(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar declaración: %w", err)
	}
	if decl == nil {
		return out, nil
	}
	lines, err := uc.declarations.GetLines(ctx, decl.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar líneas: %w", err)
	}
	out.HasBaseline = true
	out.DeclaredTV = decl.TVCount
	out.DeclaredRadio = decl.RadioCount
	out.FiscalYear = decl.FiscalYear
	out.UnitPrice = billedUnitPrice(lines)
	return out, nil
}

// billedUnitPrice precio de la línea facturada; la línea no facturada lleva el mismo precio.
func billedUnitPrice(lines []*entity.DeclarationLine) decimal.Decimal {
	for _, l := range lines {
		if l.Amount.IsPositive() {
			return l.UnitPrice
		}
	}
	if len(lines) > 0 {
		return lines[0].UnitPrice
	}
	return decimal.Zero
}

type evaluation struct {
	eval     fiscal.Evaluation
	identity fiscal.IdentityCheck
	outcome  string
}

// Evaluate vista previa sin persistir.
func (uc *UseCase) Evaluate(ctx context.Context, in dto.EvaluateControlRequest) (*dto.EvaluateControlResponse, error) {
	ev, err := uc.evaluate(ctx, in)
	if err != nil {
		return nil, err
	}
	res := toEvaluationResponse(ev)
	return &res, nil
}

func (uc *UseCase) evaluate(ctx context.Context, in dto.EvaluateControlRequest) (evaluation, error) {
	if strings.TrimSpace(in.AssujettiID) == "" {
		return evaluation{}, fmt.Errorf("%w: assujetti_id requerido", domain.ErrInvalidInput)
	}
	if in.DeclaredTV < 0 || in.DeclaredRadio < 0 || in.ObservedTV < 0 || in.ObservedRadio < 0 {
		return evaluation{}, fmt.Errorf("%w: cantidades negativas", domain.ErrInvalidInput)
	}
	if in.UnitPrice.IsNegative() {
		return evaluation{}, fmt.Errorf("%w: precio unitario negativo", domain.ErrInvalidInput)
	}
	if !fiscal.IsMoneyAmount(in.UnitPrice) {
		return evaluation{}, fmt.Errorf("%w: precio unitario con más de %d decimales", domain.ErrInvalidInput, fiscal.MoneyPlaces)
	}
	a, err := uc.assujettis.GetByID(ctx, in.AssujettiID)
	if err != nil {
		return evaluation{}, fmt.Errorf("cargar assujetti: %w", err)
	}
	if a == nil {
		return evaluation{}, domain.ErrTaxpayerNotFound
	}
	ev := fiscal.Evaluate(
		fiscal.DeviceCounts{TV: in.DeclaredTV, Radio: in.DeclaredRadio},
		fiscal.DeviceCounts{TV: in.ObservedTV, Radio: in.ObservedRadio},
		in.UnitPrice,
	)
	id := fiscal.CheckIdentity(declaredIdentity(a), observedIdentity(in.Observed))
	return evaluation{eval: ev, identity: id, outcome: fiscal.Outcome(ev, id)}, nil
}

// Save operación saveControlAction. Solo agentes y administradores.
// Los montos enviados por el cliente son opcionales y deben coincidir con el cálculo del servidor.
func (uc *UseCase) Save(ctx context.Context, caller jwt.Session, in dto.SaveControlRequest) (*dto.ControlResponse, error) {
	if caller.Role != entity.RoleAgent && caller.Role != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	ev, err := uc.evaluate(ctx, in.EvaluateControlRequest)
	if err != nil {
		return nil, err
	}
	if err := checkClientAmount("principal", in.Principal, ev.eval.Principal); err != nil {
		return nil, err
	}
	if err := checkClientAmount("penalty", in.Penalty, ev.eval.Penalty); err != nil {
		return nil, err
	}
	if err := checkClientAmount("total", in.Total, ev.eval.Total); err != nil {
		return nil, err
	}

	now := uc.now()
	year := in.FiscalYear
	if year == 0 {
		year = now.Year()
	}
	finalized := in.Finalize || ev.outcome == entity.ControlOutcomeConforming

	for attempt := 1; ; attempt++ {
		rec, rect, err := uc.persist(ctx, caller, in, ev, year, finalized, now)
		if err == nil {
			uc.metrics.ControlSaved(rec.Outcome, rect != nil)
			uc.log.Info().
				Str("control_id", rec.ID).
				Str("assujetti_id", rec.AssujettiID).
				Str("agent_id", rec.AgentID).
				Str("outcome", rec.Outcome).
				Str("total", rec.Total.StringFixed(2)).
				Msg("control registrado")
			return toControlResponse(rec, rect), nil
		}
		if !domain.IsRetryableUniqueness(err) {
			return nil, err
		}
		if attempt >= fiscal.MaxIdentifierAttempts {
			return nil, fmt.Errorf("%w: %d intentos", domain.ErrIdentifierExhausted, attempt)
		}
	}
}

func (uc *UseCase) persist(ctx context.Context, caller jwt.Session, in dto.SaveControlRequest, ev evaluation, year int, finalized bool, now time.Time) (*entity.ControlRecord, *entity.RectificationNote, error) {
	rec := &entity.ControlRecord{
		ID:              uuid.New().String(),
		AssujettiID:     in.AssujettiID,
		AgentID:         caller.UserID,
		FiscalYear:      year,
		DeclaredTV:      in.DeclaredTV,
		DeclaredRadio:   in.DeclaredRadio,
		ObservedTV:      in.ObservedTV,
		ObservedRadio:   in.ObservedRadio,
		DeltaTV:         ev.eval.DeltaTV,
		DeltaRadio:      ev.eval.DeltaRadio,
		UnitPrice:       in.UnitPrice,
		Principal:       ev.eval.Principal,
		Penalty:         ev.eval.Penalty,
		Total:           ev.eval.Total,
		Currency:        uc.currency,
		Observed:        observedIdentity(in.Observed),
		IdentityConform: ev.identity.Conform,
		Mismatches:      ev.identity.Mismatches,
		Outcome:         ev.outcome,
		Observations:    strings.TrimSpace(in.Observations),
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		Status:          entity.ControlStatusDraft,
		CreatedAt:       now,
	}
	if finalized {
		rec.Status = entity.ControlStatusFinalized
		rec.FinalizedAt = &now
	}

	var rect *entity.RectificationNote
	if finalized && rec.Total.IsPositive() {
		var err error
		if rect, err = newRectification(rec, now); err != nil {
			return nil, nil, err
		}
	}

	err := uc.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		if err := r.Controls.Create(ctx, rec); err != nil {
			return err
		}
		if rect != nil {
			return r.Controls.CreateRectification(ctx, rect)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, rect, nil
}

// Finalize cierra un PV guardado en borrador y, si tiene importe, crea su nota de rectificación.
// Solo agentes y administradores; un PV ya finalizado devuelve domain.ErrAlreadyCompleted.
func (uc *UseCase) Finalize(ctx context.Context, caller jwt.Session, controlID string) (*dto.ControlResponse, error) {
	if caller.Role != entity.RoleAgent && caller.Role != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(controlID) == "" {
		return nil, fmt.Errorf("%w: id de control requerido", domain.ErrInvalidInput)
	}

	now := uc.now()
	for attempt := 1; ; attempt++ {
		rec, rect, err := uc.finalize(ctx, controlID, now)
		if err == nil {
			uc.log.Info().
				Str("control_id", rec.ID).
				Str("assujetti_id", rec.AssujettiID).
				Str("agent_id", caller.UserID).
				Str("total", rec.Total.StringFixed(2)).
				Msg("control finalizado")
			return toControlResponse(rec, rect), nil
		}
		if !domain.IsRetryableUniqueness(err) {
			return nil, err
		}
		if attempt >= fiscal.MaxIdentifierAttempts {
			return nil, fmt.Errorf("%w: %d intentos", domain.ErrIdentifierExhausted, attempt)
		}
	}
}

func (uc *UseCase) finalize(ctx context.Context, controlID string, now time.Time) (*entity.ControlRecord, *entity.RectificationNote, error) {
	var (
		rec  *entity.ControlRecord
		rect *entity.RectificationNote
	)
	err := uc.tx.RunInTx(ctx, func(r repository.TxRepos) error {
		var err error
		rec, err = r.Controls.LockByID(ctx, controlID)
		if err != nil {
			return fmt.Errorf("cargar control: %w", err)
		}
		if rec == nil {
			return fmt.Errorf("%w: control %s", domain.ErrNotFound, controlID)
		}
		if rec.Status != entity.ControlStatusDraft {
			return domain.ErrAlreadyCompleted
		}
		if err := r.Controls.MarkFinalized(ctx, rec.ID, now); err != nil {
			return err
		}
		rec.Status = entity.ControlStatusFinalized
		rec.FinalizedAt = &now
		if !rec.Total.IsPositive() {
			return nil
		}
		if rect, err = newRectification(rec, now); err != nil {
			return err
		}
		return r.Controls.CreateRectification(ctx, rect)
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, rect, nil
}

func newRectification(rec *entity.ControlRecord, now time.Time) (*entity.RectificationNote, error) {
	ref, err := fiscal.RectificationReference(rec.FiscalYear)
	if err != nil {
		return nil, err
	}
	return &entity.RectificationNote{
		ID:               uuid.New().String(),
		ControlID:        rec.ID,
		AssujettiID:      rec.AssujettiID,
		Principal:        rec.Principal,
		Penalty:          rec.Penalty,
		Total:            rec.Total,
		Currency:         rec.Currency,
		PaymentStatus:    entity.RectificationPending,
		PaymentReference: ref,
		CreatedAt:        now,
	}, nil
}

func checkClientAmount(field string, got *decimal.Decimal, want decimal.Decimal) error {
	if got == nil || got.Equal(want) {
		return nil
	}
	return fmt.Errorf("%w: %s %s no coincide con el cálculo %s", domain.ErrInvalidInput, field, got.String(), want.String())
}

func declaredIdentity(a *entity.Assujetti) entity.ObservedIdentity {
	return entity.ObservedIdentity{
		Name: a.Name, NIF: a.NIF, RCCM: a.RCCM, IDNat: a.IDNat,
		Representative: a.Representative, Address: a.Address,
	}
}

func observedIdentity(o dto.ObservedIdentityRequest) entity.ObservedIdentity {
	return entity.ObservedIdentity{
		Name: o.Name, NIF: o.NIF, RCCM: o.RCCM, IDNat: o.IDNat,
		Representative: o.Representative, Address: o.Address,
	}
}

func toEvaluationResponse(ev evaluation) dto.EvaluateControlResponse {
	return dto.EvaluateControlResponse{
		DeltaTV:         ev.eval.DeltaTV,
		DeltaRadio:      ev.eval.DeltaRadio,
		Principal:       ev.eval.Principal,
		Penalty:         ev.eval.Penalty,
		Total:           ev.eval.Total,
		IdentityConform: ev.identity.Conform,
		Mismatches:      ev.identity.Mismatches,
		Outcome:         ev.outcome,
	}
}

func toControlResponse(rec *entity.ControlRecord, rect *entity.RectificationNote) *dto.ControlResponse {
	out := &dto.ControlResponse{
		ID:          rec.ID,
		AssujettiID: rec.AssujettiID,
		FiscalYear:  rec.FiscalYear,
		Status:      rec.Status,
		Evaluation: dto.EvaluateControlResponse{
			DeltaTV:         rec.DeltaTV,
			DeltaRadio:      rec.DeltaRadio,
			Principal:       rec.Principal,
			Penalty:         rec.Penalty,
			Total:           rec.Total,
			IdentityConform: rec.IdentityConform,
			Mismatches:      rec.Mismatches,
			Outcome:         rec.Outcome,
		},
		CreatedAt: rec.CreatedAt,
	}
	if rect != nil {
		out.Rectification = &dto.RectificationResponse{
			ID:               rect.ID,
			Principal:        rect.Principal,
			Penalty:          rect.Penalty,
			Total:            rect.Total,
			Currency:         rect.Currency,
			PaymentStatus:    rect.PaymentStatus,
			PaymentReference: rect.PaymentReference,
		}
	}
	return out
}
