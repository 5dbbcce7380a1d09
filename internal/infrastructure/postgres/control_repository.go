package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

var _ repository.ControlRepository = (*ControlRepo)(nil)

const controlColumns = `id, assujetti_id, agent_id, fiscal_year, declared_tv, declared_radio, observed_tv, observed_radio,
	delta_tv, delta_radio, unit_price, principal, penalty, total, currency, observed, identity_conform, mismatches,
	outcome, observations, latitude, longitude, status, created_at, finalized_at`

// observedJSON forma persistida de la identidad constatada.
type observedJSON struct {
	Name           string `json:"name,omitempty"`
	NIF            string `json:"nif,omitempty"`
	RCCM           string `json:"rccm,omitempty"`
	IDNat          string `json:"id_nat,omitempty"`
	Representative string `json:"representative,omitempty"`
	Address        string `json:"address,omitempty"`
}

// ControlRepo PV de control y notas de rectificación (usable con pool o tx).
type ControlRepo struct {
	q Querier
}

// NewControlRepository construye el adaptador.
func NewControlRepository(q Querier) *ControlRepo {
	return &ControlRepo{q: q}
}

// Create persiste el PV.
func (r *ControlRepo) Create(ctx context.Context, c *entity.ControlRecord) error {
	observed, err := json.Marshal(observedJSON(c.Observed))
	if err != nil {
		return fmt.Errorf("encode observed identity: %w", err)
	}
	mismatches := c.Mismatches
	if mismatches == nil {
		mismatches = []string{}
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO control_records (`+controlColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		c.ID, c.AssujettiID, c.AgentID, c.FiscalYear, c.DeclaredTV, c.DeclaredRadio, c.ObservedTV, c.ObservedRadio,
		c.DeltaTV, c.DeltaRadio, c.UnitPrice, c.Principal, c.Penalty, c.Total, c.Currency, observed, c.IdentityConform, mismatches,
		c.Outcome, c.Observations, c.Latitude, c.Longitude, c.Status, c.CreatedAt, c.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("insert control record: %w", err)
	}
	return nil
}

// CreateRectification persiste la nota ligada al PV. Referencia repetida → domain.ErrDuplicateReference.
func (r *ControlRepo) CreateRectification(ctx context.Context, n *entity.RectificationNote) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO rectification_notes (id, control_id, assujetti_id, principal, penalty, total, currency, payment_status, payment_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.ControlID, n.AssujettiID, n.Principal, n.Penalty, n.Total, n.Currency, n.PaymentStatus, n.PaymentReference, n.CreatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, n.PaymentReference)
		}
		return fmt.Errorf("insert rectification note: %w", err)
	}
	return nil
}

// GetByID obtiene un PV.
func (r *ControlRepo) GetByID(ctx context.Context, id string) (*entity.ControlRecord, error) {
	return r.scanOne(ctx, `SELECT `+controlColumns+` FROM control_records WHERE id = $1`, id)
}

// LockByID SELECT ... FOR UPDATE: serializa finalizaciones concurrentes del mismo PV.
func (r *ControlRepo) LockByID(ctx context.Context, id string) (*entity.ControlRecord, error) {
	return r.scanOne(ctx, `SELECT `+controlColumns+` FROM control_records WHERE id = $1 FOR UPDATE`, id)
}

// MarkFinalized solo actualiza PV en borrador.
func (r *ControlRepo) MarkFinalized(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE control_records SET status = $2, finalized_at = $3
		WHERE id = $1 AND status = $4`,
		id, entity.ControlStatusFinalized, at, entity.ControlStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("finalize control record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyCompleted
	}
	return nil
}

func (r *ControlRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.ControlRecord, error) {
	var (
		c        entity.ControlRecord
		observed []byte
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.AssujettiID, &c.AgentID, &c.FiscalYear, &c.DeclaredTV, &c.DeclaredRadio, &c.ObservedTV, &c.ObservedRadio,
		&c.DeltaTV, &c.DeltaRadio, &c.UnitPrice, &c.Principal, &c.Penalty, &c.Total, &c.Currency, &observed, &c.IdentityConform, &c.Mismatches,
		&c.Outcome, &c.Observations, &c.Latitude, &c.Longitude, &c.Status, &c.CreatedAt, &c.FinalizedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get control record: %w", err)
	}
	var o observedJSON
	if len(observed) > 0 {
		if err := json.Unmarshal(observed, &o); err != nil {
			return nil, fmt.Errorf("decode observed identity: %w", err)
		}
	}
	c.Observed = entity.ObservedIdentity(o)
	return &c, nil
}

// GetRectificationByControl nota de rectificación del PV o (nil, nil).
func (r *ControlRepo) GetRectificationByControl(ctx context.Context, controlID string) (*entity.RectificationNote, error) {
	var n entity.RectificationNote
	err := r.q.QueryRow(ctx, `
		SELECT id, control_id, assujetti_id, principal, penalty, total, currency, payment_status, payment_reference, created_at
		FROM rectification_notes WHERE control_id = $1`, controlID,
	).Scan(&n.ID, &n.ControlID, &n.AssujettiID, &n.Principal, &n.Penalty, &n.Total, &n.Currency, &n.PaymentStatus, &n.PaymentReference, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rectification note: %w", err)
	}
	return &n, nil
}
