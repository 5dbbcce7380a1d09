package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

var _ repository.TaxationNoteRepository = (*TaxationNoteRepo)(nil)

const noteColumns = `id, number, declaration_id, assujetti_id, fiscal_year, gross_amount, net_amount, penalty_amount,
	total_due, currency, total_due_local, local_currency, exchange_rate, status, issue_date, due_date, created_at, updated_at`

// TaxationNoteRepo implementación de TaxationNoteRepository (usable con pool o tx).
type TaxationNoteRepo struct {
	q Querier
}

// NewTaxationNoteRepository construye el adaptador.
func NewTaxationNoteRepository(q Querier) *TaxationNoteRepo {
	return &TaxationNoteRepo{q: q}
}

// Create persiste la nota. Número repetido → domain.ErrDuplicateNoteNumber.
func (r *TaxationNoteRepo) Create(ctx context.Context, n *entity.TaxationNote) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO taxation_notes (`+noteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		n.ID, n.Number, n.DeclarationID, n.AssujettiID, n.FiscalYear, n.GrossAmount, n.NetAmount, n.PenaltyAmount,
		n.TotalDue, n.Currency, n.TotalDueLocal, n.LocalCurrency, n.ExchangeRate, n.Status, n.IssueDate, n.DueDate,
		n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateNoteNumber, n.Number)
		}
		return fmt.Errorf("insert taxation note: %w", err)
	}
	return nil
}

// GetByID obtiene una nota.
func (r *TaxationNoteRepo) GetByID(ctx context.Context, id string) (*entity.TaxationNote, error) {
	return r.scanOne(ctx, `SELECT `+noteColumns+` FROM taxation_notes WHERE id = $1`, id)
}

// GetByNumber obtiene una nota por su número.
func (r *TaxationNoteRepo) GetByNumber(ctx context.Context, number string) (*entity.TaxationNote, error) {
	return r.scanOne(ctx, `SELECT `+noteColumns+` FROM taxation_notes WHERE number = $1`, number)
}

// GetPayableForYear nota emitida, vencida o pagada más reciente del ejercicio.
func (r *TaxationNoteRepo) GetPayableForYear(ctx context.Context, assujettiID string, fiscalYear int) (*entity.TaxationNote, error) {
	return r.scanOne(ctx, `
		SELECT `+noteColumns+` FROM taxation_notes
		WHERE assujetti_id = $1 AND fiscal_year = $2 AND status IN ('issued', 'overdue', 'paid')
		ORDER BY created_at DESC LIMIT 1`, assujettiID, fiscalYear)
}

func (r *TaxationNoteRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.TaxationNote, error) {
	var n entity.TaxationNote
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&n.ID, &n.Number, &n.DeclarationID, &n.AssujettiID, &n.FiscalYear, &n.GrossAmount, &n.NetAmount, &n.PenaltyAmount,
		&n.TotalDue, &n.Currency, &n.TotalDueLocal, &n.LocalCurrency, &n.ExchangeRate, &n.Status, &n.IssueDate, &n.DueDate,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get taxation note: %w", err)
	}
	return &n, nil
}
