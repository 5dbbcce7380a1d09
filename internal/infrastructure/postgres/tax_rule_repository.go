package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

var _ repository.TaxRuleRepository = (*TaxRuleRepo)(nil)

const taxRuleColumns = `id, category, classification, unit_price, currency, is_active, created_at, updated_at`

// TaxRuleRepo catálogo de tarifas.
type TaxRuleRepo struct {
	pool *pgxpool.Pool
}

// NewTaxRuleRepository construye el adaptador.
func NewTaxRuleRepository(pool *pgxpool.Pool) *TaxRuleRepo {
	return &TaxRuleRepo{pool: pool}
}

// FindActive búsqueda exacta por (categoría, clasificación).
func (r *TaxRuleRepo) FindActive(ctx context.Context, category, classification string) (*entity.TaxRule, error) {
	var t entity.TaxRule
	err := r.pool.QueryRow(ctx,
		`SELECT `+taxRuleColumns+` FROM tax_rules WHERE category = $1 AND classification = $2 AND is_active`,
		category, classification,
	).Scan(&t.ID, &t.Category, &t.Classification, &t.UnitPrice, &t.Currency, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find tax rule: %w", err)
	}
	return &t, nil
}

// List tarifas activas.
func (r *TaxRuleRepo) List(ctx context.Context) ([]*entity.TaxRule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taxRuleColumns+` FROM tax_rules WHERE is_active ORDER BY category, classification`)
	if err != nil {
		return nil, fmt.Errorf("list tax rules: %w", err)
	}
	defer rows.Close()
	var list []*entity.TaxRule
	for rows.Next() {
		var t entity.TaxRule
		if err := rows.Scan(&t.ID, &t.Category, &t.Classification, &t.UnitPrice, &t.Currency, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tax rule: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// Upsert desactiva la tarifa vigente del par e inserta la nueva, en una transacción.
func (r *TaxRuleRepo) Upsert(ctx context.Context, rule *entity.TaxRule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE tax_rules SET is_active = FALSE, updated_at = NOW() WHERE category = $1 AND classification = $2 AND is_active`,
		rule.Category, rule.Classification,
	); err != nil {
		return fmt.Errorf("deactivate tax rule: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO tax_rules (`+taxRuleColumns+`) VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)`,
		rule.ID, rule.Category, rule.Classification, rule.UnitPrice, rule.Currency, rule.CreatedAt, rule.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert tax rule: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
