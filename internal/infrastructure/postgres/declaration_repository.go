package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

var _ repository.DeclarationRepository = (*DeclarationRepo)(nil)

const declarationColumns = `id, assujetti_id, fiscal_year, tv_count, radio_count, total_devices, status, created_at, validated_at`

// DeclarationRepo implementación de DeclarationRepository (usable con pool o tx).
type DeclarationRepo struct {
	q Querier
}

// NewDeclarationRepository construye el adaptador.
func NewDeclarationRepository(q Querier) *DeclarationRepo {
	return &DeclarationRepo{q: q}
}

// Create persiste la cabecera de la declaración.
func (r *DeclarationRepo) Create(ctx context.Context, d *entity.Declaration) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO declarations (`+declarationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.AssujettiID, d.FiscalYear, d.TVCount, d.RadioCount, d.TotalDevices, d.Status, d.CreatedAt, d.ValidatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert declaration: %w", err)
	}
	return nil
}

// CreateLine persiste una línea por categoría de aparato.
func (r *DeclarationRepo) CreateLine(ctx context.Context, l *entity.DeclarationLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO declaration_lines (id, declaration_id, device_category, quantity, unit_price, amount, remark)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.DeclarationID, l.DeviceCategory, l.Quantity, l.UnitPrice, l.Amount, l.Remark,
	)
	if err != nil {
		return fmt.Errorf("insert declaration line: %w", err)
	}
	return nil
}

// GetByID obtiene una declaración.
func (r *DeclarationRepo) GetByID(ctx context.Context, id string) (*entity.Declaration, error) {
	return r.scanOne(ctx, `SELECT `+declarationColumns+` FROM declarations WHERE id = $1`, id)
}

// GetLatestByAssujetti declaración más reciente del assujetti.
func (r *DeclarationRepo) GetLatestByAssujetti(ctx context.Context, assujettiID string) (*entity.Declaration, error) {
	return r.scanOne(ctx,
		`SELECT `+declarationColumns+` FROM declarations WHERE assujetti_id = $1 ORDER BY created_at DESC LIMIT 1`,
		assujettiID)
}

// GetLines líneas de la declaración (TV primero).
func (r *DeclarationRepo) GetLines(ctx context.Context, declarationID string) ([]*entity.DeclarationLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, declaration_id, device_category, quantity, unit_price, amount, remark
		FROM declaration_lines WHERE declaration_id = $1
		ORDER BY CASE device_category WHEN 'tv' THEN 0 ELSE 1 END`, declarationID)
	if err != nil {
		return nil, fmt.Errorf("list declaration lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.DeclarationLine
	for rows.Next() {
		var l entity.DeclarationLine
		if err := rows.Scan(&l.ID, &l.DeclarationID, &l.DeviceCategory, &l.Quantity, &l.UnitPrice, &l.Amount, &l.Remark); err != nil {
			return nil, fmt.Errorf("scan declaration line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

func (r *DeclarationRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Declaration, error) {
	var d entity.Declaration
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&d.ID, &d.AssujettiID, &d.FiscalYear, &d.TVCount, &d.RadioCount, &d.TotalDevices, &d.Status, &d.CreatedAt, &d.ValidatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get declaration: %w", err)
	}
	return &d, nil
}
