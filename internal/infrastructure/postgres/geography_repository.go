package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

var _ repository.GeographyRepository = (*GeographyRepo)(nil)

// GeographyRepo lectura del árbol geográfico.
type GeographyRepo struct {
	q Querier
}

// NewGeographyRepository construye el adaptador.
func NewGeographyRepository(q Querier) *GeographyRepo {
	return &GeographyRepo{q: q}
}

// GetByID obtiene un nodo (activo o no: la herencia de categoría recorre igual los inactivos).
func (r *GeographyRepo) GetByID(ctx context.Context, id string) (*entity.GeographyNode, error) {
	var n entity.GeographyNode
	err := r.q.QueryRow(ctx,
		`SELECT id, name, level, parent_id, category, is_active FROM geographies WHERE id = $1`, id,
	).Scan(&n.ID, &n.Name, &n.Level, &n.ParentID, &n.Category, &n.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get geography: %w", err)
	}
	return &n, nil
}

// ListChildren lista hijos activos ordenados por nombre; parentID nil lista las provincias.
func (r *GeographyRepo) ListChildren(ctx context.Context, parentID *string) ([]*entity.GeographyNode, error) {
	query := `
		SELECT id, name, level, parent_id, category, is_active
		FROM geographies
		WHERE is_active AND parent_id IS NOT DISTINCT FROM $1
		ORDER BY name`
	rows, err := r.q.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("list geographies: %w", err)
	}
	defer rows.Close()
	var list []*entity.GeographyNode
	for rows.Next() {
		var n entity.GeographyNode
		if err := rows.Scan(&n.ID, &n.Name, &n.Level, &n.ParentID, &n.Category, &n.IsActive); err != nil {
			return nil, fmt.Errorf("scan geography: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}
