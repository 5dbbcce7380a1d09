package repository

import (
	"context"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// TaxRuleRepository catálogo de tarifas por (categoría, clasificación).
type TaxRuleRepository interface {
	// FindActive devuelve (nil, nil) si no hay tarifa activa para el par.
	FindActive(ctx context.Context, category, classification string) (*entity.TaxRule, error)
	List(ctx context.Context) ([]*entity.TaxRule, error)
	// Upsert reemplaza la tarifa activa del par.
	Upsert(ctx context.Context, rule *entity.TaxRule) error
}
