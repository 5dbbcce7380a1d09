package repository

import (
	"context"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// GeographyRepository puerto de lectura del árbol geográfico.
type GeographyRepository interface {
	// GetByID devuelve (nil, nil) si el nodo no existe.
	GetByID(ctx context.Context, id string) (*entity.GeographyNode, error)
	// ListChildren lista los hijos activos; parentID nil lista las raíces.
	ListChildren(ctx context.Context, parentID *string) ([]*entity.GeographyNode, error)
}
