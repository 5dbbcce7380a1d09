// Package fiscal reúne los servicios de dominio de la redevance: resolución de categoría
// por jerarquía geográfica, clasificación de la entidad, tarificación de aparatos,
// motor de discrepancias de control y generación de identificadores.
package fiscal

import (
	"context"
	"fmt"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// MaxHierarchyDepth tope de saltos al recorrer ancestros. El árbol real tiene 4 niveles.
const MaxHierarchyDepth = 16

// NodeSource lectura de nodos geográficos por ID ((nil, nil) si no existe).
type NodeSource interface {
	GetByID(ctx context.Context, id string) (*entity.GeographyNode, error)
}

// Resolution resultado de la resolución: categoría y nodo que la aporta.
type Resolution struct {
	Category     string
	SourceNodeID string
	Hops         int // 0 = el propio nodo lleva la categoría
}

// HierarchyResolver recorre la cadena de padres hasta encontrar un nodo con categoría.
// Solo lectura, sin efectos secundarios.
type HierarchyResolver struct {
	nodes    NodeSource
	maxDepth int
}

// NewHierarchyResolver construye el resolvedor con el tope por defecto.
func NewHierarchyResolver(nodes NodeSource) *HierarchyResolver {
	return &HierarchyResolver{nodes: nodes, maxDepth: MaxHierarchyDepth}
}

// ResolveCategory devuelve la primera categoría no nula en la cadena nodo → raíz.
//
// Errores:
//   - domain.ErrCategoryNotFound si el nodo no existe o ninguna raíz tiene categoría.
//   - domain.ErrIntegrity si hay un ciclo, un padre inexistente o se supera el tope.
func (r *HierarchyResolver) ResolveCategory(ctx context.Context, nodeID string) (Resolution, error) {
	if nodeID == "" {
		return Resolution{}, fmt.Errorf("%w: ubicación vacía", domain.ErrInvalidInput)
	}
	visited := make(map[string]struct{}, 4)
	currentID := nodeID
	for hops := 0; hops <= r.maxDepth; hops++ {
		if _, seen := visited[currentID]; seen {
			return Resolution{}, fmt.Errorf("%w: ciclo en la jerarquía geográfica en el nodo %s", domain.ErrIntegrity, currentID)
		}
		visited[currentID] = struct{}{}

		node, err := r.nodes.GetByID(ctx, currentID)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolver categoría: %w", err)
		}
		if node == nil {
			if hops == 0 {
				return Resolution{}, fmt.Errorf("%w: nodo %s inexistente", domain.ErrCategoryNotFound, nodeID)
			}
			return Resolution{}, fmt.Errorf("%w: padre %s inexistente", domain.ErrIntegrity, currentID)
		}
		if node.Category != nil && *node.Category != "" {
			return Resolution{Category: *node.Category, SourceNodeID: node.ID, Hops: hops}, nil
		}
		if node.ParentID == nil || *node.ParentID == "" {
			return Resolution{}, fmt.Errorf("%w: nodo %s sin ancestro categorizado", domain.ErrCategoryNotFound, nodeID)
		}
		currentID = *node.ParentID
	}
	return Resolution{}, fmt.Errorf("%w: jerarquía de %s supera %d niveles", domain.ErrIntegrity, nodeID, r.maxDepth)
}
