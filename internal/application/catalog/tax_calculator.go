package catalog

import (
	"context"
	"fmt"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

// TaxCalculator resuelve la categoría de una ubicación y busca la tarifa del catálogo.
// Solo lectura; seguro para uso concurrente.
type TaxCalculator struct {
	resolver *fiscal.HierarchyResolver
	rules    repository.TaxRuleRepository
}

// NewTaxCalculator construye el calculador.
func NewTaxCalculator(geo repository.GeographyRepository, rules repository.TaxRuleRepository) *TaxCalculator {
	return &TaxCalculator{resolver: fiscal.NewHierarchyResolver(geo), rules: rules}
}

// ResolveCategory delega en el resolvedor jerárquico.
func (c *TaxCalculator) ResolveCategory(ctx context.Context, locationID string) (fiscal.Resolution, error) {
	return c.resolver.ResolveCategory(ctx, locationID)
}

// PriceFor búsqueda exacta (categoría, clasificación). Sin tarifa por defecto:
// un par sin precio es un hueco de configuración y se reporta como domain.ErrRuleNotFound.
func (c *TaxCalculator) PriceFor(ctx context.Context, category, classification string) (*entity.TaxRule, error) {
	rule, err := c.rules.FindActive(ctx, category, classification)
	if err != nil {
		return nil, fmt.Errorf("buscar tarifa: %w", err)
	}
	if rule == nil {
		return nil, fmt.Errorf("%w: (%s, %s)", domain.ErrRuleNotFound, category, classification)
	}
	return rule, nil
}

// CalculateTax operación calculateTax: ubicación + clasificación → precio unitario y moneda.
func (c *TaxCalculator) CalculateTax(ctx context.Context, in dto.CalculateTaxRequest) (*dto.CalculateTaxResponse, error) {
	if in.LocationID == "" || !entity.IsValidClassification(in.EntityType) {
		return nil, domain.ErrInvalidInput
	}
	res, err := c.resolver.ResolveCategory(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}
	rule, err := c.PriceFor(ctx, res.Category, in.EntityType)
	if err != nil {
		return nil, err
	}
	return &dto.CalculateTaxResponse{
		Price:          rule.UnitPrice,
		Currency:       rule.Currency,
		Category:       res.Category,
		CategoryNodeID: res.SourceNodeID,
	}, nil
}
