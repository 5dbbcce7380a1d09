package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/redevance-api/internal/application/dto"
	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

// AdminUseCase administración del catálogo de tarifas, la tasa de cambio y consulta geográfica.
type AdminUseCase struct {
	geo   repository.GeographyRepository
	rules repository.TaxRuleRepository
	rates *ExchangeRates
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(geo repository.GeographyRepository, rules repository.TaxRuleRepository, rates *ExchangeRates) *AdminUseCase {
	return &AdminUseCase{geo: geo, rules: rules, rates: rates}
}

// ListGeography hijos activos de parentID (raíces si vacío).
func (uc *AdminUseCase) ListGeography(ctx context.Context, parentID string) ([]dto.GeographyNodeResponse, error) {
	var parent *string
	if parentID != "" {
		parent = &parentID
	}
	nodes, err := uc.geo.ListChildren(ctx, parent)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GeographyNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, dto.GeographyNodeResponse{
			ID: n.ID, Name: n.Name, Level: n.Level, ParentID: n.ParentID, Category: n.Category,
		})
	}
	return out, nil
}

// UpsertRule reemplaza la tarifa activa de un par (categoría, clasificación).
func (uc *AdminUseCase) UpsertRule(ctx context.Context, in dto.UpsertTaxRuleRequest) (*dto.TaxRuleResponse, error) {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if !entity.IsValidCategory(in.Category) || !entity.IsValidClassification(in.Classification) {
		return nil, domain.ErrInvalidInput
	}
	if in.UnitPrice.IsNegative() || !fiscal.IsMoneyAmount(in.UnitPrice) || len(in.Currency) != 3 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	rule := &entity.TaxRule{
		ID:             uuid.New().String(),
		Category:       in.Category,
		Classification: in.Classification,
		UnitPrice:      in.UnitPrice,
		Currency:       in.Currency,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.rules.Upsert(ctx, rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// ListRules lista el catálogo vigente.
func (uc *AdminUseCase) ListRules(ctx context.Context) ([]dto.TaxRuleResponse, error) {
	rules, err := uc.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaxRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, *toRuleResponse(r))
	}
	return out, nil
}

// SetExchangeRate fija la tasa de cambio del proceso.
func (uc *AdminUseCase) SetExchangeRate(ctx context.Context, in dto.ExchangeRateRequest) (*dto.ExchangeRateResponse, error) {
	if err := uc.rates.Set(ctx, in.Rate); err != nil {
		return nil, err
	}
	return &dto.ExchangeRateResponse{Rate: in.Rate}, nil
}

// GetExchangeRate devuelve la tasa vigente.
func (uc *AdminUseCase) GetExchangeRate(ctx context.Context) (*dto.ExchangeRateResponse, error) {
	rate, fallback, err := uc.rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ExchangeRateResponse{Rate: rate, IsFallback: fallback}, nil
}

func toRuleResponse(r *entity.TaxRule) *dto.TaxRuleResponse {
	return &dto.TaxRuleResponse{
		ID:             r.ID,
		Category:       r.Category,
		Classification: r.Classification,
		UnitPrice:      r.UnitPrice,
		Currency:       r.Currency,
	}
}
