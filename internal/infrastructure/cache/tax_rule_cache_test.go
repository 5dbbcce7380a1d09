package cache_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/infrastructure/cache"
	"github.com/jhoicas/redevance-api/internal/testutil/memstore"
)

func TestTaxRuleCache_SinClienteDelega(t *testing.T) {
	s := memstore.New()
	s.SeedRules()
	c := cache.NewTaxRuleCache(s.TaxRules(), nil, 0, nil)

	rule, err := c.FindActive(context.Background(), entity.CategoryUrbaine, entity.ClassificationPMTA)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.True(t, rule.UnitPrice.Equal(decimal.NewFromInt(15)))

	missing, err := c.FindActive(context.Background(), entity.CategoryRurale, entity.ClassificationPPTA)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTaxRuleCache_SinClienteUpsert(t *testing.T) {
	s := memstore.New()
	c := cache.NewTaxRuleCache(s.TaxRules(), nil, 0, nil)

	require.NoError(t, c.Upsert(context.Background(), &entity.TaxRule{
		ID: "r", Category: entity.CategoryRurale, Classification: entity.ClassificationPM,
		UnitPrice: decimal.NewFromInt(4), Currency: "USD", IsActive: true,
	}))
	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
