//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/infrastructure/cache"
	"github.com/jhoicas/redevance-api/internal/testutil/memstore"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestTaxRuleCache_LecturaYCacheo(t *testing.T) {
	client := newRedis(t)
	s := memstore.New()
	s.SeedRules()
	c := cache.NewTaxRuleCache(s.TaxRules(), client, time.Minute, nil)
	ctx := context.Background()

	rule, err := c.FindActive(ctx, entity.CategoryUrbaine, entity.ClassificationPM)
	require.NoError(t, err)
	require.NotNil(t, rule)

	n, err := client.Exists(ctx, "redevance:tax_rule:URBAINE:pm").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	again, err := c.FindActive(ctx, entity.CategoryUrbaine, entity.ClassificationPM)
	require.NoError(t, err)
	assert.True(t, again.UnitPrice.Equal(rule.UnitPrice))
}

func TestTaxRuleCache_UpsertInvalida(t *testing.T) {
	client := newRedis(t)
	s := memstore.New()
	s.SeedRules()
	c := cache.NewTaxRuleCache(s.TaxRules(), client, time.Minute, nil)
	ctx := context.Background()

	_, err := c.FindActive(ctx, entity.CategoryUrbaine, entity.ClassificationPM)
	require.NoError(t, err)
	require.NoError(t, c.Upsert(ctx, &entity.TaxRule{
		ID: "nueva", Category: entity.CategoryUrbaine, Classification: entity.ClassificationPM,
		UnitPrice: decimal.NewFromInt(13), Currency: "USD", IsActive: true,
	}))

	rule, err := c.FindActive(ctx, entity.CategoryUrbaine, entity.ClassificationPM)
	require.NoError(t, err)
	assert.True(t, rule.UnitPrice.Equal(decimal.NewFromInt(13)))
}

func TestTaxRuleCache_AusenciaCacheada(t *testing.T) {
	client := newRedis(t)
	c := cache.NewTaxRuleCache(memstore.New().TaxRules(), client, time.Minute, nil)
	ctx := context.Background()

	rule, err := c.FindActive(ctx, entity.CategoryRurale, entity.ClassificationPPTA)
	require.NoError(t, err)
	assert.Nil(t, rule)

	v, err := client.Get(ctx, "redevance:tax_rule:RURALE:ppta").Result()
	require.NoError(t, err)
	assert.Equal(t, "-", v)
}
