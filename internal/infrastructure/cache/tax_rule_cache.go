// Package cache lectura con caché Redis del catálogo de tarifas.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

const (
	keyPrefix = "redevance:tax_rule:"
	// missMarker registra en caché la ausencia de tarifa para el par.
	missMarker = "-"
)

var _ repository.TaxRuleRepository = (*TaxRuleCache)(nil)

type cachedRule struct {
	ID             string          `json:"id"`
	Category       string          `json:"category"`
	Classification string          `json:"classification"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Currency       string          `json:"currency"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TaxRuleCache decorador read-through sobre un TaxRuleRepository.
// Con client nil delega todo en el repositorio. Un fallo de Redis nunca falla la consulta.
type TaxRuleCache struct {
	next   repository.TaxRuleRepository
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewTaxRuleCache construye el decorador.
func NewTaxRuleCache(next repository.TaxRuleRepository, client *redis.Client, ttl time.Duration, log *logger.Logger) *TaxRuleCache {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TaxRuleCache{next: next, client: client, ttl: ttl, log: log}
}

func key(category, classification string) string {
	return keyPrefix + category + ":" + classification
}

// FindActive consulta Redis y, en fallo o ausencia, el repositorio.
func (c *TaxRuleCache) FindActive(ctx context.Context, category, classification string) (*entity.TaxRule, error) {
	if c.client == nil {
		return c.next.FindActive(ctx, category, classification)
	}
	k := key(category, classification)
	raw, err := c.client.Get(ctx, k).Result()
	switch {
	case err == nil:
		if raw == missMarker {
			return nil, nil
		}
		var cr cachedRule
		if jerr := json.Unmarshal([]byte(raw), &cr); jerr == nil {
			return toEntity(cr), nil
		}
		c.log.Warn().Str("key", k).Msg("entrada de caché corrupta, se ignora")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", k).Msg("redis no disponible, lectura directa")
	}

	rule, err := c.next.FindActive(ctx, category, classification)
	if err != nil {
		return nil, err
	}
	value := missMarker
	if rule != nil {
		b, jerr := json.Marshal(fromEntity(rule))
		if jerr != nil {
			return rule, nil
		}
		value = string(b)
	}
	if serr := c.client.Set(ctx, k, value, c.ttl).Err(); serr != nil {
		c.log.Warn().Err(serr).Str("key", k).Msg("no se pudo escribir en caché")
	}
	return rule, nil
}

// List no se cachea (uso administrativo).
func (c *TaxRuleCache) List(ctx context.Context) ([]*entity.TaxRule, error) {
	return c.next.List(ctx)
}

// Upsert escribe en el repositorio e invalida la entrada del par.
func (c *TaxRuleCache) Upsert(ctx context.Context, rule *entity.TaxRule) error {
	if err := c.next.Upsert(ctx, rule); err != nil {
		return err
	}
	if c.client != nil {
		if err := c.client.Del(ctx, key(rule.Category, rule.Classification)).Err(); err != nil {
			c.log.Warn().Err(err).Str("category", rule.Category).Str("classification", rule.Classification).Msg("no se pudo invalidar la caché")
		}
	}
	return nil
}

func fromEntity(r *entity.TaxRule) cachedRule {
	return cachedRule{
		ID: r.ID, Category: r.Category, Classification: r.Classification,
		UnitPrice: r.UnitPrice, Currency: r.Currency, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func toEntity(c cachedRule) *entity.TaxRule {
	return &entity.TaxRule{
		ID: c.ID, Category: c.Category, Classification: c.Classification,
		UnitPrice: c.UnitPrice, Currency: c.Currency, IsActive: true,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}
