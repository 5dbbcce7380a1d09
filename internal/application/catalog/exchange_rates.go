package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/repository"
)

// ExchangeRates tasa USD → moneda local: parámetro administrable con respaldo fijo si no está definido.
type ExchangeRates struct {
	settings repository.SettingsRepository
	fallback decimal.Decimal
}

// NewExchangeRates construye el proveedor con la tasa de respaldo de la configuración.
func NewExchangeRates(settings repository.SettingsRepository, fallback decimal.Decimal) *ExchangeRates {
	return &ExchangeRates{settings: settings, fallback: fallback}
}

// Current devuelve la tasa vigente. isFallback indica que no había tasa configurada.
func (r *ExchangeRates) Current(ctx context.Context) (rate decimal.Decimal, isFallback bool, err error) {
	raw, ok, err := r.settings.Get(ctx, repository.SettingExchangeRate)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("leer tasa de cambio: %w", err)
	}
	if !ok || raw == "" {
		return r.fallback, true, nil
	}
	rate, err = decimal.NewFromString(raw)
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, false, fmt.Errorf("%w: tasa de cambio almacenada inválida %q", domain.ErrIntegrity, raw)
	}
	return rate, false, nil
}

// Set fija la tasa vigente.
func (r *ExchangeRates) Set(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: la tasa debe ser positiva", domain.ErrInvalidInput)
	}
	return r.settings.Set(ctx, repository.SettingExchangeRate, rate.String())
}

// Convert convierte un monto a moneda local, redondeado a 2 decimales.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}
