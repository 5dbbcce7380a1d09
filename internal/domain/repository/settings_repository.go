package repository

import "context"

// Claves de parámetros del proceso.
const (
	SettingExchangeRate = "exchange_rate_usd_local"
)

// SettingsRepository parámetros clave/valor administrables.
type SettingsRepository interface {
	// Get devuelve ok=false si la clave no está definida.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
