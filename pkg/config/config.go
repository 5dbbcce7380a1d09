package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultPaymentTokenSecret es el secreto documentado de fábrica. Debe reemplazarse en cada despliegue.
const DefaultPaymentTokenSecret = "change-me-redevance-secret"

// DefaultExchangeRate tasa USD→CDF usada cuando no hay tasa configurada en la base.
const DefaultExchangeRate = "2850"

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Log       LogConfig
	Redis     RedisConfig
	Redevance RedevanceConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, test, staging, production
	Name string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool // aplica las migraciones embebidas al arrancar
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig nivel del logger (trace, debug, info, warn, error).
type LogConfig struct {
	Level string
}

// RedisConfig caché del catálogo de tarifas. URL vacía = sin caché.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// RedevanceConfig parámetros fiscales de la redevance.
type RedevanceConfig struct {
	PaymentTokenSecret   string
	PaymentTokenPrefix   string
	ExchangeRateFallback decimal.Decimal // USD → moneda local
	NoteDueDays          int
	BaseCurrency         string
	LocalCurrency        string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, PAYMENT_TOKEN_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	rate, err := decimal.NewFromString(getString(v, "EXCHANGE_RATE_FALLBACK", DefaultExchangeRate))
	if err != nil {
		return nil, fmt.Errorf("config: EXCHANGE_RATE_FALLBACK inválido: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "redevance-api"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "redevance"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "redevance-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			URL:      getString(v, "REDIS_URL", ""),
			CacheTTL: time.Duration(getInt(v, "REDIS_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Redevance: RedevanceConfig{
			PaymentTokenSecret:   getString(v, "PAYMENT_TOKEN_SECRET", DefaultPaymentTokenSecret),
			PaymentTokenPrefix:   getString(v, "PAYMENT_TOKEN_PREFIX", "RDV"),
			ExchangeRateFallback: rate,
			NoteDueDays:          getInt(v, "NOTE_DUE_DAYS", 30),
			BaseCurrency:         getString(v, "BASE_CURRENCY", "USD"),
			LocalCurrency:        getString(v, "LOCAL_CURRENCY", "CDF"),
		},
	}

	return cfg, nil
}

// Validate verifica los valores obligatorios antes de arrancar el servidor.
// Fuera de development/test el secreto de tokens de pago no puede quedar con el valor por defecto.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET es obligatorio")
	}
	if c.Redevance.PaymentTokenSecret == "" {
		return errors.New("config: PAYMENT_TOKEN_SECRET es obligatorio")
	}
	if c.Redevance.PaymentTokenSecret == DefaultPaymentTokenSecret && !c.IsLocal() {
		return errors.New("config: PAYMENT_TOKEN_SECRET debe reemplazar el valor por defecto en este entorno")
	}
	if !c.Redevance.ExchangeRateFallback.IsPositive() {
		return errors.New("config: EXCHANGE_RATE_FALLBACK debe ser positivo")
	}
	if c.Redevance.NoteDueDays <= 0 {
		return errors.New("config: NOTE_DUE_DAYS debe ser positivo")
	}
	return nil
}

// IsLocal indica si el entorno es de desarrollo o pruebas.
func (c *Config) IsLocal() bool {
	return c.App.Env == "development" || c.App.Env == "test"
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
