package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/redevance-api/docs"
	"github.com/jhoicas/redevance-api/internal/application/auth"
	"github.com/jhoicas/redevance-api/internal/application/catalog"
	"github.com/jhoicas/redevance-api/internal/application/control"
	"github.com/jhoicas/redevance-api/internal/application/identification"
	"github.com/jhoicas/redevance-api/internal/application/onboarding"
	"github.com/jhoicas/redevance-api/internal/application/payment"
	infracache "github.com/jhoicas/redevance-api/internal/infrastructure/cache"
	inframetrics "github.com/jhoicas/redevance-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/redevance-api/internal/infrastructure/pdf"
	"github.com/jhoicas/redevance-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/redevance-api/internal/interfaces/http"
	"github.com/jhoicas/redevance-api/pkg/config"
	"github.com/jhoicas/redevance-api/pkg/logger"
	"github.com/jhoicas/redevance-api/pkg/paytoken"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.RunMigrations(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	redisClient, err := infracache.NewClient(ctx, cfg.Redis)
	if err != nil {
		// La caché es opcional: sin Redis se lee directo de PostgreSQL.
		log.Warn().Err(err).Msg("redis no disponible, catálogo sin caché")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	userRepo := postgres.NewUserRepository(pool)
	assujettiRepo := postgres.NewAssujettiRepository(pool)
	declarationRepo := postgres.NewDeclarationRepository(pool)
	noteRepo := postgres.NewTaxationNoteRepository(pool)
	onboardingRepo := postgres.NewOnboardingRepository(pool)
	geoRepo := postgres.NewGeographyRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	ruleRepo := infracache.NewTaxRuleCache(
		postgres.NewTaxRuleRepository(pool), redisClient, cfg.Redis.CacheTTL, log.Named("tax_rule_cache"),
	)
	txRunner := postgres.NewTxRunner(pool)

	signer, err := paytoken.NewSigner(cfg.Redevance.PaymentTokenSecret, cfg.Redevance.PaymentTokenPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("firmador de códigos de pago")
	}
	metrics := inframetrics.New()

	authUC := auth.NewAuthUseCase(txRunner, userRepo, assujettiRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	calc := catalog.NewTaxCalculator(geoRepo, ruleRepo)
	rates := catalog.NewExchangeRates(settingsRepo, cfg.Redevance.ExchangeRateFallback)
	finalizer := identification.NewFinalizer(
		txRunner, assujettiRepo, calc, rates, signer, authUC, metrics, log.Named("identification"),
		identification.Config{LocalCurrency: cfg.Redevance.LocalCurrency, NoteDueDays: cfg.Redevance.NoteDueDays},
	)
	paymentUC := payment.NewUseCase(
		txRunner, assujettiRepo, noteRepo, rates, signer,
		infrapdf.NewMarotoNoteGenerator(""), metrics, log.Named("payment"), cfg.Redevance.LocalCurrency,
	)
	controlUC := control.NewUseCase(
		txRunner, assujettiRepo, declarationRepo, metrics, log.Named("control"), cfg.Redevance.BaseCurrency,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Redevance API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		TaxCalculator:  calc,
		CatalogAdmin:   catalog.NewAdminUseCase(geoRepo, ruleRepo, rates),
		Finalizer:      finalizer,
		OnboardingUC:   onboarding.NewUseCase(onboardingRepo),
		PaymentUC:      paymentUC,
		ControlUC:      controlUC,
		MetricsHandler: metrics.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
