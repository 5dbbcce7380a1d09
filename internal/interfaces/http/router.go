package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/redevance-api/internal/application/auth"
	"github.com/jhoicas/redevance-api/internal/application/catalog"
	"github.com/jhoicas/redevance-api/internal/application/control"
	"github.com/jhoicas/redevance-api/internal/application/identification"
	"github.com/jhoicas/redevance-api/internal/application/onboarding"
	"github.com/jhoicas/redevance-api/internal/application/payment"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	TaxCalculator  *catalog.TaxCalculator
	CatalogAdmin   *catalog.AdminUseCase
	Finalizer      *identification.Finalizer
	OnboardingUC   *onboarding.UseCase
	PaymentUC      *payment.UseCase
	ControlUC      *control.UseCase
	MetricsHandler nethttp.Handler // nil = sin /metrics
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	taxpayer := RequireRole(entity.RolePending, entity.RoleAssujetti)
	field := RequireRole(entity.RoleAgent, entity.RoleAdmin)
	admin := RequireRole(entity.RoleAdmin)

	catalogHandler := NewCatalogHandler(deps.TaxCalculator, deps.CatalogAdmin, log)
	protected.Get("/geographies", catalogHandler.Geographies)
	protected.Get("/tax/calculate", catalogHandler.CalculateTax)

	idHandler := NewIdentificationHandler(deps.Finalizer, deps.OnboardingUC, log)
	protected.Get("/onboarding", taxpayer, idHandler.Onboarding)
	protected.Put("/onboarding/steps/:step", taxpayer, idHandler.SaveStep)
	protected.Post("/identification/complete", taxpayer, idHandler.Complete)

	payHandler := NewPaymentHandler(deps.PaymentUC, log)
	protected.Get("/payments/details", taxpayer, payHandler.Details)
	protected.Get("/payments/details/pdf", taxpayer, payHandler.DetailsPDF)
	protected.Post("/notes", taxpayer, payHandler.SaveNote)
	protected.Get("/payments/verify", field, payHandler.Verify)

	controlHandler := NewControlHandler(deps.ControlUC, log)
	controls := protected.Group("/controls", field)
	controls.Get("/baseline/:assujettiId", controlHandler.Baseline)
	controls.Post("/evaluate", controlHandler.Evaluate)
	controls.Post("/", controlHandler.Save)
	controls.Post("/:id/finalize", controlHandler.Finalize)

	// Administración del catálogo y cuentas de agentes
	adminGroup := protected.Group("/admin", admin)
	adminGroup.Post("/agents", authHandler.CreateAgent)
	adminGroup.Get("/tax-rules", catalogHandler.ListRules)
	adminGroup.Put("/tax-rules", catalogHandler.UpsertRule)
	adminGroup.Get("/settings/exchange-rate", catalogHandler.GetExchangeRate)
	adminGroup.Put("/settings/exchange-rate", catalogHandler.SetExchangeRate)
}
