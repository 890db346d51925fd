package routes

import (
	"devis-backend/config"
	"devis-backend/controllers"
	"devis-backend/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// NewApp builds the fiber app with the global middleware stack and routes.
func NewApp(cfg *config.Config, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middlewares.ErrorHandler,
		BodyLimit:             cfg.BodyLimitBytes(),
		DisableStartupMessage: true,
	})

	// Logger first so recovered panics are logged with the request.
	app.Use(middlewares.RequestLogger(logger))
	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// Default KeyGenerator is the client IP.
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow(),
	}))

	Register(app)
	return app
}

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// Settings
	protected.Get("/settings", controllers.GetSettings)
	protected.Put("/settings", controllers.UpdateSettings)

	// Clients
	protected.Post("/clients", controllers.CreateClient)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/clients/:id", controllers.GetClient)
	protected.Put("/clients/:id", controllers.UpdateClient)
	protected.Delete("/clients/:id", controllers.DeleteClient)

	// Quotes
	protected.Post("/quotes", controllers.CreateQuote)
	protected.Get("/quotes", controllers.GetQuotes)
	protected.Get("/quotes/:id", controllers.GetQuote)
	protected.Put("/quotes/:id", controllers.UpdateQuote)
	protected.Delete("/quotes/:id", controllers.DeleteQuote)
	protected.Post("/quotes/:id/duplicate", controllers.DuplicateQuote)
	protected.Post("/quotes/:id/sections", controllers.AddSection)
	protected.Post("/quotes/:id/sections/:sectionId/duplicate", controllers.DuplicateSection)
	protected.Delete("/quotes/:id/sections/:sectionId", controllers.RemoveSection)
	protected.Put("/quotes/:id/status", controllers.ChangeQuoteStatus)
	protected.Get("/quotes/:id/totals", controllers.GetQuoteTotals)
	protected.Post("/quotes/:id/invoice", controllers.CreateInvoiceFromQuote)

	// Versions
	protected.Get("/quotes/:id/versions", controllers.GetQuoteVersions)
	protected.Get("/quotes/:id/versions/diff", controllers.DiffQuoteVersions)
	protected.Post("/quotes/:id/versions/:versionId/restore", controllers.RestoreQuoteVersion)

	// Stateless calculations
	protected.Post("/calculations/discount/validate", controllers.ValidateDiscount)
	protected.Post("/calculations/totals", controllers.ComputeTotals)

	// Templates
	protected.Post("/templates", controllers.CreateTemplate)
	protected.Get("/templates", controllers.GetTemplates)
	protected.Delete("/templates/:id", controllers.DeleteTemplate)
	protected.Post("/templates/:id/instantiate", controllers.InstantiateTemplate)

	// Invoices and payments
	protected.Post("/invoices", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoices/:id", controllers.GetInvoice)
	protected.Put("/invoices/:id", controllers.UpdateInvoice)
	protected.Delete("/invoices/:id", controllers.DeleteInvoice)
	protected.Post("/invoices/:id/payments", controllers.AddPayment)
	protected.Delete("/invoices/:id/payments/:paymentId", controllers.RemovePayment)

	// Reports
	protected.Get("/reports", controllers.GetReport)
	protected.Get("/reports/forecast", controllers.GetForecast)

	// Notifications; static paths before :id
	protected.Get("/notifications", controllers.GetNotifications)
	protected.Post("/notifications/check", controllers.CheckNotifications)
	protected.Put("/notifications/read", controllers.MarkAllNotificationsRead)
	protected.Put("/notifications/:id/read", controllers.MarkNotificationRead)
	protected.Delete("/notifications/:id", controllers.DeleteNotification)
	protected.Delete("/notifications", controllers.ClearNotifications)
}
