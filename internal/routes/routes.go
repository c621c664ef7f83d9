// Package routes defines the API routing configuration: the ordered
// route-to-workflow bindings assembled once at startup.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"telebill/internal/config"
	"telebill/internal/handlers"
	"telebill/internal/middleware"
	"telebill/internal/repositories"
	"telebill/internal/services/auth"
	"telebill/internal/services/billing"
	"telebill/internal/services/call"
	"telebill/internal/services/user"
)

// SetupRoutes wires repositories, services and handlers and binds them
// to the route table.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	userRepo := repositories.NewUserRepository(db, repositories.CacheService)
	ledgerRepo := repositories.NewLedgerRepository(db)

	var provider billing.ChargeProvider
	if key := config.GetEnv("STRIPE_SECRET_KEY", ""); key != "" {
		provider = billing.NewStripeProvider(key, config.GetEnv("STRIPE_CURRENCY", "usd"))
	}

	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	billingService := billing.NewService(ledgerRepo, repositories.CacheService, provider)
	callService := call.NewService(ledgerRepo, repositories.CacheService)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	billHandler := handlers.NewBillHandler(billingService)
	paymentHandler := handlers.NewPaymentHandler(billingService)
	callHandler := handlers.NewCallHandler(callService)

	api := app.Group("/api/v1")

	// Public endpoints
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)
	api.Post("/users", userHandler.Register)

	// Everything below requires a valid token
	protected := api.Use(middleware.Auth)

	protected.Get("/users", userHandler.List)
	protected.Post("/calls", callHandler.Create)

	// Routes addressed by an owning-user id. Profile reads only need the
	// target to exist; everything billing-related is owner-only.
	exists := middleware.TargetExists(userRepo)
	owner := middleware.OwnerGate(userRepo)

	protected.Get("/users/:id", exists, userHandler.Get)
	protected.Patch("/users/:id", owner, userHandler.Update)
	protected.Delete("/users/:id", owner, userHandler.Delete)

	protected.Get("/users/:id/bill", owner, billHandler.Get)
	protected.Patch("/users/:id/bill", owner, billHandler.Update)

	protected.Get("/users/:id/payments", owner, paymentHandler.List)
	protected.Post("/users/:id/payments", owner, paymentHandler.Create)

	protected.Get("/users/:id/calls", owner, callHandler.List)
}
