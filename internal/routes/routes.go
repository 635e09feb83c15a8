// Package routes wires repositories, services and handlers onto the fiber
// app.
package routes

import (
	"wagmi/internal/config"
	"wagmi/internal/handlers"
	"wagmi/internal/middleware"
	"wagmi/internal/repositories"
	"wagmi/internal/repositories/cache"
	"wagmi/internal/services/auth"
	"wagmi/internal/services/referral"
	"wagmi/internal/services/token"
	"wagmi/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Collector is the metrics sink shared by the services; the prometheus
// implementation in internal/metrics satisfies it, and each service falls
// back to its own no-op when nil is passed.
type Collector interface {
	auth.MetricsCollector
	referral.MetricsCollector
	wallet.MetricsCollector
}

// SetupRoutes builds the full dependency graph and registers every route.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.Service, cfg *config.Config, collector Collector) {
	// Repositories
	userRepo := repositories.NewUserRepository(db, cacheSvc)
	walletRepo := repositories.NewWalletRepository(db, cacheSvc)
	referralRepo := repositories.NewReferralRepository(db, cacheSvc)
	tokenRepo := repositories.NewTokenRepository(db)

	// Services
	var authMetrics auth.MetricsCollector
	var referralMetrics referral.MetricsCollector
	var walletMetrics wallet.MetricsCollector
	if collector != nil {
		authMetrics = collector
		referralMetrics = collector
		walletMetrics = collector
	}

	tokenService := token.NewService(tokenRepo, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	referralService := referral.NewService(referralRepo, cfg.ReferralReward, cfg.ShareBaseURL, referralMetrics)
	walletService := wallet.NewService(walletRepo, walletMetrics)
	authService := auth.NewService(userRepo, tokenService, referralService, authMetrics)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	referralHandler := handlers.NewReferralHandler(referralService, walletService, userRepo)
	walletHandler := handlers.NewWalletHandler(walletService)
	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	// Public endpoints
	app.Get("/wake-up", handlers.WakeUp)

	api := app.Group("/api")
	api.Get("/wake-up", handlers.WakeUp)
	api.Post("/signup", authHandler.Signup)
	api.Post("/login", authHandler.Login)
	api.Post("/admin-login", authHandler.AdminLogin)
	api.Post("/logout", authHandler.Logout)
	api.Post("/token/refresh", authHandler.RefreshToken)

	// Authenticated endpoints (access cookie required)
	authed := api.Group("", authMiddleware.Handler)
	authed.Get("/me", authHandler.CurrentUser)
	authed.Get("/my-referral", referralHandler.MyReferral)
	authed.Post("/generate-referral", referralHandler.GenerateReferral)
	authed.Post("/use-referral", referralHandler.UseReferral)
	authed.Get("/my-wallet", walletHandler.MyWallet)

	// Staff endpoints
	admin := authed.Group("/admin", middleware.StaffOnly)
	admin.Post("/wallet-credit", walletHandler.AdminCredit)
}
