// Package main is the entry point for the API server. It loads the
// configuration, connects to Postgres and Redis, wires the routes and starts
// the HTTP listener.
package main

import (
	"log"
	"strings"
	"time"

	"wagmi/internal/config"
	"wagmi/internal/metrics"
	"wagmi/internal/repositories"
	"wagmi/internal/repositories/cache"
	"wagmi/internal/routes"
	"wagmi/internal/services/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := repositories.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get database instance: %v", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("failed to close database connection: %v", err)
		}
	}()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	redisClient := cache.NewClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
	cacheSvc := cache.NewService(redisClient, 24*time.Hour)
	defer func() {
		if err := cacheSvc.Close(); err != nil {
			log.Printf("failed to close Redis connection: %v", err)
		}
	}()

	collector := metrics.NewCollector()
	metrics.Serve(cfg.MetricsPort)

	// Background prune of expired refresh-token lineage rows.
	pruner, err := token.StartPruner(repositories.NewTokenRepository(db))
	if err != nil {
		log.Fatalf("failed to start token pruner: %v", err)
	}
	defer func() {
		if err := pruner.Shutdown(); err != nil {
			log.Printf("failed to stop token pruner: %v", err)
		}
	}()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/api/signup", "/api/login", "/api/admin-login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	routes.SetupRoutes(app, db, cacheSvc, cfg, collector)

	log.Fatal(app.Listen(":" + cfg.Port))
}
