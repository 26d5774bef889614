package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Provider client with resilience (rate limit + backoff + circuit breaker),
	// fronted by a TTL cache.
	owm := providers.NewOpenWeatherClient(httpClient, providers.OpenWeatherConfig{
		APIKey:            cfg.OpenWeatherAPIKey,
		BaseURL:           cfg.OpenWeatherBaseURL,
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})
	cached := weather.NewCachedClient(owm, cfg.CacheTTL)

	service := weather.NewService(cached)
	sessions := store.NewSessionStore(cfg.SessionMax, cfg.SessionMaxIdle)

	// Scheduler that keeps configured locations warm and sweeps expired state.
	sched := scheduler.New(cfg.Locations, cfg.DefaultUnits, cfg.RefreshInterval, service, sessions, cached)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		hits, misses := cached.Stats()
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-dashboard",
			"sessions": sessions.Len(),
			"cache": fiber.Map{
				"hits":   hits,
				"misses": misses,
			},
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:      service,
		Sessions:     sessions,
		DefaultUnits: cfg.DefaultUnits,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
