package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	httpapi "github.com/Idseleveld1810/kitebuddy/internal/api/http"
	"github.com/Idseleveld1810/kitebuddy/internal/cache"
	"github.com/Idseleveld1810/kitebuddy/internal/config"
	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
	"github.com/Idseleveld1810/kitebuddy/internal/forecast/providers"
	"github.com/Idseleveld1810/kitebuddy/internal/scheduler"
	"github.com/Idseleveld1810/kitebuddy/internal/spots"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := cfg.NewLogger()

	// Read-only spot catalog, loaded once at startup.
	catalog, err := spots.Load(cfg.SpotsFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load spot catalog")
	}
	log.WithField("spots", catalog.Len()).Info("spot catalog loaded")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory cache with tiered TTLs.
	weatherCache := cache.New(cache.Config{
		DefaultTTL:   cfg.DefaultTTL,
		PopularTTL:   cfg.PopularTTL,
		PopularSpots: cfg.PopularSpots,
	}, log)

	// Providers: baseline Open-Meteo, Stormglass when a key is configured,
	// Rijkswaterstaat enrichment for today's currents.
	openMeteo := providers.NewOpenMeteoProvider(httpClient, log)
	rws := providers.NewRWSProvider(httpClient, log)

	var marine forecast.MarineProvider
	if cfg.StormglassAPIKey != "" {
		marine = providers.NewStormglassProvider(httpClient, cfg.StormglassAPIKey, log)
	} else {
		log.Info("no stormglass api key configured; week queries use the baseline provider")
	}

	fallback := forecast.NewFileFallback(cfg.ForecastDataDir, log)

	// Resolution layer orchestrating cache, providers, and static data.
	service := forecast.NewService(weatherCache, openMeteo, marine, rws, catalog, fallback, log)

	// Batch updater proactively warming the cache.
	updater := scheduler.New(openMeteo, weatherCache, catalog, scheduler.Config{
		PopularInterval: cfg.PopularInterval,
		AllInterval:     cfg.AllInterval,
		PopularSpots:    cfg.PopularSpots,
		HorizonDays:     cfg.HorizonDays,
		RequestDelay:    cfg.RequestDelay,
		InitialDelay:    cfg.InitialDelay,
	}, log)
	if err := updater.StartScheduler(); err != nil {
		log.WithError(err).Fatal("failed to start batch scheduler")
	}
	defer updater.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "kitebuddy",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "kitebuddy",
		})
	})

	httpapi.RegisterRoutes(app, service, weatherCache, updater, log)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
}
