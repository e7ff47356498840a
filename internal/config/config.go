package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// defaultPopularSpots is the priority list refreshed on the short cadence.
var defaultPopularSpots = []string{
	"domburg", "wijk_aan_zee", "scheveningen", "katwijk", "noordwijk",
}

type AppConfig struct {
	// StormglassAPIKey enables the marine-capable provider. Optional; the
	// baseline provider needs no key.
	StormglassAPIKey string

	// SpotsFile is the JSON spot catalog loaded at startup.
	SpotsFile string

	// ForecastDataDir holds the per-spot static fallback files.
	ForecastDataDir string

	// PopularSpots are refreshed more often and cached on the short TTL tier.
	PopularSpots []string

	// Cache TTL tiers.
	PopularTTL time.Duration
	DefaultTTL time.Duration

	// Batch refresh cadence and pacing.
	PopularInterval time.Duration
	AllInterval     time.Duration
	RequestDelay    time.Duration
	InitialDelay    time.Duration
	HorizonDays     int

	HTTPTimeout time.Duration
	Port        string
	LogLevel    logrus.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	cfg := &AppConfig{
		StormglassAPIKey: os.Getenv("STORMGLASS_API_KEY"),
		SpotsFile:        getenvDefault("SPOTS_FILE", "data/spots.json"),
		ForecastDataDir:  getenvDefault("FORECAST_DATA_DIR", "data/forecastData"),
		PopularSpots:     defaultPopularSpots,
		HorizonDays:      getenvInt("BATCH_HORIZON_DAYS", 7),
		Port:             getenvDefault("PORT", "8080"),
	}

	if v := os.Getenv("POPULAR_SPOTS"); v != "" {
		cfg.PopularSpots = splitList(v)
	}

	var err error
	if cfg.PopularTTL, err = getenvDuration("CACHE_POPULAR_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DefaultTTL, err = getenvDuration("CACHE_DEFAULT_TTL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PopularInterval, err = getenvDuration("BATCH_POPULAR_INTERVAL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AllInterval, err = getenvDuration("BATCH_ALL_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestDelay, err = getenvDuration("BATCH_REQUEST_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.InitialDelay, err = getenvDuration("BATCH_INITIAL_DELAY", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}

// NewLogger builds the process logger from the loaded configuration.
func (c *AppConfig) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
