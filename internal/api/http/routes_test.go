package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Idseleveld1810/kitebuddy/internal/cache"
	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
	"github.com/Idseleveld1810/kitebuddy/internal/scheduler"
	"github.com/Idseleveld1810/kitebuddy/internal/spots"
)

// stubProvider always fails so day requests exercise the fallback chain.
type stubProvider struct{}

func (stubProvider) Name() string { return "openmeteo" }

func (stubProvider) FetchMarineData(_ context.Context, _, _ float64, _, _ time.Time) ([]forecast.HourDetail, error) {
	return nil, &forecast.FetchError{Provider: "openmeteo", Kind: forecast.FetchGeneric, Status: 502}
}

func testApp(t *testing.T, updater *scheduler.BatchUpdater) (*fiber.App, *cache.WeatherCache) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	catalog := spots.New([]spots.Spot{
		{SpotID: "domburg", Name: "Domburg", Latitude: 51.5664, Longitude: 3.4906},
	})
	weatherCache := cache.New(cache.Config{
		DefaultTTL:   6 * time.Hour,
		PopularTTL:   2 * time.Hour,
		PopularSpots: []string{"domburg"},
	}, log)
	svc := forecast.NewService(weatherCache, stubProvider{}, nil, nil, catalog,
		forecast.NewFileFallback(t.TempDir(), log), log)

	app := fiber.New()
	RegisterRoutes(app, svc, weatherCache, updater, log)
	return app, weatherCache
}

func TestDayMissingParams(t *testing.T) {
	app, _ := testApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/day?spotId=domburg", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Malformed date is a 400 too.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/forecast/day?spotId=domburg&date=june-10", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestDayUnknownSpot(t *testing.T) {
	app, _ := testApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/day?spotId=nowhere&date=2025-06-10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestDayServedFromCache(t *testing.T) {
	app, weatherCache := testApp(t, nil)

	weatherCache.Set("domburg", "2025-06-10", []forecast.HourDetail{
		{Time: "2025-06-10T10:00", WindSpeed: 15, SourceMeta: forecast.SourceMeta{Provider: "openmeteo"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/day?spotId=domburg&date=2025-06-10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body forecast.DayResult
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Source != forecast.SourceCache {
		t.Fatalf("expected source %q, got %q", forecast.SourceCache, body.Source)
	}
	if len(body.Data) != 1 {
		t.Fatalf("expected 1 hour, got %d", len(body.Data))
	}
}

func TestDayExhaustedFallbackIsNone(t *testing.T) {
	app, _ := testApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/day?spotId=domburg&date=2025-06-10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body forecast.DayResult
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Source != forecast.SourceNone {
		t.Fatalf("expected source %q, got %q", forecast.SourceNone, body.Source)
	}
	if len(body.Data) != 0 {
		t.Fatalf("expected empty data, got %d hours", len(body.Data))
	}
}

func TestWeekValidation(t *testing.T) {
	app, _ := testApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast/week?spotId=domburg", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestAdminCacheActionsWithoutUpdater(t *testing.T) {
	app, weatherCache := testApp(t, nil)

	weatherCache.Set("domburg", "2025-06-10", []forecast.HourDetail{{Time: "2025-06-10T10:00"}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update",
		strings.NewReader(`{"action":"cache_stats"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/update",
		strings.NewReader(`{"action":"clear_cache"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if stats := weatherCache.GetStats(); stats.Total != 0 {
		t.Fatalf("expected empty cache after clear, got %d entries", stats.Total)
	}
}

func TestAdminUpdateWithoutUpdaterIs503(t *testing.T) {
	app, _ := testApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update",
		strings.NewReader(`{"action":"update_all"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestAdminUnknownAction(t *testing.T) {
	app, _ := testApp(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update",
		strings.NewReader(`{"action":"explode"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}
