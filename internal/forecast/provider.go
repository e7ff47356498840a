package forecast

import (
	"context"
	"time"
)

// MarineProvider abstracts an upstream hourly forecast source
// (e.g. Open-Meteo, Stormglass). Implementations are stateless beyond their
// API key and return one HourDetail per upstream hour in [start, end], or a
// *FetchError; they never return partial results on failure.
type MarineProvider interface {
	Name() string
	FetchMarineData(ctx context.Context, lat, lng float64, start, end time.Time) ([]HourDetail, error)
}

// Enricher overlays localized real-time current data onto today's hours.
// Failure to reach the auxiliary source is a soft-fail: implementations log
// and return the input unchanged rather than erroring.
type Enricher interface {
	EnrichToday(ctx context.Context, hours []HourDetail, lat, lng float64, date string) []HourDetail
}

// Cache is the contract the resolution layer and batch updater need from the
// weather cache.
type Cache interface {
	Get(spotID, date string) ([]HourDetail, bool)
	Set(spotID, date string, data []HourDetail)
	LastUpdated(spotID, date string) (time.Time, bool)
}
