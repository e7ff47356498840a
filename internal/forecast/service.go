package forecast

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Idseleveld1810/kitebuddy/internal/spots"
)

// Source tags reported on responses so callers can reason about freshness.
const (
	SourceCache = "cache"
	SourceFile  = "file"
	SourceNone  = "none"
)

// CacheInfo describes how a day response relates to the cache.
type CacheInfo struct {
	IsCached    bool       `json:"isCached"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// DayResult is the response payload for a single-day lookup.
type DayResult struct {
	Data        []HourDetail `json:"data"`
	Source      string       `json:"source"`
	LastUpdated *time.Time   `json:"lastUpdated,omitempty"`
	CacheInfo   CacheInfo    `json:"cacheInfo"`
	WindWindows []WindWindow `json:"windWindows"`
}

// CacheStats tallies cache hits and misses across a week lookup.
type CacheStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// WeekResult is the response payload for a week-range lookup.
type WeekResult struct {
	Data        map[string][]HourDetail `json:"data"`
	Source      string                  `json:"source"`
	LastUpdated *time.Time              `json:"lastUpdated,omitempty"`
	CacheStats  CacheStats              `json:"cacheStats"`
}

// Service is the request resolution layer: cache first, then live fetch with
// enrichment, then static file data, degrading to an empty response rather
// than an error when every path is exhausted.
type Service struct {
	cache    Cache
	provider MarineProvider // baseline day-lookup provider
	marine   MarineProvider // marine-capable week provider; nil falls back to provider
	enricher Enricher
	catalog  *spots.Catalog
	fallback *FileFallback

	now func() time.Time
	log *logrus.Logger
}

func NewService(
	cache Cache,
	provider MarineProvider,
	marine MarineProvider,
	enricher Enricher,
	catalog *spots.Catalog,
	fallback *FileFallback,
	log *logrus.Logger,
) *Service {
	return &Service{
		cache:    cache,
		provider: provider,
		marine:   marine,
		enricher: enricher,
		catalog:  catalog,
		fallback: fallback,
		now:      time.Now,
		log:      log,
	}
}

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Spots exposes the read-only catalog.
func (s *Service) Spots() *spots.Catalog {
	return s.catalog
}

// dayWindow returns the instants bounding one calendar day.
func dayWindow(date string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateFormat, date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(24*time.Hour - time.Second), nil
}

// Day resolves one spot-day: cache, then live fetch with enrichment, then
// static file, then an empty "none" response.
func (s *Service) Day(ctx context.Context, spotID, date string) (DayResult, error) {
	spot, ok := s.catalog.Get(spotID)
	if !ok {
		return DayResult{}, ErrSpotNotFound
	}

	if data, ok := s.cache.Get(spotID, date); ok {
		result := DayResult{
			Data:        data,
			Source:      SourceCache,
			WindWindows: KiteWindows(data),
			CacheInfo:   CacheInfo{IsCached: true},
		}
		if ts, ok := s.cache.LastUpdated(spotID, date); ok {
			result.LastUpdated = &ts
			result.CacheInfo.LastUpdated = &ts
		}
		return result, nil
	}

	start, end, err := dayWindow(date)
	if err != nil {
		return DayResult{}, err
	}

	data, fetchErr := s.provider.FetchMarineData(ctx, spot.Latitude, spot.Longitude, start, end)
	if fetchErr == nil && len(data) > 0 {
		if s.enricher != nil {
			data = s.enricher.EnrichToday(ctx, data, spot.Latitude, spot.Longitude, date)
		}
		s.cache.Set(spotID, date, data)

		now := s.now()
		s.log.WithFields(logrus.Fields{
			"spot":  spotID,
			"date":  date,
			"hours": len(data),
		}).Info("fetched and cached day forecast")

		return DayResult{
			Data:        data,
			Source:      s.provider.Name(),
			LastUpdated: &now,
			WindWindows: KiteWindows(data),
		}, nil
	}

	if fetchErr != nil {
		s.log.WithError(fetchErr).WithFields(logrus.Fields{
			"spot": spotID,
			"date": date,
		}).Warn("live fetch failed, falling back to static data")
	}

	return s.dayFromFile(spotID, date), nil
}

// dayFromFile serves the static file path of the fallback chain.
func (s *Service) dayFromFile(spotID, date string) DayResult {
	fileData, err := s.fallback.ForDate(spotID, date)
	if err != nil {
		s.log.WithError(err).WithField("spot", spotID).Warn("static data unavailable")
	}
	if len(fileData) == 0 {
		return DayResult{Data: []HourDetail{}, Source: SourceNone, WindWindows: []WindWindow{}}
	}
	return DayResult{Data: fileData, Source: SourceFile, WindWindows: KiteWindows(fileData)}
}

// weekDates lists the seven calendar days starting at startDate.
func weekDates(startDate string) ([]string, time.Time, error) {
	start, err := time.Parse(DateFormat, startDate)
	if err != nil {
		return nil, time.Time{}, err
	}
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format(DateFormat)
	}
	return dates, start, nil
}

// Week resolves seven days starting at startDate. Days are resolved from
// cache independently; only when at least one misses does the service make a
// single batched live fetch for the whole range, then fill any still-missing
// days from static files.
func (s *Service) Week(ctx context.Context, spotID, startDate string) (WeekResult, error) {
	spot, ok := s.catalog.Get(spotID)
	if !ok {
		return WeekResult{}, ErrSpotNotFound
	}

	dates, start, err := weekDates(startDate)
	if err != nil {
		return WeekResult{}, err
	}

	weekly := make(map[string][]HourDetail)
	var stats CacheStats
	var lastUpdated *time.Time

	for _, date := range dates {
		data, ok := s.cache.Get(spotID, date)
		if !ok {
			stats.Misses++
			continue
		}
		weekly[date] = data
		stats.Hits++

		if ts, ok := s.cache.LastUpdated(spotID, date); ok {
			if lastUpdated == nil || ts.After(*lastUpdated) {
				lastUpdated = &ts
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"spot":   spotID,
		"hits":   stats.Hits,
		"misses": stats.Misses,
	}).Debug("week cache check")

	// Every day served from cache: short-circuit without touching providers.
	if stats.Hits == len(dates) {
		return WeekResult{
			Data:        weekly,
			Source:      SourceCache,
			LastUpdated: lastUpdated,
			CacheStats:  stats,
		}, nil
	}

	provider := s.marine
	if provider == nil {
		provider = s.provider
	}

	source := SourceFile
	end := start.AddDate(0, 0, 6).Add(24*time.Hour - time.Second)

	data, fetchErr := provider.FetchMarineData(ctx, spot.Latitude, spot.Longitude, start, end)
	if fetchErr == nil && len(data) > 0 {
		grouped := GroupByDate(data)
		for date, dayData := range grouped {
			s.cache.Set(spotID, date, dayData)
		}
		for _, date := range dates {
			if _, ok := weekly[date]; ok {
				continue
			}
			if dayData, ok := grouped[date]; ok {
				weekly[date] = dayData
			}
		}
		source = provider.Name()
		now := s.now()
		lastUpdated = &now

		s.log.WithFields(logrus.Fields{
			"spot": spotID,
			"days": len(grouped),
		}).Info("fetched and cached week forecast")
	} else if fetchErr != nil {
		s.log.WithError(fetchErr).WithField("spot", spotID).
			Warn("week live fetch failed, falling back to static data")
	}

	// Per-day static file lookups for whatever is still missing.
	for _, date := range dates {
		if _, ok := weekly[date]; ok {
			continue
		}
		fileData, err := s.fallback.ForDate(spotID, date)
		if err != nil {
			s.log.WithError(err).WithField("spot", spotID).Warn("static data unavailable")
			break
		}
		if len(fileData) > 0 {
			weekly[date] = fileData
		}
	}

	if len(weekly) == 0 {
		source = SourceNone
	}

	return WeekResult{
		Data:        weekly,
		Source:      source,
		LastUpdated: lastUpdated,
		CacheStats:  stats,
	}, nil
}
