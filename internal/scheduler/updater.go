package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
	"github.com/Idseleveld1810/kitebuddy/internal/spots"
)

// Config controls batch refresh cadence and pacing. Values are fixed for the
// process lifetime.
type Config struct {
	PopularInterval time.Duration
	AllInterval     time.Duration
	PopularSpots    []string

	// HorizonDays is how far ahead each refresh fetches.
	HorizonDays int

	// RequestDelay is the pause between spots within one batch, to stay
	// within upstream rate limits.
	RequestDelay time.Duration

	// InitialDelay defers the first popular-spots run after startup.
	InitialDelay time.Duration
}

// Tally reports the outcome of one batch run. Per-spot failures are counted,
// never propagated.
type Tally struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchUpdater proactively warms the cache for a prioritized spot list and
// for the full catalog. A single coarse guard covers all update kinds: an
// invocation while a run is in progress is rejected, not queued.
type BatchUpdater struct {
	scheduler *gocron.Scheduler
	provider  forecast.MarineProvider
	cache     forecast.Cache
	catalog   *spots.Catalog
	cfg       Config

	running      atomic.Bool
	initialTimer *time.Timer

	now func() time.Time
	log *logrus.Logger
}

func New(provider forecast.MarineProvider, cache forecast.Cache, catalog *spots.Catalog, cfg Config, log *logrus.Logger) *BatchUpdater {
	return &BatchUpdater{
		scheduler: gocron.NewScheduler(time.UTC),
		provider:  provider,
		cache:     cache,
		catalog:   catalog,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

// SetClock overrides the time source. Test hook.
func (u *BatchUpdater) SetClock(now func() time.Time) {
	u.now = now
}

// IsRunning reports whether a batch run is in progress.
func (u *BatchUpdater) IsRunning() bool {
	return u.running.Load()
}

// updateSpot fetches the refresh horizon for one spot and caches each day.
func (u *BatchUpdater) updateSpot(ctx context.Context, spot spots.Spot) error {
	start, err := time.Parse(forecast.DateFormat, u.now().UTC().Format(forecast.DateFormat))
	if err != nil {
		return err
	}
	end := start.AddDate(0, 0, u.cfg.HorizonDays).Add(24*time.Hour - time.Second)

	data, err := u.provider.FetchMarineData(ctx, spot.Latitude, spot.Longitude, start, end)
	if err != nil {
		return err
	}

	grouped := forecast.GroupByDate(data)
	for date, dayData := range grouped {
		u.cache.Set(spot.SpotID, date, dayData)
	}

	u.log.WithFields(logrus.Fields{
		"spot": spot.SpotID,
		"days": len(grouped),
	}).Debug("spot refreshed")
	return nil
}

// runBatch iterates the spot list behind the single-flight guard. Individual
// spot failures are logged and tallied; the run always completes and releases
// the guard.
func (u *BatchUpdater) runBatch(ctx context.Context, name string, list []spots.Spot) (Tally, error) {
	if !u.running.CAS(false, true) {
		u.log.WithField("batch", name).Info("batch update already running, skipping")
		return Tally{}, forecast.ErrUpdaterBusy
	}
	defer u.running.Store(false)

	u.log.WithFields(logrus.Fields{"batch": name, "spots": len(list)}).Info("starting batch update")

	var tally Tally
	for i, spot := range list {
		if err := u.updateSpot(ctx, spot); err != nil {
			u.log.WithError(err).WithField("spot", spot.SpotID).Error("spot update failed")
			tally.Failed++
		} else {
			tally.Succeeded++
		}

		if i == len(list)-1 || u.cfg.RequestDelay <= 0 {
			continue
		}
		timer := time.NewTimer(u.cfg.RequestDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			u.log.WithField("batch", name).Warn("batch update cancelled")
			return tally, nil
		case <-timer.C:
		}
	}

	u.log.WithFields(logrus.Fields{
		"batch":     name,
		"succeeded": tally.Succeeded,
		"failed":    tally.Failed,
	}).Info("batch update complete")
	return tally, nil
}

// popularList resolves the configured popular spot ids against the catalog.
func (u *BatchUpdater) popularList() []spots.Spot {
	list := make([]spots.Spot, 0, len(u.cfg.PopularSpots))
	for _, id := range u.cfg.PopularSpots {
		spot, ok := u.catalog.Get(id)
		if !ok {
			u.log.WithField("spot", id).Warn("popular spot not in catalog")
			continue
		}
		list = append(list, spot)
	}
	return list
}

// UpdatePopularSpots refreshes the prioritized spot list.
func (u *BatchUpdater) UpdatePopularSpots(ctx context.Context) (Tally, error) {
	return u.runBatch(ctx, "popular", u.popularList())
}

// UpdateAllSpots refreshes the full spot catalog.
func (u *BatchUpdater) UpdateAllSpots(ctx context.Context) (Tally, error) {
	return u.runBatch(ctx, "all", u.catalog.All())
}

// ManualUpdate refreshes one spot when an id is given, otherwise the whole
// catalog. The same guard applies.
func (u *BatchUpdater) ManualUpdate(ctx context.Context, spotID string) (Tally, error) {
	if spotID == "" {
		return u.UpdateAllSpots(ctx)
	}
	spot, ok := u.catalog.Get(spotID)
	if !ok {
		return Tally{}, forecast.ErrSpotNotFound
	}
	return u.runBatch(ctx, "manual:"+spotID, []spots.Spot{spot})
}

// StartScheduler arms the two recurring refresh jobs plus one delayed
// initial popular run. Timers live for the process lifetime.
func (u *BatchUpdater) StartScheduler() error {
	if _, err := u.scheduler.Every(u.cfg.PopularInterval).Do(func() {
		if _, err := u.UpdatePopularSpots(context.Background()); err != nil {
			u.log.WithError(err).Debug("scheduled popular update skipped")
		}
	}); err != nil {
		return err
	}

	if _, err := u.scheduler.Every(u.cfg.AllInterval).Do(func() {
		if _, err := u.UpdateAllSpots(context.Background()); err != nil {
			u.log.WithError(err).Debug("scheduled all-spots update skipped")
		}
	}); err != nil {
		return err
	}

	u.initialTimer = time.AfterFunc(u.cfg.InitialDelay, func() {
		if _, err := u.UpdatePopularSpots(context.Background()); err != nil {
			u.log.WithError(err).Debug("initial popular update skipped")
		}
	})

	u.scheduler.StartAsync()
	u.log.WithFields(logrus.Fields{
		"popular_interval": u.cfg.PopularInterval.String(),
		"all_interval":     u.cfg.AllInterval.String(),
	}).Info("batch update scheduler started")
	return nil
}

// Stop stops the recurring jobs and the pending initial run.
func (u *BatchUpdater) Stop() {
	if u.initialTimer != nil {
		u.initialTimer.Stop()
	}
	if u.scheduler != nil {
		u.scheduler.Stop()
	}
}
