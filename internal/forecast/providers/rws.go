package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Idseleveld1810/kitebuddy/internal/common"
	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
)

// rwsStationRadiusKm is the maximum distance at which a Rijkswaterstaat
// station is considered local to a spot.
const rwsStationRadiusKm = 50.0

// RWSStation is a Rijkswaterstaat measurement station along the Dutch coast
// reporting current speed.
type RWSStation struct {
	LocationID string
	Name       string
	Latitude   float64
	Longitude  float64
}

// rwsStations is the fixed station catalog. Nearest-station ties resolve by
// catalog order.
var rwsStations = []RWSStation{
	{LocationID: "VLISSGN", Name: "Vlissingen", Latitude: 51.4425, Longitude: 3.5967},
	{LocationID: "ROOMPBTN", Name: "Roompot Buiten", Latitude: 51.6250, Longitude: 3.6750},
	{LocationID: "ROOMPBNN", Name: "Roompot Binnen", Latitude: 51.6250, Longitude: 3.6750},
	{LocationID: "HARVT10", Name: "Hoek van Holland", Latitude: 51.9983, Longitude: 4.1200},
	{LocationID: "IJMDBTHVN", Name: "IJmuiden Buitenhaven", Latitude: 52.4633, Longitude: 4.5550},
	{LocationID: "DENHDR", Name: "Den Helder", Latitude: 52.9633, Longitude: 4.7450},
	{LocationID: "HARLGN", Name: "Harlingen", Latitude: 53.1750, Longitude: 5.4083},
}

// RWSCurrent is one normalized current measurement from a station.
type RWSCurrent struct {
	Time             string
	CurrentSpeed     *float64
	CurrentDirection *int
	Station          string
}

// RWSProvider enriches canonical hours with localized current data from the
// geographically nearest Rijkswaterstaat station, for the current day only.
type RWSProvider struct {
	baseURL  string
	client   *http.Client
	stations []RWSStation
	now      func() time.Time
	log      *logrus.Logger
}

func NewRWSProvider(client *http.Client, log *logrus.Logger) *RWSProvider {
	return &RWSProvider{
		baseURL:  "https://waterwebservices.rijkswaterstaat.nl/ONLINEWAARNEMINGEN/",
		client:   client,
		stations: rwsStations,
		now:      time.Now,
		log:      log,
	}
}

// SetBaseURL overrides the upstream endpoint. Test hook.
func (p *RWSProvider) SetBaseURL(u string) {
	p.baseURL = u
}

// SetClock overrides the time source. Test hook.
func (p *RWSProvider) SetClock(now func() time.Time) {
	p.now = now
}

// nearestStation returns the closest station within the fixed radius, or nil.
func (p *RWSProvider) nearestStation(lat, lng float64) *RWSStation {
	var nearest *RWSStation
	minDistance := rwsStationRadiusKm

	for i := range p.stations {
		s := &p.stations[i]
		d := common.Haversine(lat, lng, s.Latitude, s.Longitude)
		if d < minDistance {
			minDistance = d
			nearest = s
		}
	}
	return nearest
}

// rwsObservation is the station feed's native shape, newest first.
type rwsObservation struct {
	Value    string `json:"value"`
	DateTime string `json:"dateTime"`
}

// FetchCurrentData fetches the latest current measurement from the nearest
// station, or nil when no station is within range.
func (p *RWSProvider) FetchCurrentData(ctx context.Context, lat, lng float64) (*RWSCurrent, error) {
	station := p.nearestStation(lat, lng)
	if station == nil {
		return nil, nil
	}

	u := fmt.Sprintf("%s%s.json", p.baseURL, station.LocationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rws fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rws fetch: status %d", resp.StatusCode)
	}

	var observations []rwsObservation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, fmt.Errorf("rws decode: %w", err)
	}
	if len(observations) == 0 {
		return nil, nil
	}

	latest := observations[0]
	current := &RWSCurrent{
		Time:    latest.DateTime,
		Station: station.Name,
	}
	if v, err := strconv.ParseFloat(latest.Value, 64); err == nil {
		current.CurrentSpeed = forecast.Float64(common.Round2(v))
	}
	if current.Time == "" {
		current.Time = p.now().UTC().Format(time.RFC3339)
	}

	return current, nil
}

// EnrichToday overlays current speed and direction onto the hours of the
// current calendar day. Any other day passes through unchanged, as does the
// whole input when no station is in range or the fetch fails; auxiliary
// failures are logged, never propagated.
func (p *RWSProvider) EnrichToday(ctx context.Context, hours []forecast.HourDetail, lat, lng float64, date string) []forecast.HourDetail {
	today := forecast.Today(p.now)
	if date != today {
		p.log.WithFields(logrus.Fields{"date": date, "today": today}).
			Debug("skipping rws enrichment for non-current day")
		return hours
	}

	current, err := p.FetchCurrentData(ctx, lat, lng)
	if err != nil {
		p.log.WithError(err).Warn("rws enrichment unavailable, serving unenriched data")
		return hours
	}
	if current == nil {
		p.log.Debug("no rws station within range")
		return hours
	}

	p.log.WithFields(logrus.Fields{
		"station": current.Station,
		"date":    date,
	}).Info("enriching today's hours with rws current data")

	enriched := make([]forecast.HourDetail, len(hours))
	for i, h := range hours {
		if h.Date() != today {
			enriched[i] = h
			continue
		}
		if current.CurrentSpeed != nil {
			h.CurrentSpeed = current.CurrentSpeed
		}
		if current.CurrentDirection != nil {
			h.CurrentDirection = current.CurrentDirection
		}
		h.SourceMeta.EnrichedWithRWS = true
		h.SourceMeta.RWSStation = current.Station
		enriched[i] = h
	}
	return enriched
}
