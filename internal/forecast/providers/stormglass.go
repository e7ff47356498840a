package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/Idseleveld1810/kitebuddy/internal/common"
	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
)

// Stormglass reports each parameter per numerical model. When several models
// carry the same parameter we pick one deterministically by this priority and
// never average across models.
var stormglassSourcePriority = []string{"noaa", "meteo", "icon"}

// StormglassProvider is the marine-capable adapter. It requires an API key
// and supplies wave and current fields the baseline adapter cannot.
type StormglassProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

func NewStormglassProvider(client *http.Client, apiKey string, log *logrus.Logger) *StormglassProvider {
	return &StormglassProvider{
		name:    "stormglass",
		apiKey:  apiKey,
		baseURL: "https://api.stormglass.io/v2/weather/point",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newCircuit("stormglass"),
		log:     log,
	}
}

func (p *StormglassProvider) Name() string {
	return p.name
}

// SetBaseURL overrides the upstream endpoint. Test hook.
func (p *StormglassProvider) SetBaseURL(u string) {
	p.baseURL = u
}

// modelValues maps a numerical model name to its reported value for one
// parameter at one hour.
type modelValues map[string]float64

// stormglassHour is Stormglass's native per-hour schema. Wind is reported at
// several heights; 30m suits kite conditions best, so height priority is
// 30m > 20m > surface.
type stormglassHour struct {
	Time             string      `json:"time"`
	WindSpeed        modelValues `json:"windSpeed"`
	WindSpeed20m     modelValues `json:"windSpeed20m"`
	WindSpeed30m     modelValues `json:"windSpeed30m"`
	Gust             modelValues `json:"gust"`
	WindDirection    modelValues `json:"windDirection"`
	WindDirection20m modelValues `json:"windDirection20m"`
	WindDirection30m modelValues `json:"windDirection30m"`
	WaveHeight       modelValues `json:"waveHeight"`
	WaveDirection    modelValues `json:"waveDirection"`
	CurrentSpeed     modelValues `json:"currentSpeed"`
	CurrentDirection modelValues `json:"currentDirection"`
}

type stormglassResponse struct {
	Hours []stormglassHour `json:"hours"`
}

// FetchMarineData fetches and normalizes marine hourly data for the window.
func (p *StormglassProvider) FetchMarineData(ctx context.Context, lat, lng float64, start, end time.Time) ([]forecast.HourDetail, error) {
	if p.apiKey == "" {
		return nil, &forecast.FetchError{
			Provider: p.name,
			Kind:     forecast.FetchAuth,
			Err:      fmt.Errorf("stormglass api key is not configured"),
		}
	}

	params := strings.Join([]string{
		"windSpeed", "windSpeed20m", "windSpeed30m",
		"gust",
		"windDirection", "windDirection20m", "windDirection30m",
		"waveHeight", "waveDirection",
		"currentSpeed", "currentDirection",
	}, ",")

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lng", fmt.Sprintf("%f", lng))
		values.Set("params", params)
		values.Set("start", start.UTC().Format(time.RFC3339))
		values.Set("end", end.UTC().Format(time.RFC3339))
		values.Set("source", strings.Join(stormglassSourcePriority, ","))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", p.apiKey)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload stormglassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &forecast.FetchError{Provider: p.name, Kind: forecast.FetchGeneric, Err: err}
	}

	if len(payload.Hours) == 0 {
		return nil, &forecast.FetchError{
			Provider: p.name,
			Kind:     forecast.FetchGeneric,
			Err:      forecast.ErrNoData,
		}
	}

	p.log.WithFields(logrus.Fields{
		"provider": p.name,
		"hours":    len(payload.Hours),
	}).Debug("normalizing upstream hours")

	return p.normalize(payload.Hours), nil
}

func (p *StormglassProvider) normalize(upstream []stormglassHour) []forecast.HourDetail {
	hours := make([]forecast.HourDetail, 0, len(upstream))

	for _, u := range upstream {
		hour := forecast.HourDetail{
			Time:       u.Time,
			SourceMeta: forecast.SourceMeta{Provider: p.name},
		}

		// Stormglass wind speeds are m/s; canonical records carry knots.
		if v, ok := pickByHeight(u.WindSpeed30m, u.WindSpeed20m, u.WindSpeed); ok {
			hour.WindSpeed = common.MsToKnots(v)
		}
		if v, ok := pickModel(u.Gust); ok {
			hour.WindGust = common.MsToKnots(v)
		}
		if v, ok := pickByHeight(u.WindDirection30m, u.WindDirection20m, u.WindDirection); ok {
			hour.WindDir = int(math.Round(v))
		}
		if v, ok := pickModel(u.WaveHeight); ok {
			hour.WaveHeight = forecast.Float64(common.Round2(v))
		}
		if v, ok := pickModel(u.WaveDirection); ok {
			hour.WaveDirection = forecast.Int(int(math.Round(v)))
		}
		if v, ok := pickModel(u.CurrentSpeed); ok {
			hour.CurrentSpeed = forecast.Float64(common.Round2(common.MsToKnots(v)))
		}
		if v, ok := pickModel(u.CurrentDirection); ok {
			hour.CurrentDirection = forecast.Int(int(math.Round(v)))
		}

		hours = append(hours, hour)
	}

	return hours
}

// pickModel selects a single model's value by the fixed source priority.
func pickModel(values modelValues) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	for _, source := range stormglassSourcePriority {
		if v, ok := values[source]; ok {
			return v, true
		}
	}
	return 0, false
}

// pickByHeight tries each measurement height in priority order and picks the
// first one any model reports.
func pickByHeight(heights ...modelValues) (float64, bool) {
	for _, values := range heights {
		if v, ok := pickModel(values); ok {
			return v, true
		}
	}
	return 0, false
}
