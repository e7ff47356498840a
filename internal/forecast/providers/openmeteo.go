package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/Idseleveld1810/kitebuddy/internal/common"
	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
)

// OpenMeteoProvider is the baseline adapter: broad global coverage, no API
// key, no marine fields. Wave and current fields are always null.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

func NewOpenMeteoProvider(client *http.Client, log *logrus.Logger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newCircuit("openmeteo"),
		log:     log,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// SetBaseURL overrides the upstream endpoint. Test hook.
func (p *OpenMeteoProvider) SetBaseURL(u string) {
	p.baseURL = u
}

// openMeteoResponse is Open-Meteo's native hourly schema. Columns are
// parallel arrays indexed by time; pointer elements preserve upstream nulls.
type openMeteoResponse struct {
	Hourly struct {
		Time             []string   `json:"time"`
		WindSpeed10m     []*float64 `json:"wind_speed_10m"`
		WindGusts10m     []*float64 `json:"wind_gusts_10m"`
		WindDirection10m []*float64 `json:"wind_direction_10m"`
		Temperature2m    []*float64 `json:"temperature_2m"`
		Humidity2m       []*float64 `json:"relative_humidity_2m"`
		Precipitation    []*float64 `json:"precipitation"`
		CloudCover       []*float64 `json:"cloud_cover"`
		WeatherCode      []*int     `json:"weather_code"`
	} `json:"hourly"`
}

// FetchMarineData fetches and normalizes hourly forecast data for the given
// window. The upstream day-range parameters are derived from the instants.
func (p *OpenMeteoProvider) FetchMarineData(ctx context.Context, lat, lng float64, start, end time.Time) ([]forecast.HourDetail, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lng))
		values.Set("hourly", "wind_speed_10m,wind_gusts_10m,wind_direction_10m,temperature_2m,relative_humidity_2m,precipitation,cloud_cover,weather_code")
		values.Set("start_date", start.UTC().Format(forecast.DateFormat))
		values.Set("end_date", end.UTC().Format(forecast.DateFormat))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &forecast.FetchError{Provider: p.name, Kind: forecast.FetchGeneric, Err: err}
	}

	if len(payload.Hourly.Time) == 0 {
		return nil, &forecast.FetchError{
			Provider: p.name,
			Kind:     forecast.FetchGeneric,
			Err:      forecast.ErrNoData,
		}
	}

	p.log.WithFields(logrus.Fields{
		"provider": p.name,
		"hours":    len(payload.Hourly.Time),
	}).Debug("normalizing upstream hours")

	return p.normalize(payload), nil
}

func (p *OpenMeteoProvider) normalize(payload openMeteoResponse) []forecast.HourDetail {
	h := payload.Hourly
	hours := make([]forecast.HourDetail, 0, len(h.Time))

	for i, ts := range h.Time {
		hour := forecast.HourDetail{
			Time:       ts,
			SourceMeta: forecast.SourceMeta{Provider: p.name},
		}

		// Wind comes in km/h and converts to knots at ingestion.
		if v := floatAt(h.WindSpeed10m, i); v != nil {
			hour.WindSpeed = common.KmhToKnots(*v)
		}
		if v := floatAt(h.WindGusts10m, i); v != nil {
			hour.WindGust = common.KmhToKnots(*v)
		}
		if v := floatAt(h.WindDirection10m, i); v != nil {
			hour.WindDir = int(math.Round(*v))
		}
		if v := floatAt(h.Temperature2m, i); v != nil {
			hour.Temperature = forecast.Float64(common.Round1(*v))
		}
		if v := floatAt(h.Humidity2m, i); v != nil {
			hour.Humidity = forecast.Int(int(math.Round(*v)))
		}
		if v := floatAt(h.Precipitation, i); v != nil {
			hour.Precipitation = forecast.Float64(common.Round1(*v))
		}
		if v := floatAt(h.CloudCover, i); v != nil {
			hour.CloudCover = forecast.Int(int(math.Round(*v)))
		}
		if i < len(h.WeatherCode) && h.WeatherCode[i] != nil {
			hour.WeatherCode = forecast.Int(*h.WeatherCode[i])
		}

		// Open-Meteo's forecast API carries no marine data; wave and current
		// fields stay null.
		hours = append(hours, hour)
	}

	return hours
}

func floatAt(col []*float64, i int) *float64 {
	if i < len(col) {
		return col[i]
	}
	return nil
}
