package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Idseleveld1810/kitebuddy/internal/forecast"
)

const stormglassSample = `{
  "hours": [
    {
      "time": "2025-06-10T06:00:00+00:00",
      "windSpeed30m": {"icon": 5.0, "noaa": 10.0, "meteo": 7.0},
      "gust": {"noaa": 12.0},
      "windDirection30m": {"noaa": 240.6},
      "waveHeight": {"meteo": 1.234},
      "waveDirection": {"icon": 200.2},
      "currentSpeed": {"noaa": 0.514},
      "currentDirection": {"noaa": 90.0}
    },
    {
      "time": "2025-06-10T07:00:00+00:00",
      "windSpeed20m": {"meteo": 8.0},
      "windDirection": {"icon": 250.0}
    }
  ]
}`

func stormglassWindow() (time.Time, time.Time) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 7)
}

func TestStormglassModelPriority(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(stormglassSample))
	}))
	defer srv.Close()

	p := NewStormglassProvider(srv.Client(), "test-key", testLogger())
	p.SetBaseURL(srv.URL)

	start, end := stormglassWindow()
	hours, err := p.FetchMarineData(context.Background(), 51.5664, 3.4906, start, end)
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Equal(t, "test-key", gotAuth)

	first := hours[0]
	// noaa wins over meteo and icon; 10 m/s is 19.4 kn. Never averaged.
	assert.InDelta(t, 19.4, first.WindSpeed, 0.001)
	assert.InDelta(t, 23.3, first.WindGust, 0.001)
	assert.Equal(t, 241, first.WindDir)
	require.NotNil(t, first.WaveHeight)
	assert.InDelta(t, 1.23, *first.WaveHeight, 0.001)
	require.NotNil(t, first.WaveDirection)
	assert.Equal(t, 200, *first.WaveDirection)
	require.NotNil(t, first.CurrentSpeed)
	// 0.514 m/s is right about one knot.
	assert.InDelta(t, 1.0, *first.CurrentSpeed, 0.001)
	require.NotNil(t, first.CurrentDirection)
	assert.Equal(t, 90, *first.CurrentDirection)
	assert.Equal(t, "stormglass", first.SourceMeta.Provider)
}

func TestStormglassHeightPriority(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(stormglassSample))
	}))
	defer srv.Close()

	p := NewStormglassProvider(srv.Client(), "test-key", testLogger())
	p.SetBaseURL(srv.URL)

	start, end := stormglassWindow()
	hours, err := p.FetchMarineData(context.Background(), 51.5664, 3.4906, start, end)
	require.NoError(t, err)

	// Second hour has no 30m reading; 20m wins over surface.
	second := hours[1]
	assert.InDelta(t, 15.6, second.WindSpeed, 0.001) // 8 m/s
	assert.Equal(t, 250, second.WindDir)
	assert.Nil(t, second.WaveHeight)
	assert.Nil(t, second.CurrentSpeed)
}

func TestStormglassMissingKey(t *testing.T) {
	p := NewStormglassProvider(http.DefaultClient, "", testLogger())

	start, end := stormglassWindow()
	_, err := p.FetchMarineData(context.Background(), 51.0, 3.0, start, end)
	require.Error(t, err)

	var fe *forecast.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, forecast.FetchAuth, fe.Kind)
}

func TestStormglassAuthFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewStormglassProvider(srv.Client(), "bad-key", testLogger())
	p.SetBaseURL(srv.URL)

	start, end := stormglassWindow()
	_, err := p.FetchMarineData(context.Background(), 51.0, 3.0, start, end)
	require.Error(t, err)

	var fe *forecast.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, forecast.FetchAuth, fe.Kind)
	assert.Equal(t, http.StatusUnauthorized, fe.Status)
	assert.Equal(t, 1, calls)
}
