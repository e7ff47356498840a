package forecast

import (
	"strings"
	"time"
)

// SourceMeta identifies which upstream produced an hourly record and whether
// it was enriched with Rijkswaterstaat current measurements.
type SourceMeta struct {
	Provider        string `json:"provider"`
	EnrichedWithRWS bool   `json:"enrichedWithRWS,omitempty"`
	RWSStation      string `json:"rwsStation,omitempty"`
}

// HourDetail is the canonical hourly record every provider normalizes into.
// Wind speeds are knots, directions whole degrees. Fields an upstream does
// not supply are nil pointers and serialize as explicit JSON nulls; consumers
// rely on every key being present.
type HourDetail struct {
	Time             string     `json:"time"` // ISO-8601, hour granularity, source's reporting zone
	WindSpeed        float64    `json:"windSpeed"`
	WindGust         float64    `json:"windGust"`
	WindDir          int        `json:"windDir"`
	Temperature      *float64   `json:"temperature"`
	Humidity         *int       `json:"humidity"`
	Precipitation    *float64   `json:"precipitation"`
	CloudCover       *int       `json:"cloudCover"`
	WeatherCode      *int       `json:"weatherCode"`
	WaveHeight       *float64   `json:"waveHeight"`
	WaveDirection    *int       `json:"waveDirection"`
	CurrentSpeed     *float64   `json:"currentSpeed"`
	CurrentDirection *int       `json:"currentDirection"`
	SourceMeta       SourceMeta `json:"sourceMeta"`
}

// Date returns the calendar day (YYYY-MM-DD) of the record's timestamp.
func (h HourDetail) Date() string {
	if i := strings.IndexByte(h.Time, 'T'); i > 0 {
		return h.Time[:i]
	}
	return h.Time
}

// GroupByDate buckets hours by calendar day, preserving the input order
// within each day.
func GroupByDate(hours []HourDetail) map[string][]HourDetail {
	grouped := make(map[string][]HourDetail)
	for _, h := range hours {
		d := h.Date()
		grouped[d] = append(grouped[d], h)
	}
	return grouped
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// DateFormat is the wire format for calendar days.
const DateFormat = "2006-01-02"

// Today returns the current calendar day in UTC.
func Today(now func() time.Time) string {
	return now().UTC().Format(DateFormat)
}
