package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHourDetailDate(t *testing.T) {
	assert.Equal(t, "2025-06-10", HourDetail{Time: "2025-06-10T06:00"}.Date())
	assert.Equal(t, "2025-06-10", HourDetail{Time: "2025-06-10T06:00:00+00:00"}.Date())
	assert.Equal(t, "2025-06-10", HourDetail{Time: "2025-06-10"}.Date())
}

func TestGroupByDatePreservesOrder(t *testing.T) {
	hours := []HourDetail{
		{Time: "2025-06-10T06:00"},
		{Time: "2025-06-10T07:00"},
		{Time: "2025-06-11T06:00"},
		{Time: "2025-06-10T08:00"},
	}

	grouped := GroupByDate(hours)
	assert.Len(t, grouped, 2)
	assert.Equal(t, []HourDetail{
		{Time: "2025-06-10T06:00"},
		{Time: "2025-06-10T07:00"},
		{Time: "2025-06-10T08:00"},
	}, grouped["2025-06-10"])
	assert.Len(t, grouped["2025-06-11"], 1)
}

func TestKiteWindows(t *testing.T) {
	hours := []HourDetail{
		{Time: "2025-06-10T06:00", WindSpeed: 5},
		{Time: "2025-06-10T07:00", WindSpeed: 10},
		{Time: "2025-06-10T08:00", WindSpeed: 14},
		{Time: "2025-06-10T09:00", WindSpeed: 6},
		{Time: "2025-06-10T10:00", WindSpeed: 8},
	}

	windows := KiteWindows(hours)
	assert.Len(t, windows, 2)

	first := windows[0]
	assert.Equal(t, "2025-06-10T07:00", first.Start)
	assert.Equal(t, "2025-06-10T08:00", first.End)
	assert.Equal(t, 2, first.Hours)
	assert.Equal(t, 12.0, first.AvgSpeed)

	second := windows[1]
	assert.Equal(t, "2025-06-10T10:00", second.Start)
	assert.Equal(t, 1, second.Hours)
}

func TestKiteWindowsNoneBelowThreshold(t *testing.T) {
	hours := []HourDetail{
		{Time: "2025-06-10T06:00", WindSpeed: 3},
		{Time: "2025-06-10T07:00", WindSpeed: 7.9},
	}
	assert.Empty(t, KiteWindows(hours))
}
