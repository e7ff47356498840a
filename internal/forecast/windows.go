package forecast

import "github.com/Idseleveld1810/kitebuddy/internal/common"

// KiteableThreshold is the minimum wind speed in knots considered kiteable.
const KiteableThreshold = 8.0

// WindWindow is a contiguous run of kiteable hours within one day.
type WindWindow struct {
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Hours    int     `json:"hours"`
	AvgSpeed float64 `json:"avgSpeed"`
}

// KiteWindows finds all contiguous runs of hours whose wind speed is at or
// above the kiteable threshold.
func KiteWindows(hours []HourDetail) []WindWindow {
	var windows []WindWindow
	var current *WindWindow
	var sum float64

	for _, h := range hours {
		if h.WindSpeed >= KiteableThreshold {
			if current == nil {
				current = &WindWindow{Start: h.Time}
				sum = 0
			}
			current.End = h.Time
			current.Hours++
			sum += h.WindSpeed
			current.AvgSpeed = common.Round1(sum / float64(current.Hours))
			continue
		}
		if current != nil {
			windows = append(windows, *current)
			current = nil
		}
	}

	if current != nil {
		windows = append(windows, *current)
	}
	return windows
}
