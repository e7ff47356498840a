package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// dutchWeekdays indexes localized weekday names by time.Weekday
// (Sunday = 0). The static forecast files key their hourly arrays this way.
var dutchWeekdays = [7]string{
	"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag",
}

// FileFallback serves pre-generated forecast data from static JSON files,
// one file per spot, as the last resort when cache and live fetch both fail.
type FileFallback struct {
	dir string
	log *logrus.Logger
}

func NewFileFallback(dir string, log *logrus.Logger) *FileFallback {
	return &FileFallback{dir: dir, log: log}
}

// ForDate returns the static hours for a spot on the weekday of the given
// date, or nil when the spot file or the weekday entry is absent.
func (f *FileFallback) ForDate(spotID, date string) ([]HourDetail, error) {
	day, err := time.Parse(DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	path := filepath.Join(f.dir, spotID+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			f.log.WithField("path", path).Debug("no static forecast file for spot")
			return nil, nil
		}
		return nil, fmt.Errorf("read static forecast: %w", err)
	}

	var byWeekday map[string][]HourDetail
	if err := json.Unmarshal(raw, &byWeekday); err != nil {
		return nil, fmt.Errorf("parse static forecast %s: %w", path, err)
	}

	dayName := dutchWeekdays[int(day.Weekday())]
	hours := byWeekday[dayName]

	f.log.WithFields(logrus.Fields{
		"spot":    spotID,
		"weekday": dayName,
		"hours":   len(hours),
	}).Debug("loaded static forecast data")

	return hours, nil
}
