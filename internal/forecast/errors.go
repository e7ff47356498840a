package forecast

import (
	"errors"
	"fmt"
)

var (
	// ErrSpotNotFound is returned when a spot id is not in the catalog.
	ErrSpotNotFound = errors.New("spot not found")

	// ErrUpdaterBusy is returned when a batch update is requested while one
	// is already running.
	ErrUpdaterBusy = errors.New("batch update already running")

	// ErrNoData is returned when a provider responds without any hourly data.
	ErrNoData = errors.New("no forecast data available")
)

// FetchErrorKind classifies upstream failures so callers can apply
// different fallback policy per cause.
type FetchErrorKind string

const (
	FetchAuth       FetchErrorKind = "auth"
	FetchRateLimit  FetchErrorKind = "rate_limit"
	FetchValidation FetchErrorKind = "validation"
	FetchGeneric    FetchErrorKind = "generic"
)

// FetchError is a typed upstream failure raised by provider adapters.
type FetchError struct {
	Provider string
	Kind     FetchErrorKind
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s fetch failed (%s): %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s fetch failed (%s): status %d", e.Provider, e.Kind, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }
