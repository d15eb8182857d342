package indices

import (
	"errors"
	"fmt"
)

// Failure conditions of a roll-forward.
//
// Sources report ErrNotYetPublished and ErrSourceUnavailable; the Engine retries only the latter.
var (
	// ErrGap is returned when a month is requested out of order.
	ErrGap = errors.New("monthly series is not contiguous")
	// ErrNotYetPublished is returned when the provider has not released the value yet.
	ErrNotYetPublished = errors.New("not yet published")
	// ErrSourceUnavailable is a transient failure of a source.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrTimeout is returned when a source stayed unavailable for the whole retry budget.
	ErrTimeout = errors.New("timeout")
	// ErrEmptySeries is returned when a ledger has no anchor record.
	ErrEmptySeries = errors.New("series has no anchor record")
)

// GapError describes a contiguity violation. It matches ErrGap with errors.Is.
type GapError struct {
	Series    string
	Last      Month // last month in the series, or the month before a hole
	Requested Month // month that cannot follow Last
}

func (e *GapError) Error() string {
	if e.Series == "" {
		return fmt.Sprintf("%v: %v cannot follow %v", ErrGap, e.Requested, e.Last)
	}
	return fmt.Sprintf("%s: %v: %v cannot follow %v", e.Series, ErrGap, e.Requested, e.Last)
}

func (e *GapError) Unwrap() error { return ErrGap }
