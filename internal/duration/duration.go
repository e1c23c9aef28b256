// Package duration converts pairs of instants into elapsed time and
// parking cost.  All arithmetic happens on timezone-aware instants in a
// single reference zone; values scanned from the database already carry
// that zone because the MySQL DSN pins its loc parameter to it.
package duration

import (
	"errors"
	"time"
)

// ErrInvalidTimeRange is returned when the end instant precedes the
// start instant.  A negative duration is an input error, not a valid
// billing state.
var ErrInvalidTimeRange = errors.New("duration: end precedes start")

// defaultZone is the reference timezone used when no explicit zone has
// been configured.  India Standard Time matches the civic local time
// of the deployment.
const defaultZone = "Asia/Kolkata"

// zone holds the reference location for all time arithmetic.  It is
// set once at startup via SetZone and defaults to Asia/Kolkata.
var zone = mustLoad(defaultZone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Asia/Kolkata is a fixed offset; fall back to it explicitly so
		// the package stays usable on systems without tzdata.
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// SetZone replaces the reference timezone.  It returns an error when
// the name cannot be resolved, in which case the previous zone is kept.
func SetZone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	zone = loc
	return nil
}

// Zone returns the reference location.  Services use it to stamp entry
// and exit times so that stored values and computed values agree.
func Zone() *time.Location {
	return zone
}

// Now returns the current instant in the reference zone.
func Now() time.Time {
	return time.Now().In(zone)
}

// Breakdown is the result of an elapsed-time computation.  Hours and
// Minutes are truncated display values; TotalHours carries the full
// fractional precision and is the only field used for billing.
type Breakdown struct {
	Hours        int     // whole elapsed hours, truncated
	Minutes      int     // whole minutes of the remainder, truncated
	TotalSeconds float64 // exact elapsed seconds
	TotalHours   float64 // exact elapsed hours (TotalSeconds / 3600)
}

// Elapsed computes the time between start and end.  Both instants are
// normalized to the reference zone before subtraction; since a
// time.Time identifies an absolute instant, the normalization only
// fixes the representation and never shifts the value.  It returns
// ErrInvalidTimeRange when end precedes start.
func Elapsed(start, end time.Time) (Breakdown, error) {
	s := start.In(zone)
	e := end.In(zone)
	if e.Before(s) {
		return Breakdown{}, ErrInvalidTimeRange
	}
	totalSeconds := e.Sub(s).Seconds()
	hours := int(totalSeconds) / 3600
	minutes := (int(totalSeconds) % 3600) / 60
	return Breakdown{
		Hours:        hours,
		Minutes:      minutes,
		TotalSeconds: totalSeconds,
		TotalHours:   totalSeconds / 3600,
	}, nil
}

// ElapsedSince computes the time between start and the current instant
// in the reference zone.
func ElapsedSince(start time.Time) (Breakdown, error) {
	return Elapsed(start, Now())
}

// Cost converts a breakdown into money using the lot's hourly rate.
// Billing uses the fractional hour count, never the truncated display
// values.
func Cost(b Breakdown, hourlyRate float64) float64 {
	return b.TotalHours * hourlyRate
}
