// This file lets callers use dtime without also importing stdlib time for the basic types.

package dtime

import (
	"time"
)

// A Time represents an instant in time with nanosecond precision.  It is the timeline point of
// both Clock implementations.
type Time = time.Time

// A Duration represents the elapsed time between two instants as an int64 nanosecond count.
type Duration = time.Duration

// Common durations.
const (
	Nanosecond  = time.Nanosecond
	Microsecond = time.Microsecond
	Millisecond = time.Millisecond
	Second      = time.Second
	Minute      = time.Minute
	Hour        = time.Hour
)

// A Location maps time instants to the zone in use at that time.
type Location = time.Location

// UTC returns the Location representing Universal Coordinated Time (UTC).
func UTC() *Location {
	// A function rather than a variable, so that nobody gets the idea that they can set it.
	return time.UTC
}

// Local returns the system's local time zone.
func Local() *Location {
	return time.Local
}

// LoadLocation returns the Location with the given IANA name.
func LoadLocation(name string) (*Location, error) {
	return time.LoadLocation(name)
}

// ReferenceDate is 2001-01-01T00:00:00Z, the instant that mock clocks start at unless told
// otherwise.
var ReferenceDate = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // a time.Time can't be const
