// Package dformat provides the date and number formatters that a World hands out.
//
// Formatters are plain values.  The Live* functions return producers that build a fresh formatter
// on every call, so one caller tweaking its formatter never affects another's.
package dformat

import (
	"time"

	"github.com/pkg/errors"

	"github.com/datawire/dworld/dtime"
)

// A DateFormatter converts between Times and their textual representation, using a time.Format
// layout in a particular time zone.
type DateFormatter struct {
	// Layout is a reference-time layout as understood by time.Format.  Empty means RFC 3339.
	Layout string
	// Location is the time zone that Times are rendered in, and that layouts without a zone
	// are parsed in.  Nil means Local.
	Location *dtime.Location
}

func (f DateFormatter) layout() string {
	if f.Layout == "" {
		return time.RFC3339
	}
	return f.Layout
}

func (f DateFormatter) location() *dtime.Location {
	if f.Location == nil {
		return dtime.Local()
	}
	return f.Location
}

// Format renders t.
func (f DateFormatter) Format(t dtime.Time) string {
	return t.In(f.location()).Format(f.layout())
}

// Parse is the inverse of Format.
func (f DateFormatter) Parse(s string) (dtime.Time, error) {
	t, err := time.ParseInLocation(f.layout(), s, f.location())
	if err != nil {
		return dtime.Time{}, errors.Wrapf(err, "parse date %q", s)
	}
	return t, nil
}

// LiveDateFormatter returns a producer of DateFormatters: each call starts from an RFC 3339
// formatter in the local time zone and passes it through settings (which may be nil).
func LiveDateFormatter(settings func(DateFormatter) DateFormatter) func() DateFormatter {
	return func() DateFormatter {
		f := DateFormatter{Layout: time.RFC3339, Location: dtime.Local()}
		if settings != nil {
			f = settings(f)
		}
		return f
	}
}

// MockDateFormatter is the DateFormatter that a mock World starts with: RFC 3339, in UTC.
func MockDateFormatter() DateFormatter {
	return DateFormatter{Layout: time.RFC3339, Location: dtime.UTC()}
}
