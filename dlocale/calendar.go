package dlocale

import (
	"time"

	"github.com/pkg/errors"

	"github.com/datawire/dworld/dtime"
)

// ErrUnknownCalendar is returned by NewCalendar for a CalendarID it does not know.
var ErrUnknownCalendar = errors.New("unknown calendar")

// A CalendarID names a calendar system.
type CalendarID string

const (
	// Gregorian is the Gregorian calendar, with the first day of the week taken from the
	// locale's region.
	Gregorian CalendarID = "gregorian"
	// ISO8601 is the Gregorian calendar with weeks that always start on Monday.
	ISO8601 CalendarID = "iso8601"
)

// Regions where weeks start on Sunday, per CLDR.
var sundayFirstRegions = map[string]bool{ //nolint:gochecknoglobals // read-only table
	"AG": true, "AS": true, "BD": true, "BR": true, "BS": true, "BT": true, "BW": true,
	"BZ": true, "CA": true, "CN": true, "CO": true, "DM": true, "DO": true, "ET": true,
	"GT": true, "GU": true, "HK": true, "HN": true, "ID": true, "IL": true, "IN": true,
	"JM": true, "JP": true, "KE": true, "KH": true, "KR": true, "LA": true, "MH": true,
	"MM": true, "MO": true, "MT": true, "MX": true, "MZ": true, "NI": true, "NP": true,
	"PA": true, "PE": true, "PH": true, "PK": true, "PR": true, "PT": true, "PY": true,
	"SA": true, "SG": true, "SV": true, "TH": true, "TT": true, "TW": true, "UM": true,
	"US": true, "VE": true, "VI": true, "WS": true, "YE": true, "ZA": true, "ZW": true,
}

// A Calendar does day and week arithmetic in a particular time zone.
type Calendar struct {
	ID           CalendarID
	Location     *dtime.Location
	Locale       Locale
	FirstWeekday time.Weekday
}

// NewCalendar returns the calendar id for the given time zone and locale.  A nil loc means UTC.
func NewCalendar(id CalendarID, loc *dtime.Location, locale Locale) (Calendar, error) {
	if loc == nil {
		loc = dtime.UTC()
	}
	cal := Calendar{ID: id, Location: loc, Locale: locale}
	switch id {
	case ISO8601:
		cal.FirstWeekday = time.Monday
	case Gregorian:
		cal.FirstWeekday = time.Monday
		if sundayFirstRegions[locale.Region()] {
			cal.FirstWeekday = time.Sunday
		}
	default:
		return Calendar{}, errors.Wrapf(ErrUnknownCalendar, "calendar %q", id)
	}
	return cal, nil
}

func (c Calendar) location() *dtime.Location {
	if c.Location == nil {
		return dtime.UTC()
	}
	return c.Location
}

// Date returns the Time for the given wall-clock reading in the calendar's time zone.
func (c Calendar) Date(year int, month time.Month, day, hour, min, sec, nsec int) dtime.Time {
	return time.Date(year, month, day, hour, min, sec, nsec, c.location())
}

// StartOfDay returns midnight at the start of the day containing t, in the calendar's time zone.
func (c Calendar) StartOfDay(t dtime.Time) dtime.Time {
	year, month, day := t.In(c.location()).Date()
	return c.Date(year, month, day, 0, 0, 0, 0)
}

// StartOfWeek returns midnight at the start of the week containing t.
func (c Calendar) StartOfWeek(t dtime.Time) dtime.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) - int(c.FirstWeekday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// LiveTimeZone returns the system's local time zone.
func LiveTimeZone() *dtime.Location {
	return dtime.Local()
}

// LoadTimeZone returns the named IANA time zone.  "" and "Local" mean the system's local zone.
func LoadTimeZone(name string) (*dtime.Location, error) {
	if name == "" || name == "Local" {
		return dtime.Local(), nil
	}
	loc, err := dtime.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "time zone %q", name)
	}
	return loc, nil
}

// LiveCalendar returns the Gregorian calendar in the local time zone, for the LiveLocale.
func LiveCalendar() Calendar {
	cal, _ := NewCalendar(Gregorian, LiveTimeZone(), LiveLocale())
	return cal
}

// MockTimeZone is the time zone that a mock World starts with.
func MockTimeZone() *dtime.Location {
	return dtime.UTC()
}

// MockCalendar is the calendar that a mock World starts with.
func MockCalendar() Calendar {
	cal, _ := NewCalendar(Gregorian, MockTimeZone(), MockLocale())
	return cal
}
