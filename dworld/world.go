// Package dworld bundles every ambient dependency that code tends to reach for implicitly (the
// current time, locale, calendar, time zone, formatters, codecs, HTTP, and a scheduler) into a
// World of producer functions, so that the code can be handed either the real thing or a
// deterministic mock.
//
// Production code is given Live(ctx, cfg); tests are given Mock(cfg), and steer it by changing
// the MockConfig (or by replacing a World field outright) between calls.
package dworld

import (
	"context"
	"net/http"

	"github.com/datawire/dworld/dcodec"
	"github.com/datawire/dworld/dformat"
	"github.com/datawire/dworld/dhttp"
	"github.com/datawire/dworld/dlocale"
	"github.com/datawire/dworld/dlog"
	"github.com/datawire/dworld/dtime"
)

// A World is a set of producers.  Each field is called every time the value is needed, rather
// than once up front, so that a test can change what a Mock World produces part-way through.
type World struct {
	Now             func() dtime.Time
	Calendar        func() dlocale.Calendar
	Locale          func() dlocale.Locale
	TimeZone        func() *dtime.Location
	DateFormatter   func() dformat.DateFormatter
	NumberFormatter func() dformat.NumberFormatter
	Encoder         func() dcodec.Encoder
	Decoder         func() dcodec.Decoder
	Session         func() *http.Client
	Requester       dhttp.Requester
	Scheduler       func() dtime.Scheduler
}

// Live returns a World backed by the real clock, the process environment, and the network, as
// adjusted by cfg.  Scheduled actions that panic are logged to ctx.
func Live(ctx context.Context, cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	locale := dlocale.LiveLocale
	if cfg.Locale != "" {
		fixed, _ := dlocale.ParseLocale(cfg.Locale)
		locale = func() dlocale.Locale { return fixed }
	}
	timeZone := dlocale.LiveTimeZone
	if cfg.TimeZone != "" {
		fixed, _ := dlocale.LoadTimeZone(cfg.TimeZone)
		timeZone = func() *dtime.Location { return fixed }
	}
	calendarID := cfg.calendarID()

	encoder, decoder := liveCodec(cfg)

	session, err := dhttp.LiveSession(dhttp.ClientConfig{
		Timeout:      cfg.HTTP.Timeout,
		DisableHTTP2: cfg.HTTP.DisableHTTP2,
	})
	if err != nil {
		return nil, err
	}

	clock := dtime.NewStdClock(ctx)

	dlog.Debugf(ctx, "dworld: live world: locale=%v timeZone=%v calendar=%v codec=%v",
		locale(), timeZone(), calendarID, cfg.codec())

	return &World{
		Now: clock.Now,
		Calendar: func() dlocale.Calendar {
			cal, _ := dlocale.NewCalendar(calendarID, timeZone(), locale())
			return cal
		},
		Locale:   locale,
		TimeZone: timeZone,
		DateFormatter: dformat.LiveDateFormatter(func(f dformat.DateFormatter) dformat.DateFormatter {
			if cfg.DateLayout != "" {
				f.Layout = cfg.DateLayout
			}
			f.Location = timeZone()
			return f
		}),
		NumberFormatter: dformat.LiveNumberFormatter(func(f dformat.NumberFormatter) dformat.NumberFormatter {
			f.Locale = locale()
			f.MaxFractionDigits = cfg.FractionDigits
			return f
		}),
		Encoder:   encoder,
		Decoder:   decoder,
		Session:   session,
		Requester: dhttp.LiveRequester(session),
		Scheduler: func() dtime.Scheduler { return clock },
	}, nil
}

func liveCodec(cfg Config) (func() dcodec.Encoder, func() dcodec.Decoder) {
	name := cfg.codec()
	if name != dcodec.NameJSON && name != dcodec.NameJSONC {
		enc, dec, _ := dcodec.ByName(name)
		return func() dcodec.Encoder { return enc }, func() dcodec.Decoder { return dec }
	}
	encoder := dcodec.LiveJSONEncoder(func(e dcodec.JSONEncoder) dcodec.JSONEncoder {
		e.Indent = cfg.JSONIndent
		return e
	})
	decoder := dcodec.LiveJSONDecoder(func(d dcodec.JSONDecoder) dcodec.JSONDecoder {
		d.AllowComments = name == dcodec.NameJSONC
		return d
	})
	return encoder, decoder
}
