package dworld

import (
	"net/http"
	"sync"

	"github.com/datawire/dworld/dcodec"
	"github.com/datawire/dworld/dformat"
	"github.com/datawire/dworld/dhttp"
	"github.com/datawire/dworld/dlocale"
	"github.com/datawire/dworld/dtime"
)

// MockConfig holds what a Mock World produces.  The World reads it on every call, so a test
// may change a field between two calls and see the new value from the second one.  Use Update
// instead of plain assignment if the World is being used from other goroutines at the same time.
type MockConfig struct {
	mu sync.Mutex

	// Scheduler is the virtual clock.  It is also what Now reads, unless Now is set.
	Scheduler *dtime.VirtualScheduler
	Now       func() dtime.Time

	Locale          dlocale.Locale
	TimeZone        *dtime.Location
	Calendar        dlocale.Calendar
	DateFormatter   dformat.DateFormatter
	NumberFormatter dformat.NumberFormatter

	// Encoder and Decoder start out as a *dcodec.MockEncoder and a *dcodec.MockDecoder.
	Encoder dcodec.Encoder
	Decoder dcodec.Decoder

	// Transport carries every request made through the Session or the Requester; it starts
	// out as a *dhttp.MockTransport.
	Transport http.RoundTripper
}

// NewMockConfig returns the defaults: a virtual clock at dtime.ReferenceDate, the US locale in
// UTC, and codecs and a transport that fail until a test primes them.
func NewMockConfig() *MockConfig {
	return &MockConfig{
		Scheduler:       dtime.NewVirtualScheduler(dtime.ReferenceDate),
		Locale:          dlocale.MockLocale(),
		TimeZone:        dlocale.MockTimeZone(),
		Calendar:        dlocale.MockCalendar(),
		DateFormatter:   dformat.MockDateFormatter(),
		NumberFormatter: dformat.MockNumberFormatter(),
		Encoder:         &dcodec.MockEncoder{},
		Decoder:         &dcodec.MockDecoder{},
		Transport:       &dhttp.MockTransport{},
	}
}

// Update calls fn with the MockConfig locked.
func (c *MockConfig) Update(fn func(*MockConfig)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

// mockSnapshot is a copy of MockConfig's fields, taken under its lock.
type mockSnapshot struct {
	Scheduler       *dtime.VirtualScheduler
	Now             func() dtime.Time
	Locale          dlocale.Locale
	TimeZone        *dtime.Location
	Calendar        dlocale.Calendar
	DateFormatter   dformat.DateFormatter
	NumberFormatter dformat.NumberFormatter
	Encoder         dcodec.Encoder
	Decoder         dcodec.Decoder
	Transport       http.RoundTripper
}

func (c *MockConfig) read() mockSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mockSnapshot{
		Scheduler:       c.Scheduler,
		Now:             c.Now,
		Locale:          c.Locale,
		TimeZone:        c.TimeZone,
		Calendar:        c.Calendar,
		DateFormatter:   c.DateFormatter,
		NumberFormatter: c.NumberFormatter,
		Encoder:         c.Encoder,
		Decoder:         c.Decoder,
		Transport:       c.Transport,
	}
}

func (c *MockConfig) transport() http.RoundTripper {
	if t := c.read().Transport; t != nil {
		return t
	}
	return &dhttp.MockTransport{}
}

// Mock returns a World that produces whatever cfg currently holds.  A nil cfg means
// NewMockConfig().
func Mock(cfg *MockConfig) *World {
	if cfg == nil {
		cfg = NewMockConfig()
	}
	return &World{
		Now: func() dtime.Time {
			snap := cfg.read()
			if snap.Now != nil {
				return snap.Now()
			}
			return snap.Scheduler.Now()
		},
		Calendar:        func() dlocale.Calendar { return cfg.read().Calendar },
		Locale:          func() dlocale.Locale { return cfg.read().Locale },
		TimeZone:        func() *dtime.Location { return cfg.read().TimeZone },
		DateFormatter:   func() dformat.DateFormatter { return cfg.read().DateFormatter },
		NumberFormatter: func() dformat.NumberFormatter { return cfg.read().NumberFormatter },
		Encoder:         func() dcodec.Encoder { return cfg.read().Encoder },
		Decoder:         func() dcodec.Decoder { return cfg.read().Decoder },
		Session: func() *http.Client {
			return &http.Client{Transport: cfg.transport()}
		},
		Requester: func(req *http.Request) (*http.Response, error) {
			return cfg.transport().RoundTrip(req)
		},
		Scheduler: func() dtime.Scheduler { return cfg.read().Scheduler },
	}
}
