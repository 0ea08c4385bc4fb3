package dtime

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser( //nolint:gochecknoglobals // stateless, and expensive-ish to build
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron parses a cron expression: the standard five fields, optionally preceded by a seconds
// field, or a descriptor such as "@hourly" or "@every 90s".  A "CRON_TZ=Area/City" prefix
// selects the time zone that the fields are interpreted in.
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid cron expression %q", expr)
	}
	return schedule, nil
}

// ScheduleCron runs action at every activation of schedule, on s.
//
// Each activation is computed from the previous *planned* activation rather than from when the
// action actually ran, and the next activation is queued before the action runs; so, like
// ScheduleRepeating, the cadence does not drift, and the action may cancel itself.
func ScheduleCron(s Scheduler, schedule cron.Schedule, action func()) CancelFunc {
	var (
		mu        sync.Mutex
		cancelled bool
		planned   = schedule.Next(s.Now())
	)

	var fire func()
	arm := func() {
		s.ScheduleAfter(planned.Sub(s.Now()), fire)
	}
	fire = func() {
		mu.Lock()
		if cancelled {
			mu.Unlock()
			return
		}
		next := schedule.Next(planned)
		if next.IsZero() {
			// The schedule has no further activations.
			cancelled = true
		} else {
			planned = next
			arm()
		}
		mu.Unlock()
		action()
	}

	mu.Lock()
	if planned.IsZero() {
		cancelled = true
	} else {
		arm()
	}
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		cancelled = true
	}
}
