package dlog

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"testing"
)

type tbWrapper struct {
	testing.TB
	failOnError bool
	fields      map[string]interface{}
}

type tbWriter struct {
	w     tbWrapper
	level LogLevel
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.w.Helper()
	w.w.Log(w.level, strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// WrapTB converts a testing.TB (that is: either a *testing.T or a *testing.B) into a generic
// Logger.  If failOnError is true, then logging at LogLevelError marks the test as failed.
func WrapTB(in testing.TB, failOnError bool) Logger {
	return tbWrapper{TB: in, failOnError: failOnError}
}

// NewTestContext returns a Context that logs to t, for use in tests.
func NewTestContext(t testing.TB, failOnError bool) context.Context {
	return WithLogger(context.Background(), WrapTB(t, failOnError))
}

func (w tbWrapper) WithField(key string, value interface{}) Logger {
	ret := tbWrapper{
		TB:          w.TB,
		failOnError: w.failOnError,
		fields:      make(map[string]interface{}, len(w.fields)+1),
	}
	for k, v := range w.fields {
		ret.fields[k] = v
	}
	ret.fields[key] = value
	return ret
}

func (w tbWrapper) StdLogger(level LogLevel) *log.Logger {
	return log.New(tbWriter{w: w, level: level}, "", 0)
}

func (w tbWrapper) Log(level LogLevel, msg string) {
	w.Helper()

	keys := make([]string, 0, len(w.fields))
	for k := range w.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var line strings.Builder
	fmt.Fprintf(&line, "[%s] %s", level, msg)
	for _, k := range keys {
		fmt.Fprintf(&line, " %s=%#v", k, w.fields[k])
	}
	w.TB.Log(line.String())

	if level == LogLevelError && w.failOnError {
		w.TB.Fail()
	}
}
