package dlog

import (
	"io"
	"log"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// logrusBackend is satisfied by both *logrus.Logger and *logrus.Entry.
type logrusBackend interface {
	WithField(key string, value interface{}) *logrus.Entry
	WriterLevel(level logrus.Level) *io.PipeWriter
	Log(level logrus.Level, args ...interface{})
	Logln(level logrus.Level, args ...interface{})
	Logf(level logrus.Level, format string, args ...interface{})
}

type logrusWrapper struct {
	backend logrusBackend
}

var _ OptimizedLogger = logrusWrapper{}

var logrusLevels = [...]logrus.Level{
	LogLevelError: logrus.ErrorLevel,
	LogLevelWarn:  logrus.WarnLevel,
	LogLevelInfo:  logrus.InfoLevel,
	LogLevelDebug: logrus.DebugLevel,
	LogLevelTrace: logrus.TraceLevel,
}

func toLogrusLevel(level LogLevel) logrus.Level {
	if int(level) >= len(logrusLevels) {
		panic(errors.Errorf("dlog: invalid LogLevel: %d", level))
	}
	return logrusLevels[level]
}

// Helper does nothing; source locations are fixed up by logrusCallerHook instead.
func (l logrusWrapper) Helper() {}

func (l logrusWrapper) WithField(key string, value interface{}) Logger {
	return logrusWrapper{l.backend.WithField(key, value)}
}

func (l logrusWrapper) StdLogger(level LogLevel) *log.Logger {
	return log.New(l.backend.WriterLevel(toLogrusLevel(level)), "", 0)
}

func (l logrusWrapper) Log(level LogLevel, msg string) {
	l.backend.Log(toLogrusLevel(level), msg)
}

func (l logrusWrapper) UnformattedLog(level LogLevel, args ...interface{}) {
	l.backend.Log(toLogrusLevel(level), args...)
}

func (l logrusWrapper) UnformattedLogln(level LogLevel, args ...interface{}) {
	l.backend.Logln(toLogrusLevel(level), args...)
}

func (l logrusWrapper) UnformattedLogf(level LogLevel, format string, args ...interface{}) {
	l.backend.Logf(toLogrusLevel(level), format, args...)
}

// WrapLogrus converts a logrus *Logger into a generic Logger.
//
// Call it once during process setup and hand the result to WithLogger.
func WrapLogrus(in *logrus.Logger) Logger {
	in.AddHook(logrusCallerHook{})
	return logrusWrapper{in}
}

// logrusCallerHook rewrites the reported caller so that it points at the code that called dlog,
// not at dlog itself.  Logrus has nothing like testing.TB.Helper().
type logrusCallerHook struct{}

func (logrusCallerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (logrusCallerHook) Fire(entry *logrus.Entry) error {
	if entry.Caller != nil && strings.HasPrefix(entry.Caller.Function, dlogPackage+".") {
		entry.Caller = findCaller()
	}
	return nil
}

const (
	dlogPackage    = "github.com/datawire/dworld/dlog"
	logrusPackage  = "github.com/sirupsen/logrus"
	maxCallerDepth = 25
)

func findCaller() *runtime.Frame {
	pcs := make([]uintptr, maxCallerDepth)
	depth := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:depth])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, logrusPackage+".") &&
			!strings.HasPrefix(frame.Function, dlogPackage+".") {
			return &frame
		}
		if !more {
			return nil
		}
	}
}
