// Package dlog provides Context-carried logging.
//
// A Logger is attached to a Context with WithLogger, and fields are attached with WithField; every
// goroutine that is handed that Context logs through the same backend with the same fields.  The
// package-level functions (Errorf, Infoln, Debug, ...) look the Logger up from the Context they
// are passed.  A Context that has no Logger logs to the fallback Logger, which is Logrus unless
// changed with SetFallbackLogger.
//
// Backends: WrapLogrus, WrapZap, and WrapTB (for tests; see NewTestContext).
package dlog

import (
	"context"
	"log"
)

// LogLevel is an abstracted common log-level type for Logger.StdLogger and Logger.Log.
type LogLevel uint32

const (
	// LogLevelError is for errors that should definitely be noted.
	LogLevelError LogLevel = iota
	// LogLevelWarn is for non-critical entries that deserve eyes.
	LogLevelWarn
	// LogLevelInfo is for general operational entries about what's going on inside the
	// application.
	LogLevelInfo
	// LogLevelDebug is for debugging.  Very verbose logging.
	LogLevelDebug
	// LogLevelTrace is for extreme debugging.  Even finer-grained informational events than
	// the Debug.
	LogLevelTrace
)

var logLevelNames = [...]string{"error", "warn", "info", "debug", "trace"}

func (l LogLevel) String() string {
	if int(l) < len(logLevelNames) {
		return logLevelNames[l]
	}
	return "invalid"
}

// Logger is a generic logging interface that a backend must implement in order to be used with
// WithLogger.
type Logger interface {
	// Helper marks the calling function as a helper, and skips it for source location
	// information.  It's the dlog equivalent of testing.TB.Helper().
	Helper()

	// WithField returns a copy of the logger with the structured-logging field key=value
	// associated with it.  Future calls to .Log will include the field.
	WithField(key string, value interface{}) Logger

	// StdLogger returns a stdlib *log.Logger that writes to this Logger at the specified
	// loglevel; for use with external libraries that demand a stdlib *log.Logger.
	StdLogger(LogLevel) *log.Logger

	// Log actually logs a message.
	Log(level LogLevel, msg string)
}

// OptimizedLogger is a Logger that takes on the work of formatting the log arguments itself,
// rather than having dlog do it with fmt.
type OptimizedLogger interface {
	Logger
	UnformattedLog(level LogLevel, args ...interface{})
	UnformattedLogln(level LogLevel, args ...interface{})
	UnformattedLogf(level LogLevel, format string, args ...interface{})
}

type loggerCtxKey struct{}

// WithLogger returns a copy of ctx with logger associated with it, for future calls to
// dlog.Errorf and friends.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

func getLogger(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerCtxKey{}).(Logger); ok && logger != nil {
		return logger
	}
	logger := getFallbackLogger()
	if logger == nil {
		panic("dlog: Context has no Logger, and the fallback Logger is nil")
	}
	return logger
}

// WithField returns a copy of ctx with the field key=value associated with its Logger.
func WithField(ctx context.Context, key string, value interface{}) context.Context {
	return WithLogger(ctx, getLogger(ctx).WithField(key, value))
}

// StdLogger returns a stdlib *log.Logger that writes to ctx's Logger at the given level.
func StdLogger(ctx context.Context, level LogLevel) *log.Logger {
	return getLogger(ctx).StdLogger(level)
}
