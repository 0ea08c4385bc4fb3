package dlog

import (
	"context"
	"fmt"
	"strings"
)

func logArgs(ctx context.Context, level LogLevel, args ...interface{}) {
	l := getLogger(ctx)
	l.Helper()
	if opt, ok := l.(OptimizedLogger); ok {
		opt.UnformattedLog(level, args...)
		return
	}
	l.Log(level, fmt.Sprint(args...))
}

func logArgsln(ctx context.Context, level LogLevel, args ...interface{}) {
	l := getLogger(ctx)
	l.Helper()
	if opt, ok := l.(OptimizedLogger); ok {
		opt.UnformattedLogln(level, args...)
		return
	}
	l.Log(level, strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func logArgsf(ctx context.Context, level LogLevel, format string, args ...interface{}) {
	l := getLogger(ctx)
	l.Helper()
	if opt, ok := l.(OptimizedLogger); ok {
		opt.UnformattedLogf(level, format, args...)
		return
	}
	l.Log(level, fmt.Sprintf(format, args...))
}

// Error logs at LogLevelError, formatting args as fmt.Sprint does.
func Error(ctx context.Context, args ...interface{}) { logArgs(ctx, LogLevelError, args...) }

// Warn logs at LogLevelWarn, formatting args as fmt.Sprint does.
func Warn(ctx context.Context, args ...interface{}) { logArgs(ctx, LogLevelWarn, args...) }

// Info logs at LogLevelInfo, formatting args as fmt.Sprint does.
func Info(ctx context.Context, args ...interface{}) { logArgs(ctx, LogLevelInfo, args...) }

// Debug logs at LogLevelDebug, formatting args as fmt.Sprint does.
func Debug(ctx context.Context, args ...interface{}) { logArgs(ctx, LogLevelDebug, args...) }

// Trace logs at LogLevelTrace, formatting args as fmt.Sprint does.
func Trace(ctx context.Context, args ...interface{}) { logArgs(ctx, LogLevelTrace, args...) }

// Errorln logs at LogLevelError, formatting args as fmt.Sprintln does.
func Errorln(ctx context.Context, args ...interface{}) { logArgsln(ctx, LogLevelError, args...) }

// Warnln logs at LogLevelWarn, formatting args as fmt.Sprintln does.
func Warnln(ctx context.Context, args ...interface{}) { logArgsln(ctx, LogLevelWarn, args...) }

// Infoln logs at LogLevelInfo, formatting args as fmt.Sprintln does.
func Infoln(ctx context.Context, args ...interface{}) { logArgsln(ctx, LogLevelInfo, args...) }

// Debugln logs at LogLevelDebug, formatting args as fmt.Sprintln does.
func Debugln(ctx context.Context, args ...interface{}) { logArgsln(ctx, LogLevelDebug, args...) }

// Traceln logs at LogLevelTrace, formatting args as fmt.Sprintln does.
func Traceln(ctx context.Context, args ...interface{}) { logArgsln(ctx, LogLevelTrace, args...) }

// Errorf logs at LogLevelError, formatting as fmt.Sprintf does.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logArgsf(ctx, LogLevelError, format, args...)
}

// Warnf logs at LogLevelWarn, formatting as fmt.Sprintf does.
func Warnf(ctx context.Context, format string, args ...interface{}) {
	logArgsf(ctx, LogLevelWarn, format, args...)
}

// Infof logs at LogLevelInfo, formatting as fmt.Sprintf does.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logArgsf(ctx, LogLevelInfo, format, args...)
}

// Debugf logs at LogLevelDebug, formatting as fmt.Sprintf does.
func Debugf(ctx context.Context, format string, args ...interface{}) {
	logArgsf(ctx, LogLevelDebug, format, args...)
}

// Tracef logs at LogLevelTrace, formatting as fmt.Sprintf does.
func Tracef(ctx context.Context, format string, args ...interface{}) {
	logArgsf(ctx, LogLevelTrace, format, args...)
}
