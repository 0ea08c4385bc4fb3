package dlog

import (
	"log"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapWrapper struct {
	logger *zap.Logger
}

var zapLevels = [...]zapcore.Level{
	LogLevelError: zapcore.ErrorLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelDebug: zapcore.DebugLevel,
	// zap has nothing finer than Debug.
	LogLevelTrace: zapcore.DebugLevel,
}

func toZapLevel(level LogLevel) zapcore.Level {
	if int(level) >= len(zapLevels) {
		panic(errors.Errorf("dlog: invalid LogLevel: %d", level))
	}
	return zapLevels[level]
}

// WrapZap converts a zap *Logger into a generic Logger.
func WrapZap(in *zap.Logger) Logger {
	// user code -> dlog.Infof -> logArgsf -> zapWrapper.Log
	return zapWrapper{in.WithOptions(zap.AddCallerSkip(3))}
}

func (l zapWrapper) Helper() {}

func (l zapWrapper) WithField(key string, value interface{}) Logger {
	return zapWrapper{l.logger.With(zap.Any(key, value))}
}

func (l zapWrapper) StdLogger(level LogLevel) *log.Logger {
	std, err := zap.NewStdLogAt(l.logger, toZapLevel(level))
	if err != nil {
		panic(errors.Wrap(err, "dlog: zap.NewStdLogAt"))
	}
	return std
}

func (l zapWrapper) Log(level LogLevel, msg string) {
	if entry := l.logger.Check(toZapLevel(level), msg); entry != nil {
		entry.Write()
	}
}
