package dlog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var globals = struct { //nolint:gochecknoglobals // the fallback for Contexts without a Logger has to live somewhere
	fallbackLogger   Logger
	fallbackLoggerMu sync.RWMutex
}{
	fallbackLogger: WrapLogrus(logrus.New()),
}

func getFallbackLogger() Logger {
	globals.fallbackLoggerMu.RLock()
	defer globals.fallbackLoggerMu.RUnlock()
	return globals.fallbackLogger
}

// SetFallbackLogger sets the Logger used for a Context that doesn't have a Logger associated with
// it.  Setting it to nil makes logging on such a Context panic, which is handy for finding places
// where Contexts are not being passed along.
func SetFallbackLogger(l Logger) {
	globals.fallbackLoggerMu.Lock()
	defer globals.fallbackLoggerMu.Unlock()
	globals.fallbackLogger = l
}
