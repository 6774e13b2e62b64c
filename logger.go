package encdec

import (
	"log/slog"
	"sync/atomic"
)

// pkgLogger is nil until SetLogger is called. Package-level schemas are
// built during variable initialization, before any init function runs, so
// logger must not depend on init.
var pkgLogger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used while schemas are built. Encoding and
// decoding never log. A nil logger restores the default, which discards.
func SetLogger(l *slog.Logger) {
	pkgLogger.Store(l)
}

func logger() *slog.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
