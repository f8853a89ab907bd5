// Package dbtelemetry centralizes the zap logger construction used by
// the storage packages, so the replacer and buffer pool never build
// their own loggers.
package dbtelemetry

import "go.uber.org/zap"

// Nop returns a logger that discards everything, used as the default
// when a component is constructed without one.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// New builds a development-mode logger suitable for the cmd/teachdb
// demo. Production embedders are expected to pass their own *zap.Logger
// in rather than call this.
func New() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// OrNop returns l if non-nil, else a no-op logger. Every storage
// component constructor routes its optional logger through this so
// nil is always safe to pass.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
