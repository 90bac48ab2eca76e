package oteladapters

import (
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
)

// NewSlogBridgeLogger creates a logger whose records go to the global OpenTelemetry LoggerProvider.
// The name becomes the instrumentation scope of every record.
func NewSlogBridgeLogger(name string) *slog.Logger {
	return otelslog.NewLogger(name)
}
