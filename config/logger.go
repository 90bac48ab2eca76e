package config

import (
	"io"
	"log/slog"
	"strings"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales/oteladapters"
)

const otelScopeName = "github.com/AntonStoeckl/synthetic-sales-generator"

// NewLogger creates the process logger for the configured level and format.
// With LOG_FORMAT=otel, w is ignored and records go to the global OpenTelemetry LoggerProvider.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	if c.LogFormat == LogFormatOTel {
		return oteladapters.NewSlogBridgeLogger(otelScopeName), nil
	}

	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(value)))

	return level, err
}
