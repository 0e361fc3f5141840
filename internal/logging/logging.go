// Package logging builds the process logger from the configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/being-motion/spline/internal/config"
)

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New returns a logger writing to w in the configured format. Unknown levels
// fall back to info.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, err := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	if err != nil {
		logger.Warn("falling back to info level", slog.String("error", err.Error()))
	}
	return logger
}
