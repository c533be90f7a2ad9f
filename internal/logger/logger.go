// File: internal/logger/logger.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process-wide structured logger. Components take a *slog.Logger and fall
// back to L when none is supplied.

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger instance. It discards all output until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

var level slog.LevelVar

// Options configures the logger initialization.
type Options struct {
	Enabled bool      // If false, all logging is discarded
	Level   string    // debug, info, warn, error. Default: info
	Format  string    // text or json. Default: text
	Output  io.Writer // Default: os.Stderr
}

// Init configures logging and returns the new global logger.
func Init(opts Options) *slog.Logger {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return L
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level.Set(ParseLevel(opts.Level))
	hopts := &slog.HandlerOptions{Level: &level}
	if strings.EqualFold(opts.Format, "json") {
		L = slog.New(slog.NewJSONHandler(out, hopts))
	} else {
		L = slog.New(slog.NewTextHandler(out, hopts))
	}
	return L
}

// SetLevel changes the level of every logger built by Init.
func SetLevel(s string) { level.Set(ParseLevel(s)) }

// ParseLevel maps a level name to slog.Level; unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Or returns l, or the global logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return L
}

// With returns the global logger scoped to a component name.
func With(component string) *slog.Logger { return L.With("component", component) }
