package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogOptions selects where and how verbosely a binary logs.
type LogOptions struct {
	Env     string
	Level   string
	Service string
	Out     io.Writer
}

// NewLogger builds the process logger. An unknown or empty Level falls back to
// debug in development and info elsewhere. Development output is rendered for
// a terminal; every other environment writes one JSON object per line.
func NewLogger(opts LogOptions) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	service := strings.TrimSpace(opts.Service)
	if service == "" {
		service = "smart-studio"
	}

	return zerolog.New(out).
		Level(logLevel(opts.Env, opts.Level)).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}

func logLevel(env, name string) zerolog.Level {
	if name = strings.TrimSpace(name); name != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(name)); err == nil && lvl != zerolog.NoLevel {
			return lvl
		}
	}
	if env == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
