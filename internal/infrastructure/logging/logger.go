package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the root logger's level and sinks.
type Options struct {
	Level  string
	Pretty bool
	// File enables a rotating log file next to stderr when non-empty.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds the root logger. An unknown level falls back to info.
func New(opts Options) zerolog.Logger {
	return newWithStderr(opts, os.Stderr)
}

func newWithStderr(opts Options, stderr io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var console io.Writer = stderr
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: stderr}
	}
	out := console
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		})
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "tracker").Logger()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
