// Package logger builds the zerolog loggers used across the gateway.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to stdout. Format is "json" or
// "console"; level follows zerolog's numeric levels. When sampling is
// enabled, repeated messages are reduced with a basic 1-in-5 sampler.
func New(level int, format string, sample bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	log := zerolog.New(w).
		Level(zerolog.Level(level)).
		With().
		Timestamp().
		Logger()

	if sample {
		log = log.Sample(&zerolog.BasicSampler{N: 5})
	}
	return log
}

// Nop returns a disabled logger for tests and optional dependencies.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
