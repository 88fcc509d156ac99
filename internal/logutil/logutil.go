package logutil

import (
	"io"
	"os"

	"cloud.google.com/go/compute/metadata"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogger sets up the global logger. On GCE it emits JSON with a
// severity field, elsewhere it writes human readable lines to stderr.
// Events below level are dropped.
func ConfigureLogger(level zerolog.Level) {
	configureLogger(os.Stderr, level, metadata.OnGCE())
}

func configureLogger(w io.Writer, level zerolog.Level, onGCE bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	var logger zerolog.Logger
	if onGCE {
		logger = zerolog.New(w).Hook(ErrorHook{})
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w})
	}
	log.Logger = logger.With().Timestamp().Caller().Logger().Sample(LevelSampler{Level: level})
}

// ParseLevel returns the level named name, or info if name is empty.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(name)
}

type ErrorHook struct{}

func (h ErrorHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	e.Str("severity", level.String())
}
