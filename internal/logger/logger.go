package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the global logger instance, configured by Initialize.
var Log zerolog.Logger

// Initialize sets up the global logger. level is parsed via zerolog and
// falls back to info on error; pretty selects a human-readable console
// writer over the default JSON output.
func Initialize(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	Log = log.With().Str("service", "zeitop").Logger()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("logger initialized")
}

// GetLogger returns the global logger instance.
func GetLogger() *zerolog.Logger {
	return &Log
}

// Broker creates a logger for broker core events (connection lifecycle,
// registry changes, routing).
func Broker() *zerolog.Logger {
	l := Log.With().Str("component", "broker").Logger()
	return &l
}

// Wire creates a logger for per-frame protocol diagnostics.
func Wire() *zerolog.Logger {
	l := Log.With().Str("component", "wire").Logger()
	return &l
}

// HTTP creates a logger for the ambient HTTP surface.
func HTTP() *zerolog.Logger {
	l := Log.With().Str("component", "http").Logger()
	return &l
}

// DefaultService creates a logger for one of the bundled default services,
// scoped to its name.
func DefaultService(name string) *zerolog.Logger {
	l := Log.With().Str("component", "default_service").Str("service", name).Logger()
	return &l
}

// Config creates a logger for configuration loading events.
func Config() *zerolog.Logger {
	l := Log.With().Str("component", "config").Logger()
	return &l
}
