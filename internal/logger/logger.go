package logger

import (
	"os"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
	LogLevelFatal = "FATAL"
)

// SetupLogging configures the global zerolog field names. Call once at
// process start, before any logger is created.
func SetupLogging() {
	zerolog.LevelFieldName = "level_name"
	zerolog.TimestampFieldName = "timestamp"
}

// NewLogger returns a component-tagged logger writing JSON to stderr. The
// level is read from TRIAGE_LOG_LEVEL and defaults to INFO.
func NewLogger(component string) zerolog.Logger {
	level, ok := os.LookupEnv("TRIAGE_LOG_LEVEL")
	if !ok {
		level = LogLevelInfo
	}

	levelValue := zerolog.InfoLevel
	switch level {
	case LogLevelDebug:
		levelValue = zerolog.DebugLevel
	case LogLevelWarn:
		levelValue = zerolog.WarnLevel
	case LogLevelError:
		levelValue = zerolog.ErrorLevel
	case LogLevelFatal:
		levelValue = zerolog.FatalLevel
	}

	return zerolog.New(os.Stderr).
		With().
		Str("component", component).
		Timestamp().
		Logger().
		Level(levelValue)
}
