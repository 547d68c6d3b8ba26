package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/keyhub/internal/config"
)

// NewLogger creates a structured zerolog.Logger with the level taken from the
// config. An unparseable level falls back to info.
func NewLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "keyhub").
		Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
