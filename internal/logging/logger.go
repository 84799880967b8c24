package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the console logger installed as log.Logger by the binaries.
// An unparsable level falls back to debug outside production and info in it.
func New(environment, level string) zerolog.Logger {
	production := environment == "PRODUCTION"
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    production,
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.DebugLevel
		if production {
			lvl = zerolog.InfoLevel
		}
	}
	zerolog.SetGlobalLevel(lvl)

	return logger
}
