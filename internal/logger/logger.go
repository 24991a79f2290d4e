package logger

import (
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()
}

// SetLevel applies the configured level process-wide. Called once after
// config is loaded; unparsable levels keep the info default.
func SetLevel(level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
}

var Module = fx.Provide(New)
