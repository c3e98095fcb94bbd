package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the console logger used by the CLI and the deploy
// manager. Verbose lowers the level to debug.
func NewLogger(out io.Writer, verbose bool) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
