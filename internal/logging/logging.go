package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger at the given level, falling back to info when
// the level string does not parse. The console runs on the terminal, so the
// process log goes to w (a file in production) rather than stdout.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}
