package testlog

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/hyperionctl/internal/logging"
)

// Start configures test logging and returns a logger that writes through t.
func Start(t testing.TB) zerolog.Logger {
	t.Helper()
	logging.ConfigureTests()
	l := zerolog.New(zerolog.NewTestWriter(t)).With().Str("test", t.Name()).Logger()
	l.Debug().Msg("start")
	return l
}
