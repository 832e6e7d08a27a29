//go:build !logless

// Package logger provides the process-wide structured logger used by the
// dpslam packages. Build with the logless tag to swap this for a no-op sink
// on targets where pulling in zerolog's console writer isn't worth the cost.
package logger

import (
	"os"

	"github.com/rs/zerolog"
	logger "github.com/rs/zerolog/log"
)

// Log is the shared logger instance.
var Log = logger.With().Caller().Logger().Output(zerolog.ConsoleWriter{Out: os.Stderr})

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
