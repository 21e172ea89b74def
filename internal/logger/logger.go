// Package logger configures the process-wide zerolog logger.
package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var once sync.Once

// Init configures the global logger once: human-readable console output
// on stderr, info level by default, debug level when requested.
func Init(debug bool) {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)

		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	})
}
