package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLogLevel keeps the console quiet unless something needs attention.
const DefaultLogLevel = "warn"

// InitLogger installs a console logger on stderr at the given level.
// Stdout is reserved for results and the MCP stdio transport.
func InitLogger(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
	return nil
}

// ParseLogLevel converts a level name to a zerolog level. Empty means DefaultLogLevel.
func ParseLogLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLogLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", level)
	}
	return lvl, nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.Fatal().Err(err).Msg(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	log.Warn().Err(err).Msg(msg)
}
