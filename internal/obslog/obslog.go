// Package obslog is the engine's structured logging wrapper. It adapts
// cuemby-warren's pkg/log (a global zerolog.Logger, an Init(Config), and
// WithX child-logger helpers) to a single Component entry point, since the tree engine only ever tags log lines by component
// (e.g. "bptree", "bptree.query"), never by node/service/task id.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger all components derive from.
var Logger zerolog.Logger

// Level names a logging verbosity, mirroring cuemby-warren's string-typed
// Level rather than zerolog.Level directly.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config configures the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

func init() {
	Init(Config{Level: InfoLevel})
}

// Init (re)configures the global logger. Safe to call again to change
// verbosity or output at runtime.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
		return
	}
	Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// Component returns a child logger tagged with the given component name.
func Component(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
