// Package logging builds the zerolog logger shared by all components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tiliavir/trivial-water-tracker/internal/config"
)

// Logger is the application logger plus the file it may hold open.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New builds a logger from the logger section. debug forces the debug level.
// Console output goes to stderr so it never mixes with command output.
func New(conf config.LoggerConfig, debug bool) (*Logger, error) {
	level, err := zerolog.ParseLevel(conf.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Level, err)
	}
	if debug {
		level = zerolog.DebugLevel
	}

	var (
		out  io.Writer = os.Stderr
		file *os.File
	)
	if conf.File != "" {
		if err := os.MkdirAll(filepath.Dir(conf.File), 0o700); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		file, err = os.OpenFile(conf.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = file
	} else if conf.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{Logger: zl, file: file}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
