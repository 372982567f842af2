// Package logger provides a singleton structured logger backed by zerolog.
//
// Initialise once at startup with Init, then retrieve anywhere with Get.
//
//	TRACE (-1) → DEBUG (0) → INFO (1) → WARN (2) → ERROR (3)
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Pretty enables human-friendly console output on the primary writer.
	Pretty bool
	// Output is the primary writer. Defaults to os.Stdout.
	Output io.Writer
	// File, when set, additionally writes JSON lines to a rotated file.
	File *FileRotation
}

// FileRotation configures the lumberjack file sink.
type FileRotation struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
	rotator     *lumberjack.Logger
)

// Init initialises the singleton logger. Safe to call multiple times – only
// the first call has any effect.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}
		if opts.File != nil && opts.File.Filename != "" {
			rotator = newRotator(*opts.File)
			out = zerolog.MultiLevelWriter(out, rotator)
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		instance = zerolog.New(out).
			Level(lvl).
			With().
			Timestamp().
			Caller().
			Logger()

		initialized = true
	})
	return instance
}

// Get returns the singleton logger. Panics if Init has not been called yet.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Close releases the rotated file, if any.
func Close() error {
	if rotator == nil {
		return nil
	}
	return rotator.Close()
}

// Reset tears down the singleton so that the next Init call rebuilds it.
// Intended for use in tests only.
func Reset() {
	_ = Close()
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
	rotator = nil
}

func newRotator(f FileRotation) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   f.Filename,
		MaxSize:    max(1, f.MaxSizeMB),
		MaxBackups: max(0, f.MaxBackups),
		MaxAge:     max(0, f.MaxAgeDays),
		Compress:   f.Compress,
	}
}

// parseLevel converts a string to a zerolog.Level, defaulting to info.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
