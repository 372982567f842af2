package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_IsSingleton(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	var first, second bytes.Buffer
	Init(Options{Level: "info", Output: &first})
	Init(Options{Level: "info", Output: &second})

	l := Get()
	l.Info().Msg("hello")

	if !strings.Contains(first.String(), "hello") {
		t.Fatalf("expected first writer to receive the log line")
	}
	if second.Len() != 0 {
		t.Fatalf("expected second Init to be ignored")
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestInit_WritesRotatedFile(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	path := filepath.Join(t.TempDir(), "app.log")
	var stdout bytes.Buffer
	Init(Options{Level: "debug", Output: &stdout, File: &FileRotation{Filename: path}})

	l := Get()
	l.Debug().Str("component", "test").Msg("to file")
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") || !strings.Contains(stdout.String(), "to file") {
		t.Fatalf("expected line in both sinks; file=%q stdout=%q", data, stdout.String())
	}
}
