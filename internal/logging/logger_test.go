package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Options{Component: "session", Console: &buf})

	l.Info().Str("mode", "demo").Msg("signed in")

	out := buf.String()
	if !strings.Contains(out, "signed in") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "session") {
		t.Errorf("output %q missing component", out)
	}
}

func TestLoggerFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.log")
	var buf bytes.Buffer
	l := NewLogger(Options{Component: "upload", Console: &buf, File: path})

	l.Infof("uploaded %s", "report.pdf")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"message":"uploaded report.pdf"`) {
		t.Errorf("log file = %s", data)
	}
	if !strings.Contains(string(data), `"component":"upload"`) {
		t.Errorf("log file missing component: %s", data)
	}
}

func TestNamedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(Options{Component: "engine", Console: &buf})
	child := parent.Named("navigation")

	child.Warn().Msg("ascend at root")

	if !strings.Contains(buf.String(), "navigation") {
		t.Errorf("child output %q missing component", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error().Msg("nothing")
	if err := l.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"":       zerolog.InfoLevel,
		"bogus":  zerolog.InfoLevel,
		"error":  zerolog.ErrorLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
