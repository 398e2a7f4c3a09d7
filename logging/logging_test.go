package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestDefaultLoggerRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWriterLogger(&out, &errOut, false)

	logger.Debug("hidden")
	logger.Info("hello", Fields{"b": 2, "a": 1})
	logger.Warn("careful")
	logger.Error(errors.New("boom"), "failed")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message written at info level")
	}
	if !strings.Contains(out.String(), "[INFO] hello a=1 b=2") {
		t.Errorf("stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "[WARN] careful") {
		t.Errorf("stderr missing warn: %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "[ERROR] failed: boom") {
		t.Errorf("stderr missing error: %q", errOut.String())
	}
}

func TestWithFieldsSharesLevel(t *testing.T) {
	var out bytes.Buffer
	root := NewWriterLogger(&out, &out, false)
	child := root.WithFields(Fields{"component": "tonal"})

	root.SetLevel(DebugLevel)
	child.Debug("visible")

	if !strings.Contains(out.String(), "[DEBUG] visible component=tonal") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	child := rec.WithFields(Fields{"component": "beats"})

	child.Warn("fell back", Fields{"reason": "no onsets"})
	rec.Info("done")

	entries := rec.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	warns := rec.AtLevel(WarnLevel)
	if len(warns) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warns))
	}
	if warns[0].Fields["component"] != "beats" || warns[0].Fields["reason"] != "no onsets" {
		t.Errorf("fields = %v", warns[0].Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "": InfoLevel, "warning": WarnLevel, "error": ErrorLevel}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOrFallsBackToGlobal(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	rec := NewRecorder()
	SetGlobalLogger(rec)

	Or(nil).Info("via global")
	if len(rec.Entries()) != 1 {
		t.Error("nil logger did not resolve to the global logger")
	}
}
