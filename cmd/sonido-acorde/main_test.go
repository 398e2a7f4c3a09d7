package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-acorde/patterns"
)

func TestFileSafe(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Classic ii-V-I", "Classic_ii-V-I"},
		{"  Minor   Groove ", "Minor_Groove"},
		{"a/b\\c", "a_b_c"},
		{"???", "pattern"},
		{"", "pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fileSafe(tt.name); got != tt.want {
				t.Errorf("fileSafe(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

// execute runs the root command with args and returns its stdout
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"log_level":    "error",
		"patterns_dir": filepath.Join(dir, "patterns"),
		"export_dir":   filepath.Join(dir, "exports"),
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	conf := writeConfig(t, dir)
	midi := filepath.Join(dir, "out", "minor.mid")

	out := execute(t, "--config", conf, "generate", "--key", "A", "--mode", "minor",
		"--bars", "8", "--seed", "7", "--midi", midi)

	if !strings.HasPrefix(out, "A minor, 8 bars, seed 7\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines < 5 {
		t.Errorf("expected at least 4 chords, got output:\n%s", out)
	}
	if info, err := os.Stat(midi); err != nil || info.Size() == 0 {
		t.Errorf("MIDI file not written: %v", err)
	}
	midiOut = ""
}

func TestPatternsCommands(t *testing.T) {
	dir := t.TempDir()
	conf := writeConfig(t, dir)

	out := execute(t, "--config", conf, "patterns", "presets")
	if !strings.HasPrefix(out, "installed 3 presets") {
		t.Errorf("presets output = %q", out)
	}

	out = execute(t, "--config", conf, "patterns", "list")
	for _, name := range []string{"Classic ii-V-I", "Pop Progression", "Minor Groove"} {
		if !strings.Contains(out, name) {
			t.Errorf("list output missing %q:\n%s", name, out)
		}
	}

	out = execute(t, "--config", conf, "patterns", "list", "--tag", "minor")
	if !strings.Contains(out, "Minor Groove") || strings.Contains(out, "Pop Progression") {
		t.Errorf("tag filter output:\n%s", out)
	}
	filterTags = nil

	store, err := patterns.NewStore(filepath.Join(dir, "patterns"), nil)
	if err != nil {
		t.Fatal(err)
	}
	found, err := store.Search(patterns.Query{Name: "ii-V-I"})
	if err != nil || len(found) != 1 {
		t.Fatalf("search = %v, %v", found, err)
	}

	execute(t, "--config", conf, "patterns", "export", found[0].ID)
	want := filepath.Join(dir, "exports", "Classic_ii-V-I.mid")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("export did not write %s: %v", want, err)
	}
}

func TestGenerateRejectsBarsOutOfRange(t *testing.T) {
	conf := writeConfig(t, t.TempDir())

	for _, n := range []string{"1", "17"} {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs([]string{"--config", conf, "generate", "--bars", n})
		if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "--bars") {
			t.Errorf("--bars %s: error = %v, want a range error", n, err)
		}
	}
}
