package midifile

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

type decodedNote struct {
	tick  uint32
	start bool
	key   uint8
}

func decode(t *testing.T, file *smf.SMF) (notes []decodedNote, bpm float64) {
	t.Helper()
	if len(file.Tracks) != 1 {
		t.Fatalf("got %d tracks, want 1", len(file.Tracks))
	}
	var tick uint32
	for _, ev := range file.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		var tempo float64
		msg := midi.Message(ev.Message)
		switch {
		case ev.Message.GetMetaTempo(&tempo):
			bpm = tempo
		case msg.GetNoteStart(&ch, &key, &vel):
			if vel != 80 || ch != 0 {
				t.Errorf("note on channel %d velocity %d", ch, vel)
			}
			notes = append(notes, decodedNote{tick, true, key})
		case msg.GetNoteEnd(&ch, &key):
			notes = append(notes, decodedNote{tick, false, key})
		}
	}
	return notes, bpm
}

func progression() []theory.Chord {
	return []theory.Chord{
		{Root: 0, Quality: theory.Major, StartBeat: 0, DurationBeats: 2},
		{Root: 7, Quality: theory.Major, StartBeat: 2, DurationBeats: 2},
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, progression(), DefaultExportConfig(), &logging.NoOpLogger{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	file, err := smf.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	notes, bpm := decode(t, file)

	if math.Abs(bpm-120) > 1e-6 {
		t.Errorf("tempo = %v, want 120", bpm)
	}

	want := []decodedNote{
		{0, true, 60}, {0, true, 64}, {0, true, 67},
		{1920, false, 60}, {1920, false, 64}, {1920, false, 67},
		{1920, true, 67}, {1920, true, 71}, {1920, true, 74},
		{3840, false, 67}, {3840, false, 71}, {3840, false, 74},
	}
	if len(notes) != len(want) {
		t.Fatalf("got %d note events, want %d: %v", len(notes), len(want), notes)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, notes[i], want[i])
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	config := DefaultExportConfig()
	config.TempoBPM = 90

	if err := WriteFile(path, progression(), config, &logging.NoOpLogger{}); err != nil {
		t.Fatal(err)
	}
	file, err := smf.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, bpm := decode(t, file); math.Abs(bpm-90) > 1e-6 {
		t.Errorf("tempo = %v, want 90", bpm)
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name   string
		chords []theory.Chord
		mutate func(*ExportConfig)
	}{
		{"zero tempo", progression(), func(c *ExportConfig) { c.TempoBPM = 0 }},
		{"velocity", progression(), func(c *ExportConfig) { c.Velocity = 128 }},
		{"channel", progression(), func(c *ExportConfig) { c.Channel = 16 }},
		{"octave", progression(), func(c *ExportConfig) { c.Octave = 12 }},
		{"zero duration", []theory.Chord{{Root: 0, Quality: theory.Major}}, func(*ExportConfig) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultExportConfig()
			tt.mutate(&config)
			if _, err := Build(tt.chords, config); !errors.Is(err, common.ErrInvalidInput) {
				t.Errorf("error = %v, want invalid input", err)
			}
		})
	}
}

func TestBuildEmptyProgression(t *testing.T) {
	file, err := Build(nil, DefaultExportConfig())
	if err != nil {
		t.Fatal(err)
	}
	if notes, _ := decode(t, file); len(notes) != 0 {
		t.Errorf("got %d note events, want none", len(notes))
	}
}
