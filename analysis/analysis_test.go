package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/config"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

const testRate = 22050

// tone sums equal-amplitude sines at the given MIDI notes
func tone(seconds float64, notes ...int) []float64 {
	n := int(seconds * testRate)
	out := make([]float64, n)
	for _, note := range notes {
		freq := 440 * math.Pow(2, float64(note-69)/12)
		for i := range out {
			out[i] += 0.2 * math.Sin(2*math.Pi*freq*float64(i)/testRate)
		}
	}
	return out
}

func newTestAnalyzer(t *testing.T, mutate func(*config.Config)) (*Analyzer, *logging.Recorder) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	rec := logging.NewRecorder()
	a, err := NewAnalyzer(cfg, rec)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a, rec
}

func TestAnalyzeCMajorTriad(t *testing.T) {
	for _, beatSync := range []bool{true, false} {
		a, _ := newTestAnalyzer(t, func(c *config.Config) { c.Analysis.BeatSync = beatSync })

		result, err := a.Analyze(tone(3, 60, 64, 67), testRate)
		if err != nil {
			t.Fatalf("beat sync %v: Analyze: %v", beatSync, err)
		}

		want := theory.Key{Tonic: 0, Mode: theory.ModeMajor}
		if result.Key.Value.Key != want || result.Key.FellBack {
			t.Errorf("beat sync %v: key = %v (fell back %v), want C major", beatSync, result.Key.Value.Key, result.Key.FellBack)
		}
		if len(result.Chords) == 0 {
			t.Fatalf("beat sync %v: no chords", beatSync)
		}

		// the longest chord must be the tonic triad
		longest := result.Chords[0]
		for _, c := range result.Chords {
			if c.DurationBeats > longest.DurationBeats {
				longest = c
			}
		}
		if longest.Label() != (theory.ChordLabel{Root: 0, Quality: theory.Major}) || longest.Roman != "I" {
			t.Errorf("beat sync %v: dominant chord = %v (%s), want C:maj I", beatSync, longest.Label(), longest.Roman)
		}

		for i := 1; i < len(result.Chords); i++ {
			if result.Chords[i-1].EndBeat() != result.Chords[i].StartBeat {
				t.Errorf("beat sync %v: gap before chord %d", beatSync, i)
			}
		}
		if result.Profile.Key != want {
			t.Errorf("profile key = %v", result.Profile.Key)
		}
		if result.Profile.CadenceWeight != 0.7 {
			t.Errorf("profile cadence weight = %v", result.Profile.CadenceWeight)
		}
		if result.BeatSynced && result.Frames <= len(result.Chords) {
			t.Errorf("frames %d should exceed chord count %d", result.Frames, len(result.Chords))
		}
	}
}

func TestAnalyzeSilenceFallsBack(t *testing.T) {
	a, rec := newTestAnalyzer(t, nil)

	result, err := a.Analyze(make([]float64, 2*testRate), testRate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !result.Beats.FellBack || result.Beats.Value.TempoBPM != 120 {
		t.Errorf("beats = %+v, want 120 BPM fallback", result.Beats)
	}
	if !result.Key.FellBack || result.Key.Value.Key != theory.DefaultKey {
		t.Errorf("key = %+v, want C major fallback", result.Key)
	}
	if result.Profile.TempoBPM != 120 {
		t.Errorf("profile tempo = %v", result.Profile.TempoBPM)
	}
	if _, err := json.Marshal(result); err != nil {
		t.Errorf("fallback result does not encode: %v", err)
	}

	components := map[string]bool{}
	for _, e := range rec.AtLevel(logging.WarnLevel) {
		if c, ok := e.Fields["component"].(string); ok {
			components[c] = true
		}
		if _, ok := e.Fields["reason"]; !ok {
			t.Errorf("warning %q has no reason", e.Message)
		}
	}
	for _, c := range []string{"beat_tracker", "key_estimator"} {
		if !components[c] {
			t.Errorf("no warning from %s", c)
		}
	}
}

func TestAnalyzeInvalidInput(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	if _, err := a.Analyze(nil, testRate); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("empty PCM error = %v", err)
	}
	if _, err := a.Analyze(tone(0.1, 60), 0); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("zero rate error = %v", err)
	}
}

func TestNewAnalyzerRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.HopLength = 0
	if _, err := NewAnalyzer(cfg, &logging.NoOpLogger{}); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestResultJSON(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)
	result, err := a.Analyze(tone(1, 57, 60, 64), testRate)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"beats", "key", "chords", "profile", "function_distribution"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("JSON missing %q", field)
		}
	}
}
