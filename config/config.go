// Package config holds the settings shared by the analysis pipeline, the
// generator and the exporters.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/logging"
)

// Bounds enforced by Validate
const (
	MinBars  = 4
	MaxBars  = 16
	MinTempo = 40
	MaxTempo = 200
)

// AudioConfig controls loading
type AudioConfig struct {
	SampleRate     int     `json:"sample_rate"`
	DurationLimitS float64 `json:"duration_limit_s"` // 0 disables the limit
	FFmpegPath     string  `json:"ffmpeg_path"`
	FFprobePath    string  `json:"ffprobe_path"`
	RemoveDC       bool    `json:"remove_dc"`
}

// DurationLimit returns the limit as a duration
func (a AudioConfig) DurationLimit() time.Duration {
	return time.Duration(a.DurationLimitS * float64(time.Second))
}

// AnalysisConfig controls the feature and recognition stages
type AnalysisConfig struct {
	HopLength  int  `json:"hop_length"`
	NFFT       int  `json:"n_fft"`
	NChroma    int  `json:"n_chroma"`
	BeatSync   bool `json:"beat_sync"`
	UseHMM     bool `json:"use_hmm"`
	Extended   bool `json:"extended"`
	CQTOctaves int  `json:"cqt_octaves"`
}

// GenerationConfig controls progression sampling
type GenerationConfig struct {
	Bars          int     `json:"bars"`
	Seed          int64   `json:"seed"`
	CadenceWeight float64 `json:"cadence_weight"`
	Complexity    int     `json:"complexity"`
}

// MIDIConfig controls file export
type MIDIConfig struct {
	Velocity int     `json:"velocity"`
	TempoBPM float64 `json:"tempo_bpm"`
	Channel  int     `json:"channel"`
	Octave   int     `json:"octave"`
}

// Config is the full application configuration
type Config struct {
	Audio       AudioConfig      `json:"audio"`
	Analysis    AnalysisConfig   `json:"analysis"`
	Generation  GenerationConfig `json:"generation"`
	MIDI        MIDIConfig       `json:"midi"`
	LogLevel    string           `json:"log_level"`
	PatternsDir string           `json:"patterns_dir"`
	ExportDir   string           `json:"export_dir"`
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:     22050,
			DurationLimitS: 180,
			FFmpegPath:     "ffmpeg",
			FFprobePath:    "ffprobe",
			RemoveDC:       true,
		},
		Analysis: AnalysisConfig{
			HopLength:  512,
			NFFT:       2048,
			NChroma:    12,
			BeatSync:   true,
			UseHMM:     true,
			Extended:   false,
			CQTOctaves: 5,
		},
		Generation: GenerationConfig{
			Bars:          8,
			Seed:          42,
			CadenceWeight: 0.7,
			Complexity:    0,
		},
		MIDI: MIDIConfig{
			Velocity: 80,
			TempoBPM: 120,
			Channel:  0,
			Octave:   4,
		},
		LogLevel:    "info",
		PatternsDir: "patterns",
		ExportDir:   "exports",
	}
}

// Load decodes the JSON file at path over the defaults, so a file only needs
// the fields it changes. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, common.InvalidInput("load config", "%s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first out-of-range field
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return common.InvalidInput("validate config", format, args...)
	}

	a, an, g, m := c.Audio, c.Analysis, c.Generation, c.MIDI
	switch {
	case a.SampleRate <= 0:
		return fail("audio.sample_rate must be positive, got %d", a.SampleRate)
	case a.DurationLimitS < 0:
		return fail("audio.duration_limit_s must not be negative, got %v", a.DurationLimitS)
	case an.HopLength <= 0:
		return fail("analysis.hop_length must be positive, got %d", an.HopLength)
	case an.NFFT < an.HopLength:
		return fail("analysis.n_fft %d is smaller than hop_length %d", an.NFFT, an.HopLength)
	case an.NChroma != 12:
		return fail("analysis.n_chroma must be 12, got %d", an.NChroma)
	case an.CQTOctaves < 1:
		return fail("analysis.cqt_octaves must be at least 1, got %d", an.CQTOctaves)
	case g.Bars < MinBars || g.Bars > MaxBars:
		return fail("generation.bars must be in [%d,%d], got %d", MinBars, MaxBars, g.Bars)
	case g.CadenceWeight < 0 || g.CadenceWeight > 1:
		return fail("generation.cadence_weight must be in [0,1], got %v", g.CadenceWeight)
	case g.Complexity < 0 || g.Complexity > 2:
		return fail("generation.complexity must be in [0,2], got %d", g.Complexity)
	case m.Velocity < 1 || m.Velocity > 127:
		return fail("midi.velocity must be in [1,127], got %d", m.Velocity)
	case m.TempoBPM < MinTempo || m.TempoBPM > MaxTempo:
		return fail("midi.tempo_bpm must be in [%d,%d], got %v", MinTempo, MaxTempo, m.TempoBPM)
	case m.Channel < 0 || m.Channel > 15:
		return fail("midi.channel must be in [0,15], got %d", m.Channel)
	case m.Octave < 0 || m.Octave > 8:
		return fail("midi.octave must be in [0,8], got %d", m.Octave)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fail("log_level: %v", err)
	}
	return nil
}
