// Package analysis runs the full audio-to-style pipeline: beat tracking,
// constant-Q chroma, key estimation, chord recognition and profile building.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-acorde/algorithms/chroma"
	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/algorithms/temporal"
	"github.com/RyanBlaney/sonido-acorde/algorithms/tonal"
	"github.com/RyanBlaney/sonido-acorde/config"
	"github.com/RyanBlaney/sonido-acorde/generate"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
	"github.com/RyanBlaney/sonido-acorde/transcode"
)

// chromaFloor is the frame peak below which a chroma frame counts as silent
const chromaFloor = 1e-8

// Result is everything the pipeline learned about one recording
type Result struct {
	SampleRate     int                                       `json:"sample_rate"`
	DurationS      float64                                   `json:"duration_s"`
	Frames         int                                       `json:"frames"`
	Beats          common.Outcome[temporal.BeatGrid]         `json:"beats"`
	Key            common.Outcome[tonal.KeyEstimationResult] `json:"key"`
	BeatSynced     bool                                      `json:"beat_synced"`
	Chords         []theory.Chord                            `json:"chords"`
	Profile        generate.StyleProfile                     `json:"profile"`
	ChangeRhythm   float64                                   `json:"change_rhythm"` // beats per chroma change
	Functions      map[string]int                            `json:"function_distribution"`
	ProcessingTime time.Duration                             `json:"processing_time"`
}

// Analyzer turns PCM into a Result. It holds no per-call state and may be
// shared between goroutines.
type Analyzer struct {
	cfg      *config.Config
	beats    *temporal.BeatTracker
	keys     *tonal.KeyEstimator
	detector *tonal.ChordDetector
	loader   *transcode.Loader
	logger   logging.Logger
}

// NewAnalyzer validates cfg and builds the pipeline stages; nil cfg uses the
// defaults and a nil logger the global one
func NewAnalyzer(cfg *config.Config, logger logging.Logger) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	beatConfig := temporal.DefaultBeatTrackerConfig()
	beatConfig.HopLength = cfg.Analysis.HopLength
	beatConfig.NFFT = cfg.Analysis.NFFT

	decoderConfig := transcode.DefaultDecoderConfig()
	decoderConfig.TargetSampleRate = cfg.Audio.SampleRate
	decoderConfig.MaxDuration = cfg.Audio.DurationLimit()
	decoderConfig.FFmpegPath = cfg.Audio.FFmpegPath
	decoderConfig.FFprobePath = cfg.Audio.FFprobePath
	decoderConfig.RemoveDC = cfg.Audio.RemoveDC

	return &Analyzer{
		cfg:   cfg,
		beats: temporal.NewBeatTracker(beatConfig, logger),
		keys:  tonal.NewKeyEstimator(logger),
		detector: tonal.NewChordDetector(tonal.ChordDetectionParams{
			Extended: cfg.Analysis.Extended,
			UseHMM:   cfg.Analysis.UseHMM,
		}, logger),
		loader: transcode.NewLoader(decoderConfig, logger),
		logger: logging.Component(logger, "analyzer"),
	}, nil
}

// AnalyzeFile loads path and analyses it
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	audio, err := a.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(audio.PCM, audio.SampleRate)
}

// Analyze runs the pipeline over mono PCM. Degraded signals fall back to
// documented defaults; empty input is rejected.
func (a *Analyzer) Analyze(pcm []float64, sampleRate int) (*Result, error) {
	start := time.Now()
	if len(pcm) == 0 {
		return nil, common.InvalidInput("analyze", "empty PCM buffer")
	}
	if sampleRate <= 0 {
		return nil, common.InvalidInput("analyze", "sample rate must be positive, got %d", sampleRate)
	}
	hop := a.cfg.Analysis.HopLength

	beats, err := a.beats.Track(pcm, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("beat tracking: %w", err)
	}

	cqtConfig := chroma.DefaultCQTConfig(sampleRate, hop)
	cqtConfig.Octaves = a.cfg.Analysis.CQTOctaves
	cqt, err := chroma.NewChromaCQT(cqtConfig)
	if err != nil {
		return nil, fmt.Errorf("chroma: %w", err)
	}
	raw, err := cqt.Compute(pcm)
	if err != nil {
		return nil, fmt.Errorf("chroma: %w", err)
	}

	frameChroma := chroma.Normalize(raw, chromaFloor)
	key, err := a.keys.Estimate(frameChroma)
	if err != nil {
		return nil, fmt.Errorf("key estimation: %w", err)
	}

	chordChroma := frameChroma
	synced := a.cfg.Analysis.BeatSync && len(beats.Value.Frames) > 0
	if synced {
		chordChroma = chroma.Normalize(chroma.BeatSync(raw, beats.Value.Frames), chromaFloor)
	}

	chords, err := a.detector.Detect(chordChroma, key.Value.Key)
	if err != nil {
		return nil, fmt.Errorf("chord detection: %w", err)
	}

	changeRhythm := chroma.DefaultHarmonicRhythm
	if synced {
		changeRhythm = chroma.EstimateHarmonicRhythm(chordChroma)
	} else {
		a.logger.Warn("chroma not beat-synchronised, using default change rhythm", logging.Fields{
			"reason": "beat sync disabled or no beats",
		})
	}

	profile := generate.BuildProfile(key.Value.Key, beats.Value.TempoBPM, chords, a.cfg.Generation.CadenceWeight)

	result := &Result{
		SampleRate:     sampleRate,
		DurationS:      float64(len(pcm)) / float64(sampleRate),
		Frames:         len(raw),
		Beats:          beats,
		Key:            key,
		BeatSynced:     synced,
		Chords:         chords,
		Profile:        profile,
		ChangeRhythm:   changeRhythm,
		Functions:      generate.FunctionDistribution(profile.ChordFunctions),
		ProcessingTime: time.Since(start),
	}

	a.logger.Info("analysis complete", logging.Fields{
		"key":             key.Value.Key.String(),
		"tempo_bpm":       beats.Value.TempoBPM,
		"chords":          len(chords),
		"harmonic_rhythm": profile.HarmonicRhythm,
		"beat_fallback":   beats.FellBack,
		"key_fallback":    key.FellBack,
		"duration_ms":     result.ProcessingTime.Milliseconds(),
	})
	return result, nil
}
