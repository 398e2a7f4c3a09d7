package generate

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

const (
	// BeatsPerBar assumes 4/4
	BeatsPerBar = 4
	// MaxChordsPerBar bounds the chord count at one chord per sixteenth note
	MaxChordsPerBar = 16
)

// Options control a single generation run
type Options struct {
	Bars       int    `json:"bars"`
	Complexity int    `json:"complexity"` // 0 triads, >=1 sevenths
	StartChord string `json:"start_chord,omitempty"`
}

// Generator samples progressions in the style of a profile
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a generator; a nil logger uses the global one
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{logger: logging.Component(logger, "generator")}
}

// Generate seeds a private source with seed and runs GenerateWithRand.
// Equal profiles, options and seeds give identical progressions.
func (g *Generator) Generate(profile StyleProfile, opts Options, seed int64) ([]theory.Chord, error) {
	return g.GenerateWithRand(profile, opts, rand.New(rand.NewSource(seed)))
}

// GenerateWithRand samples a progression using rng, which must not be shared
// with concurrent callers.
func (g *Generator) GenerateWithRand(profile StyleProfile, opts Options, rng *rand.Rand) ([]theory.Chord, error) {
	count, err := ChordCount(opts.Bars, profile.HarmonicRhythm)
	if err != nil {
		return nil, err
	}
	if opts.Complexity < 0 {
		return nil, common.InvalidInput("generate", "complexity must be non-negative, got %d", opts.Complexity)
	}
	if profile.CadenceWeight < 0 || profile.CadenceWeight > 1 || math.IsNaN(profile.CadenceWeight) {
		return nil, common.InvalidInput("generate", "cadence weight must be in [0,1], got %v", profile.CadenceWeight)
	}

	mode := profile.Key.Mode
	table := NewMarkovTable(mode, g.logger)

	start := strings.TrimSpace(opts.StartChord)
	switch {
	case start == "":
		start = mode.Tonic()
	case !table.Known(start):
		start = table.Fallback(start, rng)
	}

	numerals := make([]string, 1, count)
	numerals[0] = start
	for len(numerals) < count {
		numerals = append(numerals, table.Next(numerals[len(numerals)-1], rng))
	}

	cadence := EnforceCadence(numerals, mode, profile.CadenceWeight, rng)

	if opts.Complexity >= 1 {
		for i, n := range numerals {
			numerals[i] = theory.DecorateSeventh(n, mode)
		}
	}

	chords := make([]theory.Chord, len(numerals))
	for i, numeral := range numerals {
		label, err := theory.ResolveNumeral(numeral, profile.Key, opts.Complexity)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", numeral, err)
		}
		chords[i] = theory.Chord{Root: label.Root, Quality: label.Quality, Roman: numeral}
	}
	DistributeTiming(chords, opts.Bars)

	g.logger.Info("generated progression", logging.Fields{
		"key":      profile.Key.String(),
		"bars":     opts.Bars,
		"chords":   len(chords),
		"cadence":  strings.Join(cadence, "-"),
		"sevenths": opts.Complexity >= 1,
	})
	return chords, nil
}

// ChordCount is max(round(bars/harmonicRhythm), floor(bars/2), 1), so there is
// at least one chord per two bars however slow the harmonic rhythm. A rhythm
// fast enough to need more than MaxChordsPerBar chords per bar is rejected.
func ChordCount(bars int, harmonicRhythm float64) (int, error) {
	if bars <= 0 {
		return 0, common.InvalidInput("chord count", "bars must be positive, got %d", bars)
	}
	if !(harmonicRhythm > 0) || math.IsInf(harmonicRhythm, 0) {
		return 0, common.InvalidInput("chord count", "harmonic rhythm must be positive and finite, got %v", harmonicRhythm)
	}

	raw := math.Round(float64(bars) / harmonicRhythm)
	if limit := bars * MaxChordsPerBar; raw > float64(limit) {
		return 0, common.InvalidInput("chord count", "harmonic rhythm %v gives %.0f chords in %d bars, limit is %d", harmonicRhythm, raw, bars, limit)
	}
	return max(int(raw), bars/2, 1), nil
}

// DistributeTiming spreads bars*4 beats evenly over chords in place, leaving
// no gaps. Start positions are computed from the index so rounding never
// accumulates.
func DistributeTiming(chords []theory.Chord, bars int) {
	n := len(chords)
	if n == 0 {
		return
	}
	total := float64(bars * BeatsPerBar)
	startOf := func(i int) float64 { return total * float64(i) / float64(n) }

	for i := range chords {
		chords[i].StartBeat = startOf(i)
		chords[i].DurationBeats = startOf(i+1) - startOf(i)
	}
}
