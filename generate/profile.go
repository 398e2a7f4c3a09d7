// Package generate builds style profiles from detected chords and samples new
// progressions in that style with a first-order Markov model over scale degrees.
package generate

import (
	"strings"
	"unicode"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-acorde/theory"
)

// DefaultCadenceWeight is the probability of forcing the authentic cadence
const DefaultCadenceWeight = 0.7

// StyleProfile summarises a piece so the generator can write in its style
type StyleProfile struct {
	Key            theory.Key `json:"key"`
	TempoBPM       float64    `json:"tempo_bpm"`
	HarmonicRhythm float64    `json:"harmonic_rhythm"` // mean chord length in beats
	ChordFunctions []string   `json:"chord_functions"`
	CadenceWeight  float64    `json:"cadence_weight"`
}

// DefaultFunctions is the function list used when nothing was observed
func DefaultFunctions(mode theory.Mode) []string {
	if mode == theory.ModeMinor {
		return []string{"i", "ii°", "III", "iv", "v", "VI", "VII"}
	}
	return []string{"I", "ii", "iii", "IV", "V", "vi"}
}

// BuildProfile derives a profile from detected chords. The harmonic rhythm is
// the mean chord duration, 1 beat when there are no chords.
func BuildProfile(key theory.Key, tempo float64, chords []theory.Chord, cadenceWeight float64) StyleProfile {
	profile := StyleProfile{
		Key:            key,
		TempoBPM:       tempo,
		HarmonicRhythm: 1.0,
		CadenceWeight:  cadenceWeight,
	}

	if len(chords) > 0 {
		durations := make([]float64, len(chords))
		for i, c := range chords {
			durations[i] = c.DurationBeats
		}
		profile.HarmonicRhythm = stat.Mean(durations, nil)
	}

	for _, c := range chords {
		if c.Roman != "" {
			profile.ChordFunctions = append(profile.ChordFunctions, c.Roman)
		}
	}
	if len(profile.ChordFunctions) == 0 {
		profile.ChordFunctions = DefaultFunctions(key.Mode)
	}

	return profile
}

// FunctionDistribution counts numerals by their base letters with seventh
// and diminished markers dropped, so "V7" counts as "V" and "vii°" as "vii".
// Literal labels of chromatic chords carry no numeral and are skipped.
func FunctionDistribution(numerals []string) map[string]int {
	counts := make(map[string]int)
	for _, numeral := range numerals {
		if _, err := theory.ParseNumeral(numeral); err != nil {
			continue
		}
		base := strings.Map(func(r rune) rune {
			if strings.ContainsRune("IV", unicode.ToUpper(r)) {
				return r
			}
			return -1
		}, numeral)
		counts[base]++
	}
	return counts
}
