package generate

import (
	"math/rand"

	"github.com/RyanBlaney/sonido-acorde/theory"
)

// Cadence libraries, strongest authentic cadence first
var (
	majorCadences = [][]string{
		{"V", "I"},
		{"IV", "I"},
		{"ii", "V", "I"},
		{"vi", "IV", "I", "V"},
		{"I", "V", "vi", "IV"},
	}
	minorCadences = [][]string{
		{"v", "i"},
		{"iv", "i"},
		{"ii°", "v", "i"},
		{"VI", "iv", "i", "v"},
		{"i", "v", "VI", "iv"},
	}
)

// Cadences returns a copy of the mode's cadence library
func Cadences(mode theory.Mode) [][]string {
	src := majorCadences
	if mode == theory.ModeMinor {
		src = minorCadences
	}
	out := make([][]string, len(src))
	for i, c := range src {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// EnforceCadence overwrites the tail of sequence with a cadence in place. With
// probability weight it is the authentic cadence, otherwise a uniform pick
// among the cadences no longer than the sequence. Sequences shorter than every
// cadence are left alone. The chosen cadence is returned, nil if none applied.
func EnforceCadence(sequence []string, mode theory.Mode, weight float64, rng *rand.Rand) []string {
	library := Cadences(mode)

	var fitting [][]string
	for _, c := range library {
		if len(c) <= len(sequence) {
			fitting = append(fitting, c)
		}
	}
	if len(fitting) == 0 {
		return nil
	}

	cadence := fitting[0]
	if rng.Float64() >= weight {
		cadence = fitting[rng.Intn(len(fitting))]
	}

	copy(sequence[len(sequence)-len(cadence):], cadence)
	return cadence
}
