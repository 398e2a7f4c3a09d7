package chroma

import (
	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// DefaultHarmonicRhythm is one chord per beat
const DefaultHarmonicRhythm = 1.0

// EstimateHarmonicRhythm guesses the average number of beats per chord from a
// beat-synchronised chromagram. A chord change is a frame-to-frame difference
// whose L2 norm exceeds median + std of all differences; the result is the
// mean gap between changes. Fewer than two changes yields the default.
func EstimateHarmonicRhythm(beatChroma [][]float64) float64 {
	if len(beatChroma) < 3 {
		return DefaultHarmonicRhythm
	}

	magnitudes := make([]float64, len(beatChroma)-1)
	diff := make([]float64, len(beatChroma[0]))
	for t := 1; t < len(beatChroma); t++ {
		floats.SubTo(diff, beatChroma[t], beatChroma[t-1])
		magnitudes[t-1] = floats.Norm(diff, 2)
	}

	threshold := common.Median(magnitudes) + common.StandardDeviation(magnitudes)

	var changes []int
	for i, m := range magnitudes {
		if m > threshold {
			changes = append(changes, i)
		}
	}
	if len(changes) < 2 {
		return DefaultHarmonicRhythm
	}

	gaps := make([]float64, len(changes)-1)
	for i := range gaps {
		gaps[i] = float64(changes[i+1] - changes[i])
	}
	return common.Mean(gaps)
}
