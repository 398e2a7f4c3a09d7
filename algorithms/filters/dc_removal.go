// Package filters holds the pre-processing filters applied to decoded audio.
package filters

import (
	"math"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// DefaultDCCutoff is the -3 dB point used when loading audio
const DefaultDCCutoff = 10.0

// DCRemoval is a one-pole DC blocker: y[n] = x[n] - x[n-1] + R*y[n-1].
// See J. O. Smith, "Introduction to Digital Filters", DC Blocker.
type DCRemoval struct {
	pole   float64
	x1, y1 float64
}

// NewDCRemoval creates a blocker with its -3 dB cutoff at cutoffHz, using
// R = 1 - 2*pi*fc/fs
func NewDCRemoval(sampleRate int, cutoffHz float64) (*DCRemoval, error) {
	if sampleRate <= 0 || cutoffHz <= 0 {
		return nil, common.InvalidInput("dc removal", "sample rate and cutoff must be positive")
	}
	pole := 1.0 - 2.0*math.Pi*cutoffHz/float64(sampleRate)
	if pole <= 0 || pole >= 1 {
		return nil, common.InvalidInput("dc removal", "cutoff %v Hz is out of range at %d Hz", cutoffHz, sampleRate)
	}
	return &DCRemoval{pole: pole}, nil
}

// Pole returns R
func (dc *DCRemoval) Pole() float64 {
	return dc.pole
}

// Cutoff returns the approximate -3 dB frequency at sampleRate
func (dc *DCRemoval) Cutoff(sampleRate int) float64 {
	return (1.0 - dc.pole) * float64(sampleRate) / (2.0 * math.Pi)
}

// Process filters one sample
func (dc *DCRemoval) Process(x float64) float64 {
	y := x - dc.x1 + dc.pole*dc.y1
	dc.x1, dc.y1 = x, y
	return y
}

// ProcessInPlace filters a whole buffer, continuing from the current state
func (dc *DCRemoval) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = dc.Process(x)
	}
}

// Reset clears the filter state
func (dc *DCRemoval) Reset() {
	dc.x1, dc.y1 = 0, 0
}

// Magnitude returns |H| at frequency: |1 - e^-jw| / |1 - R e^-jw|
func (dc *DCRemoval) Magnitude(frequency float64, sampleRate int) float64 {
	w := 2.0 * math.Pi * frequency / float64(sampleRate)
	num := math.Hypot(1-math.Cos(w), math.Sin(w))
	den := math.Hypot(1-dc.pole*math.Cos(w), dc.pole*math.Sin(w))
	return num / den
}
