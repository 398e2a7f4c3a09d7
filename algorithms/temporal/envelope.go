package temporal

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Envelope measures loudness per analysis frame
type Envelope struct{}

func NewEnvelope() *Envelope {
	return &Envelope{}
}

// ComputeRMS returns one RMS value per full frame. Trailing samples that do
// not fill a frame are ignored, so signals shorter than frameSize give nil.
func (e *Envelope) ComputeRMS(signal []float64, frameSize, hopSize int) []float64 {
	if frameSize <= 0 || hopSize <= 0 || len(signal) < frameSize {
		return nil
	}

	out := make([]float64, 0, (len(signal)-frameSize)/hopSize+1)
	for start := 0; start+frameSize <= len(signal); start += hopSize {
		frame := signal[start : start+frameSize]
		out = append(out, math.Sqrt(floats.Dot(frame, frame)/float64(frameSize)))
	}
	return out
}

// PeakRMS is the loudest frame of ComputeRMS, 0 when there are no frames.
// The beat tracker compares it against a silence threshold.
func (e *Envelope) PeakRMS(signal []float64, frameSize, hopSize int) float64 {
	rms := e.ComputeRMS(signal, frameSize, hopSize)
	if len(rms) == 0 {
		return 0
	}
	return floats.Max(rms)
}
