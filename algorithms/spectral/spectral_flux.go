package spectral

import (
	"math"
)

// SpectralFlux measures frame-to-frame increases in spectral energy
type SpectralFlux struct {
	// Compression applied as log(1 + c*|X|) before differencing; 0 disables it
	Compression float64
}

// NewSpectralFlux creates a flux calculator with log compression
func NewSpectralFlux() *SpectralFlux {
	return &SpectralFlux{Compression: 1000}
}

// Compute returns one value per frame: the mean half-wave rectified difference
// against the previous frame. Frame 0 has no predecessor and scores 0, so the
// output aligns with the input frames.
func (sf *SpectralFlux) Compute(spectrogram [][]float64) []float64 {
	flux := make([]float64, len(spectrogram))
	if len(spectrogram) < 2 {
		return flux
	}

	prev := sf.compress(spectrogram[0])
	for t := 1; t < len(spectrogram); t++ {
		cur := sf.compress(spectrogram[t])

		sum := 0.0
		for f := range cur {
			if f >= len(prev) {
				break
			}
			if diff := cur[f] - prev[f]; diff > 0 {
				sum += diff
			}
		}
		if len(cur) > 0 {
			flux[t] = sum / float64(len(cur))
		}
		prev = cur
	}

	return flux
}

func (sf *SpectralFlux) compress(frame []float64) []float64 {
	if sf.Compression <= 0 {
		return frame
	}
	out := make([]float64, len(frame))
	for i, v := range frame {
		out[i] = math.Log1p(sf.Compression * v)
	}
	return out
}
