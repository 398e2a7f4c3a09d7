package temporal

import (
	"github.com/RyanBlaney/sonido-acorde/algorithms/spectral"
	"github.com/RyanBlaney/sonido-acorde/algorithms/windowing"
)

// OnsetDetection computes onset strength envelopes from spectral flux
type OnsetDetection struct {
	spectralFlux *spectral.SpectralFlux
	stft         *spectral.STFT
}

// NewOnsetDetection creates a new onset detector
func NewOnsetDetection() *OnsetDetection {
	return &OnsetDetection{
		spectralFlux: spectral.NewSpectralFlux(),
		stft:         spectral.NewSTFT(),
	}
}

// Strength returns one onset strength value per STFT frame (1 + len(signal)/hop frames)
func (od *OnsetDetection) Strength(signal []float64, sampleRate, nFFT, hopSize int) ([]float64, error) {
	result, err := od.stft.Compute(signal, nFFT, hopSize, sampleRate, windowing.NewHann(nFFT, false))
	if err != nil {
		return nil, err
	}

	return od.spectralFlux.Compute(result.Magnitude), nil
}

// Peaks returns local maxima of the envelope that reach threshold and are at
// least minGap frames apart
func (od *OnsetDetection) Peaks(envelope []float64, threshold float64, minGap int) []int {
	if len(envelope) < 3 {
		return []int{}
	}

	peaks := []int{}
	last := -minGap
	for i := 1; i < len(envelope)-1; i++ {
		if envelope[i] > envelope[i-1] &&
			envelope[i] >= envelope[i+1] &&
			envelope[i] >= threshold &&
			i-last >= minGap {
			peaks = append(peaks, i)
			last = i
		}
	}
	return peaks
}
