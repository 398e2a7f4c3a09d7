package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft *FFT
}

// STFTResult holds the positive-frequency half of each frame
type STFTResult struct {
	Magnitude      [][]float64    `json:"magnitude"` // time x frequency
	Complex        [][]complex128 `json:"-"`
	TimeFrames     int            `json:"time_frames"`
	FreqBins       int            `json:"freq_bins"`
	SampleRate     int            `json:"sample_rate"`
	WindowSize     int            `json:"window_size"`
	HopSize        int            `json:"hop_size"`
	FreqResolution float64        `json:"freq_resolution"` // Hz/bin
	TimeResolution float64        `json:"time_resolution"` // seconds/frame
}

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// Compute runs a centered STFT: the signal is zero padded by windowSize/2 on
// both sides so frame t is centered on sample t*hopSize, giving
// 1 + len(signal)/hopSize frames.
func (s *STFT) Compute(signal []float64, windowSize, hopSize, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, common.InvalidInput("stft", "empty signal")
	}
	if windowSize <= 0 {
		return nil, common.InvalidInput("stft", "window size must be positive, got %d", windowSize)
	}
	if hopSize <= 0 {
		return nil, common.InvalidInput("stft", "hop size must be positive, got %d", hopSize)
	}

	pad := windowSize / 2
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)

	numFrames := 1 + len(signal)/hopSize
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	complexSpectrum := make([][]complex128, numFrames)
	frameBuffer := make([]float64, windowSize)

	for t := range numFrames {
		start := t * hopSize
		clear(frameBuffer)
		if start < len(padded) {
			copy(frameBuffer, padded[start:min(start+windowSize, len(padded))])
		}

		if window != nil {
			if err := window.ApplyInPlace(frameBuffer); err != nil {
				return nil, err
			}
		}

		spectrum := s.fft.Compute(frameBuffer)

		magnitude[t] = make([]float64, freqBins)
		complexSpectrum[t] = make([]complex128, freqBins)
		for k := range freqBins {
			complexSpectrum[t][k] = spectrum[k]
			magnitude[t][k] = cmplx.Abs(spectrum[k])
		}
	}

	return &STFTResult{
		Magnitude:      magnitude,
		Complex:        complexSpectrum,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}, nil
}
