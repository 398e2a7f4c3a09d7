package chroma

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/algorithms/spectral"
	"github.com/RyanBlaney/sonido-acorde/algorithms/windowing"
)

// NumChroma is the number of pitch classes per chroma frame
const NumChroma = 12

// CQTConfig holds the constant-Q analysis parameters
type CQTConfig struct {
	SampleRate    int     `json:"sample_rate"`
	HopLength     int     `json:"hop_length"`
	MinFreq       float64 `json:"min_freq"` // lowest bin centre, C2 by default
	Octaves       int     `json:"octaves"`
	BinsPerOctave int     `json:"bins_per_octave"`
	TuningFreq    float64 `json:"tuning_freq"` // A4
	// SparsityThreshold drops spectral kernel entries below this magnitude
	SparsityThreshold float64 `json:"sparsity_threshold"`
}

// DefaultCQTConfig covers C2..B6 at semitone resolution
func DefaultCQTConfig(sampleRate, hopLength int) CQTConfig {
	return CQTConfig{
		SampleRate:        sampleRate,
		HopLength:         hopLength,
		MinFreq:           65.406,
		Octaves:           5,
		BinsPerOctave:     12,
		TuningFreq:        440.0,
		SparsityThreshold: 0.0054,
	}
}

// kernelEntry is one non-zero value of a sparse spectral kernel
type kernelEntry struct {
	index int
	value complex128 // conjugated and scaled by 1/fftLen
}

// ChromaCQT computes a chromagram from a constant-Q transform. The transform
// uses the Brown-Puckette method: each bin's windowed complex exponential is
// moved to the frequency domain once, then every frame costs one FFT plus a
// sparse dot product per bin.
//
// Bin centres follow f_k = MinFreq * 2^(k/BinsPerOctave), so each bin maps to
// a single pitch class.
type ChromaCQT struct {
	config    CQTConfig
	fft       *spectral.FFT
	freqs     []float64
	pitch     []int // pitch class of each bin
	kernels   [][]kernelEntry
	fftLength int
}

// NewChromaCQT validates the configuration and precomputes the kernels
func NewChromaCQT(config CQTConfig) (*ChromaCQT, error) {
	if config.SampleRate <= 0 || config.HopLength <= 0 {
		return nil, common.InvalidInput("chroma cqt", "sample rate and hop length must be positive")
	}
	if config.MinFreq <= 0 || config.Octaves <= 0 || config.BinsPerOctave < NumChroma {
		return nil, common.InvalidInput("chroma cqt", "need positive min frequency and octaves, at least %d bins per octave", NumChroma)
	}
	if config.TuningFreq <= 0 {
		config.TuningFreq = 440.0
	}

	numBins := config.Octaves * config.BinsPerOctave
	top := config.MinFreq * math.Pow(2, float64(numBins-1)/float64(config.BinsPerOctave))
	if top >= float64(config.SampleRate)/2 {
		return nil, common.InvalidInput("chroma cqt", "highest bin %.1f Hz is above Nyquist", top)
	}

	cqt := &ChromaCQT{
		config: config,
		fft:    spectral.NewFFT(),
	}
	cqt.computeKernels(numBins)
	return cqt, nil
}

// quality is the constant ratio of centre frequency to bandwidth
func (cqt *ChromaCQT) quality() float64 {
	return 1.0 / (math.Pow(2, 1.0/float64(cqt.config.BinsPerOctave)) - 1)
}

func (cqt *ChromaCQT) computeKernels(numBins int) {
	q := cqt.quality()
	sr := float64(cqt.config.SampleRate)

	cqt.freqs = make([]float64, numBins)
	cqt.pitch = make([]int, numBins)
	for k := range numBins {
		freq := cqt.config.MinFreq * math.Pow(2, float64(k)/float64(cqt.config.BinsPerOctave))
		cqt.freqs[k] = freq

		midi := 69 + 12*math.Log2(freq/cqt.config.TuningFreq)
		pc := int(math.Round(midi)) % NumChroma
		if pc < 0 {
			pc += NumChroma
		}
		cqt.pitch[k] = pc
	}

	// the lowest bin has the longest kernel
	longest := int(math.Ceil(q * sr / cqt.freqs[0]))
	cqt.fftLength = common.NextPowerOfTwo(longest)

	cqt.kernels = make([][]kernelEntry, numBins)
	for k, freq := range cqt.freqs {
		length := int(math.Ceil(q * sr / freq))
		window := windowing.HannCoefficients(length, true)

		temporal := make([]complex128, cqt.fftLength)
		offset := (cqt.fftLength - length) / 2
		for n := range length {
			phase := 2 * math.Pi * q * float64(n) / float64(length)
			temporal[offset+n] = complex(window[n]/float64(length), 0) * cmplx.Exp(complex(0, phase))
		}

		spectralKernel := cqt.fft.ComputeComplex(temporal)
		var entries []kernelEntry
		for i, v := range spectralKernel {
			if cmplx.Abs(v) > cqt.config.SparsityThreshold {
				entries = append(entries, kernelEntry{
					index: i,
					value: cmplx.Conj(v) / complex(float64(cqt.fftLength), 0),
				})
			}
		}
		cqt.kernels[k] = entries
	}
}

// Frequencies returns the bin centre frequencies
func (cqt *ChromaCQT) Frequencies() []float64 {
	out := make([]float64, len(cqt.freqs))
	copy(out, cqt.freqs)
	return out
}

// Spectrogram returns the CQT magnitude of every frame. Frame t is centred on
// sample t*HopLength, giving 1 + len(signal)/HopLength frames.
func (cqt *ChromaCQT) Spectrogram(signal []float64) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, common.InvalidInput("chroma cqt", "empty signal")
	}

	hop := cqt.config.HopLength
	numFrames := 1 + len(signal)/hop
	half := cqt.fftLength / 2

	spectrogram := make([][]float64, numFrames)
	frame := make([]float64, cqt.fftLength)

	for t := range numFrames {
		center := t * hop
		for i := range frame {
			idx := center - half + i
			if idx >= 0 && idx < len(signal) {
				frame[i] = signal[idx]
			} else {
				frame[i] = 0
			}
		}

		spectrum := cqt.fft.Compute(frame)

		bins := make([]float64, len(cqt.kernels))
		for k, kernel := range cqt.kernels {
			var sum complex128
			for _, e := range kernel {
				sum += spectrum[e.index] * e.value
			}
			bins[k] = cmplx.Abs(sum)
		}
		spectrogram[t] = bins
	}

	return spectrogram, nil
}

// Compute returns the raw chromagram: frames x 12, magnitudes folded across
// octaves onto pitch classes C..B. Frames are not normalised.
func (cqt *ChromaCQT) Compute(signal []float64) ([][]float64, error) {
	spectrogram, err := cqt.Spectrogram(signal)
	if err != nil {
		return nil, err
	}

	chromagram := make([][]float64, len(spectrogram))
	for t, bins := range spectrogram {
		frame := make([]float64, NumChroma)
		for k, mag := range bins {
			frame[cqt.pitch[k]] += mag
		}
		chromagram[t] = frame
	}
	return chromagram, nil
}
