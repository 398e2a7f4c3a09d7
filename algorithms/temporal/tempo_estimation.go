package temporal

import (
	"math"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// Tempo search limits in BPM
const (
	MinTempo = 30.0
	MaxTempo = 300.0
)

// TempoEstimation picks the dominant beat period of an onset envelope
type TempoEstimation struct {
	// StartBPM centres the log-normal tempo prior
	StartBPM float64
	// PriorOctaves is the prior's standard deviation in octaves
	PriorOctaves float64
}

// NewTempoEstimation creates a tempo estimator biased toward 120 BPM
func NewTempoEstimation() *TempoEstimation {
	return &TempoEstimation{StartBPM: 120, PriorOctaves: 1}
}

// EstimateTempo weights the envelope's autocorrelation by the tempo prior and
// returns the best tempo in BPM. ok is false when the envelope carries no
// periodic energy.
func (te *TempoEstimation) EstimateTempo(envelope []float64, sampleRate, hopSize int) (float64, bool) {
	if len(envelope) < 4 || sampleRate <= 0 || hopSize <= 0 {
		return 0, false
	}

	framesPerMinute := 60.0 * float64(sampleRate) / float64(hopSize)
	minLag := max(1, int(math.Floor(framesPerMinute/MaxTempo)))
	maxLag := min(len(envelope)-1, int(math.Ceil(framesPerMinute/MinTempo)))
	if minLag >= maxLag {
		return 0, false
	}

	centered := make([]float64, len(envelope))
	mean := common.Mean(envelope)
	for i, v := range envelope {
		centered[i] = v - mean
	}

	autocorr := te.calculateAutocorrelation(centered, maxLag+1)
	if autocorr[0] <= 0 {
		return 0, false
	}

	bestLag := 0
	bestScore := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		bpm := framesPerMinute / float64(lag)
		score := autocorr[lag] * te.prior(bpm)
		if score > bestScore {
			bestScore = score
			bestLag = lag
		}
	}

	if bestLag == 0 {
		return 0, false
	}
	return framesPerMinute / float64(bestLag), true
}

func (te *TempoEstimation) prior(bpm float64) float64 {
	octaves := math.Log2(bpm / te.StartBPM)
	return math.Exp(-0.5 * (octaves / te.PriorOctaves) * (octaves / te.PriorOctaves))
}

// calculateAutocorrelation returns the autocorrelation for lags [0, maxLag),
// normalised by the zero-lag value
func (te *TempoEstimation) calculateAutocorrelation(signal []float64, maxLag int) []float64 {
	maxLag = min(maxLag, len(signal))
	autocorr := make([]float64, maxLag)

	for lag := range maxLag {
		sum := 0.0
		for i := 0; i < len(signal)-lag; i++ {
			sum += signal[i] * signal[i+lag]
		}
		autocorr[lag] = sum
	}

	if len(autocorr) > 0 && autocorr[0] > 0 {
		zero := autocorr[0]
		for i := range autocorr {
			autocorr[i] /= zero
		}
	}

	return autocorr
}
