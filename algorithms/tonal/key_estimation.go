// Package tonal turns chroma into harmony: key estimation, chord templates,
// template emissions, the functional-harmony transition model, Viterbi
// decoding and Roman-numeral segmentation.
package tonal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// KeyProfileTemplate contains the correlation templates for one profile family
type KeyProfileTemplate struct {
	MajorProfile []float64 `json:"major_profile"`
	MinorProfile []float64 `json:"minor_profile"`
	Name         string    `json:"name"`
}

// KrumhanslProfiles are the Krumhansl-Kessler probe-tone ratings, tonic first
var KrumhanslProfiles = KeyProfileTemplate{
	MajorProfile: []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
	MinorProfile: []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
	Name:         "krumhansl",
}

// KeyCandidate is one tested (tonic, mode) pair with its correlation
type KeyCandidate struct {
	Key         theory.Key `json:"key"`
	Correlation float64    `json:"correlation"`
}

// KeyEstimationResult is the chosen key plus all 24 candidates, majors first
type KeyEstimationResult struct {
	Key         theory.Key     `json:"key"`
	Correlation float64        `json:"correlation"`
	Candidates  []KeyCandidate `json:"candidates"`
	Histogram   []float64      `json:"histogram"`
}

// KeyEstimator implements Krumhansl-Schmuckler key finding
type KeyEstimator struct {
	profiles KeyProfileTemplate
	logger   logging.Logger
}

// NewKeyEstimator creates a key estimator using the Krumhansl profiles
func NewKeyEstimator(logger logging.Logger) *KeyEstimator {
	return &KeyEstimator{
		profiles: KrumhanslProfiles,
		logger:   logging.Component(logger, "key_estimator"),
	}
}

// rotate returns profile shifted so its tonic sits at pitch class shift
func rotate(profile []float64, shift int) []float64 {
	n := len(profile)
	out := make([]float64, n)
	for i, v := range profile {
		out[(i+shift)%n] = v
	}
	return out
}

// Estimate averages chroma over time and correlates the histogram with every
// rotation of the major then the minor profile. The first strictly greater
// correlation wins, so major beats minor on ties. A histogram with no
// variance (silence, or identical energy everywhere) falls back to C major.
func (ke *KeyEstimator) Estimate(chromagram [][]float64) (common.Outcome[KeyEstimationResult], error) {
	if len(chromagram) == 0 {
		return common.Outcome[KeyEstimationResult]{}, common.InvalidInput("key estimation", "empty chromagram")
	}

	histogram := make([]float64, theory.NumPitchClasses)
	for t, frame := range chromagram {
		if len(frame) != theory.NumPitchClasses {
			return common.Outcome[KeyEstimationResult]{}, common.InvalidInput("key estimation", "frame %d has %d bins, want %d", t, len(frame), theory.NumPitchClasses)
		}
		for pc, v := range frame {
			histogram[pc] += v
		}
	}
	for pc := range histogram {
		histogram[pc] /= float64(len(chromagram))
	}

	result := KeyEstimationResult{
		Correlation: math.Inf(-1),
		Histogram:   histogram,
		Candidates:  make([]KeyCandidate, 0, 2*theory.NumPitchClasses),
	}

	modes := []struct {
		mode    theory.Mode
		profile []float64
	}{
		{theory.ModeMajor, ke.profiles.MajorProfile},
		{theory.ModeMinor, ke.profiles.MinorProfile},
	}

	for _, m := range modes {
		for tonic := range theory.NumPitchClasses {
			r := stat.Correlation(histogram, rotate(m.profile, tonic), nil)
			key := theory.Key{Tonic: theory.PitchClass(tonic), Mode: m.mode}
			result.Candidates = append(result.Candidates, KeyCandidate{Key: key, Correlation: r})

			if math.IsNaN(r) || math.IsInf(r, 0) {
				return ke.fallback(result, "correlation is not finite")
			}
			if r > result.Correlation {
				result.Correlation = r
				result.Key = key
			}
		}
	}

	ke.logger.Info("detected key", logging.Fields{
		"key":         result.Key.String(),
		"correlation": result.Correlation,
	})
	return common.Ok(result), nil
}

func (ke *KeyEstimator) fallback(result KeyEstimationResult, reason string) (common.Outcome[KeyEstimationResult], error) {
	result.Key = theory.DefaultKey
	result.Correlation = 0
	result.Candidates = nil // may hold non-finite correlations
	ke.logger.Warn(fmt.Sprintf("key estimation failed, defaulting to %s", theory.DefaultKey), logging.Fields{
		"reason": reason,
	})
	return common.Fallback(result, reason), nil
}
