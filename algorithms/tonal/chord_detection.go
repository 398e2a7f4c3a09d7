package tonal

import (
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// ChordDetectionParams selects the template set and the smoothing method
type ChordDetectionParams struct {
	Extended bool `json:"extended"` // add maj7/min7/dom7 templates
	UseHMM   bool `json:"use_hmm"`  // Viterbi smoothing instead of per-frame argmax
}

// DefaultChordDetectionParams uses triads with HMM smoothing
func DefaultChordDetectionParams() ChordDetectionParams {
	return ChordDetectionParams{Extended: false, UseHMM: true}
}

// ChordDetector recognises a chord sequence in a chromagram
type ChordDetector struct {
	params ChordDetectionParams
	bank   *TemplateBank
	logger logging.Logger
}

// NewChordDetector creates a detector; a nil logger uses the global one
func NewChordDetector(params ChordDetectionParams, logger logging.Logger) *ChordDetector {
	return &ChordDetector{
		params: params,
		bank:   NewTemplateBank(params.Extended),
		logger: logging.Component(logger, "chord_detector"),
	}
}

// Bank returns the detector's template bank
func (cd *ChordDetector) Bank() *TemplateBank {
	return cd.bank
}

// Detect scores chroma against the templates, decodes the state path, and
// returns contiguous romanized chords with positions in frames
func (cd *ChordDetector) Detect(chromagram [][]float64, key theory.Key) ([]theory.Chord, error) {
	emissions, err := cd.bank.Emissions(chromagram)
	if err != nil {
		return nil, err
	}

	var path []int
	if cd.params.UseHMM {
		path, err = Decode(emissions, NewTransitionMatrix(cd.bank, key))
		if err != nil {
			return nil, err
		}
	} else {
		path = ArgMaxPath(emissions)
	}

	chords, err := Segment(path, cd.bank.Labels)
	if err != nil {
		return nil, err
	}
	chords = Romanize(chords, key)

	cd.logger.Info("detected chords", logging.Fields{
		"frames":    len(chromagram),
		"chords":    len(chords),
		"templates": cd.bank.Size(),
		"hmm":       cd.params.UseHMM,
	})
	return chords, nil
}
