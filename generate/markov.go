package generate

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// markovFloor is the weight every move gets before the functional weights
const markovFloor = 0.1

type numeralEdge struct {
	from, to string
	weight   float64
}

var (
	majorMoves = []numeralEdge{
		{"I", "IV", 0.25}, {"I", "V", 0.25}, {"I", "vi", 0.20},
		{"ii", "V", 0.50}, {"ii", "I", 0.15},
		{"iii", "vi", 0.30}, {"iii", "IV", 0.25},
		{"IV", "V", 0.35}, {"IV", "I", 0.30}, {"IV", "ii", 0.15},
		{"V", "I", 0.60}, {"V", "vi", 0.20},
		{"vi", "IV", 0.30}, {"vi", "ii", 0.25}, {"vi", "V", 0.20},
		{"vii°", "I", 0.70},
	}
	minorMoves = []numeralEdge{
		{"i", "iv", 0.25}, {"i", "v", 0.25}, {"i", "VI", 0.20},
		{"ii°", "v", 0.50}, {"ii°", "i", 0.15},
		{"III", "VI", 0.30}, {"III", "iv", 0.25},
		{"iv", "v", 0.35}, {"iv", "i", 0.30}, {"iv", "ii°", 0.15},
		{"v", "i", 0.60}, {"v", "VI", 0.20},
		{"VI", "iv", 0.30}, {"VI", "ii°", 0.25}, {"VI", "v", 0.20},
		{"VII", "i", 0.70},
	}
)

// FallbackStates are drawn uniformly when the sampler meets an unknown state
func FallbackStates(mode theory.Mode) []string {
	if mode == theory.ModeMinor {
		return []string{"i", "iv", "v", "VI"}
	}
	return []string{"I", "IV", "V", "vi"}
}

// MarkovTable is a first-order transition table over the seven diatonic
// numerals of a mode. Rows are normalised and never change after construction.
type MarkovTable struct {
	mode   theory.Mode
	states [7]string
	index  map[string]int
	probs  [7][7]float64
	logger logging.Logger
}

// NewMarkovTable builds the functional-harmony table for mode
func NewMarkovTable(mode theory.Mode, logger logging.Logger) *MarkovTable {
	mt := &MarkovTable{
		mode:   mode,
		states: mode.Numerals(),
		index:  make(map[string]int, 7),
		logger: logging.Component(logger, "markov"),
	}
	for i, s := range mt.states {
		mt.index[s] = i
	}

	for i := range mt.probs {
		for j := range mt.probs[i] {
			mt.probs[i][j] = markovFloor
		}
	}

	moves := majorMoves
	if mode == theory.ModeMinor {
		moves = minorMoves
	}
	for _, m := range moves {
		mt.probs[mt.index[m.from]][mt.index[m.to]] = m.weight
	}

	for i := range mt.probs {
		row := mt.probs[i][:]
		floats.Scale(1/floats.Sum(row), row)
	}
	return mt
}

// States returns the numerals in degree order
func (mt *MarkovTable) States() []string {
	return mt.states[:]
}

// Known reports whether state is one of the table's numerals
func (mt *MarkovTable) Known(state string) bool {
	_, ok := mt.index[state]
	return ok
}

// Row returns a copy of the distribution over next states from state
func (mt *MarkovTable) Row(state string) ([]float64, bool) {
	i, ok := mt.index[state]
	if !ok {
		return nil, false
	}
	row := make([]float64, 7)
	copy(row, mt.probs[i][:])
	return row, true
}

// Prob returns P(next = to | current = from), 0 for unknown states
func (mt *MarkovTable) Prob(from, to string) float64 {
	i, ok := mt.index[from]
	if !ok {
		return 0
	}
	j, ok := mt.index[to]
	if !ok {
		return 0
	}
	return mt.probs[i][j]
}

// Next draws the state following current. An unknown current state is
// replaced by a uniform draw from the mode's fallback states.
func (mt *MarkovTable) Next(current string, rng *rand.Rand) string {
	i, ok := mt.index[current]
	if !ok {
		return mt.Fallback(current, rng)
	}

	r := rng.Float64()
	cumulative := 0.0
	for j, p := range mt.probs[i] {
		cumulative += p
		if r < cumulative {
			return mt.states[j]
		}
	}
	return mt.states[len(mt.states)-1]
}

// Fallback draws uniformly from the fallback states and logs the substitution
func (mt *MarkovTable) Fallback(state string, rng *rand.Rand) string {
	choices := FallbackStates(mt.mode)
	chosen := choices[rng.Intn(len(choices))]
	mt.logger.Warn("unknown progression state", logging.Fields{
		"state":    state,
		"mode":     mt.mode.String(),
		"fallback": chosen,
		"reason":   "state not in transition table",
	})
	return chosen
}
