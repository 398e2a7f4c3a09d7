package tonal

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// cosineEpsilon keeps silent frames from dividing by zero
const cosineEpsilon = 1e-10

// EmissionMatrix is a read-only frames x states matrix of template likelihoods
// in [0, 1]
type EmissionMatrix struct {
	m *mat.Dense
}

// Dims returns (frames, states)
func (e EmissionMatrix) Dims() (int, int) {
	if e.m == nil {
		return 0, 0
	}
	return e.m.Dims()
}

// At returns the likelihood of state j at frame t
func (e EmissionMatrix) At(t, j int) float64 {
	return e.m.At(t, j)
}

// Frame returns a copy of frame t's likelihoods
func (e EmissionMatrix) Frame(t int) []float64 {
	return mat.Row(nil, t, e.m)
}

// NewEmissionMatrix wraps rows as an emission matrix, rejecting ragged,
// negative or NaN input
func NewEmissionMatrix(rows [][]float64) (EmissionMatrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return EmissionMatrix{}, common.InvalidInput("emission matrix", "empty matrix")
	}

	n := len(rows[0])
	m := mat.NewDense(len(rows), n, nil)
	for t, row := range rows {
		if len(row) != n {
			return EmissionMatrix{}, common.InvalidInput("emission matrix", "row %d has %d states, want %d", t, len(row), n)
		}
		for j, v := range row {
			if !(v >= 0) {
				return EmissionMatrix{}, common.InvalidInput("emission matrix", "entry (%d,%d) = %v is not a non-negative number", t, j, v)
			}
		}
		m.SetRow(t, row)
	}
	return EmissionMatrix{m: m}, nil
}

// Score returns the clipped cosine similarity of one chroma frame against
// every template in the bank
func (b *TemplateBank) Score(frame []float64) []float64 {
	scores := make([]float64, b.Size())
	frameNorm := floats.Norm(frame, 2)

	for i := range b.Labels {
		template := b.templates.RawRowView(i)
		similarity := floats.Dot(frame, template) / (frameNorm*floats.Norm(template, 2) + cosineEpsilon)
		scores[i] = common.Clamp(similarity, 0, 1)
	}
	return scores
}

// Emissions scores every chroma frame against the bank
func (b *TemplateBank) Emissions(chromagram [][]float64) (EmissionMatrix, error) {
	if len(chromagram) == 0 {
		return EmissionMatrix{}, common.InvalidInput("emissions", "empty chromagram")
	}

	m := mat.NewDense(len(chromagram), b.Size(), nil)
	for t, frame := range chromagram {
		if len(frame) != theory.NumPitchClasses {
			return EmissionMatrix{}, common.InvalidInput("emissions", "frame %d has %d bins, want %d", t, len(frame), theory.NumPitchClasses)
		}
		m.SetRow(t, b.Score(frame))
	}
	return EmissionMatrix{m: m}, nil
}

// ArgMaxPath picks the best-scoring state per frame with no smoothing.
// The first state wins ties.
func ArgMaxPath(emissions EmissionMatrix) []int {
	frames, _ := emissions.Dims()
	path := make([]int, frames)
	for t := range frames {
		path[t] = common.ArgMax(emissions.m.RawRowView(t))
	}
	return path
}
