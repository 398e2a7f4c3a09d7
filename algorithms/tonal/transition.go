package tonal

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// Transition weights before row normalisation
const (
	transitionFloor = 0.01
	selfTransition  = 0.5
)

// degreeEdge is a functional-harmony move between scale degrees (0-based)
type degreeEdge struct {
	from, to int
	weight   float64
}

// functionalEdges are the moves between scale degrees, shared by both modes
// through the parallel degree mapping. Degrees: 0=tonic, 1=supertonic,
// 3=subdominant, 4=dominant, 5=submediant, 6=leading tone / subtonic.
var functionalEdges = []degreeEdge{
	{0, 3, 0.15}, {0, 4, 0.15}, {0, 5, 0.15},
	{1, 4, 0.25},
	{3, 4, 0.20}, {3, 0, 0.20},
	{4, 0, 0.30},
	{5, 3, 0.15}, {5, 1, 0.15},
	{6, 0, 0.30},
}

// TransitionMatrix is a read-only row-stochastic states x states matrix.
// Build one per key with NewTransitionMatrix; it is never modified afterwards.
type TransitionMatrix struct {
	m *mat.Dense
}

// Dims returns (states, states)
func (tm TransitionMatrix) Dims() (int, int) {
	if tm.m == nil {
		return 0, 0
	}
	return tm.m.Dims()
}

// At returns P(next = j | current = i)
func (tm TransitionMatrix) At(i, j int) float64 {
	return tm.m.At(i, j)
}

// Row returns a copy of row i
func (tm TransitionMatrix) Row(i int) []float64 {
	return mat.Row(nil, i, tm.m)
}

// RowSums returns the sum of every row; each is 1 up to rounding
func (tm TransitionMatrix) RowSums() []float64 {
	rows, _ := tm.Dims()
	sums := make([]float64, rows)
	for i := range rows {
		sums[i] = floats.Sum(tm.m.RawRowView(i))
	}
	return sums
}

// NewTransitionMatrix builds the chord transition model for key over the
// bank's states: a uniform floor, a strong self-transition on the diagonal,
// and hand-set weights between the diatonic triads, then row normalisation.
func NewTransitionMatrix(bank *TemplateBank, key theory.Key) TransitionMatrix {
	n := bank.Size()
	m := mat.NewDense(n, n, nil)
	for i := range n {
		for j := range n {
			if i == j {
				m.Set(i, j, selfTransition)
			} else {
				m.Set(i, j, transitionFloor)
			}
		}
	}

	diatonic := key.DiatonicTriads()
	states := make([]int, len(diatonic))
	for degree, label := range diatonic {
		states[degree] = bank.IndexOf(label)
	}

	for _, e := range functionalEdges {
		from, to := states[e.from], states[e.to]
		if from >= 0 && to >= 0 {
			m.Set(from, to, e.weight)
		}
	}

	for i := range n {
		row := m.RawRowView(i)
		common.NormalizeSum(row)
	}

	return TransitionMatrix{m: m}
}

// NewTransitionMatrixFromRows wraps an explicit matrix, normalising each row.
// Rows must be square, non-negative and have a positive sum.
func NewTransitionMatrixFromRows(rows [][]float64) (TransitionMatrix, error) {
	n := len(rows)
	if n == 0 {
		return TransitionMatrix{}, common.InvalidInput("transition matrix", "empty matrix")
	}

	m := mat.NewDense(n, n, nil)
	for i, row := range rows {
		if len(row) != n {
			return TransitionMatrix{}, common.InvalidInput("transition matrix", "row %d has %d columns, want %d", i, len(row), n)
		}
		if floats.Min(row) < 0 {
			return TransitionMatrix{}, common.InvalidInput("transition matrix", "row %d has a negative entry", i)
		}
		m.SetRow(i, row)
		if !common.NormalizeSum(m.RawRowView(i)) {
			return TransitionMatrix{}, common.InvalidInput("transition matrix", "row %d does not have a positive sum", i)
		}
	}
	return TransitionMatrix{m: m}, nil
}
