package tonal

import (
	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// Decode returns the most likely state path through the emissions under the
// transition model. It runs in the probability domain with a uniform initial
// distribution and renormalises the trellis column after every frame so long
// inputs do not underflow; renormalising never changes which path wins.
//
// A frame whose emissions are all zero carries no evidence and is treated as
// uniform so the transition model alone decides it. Ties go to the lowest
// state index.
func Decode(emissions EmissionMatrix, transitions TransitionMatrix) ([]int, error) {
	frames, states := emissions.Dims()
	if frames == 0 || states == 0 {
		return nil, common.InvalidInput("viterbi", "empty emission matrix")
	}
	if rows, cols := transitions.Dims(); rows != states || cols != states {
		return nil, common.InvalidInput("viterbi", "transition matrix is %dx%d, emissions have %d states", rows, cols, states)
	}

	backpointers := make([][]int, frames)
	delta := evidence(emissions, 0)
	for j := range delta {
		delta[j] /= float64(states)
	}
	common.NormalizeSum(delta)

	next := make([]float64, states)
	for t := 1; t < frames; t++ {
		observed := evidence(emissions, t)
		psi := make([]int, states)

		for j := range states {
			best, bestIdx := -1.0, 0
			for i, d := range delta {
				if p := d * transitions.At(i, j); p > best {
					best, bestIdx = p, i
				}
			}
			psi[j] = bestIdx
			next[j] = best * observed[j]
		}

		common.NormalizeSum(next)
		delta, next = next, delta
		backpointers[t] = psi
	}

	path := make([]int, frames)
	path[frames-1] = common.ArgMax(delta)
	for t := frames - 2; t >= 0; t-- {
		path[t] = backpointers[t+1][path[t+1]]
	}
	return path, nil
}

// evidence returns frame t's emissions, or all ones if the frame is empty
func evidence(emissions EmissionMatrix, t int) []float64 {
	row := emissions.Frame(t)
	for _, v := range row {
		if v > 0 {
			return row
		}
	}
	for j := range row {
		row[j] = 1
	}
	return row
}
