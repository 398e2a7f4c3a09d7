package chroma

import (
	"sort"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// SegmentBoundaries returns the sorted, de-duplicated frame boundaries
// {0} ∪ beats ∪ {numFrames}. Beats outside [0, numFrames] are dropped.
func SegmentBoundaries(beats []int, numFrames int) []int {
	bounds := []int{0, numFrames}
	for _, b := range beats {
		if b >= 0 && b <= numFrames {
			bounds = append(bounds, b)
		}
	}
	sort.Ints(bounds)

	out := bounds[:1]
	for _, b := range bounds[1:] {
		if b != out[len(out)-1] {
			out = append(out, b)
		}
	}
	return out
}

// BeatSync aggregates frames between consecutive beat boundaries by their
// per-pitch-class median. The result has one frame per non-empty segment.
func BeatSync(chromagram [][]float64, beats []int) [][]float64 {
	if len(chromagram) == 0 {
		return [][]float64{}
	}

	bounds := SegmentBoundaries(beats, len(chromagram))
	synced := make([][]float64, 0, len(bounds)-1)
	column := make([]float64, 0, len(chromagram))

	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		frame := make([]float64, len(chromagram[start]))
		for pc := range frame {
			column = column[:0]
			for t := start; t < end; t++ {
				column = append(column, chromagram[t][pc])
			}
			frame[pc] = common.Median(column)
		}
		synced = append(synced, frame)
	}
	return synced
}

// Normalize scales each frame so its largest value is one. Frames whose peak
// is below threshold (silence) are returned as-is. The input is not modified.
func Normalize(chromagram [][]float64, threshold float64) [][]float64 {
	out := make([][]float64, len(chromagram))
	for t, frame := range chromagram {
		cp := make([]float64, len(frame))
		copy(cp, frame)
		common.NormalizeMax(cp, threshold)
		out[t] = cp
	}
	return out
}
