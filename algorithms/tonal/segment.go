package tonal

import (
	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// Segment collapses a frame-level state path into chords. Consecutive frames
// with the same label become one chord starting at the first frame, lasting
// the number of frames it spans. With beat-synchronised chroma one frame is
// one beat.
func Segment(path []int, labels []theory.ChordLabel) ([]theory.Chord, error) {
	var chords []theory.Chord

	for frame, state := range path {
		if state < 0 || state >= len(labels) {
			return nil, common.InvalidInput("segment", "state %d at frame %d outside [0,%d)", state, frame, len(labels))
		}
		label := labels[state]

		if n := len(chords); n > 0 && chords[n-1].Label() == label {
			chords[n-1].DurationBeats++
			continue
		}
		chords = append(chords, theory.Chord{
			Root:          label.Root,
			Quality:       label.Quality,
			StartBeat:     float64(frame),
			DurationBeats: 1,
		})
	}

	return chords, nil
}

// Romanize returns a copy of chords with Roman numerals relative to key.
// Roots outside the scale are labelled with their literal symbol.
func Romanize(chords []theory.Chord, key theory.Key) []theory.Chord {
	out := make([]theory.Chord, len(chords))
	for i, c := range chords {
		c.Roman = theory.RomanFor(c.Label(), key)
		out[i] = c
	}
	return out
}
