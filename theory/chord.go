package theory

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// ChordLabel identifies a chord type by root and quality, e.g. "C:maj"
type ChordLabel struct {
	Root    PitchClass `json:"root"`
	Quality Quality    `json:"quality"`
}

// String formats the label as root:quality
func (l ChordLabel) String() string {
	return fmt.Sprintf("%s:%s", l.Root, l.Quality)
}

// Symbol formats the label without separator, e.g. "C#maj"
func (l ChordLabel) Symbol() string {
	return l.Root.String() + l.Quality.String()
}

// ParseChordLabel parses the root:quality form
func ParseChordLabel(label string) (ChordLabel, error) {
	root, quality, ok := strings.Cut(label, ":")
	if !ok {
		return ChordLabel{}, common.InvalidInput("parse chord label", "missing ':' in %q", label)
	}
	pc, err := ParsePitchClass(root)
	if err != nil {
		return ChordLabel{}, err
	}
	q, err := ParseQuality(quality)
	if err != nil {
		return ChordLabel{}, err
	}
	return ChordLabel{Root: pc, Quality: q}, nil
}

// Chord is a timed chord in a detected or generated progression.
// Positions are in beats.
type Chord struct {
	Root          PitchClass `json:"root"`
	Quality       Quality    `json:"quality"`
	Roman         string     `json:"roman,omitempty"`
	StartBeat     float64    `json:"start_beat"`
	DurationBeats float64    `json:"duration_beats"`
}

// Label returns the chord's root/quality pair
func (c Chord) Label() ChordLabel {
	return ChordLabel{Root: c.Root, Quality: c.Quality}
}

// EndBeat returns the beat where the chord stops sounding
func (c Chord) EndBeat() float64 {
	return c.StartBeat + c.DurationBeats
}

func (c Chord) String() string {
	if c.Roman != "" {
		return fmt.Sprintf("%s (%s)", c.Roman, c.Label().Symbol())
	}
	return c.Label().Symbol()
}

// MIDINotes voices the chord in close position from the given octave
func (c Chord) MIDINotes(octave int) []int {
	return ChordToMIDINotes(c.Root, c.Quality, octave)
}

// TotalBeats sums the durations of a chord sequence
func TotalBeats(chords []Chord) float64 {
	total := 0.0
	for _, c := range chords {
		total += c.DurationBeats
	}
	return total
}
