package theory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// MIDI numbering places C4 at 60

// ChordToMIDINotes returns the close-position MIDI notes of a chord whose root sits in octave
func ChordToMIDINotes(root PitchClass, quality Quality, octave int) []int {
	base := (octave+1)*12 + int(root.Transpose(0))

	intervals := quality.Intervals()
	if intervals == nil {
		intervals = Major.Intervals()
	}

	notes := make([]int, len(intervals))
	for i, interval := range intervals {
		notes[i] = base + interval
	}
	return notes
}

// NoteNameToNumber converts names like "C4", "F#3" or "Bb5" to MIDI note numbers
func NoteNameToNumber(name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return 0, common.InvalidInput("note name", "%q is too short", name)
	}

	split := 1
	for split < len(trimmed) && (trimmed[split] == '#' || trimmed[split] == 'b') {
		split++
	}

	letter := strings.ToUpper(trimmed[:1])
	natural, err := ParsePitchClass(letter)
	if err != nil {
		return 0, err
	}

	octave, err := strconv.Atoi(trimmed[split:])
	if err != nil {
		return 0, common.InvalidInput("note name", "bad octave in %q", name)
	}

	accidentals := trimmed[1:split]
	offset := strings.Count(accidentals, "#") - strings.Count(accidentals, "b")

	return int(natural) + (octave+1)*12 + offset, nil
}

// NoteNumberToName converts a MIDI note number to a name like "C4"
func NoteNumberToName(note int) string {
	octave := note/12 - 1
	if note < 0 {
		octave = (note-11)/12 - 1
	}
	return fmt.Sprintf("%s%d", PitchClass(note).Transpose(0), octave)
}
