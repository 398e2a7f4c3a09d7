// Package theory holds the closed music-theory vocabulary shared by analysis and
// generation: pitch classes, modes, keys, chord qualities, scale tables and Roman numerals.
package theory

import (
	"encoding/json"
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// PitchClass is a pitch class index, 0=C through 11=B
type PitchClass int

// NumPitchClasses is the size of every chroma vector and template
const NumPitchClasses = 12

// PitchClassNames are the canonical names, sharps only
var PitchClassNames = [NumPitchClasses]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flatAliases = map[string]string{
	"Db": "C#", "Eb": "D#", "Gb": "F#", "Ab": "G#", "Bb": "A#",
	"Cb": "B", "Fb": "E", "E#": "F", "B#": "C",
}

// String returns the canonical name
func (p PitchClass) String() string {
	return PitchClassNames[p.mod()]
}

// Transpose moves the pitch class by semitones, wrapping around the octave
func (p PitchClass) Transpose(semitones int) PitchClass {
	return PitchClass((int(p) + semitones) % NumPitchClasses).mod()
}

// Interval returns the upward distance in semitones from other to p
func (p PitchClass) Interval(from PitchClass) int {
	return int(p.Transpose(-int(from)))
}

func (p PitchClass) mod() PitchClass {
	v := int(p) % NumPitchClasses
	if v < 0 {
		v += NumPitchClasses
	}
	return PitchClass(v)
}

// ParsePitchClass accepts canonical names and common flat spellings
func ParsePitchClass(name string) (PitchClass, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > 0 {
		trimmed = strings.ToUpper(trimmed[:1]) + trimmed[1:]
	}
	if alias, ok := flatAliases[trimmed]; ok {
		trimmed = alias
	}
	for i, n := range PitchClassNames {
		if n == trimmed {
			return PitchClass(i), nil
		}
	}
	return 0, common.InvalidInput("parse pitch class", "unknown pitch class %q", name)
}

// MarshalJSON encodes the pitch class by name
func (p PitchClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a pitch class name
func (p *PitchClass) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParsePitchClass(name)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
