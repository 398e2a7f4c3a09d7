package theory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// Mode is major or (natural) minor
type Mode int

const (
	ModeMajor Mode = iota
	ModeMinor
)

func (m Mode) String() string {
	if m == ModeMinor {
		return "minor"
	}
	return "major"
}

// ParseMode accepts "major"/"minor" and the short forms "maj"/"min"
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "major", "maj":
		return ModeMajor, nil
	case "minor", "min":
		return ModeMinor, nil
	}
	return 0, common.InvalidInput("parse mode", "unknown mode %q", name)
}

// MarshalJSON encodes the mode by name
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode name
func (m *Mode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseMode(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scale degree tables, indexed by degree 0..6
var (
	majorScale     = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorScale     = [7]int{0, 2, 3, 5, 7, 8, 10}
	majorQualities = [7]Quality{Major, Minor, Minor, Major, Major, Minor, Diminished}
	minorQualities = [7]Quality{Minor, Diminished, Major, Minor, Minor, Major, Major}
	majorNumerals  = [7]string{"I", "ii", "iii", "IV", "V", "vi", "vii°"}
	minorNumerals  = [7]string{"i", "ii°", "III", "iv", "v", "VI", "VII"}
)

// ScaleIntervals returns the semitone offsets of the seven degrees
func (m Mode) ScaleIntervals() [7]int {
	if m == ModeMinor {
		return minorScale
	}
	return majorScale
}

// DegreeQualities returns the diatonic triad quality of each degree
func (m Mode) DegreeQualities() [7]Quality {
	if m == ModeMinor {
		return minorQualities
	}
	return majorQualities
}

// Numerals returns the canonical Roman numeral of each degree
func (m Mode) Numerals() [7]string {
	if m == ModeMinor {
		return minorNumerals
	}
	return majorNumerals
}

// Tonic returns the tonic numeral ("I" or "i")
func (m Mode) Tonic() string {
	return m.Numerals()[0]
}

// Key is a tonic pitch class plus mode
type Key struct {
	Tonic PitchClass `json:"tonic"`
	Mode  Mode       `json:"mode"`
}

// DefaultKey is substituted when key estimation cannot produce an answer
var DefaultKey = Key{Tonic: 0, Mode: ModeMajor}

func (k Key) String() string {
	return fmt.Sprintf("%s %s", k.Tonic, k.Mode)
}

// ParseKey builds a key from a tonic name ("C", "F#", "Bb") and a mode name
// ("major", "min", ...)
func ParseKey(tonic, mode string) (Key, error) {
	pc, err := ParsePitchClass(tonic)
	if err != nil {
		return Key{}, err
	}
	m, err := ParseMode(mode)
	if err != nil {
		return Key{}, err
	}
	return Key{Tonic: pc, Mode: m}, nil
}

// DegreeRoot returns the root of the given scale degree (0..6)
func (k Key) DegreeRoot(degree int) PitchClass {
	return k.Tonic.Transpose(k.Mode.ScaleIntervals()[degree])
}

// DegreeOf returns the scale degree whose root is pc, or -1 if pc is not diatonic
func (k Key) DegreeOf(pc PitchClass) int {
	interval := pc.Interval(k.Tonic)
	for degree, offset := range k.Mode.ScaleIntervals() {
		if offset == interval {
			return degree
		}
	}
	return -1
}

// DiatonicTriads returns the seven diatonic triads as (root, quality) labels
func (k Key) DiatonicTriads() [7]ChordLabel {
	var out [7]ChordLabel
	qualities := k.Mode.DegreeQualities()
	for degree := range out {
		out[degree] = ChordLabel{Root: k.DegreeRoot(degree), Quality: qualities[degree]}
	}
	return out
}
