package theory

import (
	"encoding/json"
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// Quality is the closed set of supported chord qualities
type Quality int

const (
	Major Quality = iota
	Minor
	Diminished
	Augmented
	Major7
	Minor7
	Dominant7
	Diminished7
	HalfDiminished7
	Sus2
	Sus4
)

// qualityInfo maps each quality tag to its short name and intervals above the root
var qualityInfo = [...]struct {
	name      string
	intervals []int
}{
	Major:           {"maj", []int{0, 4, 7}},
	Minor:           {"min", []int{0, 3, 7}},
	Diminished:      {"dim", []int{0, 3, 6}},
	Augmented:       {"aug", []int{0, 4, 8}},
	Major7:          {"maj7", []int{0, 4, 7, 11}},
	Minor7:          {"min7", []int{0, 3, 7, 10}},
	Dominant7:       {"dom7", []int{0, 4, 7, 10}},
	Diminished7:     {"dim7", []int{0, 3, 6, 9}},
	HalfDiminished7: {"hdim7", []int{0, 3, 6, 10}},
	Sus2:            {"sus2", []int{0, 2, 7}},
	Sus4:            {"sus4", []int{0, 5, 7}},
}

// Qualities lists every supported quality in declaration order
func Qualities() []Quality {
	out := make([]Quality, len(qualityInfo))
	for i := range qualityInfo {
		out[i] = Quality(i)
	}
	return out
}

// Valid reports whether q is a member of the supported set
func (q Quality) Valid() bool {
	return q >= 0 && int(q) < len(qualityInfo)
}

// String returns the short name used in chord labels ("maj", "dom7", ...)
func (q Quality) String() string {
	if !q.Valid() {
		return "unknown"
	}
	return qualityInfo[q].name
}

// Intervals returns a copy of the semitone offsets above the root
func (q Quality) Intervals() []int {
	if !q.Valid() {
		return nil
	}
	src := qualityInfo[q].intervals
	out := make([]int, len(src))
	copy(out, src)
	return out
}

// IsSeventh reports whether the quality carries a seventh
func (q Quality) IsSeventh() bool {
	switch q {
	case Major7, Minor7, Dominant7, Diminished7, HalfDiminished7:
		return true
	}
	return false
}

// ParseQuality resolves a short quality name
func ParseQuality(name string) (Quality, error) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for i, info := range qualityInfo {
		if info.name == lowered {
			return Quality(i), nil
		}
	}
	return 0, common.InvalidInput("parse quality", "unknown chord quality %q", name)
}

// MarshalJSON encodes the quality by short name
func (q Quality) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// UnmarshalJSON decodes a short quality name
func (q *Quality) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseQuality(name)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
