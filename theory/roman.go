package theory

import (
	"strings"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

// Numeral decorations
const (
	degreeSign     = "°"
	suffixMajor7   = "maj7"
	suffixSeventh  = "7"
	numeralLetters = "I II III IV V VI VII"
)

var baseNumerals = strings.Fields(numeralLetters)

// Numeral is a parsed Roman numeral: the degree plus the decoration that followed it
type Numeral struct {
	Degree     int  // 0..6
	Diminished bool // "°" present
	Major7     bool // "maj7" suffix
	Seventh    bool // plain "7" suffix
}

// ParseNumeral strips the seventh and diminished decorations and matches the
// remaining letters exactly against I..VII, case-insensitively.
func ParseNumeral(numeral string) (Numeral, error) {
	rest := strings.TrimSpace(numeral)
	var n Numeral

	switch {
	case strings.HasSuffix(rest, suffixMajor7):
		n.Major7 = true
		rest = strings.TrimSuffix(rest, suffixMajor7)
	case strings.HasSuffix(rest, suffixSeventh):
		n.Seventh = true
		rest = strings.TrimSuffix(rest, suffixSeventh)
	}

	if strings.Contains(rest, degreeSign) {
		n.Diminished = true
		rest = strings.ReplaceAll(rest, degreeSign, "")
	}

	upper := strings.ToUpper(rest)
	for degree, base := range baseNumerals {
		if base == upper {
			n.Degree = degree
			return n, nil
		}
	}
	return Numeral{}, common.InvalidInput("parse numeral", "unknown roman numeral %q", numeral)
}

// Base returns the canonical diatonic numeral for this degree in mode, without sevenths
func (n Numeral) Base(mode Mode) string {
	return mode.Numerals()[n.Degree]
}

// RomanFor labels a chord relative to key. Diatonic roots get the canonical
// numeral of their degree, with "maj7" appended for major sevenths and "7" for
// minor or dominant sevenths. Roots outside the scale get the literal symbol.
func RomanFor(label ChordLabel, key Key) string {
	degree := key.DegreeOf(label.Root)
	if degree < 0 {
		return label.Symbol()
	}

	numeral := key.Mode.Numerals()[degree]
	switch label.Quality {
	case Major7:
		numeral += suffixMajor7
	case Minor7, Dominant7:
		numeral += suffixSeventh
	}
	return numeral
}

// DecorateSeventh adds the diatonic seventh of the numeral's degree: "7" on the
// degree carrying the scale's dominant seventh (V in major, VII in natural
// minor) and on minor-quality degrees, "maj7" on the other major-quality ones.
// Diminished numerals are returned unchanged.
func DecorateSeventh(numeral string, mode Mode) string {
	n, err := ParseNumeral(numeral)
	if err != nil || n.Major7 || n.Seventh {
		return numeral
	}

	quality := mode.DegreeQualities()[n.Degree]
	switch {
	case n.Diminished || quality == Diminished:
		return numeral
	case quality == Major && n.Degree == dominantSeventhDegree(mode):
		return numeral + suffixSeventh
	case quality == Major:
		return numeral + suffixMajor7
	default:
		return numeral + suffixSeventh
	}
}

// dominantSeventhDegree is the 0-based degree whose diatonic seventh chord is
// a dominant seventh
func dominantSeventhDegree(mode Mode) int {
	if mode == ModeMinor {
		return 6
	}
	return 4
}

// ResolveNumeral turns a numeral into a concrete root and quality in key.
// Sevenths are honoured only when complexity >= 1; diminished always resolves to dim.
func ResolveNumeral(numeral string, key Key, complexity int) (ChordLabel, error) {
	n, err := ParseNumeral(numeral)
	if err != nil {
		return ChordLabel{}, err
	}

	root := key.DegreeRoot(n.Degree)
	base := key.Mode.DegreeQualities()[n.Degree]

	if n.Diminished || base == Diminished {
		return ChordLabel{Root: root, Quality: Diminished}, nil
	}

	quality := base
	if complexity >= 1 {
		switch {
		case n.Major7:
			quality = Major7
		case n.Seventh && base == Major:
			quality = Dominant7
		case n.Seventh && base == Minor:
			quality = Minor7
		}
	}
	return ChordLabel{Root: root, Quality: quality}, nil
}
