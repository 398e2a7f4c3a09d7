package theory

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
)

func TestChordToMIDINotes(t *testing.T) {
	tests := []struct {
		root    string
		quality Quality
		octave  int
		want    []int
	}{
		{"C", Major, 4, []int{60, 64, 67}},
		{"D", Minor, 4, []int{62, 65, 69}},
		{"G", Dominant7, 4, []int{67, 71, 74, 77}},
		{"B", Diminished, 3, []int{59, 62, 65}},
		{"F", Major7, 4, []int{65, 69, 72, 76}},
	}

	for _, tt := range tests {
		root, err := ParsePitchClass(tt.root)
		if err != nil {
			t.Fatalf("ParsePitchClass(%q): %v", tt.root, err)
		}
		got := ChordToMIDINotes(root, tt.quality, tt.octave)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ChordToMIDINotes(%s, %s, %d) = %v, want %v", tt.root, tt.quality, tt.octave, got, tt.want)
		}
	}
}

func TestNoteNames(t *testing.T) {
	tests := []struct {
		name string
		num  int
	}{
		{"C4", 60},
		{"A4", 69},
		{"C#4", 61},
		{"Bb4", 70},
		{"C-1", 0},
		{"G9", 127},
	}

	for _, tt := range tests {
		got, err := NoteNameToNumber(tt.name)
		if err != nil {
			t.Fatalf("NoteNameToNumber(%q): %v", tt.name, err)
		}
		if got != tt.num {
			t.Errorf("NoteNameToNumber(%q) = %d, want %d", tt.name, got, tt.num)
		}
	}

	if got := NoteNumberToName(69); got != "A4" {
		t.Errorf("NoteNumberToName(69) = %q, want A4", got)
	}
	if got := NoteNumberToName(61); got != "C#4" {
		t.Errorf("NoteNumberToName(61) = %q, want C#4", got)
	}

	if _, err := NoteNameToNumber("H2"); !common.IsInvalidInput(err) {
		t.Errorf("expected invalid input for H2, got %v", err)
	}
}

func TestParsePitchClass(t *testing.T) {
	tests := map[string]PitchClass{"C": 0, "c#": 1, "Db": 1, "Bb": 10, "B": 11, "E#": 5}
	for name, want := range tests {
		got, err := ParsePitchClass(name)
		if err != nil {
			t.Fatalf("ParsePitchClass(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParsePitchClass(%q) = %d, want %d", name, got, want)
		}
	}

	_, err := ParsePitchClass("X")
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTransposeWraps(t *testing.T) {
	if got := PitchClass(11).Transpose(2); got != 1 {
		t.Errorf("B+2 = %d, want 1", got)
	}
	if got := PitchClass(0).Transpose(-1); got != 11 {
		t.Errorf("C-1 = %d, want 11", got)
	}
	if got := PitchClass(2).Interval(7); got != 7 {
		t.Errorf("interval G->D = %d, want 7", got)
	}
}

func TestQualityTable(t *testing.T) {
	for _, q := range Qualities() {
		intervals := q.Intervals()
		if len(intervals) < 3 || intervals[0] != 0 {
			t.Errorf("%s: bad intervals %v", q, intervals)
		}
		parsed, err := ParseQuality(q.String())
		if err != nil || parsed != q {
			t.Errorf("ParseQuality(%q) = %v, %v", q.String(), parsed, err)
		}
	}

	if Quality(99).Valid() {
		t.Error("out of range quality reported valid")
	}
}

func TestDiatonicTriads(t *testing.T) {
	aMinor := Key{Tonic: 9, Mode: ModeMinor}
	triads := aMinor.DiatonicTriads()

	want := []string{"A:min", "B:dim", "C:maj", "D:min", "E:min", "F:maj", "G:maj"}
	for i, label := range triads {
		if label.String() != want[i] {
			t.Errorf("degree %d = %s, want %s", i, label, want[i])
		}
	}
}

func TestRomanFor(t *testing.T) {
	cMajor := Key{Tonic: 0, Mode: ModeMajor}
	aMinor := Key{Tonic: 9, Mode: ModeMinor}

	tests := []struct {
		label ChordLabel
		key   Key
		want  string
	}{
		{ChordLabel{0, Major}, cMajor, "I"},
		{ChordLabel{7, Major}, cMajor, "V"},
		{ChordLabel{7, Dominant7}, cMajor, "V7"},
		{ChordLabel{5, Major7}, cMajor, "IVmaj7"},
		{ChordLabel{2, Minor7}, cMajor, "ii7"},
		{ChordLabel{11, Diminished}, cMajor, "vii°"},
		{ChordLabel{1, Major}, cMajor, "C#maj"},
		{ChordLabel{9, Minor}, aMinor, "i"},
		{ChordLabel{4, Minor}, aMinor, "v"},
		{ChordLabel{8, Major}, aMinor, "G#maj"},
	}

	for _, tt := range tests {
		if got := RomanFor(tt.label, tt.key); got != tt.want {
			t.Errorf("RomanFor(%s, %s) = %q, want %q", tt.label, tt.key, got, tt.want)
		}
	}
}

func TestResolveNumeral(t *testing.T) {
	cMajor := Key{Tonic: 0, Mode: ModeMajor}
	eMinor := Key{Tonic: 4, Mode: ModeMinor}

	tests := []struct {
		numeral    string
		key        Key
		complexity int
		want       string
	}{
		{"I", cMajor, 0, "C:maj"},
		{"V7", cMajor, 0, "G:maj"},
		{"V7", cMajor, 1, "G:dom7"},
		{"IVmaj7", cMajor, 1, "F:maj7"},
		{"ii7", cMajor, 1, "D:min7"},
		{"vii°", cMajor, 0, "B:dim"},
		{"vii°", cMajor, 2, "B:dim"},
		{"ii°", eMinor, 1, "F#:dim"},
		{"VII", eMinor, 0, "D:maj"},
		{"v", eMinor, 0, "B:min"},
		{"VII7", eMinor, 1, "D:dom7"},
	}

	for _, tt := range tests {
		got, err := ResolveNumeral(tt.numeral, tt.key, tt.complexity)
		if err != nil {
			t.Fatalf("ResolveNumeral(%q): %v", tt.numeral, err)
		}
		if got.String() != tt.want {
			t.Errorf("ResolveNumeral(%q, %s, %d) = %s, want %s", tt.numeral, tt.key, tt.complexity, got, tt.want)
		}
	}

	// no prefix matching: "IVX" is not "IV"
	if _, err := ResolveNumeral("IVX", cMajor, 0); !common.IsInvalidInput(err) {
		t.Errorf("expected invalid input for IVX, got %v", err)
	}
}

func TestDecorateSeventh(t *testing.T) {
	tests := []struct {
		numeral string
		mode    Mode
		want    string
	}{
		{"V", ModeMajor, "V7"},
		{"I", ModeMajor, "Imaj7"},
		{"IV", ModeMajor, "IVmaj7"},
		{"ii", ModeMajor, "ii7"},
		{"vii°", ModeMajor, "vii°"},
		{"i", ModeMinor, "i7"},
		{"VI", ModeMinor, "VImaj7"},
		{"VII", ModeMinor, "VII7"},
		{"III", ModeMinor, "IIImaj7"},
		{"ii°", ModeMinor, "ii°"},
		{"V7", ModeMajor, "V7"},
	}

	for _, tt := range tests {
		if got := DecorateSeventh(tt.numeral, tt.mode); got != tt.want {
			t.Errorf("DecorateSeventh(%q, %s) = %q, want %q", tt.numeral, tt.mode, got, tt.want)
		}
	}
}

func TestChordJSON(t *testing.T) {
	in := Chord{Root: 7, Quality: Dominant7, Roman: "V7", StartBeat: 4, DurationBeats: 2}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"root":"G","quality":"dom7","roman":"V7","start_beat":4,"duration_beats":2}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var out Chord
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Errorf("decoded %+v, want %+v", out, in)
	}
}
