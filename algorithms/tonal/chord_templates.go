package tonal

import (
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-acorde/theory"
)

// Template bank sizes
const (
	TriadTemplates    = 36
	ExtendedTemplates = 72
)

var (
	triadQualities   = []theory.Quality{theory.Major, theory.Minor, theory.Diminished}
	seventhQualities = []theory.Quality{theory.Major7, theory.Minor7, theory.Dominant7}
)

// TemplateBank is the fixed set of binary pitch-class templates chords are
// matched against. Row i of the matrix is the template for Labels[i].
type TemplateBank struct {
	Labels    []theory.ChordLabel
	templates *mat.Dense
	index     map[theory.ChordLabel]int
}

// NewTemplateBank enumerates maj/min/dim triads for every root and, when
// extended, maj7/min7/dom7 for every root after them
func NewTemplateBank(extended bool) *TemplateBank {
	var labels []theory.ChordLabel
	for root := range theory.NumPitchClasses {
		for _, q := range triadQualities {
			labels = append(labels, theory.ChordLabel{Root: theory.PitchClass(root), Quality: q})
		}
	}
	if extended {
		for root := range theory.NumPitchClasses {
			for _, q := range seventhQualities {
				labels = append(labels, theory.ChordLabel{Root: theory.PitchClass(root), Quality: q})
			}
		}
	}

	templates := mat.NewDense(len(labels), theory.NumPitchClasses, nil)
	index := make(map[theory.ChordLabel]int, len(labels))
	for i, label := range labels {
		for _, interval := range label.Quality.Intervals() {
			templates.Set(i, int(label.Root.Transpose(interval)), 1)
		}
		index[label] = i
	}

	return &TemplateBank{Labels: labels, templates: templates, index: index}
}

// Size returns the number of templates
func (b *TemplateBank) Size() int {
	return len(b.Labels)
}

// Template returns a copy of the template for state i
func (b *TemplateBank) Template(i int) []float64 {
	return mat.Row(nil, i, b.templates)
}

// IndexOf returns the state index of label, or -1 if the bank lacks it
func (b *TemplateBank) IndexOf(label theory.ChordLabel) int {
	if i, ok := b.index[label]; ok {
		return i
	}
	return -1
}
