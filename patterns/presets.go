package patterns

import (
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

const presetChordBeats = 4

type presetChord struct {
	root    theory.PitchClass
	quality theory.Quality
}

type preset struct {
	name   string
	key    theory.Key
	tempo  float64
	tags   []string
	chords []presetChord
}

var presetLibrary = []preset{
	{
		name:  "Classic ii-V-I",
		key:   theory.Key{Tonic: 0, Mode: theory.ModeMajor},
		tempo: 120,
		tags:  []string{"jazz", "progression"},
		chords: []presetChord{
			{2, theory.Minor7}, {7, theory.Dominant7}, {0, theory.Major7},
		},
	},
	{
		name:  "Pop Progression",
		key:   theory.Key{Tonic: 0, Mode: theory.ModeMajor},
		tempo: 115,
		tags:  []string{"pop", "progression"},
		chords: []presetChord{
			{0, theory.Major}, {7, theory.Major}, {9, theory.Minor}, {5, theory.Major},
		},
	},
	{
		name:  "Minor Groove",
		key:   theory.Key{Tonic: 9, Mode: theory.ModeMinor},
		tempo: 95,
		tags:  []string{"minor", "groove"},
		chords: []presetChord{
			{9, theory.Minor7}, {2, theory.Minor7}, {4, theory.Dominant7}, {9, theory.Minor7},
		},
	},
}

// Presets returns the built-in records, one bar per chord, without IDs
func Presets() []Record {
	records := make([]Record, 0, len(presetLibrary))
	for _, p := range presetLibrary {
		chords := make([]theory.Chord, len(p.chords))
		for i, c := range p.chords {
			label := theory.ChordLabel{Root: c.root, Quality: c.quality}
			chords[i] = theory.Chord{
				Root:          c.root,
				Quality:       c.quality,
				Roman:         theory.RomanFor(label, p.key),
				StartBeat:     float64(i * presetChordBeats),
				DurationBeats: presetChordBeats,
			}
		}
		records = append(records, Record{
			Name:     p.name,
			TempoBPM: p.tempo,
			Key:      p.key,
			Tags:     append([]string(nil), p.tags...),
			Chords:   chords,
			Preset:   true,
		})
	}
	return records
}

// InstallPresets saves the built-in records into the presets directory,
// skipping any whose name is already present there
func (s *Store) InstallPresets() ([]Record, error) {
	existing, err := s.List()
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool)
	for _, r := range existing {
		if r.Preset {
			have[r.Name] = true
		}
	}

	var installed []Record
	for _, p := range Presets() {
		if have[p.Name] {
			continue
		}
		saved, err := s.Save(p)
		if err != nil {
			return installed, err
		}
		installed = append(installed, saved)
	}
	s.logger.Info("installed presets", logging.Fields{"count": len(installed)})
	return installed, nil
}
