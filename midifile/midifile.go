// Package midifile writes chord progressions as Standard MIDI Files.
package midifile

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// TicksPerQuarter is the file resolution
const TicksPerQuarter = 960

// ExportConfig controls how chords become notes
type ExportConfig struct {
	TempoBPM  float64 `json:"tempo_bpm"`
	Velocity  int     `json:"velocity"`
	Channel   int     `json:"channel"`
	Octave    int     `json:"octave"`
	TrackName string  `json:"track_name,omitempty"`
}

// DefaultExportConfig is 120 BPM, velocity 80, channel 0, octave 4
func DefaultExportConfig() ExportConfig {
	return ExportConfig{TempoBPM: 120, Velocity: 80, Channel: 0, Octave: 4, TrackName: "Chords"}
}

// Validate checks the ranges MIDI can represent
func (c ExportConfig) Validate() error {
	switch {
	case !(c.TempoBPM > 0) || math.IsInf(c.TempoBPM, 0):
		return common.InvalidInput("midi export", "tempo must be positive, got %v", c.TempoBPM)
	case c.Velocity < 1 || c.Velocity > 127:
		return common.InvalidInput("midi export", "velocity must be in [1,127], got %d", c.Velocity)
	case c.Channel < 0 || c.Channel > 15:
		return common.InvalidInput("midi export", "channel must be in [0,15], got %d", c.Channel)
	case c.Octave < -1 || c.Octave > 8:
		return common.InvalidInput("midi export", "octave must be in [-1,8], got %d", c.Octave)
	}
	return nil
}

type noteEvent struct {
	tick uint32
	on   bool
	key  uint8
}

// Build renders chords as one block-chord track. Each chord's notes start at
// its start beat and stop at its end beat.
func Build(chords []theory.Chord, config ExportConfig) (*smf.SMF, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var events []noteEvent
	for i, c := range chords {
		if c.DurationBeats <= 0 || c.StartBeat < 0 {
			return nil, common.InvalidInput("midi export", "chord %d has start %v and duration %v", i, c.StartBeat, c.DurationBeats)
		}
		on, off := beatsToTicks(c.StartBeat), beatsToTicks(c.EndBeat())
		for _, note := range c.MIDINotes(config.Octave) {
			if note < 0 || note > 127 {
				return nil, common.InvalidInput("midi export", "chord %d note %d outside MIDI range", i, note)
			}
			events = append(events,
				noteEvent{tick: on, on: true, key: uint8(note)},
				noteEvent{tick: off, on: false, key: uint8(note)})
		}
	}
	sortEvents(events)

	var track smf.Track
	if config.TrackName != "" {
		track.Add(0, smf.MetaTrackSequenceName(config.TrackName))
	}
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(config.TempoBPM))

	channel, velocity := uint8(config.Channel), uint8(config.Velocity)
	var last uint32
	for _, e := range events {
		delta := e.tick - last
		last = e.tick
		if e.on {
			track.Add(delta, midi.NoteOn(channel, e.key, velocity))
		} else {
			track.Add(delta, midi.NoteOff(channel, e.key))
		}
	}
	track.Close(0)

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := file.Add(track); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	return file, nil
}

// Write renders chords and writes the file to w
func Write(w io.Writer, chords []theory.Chord, config ExportConfig, logger logging.Logger) error {
	file, err := Build(chords, config)
	if err != nil {
		return err
	}
	n, err := file.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	logging.Component(logger, "midi_export").Debug("wrote midi", logging.Fields{
		"chords": len(chords),
		"bytes":  n,
		"tempo":  config.TempoBPM,
	})
	return nil
}

// WriteFile renders chords to path
func WriteFile(path string, chords []theory.Chord, config ExportConfig, logger logging.Logger) error {
	file, err := Build(chords, config)
	if err != nil {
		return err
	}
	if err := file.WriteFile(path); err != nil {
		return fmt.Errorf("write midi %s: %w", path, err)
	}
	logging.Component(logger, "midi_export").Info("exported midi", logging.Fields{
		"path":   path,
		"chords": len(chords),
		"tempo":  config.TempoBPM,
	})
	return nil
}

func beatsToTicks(beats float64) uint32 {
	return uint32(math.Round(beats * TicksPerQuarter))
}

// sortEvents orders by tick with note-offs before note-ons at the same tick,
// so a repeated note is released before it is struck again
func sortEvents(events []noteEvent) {
	slices.SortStableFunc(events, func(a, b noteEvent) int {
		if a.tick != b.tick {
			return cmp.Compare(a.tick, b.tick)
		}
		if a.on == b.on {
			return 0
		}
		if a.on {
			return 1
		}
		return -1
	})
}
