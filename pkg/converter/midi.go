package converter

import (
	"bytes"
	"fmt"

	"github.com/james-see/measureedit/pkg/notation"
	"github.com/james-see/measureedit/pkg/score"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ticksPerQuarter makes one MIDI tick equal one notation tick
const ticksPerQuarter = notation.TicksPerWholeNote / 4

// MIDIEncoder writes a score as a single track standard MIDI file
type MIDIEncoder struct {
	tempo    float64
	channel  uint8
	velocity uint8
}

// NewMIDIEncoder creates a MIDI encoder, filling in defaults for zero options
func NewMIDIEncoder(opts Options) *MIDIEncoder {
	def := DefaultOptions()
	e := &MIDIEncoder{tempo: opts.Tempo, channel: opts.Channel, velocity: opts.Velocity}
	if e.tempo <= 0 {
		e.tempo = def.Tempo
	}
	if e.velocity == 0 || e.velocity > 127 {
		e.velocity = def.Velocity
	}
	e.channel &= 0x0F
	return e
}

func (e *MIDIEncoder) Format() Format { return FormatMIDI }

// Encode writes meter and tempo, then every note in time order. Chord
// pitches start together and rests only advance time.
func (e *MIDIEncoder) Encode(s *score.Score) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil score")
	}

	ts := s.TimeSignature()
	var track smf.Track
	track.Add(0, smf.MetaMeter(uint8(ts.Beats), uint8(ts.BeatUnit)))
	track.Add(0, smf.MetaTempo(e.tempo))

	var pending uint32
	for mi, m := range s.Measures() {
		for _, ev := range m.Events() {
			ticks := uint32(ev.Ticks())
			if ev.IsRest() {
				pending += ticks
				continue
			}

			keys, err := midiKeys(ev.Pitches)
			if err != nil {
				return nil, fmt.Errorf("measure %d event %s: %w", mi, ev.ID, err)
			}
			for i, key := range keys {
				delta := uint32(0)
				if i == 0 {
					delta = pending
				}
				track.Add(delta, midi.NoteOn(e.channel, key, e.velocity))
			}
			for i, key := range keys {
				delta := uint32(0)
				if i == 0 {
					delta = ticks
				}
				track.Add(delta, midi.NoteOff(e.channel, key))
			}
			pending = 0
		}
	}

	// Trailing rests still count toward the track length
	track.Close(pending)

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := sm.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// midiKeys maps pitches to distinct key numbers in order
func midiKeys(pitches []string) ([]uint8, error) {
	keys := make([]uint8, 0, len(pitches))
	seen := make(map[uint8]bool, len(pitches))
	for _, raw := range pitches {
		p, err := notation.ParsePitch(raw)
		if err != nil {
			return nil, err
		}
		k := p.MIDIKey()
		if k < 0 || k > 127 {
			return nil, fmt.Errorf("pitch %s is outside the MIDI key range", raw)
		}
		if seen[uint8(k)] {
			continue
		}
		seen[uint8(k)] = true
		keys = append(keys, uint8(k))
	}
	return keys, nil
}
