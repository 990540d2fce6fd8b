// Package converter exports scores to MIDI, PDF and text files
package converter

import (
	"github.com/james-see/measureedit/pkg/score"
)

// Options tune the encoders
type Options struct {
	Tempo    float64 // beats per minute for MIDI
	Channel  uint8   // MIDI channel (0-15)
	Velocity uint8   // MIDI note velocity (1-127)
	Styled   bool    // color text exports
}

// DefaultOptions returns 120 bpm on channel 0 and plain text
func DefaultOptions() Options {
	return Options{Tempo: 120, Channel: 0, Velocity: 100}
}

// Encoder interface for format-specific score export
type Encoder interface {
	Format() Format
	Encode(s *score.Score) ([]byte, error)
}

// Converter handles score exports
type Converter struct {
	encoders map[Format]Encoder
}

// New creates a Converter with the MIDI, PDF and text encoders
func New(opts Options) *Converter {
	c := &Converter{encoders: make(map[Format]Encoder)}
	c.Register(NewMIDIEncoder(opts))
	c.Register(&PDFEncoder{})
	c.Register(&TextEncoder{Styled: opts.Styled})
	return c
}

// Register adds or replaces the encoder for its format
func (c *Converter) Register(e Encoder) {
	c.encoders[e.Format()] = e
}

// Encoder returns the encoder for a format
func (c *Converter) Encoder(f Format) (Encoder, bool) {
	e, ok := c.encoders[f]
	return e, ok
}
