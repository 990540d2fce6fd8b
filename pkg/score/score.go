// Package score strings measures into a left-to-right system and routes
// edits to them by index.
package score

import (
	"io"
	"log/slog"

	"github.com/james-see/measureedit/pkg/notation"
)

// RendererFactory hands out the surface of the measure at index.
type RendererFactory func(index int) notation.Renderer

// Score is an ordered list of measures sharing one time signature. The
// first measure carries the clef and the time signature label.
// A Score is not safe for concurrent use.
type Score struct {
	x, y         float64
	measureWidth float64
	timeSig      notation.TimeSignature
	clef         notation.Clef
	measures     []*notation.Measure

	renderers  RendererFactory
	ids        notation.IDGenerator
	logger     *slog.Logger
	notePad    float64
	measurePad float64
}

// Option configures a Score.
type Option func(*Score)

// WithRenderers attaches a surface to every measure.
func WithRenderers(f RendererFactory) Option {
	return func(s *Score) { s.renderers = f }
}

// WithClef sets the clef of the first measure. It defaults to treble.
func WithClef(c notation.Clef) Option {
	return func(s *Score) { s.clef = c }
}

// WithIDGenerator shares one id generator between all measures.
func WithIDGenerator(g notation.IDGenerator) Option {
	return func(s *Score) { s.ids = g }
}

// WithLogger logs edits at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Score) { s.logger = l }
}

// WithPadding overrides the measure paddings.
func WithPadding(note, measure float64) Option {
	return func(s *Score) {
		s.notePad = note
		s.measurePad = measure
	}
}

// New creates a score with a single measure at x, y.
func New(x, y, measureWidth float64, timeSignature string, opts ...Option) (*Score, error) {
	ts, err := notation.ParseTimeSignature(timeSignature)
	if err != nil {
		return nil, err
	}

	s := &Score{
		x:            x,
		y:            y,
		measureWidth: measureWidth,
		timeSig:      ts,
		clef:         notation.ClefTreble,
		ids:          notation.UUIDs(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		notePad:      notation.DefaultNotePadding,
		measurePad:   notation.DefaultMeasurePadding,
	}
	for _, opt := range opts {
		opt(s)
	}

	m, err := s.newMeasure(0, x, notation.WithClef(s.clef), notation.WithTimeSignatureLabel())
	if err != nil {
		return nil, err
	}
	s.measures = append(s.measures, m)
	s.logger.Debug("score created", "time_signature", ts.String(), "events", m.Len())
	return s, nil
}

// AddNoteInMeasure adds pitches to the event eventID of measure index.
func (s *Score) AddNoteInMeasure(index int, pitches []string, durationCode, eventID string) error {
	m, err := s.Measure(index)
	if err != nil {
		return err
	}
	if err := m.AddPitches(eventID, pitches, durationCode); err != nil {
		s.logger.Debug("add note rejected", "measure", index, "event", eventID, "error", err)
		return err
	}
	s.logger.Debug("note added", "measure", index, "event", eventID, "pitches", pitches, "duration", durationCode)
	return nil
}

// ModifyDurationInMeasure changes the length of event eventID of measure
// index.
func (s *Score) ModifyDurationInMeasure(index int, durationCode, eventID string) error {
	m, err := s.Measure(index)
	if err != nil {
		return err
	}
	if err := m.ChangeEventDuration(eventID, durationCode); err != nil {
		s.logger.Debug("duration change rejected", "measure", index, "event", eventID, "error", err)
		return err
	}
	s.logger.Debug("duration changed", "measure", index, "event", eventID, "duration", durationCode, "events", m.Len())
	return nil
}

// AddMeasure appends an empty measure to the right of the last one. It
// shares the score clef but carries no clef or time signature label.
func (s *Score) AddMeasure() (*notation.Measure, error) {
	last := s.measures[len(s.measures)-1]
	staff := last.Staff()
	x := staff.X + max(staff.Width, s.measureWidth)

	m, err := s.newMeasure(len(s.measures), x, notation.WithClef(s.clef), notation.WithoutClefLabel())
	if err != nil {
		return nil, err
	}
	s.measures = append(s.measures, m)
	s.logger.Debug("measure added", "index", len(s.measures)-1)
	return m, nil
}

// Measure returns the measure at index.
func (s *Score) Measure(index int) (*notation.Measure, error) {
	if index < 0 || index >= len(s.measures) {
		return nil, notation.IndexOutOfRange("measure", index, len(s.measures))
	}
	return s.measures[index], nil
}

// Measures returns the measures in order.
func (s *Score) Measures() []*notation.Measure {
	out := make([]*notation.Measure, len(s.measures))
	copy(out, s.measures)
	return out
}

// Len returns the number of measures.
func (s *Score) Len() int {
	return len(s.measures)
}

// TimeSignature returns the time signature shared by every measure.
func (s *Score) TimeSignature() notation.TimeSignature {
	return s.timeSig
}

// Redraw redraws every measure.
func (s *Score) Redraw() error {
	for _, m := range s.measures {
		if err := m.Redraw(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Score) newMeasure(index int, x float64, opts ...notation.MeasureOption) (*notation.Measure, error) {
	opts = append(opts,
		notation.WithPosition(x, s.y),
		notation.WithIDGenerator(s.ids),
		notation.WithPadding(s.notePad, s.measurePad),
	)
	if s.renderers != nil {
		if r := s.renderers(index); r != nil {
			opts = append(opts, notation.WithRenderer(r))
		}
	}
	return notation.NewMeasure(s.timeSig, s.measureWidth, opts...)
}
