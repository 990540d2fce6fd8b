package notation

import (
	"fmt"
	"slices"

	"github.com/Southclaws/fault/ftag"
)

// Default paddings added around the minimal voice width on redraw.
const (
	DefaultNotePadding    = 25
	DefaultMeasurePadding = 20
)

// Measure owns a fixed tick budget and the ordered events filling it. After
// every successful mutation the event ticks sum to TotalTicks.
//
// Lookups by id are linear scans; measures hold tens of events at most.
// A Measure is not safe for concurrent use.
type Measure struct {
	timeSig    TimeSignature
	clef       Clef
	showTime   bool
	hideClef   bool
	total      int
	events     []Event
	staff      Staff
	renderer   Renderer
	nextID     IDGenerator
	notePad    float64
	measurePad float64
}

// MeasureOption configures a Measure.
type MeasureOption func(*Measure)

// WithClef labels the staff with a clef and parks rests on its middle line.
func WithClef(c Clef) MeasureOption {
	return func(m *Measure) { m.clef = c }
}

// WithoutClefLabel keeps the clef for placement but leaves it off the staff.
func WithoutClefLabel() MeasureOption {
	return func(m *Measure) { m.hideClef = true }
}

// WithTimeSignatureLabel draws the time signature on the staff.
func WithTimeSignatureLabel() MeasureOption {
	return func(m *Measure) { m.showTime = true }
}

// WithPosition places the staff on the surface.
func WithPosition(x, y float64) MeasureOption {
	return func(m *Measure) {
		m.staff.X = x
		m.staff.Y = y
	}
}

// WithRenderer attaches a drawing surface. Without one Redraw does nothing.
func WithRenderer(r Renderer) MeasureOption {
	return func(m *Measure) { m.renderer = r }
}

// WithIDGenerator overrides the uuid event ids.
func WithIDGenerator(g IDGenerator) MeasureOption {
	return func(m *Measure) { m.nextID = g }
}

// WithPadding sets the note and measure paddings used by Redraw.
func WithPadding(note, measure float64) MeasureOption {
	return func(m *Measure) {
		m.notePad = note
		m.measurePad = measure
	}
}

// NewMeasure builds a measure seeded with one rest per beat and draws it
// once if a renderer is attached.
func NewMeasure(ts TimeSignature, width float64, opts ...MeasureOption) (*Measure, error) {
	if _, err := NewTimeSignature(ts.Beats, ts.BeatUnit); err != nil {
		return nil, err
	}

	m := &Measure{
		timeSig:    ts,
		total:      ts.TotalTicks(),
		staff:      Staff{Width: width},
		nextID:     UUIDs(),
		notePad:    DefaultNotePadding,
		measurePad: DefaultMeasurePadding,
	}
	for _, opt := range opts {
		opt(m)
	}
	if _, ok := clefs[m.clef]; !ok {
		return nil, invalidArgument(ErrInvalidClef,
			fmt.Sprintf("unknown clef %q", m.clef),
			fmt.Sprintf("%q is not a clef", m.clef),
		)
	}
	if !m.hideClef {
		m.staff.Clef = m.clef
	}
	if m.showTime {
		m.staff.TimeSignature = ts.String()
	}

	beat := Duration{Denominator: ts.BeatUnit, Rest: true}
	if ts.Beats*beat.Ticks() != m.total {
		return nil, m.invariantError(ts.Beats * beat.Ticks())
	}
	m.events = make([]Event, 0, ts.Beats)
	for i := 0; i < ts.Beats; i++ {
		e, err := m.filler(beat.Code(), nil)
		if err != nil {
			return nil, err
		}
		m.events = append(m.events, e)
	}

	if err := m.Redraw(); err != nil {
		return nil, err
	}
	return m, nil
}

// TimeSignature returns the fixed time signature.
func (m *Measure) TimeSignature() TimeSignature {
	return m.timeSig
}

// Clef returns the staff clef.
func (m *Measure) Clef() Clef {
	return m.clef
}

// TotalTicks is the measure's tick budget.
func (m *Measure) TotalTicks() int {
	return m.total
}

// Len returns the number of events.
func (m *Measure) Len() int {
	return len(m.events)
}

// Events returns a copy of the event sequence in temporal order.
func (m *Measure) Events() []Event {
	return cloneEvents(m.events)
}

// Event looks an event up by id.
func (m *Measure) Event(id string) (Event, int, bool) {
	for i, e := range m.events {
		if e.ID == id {
			return e.clone(), i, true
		}
	}
	return Event{}, -1, false
}

// EventAt returns the event at index i.
func (m *Measure) EventAt(i int) (Event, error) {
	if i < 0 || i >= len(m.events) {
		return Event{}, IndexOutOfRange("event", i, len(m.events))
	}
	return m.events[i].clone(), nil
}

// Staff returns the current staff frame, including the width of the last
// redraw.
func (m *Measure) Staff() Staff {
	return m.staff
}

// Padding returns the note and measure paddings Redraw adds.
func (m *Measure) Padding() (note, measure float64) {
	return m.notePad, m.measurePad
}

// Voice returns the events with their beat metadata.
func (m *Measure) Voice() Voice {
	return Voice{
		Beats:    m.timeSig.Beats,
		BeatUnit: m.timeSig.BeatUnit,
		Clef:     m.clef,
		Events:   m.Events(),
	}
}

// Validate checks the tick invariant and id uniqueness.
func (m *Measure) Validate() error {
	return m.check(m.events)
}

// check verifies a sequence fills the measure and repeats no id.
func (m *Measure) check(events []Event) error {
	if sum := SumTicks(events); sum != m.total {
		return m.invariantError(sum)
	}
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		if seen[e.ID] {
			return fail(ErrInvariantViolation, ftag.Internal,
				fmt.Sprintf("duplicate event id %q", e.ID),
				"The measure is corrupted",
			)
		}
		seen[e.ID] = true
	}
	return nil
}

// AddPitches puts pitches on the event matching both eventID and the length
// of durationCode. A rest becomes a note carrying exactly pitches; a note
// gets the union of its pitches and pitches. Nothing changes if no event
// matches.
func (m *Measure) AddPitches(eventID string, pitches []string, durationCode string) error {
	want, err := ParseDuration(durationCode)
	if err != nil {
		return err
	}
	if want.Rest {
		return invalidArgument(ErrRestDuration,
			fmt.Sprintf("cannot add pitches with rest code %q", durationCode),
			fmt.Sprintf("Pitches are added with a note duration such as %q, not a rest", BaseCode(durationCode)),
		)
	}
	if err := ValidatePitches(pitches); err != nil {
		return err
	}

	next := make([]Event, 0, len(m.events))
	matched := false
	mismatch := ""
	for _, e := range m.events {
		if matched || e.ID != eventID {
			next = append(next, e.clone())
			continue
		}
		cur, err := ParseDuration(e.Duration)
		if err != nil || !cur.SameLength(want) {
			mismatch = e.Duration
			next = append(next, e.clone())
			continue
		}
		matched = true
		if e.IsRest() {
			next = append(next, Event{ID: e.ID, Pitches: MergePitches(nil, pitches), Duration: want.Code()})
		} else {
			next = append(next, Event{ID: e.ID, Pitches: MergePitches(e.Pitches, pitches), Duration: e.Duration})
		}
	}

	if !matched {
		detail := fmt.Sprintf("no event %q with duration %q", eventID, durationCode)
		if mismatch != "" {
			detail = fmt.Sprintf("event %q has duration %q, not %q", eventID, mismatch, durationCode)
		}
		return notFound(ErrNoMatchingEvent, detail, "No slot of that length at that position")
	}
	return m.commit(next)
}

// ChangeEventDuration changes the length of the event with eventID.
//
// Shortening splits the slot: the event keeps its content at the new length
// and filler rests pad the vacated time. The old length must be an exact
// multiple of the new one. Lengthening absorbs the rests that immediately
// follow until the extra time is covered exactly. The event stays a note or
// a rest whatever the suffix of newDurationCode.
func (m *Measure) ChangeEventDuration(eventID, newDurationCode string) error {
	requested, err := ParseDuration(newDurationCode)
	if err != nil {
		return err
	}

	idx := -1
	ticksSeen := 0
	for i, e := range m.events {
		if idx < 0 && e.ID == eventID {
			idx = i
			continue
		}
		ticksSeen += e.Ticks()
	}
	if idx < 0 {
		return notFound(ErrNoMatchingEvent,
			fmt.Sprintf("no event %q", eventID),
			"There is no note or rest with that id",
		)
	}

	target := m.events[idx]
	current, err := ParseDuration(target.Duration)
	if err != nil {
		return err
	}
	want := requested.AsNote()
	if target.IsRest() {
		want = requested.AsRest()
	}
	curTicks, newTicks := current.Ticks(), want.Ticks()

	var run []Event
	consumed := 1
	switch {
	case newTicks == curTicks:
		if requested == current {
			return nil
		}
		return splitError(
			fmt.Sprintf("%q and %q have the same length", target.Duration, newDurationCode),
			"The new duration is as long as the old one",
		)

	case newTicks < curTicks:
		ratio, err := SplitRatio(target.Duration, want.Code())
		if err != nil {
			return err
		}
		if !ratio.IsInt() {
			return splitError(
				fmt.Sprintf("%q does not divide %q evenly", newDurationCode, target.Duration),
				"The old duration cannot be split into whole slots of the new one",
			)
		}
		n := int(ratio.Num().Int64())
		run = make([]Event, 0, n)
		run = append(run, Event{ID: target.ID, Pitches: slices.Clone(target.Pitches), Duration: want.Code()})
		for i := 1; i < n; i++ {
			e, err := m.filler(want.Code(), run)
			if err != nil {
				return err
			}
			run = append(run, e)
		}

	default:
		need := newTicks - curTicks
		j := idx + 1
		for need > 0 {
			if j >= len(m.events) {
				return splitError(
					fmt.Sprintf("%q on event %q runs past the end of the measure", newDurationCode, eventID),
					"The new duration does not fit in the measure",
				)
			}
			next := m.events[j]
			if !next.IsRest() {
				return splitError(
					fmt.Sprintf("growing event %q would overwrite note %q", eventID, next.ID),
					"The new duration would overwrite the next note",
				)
			}
			if next.Ticks() > need {
				return splitError(
					fmt.Sprintf("rest %q is longer than the %d ticks left to absorb", next.ID, need),
					"The following rests cannot be absorbed evenly",
				)
			}
			need -= next.Ticks()
			ticksSeen -= next.Ticks()
			j++
		}
		consumed = j - idx
		run = []Event{{ID: target.ID, Pitches: slices.Clone(target.Pitches), Duration: want.Code()}}
	}

	if sum := ticksSeen + SumTicks(run); sum != m.total {
		return m.invariantError(sum)
	}

	next := make([]Event, 0, len(m.events)-consumed+len(run))
	next = append(next, cloneEvents(m.events[:idx])...)
	next = append(next, run...)
	next = append(next, cloneEvents(m.events[idx+consumed:])...)
	return m.commit(next)
}

// Redraw clears the surface, sizes the staff to the voice and draws both.
// Renderer errors are returned unchanged.
func (m *Measure) Redraw() error {
	if m.renderer == nil {
		return nil
	}
	staff, err := m.draw(m.renderer, m.staff)
	if err != nil {
		return err
	}
	m.staff = staff
	return nil
}

// DrawOn draws the current state onto another surface at x, y without
// touching the measure's own staff. It returns the staff as drawn.
func (m *Measure) DrawOn(r Renderer, x, y float64) (Staff, error) {
	staff := m.staff
	staff.X, staff.Y = x, y
	return m.draw(r, staff)
}

func (m *Measure) draw(r Renderer, staff Staff) (Staff, error) {
	if err := r.Clear(); err != nil {
		return staff, err
	}

	voice := m.Voice()
	minWidth, err := r.MinWidth(voice)
	if err != nil {
		return staff, err
	}
	width := minWidth + m.notePad + m.measurePad
	staff.Width = width
	if err := r.DrawStaff(staff); err != nil {
		return staff, err
	}

	layout, err := r.Format(voice, width-m.notePad)
	if err != nil {
		return staff, err
	}
	return staff, r.DrawVoice(staff, layout)
}

// commit swaps in a rebuilt sequence if it keeps the invariants, then
// redraws. The old sequence is restored when the redraw fails.
func (m *Measure) commit(next []Event) error {
	if err := m.check(next); err != nil {
		return err
	}
	prev := m.events
	m.events = next
	if err := m.Redraw(); err != nil {
		m.events = prev
		return err
	}
	return nil
}

// maxIDAttempts bounds how often a generator may repeat a taken id.
const maxIDAttempts = 64

// filler returns a placeholder rest of the given length.
func (m *Measure) filler(code string, pending []Event) (Event, error) {
	id, err := m.uniqueID(pending)
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Pitches: []string{m.clef.RestPosition()}, Duration: RestCode(code)}, nil
}

// uniqueID draws ids until one is used neither by the measure nor by pending.
func (m *Measure) uniqueID(pending []Event) (string, error) {
	for range maxIDAttempts {
		id := m.nextID()
		_, _, taken := m.Event(id)
		if !taken && !slices.ContainsFunc(pending, func(e Event) bool { return e.ID == id }) {
			return id, nil
		}
	}
	return "", fail(ErrInvariantViolation, ftag.Internal,
		fmt.Sprintf("id generator repeated taken ids %d times", maxIDAttempts),
		"No fresh event id could be issued",
	)
}

func (m *Measure) invariantError(sum int) error {
	return fail(ErrInvariantViolation, ftag.Internal,
		fmt.Sprintf("events sum to %d ticks, measure holds %d", sum, m.total),
		"The durations no longer fill the measure",
	)
}

func splitError(detail, issue string) error {
	return invalidArgument(ErrInvalidDurationSplit, detail, issue)
}
