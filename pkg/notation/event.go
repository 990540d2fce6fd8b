package notation

import (
	"slices"
	"strconv"

	"github.com/google/uuid"
)

// Event is one note or rest slot of a measure. A rest's pitches only mark
// where it is drawn.
type Event struct {
	ID       string   `json:"id"`
	Pitches  []string `json:"pitches"`
	Duration string   `json:"duration"`
}

// IsRest reports whether the event is a rest.
func (e Event) IsRest() bool {
	return IsRestCode(e.Duration)
}

// Ticks returns the event length, 0 for a malformed code.
func (e Event) Ticks() int {
	t, err := Ticks(e.Duration)
	if err != nil {
		return 0
	}
	return t
}

// HasPitch reports exact membership.
func (e Event) HasPitch(p string) bool {
	return slices.Contains(e.Pitches, p)
}

func (e Event) clone() Event {
	e.Pitches = slices.Clone(e.Pitches)
	return e
}

func cloneEvents(events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.clone()
	}
	return out
}

// IDGenerator issues event ids.
type IDGenerator func() string

// UUIDs issues random uuids. It is the default generator.
func UUIDs() IDGenerator {
	return uuid.NewString
}

// Sequential issues prefix+start, prefix+start+1, ... Share one generator
// between measures to keep ids unique across a score.
func Sequential(prefix string, start int) IDGenerator {
	n := start
	return func() string {
		id := prefix + strconv.Itoa(n)
		n++
		return id
	}
}
