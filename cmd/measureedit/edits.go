package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/james-see/measureedit/pkg/score"
)

// edit is one --add or --dur flag, addressed by measure index and event
// position so no event ids are needed on the command line
type edit struct {
	kind    string // "add" or "dur"
	measure int
	event   int
	pitches []string
	code    string
}

// editFlag collects --add and --dur into one list in command line order
type editFlag struct {
	kind  string
	edits *[]edit
}

func (f *editFlag) String() string {
	if f.edits == nil {
		return ""
	}
	var parts []string
	for _, e := range *f.edits {
		if e.kind == f.kind {
			parts = append(parts, e.String())
		}
	}
	return strings.Join(parts, " ")
}

func (f *editFlag) Set(v string) error {
	e, err := parseEdit(f.kind, v)
	if err != nil {
		return err
	}
	*f.edits = append(*f.edits, e)
	return nil
}

func (f *editFlag) Type() string {
	if f.kind == "add" {
		return "m:e:pitches:code"
	}
	return "m:e:code"
}

// parseEdit reads "m:e:C/4,E/4:q" for add and "m:e:8" for dur
func parseEdit(kind, v string) (edit, error) {
	parts := strings.Split(v, ":")
	want := 3
	if kind == "add" {
		want = 4
	}
	if len(parts) != want {
		return edit{}, fmt.Errorf("malformed --%s %q", kind, v)
	}

	measure, err := strconv.Atoi(parts[0])
	if err != nil {
		return edit{}, fmt.Errorf("bad measure index in %q: %w", v, err)
	}
	event, err := strconv.Atoi(parts[1])
	if err != nil {
		return edit{}, fmt.Errorf("bad event position in %q: %w", v, err)
	}

	e := edit{kind: kind, measure: measure, event: event, code: parts[want-1]}
	if kind == "add" {
		e.pitches = strings.Split(parts[2], ",")
	}
	return e, nil
}

func (e edit) String() string {
	if e.kind == "add" {
		return fmt.Sprintf("%d:%d:%s:%s", e.measure, e.event, strings.Join(e.pitches, ","), e.code)
	}
	return fmt.Sprintf("%d:%d:%s", e.measure, e.event, e.code)
}

// apply resolves the event position to an id at the time the edit runs
func (e edit) apply(s *score.Score) error {
	m, err := s.Measure(e.measure)
	if err != nil {
		return err
	}
	ev, err := m.EventAt(e.event)
	if err != nil {
		return err
	}
	if e.kind == "add" {
		return s.AddNoteInMeasure(e.measure, e.pitches, e.code, ev.ID)
	}
	return s.ModifyDurationInMeasure(e.measure, e.code, ev.ID)
}
