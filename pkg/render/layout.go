// Package render provides the drawing surfaces a measure redraws itself
// through: a terminal text canvas and a PDF page.
package render

import (
	"github.com/james-see/measureedit/pkg/notation"
)

// Glyph widths in points by duration denominator.
var glyphWidth = map[int]float64{
	1:  40,
	2:  30,
	4:  25,
	8:  20,
	16: 15,
	32: 15,
	64: 15,
}

const (
	dotWidth        = 5
	accidentalWidth = 10
	clefWidth       = 30
	timeSigWidth    = 20
	headerLead      = 5
)

// GlyphWidth is the narrowest slot an event can be drawn in.
func GlyphWidth(e notation.Event) float64 {
	d, err := notation.ParseDuration(e.Duration)
	if err != nil {
		return glyphWidth[4]
	}
	w := glyphWidth[d.Denominator]
	if d.Dotted {
		w += dotWidth
	}
	if !d.Rest {
		for _, raw := range e.Pitches {
			p, err := notation.ParsePitch(raw)
			if err == nil && p.Accidental != "" {
				w += accidentalWidth
				break
			}
		}
	}
	return w
}

// MinWidth sums the glyph widths of the voice.
func MinWidth(v notation.Voice) float64 {
	var w float64
	for _, e := range v.Events {
		w += GlyphWidth(e)
	}
	return w
}

// Justify lays the voice out within width. Every event gets its glyph width
// and the spare width is handed out in proportion to event ticks. A width
// below MinWidth yields the minimal layout.
func Justify(v notation.Voice, width float64) notation.Layout {
	minWidth := MinWidth(v)
	total := notation.SumTicks(v.Events)
	spare := width - minWidth
	if spare < 0 || total == 0 {
		spare = 0
	}

	offsets := make([]float64, len(v.Events))
	var x float64
	for i, e := range v.Events {
		offsets[i] = x
		x += GlyphWidth(e) + spare*float64(e.Ticks())/float64(total)
	}
	return notation.Layout{Voice: v, Width: max(width, minWidth), Offsets: offsets}
}

// HeaderWidth is the room the clef and time signature labels take at the
// start of the staff.
func HeaderWidth(s notation.Staff) float64 {
	w := float64(headerLead)
	if s.Clef != notation.ClefNone {
		w += clefWidth
	}
	if s.TimeSignature != "" {
		w += timeSigWidth
	}
	return w
}

// noteArea returns where the note area starts within the staff and the scale
// that fits the layout into it.
func noteArea(s notation.Staff, l notation.Layout) (start, scale float64) {
	start = HeaderWidth(s)
	scale = 1
	if avail := s.Width - start; l.Width > avail && l.Width > 0 && avail > 0 {
		scale = avail / l.Width
	}
	return start, scale
}

// clefSymbol is the letter the clef is drawn with.
func clefSymbol(c notation.Clef) string {
	switch c {
	case notation.ClefTreble:
		return "G"
	case notation.ClefBass:
		return "F"
	case notation.ClefAlto, notation.ClefTenor:
		return "C"
	}
	return ""
}

// splitTimeSignature returns the upper and lower label rows.
func splitTimeSignature(label string) (upper, lower string) {
	for i := 0; i < len(label); i++ {
		if label[i] == '/' {
			return label[:i], label[i+1:]
		}
	}
	return label, ""
}
