package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/james-see/measureedit/pkg/notation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voice(codes ...string) notation.Voice {
	v := notation.Voice{Beats: 4, BeatUnit: 4, Clef: notation.ClefTreble}
	for i, code := range codes {
		pitches := []string{"C/4"}
		if notation.IsRestCode(code) {
			pitches = []string{"B/4"}
		}
		v.Events = append(v.Events, notation.Event{ID: string(rune('a' + i)), Pitches: pitches, Duration: code})
	}
	return v
}

func TestGlyphWidth(t *testing.T) {
	tests := []struct {
		event notation.Event
		want  float64
	}{
		{notation.Event{Pitches: []string{"C/4"}, Duration: "w"}, 40},
		{notation.Event{Pitches: []string{"C/4"}, Duration: "q"}, 25},
		{notation.Event{Pitches: []string{"C/4"}, Duration: "qd"}, 30},
		{notation.Event{Pitches: []string{"C#/4"}, Duration: "q"}, 35},
		{notation.Event{Pitches: []string{"C/4", "Eb/4", "G#/4"}, Duration: "8"}, 30},
		{notation.Event{Pitches: []string{"B/4"}, Duration: "16r"}, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GlyphWidth(tt.event), tt.event.Duration)
	}
}

func TestJustify(t *testing.T) {
	v := voice("h", "qr", "qr")
	assert.Equal(t, 80.0, MinWidth(v))

	l := Justify(v, 160)
	require.Len(t, l.Offsets, 3)
	assert.Equal(t, 160.0, l.Width)
	// 80 spare points, the half note gets half of them
	assert.InDelta(t, 0, l.Offsets[0], 1e-9)
	assert.InDelta(t, 70, l.Offsets[1], 1e-9)
	assert.InDelta(t, 115, l.Offsets[2], 1e-9)

	tight := Justify(v, 10)
	assert.Equal(t, 80.0, tight.Width)
	assert.InDelta(t, 30, tight.Offsets[1], 1e-9)
}

func TestHeaderWidth(t *testing.T) {
	assert.Equal(t, 5.0, HeaderWidth(notation.Staff{}))
	assert.Equal(t, 55.0, HeaderWidth(notation.Staff{Clef: notation.ClefTreble, TimeSignature: "4/4"}))
}

func drawText(t *testing.T, c *TextCanvas, staff notation.Staff, v notation.Voice) {
	t.Helper()
	require.NoError(t, c.Clear())
	w, err := c.MinWidth(v)
	require.NoError(t, err)
	staff.Width = w + 45
	require.NoError(t, c.DrawStaff(staff))
	l, err := c.Format(v, w+20)
	require.NoError(t, err)
	require.NoError(t, c.DrawVoice(staff, l))
}

func TestTextCanvasDrawsMeasure(t *testing.T) {
	c := NewTextCanvas(false)
	staff := notation.Staff{Clef: notation.ClefTreble, TimeSignature: "3/4"}
	v := voice("q", "qr", "qr")
	v.Events[0].Pitches = []string{"G#/4"}
	drawText(t, c, staff, v)

	out := c.String()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, staffRows)
	assert.Equal(t, c.Columns(), len([]rune(lines[0])))

	assert.Contains(t, out, "G")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, "#*")
	assert.Equal(t, 2, strings.Count(out, "z"))

	labels := lines[staffRows-1]
	assert.Contains(t, labels, "qr")
	assert.True(t, strings.Index(labels, "q ") < strings.Index(labels, "qr"))

	// each staff line ends in a barline
	for step := 0; step <= staffSteps; step += 2 {
		row := []rune(lines[c.row(c.bottom+step)])
		assert.Equal(t, '|', row[len(row)-1])
	}
}

func TestTextCanvasLedgerLines(t *testing.T) {
	c := NewTextCanvas(false)
	v := voice("w")
	drawText(t, c, notation.Staff{Clef: notation.ClefTreble}, v)

	// C/4 sits one ledger line below the treble staff
	row := []rune(strings.Split(c.String(), "\n")[c.row(28)])
	head := strings.IndexRune(string(row), 'O')
	require.GreaterOrEqual(t, head, 1)
	assert.Equal(t, "-O-", string(row[head-1:head+2]))
}

func TestTextCanvasClear(t *testing.T) {
	c := NewTextCanvas(false)
	drawText(t, c, notation.Staff{}, voice("w"))
	require.NotEmpty(t, c.String())
	require.NoError(t, c.Clear())
	assert.Empty(t, c.String())
	assert.Zero(t, c.Columns())
}

func TestTextCanvasStyledHighlight(t *testing.T) {
	plain := NewTextCanvas(false)
	styled := NewTextCanvas(true)
	styled.Highlight = "a"
	v := voice("h", "hr")
	drawText(t, plain, notation.Staff{}, v)
	drawText(t, styled, notation.Staff{}, v)
	assert.Equal(t, plain.Columns(), styled.Columns())
}

func TestJoinMeasures(t *testing.T) {
	a, b := NewTextCanvas(false), NewTextCanvas(false)
	drawText(t, a, notation.Staff{Clef: notation.ClefTreble, TimeSignature: "4/4"}, voice("w"))
	drawText(t, b, notation.Staff{}, voice("h", "hr"))

	joined := strings.Split(JoinMeasures(a, b, NewTextCanvas(false)), "\n")
	require.Len(t, joined, staffRows)
	assert.Equal(t, a.Columns()+b.Columns(), len([]rune(joined[0])))
}

func TestPDFCanvas(t *testing.T) {
	canvas := NewPDFCanvas()
	first, second := canvas.Surface(), canvas.Surface()

	v := voice("8", "8d", "16", "h", "qr")
	v.Events[0].Pitches = []string{"A/5", "Bb/3"}
	staff := notation.Staff{X: 20, Y: 20, Clef: notation.ClefTreble, TimeSignature: "C"}
	for _, s := range []*PDFSurface{first, second} {
		require.NoError(t, s.Clear())
		w, err := s.MinWidth(v)
		require.NoError(t, err)
		staff.Width = w + 45
		require.NoError(t, s.DrawStaff(staff))
		l, err := s.Format(v, w+20)
		require.NoError(t, err)
		require.NoError(t, s.DrawVoice(staff, l))
		staff.X += staff.Width
	}
	require.NoError(t, first.Clear())

	var buf bytes.Buffer
	n, err := canvas.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, canvas.PageWidth(), 700.0)
}
