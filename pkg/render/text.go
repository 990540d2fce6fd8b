package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/measureedit/pkg/notation"
)

// CellWidth is how many points one text column stands for.
const CellWidth = 5.0

// Staff rows: two ledger positions above and below the five lines, plus the
// duration label row.
const (
	stepsAbove = 4
	stepsBelow = 4
	staffSteps = 8
	staffRows  = staffSteps + stepsAbove + stepsBelow + 1
)

type cellKind uint8

const (
	cellBlank cellKind = iota
	cellLine
	cellHeader
	cellNote
	cellRest
	cellLabel
	cellHighlight
)

type cell struct {
	r    rune
	kind cellKind
}

// Staff colors
var (
	lineColor  = lipgloss.Color("#666666")
	noteColor  = lipgloss.Color("#39FF14")
	restColor  = lipgloss.Color("#C0C0C0")
	labelColor = lipgloss.Color("#FFFF00")

	cellStyles = map[cellKind]lipgloss.Style{
		cellLine:      lipgloss.NewStyle().Foreground(lineColor),
		cellHeader:    lipgloss.NewStyle().Bold(true),
		cellNote:      lipgloss.NewStyle().Foreground(noteColor).Bold(true),
		cellRest:      lipgloss.NewStyle().Foreground(restColor),
		cellLabel:     lipgloss.NewStyle().Foreground(labelColor),
		cellHighlight: lipgloss.NewStyle().Reverse(true).Bold(true),
	}
)

// TextCanvas draws a measure as a character grid, one column per CellWidth
// points. Notes are drawn on their staff position, rests on the middle line,
// and the duration codes run along the bottom row.
type TextCanvas struct {
	// Styled colors the output with lipgloss.
	Styled bool
	// Highlight marks the event with this id.
	Highlight string

	rows   [][]cell
	bottom int // staff step of the lowest line
}

// NewTextCanvas returns an empty canvas.
func NewTextCanvas(styled bool) *TextCanvas {
	return &TextCanvas{Styled: styled}
}

func (c *TextCanvas) Clear() error {
	c.rows = nil
	return nil
}

func (c *TextCanvas) MinWidth(v notation.Voice) (float64, error) {
	return MinWidth(v), nil
}

func (c *TextCanvas) Format(v notation.Voice, width float64) (notation.Layout, error) {
	return Justify(v, width), nil
}

func (c *TextCanvas) DrawStaff(s notation.Staff) error {
	cols := max(1, int(math.Ceil(s.Width/CellWidth)))
	c.rows = make([][]cell, staffRows)
	for i := range c.rows {
		c.rows[i] = make([]cell, cols)
		for j := range c.rows[i] {
			c.rows[i][j] = cell{r: ' '}
		}
	}
	c.bottom = s.Clef.BottomLine().StaffStep()

	for step := c.bottom; step <= c.bottom+staffSteps; step += 2 {
		row := c.row(step)
		for j := range c.rows[row] {
			c.rows[row][j] = cell{r: '-', kind: cellLine}
		}
		c.rows[row][cols-1] = cell{r: '|', kind: cellLine}
	}
	for step := c.bottom + 1; step < c.bottom+staffSteps; step += 2 {
		c.rows[c.row(step)][cols-1] = cell{r: '|', kind: cellLine}
	}

	col := headerLead / CellWidth
	if sym := clefSymbol(s.Clef); sym != "" {
		c.text(c.row(c.bottom+4), int(col), sym, cellHeader, cols)
		col += clefWidth / CellWidth
	}
	if s.TimeSignature != "" {
		upper, lower := splitTimeSignature(s.TimeSignature)
		if lower == "" {
			c.text(c.row(c.bottom+4), int(col), upper, cellHeader, cols)
		} else {
			c.text(c.row(c.bottom+6), int(col), upper, cellHeader, cols)
			c.text(c.row(c.bottom+2), int(col), lower, cellHeader, cols)
		}
	}
	return nil
}

func (c *TextCanvas) DrawVoice(s notation.Staff, l notation.Layout) error {
	if c.rows == nil {
		if err := c.DrawStaff(s); err != nil {
			return err
		}
	}
	c.bottom = l.Voice.Clef.BottomLine().StaffStep()
	cols := c.Columns()
	start, scale := noteArea(s, l)

	positions := make([]int, len(l.Voice.Events))
	prev := -1
	for i := range l.Voice.Events {
		col := int((start + l.Offsets[i]*scale) / CellWidth)
		col = min(max(col, prev+1), cols-2)
		positions[i] = max(col, 0)
		prev = col
	}

	labelRow := staffRows - 1
	for i, e := range l.Voice.Events {
		col := positions[i]
		d, err := notation.ParseDuration(e.Duration)
		if err != nil {
			continue
		}
		kind := cellNote
		if d.Rest {
			kind = cellRest
		}
		if e.ID != "" && e.ID == c.Highlight {
			kind = cellHighlight
		}

		for _, raw := range e.Pitches {
			p, err := notation.ParsePitch(raw)
			if err != nil {
				continue
			}
			step := p.StaffStep()
			if d.Rest {
				c.set(c.row(step), col, restGlyph(d), kind)
				continue
			}
			c.ledgers(step, col, cols)
			row := c.row(step)
			c.set(row, col, noteHead(d), kind)
			if acc := accidentalGlyph(p.Accidental); acc != 0 && col > 0 {
				c.set(row, col-1, acc, kind)
			}
			if d.Dotted && col+1 < cols-1 {
				c.set(row, col+1, '.', kind)
			}
		}

		limit := cols - 1
		if i+1 < len(positions) {
			limit = positions[i+1]
		}
		labelKind := cellLabel
		if kind == cellHighlight {
			labelKind = cellHighlight
		}
		c.text(labelRow, col, e.Duration, labelKind, limit)
	}
	return nil
}

// Columns is the width of the last drawn staff in characters.
func (c *TextCanvas) Columns() int {
	if len(c.rows) == 0 {
		return 0
	}
	return len(c.rows[0])
}

// String renders the grid, styled if Styled is set.
func (c *TextCanvas) String() string {
	if c.rows == nil {
		return ""
	}
	lines := make([]string, len(c.rows))
	for i, row := range c.rows {
		var b strings.Builder
		for j := 0; j < len(row); {
			k := j
			for k < len(row) && row[k].kind == row[j].kind {
				k++
			}
			run := make([]rune, 0, k-j)
			for _, cl := range row[j:k] {
				run = append(run, cl.r)
			}
			style, ok := cellStyles[row[j].kind]
			if c.Styled && ok {
				b.WriteString(style.Render(string(run)))
			} else {
				b.WriteString(string(run))
			}
			j = k
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// JoinMeasures lays canvases side by side into one system.
func JoinMeasures(canvases ...*TextCanvas) string {
	parts := make([]string, 0, len(canvases))
	for _, c := range canvases {
		if c != nil && c.rows != nil {
			parts = append(parts, c.String())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (c *TextCanvas) row(step int) int {
	top := c.bottom + staffSteps + stepsAbove
	return min(max(top-step, 0), staffRows-2)
}

func (c *TextCanvas) set(row, col int, r rune, kind cellKind) {
	if row < 0 || row >= len(c.rows) || col < 0 || col >= len(c.rows[row]) {
		return
	}
	c.rows[row][col] = cell{r: r, kind: kind}
}

func (c *TextCanvas) text(row, col int, s string, kind cellKind, limit int) {
	for _, r := range s {
		if col >= limit {
			return
		}
		c.set(row, col, r, kind)
		col++
	}
}

// ledgers draws the short lines a note outside the staff sits on or past.
func (c *TextCanvas) ledgers(step, col, cols int) {
	draw := func(s int) {
		row := c.row(s)
		for _, j := range []int{col - 1, col + 1} {
			if j >= 0 && j < cols-1 && c.rows[row][j].kind == cellBlank {
				c.set(row, j, '-', cellLine)
			}
		}
	}
	for s := c.bottom - 2; s >= step; s -= 2 {
		draw(s)
	}
	for s := c.bottom + staffSteps + 2; s <= step; s += 2 {
		draw(s)
	}
}

func noteHead(d notation.Duration) rune {
	switch d.Denominator {
	case 1:
		return 'O'
	case 2:
		return 'o'
	}
	return '*'
}

func restGlyph(d notation.Duration) rune {
	switch d.Denominator {
	case 1, 2:
		return '='
	case 4:
		return 'z'
	}
	return 'y'
}

func accidentalGlyph(acc string) rune {
	switch acc {
	case "#":
		return '#'
	case "##":
		return 'x'
	case "b", "bb":
		return 'b'
	case "n":
		return 'n'
	}
	return 0
}
