package converter

import (
	"bytes"
	"fmt"

	"github.com/james-see/measureedit/pkg/render"
	"github.com/james-see/measureedit/pkg/score"
)

// PDFEncoder draws every measure onto PDF pages, wrapping systems at the
// page edge
type PDFEncoder struct{}

func (e *PDFEncoder) Format() Format { return FormatPDF }

func (e *PDFEncoder) Encode(s *score.Score) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil score")
	}

	canvas := render.NewPDFCanvas()
	left, top := canvas.Margins()
	right := left + canvas.PageWidth()
	bottom := top + canvas.PageHeight()

	x, y := left, top
	for i, m := range s.Measures() {
		note, measure := m.Padding()
		width := render.MinWidth(m.Voice()) + note + measure
		if x > left && x+width > right {
			x = left
			y += canvas.SystemHeight()
		}
		if y+canvas.SystemHeight() > bottom {
			canvas.AddPage()
			y = top
		}

		staff, err := m.DrawOn(canvas.Surface(), x, y)
		if err != nil {
			return nil, fmt.Errorf("measure %d: %w", i, err)
		}
		x += staff.Width
	}

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
