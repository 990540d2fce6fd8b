package render

import (
	"io"
	"math"

	"github.com/james-see/measureedit/pkg/notation"
	"github.com/jung-kurt/gofpdf"
)

// Staff geometry in points.
const (
	lineSpacing = 10.0
	staffTop    = 40.0 // headroom above the top line
	systemSpace = 120.0
	headRadius  = 4.0
	stemLength  = 30.0
)

// PDFCanvas is a landscape A4 page that measures draw onto through
// surfaces.
type PDFCanvas struct {
	pdf *gofpdf.Fpdf
}

// NewPDFCanvas returns a canvas with one blank page.
func NewPDFCanvas() *PDFCanvas {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 20)
	pdf.AddPage()
	return &PDFCanvas{pdf: pdf}
}

// Surface returns a renderer bound to this page. Each measure should get
// its own surface so Clear only wipes its own region.
func (c *PDFCanvas) Surface() *PDFSurface {
	return &PDFSurface{canvas: c}
}

// PageWidth is the usable page width in points.
func (c *PDFCanvas) PageWidth() float64 {
	w, _ := c.pdf.GetPageSize()
	left, _, right, _ := c.pdf.GetMargins()
	return w - left - right
}

// PageHeight is the usable page height in points.
func (c *PDFCanvas) PageHeight() float64 {
	_, h := c.pdf.GetPageSize()
	_, top, _, bottom := c.pdf.GetMargins()
	return h - top - bottom
}

// Margins returns the left and top page margins.
func (c *PDFCanvas) Margins() (left, top float64) {
	left, top, _, _ = c.pdf.GetMargins()
	return left, top
}

// AddPage starts a new page. Surfaces draw on the current page.
func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

// SystemHeight is the vertical room one staff takes.
func (c *PDFCanvas) SystemHeight() float64 {
	return systemSpace
}

// WriteTo writes the document.
func (c *PDFCanvas) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := c.pdf.Output(cw)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// PDFSurface draws one measure region of a PDFCanvas.
type PDFSurface struct {
	canvas *PDFCanvas
	last   *notation.Staff
}

func (s *PDFSurface) Clear() error {
	pdf := s.canvas.pdf
	if s.last != nil {
		pdf.SetFillColor(255, 255, 255)
		pdf.Rect(s.last.X-1, s.last.Y, s.last.Width+2, systemSpace, "F")
		s.last = nil
	}
	return pdf.Error()
}

func (s *PDFSurface) MinWidth(v notation.Voice) (float64, error) {
	return MinWidth(v), nil
}

func (s *PDFSurface) Format(v notation.Voice, width float64) (notation.Layout, error) {
	return Justify(v, width), nil
}

func (s *PDFSurface) DrawStaff(st notation.Staff) error {
	pdf := s.canvas.pdf
	s.last = &st

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.7)
	top := st.Y + staffTop
	for i := 0; i < 5; i++ {
		y := top + float64(i)*lineSpacing
		pdf.Line(st.X, y, st.X+st.Width, y)
	}
	bottom := top + 4*lineSpacing
	pdf.Line(st.X, top, st.X, bottom)
	pdf.Line(st.X+st.Width, top, st.X+st.Width, bottom)

	x := st.X + headerLead
	if sym := clefSymbol(st.Clef); sym != "" {
		pdf.SetFont("Helvetica", "B", 28)
		pdf.Text(x, bottom-8, sym)
		x += clefWidth
	}
	if st.TimeSignature != "" {
		upper, lower := splitTimeSignature(st.TimeSignature)
		pdf.SetFont("Helvetica", "B", 16)
		if lower == "" {
			pdf.Text(x, top+2*lineSpacing+6, upper)
		} else {
			pdf.Text(x, top+lineSpacing+6, upper)
			pdf.Text(x, top+3*lineSpacing+6, lower)
		}
	}
	return pdf.Error()
}

func (s *PDFSurface) DrawVoice(st notation.Staff, l notation.Layout) error {
	pdf := s.canvas.pdf
	start, scale := noteArea(st, l)
	bottomStep := l.Voice.Clef.BottomLine().StaffStep()
	bottomY := st.Y + staffTop + 4*lineSpacing
	stepY := func(step int) float64 {
		return bottomY - float64(step-bottomStep)*lineSpacing/2
	}

	pdf.SetFillColor(0, 0, 0)
	for i, e := range l.Voice.Events {
		d, err := notation.ParseDuration(e.Duration)
		if err != nil {
			continue
		}
		x := st.X + start + l.Offsets[i]*scale + headRadius

		if d.Rest {
			s.drawRest(d, x, stepY(bottomStep+4))
			continue
		}

		var low, high float64
		for j, raw := range e.Pitches {
			p, err := notation.ParsePitch(raw)
			if err != nil {
				continue
			}
			step := p.StaffStep()
			y := stepY(step)
			if j == 0 || y > low {
				low = y
			}
			if j == 0 || y < high {
				high = y
			}
			for ls := bottomStep - 2; ls >= step; ls -= 2 {
				pdf.Line(x-headRadius-3, stepY(ls), x+headRadius+3, stepY(ls))
			}
			for ls := bottomStep + 10; ls <= step; ls += 2 {
				pdf.Line(x-headRadius-3, stepY(ls), x+headRadius+3, stepY(ls))
			}

			style := "F"
			if d.Denominator <= 2 {
				style = "D"
			}
			pdf.Ellipse(x, y, headRadius+1, headRadius, 0, style)
			if p.Accidental != "" {
				pdf.SetFont("Helvetica", "", 10)
				pdf.Text(x-headRadius-10, y+3, p.Accidental)
			}
			if d.Dotted {
				pdf.Circle(x+headRadius+4, y, 1.2, "F")
			}
		}

		if d.Denominator > 1 && low != 0 {
			stemX := x + headRadius
			pdf.Line(stemX, low, stemX, high-stemLength)
			flags := int(math.Log2(float64(d.Denominator))) - 2
			for f := 0; f < flags; f++ {
				fy := high - stemLength + float64(f)*5
				pdf.Line(stemX, fy, stemX+6, fy+8)
			}
		}
	}
	return pdf.Error()
}

func (s *PDFSurface) drawRest(d notation.Duration, x, middle float64) {
	pdf := s.canvas.pdf
	switch d.Denominator {
	case 1:
		pdf.Rect(x-5, middle-lineSpacing, 10, lineSpacing/2, "F")
	case 2:
		pdf.Rect(x-5, middle-lineSpacing/2, 10, lineSpacing/2, "F")
	case 4:
		pdf.Line(x-2, middle-12, x+2, middle-4)
		pdf.Line(x+2, middle-4, x-2, middle+2)
		pdf.Line(x-2, middle+2, x+2, middle+10)
	default:
		flags := int(math.Log2(float64(d.Denominator))) - 2
		pdf.Line(x+3, middle-6, x-1, middle+10)
		for f := 0; f < flags; f++ {
			fy := middle - 6 + float64(f)*5
			pdf.Circle(x-2, fy+2, 1.5, "F")
			pdf.Line(x-2, fy+2, x+3-float64(f)*0.8, fy)
		}
	}
	if d.Dotted {
		pdf.Circle(x+8, middle-lineSpacing/2, 1.2, "F")
	}
}
