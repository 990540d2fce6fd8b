package converter

import (
	"fmt"

	"github.com/james-see/measureedit/pkg/render"
	"github.com/james-see/measureedit/pkg/score"
)

// TextEncoder writes the score as one line of text staves
type TextEncoder struct {
	Styled bool
}

func (e *TextEncoder) Format() Format { return FormatText }

func (e *TextEncoder) Encode(s *score.Score) ([]byte, error) {
	out, err := Text(s, e.Styled, "")
	if err != nil {
		return nil, err
	}
	return []byte(out + "\n"), nil
}

// Text draws every measure onto its own text canvas and joins them. The
// event with id highlight is marked when styled.
func Text(s *score.Score, styled bool, highlight string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil score")
	}

	measures := s.Measures()
	canvases := make([]*render.TextCanvas, len(measures))
	for i, m := range measures {
		c := render.NewTextCanvas(styled)
		c.Highlight = highlight
		if _, err := m.DrawOn(c, 0, 0); err != nil {
			return "", fmt.Errorf("measure %d: %w", i, err)
		}
		canvases[i] = c
	}
	return render.JoinMeasures(canvases...), nil
}
