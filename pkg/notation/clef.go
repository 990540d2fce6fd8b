package notation

import "fmt"

// Clef labels a staff and decides where rests are parked.
type Clef string

const (
	ClefNone   Clef = ""
	ClefTreble Clef = "treble"
	ClefBass   Clef = "bass"
	ClefAlto   Clef = "alto"
	ClefTenor  Clef = "tenor"
)

type clefInfo struct {
	middleLine string // placeholder pitch for rests
	bottomLine string
}

var clefs = map[Clef]clefInfo{
	ClefNone:   {middleLine: "B/4", bottomLine: "E/4"},
	ClefTreble: {middleLine: "B/4", bottomLine: "E/4"},
	ClefBass:   {middleLine: "D/3", bottomLine: "G/2"},
	ClefAlto:   {middleLine: "C/4", bottomLine: "F/3"},
	ClefTenor:  {middleLine: "A/3", bottomLine: "D/3"},
}

// ParseClef accepts a clef name; "" and "none" mean no clef label.
func ParseClef(s string) (Clef, error) {
	if s == "none" {
		return ClefNone, nil
	}
	c := Clef(s)
	if _, ok := clefs[c]; !ok {
		return ClefNone, invalidArgument(ErrInvalidClef,
			fmt.Sprintf("unknown clef %q", s),
			fmt.Sprintf("%q is not a clef", s),
		)
	}
	return c, nil
}

// RestPosition is the placeholder pitch rests carry.
func (c Clef) RestPosition() string {
	return clefs[c].middleLine
}

// BottomLine is the pitch on the lowest staff line.
func (c Clef) BottomLine() Pitch {
	p, _ := ParsePitch(clefs[c].bottomLine)
	return p
}
