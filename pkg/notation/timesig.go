package notation

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxBeats bounds the numerator of a time signature.
const MaxBeats = 32

// TimeSignature is fixed for the life of a measure.
type TimeSignature struct {
	Beats    int
	BeatUnit int
	symbol   string
}

// NewTimeSignature validates beats/beatUnit. The beat unit must be a power
// of two with a duration code.
func NewTimeSignature(beats, beatUnit int) (TimeSignature, error) {
	if beats <= 0 || beats > MaxBeats {
		return TimeSignature{}, invalidArgument(ErrInvalidTimeSignature,
			fmt.Sprintf("beats %d outside 1..%d", beats, MaxBeats),
			"The number of beats per measure is out of range",
		)
	}
	if _, err := CodeForBeatUnit(beatUnit); err != nil {
		return TimeSignature{}, err
	}
	return TimeSignature{Beats: beats, BeatUnit: beatUnit}, nil
}

// ParseTimeSignature accepts "N/D", "C" (common time) and "C|" (cut time).
func ParseTimeSignature(s string) (TimeSignature, error) {
	switch s {
	case "C":
		ts, err := NewTimeSignature(4, 4)
		ts.symbol = s
		return ts, err
	case "C|":
		ts, err := NewTimeSignature(2, 2)
		ts.symbol = s
		return ts, err
	}

	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return TimeSignature{}, badTimeSignature(s)
	}
	beats, ok := parseCount(num)
	if !ok {
		return TimeSignature{}, badTimeSignature(s)
	}
	unit, ok := parseCount(den)
	if !ok {
		return TimeSignature{}, badTimeSignature(s)
	}
	return NewTimeSignature(beats, unit)
}

// parseCount accepts plain decimal digits without sign or leading zero.
func parseCount(s string) (int, bool) {
	if s == "" || s[0] == '0' || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func badTimeSignature(s string) error {
	return invalidArgument(ErrInvalidTimeSignature,
		fmt.Sprintf("malformed time signature %q", s),
		fmt.Sprintf("%q is not a time signature like 4/4", s),
	)
}

// TotalTicks is the tick budget of one measure.
func (ts TimeSignature) TotalTicks() int {
	return TicksPerWholeNote * ts.Beats / ts.BeatUnit
}

// BeatCode returns the base duration code of one beat.
func (ts TimeSignature) BeatCode() string {
	return canonicalBase[ts.BeatUnit]
}

// String returns the label drawn on the staff.
func (ts TimeSignature) String() string {
	if ts.symbol != "" {
		return ts.symbol
	}
	return fmt.Sprintf("%d/%d", ts.Beats, ts.BeatUnit)
}
