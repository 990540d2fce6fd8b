// Package notation implements the tick accounting and mutation engine behind
// the measure editor: duration codes, pitches, time signatures, timeline
// events and the measure that keeps their durations balanced.
package notation

import (
	"fmt"
	"math/big"
	"strings"
)

// TicksPerWholeNote is the resolution every duration is converted to.
const TicksPerWholeNote = 4096

// Duration code flags
const (
	restSuffix = "r"
	dotSuffix  = "d"
)

// baseTokens maps every accepted base token to its denominator. The numeric
// aliases of w, h and q are normalized to the letter form.
var baseTokens = map[string]int{
	"w":  1,
	"1":  1,
	"h":  2,
	"2":  2,
	"q":  4,
	"4":  4,
	"8":  8,
	"16": 16,
	"32": 32,
	"64": 64,
}

var canonicalBase = map[int]string{
	1:  "w",
	2:  "h",
	4:  "q",
	8:  "8",
	16: "16",
	32: "32",
	64: "64",
}

// Duration is a parsed duration code.
type Duration struct {
	Denominator int  // 1 = whole, 4 = quarter, ...
	Dotted      bool // one and a half times the base length
	Rest        bool
}

// ParseDuration parses a code of the form <base>[d][r].
func ParseDuration(code string) (Duration, error) {
	var d Duration
	s := code
	if strings.HasSuffix(s, restSuffix) {
		d.Rest = true
		s = strings.TrimSuffix(s, restSuffix)
	}
	if strings.HasSuffix(s, dotSuffix) {
		d.Dotted = true
		s = strings.TrimSuffix(s, dotSuffix)
	}
	denom, ok := baseTokens[s]
	if !ok {
		return Duration{}, invalidArgument(ErrInvalidDurationCode,
			fmt.Sprintf("unsupported duration code %q", code),
			fmt.Sprintf("%q is not a note length", code),
		)
	}
	d.Denominator = denom
	return d, nil
}

// Ticks returns the length of the duration in ticks.
func (d Duration) Ticks() int {
	t := TicksPerWholeNote / d.Denominator
	if d.Dotted {
		t += t / 2
	}
	return t
}

// Code returns the canonical code, e.g. "q", "8dr".
func (d Duration) Code() string {
	code := canonicalBase[d.Denominator]
	if d.Dotted {
		code += dotSuffix
	}
	if d.Rest {
		code += restSuffix
	}
	return code
}

// SameLength reports whether both durations cover the same base length,
// ignoring the rest flag.
func (d Duration) SameLength(o Duration) bool {
	return d.Denominator == o.Denominator && d.Dotted == o.Dotted
}

// AsRest returns the rest of the same length.
func (d Duration) AsRest() Duration {
	d.Rest = true
	return d
}

// AsNote returns the note of the same length.
func (d Duration) AsNote() Duration {
	d.Rest = false
	return d
}

// Ticks converts a duration code to ticks.
func Ticks(code string) (int, error) {
	d, err := ParseDuration(code)
	if err != nil {
		return 0, err
	}
	return d.Ticks(), nil
}

// IsRestCode reports whether code marks a rest.
func IsRestCode(code string) bool {
	return strings.HasSuffix(code, restSuffix)
}

// BaseCode strips the rest flag: "8dr" becomes "8d". Codes that are not
// rests come back unchanged.
func BaseCode(code string) string {
	return strings.TrimSuffix(code, restSuffix)
}

// RestCode returns the rest form of code.
func RestCode(code string) string {
	if IsRestCode(code) {
		return code
	}
	return code + restSuffix
}

// SplitRatio returns ticks(oldCode) / ticks(newCode): how many slots of the
// new duration fit into one slot of the old one.
func SplitRatio(oldCode, newCode string) (*big.Rat, error) {
	oldTicks, err := Ticks(oldCode)
	if err != nil {
		return nil, err
	}
	newTicks, err := Ticks(newCode)
	if err != nil {
		return nil, err
	}
	return big.NewRat(int64(oldTicks), int64(newTicks)), nil
}

// CodeForBeatUnit returns the base code whose length is one beat unit.
func CodeForBeatUnit(unit int) (string, error) {
	code, ok := canonicalBase[unit]
	if !ok {
		return "", invalidArgument(ErrInvalidTimeSignature,
			fmt.Sprintf("no duration code for beat unit %d", unit),
			fmt.Sprintf("A beat unit of %d is not supported", unit),
		)
	}
	return code, nil
}

// SumTicks adds up the ticks of every event.
func SumTicks(events []Event) int {
	total := 0
	for _, e := range events {
		total += e.Ticks()
	}
	return total
}
