package notation

import (
	"fmt"
	"strconv"
	"strings"
)

// Pitch is a parsed pitch name such as "C/4" or "f#/5".
type Pitch struct {
	Letter     byte   // upper case A-G
	Accidental string // "", "#", "##", "b", "bb" or "n"
	Octave     int
}

var letterSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var letterSteps = map[byte]int{
	'C': 0, 'D': 1, 'E': 2, 'F': 3, 'G': 4, 'A': 5, 'B': 6,
}

var accidentalOffsets = map[string]int{
	"":   0,
	"n":  0,
	"#":  1,
	"##": 2,
	"b":  -1,
	"bb": -2,
}

// ParsePitch parses <letter><accidental?>/<octave>.
func ParsePitch(raw string) (Pitch, error) {
	name, octave, ok := strings.Cut(raw, "/")
	if !ok || name == "" {
		return Pitch{}, badPitch(raw)
	}
	letter := name[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if _, ok := letterSemitones[letter]; !ok {
		return Pitch{}, badPitch(raw)
	}
	acc := name[1:]
	if _, ok := accidentalOffsets[acc]; !ok {
		return Pitch{}, badPitch(raw)
	}
	if len(octave) != 1 {
		return Pitch{}, badPitch(raw)
	}
	oct, err := strconv.Atoi(octave)
	if err != nil {
		return Pitch{}, badPitch(raw)
	}
	return Pitch{Letter: letter, Accidental: acc, Octave: oct}, nil
}

func badPitch(raw string) error {
	return invalidArgument(ErrInvalidPitch,
		fmt.Sprintf("malformed pitch %q", raw),
		fmt.Sprintf("%q is not a pitch like C/4", raw),
	)
}

// MIDIKey returns the MIDI key number, C/4 = 60. Values outside 0..127 are
// possible for extreme octaves.
func (p Pitch) MIDIKey() int {
	return (p.Octave+1)*12 + letterSemitones[p.Letter] + accidentalOffsets[p.Accidental]
}

// StaffStep returns the diatonic position, C/0 = 0, counting one per
// line or space.
func (p Pitch) StaffStep() int {
	return p.Octave*7 + letterSteps[p.Letter]
}

func (p Pitch) String() string {
	return fmt.Sprintf("%c%s/%d", p.Letter, p.Accidental, p.Octave)
}

// ValidatePitches checks every pitch and requires at least one.
func ValidatePitches(pitches []string) error {
	if len(pitches) == 0 {
		return invalidArgument(ErrInvalidPitch, "empty pitch set", "Pick at least one pitch")
	}
	for _, p := range pitches {
		if _, err := ParsePitch(p); err != nil {
			return err
		}
	}
	return nil
}

// MergePitches returns the union of existing and added, keeping the order of
// first appearance. Comparison is exact string equality.
func MergePitches(existing, added []string) []string {
	merged := make([]string, 0, len(existing)+len(added))
	seen := make(map[string]bool, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, p := range list {
			if seen[p] {
				continue
			}
			seen[p] = true
			merged = append(merged, p)
		}
	}
	return merged
}
