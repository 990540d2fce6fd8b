package converter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/james-see/measureedit/pkg/notation"
	"github.com/james-see/measureedit/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"test.mid", FormatMIDI},
		{"test.midi", FormatMIDI},
		{"TEST.MID", FormatMIDI},
		{"test.pdf", FormatPDF},
		{"test.txt", FormatText},
		{"test.seq", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"MIDI file", []byte("MThd\x00\x00\x00\x06"), FormatMIDI},
		{"PDF file", []byte("%PDF-1.3"), FormatPDF},
		{"Text staff", []byte("----|\n"), FormatText},
		{"Short data", []byte{0x00, 0x01}, FormatUnknown},
		{"Binary data", []byte{0xFF, 0xFE, 0xFD, 0xFC}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatMIDI, ParseFormat("mid"))
	assert.Equal(t, FormatMIDI, ParseFormat(".midi"))
	assert.Equal(t, FormatPDF, ParseFormat("PDF"))
	assert.Equal(t, FormatText, ParseFormat("txt"))
	assert.Equal(t, FormatUnknown, ParseFormat("syx"))
}

// testScore is two 4/4 measures: a C/E chord and a G quarter in the first,
// an A quarter opening the second
func testScore(t *testing.T) *score.Score {
	t.Helper()
	s, err := score.New(10, 10, 300, "4/4", score.WithIDGenerator(notation.Sequential("e", 1)))
	require.NoError(t, err)
	require.NoError(t, s.AddNoteInMeasure(0, []string{"C/4", "E/4"}, "q", "e1"))
	require.NoError(t, s.AddNoteInMeasure(0, []string{"G/4"}, "q", "e3"))

	m, err := s.AddMeasure()
	require.NoError(t, err)
	require.NoError(t, s.AddNoteInMeasure(1, []string{"A/4"}, "q", m.Events()[0].ID))
	return s
}

func TestConverterNew(t *testing.T) {
	conv := New(DefaultOptions())

	if conv == nil {
		t.Fatal("New() returned nil")
	}

	assert.Equal(t, []string{"midi", "pdf", "text"}, conv.SupportedFormats())
	for _, f := range []Format{FormatMIDI, FormatPDF, FormatText} {
		e, ok := conv.Encoder(f)
		require.True(t, ok, f)
		assert.Equal(t, f, e.Format())
	}
}

func TestExportUnsupported(t *testing.T) {
	conv := New(DefaultOptions())
	_, err := conv.Export(testScore(t), FormatUnknown)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	err = conv.ExportFile(testScore(t), filepath.Join(t.TempDir(), "out.seq"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

// brokenEncoder claims MIDI but emits bytes without a header
type brokenEncoder struct{}

func (brokenEncoder) Format() Format { return FormatMIDI }

func (brokenEncoder) Encode(*score.Score) ([]byte, error) {
	return []byte{0xff, 0xfe, 0x00, 0x01}, nil
}

func TestExportRejectsCorruptOutput(t *testing.T) {
	conv := New(DefaultOptions())
	conv.Register(brokenEncoder{})

	_, err := conv.Export(testScore(t), FormatMIDI)
	assert.True(t, errors.Is(err, ErrCorruptOutput))

	path := filepath.Join(t.TempDir(), "out.mid")
	err = conv.ExportFile(testScore(t), path)
	assert.True(t, errors.Is(err, ErrCorruptOutput))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing is written")
}

type noteStart struct {
	tick int64
	key  uint8
}

func TestMIDIExport(t *testing.T) {
	data, err := New(Options{Tempo: 90}).Export(testScore(t), FormatMIDI)
	require.NoError(t, err)
	assert.Equal(t, FormatMIDI, DetectFormatFromContent(data))

	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	require.True(t, ok)
	assert.Equal(t, uint16(1024), mt.Resolution())
	require.Len(t, s.Tracks, 1)

	var (
		starts     []noteStart
		ends       int
		tick       int64
		num, denom uint8
		bpm        float64
		channel    uint8
		key, vel   uint8
		sawMeter   bool
		sawTempo   bool
	)
	for _, ev := range s.Tracks[0] {
		tick += int64(ev.Delta)
		switch msg := midi.Message(ev.Message); {
		case ev.Message.GetMetaMeter(&num, &denom):
			sawMeter = true
		case ev.Message.GetMetaTempo(&bpm):
			sawTempo = true
		case msg.GetNoteStart(&channel, &key, &vel):
			starts = append(starts, noteStart{tick, key})
		case msg.GetNoteEnd(&channel, &key):
			ends++
		}
	}

	assert.True(t, sawMeter)
	assert.Equal(t, uint8(4), num)
	assert.Equal(t, uint8(4), denom)
	assert.True(t, sawTempo)
	assert.InDelta(t, 90, bpm, 0.01)

	assert.Equal(t, []noteStart{{0, 60}, {0, 64}, {2048, 67}, {4096, 69}}, starts)
	assert.Equal(t, 4, ends)
	// the trailing rests of the second measure are kept
	assert.Equal(t, int64(8192), tick)
}

func TestMIDIExportPitchOutOfRange(t *testing.T) {
	s, err := score.New(0, 0, 300, "4/4", score.WithIDGenerator(notation.Sequential("e", 1)))
	require.NoError(t, err)
	require.NoError(t, s.AddNoteInMeasure(0, []string{"B#/9"}, "q", "e1"))

	_, err = New(DefaultOptions()).Export(s, FormatMIDI)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MIDI key range")
}

func TestPDFExport(t *testing.T) {
	data, err := New(DefaultOptions()).Export(testScore(t), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, DetectFormatFromContent(data))
}

func TestTextExport(t *testing.T) {
	s := testScore(t)
	out, err := Text(s, false, "")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	labels := lines[len(lines)-1]
	assert.Equal(t, 5, strings.Count(labels, "qr "), labels)
	assert.Contains(t, out, "G")
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	conv := New(DefaultOptions())
	s := testScore(t)

	for _, name := range []string{"score.mid", "score.pdf", "score.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, conv.ExportFile(s, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, DetectFormat(name), DetectFormatFromContent(data), name)
	}
}
