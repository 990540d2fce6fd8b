package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/james-see/measureedit/pkg/score"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatPDF     Format = "pdf"
	FormatText    Format = "text"
	FormatUnknown Format = "unknown"
)

// ErrUnsupportedFormat is returned for formats without an encoder
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrCorruptOutput is returned when an encoder's bytes do not look like its
// format
var ErrCorruptOutput = errors.New("corrupt export output")

// DetectFormat detects the format of a file based on extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mid", ".midi":
		return FormatMIDI
	case ".pdf":
		return FormatPDF
	case ".txt":
		return FormatText
	default:
		return FormatUnknown
	}
}

// ParseFormat accepts a format name or a file extension
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "midi", "mid":
		return FormatMIDI
	case "pdf":
		return FormatPDF
	case "text", "txt":
		return FormatText
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from exported content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Check for MIDI file signature "MThd"
	if string(data[:4]) == "MThd" {
		return FormatMIDI
	}

	if string(data[:4]) == "%PDF" {
		return FormatPDF
	}

	if utf8.Valid(data) {
		return FormatText
	}
	return FormatUnknown
}

// Export encodes a score in the given format
func (c *Converter) Export(s *score.Score, format Format) ([]byte, error) {
	e, ok := c.encoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	data, err := e.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("%s export failed: %w", format, err)
	}
	if got := DetectFormatFromContent(data); got != format {
		return nil, fmt.Errorf("%w: %s encoder produced %s content", ErrCorruptOutput, format, got)
	}
	return data, nil
}

// ExportFile writes a score to outputPath in the format its extension names
func (c *Converter) ExportFile(s *score.Score, outputPath string) error {
	format := DetectFormat(outputPath)
	if format == FormatUnknown {
		return fmt.Errorf("%w: cannot determine output format from filename %q", ErrUnsupportedFormat, outputPath)
	}

	data, err := c.Export(s, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// SupportedFormats returns the formats with a registered encoder
func (c *Converter) SupportedFormats() []string {
	formats := make([]string, 0, len(c.encoders))
	for f := range c.encoders {
		formats = append(formats, string(f))
	}
	sort.Strings(formats)
	return formats
}
