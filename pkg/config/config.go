// Package config loads editor settings from defaults and an optional YAML
// file
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/james-see/measureedit/pkg/notation"
	"gopkg.in/yaml.v2"
)

// Config holds the settings shared by the CLI, TUI and API server
type Config struct {
	TimeSignature  string       `yaml:"time_signature"`
	MeasureWidth   float64      `yaml:"measure_width"`
	X              float64      `yaml:"x"`
	Y              float64      `yaml:"y"`
	Clef           string       `yaml:"clef"`
	NotePadding    float64      `yaml:"note_padding"`
	MeasurePadding float64      `yaml:"measure_padding"`
	Tempo          float64      `yaml:"tempo"`
	Server         ServerConfig `yaml:"server"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Default returns a 4/4 treble setup at 120 bpm served on port 8080
func Default() Config {
	return Config{
		TimeSignature:  "4/4",
		MeasureWidth:   300,
		X:              10,
		Y:              40,
		Clef:           string(notation.ClefTreble),
		NotePadding:    notation.DefaultNotePadding,
		MeasurePadding: notation.DefaultMeasurePadding,
		Tempo:          120,
		Server:         ServerConfig{Port: "8080"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every value the editor depends on
func (c Config) Validate() error {
	if _, err := notation.ParseTimeSignature(c.TimeSignature); err != nil {
		return fmt.Errorf("%w: time_signature %q: %w", ErrInvalidConfig, c.TimeSignature, err)
	}
	if _, err := notation.ParseClef(c.Clef); err != nil {
		return fmt.Errorf("%w: clef %q: %w", ErrInvalidConfig, c.Clef, err)
	}
	if c.MeasureWidth <= 0 {
		return fmt.Errorf("%w: measure_width must be positive, got %v", ErrInvalidConfig, c.MeasureWidth)
	}
	if c.NotePadding < 0 || c.MeasurePadding < 0 {
		return fmt.Errorf("%w: paddings must not be negative", ErrInvalidConfig)
	}
	if c.Tempo <= 0 {
		return fmt.Errorf("%w: tempo must be positive, got %v", ErrInvalidConfig, c.Tempo)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server.port is empty", ErrInvalidConfig)
	}
	return nil
}

// Marshal renders the config as YAML
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
