package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the embedded default configuration file.
func Default() []byte {
	return defaultYAML
}

type File struct {
	Index struct {
		Output string `yaml:"output"`
	} `yaml:"index"`
	Frame struct {
		Output      string  `yaml:"output"`
		StrokeMM    float64 `yaml:"stroke_mm"`
		StrokeColor string  `yaml:"stroke_color"`
		Type        int     `yaml:"type"`
		Inclination float64 `yaml:"inclination"`
		MaxSide     int     `yaml:"max_side"`
		DPI         float64 `yaml:"dpi"`
	} `yaml:"frame"`
	Masks struct {
		Output string `yaml:"output"`
		Scale  int    `yaml:"scale"`
	} `yaml:"masks"`
	PDF struct {
		DefaultFont string `yaml:"default_font"`
		Anchor      string `yaml:"anchor"`
		Validate    bool   `yaml:"validate"`
	} `yaml:"pdf"`
}

// Parse decodes a configuration file, rejecting unknown keys.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return f, fmt.Errorf("invalid config: %w", err)
	}
	return f, nil
}
