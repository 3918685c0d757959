// SPDX-License-Identifier: MIT

package person

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a population file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension; anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// Decode reads a list of persons and indexes them.
// The result is not validated; run Validate before matching.
func Decode(r io.Reader, f Format) (*Population, error) {
	var people []*Person
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&people); err != nil {
			return nil, fmt.Errorf("person: decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&people); err != nil && err != io.EOF {
			return nil, fmt.Errorf("person: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("format %q: %w", f, ErrBadEnum)
	}

	return NewPopulation(people)
}

// ReadFile decodes the population stored at path.
func ReadFile(path string) (*Population, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("person: %w", err)
	}
	defer fh.Close()

	return Decode(fh, FormatOf(path))
}

// Encode writes pop as a list of persons in input order.
func Encode(w io.Writer, pop *Population, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pop.People())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pop.People()); err != nil {
			return fmt.Errorf("person: encode yaml: %w", err)
		}
		return enc.Close()
	}

	return fmt.Errorf("format %q: %w", f, ErrBadEnum)
}
