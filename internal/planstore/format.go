package planstore

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a plan file encoding.
type Format int

const (
	// FormatYAML is the structured-text format (.yaml, .yml).
	FormatYAML Format = iota
	// FormatJSON is JSON (.json).
	FormatJSON
)

// String returns the flag spelling of the format.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat reads a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownExtension, path)
	}
}

// FormatForPath is DetectFormat with a fallback for unrecognized extensions.
func FormatForPath(path string, fallback Format) Format {
	if f, err := DetectFormat(path); err == nil {
		return f
	}
	return fallback
}
