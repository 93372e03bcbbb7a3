// Package planstore reads and writes expiration plans as YAML or JSON files.
package planstore

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/danieljhkim/opskit/internal/fsops"
	"github.com/danieljhkim/opskit/internal/planner"
)

// planFilePerm leaves plans readable by the team running the job.
const planFilePerm = 0644

// Store persists plans through an fsops.FS.
type Store struct {
	fs fsops.FS
}

// New creates a Store. A nil fs uses the real filesystem.
func New(fsys fsops.FS) *Store {
	if fsys == nil {
		fsys = fsops.NewRealFS()
	}
	return &Store{fs: fsys}
}

// Save writes plan to path. The format comes from the extension, or fallback
// when the extension is not recognized. The write is atomic.
func (s *Store) Save(plan planner.Plan, path string, fallback Format) error {
	format := FormatForPath(path, fallback)

	data, err := Encode(plan, format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.fs.AtomicWrite(path, data, planFilePerm); err != nil {
		return classify(path, err)
	}
	return nil
}

// Load reads a plan. The format is taken strictly from the extension.
func (s *Store) Load(path string) (planner.Plan, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, classify(path, err)
	}

	plan, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPersistence, path, err)
	}
	return plan, nil
}

// ReadDocument loads any YAML or JSON file for conversion.
func (s *Store) ReadDocument(path string) (interface{}, Format, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, 0, classify(path, err)
	}
	doc, err := DecodeDocument(data, format)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrPersistence, path, err)
	}
	return doc, format, nil
}

// WriteDocument writes any YAML or JSON compatible value atomically.
func (s *Store) WriteDocument(doc interface{}, path string, format Format) error {
	data, err := EncodeDocument(doc, format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.fs.AtomicWrite(path, data, planFilePerm); err != nil {
		return classify(path, err)
	}
	return nil
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w: %s", ErrPersistence, ErrPlanNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w: %s", ErrPersistence, ErrPermission, path)
	default:
		return fmt.Errorf("%w: %s: %w", ErrPersistence, path, err)
	}
}
