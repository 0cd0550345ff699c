// Package progress remembers which exercises were started and solved.
package progress

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileName is stored in the project state directory.
const FileName = "progress.yaml"

type Status string

const (
	Todo       Status = "todo"
	InProgress Status = "in_progress"
	Done       Status = "done"
)

type Entry struct {
	Status Status `yaml:"status"`
	Passed int    `yaml:"passed"`
	Total  int    `yaml:"total"`
}

type state struct {
	Last string           `yaml:"last,omitempty"`
	Exos map[string]Entry `yaml:"exos,omitempty"`
}

// Store is the progress of one project. It is not safe for concurrent use.
type Store struct {
	fs    afero.Fs
	path  string
	state state
}

// Open reads the progress file in dir. A missing file is an empty progress.
func Open(fsys afero.Fs, dir string) (*Store, error) {
	s := &Store{fs: fsys, path: filepath.Join(dir, FileName)}
	b, err := afero.ReadFile(fsys, s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading progress: %w", err)
	default:
		if err := yaml.Unmarshal(b, &s.state); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.path, err)
		}
	}
	if s.state.Exos == nil {
		s.state.Exos = make(map[string]Entry)
	}
	return s, nil
}

// Get returns the progress of exercise id, Todo if it was never checked.
func (s *Store) Get(id string) Entry {
	e, ok := s.state.Exos[id]
	if !ok {
		return Entry{Status: Todo}
	}
	return e
}

// Last returns the id of the exercise started last.
func (s *Store) Last() string {
	return s.state.Last
}

// Start records id as the exercise being worked on.
func (s *Store) Start(id string) error {
	if s.state.Last == id {
		return nil
	}
	s.state.Last = id
	return s.save()
}

// Record stores the result of a complete check run. A solved exercise stays
// Done even when a later run fails.
func (s *Store) Record(id string, passed, total int) error {
	e := Entry{Status: Todo, Passed: passed, Total: total}
	switch {
	case total > 0 && passed == total:
		e.Status = Done
	case passed > 0:
		e.Status = InProgress
	}
	if prev := s.Get(id); prev.Status == Done && e.Status != Done {
		e.Status = Done
	}
	if s.state.Exos[id] == e {
		return nil
	}
	s.state.Exos[id] = e
	return s.save()
}

func (s *Store) save() error {
	b, err := yaml.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}
	if err := afero.WriteFile(s.fs, s.path, b, 0o644); err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	return nil
}
