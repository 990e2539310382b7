package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/store"
)

// DefaultPath is used when New is given an empty path.
const DefaultPath = "automata.json"

// document is the on-disk layout: one list per kind, keyed "AFD" and "AFN".
type document struct {
	AFD []automaton.Definition `json:"AFD"`
	AFN []automaton.Definition `json:"AFN"`
}

func (d *document) log(kind automaton.Kind) *[]automaton.Definition {
	if kind == automaton.NFA {
		return &d.AFN
	}
	return &d.AFD
}

// Store implements store.Log on a single JSON file.
// The file is re-read on every call and rewritten atomically on every append, so it stays
// readable by other tools at all times.
type Store struct {
	Path string
	mu   sync.Mutex
}

// New creates a Store backed by the file at path. The file is created on the first append.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{Path: path}
}

func (s *Store) read() (*document, error) {
	doc := &document{
		AFD: []automaton.Definition{},
		AFN: []automaton.Definition{},
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read automaton log: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal automaton log %s: %w", s.Path, err)
	}

	// Entries written by older tools carry no kind; the collection decides.
	for _, kind := range store.Kinds {
		log := *doc.log(kind)
		for i := range log {
			log[i].Kind = kind
		}
	}
	return doc, nil
}

// write persists doc atomically: temp file in the same directory, fsync, rename.
func (s *Store) write(doc *document) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure log directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal automaton log: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(s.Path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to replace automaton log: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, def automaton.Definition) (int, error) {
	if err := store.CheckKind(def.Kind); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return 0, err
	}
	log := doc.log(def.Kind)
	*log = append(*log, def.Clone())
	if err := s.write(doc); err != nil {
		return 0, err
	}
	return len(*log) - 1, nil
}

func (s *Store) Get(ctx context.Context, kind automaton.Kind, index int) (automaton.Definition, error) {
	defs, err := s.List(ctx, kind)
	if err != nil {
		return automaton.Definition{}, err
	}
	if index < 0 || index >= len(defs) {
		return automaton.Definition{}, store.NotFound(kind, index, len(defs))
	}
	return defs[index], nil
}

func (s *Store) List(ctx context.Context, kind automaton.Kind) ([]automaton.Definition, error) {
	if err := store.CheckKind(kind); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return *doc.log(kind), nil
}

func (s *Store) Len(ctx context.Context, kind automaton.Kind) (int, error) {
	defs, err := s.List(ctx, kind)
	return len(defs), err
}

func (s *Store) Close() error {
	return nil
}
