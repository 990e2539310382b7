package memory

import (
	"context"
	"sync"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/store"
)

// Store implements store.Log in process memory. Its content is lost on exit.
type Store struct {
	mu   sync.RWMutex
	logs map[automaton.Kind][]automaton.Definition
}

func New() *Store {
	return &Store{logs: make(map[automaton.Kind][]automaton.Definition)}
}

func (s *Store) Append(ctx context.Context, def automaton.Definition) (int, error) {
	if err := store.CheckKind(def.Kind); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[def.Kind] = append(s.logs[def.Kind], def.Clone())
	return len(s.logs[def.Kind]) - 1, nil
}

func (s *Store) Get(ctx context.Context, kind automaton.Kind, index int) (automaton.Definition, error) {
	if err := store.CheckKind(kind); err != nil {
		return automaton.Definition{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[kind]
	if index < 0 || index >= len(log) {
		return automaton.Definition{}, store.NotFound(kind, index, len(log))
	}
	return log[index].Clone(), nil
}

func (s *Store) List(ctx context.Context, kind automaton.Kind) ([]automaton.Definition, error) {
	if err := store.CheckKind(kind); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := make([]automaton.Definition, 0, len(s.logs[kind]))
	for _, def := range s.logs[kind] {
		defs = append(defs, def.Clone())
	}
	return defs, nil
}

func (s *Store) Len(ctx context.Context, kind automaton.Kind) (int, error) {
	if err := store.CheckKind(kind); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[kind]), nil
}

func (s *Store) Close() error {
	return nil
}
