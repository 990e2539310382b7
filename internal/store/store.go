// Package store defines the append-only automaton log: one ordered list of definitions per
// automaton kind. Entries are never modified or removed, and every read names an explicit
// index.
package store

import (
	"context"
	"errors"
	"fmt"

	automaton "github.com/geange/automata"
)

// ErrNotFound is returned when an index is outside a kind's log.
var ErrNotFound = errors.New("automaton not found")

// ErrUnknownKind is returned for a kind other than DFA or NFA.
var ErrUnknownKind = errors.New("unknown automaton kind")

// Log is an append-only automaton log.
type Log interface {
	// Append stores def at the end of its kind's log and returns its index.
	Append(ctx context.Context, def automaton.Definition) (int, error)
	// Get returns the definition at index in kind's log.
	Get(ctx context.Context, kind automaton.Kind, index int) (automaton.Definition, error)
	// List returns kind's log in append order.
	List(ctx context.Context, kind automaton.Kind) ([]automaton.Definition, error)
	// Len returns the number of entries in kind's log.
	Len(ctx context.Context, kind automaton.Kind) (int, error)
	Close() error
}

// Kinds lists the kinds with a log, in persisted order.
var Kinds = []automaton.Kind{automaton.DFA, automaton.NFA}

// CheckKind returns ErrUnknownKind unless kind is DFA or NFA.
func CheckKind(kind automaton.Kind) error {
	if kind != automaton.DFA && kind != automaton.NFA {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	return nil
}

// CollectionName returns the name a kind's log is persisted under: "AFD" for DFA and "AFN"
// for NFA.
func CollectionName(kind automaton.Kind) string {
	if kind == automaton.NFA {
		return "AFN"
	}
	return "AFD"
}

// NotFound builds the error for a missing index.
func NotFound(kind automaton.Kind, index, size int) error {
	return fmt.Errorf("%w: %s #%d (log holds %d)", ErrNotFound, kind, index, size)
}
