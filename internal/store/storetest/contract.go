// Package storetest holds the behavioural contract every store.Log implementation must meet.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractDefinition(kind automaton.Kind, name string) automaton.Definition {
	return automaton.Definition{
		Kind:      kind,
		States:    []string{name, name + "'"},
		Alphabet:  []string{"a", "b"},
		Start:     name,
		Accepting: []string{name + "'"},
		Transitions: automaton.Transitions{
			name: {"a": {name + "'"}},
		},
	}
}

// RunLogContract runs a suite of tests verifying that a Log implementation adheres to the
// interface contract. The log must be empty.
func RunLogContract(t *testing.T, log store.Log) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		for _, kind := range store.Kinds {
			n, err := log.Len(ctx, kind)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			defs, err := log.List(ctx, kind)
			require.NoError(t, err)
			assert.Empty(t, defs)

			_, err = log.Get(ctx, kind, 0)
			assert.ErrorIs(t, err, store.ErrNotFound)
		}
	})

	t.Run("Append and Get", func(t *testing.T) {
		first := contractDefinition(automaton.DFA, "d0")
		second := contractDefinition(automaton.DFA, "d1")
		nfa := contractDefinition(automaton.NFA, "n0")
		nfa.Transitions.Add("n0", "a", "n0")

		i, err := log.Append(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, 0, i)
		i, err = log.Append(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, 1, i)
		i, err = log.Append(ctx, nfa)
		require.NoError(t, err)
		assert.Equal(t, 0, i, "each kind has its own log")

		got, err := log.Get(ctx, automaton.DFA, 1)
		require.NoError(t, err)
		assert.Equal(t, second, got)

		got, err = log.Get(ctx, automaton.NFA, 0)
		require.NoError(t, err)
		assert.Equal(t, nfa, got)

		defs, err := log.List(ctx, automaton.DFA)
		require.NoError(t, err)
		assert.Equal(t, []automaton.Definition{first, second}, defs)

		n, err := log.Len(ctx, automaton.NFA)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("Out of range", func(t *testing.T) {
		_, err := log.Get(ctx, automaton.DFA, 2)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = log.Get(ctx, automaton.DFA, -1)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Stored values are copies", func(t *testing.T) {
		def := contractDefinition(automaton.NFA, "c0")
		i, err := log.Append(ctx, def)
		require.NoError(t, err)
		def.States[0] = "mutated"

		got, err := log.Get(ctx, automaton.NFA, i)
		require.NoError(t, err)
		assert.Equal(t, "c0", got.States[0])

		got.Accepting[0] = "mutated"
		again, err := log.Get(ctx, automaton.NFA, i)
		require.NoError(t, err)
		assert.Equal(t, "c0'", again.Accepting[0])
	})

	t.Run("Unknown kind", func(t *testing.T) {
		_, err := log.Append(ctx, automaton.Definition{Kind: automaton.Kind(7)})
		assert.True(t, errors.Is(err, store.ErrUnknownKind), "got %v", err)
		_, err = log.Len(ctx, automaton.Kind(7))
		assert.True(t, errors.Is(err, store.ErrUnknownKind), "got %v", err)
	})

	t.Run("Concurrent appends", func(t *testing.T) {
		before, err := log.Len(ctx, automaton.DFA)
		require.NoError(t, err)

		const writers = 8
		indices := make(chan int, writers)
		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				i, err := log.Append(ctx, contractDefinition(automaton.DFA, "w"))
				assert.NoError(t, err)
				indices <- i
			}()
		}
		wg.Wait()
		close(indices)

		seen := make(map[int]bool)
		for i := range indices {
			assert.False(t, seen[i], "index %d handed out twice", i)
			seen[i] = true
		}
		n, err := log.Len(ctx, automaton.DFA)
		require.NoError(t, err)
		assert.Equal(t, before+writers, n)
	})
}
