package automaton

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterminize(t *testing.T) {
	nfa := endsWithAB(t)

	dfa, err := Determinize(nfa)
	require.NoError(t, err)

	assert.Equal(t, DFA, dfa.Kind())
	assert.True(t, dfa.IsDeterministic())
	assert.Equal(t, "q0", dfa.Start())
	assert.Equal(t, []string{"a", "b"}, dfa.Alphabet())
	assert.Equal(t, []string{"q0", "{q0,q1}", "{q0,q2}"}, dfa.States())
	assert.Equal(t, []string{"{q0,q2}"}, dfa.Accepting())
	assert.Equal(t, []string{"{q0,q1}"}, dfa.Destinations("q0", "a"))
	assert.Equal(t, []string{"{q0,q2}"}, dfa.Destinations("{q0,q1}", "b"))

	for _, w := range words(nfa.Alphabet(), 7) {
		assert.Equal(t, AcceptsSymbols(nfa, w), AcceptsSymbols(dfa, w), "word %v", w)
	}
}

func TestDeterminizeCanonicalNames(t *testing.T) {
	build := func(order []string) *Automaton {
		transitions := make(Transitions)
		transitions.Add("s", "x", order...)
		transitions.Add("p", "x", "s")
		transitions.Add("r", "x", "p", "s")
		a, err := New(NFA, []string{"s", "p", "r"}, []string{"x"}, "s", []string{"r"}, transitions)
		require.NoError(t, err)
		return a
	}

	first, err := Determinize(build([]string{"p", "r"}))
	require.NoError(t, err)
	second, err := Determinize(build([]string{"r", "p"}))
	require.NoError(t, err)

	assert.Equal(t, first.Definition(), second.Definition())
	assert.Equal(t, []string{"{p,r}"}, first.Destinations("s", "x"))
	assert.Equal(t, []string{"{p,s}"}, first.Destinations("{p,r}", "x"))
}

func TestDeterminizeDeadEnds(t *testing.T) {
	// No transition on "b" from anywhere: the DFA stays partial instead of growing a sink.
	transitions := Transitions{
		"q0": {"a": {"q0", "q1"}},
	}
	nfa, err := New(NFA, []string{"q0", "q1"}, []string{"a", "b"}, "q0", []string{"q1"}, transitions)
	require.NoError(t, err)

	dfa, err := Determinize(nfa)
	require.NoError(t, err)
	assert.Equal(t, 2, dfa.NumStates())
	assert.Nil(t, dfa.Destinations("q0", "b"))
	assert.True(t, Accepts(dfa, "aaa"))
	assert.False(t, Accepts(dfa, "ab"))
}

func TestDeterminizeWithLimit(t *testing.T) {
	nfa := endsWithAB(t)

	_, err := DeterminizeWithLimit(nfa, 2)
	assert.True(t, errors.Is(err, ErrTooComplexToDeterminize), "got %v", err)

	dfa, err := DeterminizeWithLimit(nfa, 3)
	assert.Nil(t, err)
	assert.Equal(t, 3, dfa.NumStates())
}

func TestDeterminizeAmbiguousName(t *testing.T) {
	// "{a,b}" is both a declared state and the name of the subset {a, b}.
	transitions := make(Transitions)
	transitions.Add("a", "x", "a", "b")
	transitions.Add("b", "y", "{a,b}")
	transitions.Add("{a,b}", "y", "{a,b}")
	nfa, err := New(NFA, []string{"a", "b", "{a,b}"}, []string{"x", "y"}, "a", nil, transitions)
	require.NoError(t, err)

	_, err = Determinize(nfa)
	assert.True(t, errors.Is(err, ErrAmbiguousStateName), "got %v", err)
}

func TestIsEmpty(t *testing.T) {
	alphabet := []string{"a", "b"}
	empty, err := defaultAutomata.MakeEmpty(alphabet)
	require.NoError(t, err)
	emptyString, err := defaultAutomata.MakeEmptyString(alphabet)
	require.NoError(t, err)

	assert.True(t, IsEmpty(empty))
	assert.False(t, IsEmpty(emptyString))
	assert.False(t, IsEmpty(endsWithAB(t)))

	// The only accepting state cannot be reached.
	transitions := Transitions{"q0": {"a": {"q0"}}, "q1": {"a": {"q1"}}}
	unreachable, err := New(DFA, []string{"q0", "q1"}, alphabet, "q0", []string{"q1"}, transitions)
	require.NoError(t, err)
	assert.True(t, IsEmpty(unreachable))
}

func TestReachable(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, Reachable(dragonDFA(t)))
}

func TestTotalize(t *testing.T) {
	transitions := Transitions{
		"s": {"a": {"t"}},
		"t": {"b": {"t"}},
	}
	partial, err := New(DFA, []string{"s", "t"}, []string{"a", "b"}, "s", []string{"t"}, transitions)
	require.NoError(t, err)

	total, err := Totalize(partial, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "t", DefaultSinkState}, total.States())
	for _, state := range total.States() {
		for _, symbol := range total.Alphabet() {
			assert.Len(t, total.Destinations(state, symbol), 1, "%s on %s", state, symbol)
		}
	}
	for _, w := range words(partial.Alphabet(), 5) {
		assert.Equal(t, AcceptsSymbols(partial, w), AcceptsSymbols(total, w), "word %v", w)
	}

	t.Run("complete automaton is unchanged", func(t *testing.T) {
		again, err := Totalize(total, "")
		assert.Nil(t, err)
		assert.Same(t, total, again)
	})

	t.Run("sink name clash", func(t *testing.T) {
		_, err := Totalize(partial, "t")
		assert.True(t, errors.Is(err, ErrInvalidAutomaton), "got %v", err)
	})

	t.Run("nfa", func(t *testing.T) {
		_, err := Totalize(endsWithAB(t), "")
		assert.True(t, errors.Is(err, ErrNotDeterministic), "got %v", err)
	})
}

func TestComplement(t *testing.T) {
	a := dragonDFA(t)
	c, err := Complement(a)
	require.NoError(t, err)

	for _, w := range words(a.Alphabet(), 6) {
		assert.NotEqual(t, AcceptsSymbols(a, w), AcceptsSymbols(c, w), "word %v", w)
	}

	cc, err := Complement(c)
	require.NoError(t, err)
	for _, w := range words(a.Alphabet(), 6) {
		assert.Equal(t, AcceptsSymbols(a, w), AcceptsSymbols(cc, w), "word %v", w)
	}
}

func TestSubsetName(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   string
	}{
		{name: "singleton", states: []string{"q1"}, want: "q1"},
		{name: "sorted", states: []string{"q2", "q0"}, want: "{q0,q2}"},
		{name: "duplicates collapse", states: []string{"b", "a", "b"}, want: "{a,b}"},
		{name: "duplicate singleton", states: []string{"a", "a"}, want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubsetName(tt.states))
		})
	}
}
