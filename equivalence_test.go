package automaton

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() SampleOption {
	return WithRand(rand.New(rand.NewPCG(7, 11)))
}

func TestSampleEquivalenceSelf(t *testing.T) {
	a := dragonDFA(t)

	report, err := SampleEquivalence(a, a, seeded())
	require.NoError(t, err)

	assert.True(t, report.Equivalent)
	assert.Empty(t, report.Disagreements)
	assert.Len(t, report.Words, DefaultSampleSize)
	assert.ElementsMatch(t, report.Words, append(append([]string{}, report.AcceptedByBoth...), report.RejectedByBoth...))

	distinct := make(map[string]struct{})
	for _, w := range report.Words {
		assert.GreaterOrEqual(t, len(w), 1)
		assert.LessOrEqual(t, len(w), DefaultMaxLength)
		distinct[w] = struct{}{}
	}
	assert.Len(t, distinct, DefaultSampleSize)
}

func TestSampleEquivalenceNFAAndDFA(t *testing.T) {
	nfa := endsWithAB(t)
	dfa, err := Determinize(nfa)
	require.NoError(t, err)
	minimal, err := Minimize(dfa)
	require.NoError(t, err)

	report, err := SampleEquivalence(nfa, dfa, seeded())
	require.NoError(t, err)
	assert.True(t, report.Equivalent)

	report, err = SampleEquivalence(dfa, minimal, seeded(), WithSampleSize(60), WithMaxLength(6))
	require.NoError(t, err)
	assert.True(t, report.Equivalent)
	assert.Len(t, report.Words, 60)
}

func TestSampleEquivalenceDifferent(t *testing.T) {
	alphabet := []string{"a", "b"}
	anyString, err := defaultAutomata.MakeAnyString(alphabet)
	require.NoError(t, err)
	empty, err := defaultAutomata.MakeEmpty(alphabet)
	require.NoError(t, err)

	report, err := SampleEquivalence(anyString, empty, seeded(), WithSampleSize(20))
	require.NoError(t, err)
	assert.False(t, report.Equivalent)
	assert.Empty(t, report.AcceptedByBoth)
	assert.Empty(t, report.RejectedByBoth)
	assert.Len(t, report.Disagreements, 20)
}

func TestSampleEquivalenceWordSpace(t *testing.T) {
	a, err := defaultAutomata.MakeAnyString([]string{"a"})
	require.NoError(t, err)

	_, err = SampleEquivalence(a, a, seeded())
	assert.True(t, errors.Is(err, ErrInsufficientWordSpace), "got %v", err)

	b, err := defaultAutomata.MakeAnyString([]string{"a", "b"})
	require.NoError(t, err)
	report, err := SampleEquivalence(b, b, seeded(), WithSampleSize(6), WithMaxLength(2))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "aa", "ab", "ba", "bb"}, report.Words)

	_, err = SampleEquivalence(b, b, seeded(), WithSampleSize(7), WithMaxLength(2))
	assert.True(t, errors.Is(err, ErrInsufficientWordSpace), "got %v", err)

	empty, err := defaultAutomata.MakeEmpty(nil)
	require.NoError(t, err)
	_, err = SampleEquivalence(empty, empty, seeded(), WithSampleSize(1))
	assert.True(t, errors.Is(err, ErrInsufficientWordSpace), "got %v", err)
}

func TestSampleEquivalenceOptions(t *testing.T) {
	a := dragonDFA(t)

	_, err := SampleEquivalence(a, a, WithSampleSize(0))
	assert.True(t, errors.Is(err, ErrInvalidSampleOption), "got %v", err)

	_, err = SampleEquivalence(a, a, WithMaxLength(-1))
	assert.True(t, errors.Is(err, ErrInvalidSampleOption), "got %v", err)

	_, err = SampleEquivalence(a, a, WithSampleSize(1), WithMaxLength(1<<62))
	assert.True(t, errors.Is(err, ErrInvalidSampleOption), "got %v", err)

	_, err = SampleEquivalence(a, a, WithSampleSize(1<<40))
	assert.True(t, errors.Is(err, ErrInvalidSampleOption), "got %v", err)

	report, err := SampleEquivalence(a, a, seeded(), WithSampleSize(3), WithMaxLength(MaxWordLength))
	require.NoError(t, err)
	assert.Len(t, report.Words, 3)

	first, err := SampleEquivalence(a, a, seeded())
	require.NoError(t, err)
	second, err := SampleEquivalence(a, a, seeded())
	require.NoError(t, err)
	assert.Equal(t, first.Words, second.Words)
}

func TestWordSpace(t *testing.T) {
	tests := []struct {
		name                         string
		numSymbols, maxLength, limit int
		want                         int
	}{
		{name: "empty alphabet", numSymbols: 0, maxLength: 5, limit: 50, want: 0},
		{name: "unary", numSymbols: 1, maxLength: 5, limit: 50, want: 5},
		{name: "binary short", numSymbols: 2, maxLength: 2, limit: 50, want: 6},
		{name: "binary saturates", numSymbols: 2, maxLength: 5, limit: 50, want: 50},
		{name: "huge does not overflow", numSymbols: 1 << 20, maxLength: 64, limit: 1 << 40, want: 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WordSpace(tt.numSymbols, tt.maxLength, tt.limit))
		})
	}
}
