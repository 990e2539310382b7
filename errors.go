package automaton

import "errors"

// ErrInvalidAutomaton is returned when a start, accepting or transition state is not a
// declared state. No automaton is built in that case.
var ErrInvalidAutomaton = errors.New("invalid automaton")

// ErrNotDeterministic is returned by operations that need a DFA with at most one
// destination per (state, symbol).
var ErrNotDeterministic = errors.New("automaton is not deterministic")

// ErrTooComplexToDeterminize is returned when subset construction exceeds its work limit.
var ErrTooComplexToDeterminize = errors.New("automaton too complex to determinize")

// ErrAmbiguousStateName is returned when two different state subsets would share a name.
var ErrAmbiguousStateName = errors.New("ambiguous subset state name")

// ErrInconsistentPartition is returned when two states of one block disagree on the block
// they move to.
var ErrInconsistentPartition = errors.New("inconsistent state partition")

// ErrInsufficientWordSpace is returned when fewer distinct words exist than were requested.
var ErrInsufficientWordSpace = errors.New("word space smaller than sample size")

// ErrInvalidSampleOption is returned for non-positive sample sizes or word lengths.
var ErrInvalidSampleOption = errors.New("invalid sample option")

// ErrInvalidRegExp is returned for a pattern that cannot be parsed or that expands too far.
var ErrInvalidRegExp = errors.New("invalid regular expression")
