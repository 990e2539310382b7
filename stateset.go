package automaton

import (
	"slices"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// StateSet A set of state indices of one automaton, backed by a bitset. Subset
// construction uses its key as the identity of a DFA state.
type StateSet struct {
	bits *bitset.BitSet
}

func newStateSet(numStates int) *StateSet {
	return &StateSet{bits: bitset.New(uint(numStates))}
}

func (s *StateSet) add(state int) {
	s.bits.Set(uint(state))
}

func (s *StateSet) contains(state int) bool {
	return s.bits.Test(uint(state))
}

// Size Returns the number of states in the set.
func (s *StateSet) Size() int {
	return int(s.bits.Count())
}

func (s *StateSet) empty() bool {
	return s.bits.None()
}

// intersects Returns true if any member is also set in other.
func (s *StateSet) intersects(other *bitset.BitSet) bool {
	return s.bits.IntersectionCardinality(other) > 0
}

// GetArray Returns the members in ascending order.
func (s *StateSet) GetArray() []int {
	values := make([]int, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		values = append(values, int(i))
	}
	return values
}

// key Returns a string uniquely identifying the members, independent of insertion order.
func (s *StateSet) key() string {
	var b strings.Builder
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(i), 10))
	}
	return b.String()
}

// step Returns the union of the destinations of every member on symbol.
func (a *Automaton) step(s *StateSet, symbol int) *StateSet {
	next := newStateSet(len(a.states))
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		for _, dest := range a.delta[i][symbol] {
			next.add(dest)
		}
	}
	return next
}

// SubsetName Returns the canonical name of a DFA state built from the given states.
// A singleton keeps its member's name; larger sets are named "{a,b,c}" with members sorted,
// so the same subset always gets the same name whatever the discovery order.
func SubsetName(states []string) string {
	if len(states) == 1 {
		return states[0]
	}
	sorted := slices.Clone(states)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	return "{" + strings.Join(sorted, ",") + "}"
}
