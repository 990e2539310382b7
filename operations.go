package automaton

import (
	"fmt"
	"slices"
)

// DefaultSinkState is the name Totalize gives the state absorbing missing transitions.
const DefaultSinkState = "dead"

// Determinize Converts the automaton into an equivalent DFA using subset construction.
// Worst case complexity: exponential in number of states.
func Determinize(a *Automaton) (*Automaton, error) {
	return DeterminizeWithLimit(a, 0)
}

// DeterminizeWithLimit Determinizes the given automaton.
// Params: workLimit – maximum number of state subsets the powerset construction expands
// before failing with ErrTooComplexToDeterminize; 0 means no limit.
//
// Subsets are explored breadth first from {start}. Each DFA state is named with SubsetName,
// so the start state keeps the NFA start state's name. Only alphabet symbols are followed.
func DeterminizeWithLimit(a *Automaton, workLimit int) (*Automaton, error) {
	result := Definition{
		Kind:        DFA,
		Alphabet:    slices.Clone(a.alphabet),
		Start:       a.Start(),
		Transitions: make(Transitions),
	}

	// Name of each subset key, and the key owning each name.
	names := make(map[string]string)
	owners := make(map[string]string)
	nameOf := func(s *StateSet) (string, error) {
		key := s.key()
		if name, ok := names[key]; ok {
			return name, nil
		}
		name := SubsetName(a.names(s.GetArray()))
		if owner, ok := owners[name]; ok && owner != key {
			return "", fmt.Errorf("%w: %q", ErrAmbiguousStateName, name)
		}
		names[key] = name
		owners[name] = key
		return name, nil
	}

	initial := newStateSet(len(a.states))
	initial.add(a.start)

	workList := []*StateSet{initial}
	visited := make(map[string]struct{})
	work := 0

	for len(workList) > 0 {
		current := workList[0]
		workList = workList[1:]

		key := current.key()
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}

		work++
		if workLimit > 0 && work > workLimit {
			return nil, fmt.Errorf("%w: more than %d state subsets", ErrTooComplexToDeterminize, workLimit)
		}

		name, err := nameOf(current)
		if err != nil {
			return nil, err
		}
		result.States = append(result.States, name)
		if current.intersects(a.isAccept) {
			result.Accepting = append(result.Accepting, name)
		}

		for _, symbol := range a.alphabet {
			next := a.step(current, a.symbolIndex[symbol])
			if next.empty() {
				continue
			}
			nextName, err := nameOf(next)
			if err != nil {
				return nil, err
			}
			// A repeated alphabet symbol recomputes the same union; keep one destination.
			if len(result.Transitions[name][symbol]) == 0 {
				result.Transitions.Add(name, symbol, nextName)
			}
			if _, ok := visited[next.key()]; !ok {
				workList = append(workList, next)
			}
		}
	}

	return FromDefinition(result)
}

// IsEmpty Returns true if the given automaton accepts no strings.
func IsEmpty(a *Automaton) bool {
	if a.isAccept.Test(uint(a.start)) {
		// Common case: it accepts the empty string
		return false
	}
	live := a.reachable()
	return !live.intersects(a.isAccept)
}

// Reachable Returns the states reachable from the start state, in declaration order.
func Reachable(a *Automaton) []string {
	return a.names(a.reachable().GetArray())
}

// reachable Returns the set of states reachable from the start state over any symbol.
func (a *Automaton) reachable() *StateSet {
	live := newStateSet(len(a.states))
	live.add(a.start)

	workList := []int{a.start}
	for len(workList) > 0 {
		state := workList[0]
		workList = workList[1:]
		for _, dests := range a.delta[state] {
			for _, dest := range dests {
				if !live.contains(dest) {
					live.add(dest)
					workList = append(workList, dest)
				}
			}
		}
	}
	return live
}

// Totalize Returns a DFA in which every state has a transition on every alphabet symbol.
// Missing transitions are redirected to a non-accepting sink state named sink
// (DefaultSinkState when empty), which loops to itself. A DFA that is already complete is
// returned unchanged.
func Totalize(a *Automaton, sink string) (*Automaton, error) {
	if a.kind != DFA || !a.deterministic {
		return nil, fmt.Errorf("%w: cannot totalize a %s", ErrNotDeterministic, a.kind)
	}
	if sink == "" {
		sink = DefaultSinkState
	}

	def := a.Definition()
	missing := false
	for _, state := range def.States {
		for _, symbol := range def.Alphabet {
			if len(def.Transitions[state][symbol]) == 0 {
				missing = true
				def.Transitions.Add(state, symbol, sink)
			}
		}
	}
	if !missing {
		return a, nil
	}
	if _, ok := a.stateIndex[sink]; ok {
		return nil, fmt.Errorf("%w: sink state %q is already declared", ErrInvalidAutomaton, sink)
	}

	def.States = append(def.States, sink)
	for _, symbol := range def.Alphabet {
		if len(def.Transitions[sink][symbol]) == 0 {
			def.Transitions.Add(sink, symbol, sink)
		}
	}
	return FromDefinition(def)
}

// Complement Returns a DFA accepting exactly the words over the alphabet that a rejects.
func Complement(a *Automaton) (*Automaton, error) {
	total, err := Totalize(a, "")
	if err != nil {
		return nil, err
	}
	def := total.Definition()
	def.Accepting = def.Accepting[:0]
	for _, state := range def.States {
		if !total.IsAccept(state) {
			def.Accepting = append(def.Accepting, state)
		}
	}
	return FromDefinition(def)
}
