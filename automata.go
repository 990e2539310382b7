package automaton

import "strconv"

// Automata Builds small deterministic automata over a given alphabet.
type Automata struct {
}

var defaultAutomata = &Automata{}

// MakeEmpty
// Returns a new (deterministic) automaton with the empty language.
func (*Automata) MakeEmpty(alphabet []string) (*Automaton, error) {
	return New(DFA, []string{"q0"}, alphabet, "q0", nil, nil)
}

// MakeEmptyString
// Returns a new (deterministic) automaton that accepts only the empty string.
func (*Automata) MakeEmptyString(alphabet []string) (*Automaton, error) {
	return New(DFA, []string{"q0"}, alphabet, "q0", []string{"q0"}, nil)
}

// MakeAnyString
// Returns a new (deterministic) automaton that accepts all strings over the alphabet.
func (*Automata) MakeAnyString(alphabet []string) (*Automaton, error) {
	transitions := make(Transitions)
	for _, symbol := range alphabet {
		transitions.Add("q0", symbol, "q0")
	}
	return New(DFA, []string{"q0"}, alphabet, "q0", []string{"q0"}, transitions)
}

// MakeString
// Returns a new (deterministic) automaton that accepts only the given word, read one rune
// per symbol.
func (*Automata) MakeString(alphabet []string, word string) (*Automaton, error) {
	states := []string{"q0"}
	transitions := make(Transitions)
	for _, r := range word {
		next := "q" + strconv.Itoa(len(states))
		transitions.Add(states[len(states)-1], string(r), next)
		states = append(states, next)
	}
	return New(DFA, states, alphabet, "q0", []string{states[len(states)-1]}, transitions)
}
