package automaton

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Kind Tags an automaton as deterministic or nondeterministic. Acceptance and the
// transformation operations dispatch on this tag, never on the shape of the transitions.
type Kind int

const (
	DFA = Kind(iota) // Deterministic finite automaton
	NFA              // Nondeterministic finite automaton
)

func (k Kind) String() string {
	switch k {
	case DFA:
		return "DFA"
	case NFA:
		return "NFA"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "DFA"/"NFA" as well as the "AFD"/"AFN" spelling used by the
// persisted automaton collections, in any letter case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DFA", "AFD":
		return DFA, nil
	case "NFA", "AFN":
		return NFA, nil
	}
	return 0, fmt.Errorf("unknown automaton kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k != DFA && k != NFA {
		return nil, fmt.Errorf("unknown automaton kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Transitions Maps a source state to its symbols, and each symbol to the destination states.
type Transitions map[string]map[string][]string

// Add Appends dest to the destinations of (source, symbol).
func (t Transitions) Add(source, symbol string, dest ...string) {
	bySymbol, ok := t[source]
	if !ok {
		bySymbol = make(map[string][]string)
		t[source] = bySymbol
	}
	bySymbol[symbol] = append(bySymbol[symbol], dest...)
}

// Definition is the plain value form of an automaton, as exchanged with stores, documents
// and the HTTP service.
type Definition struct {
	Kind        Kind        `json:"kind" yaml:"kind" mapstructure:"kind"`
	States      []string    `json:"states" yaml:"states" mapstructure:"states"`
	Alphabet    []string    `json:"alphabet" yaml:"alphabet" mapstructure:"alphabet"`
	Start       string      `json:"start_state" yaml:"start_state" mapstructure:"start_state"`
	Accepting   []string    `json:"accepting_states" yaml:"accepting_states" mapstructure:"accepting_states"`
	Transitions Transitions `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}

// Clone Returns a deep copy of the definition.
func (d Definition) Clone() Definition {
	c := Definition{
		Kind:      d.Kind,
		States:    slices.Clone(d.States),
		Alphabet:  slices.Clone(d.Alphabet),
		Start:     d.Start,
		Accepting: slices.Clone(d.Accepting),
	}
	if d.Transitions != nil {
		c.Transitions = make(Transitions, len(d.Transitions))
		for source, bySymbol := range d.Transitions {
			m := make(map[string][]string, len(bySymbol))
			for symbol, dests := range bySymbol {
				m[symbol] = slices.Clone(dests)
			}
			c.Transitions[source] = m
		}
	}
	return c
}

// Automaton Represents a finite automaton over string-named states and string symbols.
// State and symbol names are interned to integers on construction; state i is the i-th
// declared state and the transition relation is a dense [state][symbol] table of
// destination lists. An Automaton is immutable: every operation builds a new one.
type Automaton struct {
	kind Kind

	states     []string
	stateIndex map[string]int

	// Declared alphabet, in the caller's order.
	alphabet []string

	// Every symbol known to the automaton: the alphabet first, followed by symbols that only
	// appear in transitions (sorted).
	symbols     []string
	symbolIndex map[string]int

	start    int
	isAccept *bitset.BitSet

	// delta[state][symbol] holds the destination states; nil when no transition is defined.
	delta [][][]int

	// True if no (state, symbol) pair has more than one destination.
	deterministic bool
}

// New validates the raw state/alphabet/transition data and builds an automaton.
// The start state, every accepting state and every transition source or destination must
// be a declared state; nothing else is checked.
func New(kind Kind, states, alphabet []string, start string, accepting []string, transitions Transitions) (*Automaton, error) {
	if kind != DFA && kind != NFA {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidAutomaton, int(kind))
	}

	a := &Automaton{
		kind:          kind,
		stateIndex:    make(map[string]int, len(states)),
		alphabet:      slices.Clone(alphabet),
		symbolIndex:   make(map[string]int, len(alphabet)),
		deterministic: true,
	}

	for _, s := range states {
		if _, ok := a.stateIndex[s]; ok {
			continue
		}
		a.stateIndex[s] = len(a.states)
		a.states = append(a.states, s)
	}
	if len(a.states) == 0 {
		return nil, fmt.Errorf("%w: no states declared", ErrInvalidAutomaton)
	}

	startIdx, ok := a.stateIndex[start]
	if !ok {
		return nil, fmt.Errorf("%w: start state %q is not a declared state", ErrInvalidAutomaton, start)
	}
	a.start = startIdx

	a.isAccept = bitset.New(uint(len(a.states)))
	for _, s := range accepting {
		idx, ok := a.stateIndex[s]
		if !ok {
			return nil, fmt.Errorf("%w: accepting state %q is not a declared state", ErrInvalidAutomaton, s)
		}
		a.isAccept.Set(uint(idx))
	}

	for _, symbol := range alphabet {
		a.internSymbol(symbol)
	}

	sources := make([]string, 0, len(transitions))
	extra := make(map[string]struct{})
	for source, bySymbol := range transitions {
		sources = append(sources, source)
		for symbol := range bySymbol {
			if _, ok := a.symbolIndex[symbol]; !ok {
				extra[symbol] = struct{}{}
			}
		}
	}
	sort.Strings(sources)
	extraSymbols := make([]string, 0, len(extra))
	for symbol := range extra {
		extraSymbols = append(extraSymbols, symbol)
	}
	sort.Strings(extraSymbols)
	for _, symbol := range extraSymbols {
		a.internSymbol(symbol)
	}

	a.delta = make([][][]int, len(a.states))
	for i := range a.delta {
		a.delta[i] = make([][]int, len(a.symbols))
	}

	for _, source := range sources {
		from, ok := a.stateIndex[source]
		if !ok {
			return nil, fmt.Errorf("%w: transition source %q is not a declared state", ErrInvalidAutomaton, source)
		}
		for symbol, dests := range transitions[source] {
			sym := a.symbolIndex[symbol]
			for _, dest := range dests {
				to, ok := a.stateIndex[dest]
				if !ok {
					return nil, fmt.Errorf("%w: transition %s --%s--> %s leads to an undeclared state",
						ErrInvalidAutomaton, source, symbol, dest)
				}
				if !slices.Contains(a.delta[from][sym], to) {
					a.delta[from][sym] = append(a.delta[from][sym], to)
				}
			}
			if len(a.delta[from][sym]) > 1 {
				a.deterministic = false
			}
		}
	}

	return a, nil
}

// FromDefinition Builds an automaton from its value form.
func FromDefinition(def Definition) (*Automaton, error) {
	return New(def.Kind, def.States, def.Alphabet, def.Start, def.Accepting, def.Transitions)
}

func (a *Automaton) internSymbol(symbol string) {
	if _, ok := a.symbolIndex[symbol]; ok {
		return
	}
	a.symbolIndex[symbol] = len(a.symbols)
	a.symbols = append(a.symbols, symbol)
}

// Kind Returns the DFA/NFA tag.
func (a *Automaton) Kind() Kind {
	return a.kind
}

// States Returns the declared states in declaration order.
func (a *Automaton) States() []string {
	return slices.Clone(a.states)
}

// Alphabet Returns the declared alphabet.
func (a *Automaton) Alphabet() []string {
	return slices.Clone(a.alphabet)
}

// Start Returns the start state.
func (a *Automaton) Start() string {
	return a.states[a.start]
}

// Accepting Returns the accepting states in declaration order.
func (a *Automaton) Accepting() []string {
	accepting := make([]string, 0, a.isAccept.Count())
	for i, ok := a.isAccept.NextSet(0); ok; i, ok = a.isAccept.NextSet(i + 1) {
		accepting = append(accepting, a.states[i])
	}
	return accepting
}

// IsAccept Returns true if state is a declared accepting state.
func (a *Automaton) IsAccept(state string) bool {
	idx, ok := a.stateIndex[state]
	return ok && a.isAccept.Test(uint(idx))
}

// Destinations Returns the states reachable from state on symbol, or nil if the
// transition is not defined.
func (a *Automaton) Destinations(state, symbol string) []string {
	from, ok := a.stateIndex[state]
	if !ok {
		return nil
	}
	sym, ok := a.symbolIndex[symbol]
	if !ok {
		return nil
	}
	return a.names(a.delta[from][sym])
}

// NumStates How many states this automaton has.
func (a *Automaton) NumStates() int {
	return len(a.states)
}

// NumTransitions How many (source, symbol, dest) triples this automaton has.
func (a *Automaton) NumTransitions() int {
	count := 0
	for _, bySymbol := range a.delta {
		for _, dests := range bySymbol {
			count += len(dests)
		}
	}
	return count
}

// IsDeterministic Returns true if every defined (state, symbol) pair has exactly one
// destination. This is independent of the Kind tag.
func (a *Automaton) IsDeterministic() bool {
	return a.deterministic
}

// Definition Returns the value form of this automaton. Only defined transitions appear.
func (a *Automaton) Definition() Definition {
	def := Definition{
		Kind:        a.kind,
		States:      a.States(),
		Alphabet:    a.Alphabet(),
		Start:       a.Start(),
		Accepting:   a.Accepting(),
		Transitions: make(Transitions),
	}
	for from, bySymbol := range a.delta {
		for sym, dests := range bySymbol {
			if len(dests) > 0 {
				def.Transitions.Add(a.states[from], a.symbols[sym], a.names(dests)...)
			}
		}
	}
	return def
}

func (a *Automaton) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s start=%s accept=%v\n", a.kind, a.Start(), a.Accepting())
	for from, bySymbol := range a.delta {
		for sym, dests := range bySymbol {
			if len(dests) > 0 {
				fmt.Fprintf(&b, "  %s --%s--> %s\n", a.states[from], a.symbols[sym], strings.Join(a.names(dests), ","))
			}
		}
	}
	return b.String()
}

func (a *Automaton) names(states []int) []string {
	if len(states) == 0 {
		return nil
	}
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = a.states[s]
	}
	return names
}
