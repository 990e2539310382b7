// Package turing executes single-tape, single-head Turing machines.
//
// A Machine is an immutable definition; every Execute call builds its own tape, head and
// current state, so one machine can run any number of words, including concurrently.
package turing

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidMachine is returned when a machine definition is missing a required field or
// is internally inconsistent.
var ErrInvalidMachine = errors.New("invalid turing machine")

// ErrExecutionTimeout is returned when execution exceeds a caller-imposed step limit or the
// caller's context ends first.
var ErrExecutionTimeout = errors.New("turing machine execution timed out")

// Direction is the head movement of a transition.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// ParseDirection accepts "L"/"R" (or "left"/"right"), in any letter case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LEFT":
		return Left, nil
	case "R", "RIGHT":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "L"
	case Right:
		return "R"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Rule is one entry of the transition function: in State reading Read, write Write, move
// the head by Move and continue in Next.
type Rule struct {
	State string
	Read  string
	Next  string
	Write string
	Move  Direction
}

// Definition is the raw description of a machine.
type Definition struct {
	States        []string
	InputAlphabet []string
	TapeAlphabet  []string
	Blank         string
	Rules         []Rule
	Initial       string
	Accept        string
	Reject        string
}

type ruleKey struct {
	state string
	read  string
}

type action struct {
	next  string
	write string
	move  Direction
}

// Machine is a validated, immutable Turing machine.
type Machine struct {
	states        []string
	inputAlphabet []string
	tapeAlphabet  []string
	blank         string
	initial       string
	accept        string
	reject        string
	rules         map[ruleKey]action
}

// New validates def and builds a machine.
func New(def Definition) (*Machine, error) {
	if len(def.States) == 0 {
		return nil, fmt.Errorf("%w: no states declared", ErrInvalidMachine)
	}
	if def.Blank == "" {
		return nil, fmt.Errorf("%w: missing blank symbol", ErrInvalidMachine)
	}
	if len(def.TapeAlphabet) > 0 && !slices.Contains(def.TapeAlphabet, def.Blank) {
		return nil, fmt.Errorf("%w: blank symbol %q is not in the tape alphabet", ErrInvalidMachine, def.Blank)
	}

	declared := make(map[string]struct{}, len(def.States))
	for _, s := range def.States {
		declared[s] = struct{}{}
	}
	for _, field := range []struct {
		name, state string
	}{
		{"initial state", def.Initial},
		{"accept state", def.Accept},
		{"reject state", def.Reject},
	} {
		if field.state == "" {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidMachine, field.name)
		}
		if _, ok := declared[field.state]; !ok {
			return nil, fmt.Errorf("%w: %s %q is not a declared state", ErrInvalidMachine, field.name, field.state)
		}
	}
	if def.Accept == def.Reject {
		return nil, fmt.Errorf("%w: accept and reject state are both %q", ErrInvalidMachine, def.Accept)
	}

	m := &Machine{
		states:        slices.Clone(def.States),
		inputAlphabet: slices.Clone(def.InputAlphabet),
		tapeAlphabet:  slices.Clone(def.TapeAlphabet),
		blank:         def.Blank,
		initial:       def.Initial,
		accept:        def.Accept,
		reject:        def.Reject,
		rules:         make(map[ruleKey]action, len(def.Rules)),
	}
	for i, r := range def.Rules {
		if _, ok := declared[r.State]; !ok {
			return nil, fmt.Errorf("%w: rule %d: state %q is not declared", ErrInvalidMachine, i, r.State)
		}
		if _, ok := declared[r.Next]; !ok {
			return nil, fmt.Errorf("%w: rule %d: next state %q is not declared", ErrInvalidMachine, i, r.Next)
		}
		if r.Move != Left && r.Move != Right {
			return nil, fmt.Errorf("%w: rule %d: invalid direction %d", ErrInvalidMachine, i, int(r.Move))
		}
		key := ruleKey{state: r.State, read: r.Read}
		if _, ok := m.rules[key]; ok {
			return nil, fmt.Errorf("%w: rule %d: duplicate transition for (%s, %q)", ErrInvalidMachine, i, r.State, r.Read)
		}
		m.rules[key] = action{next: r.Next, write: r.Write, move: r.Move}
	}
	return m, nil
}

// States returns the declared states.
func (m *Machine) States() []string { return slices.Clone(m.states) }

// InputAlphabet returns the declared input alphabet.
func (m *Machine) InputAlphabet() []string { return slices.Clone(m.inputAlphabet) }

// TapeAlphabet returns the declared tape alphabet.
func (m *Machine) TapeAlphabet() []string { return slices.Clone(m.tapeAlphabet) }

// Blank returns the blank symbol.
func (m *Machine) Blank() string { return m.blank }

// Initial returns the initial state.
func (m *Machine) Initial() string { return m.initial }

// Accept returns the accepting halt state.
func (m *Machine) Accept() string { return m.accept }

// Reject returns the rejecting halt state.
func (m *Machine) Reject() string { return m.reject }

// NumRules returns the size of the transition function.
func (m *Machine) NumRules() int { return len(m.rules) }
