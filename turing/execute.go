package turing

import (
	"context"
	"fmt"
)

// contextCheckInterval is how many steps run between two checks of the caller's context.
const contextCheckInterval = 1024

// Halt tells why an execution stopped.
type Halt int

const (
	HaltAccepted Halt = iota // reached the accept state
	HaltRejected             // reached the reject state
	HaltStuck                // no transition for the current state and symbol
)

func (h Halt) String() string {
	switch h {
	case HaltAccepted:
		return "accepted"
	case HaltRejected:
		return "rejected"
	case HaltStuck:
		return "stuck"
	}
	return fmt.Sprintf("Halt(%d)", int(h))
}

func (h Halt) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Result is the outcome of one execution.
type Result struct {
	Accepted bool   `json:"accepted"`
	Tape     string `json:"tape"`
	State    string `json:"state"`
	Halt     Halt   `json:"halt"`
	Steps    int    `json:"steps"`
	Head     int    `json:"head"`
}

type executeOption struct {
	stepLimit int
}

type ExecuteOption func(*executeOption)

// WithStepLimit bounds the number of steps; exceeding it fails with ErrExecutionTimeout.
// A limit of 0 means unbounded, which never returns for a machine that loops forever.
func WithStepLimit(limit int) ExecuteOption {
	return func(o *executeOption) {
		o.stepLimit = limit
	}
}

// Execute runs the machine on word until it accepts, rejects or gets stuck.
func (m *Machine) Execute(word string, options ...ExecuteOption) (*Result, error) {
	return m.ExecuteContext(context.Background(), word, options...)
}

// ExecuteContext is Execute with cancellation: if ctx ends before the machine halts, the
// execution fails with ErrExecutionTimeout.
func (m *Machine) ExecuteContext(ctx context.Context, word string, options ...ExecuteOption) (*Result, error) {
	opts := &executeOption{}
	for _, fn := range options {
		fn(opts)
	}

	tape := NewTape(m.blank, word)
	state := m.initial
	head := 0
	steps := 0

	for state != m.accept && state != m.reject {
		act, ok := m.rules[ruleKey{state: state, read: tape.Read(head)}]
		if !ok {
			return &Result{
				Tape:  tape.String(),
				State: state,
				Halt:  HaltStuck,
				Steps: steps,
				Head:  head,
			}, nil
		}
		if opts.stepLimit > 0 && steps >= opts.stepLimit {
			return nil, fmt.Errorf("%w: no halt after %d steps", ErrExecutionTimeout, steps)
		}
		if steps%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w after %d steps: %w", ErrExecutionTimeout, steps, err)
			}
		}

		tape.Write(head, act.write)
		state = act.next
		head += int(act.move)
		steps++
	}

	halt := HaltRejected
	if state == m.accept {
		halt = HaltAccepted
	}
	return &Result{
		Accepted: halt == HaltAccepted,
		Tape:     tape.String(),
		State:    state,
		Halt:     halt,
		Steps:    steps,
		Head:     head,
	}, nil
}
