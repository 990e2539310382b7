// Package definition decodes automaton and Turing machine documents written in JSON or YAML.
//
// Documents are first parsed into generic values with yaml.v3 (JSON is accepted as YAML)
// and then decoded with mapstructure, so the same code serves files, CLI input and the
// bodies of HTTP requests.
package definition

import (
	"errors"
	"fmt"
	"os"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/turing"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrMalformedDocument is returned when a document cannot be decoded into a definition.
// Structural problems of a well-formed document are reported by the constructors instead
// (automaton.ErrInvalidAutomaton, turing.ErrInvalidMachine).
var ErrMalformedDocument = errors.New("malformed document")

// MachineDocument is the document form of a Turing machine. Each transition is a 5-tuple
// (state, read, next, write, direction).
type MachineDocument struct {
	States       []string   `json:"states" yaml:"states" mapstructure:"states"`
	Alphabet     []string   `json:"alphabet" yaml:"alphabet" mapstructure:"alphabet"`
	TapeAlphabet []string   `json:"tape_alphabet" yaml:"tape_alphabet" mapstructure:"tape_alphabet"`
	Blank        string     `json:"blank_symbol" yaml:"blank_symbol" mapstructure:"blank_symbol"`
	Transitions  [][]string `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
	Initial      string     `json:"initial_state" yaml:"initial_state" mapstructure:"initial_state"`
	Accept       string     `json:"accept_state" yaml:"accept_state" mapstructure:"accept_state"`
	Reject       string     `json:"reject_state" yaml:"reject_state" mapstructure:"reject_state"`
}

// Definition converts the document into a machine definition.
func (d MachineDocument) Definition() (turing.Definition, error) {
	def := turing.Definition{
		States:        d.States,
		InputAlphabet: d.Alphabet,
		TapeAlphabet:  d.TapeAlphabet,
		Blank:         d.Blank,
		Initial:       d.Initial,
		Accept:        d.Accept,
		Reject:        d.Reject,
		Rules:         make([]turing.Rule, 0, len(d.Transitions)),
	}
	for i, tuple := range d.Transitions {
		if len(tuple) != 5 {
			return def, fmt.Errorf("%w: transition %d has %d fields, want 5", ErrMalformedDocument, i, len(tuple))
		}
		move, err := turing.ParseDirection(tuple[4])
		if err != nil {
			return def, fmt.Errorf("%w: transition %d: %w", turing.ErrInvalidMachine, i, err)
		}
		def.Rules = append(def.Rules, turing.Rule{
			State: tuple[0],
			Read:  tuple[1],
			Next:  tuple[2],
			Write: tuple[3],
			Move:  move,
		})
	}
	return def, nil
}

// Machine validates the document and builds the machine.
func (d MachineDocument) Machine() (*turing.Machine, error) {
	def, err := d.Definition()
	if err != nil {
		return nil, err
	}
	return turing.New(def)
}

func decode(raw any, out any) error {
	if _, ok := raw.(map[string]any); !ok {
		if _, ok := raw.(map[any]any); !ok {
			return fmt.Errorf("%w: expected a mapping, got %T", ErrMalformedDocument, raw)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return nil
}

func hasKey(raw any, key string) bool {
	switch m := raw.(type) {
	case map[string]any:
		_, ok := m[key]
		return ok
	case map[any]any:
		_, ok := m[key]
		return ok
	}
	return false
}

// DecodeAutomaton decodes a generic value, as produced by yaml.v3 or encoding/json, into
// an automaton definition. The "kind" key is required.
func DecodeAutomaton(raw any) (automaton.Definition, error) {
	var def automaton.Definition
	if err := decode(raw, &def); err != nil {
		return def, err
	}
	if !hasKey(raw, "kind") {
		return def, fmt.Errorf("%w: missing kind", ErrMalformedDocument)
	}
	return def, nil
}

// ParseAutomaton decodes a JSON or YAML automaton document.
func ParseAutomaton(data []byte) (automaton.Definition, error) {
	raw, err := parse(data)
	if err != nil {
		return automaton.Definition{}, err
	}
	return DecodeAutomaton(raw)
}

// LoadAutomaton reads, decodes and validates the automaton document at path.
func LoadAutomaton(path string) (*automaton.Automaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := ParseAutomaton(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a, err := automaton.FromDefinition(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// DecodeMachine decodes a generic value into a Turing machine document.
func DecodeMachine(raw any) (MachineDocument, error) {
	var doc MachineDocument
	err := decode(raw, &doc)
	return doc, err
}

// ParseMachine decodes a JSON or YAML Turing machine document.
func ParseMachine(data []byte) (MachineDocument, error) {
	raw, err := parse(data)
	if err != nil {
		return MachineDocument{}, err
	}
	return DecodeMachine(raw)
}

// LoadMachine reads, decodes and validates the Turing machine document at path.
func LoadMachine(path string) (*turing.Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseMachine(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := doc.Machine()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func parse(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return raw, nil
}
