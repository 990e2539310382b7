package definition

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/turing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endsWithABYAML = `
kind: NFA
states: [q0, q1, q2]
alphabet: [a, b]
start_state: q0
accepting_states: [q2]
transitions:
  q0:
    a: [q0, q1]
    b: [q0]
  q1:
    b: [q2]
`

const endsWithABJSON = `{
  "kind": "AFN",
  "states": ["q0", "q1", "q2"],
  "alphabet": ["a", "b"],
  "start_state": "q0",
  "accepting_states": ["q2"],
  "transitions": {"q0": {"a": ["q0", "q1"], "b": ["q0"]}, "q1": {"b": ["q2"]}}
}`

const oneAccepterYAML = `
states: [q0, q_accept, q_reject]
alphabet: [0, 1]
tape_alphabet: [0, 1, _]
blank_symbol: _
transitions:
  - [q0, 1, q_accept, 1, R]
initial_state: q0
accept_state: q_accept
reject_state: q_reject
`

func TestParseAutomaton(t *testing.T) {
	want := automaton.Definition{
		Kind:      automaton.NFA,
		States:    []string{"q0", "q1", "q2"},
		Alphabet:  []string{"a", "b"},
		Start:     "q0",
		Accepting: []string{"q2"},
		Transitions: automaton.Transitions{
			"q0": {"a": {"q0", "q1"}, "b": {"q0"}},
			"q1": {"b": {"q2"}},
		},
	}

	tests := []struct {
		name string
		data string
	}{
		{name: "yaml", data: endsWithABYAML},
		{name: "json", data: endsWithABJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := ParseAutomaton([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, want, def)

			a, err := automaton.FromDefinition(def)
			require.NoError(t, err)
			assert.True(t, automaton.Accepts(a, "aab"))
		})
	}
}

func TestParseAutomatonNumericNames(t *testing.T) {
	data := `
kind: DFA
states: [0, 1]
alphabet: [0, 1]
start_state: 0
accepting_states: [1]
transitions:
  0: {1: [1]}
`
	def, err := ParseAutomaton([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, def.States)
	assert.Equal(t, "0", def.Start)
	assert.Equal(t, []string{"1"}, def.Transitions["0"]["1"])
}

func TestParseAutomatonErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: ""},
		{name: "not a mapping", data: "[1, 2]"},
		{name: "missing kind", data: "states: [q0]\nstart_state: q0\n"},
		{name: "unknown kind", data: "kind: PDA\nstates: [q0]\n"},
		{name: "unknown key", data: "kind: DFA\nfinals: [q0]\n"},
		{name: "invalid yaml", data: "kind: [DFA\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAutomaton([]byte(tt.data))
			assert.True(t, errors.Is(err, ErrMalformedDocument), "got %v", err)
		})
	}
}

func TestDecodeAutomatonFromJSONValue(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(endsWithABJSON), &raw))

	def, err := DecodeAutomaton(raw)
	require.NoError(t, err)
	assert.Equal(t, automaton.NFA, def.Kind)
	assert.Equal(t, []string{"q0", "q1"}, def.Transitions["q0"]["a"])
}

func TestLoadAutomaton(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "nfa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(endsWithABYAML), 0o644))
	a, err := LoadAutomaton(path)
	require.NoError(t, err)
	assert.Equal(t, automaton.NFA, a.Kind())

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("kind: DFA\nstates: [q0]\nstart_state: q1\n"), 0o644))
	_, err = LoadAutomaton(invalid)
	assert.True(t, errors.Is(err, automaton.ErrInvalidAutomaton), "got %v", err)

	_, err = LoadAutomaton(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestParseMachine(t *testing.T) {
	doc, err := ParseMachine([]byte(oneAccepterYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, doc.Alphabet)
	assert.Equal(t, [][]string{{"q0", "1", "q_accept", "1", "R"}}, doc.Transitions)

	m, err := doc.Machine()
	require.NoError(t, err)

	res, err := m.Execute("1")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, "1_", res.Tape)

	res, err = m.Execute("0")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
}

func TestMachineDocumentErrors(t *testing.T) {
	base := func() MachineDocument {
		doc, err := ParseMachine([]byte(oneAccepterYAML))
		require.NoError(t, err)
		return doc
	}

	t.Run("short tuple", func(t *testing.T) {
		doc := base()
		doc.Transitions = [][]string{{"q0", "1", "q_accept"}}
		_, err := doc.Machine()
		assert.True(t, errors.Is(err, ErrMalformedDocument), "got %v", err)
	})

	t.Run("bad direction", func(t *testing.T) {
		doc := base()
		doc.Transitions[0][4] = "S"
		_, err := doc.Machine()
		assert.True(t, errors.Is(err, turing.ErrInvalidMachine), "got %v", err)
	})

	t.Run("accept equals reject", func(t *testing.T) {
		doc := base()
		doc.Reject = doc.Accept
		_, err := doc.Machine()
		assert.True(t, errors.Is(err, turing.ErrInvalidMachine), "got %v", err)
	})
}

func TestLoadMachine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(oneAccepterYAML), 0o644))

	m, err := LoadMachine(path)
	require.NoError(t, err)
	assert.Equal(t, "_", m.Blank())
	assert.Equal(t, 1, m.NumRules())
}
