package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/config"
	"github.com/geange/automata/internal/store"
	"github.com/geange/automata/turing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endsWithAB = `
kind: NFA
states: [q0, q1, q2]
alphabet: [a, b]
start_state: q0
accepting_states: [q2]
transitions:
  q0: {a: [q0, q1], b: [q0]}
  q1: {b: [q2]}
`

const oneAccepter = `
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

const runner = `
states: [run, acc, rej]
blank_symbol: _
transitions:
  - [run, _, run, _, R]
initial_state: run
accept_state: acc
reject_state: rej
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// workspace writes a configuration with a file-backed log inside a fresh directory and
// returns the --config flag pointing at it.
func workspace(t *testing.T) (dir string, cfgFlag []string) {
	t.Helper()
	dir = t.TempDir()

	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "automata.json")
	cfg.Turing.StepLimit = 500
	path := filepath.Join(dir, "automata.yaml")
	require.NoError(t, config.Write(path, cfg))

	return dir, []string{"--config", path}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "automata.yaml")

	out, err := run(t, "init", "--config", path, "--store", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
}

func TestAcceptsFromFile(t *testing.T) {
	dir, cfgFlag := workspace(t)
	nfa := writeFile(t, dir, "nfa.yaml", endsWithAB)

	out, err := run(t, append(cfgFlag, "accepts", nfa, "aab", "aba", "")...)
	require.NoError(t, err)
	assert.Equal(t, "\"aab\"\taccepted\n\"aba\"\trejected\n\"\"\trejected\n", out)
}

func TestLogWorkflow(t *testing.T) {
	dir, cfgFlag := workspace(t)
	nfa := writeFile(t, dir, "nfa.yaml", endsWithAB)
	cmd := func(args ...string) []string { return append(append([]string{}, cfgFlag...), args...) }

	out, err := run(t, cmd("log", "append", nfa)...)
	require.NoError(t, err)
	assert.Equal(t, "saved as NFA:0\n", out)

	out, err = run(t, cmd("accepts", "NFA:0", "babab")...)
	require.NoError(t, err)
	assert.Contains(t, out, "accepted")

	out, err = run(t, cmd("determinize", "NFA:0", "--save")...)
	require.NoError(t, err)
	assert.Equal(t, "saved as DFA:0\n", out)

	out, err = run(t, cmd("minimize", "DFA:0", "--save")...)
	require.NoError(t, err)
	assert.Equal(t, "saved as DFA:1\n", out)

	out, err = run(t, cmd("log", "list", "AFD")...)
	require.NoError(t, err)
	assert.Contains(t, out, "DFA:0\tstates=3")
	assert.Contains(t, out, "DFA:1\tstates=3")

	out, err = run(t, cmd("log", "show", "DFA", "0")...)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: DFA")
	assert.Contains(t, out, "start_state: q0")

	out, err = run(t, cmd("equivalence", "NFA:0", "DFA:1", "--seed", "3")...)
	require.NoError(t, err)
	assert.Contains(t, out, "equivalent on 50 sampled words")

	_, err = run(t, cmd("log", "show", "DFA", "9")...)
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

	_, err = run(t, cmd("minimize", "NFA:0")...)
	assert.True(t, errors.Is(err, automaton.ErrNotDeterministic), "got %v", err)
}

func TestDeterminizePrintsDocument(t *testing.T) {
	dir, cfgFlag := workspace(t)
	nfa := writeFile(t, dir, "nfa.yaml", endsWithAB)

	out, err := run(t, append(cfgFlag, "determinize", nfa, "--json")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "DFA"`)
	assert.Contains(t, out, `"{q0,q2}"`)

	_, err = os.Stat(filepath.Join(dir, "automata.json"))
	assert.True(t, os.IsNotExist(err), "nothing is saved without --save")
}

func TestEquivalenceNotEquivalent(t *testing.T) {
	dir, cfgFlag := workspace(t)
	nfa := writeFile(t, dir, "nfa.yaml", endsWithAB)
	all := writeFile(t, dir, "all.yaml", `
kind: DFA
states: [s]
alphabet: [a, b]
start_state: s
accepting_states: [s]
transitions:
  s: {a: [s], b: [s]}
`)

	out, err := run(t, append(cfgFlag, "equivalence", nfa, all, "--seed", "9", "-n", "10")...)
	require.NoError(t, err)
	assert.Contains(t, out, "not equivalent")

	_, err = run(t, append(cfgFlag, "equivalence", nfa, all, "-n", "100", "--max-length", "2")...)
	assert.True(t, errors.Is(err, automaton.ErrInsufficientWordSpace), "got %v", err)
}

func TestTuring(t *testing.T) {
	dir, cfgFlag := workspace(t)
	machine := writeFile(t, dir, "machine.yaml", oneAccepter)

	out, err := run(t, append(cfgFlag, "turing", machine, "1", "0")...)
	require.NoError(t, err)
	assert.Equal(t, "\"1\"\taccepted\ttape=1_\tsteps=1\n\"0\"\tstuck\ttape=0_\tsteps=0\n", out)

	loop := writeFile(t, dir, "loop.yaml", runner)
	_, err = run(t, append(cfgFlag, "turing", loop, "")...)
	assert.True(t, errors.Is(err, turing.ErrExecutionTimeout), "got %v", err)
}

func TestConfigErrors(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "log", "list", "DFA")
	assert.Error(t, err)

	_, cfgFlag := workspace(t)
	_, err = run(t, append(cfgFlag, "--store", "etcd", "log", "list", "DFA")...)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig), "got %v", err)
}

func TestRegExp(t *testing.T) {
	_, cfgFlag := workspace(t)
	cmd := func(args ...string) []string { return append(append([]string{}, cfgFlag...), args...) }

	out, err := run(t, cmd("regexp", "(a|b)*ab", "--save")...)
	require.NoError(t, err)
	assert.Equal(t, "saved as NFA:0\n", out)

	out, err = run(t, cmd("accepts", "NFA:0", "babab", "aba")...)
	require.NoError(t, err)
	assert.Equal(t, "\"babab\"\taccepted\n\"aba\"\trejected\n", out)

	out, err = run(t, cmd("regexp", "a.", "--alphabet", "a,b", "--determinize", "--json")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "DFA"`)
	assert.Contains(t, out, `"alphabet": [`)

	_, err = run(t, cmd("regexp", "(a")...)
	assert.True(t, errors.Is(err, automaton.ErrInvalidRegExp), "got %v", err)

	_, err = run(t, cmd("regexp", "(a|b)*a(a|b){20}", "--determinize")...)
	assert.True(t, errors.Is(err, automaton.ErrTooComplexToDeterminize), "got %v", err)

	_, err = run(t, cmd("regexp", "(){200000000}")...)
	assert.True(t, errors.Is(err, automaton.ErrInvalidRegExp), "got %v", err)
}
