package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/definition"
	"gopkg.in/yaml.v3"
)

// parseRef splits a log reference such as "NFA:3". ok is false for anything else, which
// the commands then treat as a file path.
func parseRef(s string) (kind automaton.Kind, index int, ok bool) {
	prefix, suffix, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	kind, err := automaton.ParseKind(prefix)
	if err != nil {
		return 0, 0, false
	}
	index, err = strconv.Atoi(suffix)
	if err != nil {
		return 0, 0, false
	}
	return kind, index, true
}

// loadAutomaton resolves ref against the log, or reads it as an automaton document.
func (a *app) loadAutomaton(ctx context.Context, ref string) (*automaton.Automaton, error) {
	kind, index, ok := parseRef(ref)
	if !ok {
		return definition.LoadAutomaton(ref)
	}
	log, err := a.store()
	if err != nil {
		return nil, err
	}
	def, err := log.Get(ctx, kind, index)
	if err != nil {
		return nil, err
	}
	return automaton.FromDefinition(def)
}

// save appends x to the log and reports where it went.
func (a *app) save(ctx context.Context, w io.Writer, x *automaton.Automaton) error {
	log, err := a.store()
	if err != nil {
		return err
	}
	index, err := log.Append(ctx, x.Definition())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "saved as %s:%d\n", x.Kind(), index)
	return nil
}

func writeDocument(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
