package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/definition"
	"github.com/geange/automata/turing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Reference names one entry of the automaton log.
type Reference struct {
	Kind  automaton.Kind `json:"kind"`
	Index int            `json:"index"`
}

// StoredResponse is returned by every operation that appends to the log.
type StoredResponse struct {
	Reference
	Automaton automaton.Definition `json:"automaton"`
}

type AcceptsRequest struct {
	Word string `json:"word"`
}

type AcceptsResponse struct {
	Word     string `json:"word"`
	Accepted bool   `json:"accepted"`
}

type EquivalenceRequest struct {
	First     Reference `json:"first"`
	Second    Reference `json:"second"`
	Samples   int       `json:"samples,omitempty"`
	MaxLength int       `json:"max_length,omitempty"`
	// Seed makes the sample reproducible; zero draws a random one.
	Seed uint64 `json:"seed,omitempty"`
}

// RegExpRequest compiles Pattern into an NFA. Alphabet defaults to the pattern's characters.
type RegExpRequest struct {
	Pattern  string   `json:"pattern"`
	Alphabet []string `json:"alphabet,omitempty"`
}

type TuringRequest struct {
	Machine   any    `json:"machine"`
	Word      string `json:"word"`
	StepLimit int    `json:"step_limit,omitempty"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return nil
}

func reference(r *http.Request) (Reference, error) {
	kind, err := automaton.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	ref := Reference{Kind: kind}
	if raw := chi.URLParam(r, "index"); raw != "" {
		ref.Index, err = strconv.Atoi(raw)
		if err != nil {
			return Reference{}, fmt.Errorf("%w: invalid index %q", errBadRequest, raw)
		}
	}
	return ref, nil
}

func (s *Server) load(ctx context.Context, ref Reference) (*automaton.Automaton, error) {
	def, err := s.log.Get(ctx, ref.Kind, ref.Index)
	if err != nil {
		return nil, err
	}
	return automaton.FromDefinition(def)
}

func (s *Server) appendLog(ctx context.Context, a *automaton.Automaton) (StoredResponse, error) {
	def := a.Definition()
	index, err := s.log.Append(ctx, def)
	if err != nil {
		return StoredResponse{}, err
	}
	return StoredResponse{Reference: Reference{Kind: def.Kind, Index: index}, Automaton: def}, nil
}

func (s *Server) appendAutomaton(w http.ResponseWriter, r *http.Request) error {
	var raw any
	if err := decodeBody(r, &raw); err != nil {
		return err
	}
	def, err := definition.DecodeAutomaton(raw)
	if err != nil {
		return err
	}
	a, err := automaton.FromDefinition(def)
	if err != nil {
		return err
	}
	resp, err := s.appendLog(r.Context(), a)
	if err != nil {
		return err
	}
	s.logger.Info("automaton stored", zap.Stringer("kind", resp.Kind), zap.Int("index", resp.Index))
	writeJSON(w, http.StatusCreated, resp)
	return nil
}

func (s *Server) compileRegExp(w http.ResponseWriter, r *http.Request) error {
	var req RegExpRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	var options []automaton.RegExpOption
	if req.Alphabet != nil {
		options = append(options, automaton.WithAlphabet(req.Alphabet))
	}
	re, err := automaton.NewRegExp(req.Pattern, options...)
	if err != nil {
		return err
	}
	a, err := re.ToAutomaton()
	if err != nil {
		return err
	}
	resp, err := s.appendLog(r.Context(), a)
	if err != nil {
		return err
	}
	s.logger.Info("regular expression compiled",
		zap.String("pattern", req.Pattern),
		zap.Int("index", resp.Index),
		zap.Int("states", a.NumStates()),
	)
	writeJSON(w, http.StatusCreated, resp)
	return nil
}

func (s *Server) listAutomata(w http.ResponseWriter, r *http.Request) error {
	ref, err := reference(r)
	if err != nil {
		return err
	}
	defs, err := s.log.List(r.Context(), ref.Kind)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, defs)
	return nil
}

func (s *Server) getAutomaton(w http.ResponseWriter, r *http.Request) error {
	ref, err := reference(r)
	if err != nil {
		return err
	}
	def, err := s.log.Get(r.Context(), ref.Kind, ref.Index)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, def)
	return nil
}

func (s *Server) accepts(w http.ResponseWriter, r *http.Request) error {
	ref, err := reference(r)
	if err != nil {
		return err
	}
	var req AcceptsRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	a, err := s.load(r.Context(), ref)
	if err != nil {
		return err
	}

	accepted := automaton.Accepts(a, req.Word)
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	s.metrics.words.WithLabelValues(ref.Kind.String(), result).Inc()

	writeJSON(w, http.StatusOK, AcceptsResponse{Word: req.Word, Accepted: accepted})
	return nil
}

func (s *Server) determinize(w http.ResponseWriter, r *http.Request) error {
	ref, err := reference(r)
	if err != nil {
		return err
	}
	if ref.Kind != automaton.NFA {
		return fmt.Errorf("%w: determinize expects an NFA, got %s", errBadRequest, ref.Kind)
	}
	nfa, err := s.load(r.Context(), ref)
	if err != nil {
		return err
	}
	dfa, err := automaton.DeterminizeWithLimit(nfa, s.workLimit)
	if err != nil {
		return err
	}
	resp, err := s.appendLog(r.Context(), dfa)
	if err != nil {
		return err
	}
	s.logger.Info("automaton determinized",
		zap.Int("nfa", ref.Index),
		zap.Int("dfa", resp.Index),
		zap.Int("states", dfa.NumStates()),
	)
	writeJSON(w, http.StatusCreated, resp)
	return nil
}

func (s *Server) minimize(w http.ResponseWriter, r *http.Request) error {
	ref, err := reference(r)
	if err != nil {
		return err
	}
	if ref.Kind != automaton.DFA {
		return fmt.Errorf("%w: minimize expects a DFA, got %s", errBadRequest, ref.Kind)
	}
	dfa, err := s.load(r.Context(), ref)
	if err != nil {
		return err
	}
	minimal, err := automaton.Minimize(dfa)
	if err != nil {
		return err
	}
	resp, err := s.appendLog(r.Context(), minimal)
	if err != nil {
		return err
	}
	s.logger.Info("automaton minimized",
		zap.Int("dfa", ref.Index),
		zap.Int("minimal", resp.Index),
		zap.Int("states_before", dfa.NumStates()),
		zap.Int("states_after", minimal.NumStates()),
	)
	writeJSON(w, http.StatusCreated, resp)
	return nil
}

func (s *Server) equivalence(w http.ResponseWriter, r *http.Request) error {
	var req EquivalenceRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	a1, err := s.load(r.Context(), req.First)
	if err != nil {
		return err
	}
	a2, err := s.load(r.Context(), req.Second)
	if err != nil {
		return err
	}

	opts := []automaton.SampleOption{
		automaton.WithSampleSize(s.samples),
		automaton.WithMaxLength(s.maxLength),
	}
	if req.Samples > s.sampleLimit {
		return fmt.Errorf("%w: samples %d above the limit of %d", automaton.ErrInvalidSampleOption, req.Samples, s.sampleLimit)
	}
	if req.MaxLength > s.lengthLimit {
		return fmt.Errorf("%w: max_length %d above the limit of %d", automaton.ErrInvalidSampleOption, req.MaxLength, s.lengthLimit)
	}
	if req.Samples != 0 {
		opts = append(opts, automaton.WithSampleSize(req.Samples))
	}
	if req.MaxLength != 0 {
		opts = append(opts, automaton.WithMaxLength(req.MaxLength))
	}
	if req.Seed != 0 {
		opts = append(opts, automaton.WithRand(rand.New(rand.NewPCG(req.Seed, req.Seed))))
	}

	report, err := automaton.SampleEquivalence(a1, a2, opts...)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, report)
	return nil
}

func (s *Server) executeTuring(w http.ResponseWriter, r *http.Request) error {
	var req TuringRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if req.Machine == nil {
		return fmt.Errorf("%w: missing machine", errBadRequest)
	}
	doc, err := definition.DecodeMachine(req.Machine)
	if err != nil {
		return err
	}
	m, err := doc.Machine()
	if err != nil {
		return err
	}

	limit := s.stepLimit
	if req.StepLimit > 0 && req.StepLimit < limit {
		limit = req.StepLimit
	}
	res, err := m.ExecuteContext(r.Context(), req.Word, turing.WithStepLimit(limit))
	if err != nil {
		return err
	}
	s.metrics.turingSteps.Observe(float64(res.Steps))

	writeJSON(w, http.StatusOK, res)
	return nil
}
