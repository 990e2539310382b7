// Package server exposes the automaton operations and the automaton log as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	automaton "github.com/geange/automata"
	"github.com/geange/automata/internal/definition"
	"github.com/geange/automata/internal/logging"
	"github.com/geange/automata/internal/store"
	"github.com/geange/automata/turing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	defaultStepLimit   = 100000
	defaultWorkLimit   = 10000
	defaultSampleLimit = 1000
	defaultLengthLimit = 64
	maxBodyBytes       = 1 << 20
)

// errBadRequest marks request errors that are not covered by a domain sentinel.
var errBadRequest = errors.New("bad request")

type Server struct {
	log    store.Log
	logger *zap.Logger

	registry *prometheus.Registry
	metrics  *metrics

	stepLimit   int
	workLimit   int
	samples     int
	maxLength   int
	sampleLimit int
	lengthLimit int
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStepLimit bounds every Turing machine execution. Requests may only lower it.
func WithStepLimit(limit int) Option {
	return func(s *Server) {
		s.stepLimit = limit
	}
}

// WithWorkLimit bounds the subsets explored when determinizing.
func WithWorkLimit(limit int) Option {
	return func(s *Server) {
		s.workLimit = limit
	}
}

// WithEquivalenceLimits sets the largest sample size and word length a request may ask for.
func WithEquivalenceLimits(samples, maxLength int) Option {
	return func(s *Server) {
		s.sampleLimit = samples
		s.lengthLimit = maxLength
	}
}

// WithEquivalenceDefaults sets the sample size and maximum word length used when an
// equivalence request leaves them out.
func WithEquivalenceDefaults(samples, maxLength int) Option {
	return func(s *Server) {
		s.samples = samples
		s.maxLength = maxLength
	}
}

func New(log store.Log, opts ...Option) *Server {
	s := &Server{
		log:       log,
		logger:      logging.NewNop(),
		registry:    prometheus.NewRegistry(),
		stepLimit:   defaultStepLimit,
		workLimit:   defaultWorkLimit,
		samples:     automaton.DefaultSampleSize,
		maxLength:   automaton.DefaultMaxLength,
		sampleLimit: defaultSampleLimit,
		lengthLimit: defaultLengthLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.registry)
	return s
}

// Handler returns the router serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/automata", func(r chi.Router) {
		r.Post("/", s.handle("append", s.appendAutomaton))
		r.Post("/regexp", s.handle("regexp", s.compileRegExp))
		r.Get("/{kind}", s.handle("list", s.listAutomata))
		r.Get("/{kind}/{index}", s.handle("get", s.getAutomaton))
		r.Post("/{kind}/{index}/accepts", s.handle("accepts", s.accepts))
		r.Post("/{kind}/{index}/determinize", s.handle("determinize", s.determinize))
		r.Post("/{kind}/{index}/minimize", s.handle("minimize", s.minimize))
	})
	r.Post("/equivalence", s.handle("equivalence", s.equivalence))
	r.Post("/turing/execute", s.handle("turing", s.executeTuring))

	return r
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle runs fn, renders its error, and records the operation metrics.
func (s *Server) handle(operation string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		err := fn(w, r)
		outcome := "ok"
		if err != nil {
			outcome = "error"
			s.writeError(w, r, operation, err)
		}
		s.metrics.requests.WithLabelValues(operation, outcome).Inc()
		s.metrics.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// statusOf maps an operation error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, turing.ErrExecutionTimeout):
		return http.StatusRequestTimeout
	case errors.Is(err, automaton.ErrInsufficientWordSpace),
		errors.Is(err, automaton.ErrNotDeterministic),
		errors.Is(err, automaton.ErrTooComplexToDeterminize),
		errors.Is(err, automaton.ErrAmbiguousStateName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, automaton.ErrInvalidAutomaton),
		errors.Is(err, automaton.ErrInvalidSampleOption),
		errors.Is(err, automaton.ErrInvalidRegExp),
		errors.Is(err, turing.ErrInvalidMachine),
		errors.Is(err, definition.ErrMalformedDocument),
		errors.Is(err, store.ErrUnknownKind):
		return http.StatusBadRequest
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := statusOf(err)
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("operation failed", fields...)
	} else {
		s.logger.Info("operation rejected", fields...)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
