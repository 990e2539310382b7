package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	words       *prometheus.CounterVec
	turingSteps prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_requests_total",
				Help: "Total number of operations served, by outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "automata_operation_duration_seconds",
				Help:    "Duration of automaton operations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation"},
		),
		words: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automata_words_total",
				Help: "Words run against stored automata, by result",
			},
			[]string{"kind", "result"},
		),
		turingSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "automata_turing_steps",
				Help:    "Steps taken by Turing machine executions that halted",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.words, m.turingSteps)
	return m
}
