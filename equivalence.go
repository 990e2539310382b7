package automaton

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

const (
	DefaultSampleSize = 50
	DefaultMaxLength  = 5

	// MaxSampleSize and MaxWordLength bound the options accepted by SampleEquivalence.
	MaxSampleSize = 10000
	MaxWordLength = 1024
)

// EquivalenceReport Classifies each sampled word by how the two automata treat it.
type EquivalenceReport struct {
	Words          []string `json:"words"`
	AcceptedByBoth []string `json:"accepted_by_both"`
	RejectedByBoth []string `json:"rejected_by_both"`
	Disagreements  []string `json:"disagreements"`
	Equivalent     bool     `json:"equivalent"`
}

type sampleOption struct {
	size      int
	maxLength int
	rnd       *rand.Rand
}

type SampleOption func(*sampleOption)

// WithSampleSize Sets how many distinct words are drawn.
func WithSampleSize(size int) SampleOption {
	return func(o *sampleOption) {
		o.size = size
	}
}

// WithMaxLength Sets the maximum word length; lengths are drawn uniformly from [1, maxLength].
func WithMaxLength(maxLength int) SampleOption {
	return func(o *sampleOption) {
		o.maxLength = maxLength
	}
}

// WithRand Sets the random source, for reproducible samples.
func WithRand(rnd *rand.Rand) SampleOption {
	return func(o *sampleOption) {
		o.rnd = rnd
	}
}

// SampleEquivalence Empirically compares the languages of a1 and a2.
//
// It draws distinct random words over a1's alphabet and runs both automata on each. The
// automata are reported equivalent when they agree on every sampled word. This is a
// probabilistic check, not a proof: languages that differ only on words outside the sample
// are reported equivalent.
func SampleEquivalence(a1, a2 *Automaton, options ...SampleOption) (*EquivalenceReport, error) {
	opts := &sampleOption{
		size:      DefaultSampleSize,
		maxLength: DefaultMaxLength,
	}
	for _, fn := range options {
		fn(opts)
	}
	if opts.size <= 0 || opts.size > MaxSampleSize {
		return nil, fmt.Errorf("%w: sample size %d not in [1, %d]", ErrInvalidSampleOption, opts.size, MaxSampleSize)
	}
	if opts.maxLength <= 0 || opts.maxLength > MaxWordLength {
		return nil, fmt.Errorf("%w: max length %d not in [1, %d]", ErrInvalidSampleOption, opts.maxLength, MaxWordLength)
	}
	if opts.rnd == nil {
		opts.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	alphabet := slices.Clone(a1.alphabet)
	slices.Sort(alphabet)
	alphabet = slices.Compact(alphabet)

	if space := WordSpace(len(alphabet), opts.maxLength, opts.size); space < opts.size {
		return nil, fmt.Errorf("%w: %d words of length 1..%d over %d symbols, %d requested",
			ErrInsufficientWordSpace, space, opts.maxLength, len(alphabet), opts.size)
	}

	report := &EquivalenceReport{
		Words:          make([]string, 0),
		AcceptedByBoth: make([]string, 0),
		RejectedByBoth: make([]string, 0),
		Disagreements:  make([]string, 0),
	}

	seen := make(map[string]struct{})
	for len(seen) < opts.size {
		length := 1 + opts.rnd.IntN(opts.maxLength)
		symbols := make([]string, length)
		for i := range symbols {
			symbols[i] = alphabet[opts.rnd.IntN(len(alphabet))]
		}
		key := strings.Join(symbols, "\x00")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		word := strings.Join(symbols, "")
		report.Words = append(report.Words, word)

		r1 := AcceptsSymbols(a1, symbols)
		r2 := AcceptsSymbols(a2, symbols)
		switch {
		case r1 && r2:
			report.AcceptedByBoth = append(report.AcceptedByBoth, word)
		case !r1 && !r2:
			report.RejectedByBoth = append(report.RejectedByBoth, word)
		default:
			report.Disagreements = append(report.Disagreements, word)
		}
	}

	report.Equivalent = len(report.Disagreements) == 0
	return report, nil
}

// WordSpace Returns the number of distinct words of length 1..maxLength over numSymbols
// symbols, saturating at limit.
func WordSpace(numSymbols, maxLength, limit int) int {
	total, pow := 0, 1
	for i := 1; i <= maxLength; i++ {
		if numSymbols != 0 && pow > limit/numSymbols {
			return limit
		}
		pow *= numSymbols
		total += pow
		if total >= limit {
			return limit
		}
	}
	return total
}
