package automaton

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// MaxRegExpPositions bounds the number of symbol positions a pattern may expand to, counted
// after bounded repeats are unrolled.
const MaxRegExpPositions = 10000

// MaxCharRange bounds the size of a character class range such as [a-z].
const MaxCharRange = 1 << 12

type regexpKind int

const (
	regexpUnion         = regexpKind(iota) // The union of two expressions
	regexpConcatenation                    // A sequence of two expressions
	regexpOptional                         // An optional expression
	regexpRepeat                           // An expression that repeats
	regexpRepeatMin                        // An expression that repeats a minimum number of times
	regexpRepeatMinMax                     // An expression that repeats a minimum and maximum number of times
	regexpChar                             // One symbol out of a set
	regexpEmpty                            // The empty language
	regexpString                           // A literal string, possibly empty
)

type regexpNode struct {
	kind       regexpKind
	exp1, exp2 *regexpNode
	s          string
	// regexpChar: the symbols matched, or excluded when negate is set.
	symbols  []string
	negate   bool
	min, max int
}

// RegExp Regular expression extension to Automaton.
//
// Supported syntax:
//
//	regexp   ::= unionexp
//	unionexp ::= concatexp '|' unionexp | concatexp
//	concatexp ::= repeatexp concatexp | repeatexp
//	repeatexp ::= repeatexp '?' | repeatexp '*' | repeatexp '+'
//	            | repeatexp '{' n '}' | repeatexp '{' n ',}' | repeatexp '{' n ',' m '}'
//	            | charclassexp
//	charclassexp ::= '[' charclasses ']' | '[^' charclasses ']' | simpleexp
//	charclasses ::= charclass charclasses | charclass
//	charclass ::= charexp '-' charexp | charexp
//	simpleexp ::= charexp | '.' | '#' | '"' <Unicode string without double-quotes> '"'
//	            | '(' ')' | '(' unionexp ')'
//	charexp  ::= <Unicode character> | '\' <Unicode character>
//
// '.' and negated classes match over the alphabet given with WithAlphabet, or over the
// characters the pattern mentions when no alphabet is given. '#' is the empty language.
type RegExp struct {
	source   string
	root     *regexpNode
	alphabet []string

	originalString []rune
	pos            int
}

type regExpOption struct {
	alphabet []string
}

type RegExpOption func(*regExpOption)

// WithAlphabet Sets the symbols that '.' and negated character classes range over. Each
// symbol must be a single character.
func WithAlphabet(alphabet []string) RegExpOption {
	return func(o *regExpOption) {
		o.alphabet = alphabet
	}
}

func NewRegExp(s string, options ...RegExpOption) (*RegExp, error) {
	opts := &regExpOption{}
	for _, fn := range options {
		fn(opts)
	}
	for _, symbol := range opts.alphabet {
		if len([]rune(symbol)) != 1 {
			return nil, fmt.Errorf("%w: alphabet symbol %q is not a single character", ErrInvalidRegExp, symbol)
		}
	}

	r := &RegExp{
		source:         s,
		originalString: []rune(s),
	}

	var err error
	if len(s) == 0 {
		r.root = makeString("")
	} else {
		r.root, err = r.parseUnionExp()
		if err != nil {
			return nil, err
		}
		if r.more() {
			return nil, r.errorf("end-of-string expected at position %d", r.pos)
		}
	}

	if opts.alphabet != nil {
		r.alphabet = slices.Clone(opts.alphabet)
	} else {
		r.alphabet = literalSymbols(r.root)
	}
	return r, nil
}

func (r *RegExp) String() string {
	return r.source
}

// Alphabet Returns the symbols '.' ranges over.
func (r *RegExp) Alphabet() []string {
	return slices.Clone(r.alphabet)
}

func (r *RegExp) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRegExp, fmt.Sprintf(format, args...))
}

func makeUnion(exp1, exp2 *regexpNode) *regexpNode {
	return &regexpNode{kind: regexpUnion, exp1: exp1, exp2: exp2}
}

func makeConcatenation(exp1, exp2 *regexpNode) *regexpNode {
	return &regexpNode{kind: regexpConcatenation, exp1: exp1, exp2: exp2}
}

func makeOptional(exp *regexpNode) *regexpNode {
	return &regexpNode{kind: regexpOptional, exp1: exp}
}

func makeRepeat(exp *regexpNode) *regexpNode {
	return &regexpNode{kind: regexpRepeat, exp1: exp}
}

func makeRepeatMin(exp *regexpNode, min int) *regexpNode {
	return &regexpNode{kind: regexpRepeatMin, exp1: exp, min: min}
}

func makeRepeatRange(exp *regexpNode, min, max int) *regexpNode {
	return &regexpNode{kind: regexpRepeatMinMax, exp1: exp, min: min, max: max}
}

func makeChar(symbols []string, negate bool) *regexpNode {
	return &regexpNode{kind: regexpChar, symbols: symbols, negate: negate}
}

func makeAnyChar() *regexpNode {
	return makeChar(nil, true)
}

func makeEmpty() *regexpNode {
	return &regexpNode{kind: regexpEmpty}
}

func makeString(s string) *regexpNode {
	return &regexpNode{kind: regexpString, s: s}
}

// literalSymbols Returns the sorted characters a pattern mentions explicitly.
func literalSymbols(n *regexpNode) []string {
	seen := make(map[string]struct{})
	var walk func(n *regexpNode)
	walk = func(n *regexpNode) {
		if n == nil {
			return
		}
		switch n.kind {
		case regexpChar:
			for _, symbol := range n.symbols {
				seen[symbol] = struct{}{}
			}
		case regexpString:
			for _, c := range n.s {
				seen[string(c)] = struct{}{}
			}
		}
		walk(n.exp1)
		walk(n.exp2)
	}
	walk(n)

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)
	return symbols
}

func (r *RegExp) more() bool {
	return r.pos < len(r.originalString)
}

func (r *RegExp) peek(s string) bool {
	return r.more() && strings.ContainsRune(s, r.originalString[r.pos])
}

func (r *RegExp) match(c rune) bool {
	if r.pos >= len(r.originalString) {
		return false
	}
	if r.originalString[r.pos] == c {
		r.pos++
		return true
	}
	return false
}

func (r *RegExp) next() (rune, error) {
	if !r.more() {
		return 0, io.EOF
	}
	ch := r.originalString[r.pos]
	r.pos++
	return ch, nil
}

func (r *RegExp) parseUnionExp() (*regexpNode, error) {
	e, err := r.parseConcatExp()
	if err != nil {
		return nil, err
	}
	if r.match('|') {
		e2, err := r.parseUnionExp()
		if err != nil {
			return nil, err
		}
		e = makeUnion(e, e2)
	}
	return e, nil
}

func (r *RegExp) parseConcatExp() (*regexpNode, error) {
	e, err := r.parseRepeatExp()
	if err != nil {
		return nil, err
	}
	if r.more() && !r.peek(")|") {
		e2, err := r.parseConcatExp()
		if err != nil {
			return nil, err
		}
		e = makeConcatenation(e, e2)
	}
	return e, nil
}

func (r *RegExp) parseInt() (int, bool, error) {
	start := r.pos
	for r.peek("0123456789") {
		r.pos++
	}
	if start == r.pos {
		return 0, false, nil
	}
	n, err := strconv.Atoi(string(r.originalString[start:r.pos]))
	if err != nil {
		return 0, false, r.errorf("invalid integer at position %d", start)
	}
	return n, true, nil
}

func (r *RegExp) parseRepeatExp() (*regexpNode, error) {
	e, err := r.parseCharClassExp()
	if err != nil {
		return nil, err
	}

	for r.peek("?*+{") {
		if r.match('?') {
			e = makeOptional(e)
		} else if r.match('*') {
			e = makeRepeat(e)
		} else if r.match('+') {
			e = makeRepeatMin(e, 1)
		} else if r.match('{') {
			n, ok, err := r.parseInt()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, r.errorf("integer expected at position %d", r.pos)
			}
			m := n
			if r.match(',') {
				var bounded bool
				m, bounded, err = r.parseInt()
				if err != nil {
					return nil, err
				}
				if !bounded {
					m = -1
				}
			}
			if !r.match('}') {
				return nil, r.errorf("expected '}' at position %d", r.pos)
			}
			if n > MaxRegExpPositions || m > MaxRegExpPositions {
				return nil, r.errorf("repeat bound exceeds %d", MaxRegExpPositions)
			}

			if m == -1 {
				e = makeRepeatMin(e, n)
			} else {
				if m < n {
					return nil, r.errorf("repeat bound {%d,%d} is decreasing", n, m)
				}
				e = makeRepeatRange(e, n, m)
			}
		}
	}

	return e, nil
}

func (r *RegExp) parseCharClassExp() (*regexpNode, error) {
	if r.match('[') {
		negate := false
		if r.match('^') {
			negate = true
		}
		symbols, err := r.parseCharClasses()
		if err != nil {
			return nil, err
		}
		if !r.match(']') {
			return nil, r.errorf("expected ']' at position %d", r.pos)
		}
		return makeChar(symbols, negate), nil
	}
	return r.parseSimpleExp()
}

func (r *RegExp) parseCharClasses() ([]string, error) {
	var symbols []string
	for {
		from, err := r.parseCharExp()
		if err != nil {
			return nil, err
		}
		to := from
		if r.match('-') {
			to, err = r.parseCharExp()
			if err != nil {
				return nil, err
			}
		}
		if to < from {
			return nil, r.errorf("illegal character range %q-%q", from, to)
		}
		if to-from >= MaxCharRange {
			return nil, r.errorf("character range %q-%q is too large", from, to)
		}
		for c := from; c <= to; c++ {
			symbols = append(symbols, string(c))
		}
		if !r.more() || r.peek("]") {
			break
		}
	}
	slices.Sort(symbols)
	return slices.Compact(symbols), nil
}

func (r *RegExp) parseSimpleExp() (*regexpNode, error) {
	if r.match('.') {
		return makeAnyChar(), nil
	} else if r.match('#') {
		return makeEmpty(), nil
	} else if r.match('"') {
		start := r.pos
		for r.more() && !r.peek("\"") {
			r.pos++
		}
		if !r.match('"') {
			return nil, r.errorf("expected '\"' at position %d", r.pos)
		}
		return makeString(string(r.originalString[start : r.pos-1])), nil
	} else if r.match('(') {
		if r.match(')') {
			return makeString(""), nil
		}
		e, err := r.parseUnionExp()
		if err != nil {
			return nil, err
		}
		if !r.match(')') {
			return nil, r.errorf("expected ')' at position %d", r.pos)
		}
		return e, nil
	}

	c, err := r.parseCharExp()
	if err != nil {
		return nil, err
	}
	return makeString(string(c)), nil
}

func (r *RegExp) parseCharExp() (rune, error) {
	r.match('\\')
	c, err := r.next()
	if err != nil {
		return 0, r.errorf("unexpected end of pattern")
	}
	return c, nil
}

// glushkov Collects the positions of an expression and the follow relation between them.
type glushkov struct {
	alphabet []string
	labels   [][]string
	follow   []*bitset.BitSet
}

type positions struct {
	nullable    bool
	first, last *bitset.BitSet
}

func (g *glushkov) position(symbols []string) (uint, error) {
	if len(g.labels) >= MaxRegExpPositions {
		return 0, fmt.Errorf("%w: pattern expands to more than %d positions", ErrInvalidRegExp, MaxRegExpPositions)
	}
	p := uint(len(g.labels))
	g.labels = append(g.labels, symbols)
	g.follow = grow(g.follow, len(g.labels))
	g.follow[p] = bitset.New(0)
	return p, nil
}

func (g *glushkov) connect(from, to *bitset.BitSet) {
	for p, ok := from.NextSet(0); ok; p, ok = from.NextSet(p + 1) {
		g.follow[p].InPlaceUnion(to)
	}
}

func (g *glushkov) charSymbols(n *regexpNode) []string {
	if !n.negate {
		return n.symbols
	}
	symbols := make([]string, 0, len(g.alphabet))
	for _, symbol := range g.alphabet {
		if !slices.Contains(n.symbols, symbol) {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}

func (g *glushkov) visit(n *regexpNode) (positions, error) {
	switch n.kind {
	case regexpEmpty:
		return positions{first: bitset.New(0), last: bitset.New(0)}, nil

	case regexpChar:
		p, err := g.position(g.charSymbols(n))
		if err != nil {
			return positions{}, err
		}
		set := bitset.New(p + 1).Set(p)
		return positions{first: set, last: set.Clone()}, nil

	case regexpString:
		result := positions{nullable: true, first: bitset.New(0), last: bitset.New(0)}
		for i, c := range []rune(n.s) {
			p, err := g.position([]string{string(c)})
			if err != nil {
				return positions{}, err
			}
			if i == 0 {
				result.first.Set(p)
			} else {
				g.connect(result.last, bitset.New(p+1).Set(p))
			}
			result.last = bitset.New(p + 1).Set(p)
			result.nullable = false
		}
		return result, nil

	case regexpUnion:
		left, err := g.visit(n.exp1)
		if err != nil {
			return positions{}, err
		}
		right, err := g.visit(n.exp2)
		if err != nil {
			return positions{}, err
		}
		return positions{
			nullable: left.nullable || right.nullable,
			first:    left.first.Union(right.first),
			last:     left.last.Union(right.last),
		}, nil

	case regexpConcatenation:
		left, err := g.visit(n.exp1)
		if err != nil {
			return positions{}, err
		}
		right, err := g.visit(n.exp2)
		if err != nil {
			return positions{}, err
		}
		return g.concat(left, right), nil

	case regexpOptional:
		inner, err := g.visit(n.exp1)
		if err != nil {
			return positions{}, err
		}
		inner.nullable = true
		return inner, nil

	case regexpRepeat:
		inner, err := g.visit(n.exp1)
		if err != nil {
			return positions{}, err
		}
		g.connect(inner.last, inner.first)
		inner.nullable = true
		return inner, nil

	case regexpRepeatMin:
		// e{n,} = e...e e*, each copy with its own positions.
		result := positions{nullable: true, first: bitset.New(0), last: bitset.New(0)}
		for i := 0; i < n.min; i++ {
			before := len(g.labels)
			inner, err := g.visit(n.exp1)
			if err != nil {
				return positions{}, err
			}
			result = g.concat(result, inner)
			// A copy without positions leaves every later copy with the same effect.
			if len(g.labels) == before {
				break
			}
		}
		star, err := g.visit(makeRepeat(n.exp1))
		if err != nil {
			return positions{}, err
		}
		return g.concat(result, star), nil

	case regexpRepeatMinMax:
		// e{n,m} = e...e (e?)...(e?)
		result := positions{nullable: true, first: bitset.New(0), last: bitset.New(0)}
		for i := 0; i < n.max; i++ {
			before := len(g.labels)
			inner, err := g.visit(n.exp1)
			if err != nil {
				return positions{}, err
			}
			if i >= n.min {
				inner.nullable = true
			}
			result = g.concat(result, inner)
			if len(g.labels) == before {
				break
			}
		}
		return result, nil
	}
	return positions{}, fmt.Errorf("unknown expression kind %d", n.kind)
}

func (g *glushkov) concat(left, right positions) positions {
	g.connect(left.last, right.first)
	result := positions{
		nullable: left.nullable && right.nullable,
		first:    left.first.Clone(),
		last:     right.last.Clone(),
	}
	if left.nullable {
		result.first.InPlaceUnion(right.first)
	}
	if right.nullable {
		result.last.InPlaceUnion(left.last)
	}
	return result
}

// ToAutomaton Builds an NFA without epsilon transitions accepting the language of the
// expression (Glushkov's position construction). State "q0" is the start; state "q<i>"
// is entered after reading the character at position i of the unrolled expression.
func (r *RegExp) ToAutomaton() (*Automaton, error) {
	g := &glushkov{alphabet: r.alphabet}
	root, err := g.visit(r.root)
	if err != nil {
		return nil, err
	}

	name := func(p uint) string {
		return "q" + strconv.Itoa(int(p)+1)
	}

	states := make([]string, 0, len(g.labels)+1)
	states = append(states, "q0")
	for p := range g.labels {
		states = append(states, name(uint(p)))
	}

	transitions := make(Transitions)
	enter := func(source string, to *bitset.BitSet) {
		for q, ok := to.NextSet(0); ok; q, ok = to.NextSet(q + 1) {
			for _, symbol := range g.labels[q] {
				transitions.Add(source, symbol, name(q))
			}
		}
	}
	enter("q0", root.first)
	for p := range g.labels {
		enter(name(uint(p)), g.follow[p])
	}

	var accepting []string
	if root.nullable {
		accepting = append(accepting, "q0")
	}
	for p, ok := root.last.NextSet(0); ok; p, ok = root.last.NextSet(p + 1) {
		accepting = append(accepting, name(p))
	}

	return New(NFA, states, r.alphabet, "q0", accepting, transitions)
}
