package turing

import "strings"

// Tape is a sparse, two-way unbounded tape. Positions that were never written read as the
// blank symbol and are not materialized.
type Tape struct {
	cells map[int]string
	blank string
	high  int
}

// NewTape returns a tape holding word at positions 0..len(word)-1, one rune per cell, with
// a materialized blank right after it.
func NewTape(blank, word string) *Tape {
	t := &Tape{
		cells: make(map[int]string, len(word)+1),
		blank: blank,
	}
	pos := 0
	for _, r := range word {
		t.Write(pos, string(r))
		pos++
	}
	t.Write(pos, blank)
	return t
}

// Read returns the symbol at pos.
func (t *Tape) Read(pos int) string {
	if symbol, ok := t.cells[pos]; ok {
		return symbol
	}
	return t.blank
}

// Write stores symbol at pos, materializing it.
func (t *Tape) Write(pos int, symbol string) {
	t.cells[pos] = symbol
	if pos > t.high {
		t.high = pos
	}
}

// String returns the contents from position 0 to the highest materialized position.
// Unwritten positions in between read as blank; positions left of 0 are not included.
func (t *Tape) String() string {
	var b strings.Builder
	for pos := 0; pos <= t.high; pos++ {
		b.WriteString(t.Read(pos))
	}
	return b.String()
}
