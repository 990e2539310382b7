package automaton

import (
	"fmt"
	"strconv"
	"strings"
)

// Minimize Minimizes the given DFA by partition refinement.
//
// Unreachable states are dropped first. The initial partition separates accepting from
// non-accepting states; each round then splits every block by the signature
// (block, destination block per symbol), where a missing transition is its own value. The
// loop stops at the first round that creates no new block, which is the coarsest stable
// partition. The resulting states are named "0", "1", ... in breadth-first order from the
// start block.
func Minimize(a *Automaton) (*Automaton, error) {
	if a.kind != DFA || !a.deterministic {
		return nil, fmt.Errorf("%w: cannot minimize a %s", ErrNotDeterministic, a.kind)
	}

	live := a.reachable().GetArray()

	block := make([]int, len(a.states))
	for _, s := range live {
		if a.isAccept.Test(uint(s)) {
			block[s] = 1
		}
	}
	numBlocks := countBlocks(block, live)

	var sig strings.Builder
	for {
		signatures := make(map[string]int)
		next := make([]int, len(a.states))
		for _, s := range live {
			sig.Reset()
			sig.WriteString(strconv.Itoa(block[s]))
			for _, dests := range a.delta[s] {
				sig.WriteByte('|')
				if len(dests) == 0 {
					sig.WriteByte('-')
				} else {
					sig.WriteString(strconv.Itoa(block[dests[0]]))
				}
			}
			id, ok := signatures[sig.String()]
			if !ok {
				id = len(signatures)
				signatures[sig.String()] = id
			}
			next[s] = id
		}
		block = next
		if len(signatures) == numBlocks {
			break
		}
		numBlocks = len(signatures)
	}

	labels := a.blockLabels(block)

	result := Definition{
		Kind:        DFA,
		Alphabet:    a.Alphabet(),
		Start:       labels[block[a.start]],
		Transitions: make(Transitions),
	}
	result.States = make([]string, 0, len(labels))
	for i := 0; i < len(labels); i++ {
		result.States = append(result.States, strconv.Itoa(i))
	}

	acceptingBlocks := make(map[int]struct{})
	for _, s := range live {
		if !a.isAccept.Test(uint(s)) {
			continue
		}
		if _, ok := acceptingBlocks[block[s]]; !ok {
			acceptingBlocks[block[s]] = struct{}{}
			result.Accepting = append(result.Accepting, labels[block[s]])
		}
	}

	for _, s := range live {
		from := labels[block[s]]
		for sym, dests := range a.delta[s] {
			if len(dests) == 0 {
				continue
			}
			symbol := a.symbols[sym]
			to := labels[block[dests[0]]]
			if existing := result.Transitions[from][symbol]; len(existing) > 0 {
				if existing[0] != to {
					return nil, fmt.Errorf("%w: block %s moves to both %s and %s on %q",
						ErrInconsistentPartition, from, existing[0], to, symbol)
				}
				continue
			}
			result.Transitions.Add(from, symbol, to)
		}
	}

	return FromDefinition(result)
}

// blockLabels Numbers the blocks in breadth-first order of the states, starting at the
// start state.
func (a *Automaton) blockLabels(block []int) map[int]string {
	labels := make(map[int]string)
	seen := newStateSet(len(a.states))
	seen.add(a.start)

	workList := []int{a.start}
	for len(workList) > 0 {
		state := workList[0]
		workList = workList[1:]
		if _, ok := labels[block[state]]; !ok {
			labels[block[state]] = strconv.Itoa(len(labels))
		}
		for _, dests := range a.delta[state] {
			if len(dests) > 0 && !seen.contains(dests[0]) {
				seen.add(dests[0])
				workList = append(workList, dests[0])
			}
		}
	}
	return labels
}

func countBlocks(block []int, states []int) int {
	distinct := make(map[int]struct{})
	for _, s := range states {
		distinct[block[s]] = struct{}{}
	}
	return len(distinct)
}
