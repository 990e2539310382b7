package automaton

// Accepts Returns true if the automaton accepts word. Each rune of word is one input symbol.
// Rejection, including running into an undefined transition, is a normal false result.
func Accepts(a *Automaton, word string) bool {
	symbols := make([]string, 0, len(word))
	for _, r := range word {
		symbols = append(symbols, string(r))
	}
	return AcceptsSymbols(a, symbols)
}

// AcceptsSymbols Returns true if the automaton accepts the given symbol sequence, using
// DFA or NFA simulation according to the automaton's kind.
func AcceptsSymbols(a *Automaton, symbols []string) bool {
	if a.kind == NFA {
		return runNFA(a, symbols)
	}
	return runDFA(a, symbols)
}

func runDFA(a *Automaton, symbols []string) bool {
	state := a.start
	for _, symbol := range symbols {
		sym, ok := a.symbolIndex[symbol]
		if !ok {
			return false
		}
		dests := a.delta[state][sym]
		if len(dests) == 0 {
			return false
		}
		state = dests[0]
	}
	return a.isAccept.Test(uint(state))
}

func runNFA(a *Automaton, symbols []string) bool {
	current := newStateSet(len(a.states))
	current.add(a.start)
	for _, symbol := range symbols {
		sym, ok := a.symbolIndex[symbol]
		if !ok {
			return false
		}
		current = a.step(current, sym)
		if current.empty() {
			return false
		}
	}
	return current.intersects(a.isAccept)
}
