package automaton

// grow Extends s with zero values until it holds at least size elements.
func grow[T any](s []T, size int) []T {
	if n := size - len(s); n > 0 {
		s = append(s, make([]T, n)...)
	}
	return s
}
