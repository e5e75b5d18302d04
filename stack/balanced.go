package stack

import "strings"

// Whether every '(' in expr is closed by a later ')' and no ')' comes
// unopened. Other characters are ignored. An empty expr is not balanced.
func Balanced(expr string) bool {
	if expr == "" {
		return false
	}

	// nesting can't go deeper than the number of openers.
	s, err := New[rune](max(1, strings.Count(expr, "(")))
	if err != nil {
		return false
	}
	defer s.Release()

	for _, r := range expr {
		switch r {
		case '(':
			if err := s.Push(r); err != nil {
				return false
			}
		case ')':
			if _, err := s.Pop(); err != nil {
				return false
			}
		}
	}
	return s.Empty()
}
