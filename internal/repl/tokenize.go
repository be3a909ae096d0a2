package repl

import "strings"

// tokenize splits a line on any of space, tab, CR, LF, VT, FF (spec §6),
// discarding empty tokens.
func tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			return true
		default:
			return false
		}
	})
}
