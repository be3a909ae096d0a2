package db

import (
	"strconv"

	"github.com/ymirdb/ymirdb/internal/db/seq"
)

// ParseInt parses a base-10 integer literal with an optional leading '-',
// in [math.MinInt32, math.MaxInt32] (spec §6).
func ParseInt(tok string) (int32, error) {
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, ErrInvalidInteger
	}
	return int32(n), nil
}

// isIntegerLiteral reports whether tok parses as a valid integer literal.
func isIntegerLiteral(tok string) bool {
	_, err := ParseInt(tok)
	return err == nil
}

// ValidateKey reports whether tok is usable as a key: non-empty, at most
// MaxKeyLen bytes, and not itself an integer literal (spec §6).
func ValidateKey(tok string) bool {
	if tok == "" || len(tok) > MaxKeyLen {
		return false
	}
	return !isIntegerLiteral(tok)
}

// ParseElements parses a list of value tokens against state, in order: each
// token is either an integer literal or the key of an existing entry. A
// token equal to self's key is rejected (no direct self-reference). The
// whole list is parsed before any element is returned, so a single bad
// token fails the entire operation with no partial result — callers must
// not mutate state from a partial ParseElements result (spec §9: PUSH/SET/
// APPEND are atomic on failure).
func ParseElements(tokens []string, state *State, self *Entry) (*seq.Sequence[Element], error) {
	out := seq.New[Element]()
	for _, tok := range tokens {
		if self != nil && tok == self.Key {
			return nil, ErrNotPermitted
		}
		if isIntegerLiteral(tok) {
			n, err := ParseInt(tok)
			if err != nil {
				return nil, err
			}
			out.Append(NewIntElement(n))
			continue
		}
		target, ok := state.Get(tok)
		if !ok {
			return nil, ErrNoSuchKey
		}
		if self != nil && !CanLink(self, target) {
			return nil, ErrNotPermitted
		}
		out.Append(NewRefElement(target))
	}
	return out, nil
}
