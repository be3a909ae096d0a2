package repl

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ymirdb/ymirdb/internal/db"
)

// replyFor maps a façade error to the exact reply string spec §6 names. A
// nil error or one this table doesn't recognize returns ("", false).
func replyFor(err error) (string, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, db.ErrNoSuchKey):
		return "no such key", true
	case errors.Is(err, db.ErrNoSuchSnapshot):
		return "no such snapshot", true
	case errors.Is(err, db.ErrNotPermitted):
		return "not permitted", true
	case errors.Is(err, db.ErrOutOfRange):
		return "index out of range", true
	case errors.Is(err, db.ErrInvalidInteger):
		return "invalid integer", true
	case errors.Is(err, db.ErrMissingKey):
		return "missing key", true
	case errors.Is(err, db.ErrNotSimple):
		return "entry is not simple", true
	case errors.Is(err, db.ErrInvalidListArg):
		return "invalid list command", true
	case errors.Is(err, db.ErrUnknownCommand):
		return "no such command", true
	case errors.Is(err, db.ErrOutOfMemory):
		return "out of memory", true
	default:
		return "", false
	}
}

// formatElements renders a GET-style bracketed list: "[v1 v2 …]".
func formatElements(els []db.Element) string {
	parts := make([]string, len(els))
	for i, e := range els {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// formatKeyList renders a FORWARD/BACKWARD-style comma-separated key list,
// or "nil" if empty.
func formatKeyList(keys []string) string {
	if len(keys) == 0 {
		return "nil"
	}
	return strings.Join(keys, ", ")
}

func formatInt64(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatUint64(n uint64) string {
	return strconv.FormatUint(n, 10)
}
