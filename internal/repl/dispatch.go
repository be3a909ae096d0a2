package repl

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ymirdb/ymirdb/internal/db"
	"github.com/ymirdb/ymirdb/internal/obs"
)

// result is what a command handler produces: the text to print (without a
// trailing blank line — the session loop adds that) and whether the
// session should terminate after printing it.
type result struct {
	text string
	exit bool
}

func ok() result { return result{text: "ok"} }

func fail(reply string) result { return result{text: reply} }

// handler is one command verb's implementation.
type handler func(d *Dispatcher, args []string) result

var handlers = map[string]handler{
	"BYE":      handleBye,
	"HELP":     handleHelp,
	"LIST":     handleList,
	"GET":      handleGet,
	"DEL":      handleDel,
	"PURGE":    handlePurge,
	"SET":      handleSet,
	"PUSH":     handlePush,
	"APPEND":   handleAppend,
	"PICK":     handlePick,
	"PLUCK":    handlePluck,
	"POP":      handlePop,
	"DROP":     handleDrop,
	"ROLLBACK": handleRollback,
	"CHECKOUT": handleCheckout,
	"SNAPSHOT": handleSnapshot,
	"MIN":      handleMin,
	"MAX":      handleMax,
	"SUM":      handleSum,
	"LEN":      handleLen,
	"REV":      handleRev,
	"UNIQ":     handleUniq,
	"SORT":     handleSort,
	"FORWARD":  handleForward,
	"BACKWARD": handleBackward,
	"TYPE":     handleType,
}

// Dispatcher binds the command verb table to a single façade instance for
// the lifetime of the session.
type Dispatcher struct {
	Facade *db.Facade
	log    *zap.Logger
}

// NewDispatcher returns a Dispatcher over a fresh façade.
func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{Facade: db.NewFacade(log), log: log.Named("repl")}
}

// Dispatch parses and runs a single command line, returning its reply text
// (without the trailing blank line) and whether the session should exit.
func (d *Dispatcher) Dispatch(line string) result {
	tokens := tokenize(line)
	if len(tokens) == 0 {
		return result{text: ""}
	}

	verb := strings.ToUpper(tokens[0])
	h, known := handlers[verb]
	if !known {
		return fail("no such command")
	}

	d.log.Debug("dispatch", zap.String("verb", verb), zap.Int("argc", len(tokens)-1))
	return h(d, tokens[1:])
}

// dumpOOM dumps err's chain and the live state to stderr for post-mortem
// debugging whenever a command hits the façade's deliberately-triggerable
// out-of-memory guard — the one internal-invariant failure a command can
// still reach (spec §7).
func (d *Dispatcher) dumpOOM(err error) {
	obs.DumpErrChain(os.Stderr, err)
	obs.DumpState(os.Stderr, d.Facade.State)
}

func handleBye(d *Dispatcher, _ []string) result {
	d.Facade.State.Clear()
	for d.Facade.Snapshots.Len() > 0 {
		ids := d.Facade.ListSnapshots()
		_ = d.Facade.Drop(ids[0])
	}
	return result{text: "bye", exit: true}
}

func handleHelp(d *Dispatcher, _ []string) result {
	return result{text: strings.TrimRight(helpText, "\n")}
}

func handleList(d *Dispatcher, args []string) result {
	if len(args) != 1 {
		return fail("invalid list command")
	}
	switch strings.ToUpper(args[0]) {
	case "KEYS":
		keys := d.Facade.ListKeys()
		if len(keys) == 0 {
			return fail("no keys")
		}
		return result{text: strings.Join(keys, "\n")}
	case "ENTRIES":
		views := d.Facade.ListEntries()
		if len(views) == 0 {
			return fail("no entries")
		}
		lines := make([]string, len(views))
		for i, v := range views {
			lines[i] = v.Key + " " + formatElements(v.Elements)
		}
		return result{text: strings.Join(lines, "\n")}
	case "SNAPSHOTS":
		ids := d.Facade.ListSnapshots()
		if len(ids) == 0 {
			return fail("no snapshots")
		}
		lines := make([]string, len(ids))
		for i, id := range ids {
			lines[i] = formatUint64(id)
		}
		return result{text: strings.Join(lines, "\n")}
	default:
		return fail("invalid list command")
	}
}

func requireKey(args []string) (string, bool) {
	if len(args) < 1 {
		return "", false
	}
	return args[0], true
}

func handleGet(d *Dispatcher, args []string) result {
	key, ok := requireKey(args)
	if !ok {
		return fail("missing key")
	}
	els, err := d.Facade.Get(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: formatElements(els)}
}

func handleDel(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	if reply, mapped := replyFor(d.Facade.Del(key)); mapped {
		return fail(reply)
	}
	return ok()
}

func handlePurge(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	if reply, mapped := replyFor(d.Facade.Purge(key)); mapped {
		return fail(reply)
	}
	return ok()
}

func handleSet(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	err := d.Facade.Set(key, args[1:])
	if errors.Is(err, db.ErrOutOfMemory) {
		d.dumpOOM(err)
	}
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return ok()
}

func handlePush(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	err := d.Facade.Push(key, args[1:])
	if errors.Is(err, db.ErrOutOfMemory) {
		d.dumpOOM(err)
	}
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return ok()
}

func handleAppend(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	err := d.Facade.Append(key, args[1:])
	if errors.Is(err, db.ErrOutOfMemory) {
		d.dumpOOM(err)
	}
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return ok()
}

func parseOneBasedIndex(tok string) (int, bool) {
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func handlePick(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has || len(args) < 2 {
		return fail("missing key")
	}
	idx, okIdx := parseOneBasedIndex(args[1])
	if !okIdx {
		return fail("index out of range")
	}
	el, err := d.Facade.Pick(key, idx)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: el.String()}
}

func handlePluck(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has || len(args) < 2 {
		return fail("missing key")
	}
	idx, okIdx := parseOneBasedIndex(args[1])
	if !okIdx {
		return fail("index out of range")
	}
	el, err := d.Facade.Pluck(key, idx)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: el.String()}
}

func handlePop(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	el, err := d.Facade.Pop(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: el.String()}
}

// parseSnapshotID mirrors parse_index: missing, unparseable, or zero tokens
// are all an out-of-range index, not an unknown-snapshot lookup — a snapshot
// id is only looked up once a syntactically valid positive index is in hand.
func parseSnapshotID(tok string) (uint64, bool) {
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

func handleDrop(d *Dispatcher, args []string) result {
	if len(args) < 1 {
		return fail("index out of range")
	}
	id, okID := parseSnapshotID(args[0])
	if !okID {
		return fail("index out of range")
	}
	if reply, mapped := replyFor(d.Facade.Drop(id)); mapped {
		return fail(reply)
	}
	return ok()
}

func handleRollback(d *Dispatcher, args []string) result {
	if len(args) < 1 {
		return fail("index out of range")
	}
	id, okID := parseSnapshotID(args[0])
	if !okID {
		return fail("index out of range")
	}
	if reply, mapped := replyFor(d.Facade.Rollback(id)); mapped {
		return fail(reply)
	}
	return ok()
}

func handleCheckout(d *Dispatcher, args []string) result {
	if len(args) < 1 {
		return fail("index out of range")
	}
	id, okID := parseSnapshotID(args[0])
	if !okID {
		return fail("index out of range")
	}
	if reply, mapped := replyFor(d.Facade.Checkout(id)); mapped {
		return fail(reply)
	}
	return ok()
}

func handleSnapshot(d *Dispatcher, _ []string) result {
	id := d.Facade.Snapshot()
	return result{text: "saved as snapshot " + formatUint64(id)}
}

func handleMin(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	n, err := d.Facade.Min(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: formatInt64(n)}
}

func handleMax(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	n, err := d.Facade.Max(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: formatInt64(n)}
}

func handleSum(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	n, err := d.Facade.Sum(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: formatInt64(n)}
}

func handleLen(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	n, err := d.Facade.Len(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: formatInt64(n)}
}

func handleRev(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	if reply, mapped := replyFor(d.Facade.Rev(key)); mapped {
		return fail(reply)
	}
	return ok()
}

func handleUniq(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	if reply, mapped := replyFor(d.Facade.Uniq(key)); mapped {
		return fail(reply)
	}
	return ok()
}

func handleSort(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	if reply, mapped := replyFor(d.Facade.Sort(key)); mapped {
		return fail(reply)
	}
	return ok()
}

func handleForward(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	keys, err := d.Facade.Forward(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: formatKeyList(keys)}
}

func handleBackward(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	keys, err := d.Facade.Backward(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: formatKeyList(keys)}
}

func handleType(d *Dispatcher, args []string) result {
	key, has := requireKey(args)
	if !has {
		return fail("missing key")
	}
	t, err := d.Facade.Type(key)
	if reply, mapped := replyFor(err); mapped {
		return fail(reply)
	}
	return result{text: t}
}
