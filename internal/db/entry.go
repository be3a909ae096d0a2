package db

import (
	"go.uber.org/zap"

	"github.com/ymirdb/ymirdb/internal/db/seq"
)

// MaxKeyLen is the longest a key may be (spec §3: up to 15 characters; the
// 16th byte is reserved for the terminator in the C source this was
// distilled from).
const MaxKeyLen = 15

// Entry is a named record holding an ordered element sequence plus the two
// auxiliary closures the reference bookkeeping maintains eagerly.
type Entry struct {
	Key      string
	elements *seq.Sequence[Element]

	// forward is the transitive closure of entries reachable from elements
	// via EntryRef; backward is the transitive closure of entries that can
	// reach this entry. Both are multisets: duplicates are intentional (see
	// link/unlink below).
	forward  *seq.Sequence[*Entry]
	backward *seq.Sequence[*Entry]
}

// NewEntry returns an entry with the given key and empty element/forward/backward sequences.
func NewEntry(key string) *Entry {
	return &Entry{
		Key:      key,
		elements: seq.New[Element](),
		forward:  seq.New[*Entry](),
		backward: seq.New[*Entry](),
	}
}

// Elements returns the entry's owned element sequence.
func (e *Entry) Elements() *seq.Sequence[Element] { return e.elements }

// Forward returns the entry's forward closure.
func (e *Entry) Forward() *seq.Sequence[*Entry] { return e.forward }

// Backward returns the entry's backward closure.
func (e *Entry) Backward() *seq.Sequence[*Entry] { return e.backward }

// IsSimple reports whether e has no outgoing references, i.e. its forward
// closure is empty.
func (e *Entry) IsSimple() bool { return e.forward.Len() == 0 }

// HasKey reports whether e's key matches k (case-sensitive, per spec §3).
func (e *Entry) HasKey(k string) bool { return e.Key == k }

// destroy clears e's owned elements and its auxiliary closures. Go's GC
// reclaims the memory regardless; this exists so the deletion paths (DEL,
// PURGE, Checkout, Rollback) leave no stale references an accidental
// retained pointer could observe.
func (e *Entry) destroy() {
	e.elements.Clear()
	e.forward.Clear()
	e.backward.Clear()
}

func entryContains(s *seq.Sequence[*Entry], target *Entry) bool {
	_, ok := s.Search(target, func(item *Entry, needle any) int {
		if item == needle.(*Entry) {
			return 0
		}
		return 1
	})
	return ok
}

func entryPopFirst(s *seq.Sequence[*Entry], target *Entry) {
	idx, ok := s.Search(target, func(item *Entry, needle any) int {
		if item == needle.(*Entry) {
			return 0
		}
		return 1
	})
	if ok {
		_, _ = s.Pop(idx)
	}
}

// CanLink reports whether an EntryRef(v) element may be inserted into u's
// elements without creating a cycle (spec invariant 1). It fails if u == v
// or if v can already reach u (v.forward already contains u).
func CanLink(u, v *Entry) bool {
	if u == v {
		return false
	}
	return !entryContains(v.forward, u)
}

// link implements the spec §4.4 Link(u, v) procedure: call when an
// EntryRef(v) element is being inserted into u.elements. The caller must
// have already checked CanLink(u, v).
func link(u, v *Entry, log *zap.Logger) {
	// 1. Append v to u.forward.
	u.forward.Append(v)
	// 2. Append every item of v.forward to u.forward.
	v.forward.ForEach(func(x *Entry) { u.forward.Append(x) })
	// 3. For every w in u.backward, append v and v.forward to w.forward.
	u.backward.ForEach(func(w *Entry) {
		w.forward.Append(v)
		v.forward.ForEach(func(x *Entry) { w.forward.Append(x) })
	})
	// 4. Append u to v.backward; append every item of u.backward to v.backward.
	v.backward.Append(u)
	u.backward.ForEach(func(x *Entry) { v.backward.Append(x) })
	// 5. For every x in v.forward, append u and u.backward to x.backward.
	v.forward.ForEach(func(x *Entry) {
		x.backward.Append(u)
		u.backward.ForEach(func(y *Entry) { x.backward.Append(y) })
	})

	if log != nil {
		log.Debug("link", zap.String("from", u.Key), zap.String("to", v.Key))
	}
}

// unlink implements the exact inverse of link: call when an EntryRef(v)
// element is being removed from u.elements. It uses pop-first-matching
// rather than pop-all, which is what keeps the closures' duplicate counts
// correct when v appears multiple times in u.elements.
func unlink(u, v *Entry, log *zap.Logger) {
	// inverse of step 5
	v.forward.ForEach(func(x *Entry) {
		u.backward.ForEach(func(y *Entry) { entryPopFirst(x.backward, y) })
		entryPopFirst(x.backward, u)
	})
	// inverse of step 4
	u.backward.ForEach(func(x *Entry) { entryPopFirst(v.backward, x) })
	entryPopFirst(v.backward, u)
	// inverse of step 3
	u.backward.ForEach(func(w *Entry) {
		v.forward.ForEach(func(x *Entry) { entryPopFirst(w.forward, x) })
		entryPopFirst(w.forward, v)
	})
	// inverse of step 2
	v.forward.ForEach(func(x *Entry) { entryPopFirst(u.forward, x) })
	// inverse of step 1
	entryPopFirst(u.forward, v)

	if log != nil {
		log.Debug("unlink", zap.String("from", u.Key), zap.String("to", v.Key))
	}
}

// refAll calls link for every EntryRef element in elements, in order.
func refAll(u *Entry, elements *seq.Sequence[Element], log *zap.Logger) {
	elements.ForEach(func(el Element) {
		if el.IsRef() {
			link(u, el.Ref, log)
		}
	})
}

// derefAll unlinks u from every entry in u.forward. forward mutates as each
// unlink runs, which is exactly the hazard spec §9 flags for the source's
// index-based loop; this instead repeatedly unlinks forward[0] until
// forward is empty, which is safe because link() appends each direct
// target's contribution ([target] followed by target.forward) as a
// contiguous block — unlinking forward[0] always removes one whole block,
// leaving the next direct target's block at the head.
func derefAll(u *Entry, log *zap.Logger) {
	for u.forward.Len() > 0 {
		v, _ := u.forward.Get(0)
		unlink(u, v, log)
	}
}
