// Package db implements the entry graph, transitive-closure bookkeeping,
// snapshot store, and command façade described in spec.md §3–§4 — the core
// of ymirdb. It has no knowledge of line-oriented I/O; internal/repl drives
// it from parsed command lines.
package db

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Facade exposes one method per command verb in spec §4.7. Every method
// validates its arguments against the current State and SnapshotStore
// before mutating anything, so a failed command never leaves a partial
// mutation behind.
type Facade struct {
	State     *State
	Snapshots *SnapshotStore
	log       *zap.Logger
}

// NewFacade returns a façade over a fresh, empty state and snapshot store.
func NewFacade(log *zap.Logger) *Facade {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("facade")
	return &Facade{
		State:     NewState(log),
		Snapshots: NewSnapshotStore(log),
		log:       log,
	}
}

// EntryView is the printable projection of an Entry used by LIST ENTRIES.
type EntryView struct {
	Key      string
	Elements []Element
}

// Get returns key's elements, in order.
func (f *Facade) Get(key string) ([]Element, error) {
	e, ok := f.State.Get(key)
	if !ok {
		return nil, fmt.Errorf("get %q: %w", key, ErrNoSuchKey)
	}
	return e.Elements().Slice(), nil
}

// Set parses vals against the state, rejects a self-reference, and
// replaces key's elements wholesale — creating key if it doesn't already
// exist, appended at the end of the state (preserving the order of every
// other key).
func (f *Facade) Set(key string, vals []string) error {
	if !ValidateKey(key) {
		return fmt.Errorf("set %q: %w", key, ErrMissingKey)
	}

	idx, exists := f.State.FindByKey(key)

	var self *Entry
	if exists {
		self, _ = f.State.Get(key)
	} else {
		self = NewEntry(key)
	}

	parsed, err := ParseElements(vals, f.State, self)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	if parsed.Len() > MaxElementsPerEntry {
		return fmt.Errorf("set %q: %w", key, ErrOutOfMemory)
	}
	if !exists && f.State.Len() >= MaxEntries {
		return fmt.Errorf("set %q: %w", key, ErrOutOfMemory)
	}

	if exists {
		derefAllElements(self, f.log)
		self.elements.Clear()
	} else {
		idx = f.State.Len()
		if err := f.State.InsertAt(idx, self); err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
	}

	self.elements.Extend(parsed)
	refAll(self, parsed, f.log)
	return nil
}

// Push parses vals, reverses them, and inserts them at the front of key's
// elements. A parse failure — even discovered only after reversing —
// leaves key untouched.
func (f *Facade) Push(key string, vals []string) error {
	e, ok := f.State.Get(key)
	if !ok {
		return fmt.Errorf("push %q: %w", key, ErrNoSuchKey)
	}
	parsed, err := ParseElements(vals, f.State, e)
	if err != nil {
		return fmt.Errorf("push %q: %w", key, err)
	}
	if e.elements.Len()+parsed.Len() > MaxElementsPerEntry {
		return fmt.Errorf("push %q: %w", key, ErrOutOfMemory)
	}
	parsed.Reverse()

	if err := e.elements.ExtendAt(0, parsed); err != nil {
		return fmt.Errorf("push %q: %w", key, err)
	}
	refAll(e, parsed, f.log)
	return nil
}

// Append parses vals and extends key's elements at the end.
func (f *Facade) Append(key string, vals []string) error {
	e, ok := f.State.Get(key)
	if !ok {
		return fmt.Errorf("append %q: %w", key, ErrNoSuchKey)
	}
	parsed, err := ParseElements(vals, f.State, e)
	if err != nil {
		return fmt.Errorf("append %q: %w", key, err)
	}
	if e.elements.Len()+parsed.Len() > MaxElementsPerEntry {
		return fmt.Errorf("append %q: %w", key, ErrOutOfMemory)
	}
	e.elements.Extend(parsed)
	refAll(e, parsed, f.log)
	return nil
}

// Pick returns the 1-based idx'th element of key's elements, without removing it.
func (f *Facade) Pick(key string, idx int) (Element, error) {
	e, ok := f.State.Get(key)
	if !ok {
		return Element{}, fmt.Errorf("pick %q: %w", key, ErrNoSuchKey)
	}
	el, err := e.elements.Get(idx - 1)
	if err != nil {
		return Element{}, fmt.Errorf("pick %q %d: %w", key, idx, ErrOutOfRange)
	}
	return el, nil
}

// Pluck returns and removes the 1-based idx'th element of key's elements,
// unlinking it first if it was a reference.
func (f *Facade) Pluck(key string, idx int) (Element, error) {
	e, ok := f.State.Get(key)
	if !ok {
		return Element{}, fmt.Errorf("pluck %q: %w", key, ErrNoSuchKey)
	}
	el, err := e.elements.Get(idx - 1)
	if err != nil {
		return Element{}, fmt.Errorf("pluck %q %d: %w", key, idx, ErrOutOfRange)
	}
	if el.IsRef() {
		unlink(e, el.Ref, f.log)
	}
	_, _ = e.elements.Pop(idx - 1)
	return el, nil
}

// Pop returns and removes the front element of key's elements.
func (f *Facade) Pop(key string) (Element, error) {
	return f.Pluck(key, 1)
}

// Del removes key from the live state, failing if any entry still has a
// backward reference into it.
func (f *Facade) Del(key string) error {
	idx, ok := f.State.FindByKey(key)
	if !ok {
		return fmt.Errorf("del %q: %w", key, ErrNoSuchKey)
	}
	e, _ := f.State.Get(key)
	if e.Backward().Len() > 0 {
		return fmt.Errorf("del %q: %w", key, ErrNotPermitted)
	}
	derefAll(e, f.log)
	_, _ = f.State.RemoveAt(idx)
	e.destroy()
	return nil
}

// Purge removes key from the live state and every snapshot. An absent key is
// vacuously purgeable (spec §4.5): Purge only fails if key is present
// somewhere — live or in any snapshot — with a non-empty backward closure.
func (f *Facade) Purge(key string) error {
	if !f.State.CanPurge(key) || !f.Snapshots.CanPurgeEverywhere(key) {
		return fmt.Errorf("purge %q: %w", key, ErrNotPermitted)
	}
	f.State.Purge(key)
	f.Snapshots.PurgeKey(key)
	return nil
}

// Snapshot captures the live state, returning the new snapshot's id.
func (f *Facade) Snapshot() uint64 {
	return f.Snapshots.Capture(f.State)
}

// Drop removes the snapshot with the given id.
func (f *Facade) Drop(id uint64) error {
	if err := f.Snapshots.Drop(id); err != nil {
		return fmt.Errorf("drop %d: %w", id, err)
	}
	return nil
}

// Checkout replaces the live state with a deep clone of the target
// snapshot's state. Snapshots are untouched.
func (f *Facade) Checkout(id uint64) error {
	cloned, err := f.Snapshots.Checkout(id)
	if err != nil {
		return fmt.Errorf("checkout %d: %w", id, err)
	}
	f.State.Clear()
	f.State = cloned
	return nil
}

// Rollback replaces the live state with a deep clone of the target
// snapshot's state and drops every snapshot newer than it.
func (f *Facade) Rollback(id uint64) error {
	cloned, err := f.Snapshots.Rollback(id)
	if err != nil {
		return fmt.Errorf("rollback %d: %w", id, err)
	}
	f.State.Clear()
	f.State = cloned
	return nil
}

// Min returns the recursive minimum over key's elements, or math.MaxInt32 if
// no integer leaf is reachable (mirroring entry_min's untouched INT_MAX seed).
func (f *Facade) Min(key string) (int64, error) {
	agg, err := f.aggregate(key)
	if err != nil {
		return 0, err
	}
	if !agg.hasMin {
		return math.MaxInt32, nil
	}
	return agg.min, nil
}

// Max returns the recursive maximum over key's elements, or math.MinInt32 if
// no integer leaf is reachable (mirroring entry_max's untouched INT_MIN seed).
func (f *Facade) Max(key string) (int64, error) {
	agg, err := f.aggregate(key)
	if err != nil {
		return 0, err
	}
	if !agg.hasMax {
		return math.MinInt32, nil
	}
	return agg.max, nil
}

// Sum returns the recursive sum over key's elements, accumulated in int64.
func (f *Facade) Sum(key string) (int64, error) {
	agg, err := f.aggregate(key)
	if err != nil {
		return 0, err
	}
	return agg.sum, nil
}

// Len returns the count of leaf integers reachable from key's elements.
func (f *Facade) Len(key string) (int64, error) {
	agg, err := f.aggregate(key)
	if err != nil {
		return 0, err
	}
	return agg.length, nil
}

func (f *Facade) aggregate(key string) (*aggregate, error) {
	e, ok := f.State.Get(key)
	if !ok {
		return nil, fmt.Errorf("aggregate %q: %w", key, ErrNoSuchKey)
	}
	agg := &aggregate{}
	e.elements.ForEach(agg.visit)
	return agg, nil
}

// Rev reverses key's elements in place. key must be simple.
func (f *Facade) Rev(key string) error {
	e, err := f.simpleEntry(key, "rev")
	if err != nil {
		return err
	}
	e.elements.Reverse()
	return nil
}

// Uniq removes adjacent-equal elements from key's elements. key must be simple.
func (f *Facade) Uniq(key string) error {
	e, err := f.simpleEntry(key, "uniq")
	if err != nil {
		return err
	}
	e.elements.Unique(intCompare)
	return nil
}

// Sort sorts key's elements ascending. key must be simple.
func (f *Facade) Sort(key string) error {
	e, err := f.simpleEntry(key, "sort")
	if err != nil {
		return err
	}
	e.elements.Sort(intCompare)
	return nil
}

func (f *Facade) simpleEntry(key, op string) (*Entry, error) {
	e, ok := f.State.Get(key)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", op, key, ErrNoSuchKey)
	}
	if !e.IsSimple() {
		return nil, fmt.Errorf("%s %q: %w", op, key, ErrNotSimple)
	}
	return e, nil
}

// Forward returns key's forward closure, de-duplicated and key-sorted ascending.
func (f *Facade) Forward(key string) ([]string, error) {
	return f.closureKeys(key, true)
}

// Backward returns key's backward closure, de-duplicated and key-sorted ascending.
func (f *Facade) Backward(key string) ([]string, error) {
	return f.closureKeys(key, false)
}

func (f *Facade) closureKeys(key string, forward bool) ([]string, error) {
	e, ok := f.State.Get(key)
	if !ok {
		return nil, fmt.Errorf("closure %q: %w", key, ErrNoSuchKey)
	}
	closure := e.Forward()
	if !forward {
		closure = e.Backward()
	}

	keys := make([]string, 0, closure.Len())
	closure.ForEach(func(t *Entry) { keys = append(keys, t.Key) })
	sortStrings(keys)
	return dedupAdjacent(keys), nil
}

// Type returns "simple" or "general" for key.
func (f *Facade) Type(key string) (string, error) {
	e, ok := f.State.Get(key)
	if !ok {
		return "", fmt.Errorf("type %q: %w", key, ErrNoSuchKey)
	}
	if e.IsSimple() {
		return "simple", nil
	}
	return "general", nil
}

// ListKeys returns the live state's keys, in insertion order.
func (f *Facade) ListKeys() []string {
	keys := make([]string, 0, f.State.Len())
	f.State.Entries().ForEach(func(e *Entry) { keys = append(keys, e.Key) })
	return keys
}

// ListEntries returns the live state's entries, in insertion order.
func (f *Facade) ListEntries() []EntryView {
	views := make([]EntryView, 0, f.State.Len())
	f.State.Entries().ForEach(func(e *Entry) {
		views = append(views, EntryView{Key: e.Key, Elements: e.Elements().Slice()})
	})
	return views
}

// ListSnapshots returns the ids of every held snapshot, in stored
// (newest-first) order.
func (f *Facade) ListSnapshots() []uint64 {
	ids := make([]uint64, 0, f.Snapshots.Len())
	f.Snapshots.Snapshots().ForEach(func(s *Snapshot) { ids = append(ids, s.ID) })
	return ids
}

// derefAllElements unlinks e from every EntryRef currently in e.elements
// (as opposed to derefAll, which walks e.forward — used when replacing an
// entry's own elements outright, since e isn't being deleted and its
// forward closure is about to be rebuilt from scratch by the caller).
func derefAllElements(e *Entry, log *zap.Logger) {
	e.elements.ForEach(func(el Element) {
		if el.IsRef() {
			unlink(e, el.Ref, log)
		}
	})
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func dedupAdjacent(s []string) []string {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if out[len(out)-1] != v {
			out = append(out, v)
		}
	}
	return out
}
