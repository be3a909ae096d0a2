package db

import (
	"go.uber.org/zap"

	"github.com/ymirdb/ymirdb/internal/db/seq"
)

// Snapshot is an immutable point-in-time deep copy of a past state, tagged
// with an id unique for the life of the process.
type Snapshot struct {
	ID    uint64
	State *State
}

// SnapshotStore is the ordered collection of snapshots, newest-first (spec
// §4.6: SNAPSHOT prepends). Ids are monotonically increasing across the
// process and never reused, even after the snapshot they named is dropped.
type SnapshotStore struct {
	snapshots *seq.Sequence[*Snapshot]
	nextID    uint64
	log       *zap.Logger
}

// NewSnapshotStore returns an empty snapshot store.
func NewSnapshotStore(log *zap.Logger) *SnapshotStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SnapshotStore{snapshots: seq.New[*Snapshot](), log: log.Named("snapshots")}
}

// Len returns the number of snapshots currently held.
func (st *SnapshotStore) Len() int { return st.snapshots.Len() }

// Snapshots exposes the underlying ordered sequence (newest first).
func (st *SnapshotStore) Snapshots() *seq.Sequence[*Snapshot] { return st.snapshots }

func snapshotSearch(s *seq.Sequence[*Snapshot], id uint64) (int, bool) {
	return s.Search(id, func(item *Snapshot, needle any) int {
		if item.ID == needle.(uint64) {
			return 0
		}
		return 1
	})
}

// Find returns the snapshot with the given id, or nil and false.
func (st *SnapshotStore) Find(id uint64) (*Snapshot, bool) {
	idx, ok := snapshotSearch(st.snapshots, id)
	if !ok {
		return nil, false
	}
	s, _ := st.snapshots.Get(idx)
	return s, true
}

// Capture deep-clones the live state and prepends it to the store as a new
// snapshot, returning its id.
func (st *SnapshotStore) Capture(live *State) uint64 {
	st.nextID++
	id := st.nextID

	cloned := cloneState(live, st.log)
	snap := &Snapshot{ID: id, State: cloned}

	if err := st.snapshots.Insert(0, snap); err != nil {
		// Insert(0, ...) on a valid sequence never fails; this would only
		// trip if the sequence itself were corrupt.
		panic(err)
	}

	st.log.Info("snapshot captured", zap.Uint64("id", id))
	return id
}

// Checkout deep-clones the target snapshot's state and returns it as a
// fresh State, leaving the snapshot store untouched.
func (st *SnapshotStore) Checkout(id uint64) (*State, error) {
	snap, ok := st.Find(id)
	if !ok {
		return nil, ErrNoSuchSnapshot
	}
	return cloneState(snap.State, st.log), nil
}

// Rollback deep-clones the target snapshot's state (same as Checkout) and
// drops every snapshot positioned before it in the newest-first store,
// i.e. every snapshot newer than the target (spec §4.6/§9).
func (st *SnapshotStore) Rollback(id uint64) (*State, error) {
	idx, ok := snapshotSearch(st.snapshots, id)
	if !ok {
		return nil, ErrNoSuchSnapshot
	}
	snap, _ := st.snapshots.Get(idx)
	cloned := cloneState(snap.State, st.log)

	if idx > 0 {
		if err := st.snapshots.PopRange(0, idx); err != nil {
			panic(err)
		}
	}

	st.log.Info("rollback", zap.Uint64("id", id))
	return cloned, nil
}

// Drop removes the snapshot with the given id.
func (st *SnapshotStore) Drop(id uint64) error {
	idx, ok := snapshotSearch(st.snapshots, id)
	if !ok {
		return ErrNoSuchSnapshot
	}
	_, _ = st.snapshots.Pop(idx)
	st.log.Info("snapshot dropped", zap.Uint64("id", id))
	return nil
}

// PurgeKey removes key from every snapshot's state that contains it
// (no-op for snapshots that lack it). The caller must have already
// verified that no entry anywhere — live or in any snapshot — has key in
// its backward closure.
func (st *SnapshotStore) PurgeKey(key string) {
	st.snapshots.ForEach(func(s *Snapshot) { s.State.Purge(key) })
}

// CanPurgeEverywhere reports whether key can be purged across every
// snapshot (in addition to the live state, which the caller checks
// separately): true iff it is absent, or present with an empty backward
// closure, in every snapshot.
func (st *SnapshotStore) CanPurgeEverywhere(key string) bool {
	ok := true
	st.snapshots.ForEach(func(s *Snapshot) {
		if !s.State.CanPurge(key) {
			ok = false
		}
	})
	return ok
}

// cloneState deep-clones src using the spec §4.6 two-pass procedure:
//  1. structural pass — clone the outer sequence, one new Entry per
//     original (key only, empty sequences);
//  2. linking pass — clone elements/forward/backward by mapping each
//     EntryRef to the clone with the same key, via an explicit lookup
//     scoped to this clone (no package-level "pool" variable — spec §9).
func cloneState(src *State, log *zap.Logger) *State {
	dst := NewState(log)

	// Pass 1: structural.
	cloneOf := make(map[*Entry]*Entry, src.Len())
	src.Entries().ForEach(func(orig *Entry) {
		c := NewEntry(orig.Key)
		cloneOf[orig] = c
		dst.entries.Append(c)
	})

	lookup := func(orig *Entry) *Entry {
		if orig == nil {
			return nil
		}
		return cloneOf[orig]
	}

	// Pass 2: linking. Clone elements first (preserving integers verbatim
	// and remapping EntryRef targets through lookup), then clone the
	// already-eagerly-computed forward/backward closures the same way —
	// no re-derivation via link/unlink is needed since the source state's
	// closures are already correct and shape-preserving.
	src.Entries().ForEach(func(orig *Entry) {
		c := cloneOf[orig]
		orig.elements.ForEach(func(el Element) {
			if el.IsRef() {
				c.elements.Append(NewRefElement(lookup(el.Ref)))
			} else {
				c.elements.Append(NewIntElement(el.Int))
			}
		})
		orig.forward.ForEach(func(v *Entry) { c.forward.Append(lookup(v)) })
		orig.backward.ForEach(func(v *Entry) { c.backward.Append(lookup(v)) })
	})

	return dst
}
