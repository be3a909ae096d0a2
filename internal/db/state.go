package db

import (
	"go.uber.org/zap"

	"github.com/ymirdb/ymirdb/internal/db/seq"
)

// State is the live, insertion-ordered collection of entries, keyed by
// name. Ordering matters for LIST and for SET, which replaces an existing
// entry in place.
type State struct {
	entries *seq.Sequence[*Entry]
	log     *zap.Logger
}

// NewState returns an empty state.
func NewState(log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	return &State{entries: seq.New[*Entry](), log: log.Named("state")}
}

// Len returns the number of entries in the state.
func (s *State) Len() int { return s.entries.Len() }

// Entries exposes the underlying ordered sequence for iteration (LIST, clone, etc).
func (s *State) Entries() *seq.Sequence[*Entry] { return s.entries }

func keySearch(s *seq.Sequence[*Entry], key string) (int, bool) {
	return s.Search(key, func(item *Entry, needle any) int {
		if item.HasKey(needle.(string)) {
			return 0
		}
		return 1
	})
}

// FindByKey returns the index of the entry with the given key, or -1 and
// false if no such entry exists.
func (s *State) FindByKey(key string) (int, bool) {
	return keySearch(s.entries, key)
}

// Get returns the entry with the given key, or nil and false.
func (s *State) Get(key string) (*Entry, bool) {
	idx, ok := s.FindByKey(key)
	if !ok {
		return nil, false
	}
	e, _ := s.entries.Get(idx)
	return e, true
}

// InsertAt inserts e at index i.
func (s *State) InsertAt(i int, e *Entry) error {
	return s.entries.Insert(i, e)
}

// RemoveAt removes and returns the entry at index i.
func (s *State) RemoveAt(i int) (*Entry, error) {
	return s.entries.Pop(i)
}

// CanPurge reports whether the key is absent, or present with an empty
// backward closure (spec §4.5).
func (s *State) CanPurge(key string) bool {
	e, ok := s.Get(key)
	if !ok {
		return true
	}
	return e.Backward().Len() == 0
}

// Purge removes the entry with the given key, unlinking its forward
// targets first. It is a no-op if the key is absent. The caller must have
// already verified purgeability across all states (live and every
// snapshot) — Purge itself performs no backward-closure check.
func (s *State) Purge(key string) {
	idx, ok := s.FindByKey(key)
	if !ok {
		return
	}
	e, _ := s.entries.Get(idx)
	derefAll(e, s.log)
	_, _ = s.entries.Pop(idx)
	e.destroy()
}

// Clear empties the state, unlinking every entry's forward references
// first so no dangling backward pointers survive into whatever replaces it.
func (s *State) Clear() {
	s.entries.ForEach(func(e *Entry) { derefAll(e, s.log) })
	s.entries.ForEach(func(e *Entry) { e.destroy() })
	s.entries.Clear()
}
