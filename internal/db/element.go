package db

import "strconv"

// Kind tags an Element as holding a signed integer or a reference to
// another Entry.
type Kind int

const (
	// Integer marks an Element holding a plain int32 value.
	Integer Kind = iota
	// EntryRef marks an Element holding a non-owning reference to another Entry.
	EntryRef
)

// Element is a tagged value: either an Integer or an EntryRef. It never owns
// the Entry it references — lifetime of the target is bounded by the State
// or Snapshot that owns it.
type Element struct {
	Kind Kind
	Int  int32
	Ref  *Entry
}

// NewIntElement returns an Element holding n.
func NewIntElement(n int32) Element {
	return Element{Kind: Integer, Int: n}
}

// NewRefElement returns an Element referencing e.
func NewRefElement(e *Entry) Element {
	return Element{Kind: EntryRef, Ref: e}
}

// IsRef reports whether the element is a reference to another entry.
func (e Element) IsRef() bool { return e.Kind == EntryRef }

// String renders the element the way GET/PICK/POP/PLUCK print it: the
// decimal value for an integer, the target's key for a reference.
func (e Element) String() string {
	if e.Kind == EntryRef {
		if e.Ref == nil {
			return ""
		}
		return e.Ref.Key
	}
	return strconv.FormatInt(int64(e.Int), 10)
}

// intCompare returns the standard three-way ordering of two integer
// elements: -1, 0 or 1, found by comparison rather than subtraction so it
// cannot overflow. Comparing a
// reference element is never requested by the sort path: SORT/UNIQ/REV are
// gated to simple entries at the façade layer.
func intCompare(a, b Element) int {
	switch {
	case a.Int < b.Int:
		return -1
	case a.Int > b.Int:
		return 1
	default:
		return 0
	}
}

// aggregate folds the recursive MIN/MAX/SUM/LEN semantics over a single
// element: an integer contributes itself, a reference recurses into its
// target's elements.
type aggregate struct {
	hasMin bool
	min    int64
	hasMax bool
	max    int64
	sum    int64
	length int64
}

func (a *aggregate) visit(e Element) {
	if e.Kind == Integer {
		v := int64(e.Int)
		if !a.hasMin || v < a.min {
			a.min = v
			a.hasMin = true
		}
		if !a.hasMax || v > a.max {
			a.max = v
			a.hasMax = true
		}
		a.sum += v
		a.length++
		return
	}
	if e.Ref == nil {
		return
	}
	e.Ref.elements.ForEach(a.visit)
}
