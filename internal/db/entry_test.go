package db

import (
	"testing"

	"github.com/ymirdb/ymirdb/internal/db/seq"
)

func elementsFor(_ *testing.T, els []Element) *seq.Sequence[Element] {
	return seq.FromSlice(els)
}

func TestCanLinkRejectsSelfReference(t *testing.T) {
	a := NewEntry("a")
	if CanLink(a, a) {
		t.Fatal("CanLink(a, a) should be false")
	}
}

func TestCanLinkRejectsCycle(t *testing.T) {
	a, b := NewEntry("a"), NewEntry("b")
	link(a, b, nil)
	if CanLink(b, a) {
		t.Fatal("CanLink(b, a) should be false once a -> b exists")
	}
}

func TestLinkUpdatesForwardAndBackwardClosures(t *testing.T) {
	a, b := NewEntry("a"), NewEntry("b")
	link(a, b, nil)

	if !entryContains(a.forward, b) {
		t.Error("a.forward should contain b")
	}
	if !entryContains(b.backward, a) {
		t.Error("b.backward should contain a")
	}
}

func TestLinkPropagatesTransitively(t *testing.T) {
	a, b, c := NewEntry("a"), NewEntry("b"), NewEntry("c")
	link(b, c, nil)
	link(a, b, nil)

	if !entryContains(a.forward, c) {
		t.Error("a.forward should contain c transitively")
	}
	if !entryContains(c.backward, a) {
		t.Error("c.backward should contain a transitively")
	}
}

func TestUnlinkIsExactInverseOfLink(t *testing.T) {
	a, b, c := NewEntry("a"), NewEntry("b"), NewEntry("c")
	link(b, c, nil)
	link(a, b, nil)
	unlink(a, b, nil)

	if a.forward.Len() != 0 {
		t.Errorf("a.forward should be empty after unlink, got len %d", a.forward.Len())
	}
	if entryContains(b.backward, a) {
		t.Error("b.backward should no longer contain a")
	}
	if entryContains(c.backward, a) {
		t.Error("c.backward should no longer contain a (transitively removed)")
	}
	// b -> c survives: unlinking a -> b must not disturb b's own links.
	if !entryContains(b.forward, c) {
		t.Error("b.forward should still contain c")
	}
}

func TestDerefAllUnlinksEveryDirectTarget(t *testing.T) {
	a, b, c := NewEntry("a"), NewEntry("b"), NewEntry("c")
	link(a, b, nil)
	link(a, c, nil)

	derefAll(a, nil)

	if a.forward.Len() != 0 {
		t.Errorf("a.forward should be empty after derefAll, got len %d", a.forward.Len())
	}
	if entryContains(b.backward, a) || entryContains(c.backward, a) {
		t.Error("b and c should no longer list a in backward")
	}
}

func TestDerefAllWithSharedTransitiveTarget(t *testing.T) {
	// a -> b -> d, a -> c -> d: d.backward should end up with a appearing
	// twice (once via b, once via c) before derefAll, and zero after.
	a, b, c, d := NewEntry("a"), NewEntry("b"), NewEntry("c"), NewEntry("d")
	link(b, d, nil)
	link(c, d, nil)
	link(a, b, nil)
	link(a, c, nil)

	count := 0
	d.backward.ForEach(func(e *Entry) {
		if e == a {
			count++
		}
	})
	if count != 2 {
		t.Fatalf("expected d.backward to list a twice before derefAll, got %d", count)
	}

	derefAll(a, nil)

	if entryContains(d.backward, a) {
		t.Error("d.backward should not contain a after derefAll")
	}
	if a.forward.Len() != 0 {
		t.Error("a.forward should be empty after derefAll")
	}
}

func TestRefAllLinksEveryReferenceElementInOrder(t *testing.T) {
	self := NewEntry("self")
	target1 := NewEntry("t1")
	target2 := NewEntry("t2")

	els := []Element{NewIntElement(5), NewRefElement(target1), NewRefElement(target2)}
	seqEls := elementsFor(t, els)

	refAll(self, seqEls, nil)

	if !entryContains(self.forward, target1) || !entryContains(self.forward, target2) {
		t.Fatal("refAll should link self to both targets")
	}
}
