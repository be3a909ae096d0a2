package repl

import (
	"strings"
	"testing"

	"github.com/ymirdb/ymirdb/internal/db"
)

// runLines feeds lines through a fresh Dispatcher (bypassing the prompt/
// blank-line scaffolding in Session.Run) and returns each command's reply
// text, in order, so scenario assertions can check replies directly.
func runLines(lines ...string) []string {
	d := NewDispatcher(nil)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = d.Dispatch(line).text
	}
	return out
}

func TestScenarioAggregatesOnSimpleEntry(t *testing.T) {
	got := runLines("SET a 1 2 3", "LEN a", "SUM a", "MIN a", "MAX a")
	want := []string{"ok", "3", "6", "1", "3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestScenarioGeneralEntryAndProtectedDelete(t *testing.T) {
	got := runLines(
		"SET a 1 2 3",
		"SET b 10 a 20",
		"LEN b",
		"SUM b",
		"FORWARD b",
		"BACKWARD a",
		"TYPE b",
		"DEL a",
	)
	want := []string{"ok", "ok", "5", "36", "a", "b", "general", "not permitted"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestScenarioChainedReferencesAndOrderedDeletion(t *testing.T) {
	got := runLines(
		"SET a 1",
		"SET b a",
		"SET c b",
		"FORWARD c",
		"BACKWARD a",
		"DEL b",
		"DEL c",
		"DEL b",
		"DEL a",
	)
	want := []string{"ok", "ok", "ok", "a, b", "b, c", "not permitted", "ok", "ok", "ok"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestScenarioSnapshotCheckoutRoundTrip(t *testing.T) {
	got := runLines(
		"SET a 1 2",
		"SNAPSHOT",
		"APPEND a 3",
		"LIST SNAPSHOTS",
		"CHECKOUT 1",
		"GET a",
	)
	want := []string{"ok", "saved as snapshot 1", "ok", "1", "ok", "[1 2]"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestScenarioPopPreservesMultisetClosure(t *testing.T) {
	got := runLines(
		"SET a 5",
		"SET b a a",
		"LEN b",
		"SUM b",
		"POP b",
		"BACKWARD a",
		"POP b",
		"BACKWARD a",
	)
	want := []string{"ok", "ok", "2", "10", "a", "b", "a", "nil"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestScenarioPushSortRevUniq(t *testing.T) {
	got := runLines(
		"SET a 1",
		"PUSH a 2 3",
		"GET a",
		"SORT a",
		"GET a",
		"REV a",
		"GET a",
		"UNIQ a",
	)
	want := []string{"ok", "ok", "[3 2 1]", "ok", "[1 2 3]", "ok", "[3 2 1]", "ok"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestDispatchIsCaseInsensitiveOnVerbs(t *testing.T) {
	got := runLines("set a 1", "GET a", "get a")
	if got[0] != "ok" {
		t.Fatalf("lowercase verb should work, got %q", got[0])
	}
	if got[1] != "[1]" || got[2] != "[1]" {
		t.Fatalf("expected [1] regardless of verb case, got %v", got)
	}
}

func TestUnknownVerbReportsNoSuchCommand(t *testing.T) {
	got := runLines("FROBNICATE a")
	if got[0] != "no such command" {
		t.Fatalf("expected 'no such command', got %q", got[0])
	}
}

func TestListSubVerbValidation(t *testing.T) {
	got := runLines("LIST", "LIST BOGUS", "LIST keys")
	if got[0] != "invalid list command" || got[1] != "invalid list command" {
		t.Fatalf("expected invalid list command for both, got %v", got)
	}
	if got[2] != "no keys" {
		t.Fatalf("expected 'no keys' on an empty state, got %q", got[2])
	}
}

func TestAppendPastElementCapReportsOutOfMemory(t *testing.T) {
	d := NewDispatcher(nil)

	vals := make([]string, db.MaxElementsPerEntry)
	for i := range vals {
		vals[i] = "1"
	}
	if res := d.Dispatch("SET a " + strings.Join(vals, " ")); res.text != "ok" {
		t.Fatalf("expected ok filling 'a' to the cap, got %q", res.text)
	}

	res := d.Dispatch("APPEND a 2")
	if res.text != "out of memory" {
		t.Fatalf("expected 'out of memory' past the element cap, got %q", res.text)
	}
}

func TestByeExits(t *testing.T) {
	d := NewDispatcher(nil)
	res := d.Dispatch("BYE")
	if !res.exit || res.text != "bye" {
		t.Fatalf("expected exit=true text=bye, got %+v", res)
	}
}

func TestSessionRunEmitsPromptAndBlankLines(t *testing.T) {
	sess := NewSession("> ", nil)
	in := strings.NewReader("SET a 1\nGET a\nBYE\n")
	var out strings.Builder

	if err := sess.Run(in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "> ok\n\n") {
		t.Errorf("expected prompted ok reply with trailing blank line, got %q", got)
	}
	if !strings.Contains(got, "> [1]\n\n") {
		t.Errorf("expected prompted [1] reply, got %q", got)
	}
	if !strings.HasSuffix(got, "> bye\n\n") {
		t.Errorf("expected session to end with bye, got %q", got)
	}
}
