package obs

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

// DumpErrChain walks err's chain and prints each layer with its type —
// the same shape as the teacher's pkg/fmtt.PrintErrChain, used here so a
// developer chasing an OutOfMemory or other internal-invariant report gets
// the full wrapped chain, not just the top-level reply string.
func DumpErrChain(w io.Writer, err error) {
	if err == nil {
		fmt.Fprintln(w, "<nil>")
		return
	}
	for i, e := 0, err; e != nil; i, e = i+1, errors.Unwrap(e) {
		fmt.Fprintf(w, "[%d] %T: %v\n", i, e, e)
	}
}

// DumpState spew-dumps v (typically the façade's State or Entry that was
// involved in an internal-invariant failure) to w, field by field, for
// post-mortem debugging. Never called from a success path.
func DumpState(w io.Writer, v any) {
	rv := reflect.ValueOf(v)
	fmt.Fprintf(w, "%T:\n", v)
	spew.Fdump(w, rv.Interface())
}
