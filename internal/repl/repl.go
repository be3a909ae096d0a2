package repl

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Session drives a Dispatcher from a line-oriented reader, writing a
// prompt, a reply, and a trailing blank line for every command — the same
// shape as the original ymirdb REPL.
type Session struct {
	Prompt string
	disp   *Dispatcher
	log    *zap.Logger
}

// NewSession returns a Session with a fresh Dispatcher.
func NewSession(prompt string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{Prompt: prompt, disp: NewDispatcher(log), log: log.Named("session")}
}

// Run reads lines from r until EOF or an explicit BYE, writing prompts and
// replies to w. EOF on r is treated as an implicit BYE: the session clears
// its state and returns without printing anything further (the reader is
// already gone, so there is no one to print "bye" to).
func (s *Session) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Fprint(w, s.Prompt)

		if !scanner.Scan() {
			s.disp.Facade.State.Clear()
			return scanner.Err()
		}

		res := s.disp.Dispatch(scanner.Text())
		if res.text != "" {
			fmt.Fprintln(w, res.text)
		}
		fmt.Fprintln(w)

		if res.exit {
			return nil
		}
	}
}
