package db

import "errors"

// Error kinds surfaced by the façade, mapped 1:1 to the reply strings in
// spec §6. All are recoverable at the command boundary: the caller reports
// the reply string and the REPL session continues.
var (
	ErrNoSuchKey      = errors.New("no such key")
	ErrNoSuchSnapshot = errors.New("no such snapshot")
	ErrNotPermitted   = errors.New("not permitted")
	ErrOutOfRange     = errors.New("index out of range")
	ErrInvalidInteger = errors.New("invalid integer")
	ErrMissingKey     = errors.New("missing key")
	ErrNotSimple      = errors.New("entry is not simple")
	ErrInvalidListArg = errors.New("invalid list command")
	ErrUnknownCommand = errors.New("no such command")
	ErrOutOfMemory    = errors.New("out of memory")
)
