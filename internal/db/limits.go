package db

// MaxEntries bounds the number of live entries a single State may hold.
// MaxElementsPerEntry bounds the elements any one Entry's own sequence may
// hold. Go's allocator doesn't surface malloc/realloc failure the way the
// source's darray does (integerdb.c checks every malloc/realloc return for
// NULL and bubbles it up as "out of memory"); these two caps are this port's
// stand-in resource limit, giving ErrOutOfMemory a real, deliberately
// triggerable path from SET/PUSH/APPEND instead of a sentinel nothing ever returns.
const (
	MaxEntries          = 4096
	MaxElementsPerEntry = 4096
)
