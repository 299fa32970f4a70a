package symtab

import "errors"

// ErrOutOfSymbols is returned when interning one more string would exceed the
// symbol domain: 2^32 - 1 entries for index-based backends, or the
// addressable offset range for ByteBufferBackend. It is raised before any
// mutation, so a failed intern leaves the interner untouched.
var ErrOutOfSymbols = errors.New("symbol space exhausted")

// ErrOutOfMemory is returned when an append or reservation would exceed the
// backend's addressable storage range. True allocation failure aborts the
// process in Go; this error covers the capacity arithmetic that can be
// checked ahead of time, again before any mutation.
var ErrOutOfMemory = errors.New("storage capacity exceeded")
