package symtab

import "iter"

// Backend is a storage strategy for interned strings. A backend owns the
// bytes of every entry, assigns symbols densely in insertion order (except
// ByteBufferBackend, whose symbols encode buffer offsets), and resolves
// symbols back to string views of its own storage.
//
// Backends are not safe for concurrent mutation. Concurrent reads
// (Resolve, Len, All) are safe as long as no write runs at the same time.
type Backend interface {
	// Intern copies s into backend-owned storage and assigns the next
	// symbol. It fails only with ErrOutOfSymbols or ErrOutOfMemory, always
	// before mutating any state.
	Intern(s string) (Symbol, error)

	// InternStatic interns without copying on backends whose descriptors can
	// reference caller-owned storage directly; the rest fall back to Intern.
	// A no-copy backend keeps s, and any larger buffer backing it, reachable
	// for its lifetime, so callers should pass strings they are happy to pin.
	// Typically literals.
	InternStatic(s string) (Symbol, error)

	// Resolve returns the contents for sym, or false when sym was not issued
	// by this backend instance.
	Resolve(sym Symbol) (string, bool)

	// ResolveUnchecked returns the contents for sym without validating it.
	// The caller must guarantee sym was issued by this exact backend
	// instance; anything else panics or returns unrelated contents.
	ResolveUnchecked(sym Symbol) string

	// Len returns the number of interned strings.
	Len() int

	// Capacity returns the reserved size of the backend's primary growth
	// structure. Units are backend-specific: bytes for the buffer-based
	// backends, entry slots for BoxedBackend.
	Capacity() int

	// ShrinkToFit releases unused reserved capacity where the backend's
	// stability contract allows it. It never invalidates issued symbols.
	ShrinkToFit()

	// Reset discards every entry and invalidates all issued symbols.
	Reset()

	// Clone produces an independent backend with equal contents. Backends
	// whose descriptors are views into their own storage replay contents
	// instead of copying descriptors.
	Clone() Backend

	// All yields every (symbol, contents) pair in strictly increasing symbol
	// order, reflecting the state at call time.
	All() iter.Seq2[Symbol, string]
}

// BackendsEqual reports whether two backends hold the same contents in the
// same insertion order. Equality is content-wise: internal layout, strategy,
// and symbol encoding do not participate.
func BackendsEqual(x, y Backend) bool {
	if x == y {
		return true
	}

	if x.Len() != y.Len() {
		return false
	}

	next, stop := iter.Pull2(y.All())
	defer stop()

	for _, s := range x.All() {
		_, other, ok := next()
		if !ok || other != s {
			return false
		}
	}

	return true
}
