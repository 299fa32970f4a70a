package symtab

import (
	"iter"
	"strings"
)

// BoxedBackend gives every interned string its own exact-size allocation and
// keeps the handles in a plain slice. It makes the most allocations of the
// four strategies, one per string, but is the simplest to reason about: the
// handle slice reallocating on growth moves only string headers, never the
// bytes they own, so resolved strings stay valid across further interning,
// like BucketBackend.
type BoxedBackend struct {
	strs []string
}

var _ Backend = (*BoxedBackend)(nil)

// NewBoxedBackend creates a backend pre-sized for about capacityHint
// entries. The hint is advisory, never a hard cap.
func NewBoxedBackend(capacityHint int) *BoxedBackend {
	b := &BoxedBackend{}

	if capacityHint > 0 {
		b.strs = make([]string, 0, capacityHint)
	}

	return b
}

// Intern implements Backend.Intern. The contents are cloned into an
// independent allocation, detaching them from any larger buffer backing s.
func (b *BoxedBackend) Intern(s string) (Symbol, error) {
	sym, err := SymbolFromIndex(len(b.strs))
	if err != nil {
		return InvalidSymbol, err
	}

	b.strs = append(b.strs, strings.Clone(s))

	return sym, nil
}

// InternStatic falls back to Intern; this backend always owns exact-size
// copies.
func (b *BoxedBackend) InternStatic(s string) (Symbol, error) {
	return b.Intern(s)
}

// Resolve implements Backend.Resolve.
func (b *BoxedBackend) Resolve(sym Symbol) (string, bool) {
	idx := sym.Index()
	if idx < 0 || idx >= len(b.strs) {
		return "", false
	}

	return b.strs[idx], true
}

// ResolveUnchecked implements Backend.ResolveUnchecked. Passing a symbol not
// issued by this exact backend instance panics or returns unrelated contents.
func (b *BoxedBackend) ResolveUnchecked(sym Symbol) string {
	return b.strs[sym.Index()]
}

// Len implements Backend.Len.
func (b *BoxedBackend) Len() int {
	return len(b.strs)
}

// Capacity returns the reserved handle slots.
func (b *BoxedBackend) Capacity() int {
	return cap(b.strs)
}

// ShrinkToFit clips the handle slice to its exact length. Only headers move;
// the bytes they own stay put.
func (b *BoxedBackend) ShrinkToFit() {
	if cap(b.strs) > len(b.strs) {
		strs := make([]string, len(b.strs))
		copy(strs, b.strs)
		b.strs = strs
	}
}

// Reset discards every entry and invalidates all issued symbols. Each
// entry's bytes are an independent allocation, so the handle slice can be
// reused safely.
func (b *BoxedBackend) Reset() {
	b.strs = b.strs[:0]
}

// Clone copies every entry's contents into fresh allocations, producing a
// fully independent backend.
func (b *BoxedBackend) Clone() Backend {
	clone := &BoxedBackend{strs: make([]string, len(b.strs))}
	for i, s := range b.strs {
		clone.strs[i] = strings.Clone(s)
	}

	return clone
}

// All implements Backend.All in insertion order.
func (b *BoxedBackend) All() iter.Seq2[Symbol, string] {
	return func(yield func(Symbol, string) bool) {
		for idx, s := range b.strs {
			if !yield(MustSymbolFromIndex(idx), s) {
				return
			}
		}
	}
}
