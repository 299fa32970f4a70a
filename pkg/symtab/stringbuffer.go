package symtab

import (
	"fmt"
	"iter"
	"slices"
	"unsafe"

	"github.com/Sumatoshi-tech/symtab/pkg/safeconv"
)

// span locates one interned string inside the shared buffer.
type span struct {
	start uint32
	end   uint32
}

// StringBufferBackend stores all contents in one contiguous buffer addressed
// by (start, end) spans. Growth reallocates and copies the buffer like any
// dynamic array; spans are offsets rather than addresses, so issued symbols
// survive reallocation. A resolved string is a view of the buffer snapshot
// current at resolve time: after a later Intern it may alias a superseded
// snapshot, so resolve again instead of caching views across interning.
// Spans are plain values, making this the cheapest backend to clone.
type StringBufferBackend struct {
	spans []span
	buf   []byte
}

var _ Backend = (*StringBufferBackend)(nil)

// NewStringBufferBackend creates a backend pre-sized for about capacityHint
// entries. The hint is advisory, never a hard cap.
func NewStringBufferBackend(capacityHint int) *StringBufferBackend {
	b := &StringBufferBackend{}

	if capacityHint > 0 {
		byteHint := capacityHint
		if byteHint <= safeconv.MaxInt/averageInternedLength {
			byteHint *= averageInternedLength
		}

		b.spans = make([]span, 0, capacityHint)
		b.buf = make([]byte, 0, byteHint)
	}

	return b
}

// Intern implements Backend.Intern. Returns ErrOutOfMemory when the appended
// contents would exceed the uint32 offset range spans can address.
func (b *StringBufferBackend) Intern(s string) (Symbol, error) {
	sym, err := SymbolFromIndex(len(b.spans))
	if err != nil {
		return InvalidSymbol, err
	}

	start := len(b.buf)
	if uint64(start)+uint64(len(s)) > uint64(safeconv.MaxUint32) {
		return InvalidSymbol, fmt.Errorf("buffer offset for %d byte string: %w", len(s), ErrOutOfMemory)
	}

	b.buf = append(b.buf, s...)
	b.spans = append(b.spans, span{
		start: uint32(start),
		end:   safeconv.MustIntToUint32(len(b.buf)),
	})

	return sym, nil
}

// InternStatic falls back to Intern: spans cannot describe storage outside
// the shared buffer.
func (b *StringBufferBackend) InternStatic(s string) (Symbol, error) {
	return b.Intern(s)
}

// view derives a string over the current buffer snapshot. Two integer reads
// plus one slice.
func (b *StringBufferBackend) view(sp span) string {
	if sp.start == sp.end {
		return ""
	}

	return unsafe.String(&b.buf[sp.start], safeconv.MustUint32ToInt(sp.end-sp.start))
}

// Resolve implements Backend.Resolve.
func (b *StringBufferBackend) Resolve(sym Symbol) (string, bool) {
	idx := sym.Index()
	if idx < 0 || idx >= len(b.spans) {
		return "", false
	}

	return b.view(b.spans[idx]), true
}

// ResolveUnchecked implements Backend.ResolveUnchecked. Passing a symbol not
// issued by this exact backend instance panics or returns unrelated contents.
func (b *StringBufferBackend) ResolveUnchecked(sym Symbol) string {
	return b.view(b.spans[sym.Index()])
}

// Len implements Backend.Len.
func (b *StringBufferBackend) Len() int {
	return len(b.spans)
}

// Capacity returns the reserved buffer bytes.
func (b *StringBufferBackend) Capacity() int {
	return cap(b.buf)
}

// ShrinkToFit reallocates the buffer and span list to their exact sizes.
// Relocation is within this backend's contract; spans are offsets and remain
// valid.
func (b *StringBufferBackend) ShrinkToFit() {
	if cap(b.buf) > len(b.buf) {
		buf := make([]byte, len(b.buf))
		copy(buf, b.buf)
		b.buf = buf
	}

	if cap(b.spans) > len(b.spans) {
		spans := make([]span, len(b.spans))
		copy(spans, b.spans)
		b.spans = spans
	}
}

// Reset discards every entry and invalidates all issued symbols. The buffer
// is released rather than reused: previously resolved views keep aliasing
// the old bytes and must never observe new writes.
func (b *StringBufferBackend) Reset() {
	b.spans = b.spans[:0]
	b.buf = nil
}

// Clone copies the buffer and span list. Spans carry no addresses, so a
// plain copy produces an independent, equal backend.
func (b *StringBufferBackend) Clone() Backend {
	return &StringBufferBackend{
		spans: slices.Clone(b.spans),
		buf:   slices.Clone(b.buf),
	}
}

// All implements Backend.All in insertion order.
func (b *StringBufferBackend) All() iter.Seq2[Symbol, string] {
	return func(yield func(Symbol, string) bool) {
		for idx, sp := range b.spans {
			if !yield(MustSymbolFromIndex(idx), b.view(sp)) {
				return
			}
		}
	}
}
