package symtab

import (
	"iter"
	"slices"
	"unsafe"

	"github.com/Sumatoshi-tech/symtab/pkg/safeconv"
)

// ByteBufferBackend packs contents into a single buffer of self-describing
// records: a var7-encoded byte length followed by the bytes. A symbol encodes
// the record's buffer offset, so symbols issued by this backend are strictly
// increasing but, unlike the other backends, not dense. There is no side
// index at all; per-entry overhead amortizes to the length prefix alone, one
// byte for strings under 128 bytes. The price is sequential-only iteration
// (each prefix must be decoded to find the next record) and the slowest
// arbitrary-order resolve validation of the four strategies.
type ByteBufferBackend struct {
	buf   []byte
	count int
}

var _ Backend = (*ByteBufferBackend)(nil)

// NewByteBufferBackend creates a backend pre-sized for about capacityHint
// entries. The hint is advisory, never a hard cap.
func NewByteBufferBackend(capacityHint int) *ByteBufferBackend {
	b := &ByteBufferBackend{}

	if capacityHint > 0 {
		byteHint := capacityHint
		if byteHint <= safeconv.MaxInt/(averageInternedLength+1) {
			byteHint *= averageInternedLength + 1
		}

		b.buf = make([]byte, 0, byteHint)
	}

	return b
}

// Intern implements Backend.Intern. The new record's offset must fit the
// symbol domain; ErrOutOfSymbols is returned before any mutation otherwise.
func (b *ByteBufferBackend) Intern(s string) (Symbol, error) {
	sym, err := SymbolFromIndex(len(b.buf))
	if err != nil {
		return InvalidSymbol, err
	}

	b.buf = appendVarUint(b.buf, uint64(len(s)))
	b.buf = append(b.buf, s...)
	b.count++

	return sym, nil
}

// InternStatic falls back to Intern: records live inline in the buffer and
// cannot reference external storage.
func (b *ByteBufferBackend) InternStatic(s string) (Symbol, error) {
	return b.Intern(s)
}

// Resolve implements Backend.Resolve. A symbol is rejected when its offset
// is out of range or the record it points at does not decode within the
// buffer.
func (b *ByteBufferBackend) Resolve(sym Symbol) (string, bool) {
	offset := sym.Index()
	if offset < 0 || offset >= len(b.buf) {
		return "", false
	}

	length, n, ok := decodeVarUint(b.buf[offset:])
	if !ok {
		return "", false
	}

	start := offset + n
	if length > uint64(len(b.buf)-start) {
		return "", false
	}

	return b.view(start, int(length)), true
}

// ResolveUnchecked implements Backend.ResolveUnchecked. Passing a symbol not
// issued by this exact backend instance panics or returns unrelated contents.
func (b *ByteBufferBackend) ResolveUnchecked(sym Symbol) string {
	offset := sym.Index()
	length, n, _ := decodeVarUint(b.buf[offset:])

	return b.view(offset+n, safeconv.MustUint64ToInt(length))
}

// view derives a string over the current buffer snapshot. As with
// StringBufferBackend, views resolved before a growth reallocation alias the
// superseded snapshot.
func (b *ByteBufferBackend) view(start, length int) string {
	if length == 0 {
		return ""
	}

	return unsafe.String(&b.buf[start], length)
}

// Len implements Backend.Len.
func (b *ByteBufferBackend) Len() int {
	return b.count
}

// Capacity returns the reserved buffer bytes.
func (b *ByteBufferBackend) Capacity() int {
	return cap(b.buf)
}

// ShrinkToFit reallocates the buffer to its exact size. Symbols are offsets
// and remain valid across the relocation.
func (b *ByteBufferBackend) ShrinkToFit() {
	if cap(b.buf) > len(b.buf) {
		buf := make([]byte, len(b.buf))
		copy(buf, b.buf)
		b.buf = buf
	}
}

// Reset discards every entry and invalidates all issued symbols. The buffer
// is released rather than reused so previously resolved views never observe
// new writes.
func (b *ByteBufferBackend) Reset() {
	b.buf = nil
	b.count = 0
}

// Clone copies the record buffer. Records are offset-addressed values, so a
// plain copy produces an independent backend issuing identical symbols.
func (b *ByteBufferBackend) Clone() Backend {
	return &ByteBufferBackend{
		buf:   slices.Clone(b.buf),
		count: b.count,
	}
}

// All implements Backend.All by walking the records sequentially, the only
// way to recover record adjacency in this layout.
func (b *ByteBufferBackend) All() iter.Seq2[Symbol, string] {
	return func(yield func(Symbol, string) bool) {
		offset := 0

		for offset < len(b.buf) {
			length, n, ok := decodeVarUint(b.buf[offset:])
			if !ok {
				return
			}

			start := offset + n
			end := start + safeconv.MustUint64ToInt(length)

			if !yield(MustSymbolFromIndex(offset), b.view(start, end-start)) {
				return
			}

			offset = end
		}
	}
}
