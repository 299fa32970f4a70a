package symtab

import (
	"iter"
	"unsafe"

	"github.com/Sumatoshi-tech/symtab/pkg/safeconv"
)

// minArenaCapacity is the smallest head arena allocated on first growth.
const minArenaCapacity = 64

// averageInternedLength is the assumed mean string length used to size the
// head arena from an entry-count capacity hint.
const averageInternedLength = 16

// BucketBackend stores interned bytes in append-only arenas. The actively
// growing head arena is retired wholesale into a list of full arenas when a
// string would overflow it; retired bytes are never copied or moved, so a
// resolved string stays valid for the backend's entire remaining lifetime.
// It is the only backend offering that guarantee. Resolution is a single
// slice load. The cost is the retired-arena list, which can hold fragmented,
// partially used memory when string sizes vary wildly.
type BucketBackend struct {
	index []string // symbol index -> view into an arena (or a pinned caller string)
	head  []byte   // active arena, append-only
	full  [][]byte // retired arenas, immutable
}

var _ Backend = (*BucketBackend)(nil)

// NewBucketBackend creates a backend pre-sized for about capacityHint
// entries. The hint is advisory, never a hard cap.
func NewBucketBackend(capacityHint int) *BucketBackend {
	b := &BucketBackend{}

	if capacityHint > 0 {
		byteHint := capacityHint
		if byteHint <= safeconv.MaxInt/averageInternedLength {
			byteHint *= averageInternedLength
		}

		b.index = make([]string, 0, capacityHint)
		b.head = make([]byte, 0, byteHint)
	}

	return b
}

// Intern implements Backend.Intern.
func (b *BucketBackend) Intern(s string) (Symbol, error) {
	sym, err := SymbolFromIndex(len(b.index))
	if err != nil {
		return InvalidSymbol, err
	}

	b.index = append(b.index, b.push(s))

	return sym, nil
}

// InternStatic records s itself as the location descriptor, skipping the
// copy. The backend keeps s, and any larger buffer backing it, reachable for
// its lifetime.
func (b *BucketBackend) InternStatic(s string) (Symbol, error) {
	sym, err := SymbolFromIndex(len(b.index))
	if err != nil {
		return InvalidSymbol, err
	}

	b.index = append(b.index, s)

	return sym, nil
}

// push copies s into the head arena and returns a view of the copy. The view
// aliases arena bytes that are never rewritten or relocated, which is the
// invariant making it sound to hand out. Views never escape before being
// recorded in the index.
func (b *BucketBackend) push(s string) string {
	if len(s) == 0 {
		return ""
	}

	if len(b.head)+len(s) > cap(b.head) {
		b.growHead(len(s))
	}

	start := len(b.head)
	b.head = append(b.head, s...)

	return unsafe.String(&b.head[start], len(s))
}

// growHead retires the current head as a whole and installs a fresh arena
// sized to at least double the old capacity. Strings already written are not
// touched.
func (b *BucketBackend) growHead(need int) {
	doubled := 2 * cap(b.head)
	if doubled < 0 {
		doubled = need
	}

	if len(b.head) > 0 {
		b.full = append(b.full, b.head)
	}

	b.head = make([]byte, 0, max(doubled, need, minArenaCapacity))
}

// Resolve implements Backend.Resolve.
func (b *BucketBackend) Resolve(sym Symbol) (string, bool) {
	idx := sym.Index()
	if idx < 0 || idx >= len(b.index) {
		return "", false
	}

	return b.index[idx], true
}

// ResolveUnchecked implements Backend.ResolveUnchecked. Passing a symbol not
// issued by this exact backend instance panics or returns unrelated contents.
func (b *BucketBackend) ResolveUnchecked(sym Symbol) string {
	return b.index[sym.Index()]
}

// Len implements Backend.Len.
func (b *BucketBackend) Len() int {
	return len(b.index)
}

// Capacity returns the total reserved arena bytes.
func (b *BucketBackend) Capacity() int {
	total := cap(b.head)
	for _, arena := range b.full {
		total += cap(arena)
	}

	return total
}

// ShrinkToFit clips the symbol index to its exact length. A non-empty head
// arena is left untouched: shrinking it would relocate bytes that issued
// views still alias. An empty backend releases its arenas entirely.
func (b *BucketBackend) ShrinkToFit() {
	if len(b.index) == 0 {
		b.head = nil
		b.full = nil
	}

	if cap(b.index) > len(b.index) {
		index := make([]string, len(b.index))
		copy(index, b.index)
		b.index = index
	}
}

// Reset discards every entry and invalidates all issued symbols. Arenas are
// released rather than reused: strings resolved before the reset keep
// aliasing the old bytes and must never observe new writes.
func (b *BucketBackend) Reset() {
	b.index = b.index[:0]
	b.head = nil
	b.full = nil
}

// Clone replays every entry into fresh arenas. The index views are
// instance-specific (they alias this backend's arenas), so cloning copies
// contents rather than descriptors; entries recorded via InternStatic are
// copied as well. The clone is content-equal but not representation-identical.
func (b *BucketBackend) Clone() Backend {
	total := 0
	for _, s := range b.index {
		total += len(s)
	}

	clone := &BucketBackend{index: make([]string, 0, len(b.index))}
	if total > 0 {
		clone.head = make([]byte, 0, total)
	}

	for _, s := range b.index {
		clone.index = append(clone.index, clone.push(s))
	}

	return clone
}

// All implements Backend.All in insertion order.
func (b *BucketBackend) All() iter.Seq2[Symbol, string] {
	return func(yield func(Symbol, string) bool) {
		for idx, s := range b.index {
			if !yield(MustSymbolFromIndex(idx), s) {
				return
			}
		}
	}
}
