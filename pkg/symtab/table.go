package symtab

import (
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Hasher computes the 64-bit content hash the dedup index probes with. It
// must be deterministic for the lifetime of the interner using it.
type Hasher func(s string) uint64

// DefaultHasher is the content hash used when no custom Hasher is supplied
// (xxHash64).
func DefaultHasher(s string) uint64 {
	return xxhash.Sum64String(s)
}

// minTableSize is the smallest probe table allocated (power of two).
const minTableSize = 16

// loadFactorNum and loadFactorDen define the 3/4 load factor: the table
// doubles once occupancy would exceed three quarters of the slots.
const (
	loadFactorNum = 3
	loadFactorDen = 4
)

// dedupTable is a linear-probing open-addressing index from content hash to
// Symbol. It stores no string bytes: equality is delegated to the caller,
// which resolves candidate symbols through the backend. A slot holds the
// symbol (InvalidSymbol marks an empty slot, which the +1 symbol encoding
// makes free) alongside the full hash, so most collisions are skipped
// without resolving.
type dedupTable struct {
	hashes []uint64
	syms   []Symbol
	count  int
}

// newDedupTable pre-sizes the table for about capacityHint entries.
func newDedupTable(capacityHint int) dedupTable {
	t := dedupTable{}
	if capacityHint > 0 {
		t.init(tableSizeFor(capacityHint))
	}

	return t
}

// tableSizeFor returns the smallest power-of-two slot count that holds
// entries below the load factor.
func tableSizeFor(entries int) int {
	size := minTableSize
	for size > 0 && size*loadFactorNum/loadFactorDen <= entries {
		size *= 2
	}

	return size
}

func (t *dedupTable) init(size int) {
	t.hashes = make([]uint64, size)
	t.syms = make([]Symbol, size)
}

// lookup probes for a slot whose stored hash matches and whose symbol
// satisfies eq. It returns the matching symbol, or InvalidSymbol plus the
// cursor where an insert for this hash belongs. The cursor is only valid
// until the next grow or insert.
func (t *dedupTable) lookup(hash uint64, eq func(Symbol) bool) (Symbol, int) {
	if len(t.syms) == 0 {
		return InvalidSymbol, -1
	}

	mask := len(t.syms) - 1
	cursor := int(hash) & mask

	for t.syms[cursor] != InvalidSymbol {
		if t.hashes[cursor] == hash && eq(t.syms[cursor]) {
			return t.syms[cursor], cursor
		}

		cursor = (cursor + 1) & mask
	}

	return InvalidSymbol, cursor
}

// insert places sym at cursor, which must come from a lookup miss on the
// same hash after the latest grow.
func (t *dedupTable) insert(cursor int, hash uint64, sym Symbol) {
	t.hashes[cursor] = hash
	t.syms[cursor] = sym
	t.count++
}

// grow guarantees room for one more entry below the load factor, doubling
// and rehashing when needed. Rehashing needs no equality predicate: stored
// hashes suffice to find empty slots, and stored symbols are unique by
// construction.
func (t *dedupTable) grow() {
	if len(t.syms) == 0 {
		t.init(minTableSize)

		return
	}

	if (t.count+1)*loadFactorDen <= len(t.syms)*loadFactorNum {
		return
	}

	t.rehashInto(len(t.syms) * 2)
}

// shrink rebuilds the table at the smallest size that fits the current
// entries, or releases it entirely when empty.
func (t *dedupTable) shrink() {
	if t.count == 0 {
		t.hashes = nil
		t.syms = nil

		return
	}

	if target := tableSizeFor(t.count); target < len(t.syms) {
		t.rehashInto(target)
	}
}

func (t *dedupTable) rehashInto(size int) {
	oldHashes, oldSyms := t.hashes, t.syms
	t.init(size)

	mask := size - 1

	for i, sym := range oldSyms {
		if sym == InvalidSymbol {
			continue
		}

		cursor := int(oldHashes[i]) & mask
		for t.syms[cursor] != InvalidSymbol {
			cursor = (cursor + 1) & mask
		}

		t.hashes[cursor] = oldHashes[i]
		t.syms[cursor] = sym
	}
}

// reset empties the table while keeping its slots allocated.
func (t *dedupTable) reset() {
	clear(t.hashes)
	clear(t.syms)
	t.count = 0
}

// clone copies the table verbatim. Valid for a backend clone that issues
// identical symbol values.
func (t *dedupTable) clone() dedupTable {
	return dedupTable{
		hashes: slices.Clone(t.hashes),
		syms:   slices.Clone(t.syms),
		count:  t.count,
	}
}
