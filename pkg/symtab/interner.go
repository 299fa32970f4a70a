package symtab

import (
	"fmt"
	"iter"
	"strings"
)

// Interner deduplicates strings through a Backend. It pairs the backend with
// an open-addressing index keyed by content hash; probe equality resolves
// candidate symbols through the backend, so every string's bytes are stored
// exactly once. Interning the same contents twice always yields the same
// symbol, and the backend is mutated at most once per distinct contents.
//
// An Interner is not safe for concurrent mutation. Concurrent readers are
// fine as long as no GetOrIntern, Reset, or ShrinkToFit runs at the same
// time; callers needing concurrent writers must serialize externally.
type Interner struct {
	backend Backend
	hasher  Hasher
	table   dedupTable
	hits    uint64
	misses  uint64
}

// New creates an empty interner over a BucketBackend, the strategy whose
// resolved strings stay valid for the interner's whole lifetime.
func New() *Interner {
	return NewWithCapacityAndHasher(0, nil)
}

// NewWithCapacity creates an interner pre-sized for about capacityHint
// entries. The hint is advisory, never a hard cap.
func NewWithCapacity(capacityHint int) *Interner {
	return NewWithCapacityAndHasher(capacityHint, nil)
}

// NewWithHasher creates an interner using h for content hashing.
func NewWithHasher(h Hasher) *Interner {
	return NewWithCapacityAndHasher(0, h)
}

// NewWithCapacityAndHasher combines NewWithCapacity and NewWithHasher.
// A nil Hasher selects DefaultHasher.
func NewWithCapacityAndHasher(capacityHint int, h Hasher) *Interner {
	in := NewWithBackendAndHasher(NewBucketBackend(capacityHint), h)
	in.table = newDedupTable(capacityHint)

	return in
}

// NewWithBackend creates an interner over the supplied storage strategy.
// The backend must be empty.
func NewWithBackend(b Backend) *Interner {
	return NewWithBackendAndHasher(b, nil)
}

// NewWithBackendAndHasher combines NewWithBackend and NewWithHasher.
// A nil Hasher selects DefaultHasher.
func NewWithBackendAndHasher(b Backend, h Hasher) *Interner {
	if h == nil {
		h = DefaultHasher
	}

	return &Interner{backend: b, hasher: h}
}

// FromStrings builds an interner by interning strs in order, so symbol
// assignment follows the first-seen order of distinct contents. Equivalent
// to repeated GetOrIntern calls.
func FromStrings(strs []string) (*Interner, error) {
	in := NewWithCapacity(len(strs))
	if _, err := in.InternAll(strs); err != nil {
		return nil, err
	}

	return in, nil
}

// GetOrIntern returns the symbol for s, interning it on first sight.
func (in *Interner) GetOrIntern(s string) (Symbol, error) {
	return in.getOrIntern(s, in.backend.Intern)
}

// GetOrInternStatic is GetOrIntern for strings whose storage the caller is
// happy to pin, typically literals; backends with no-copy descriptors record
// s directly.
func (in *Interner) GetOrInternStatic(s string) (Symbol, error) {
	return in.getOrIntern(s, in.backend.InternStatic)
}

// MustGetOrIntern is GetOrIntern for callers treating symbol-space or
// storage exhaustion as unrecoverable. Panics on error.
func (in *Interner) MustGetOrIntern(s string) Symbol {
	sym, err := in.GetOrIntern(s)
	if err != nil {
		panic("symtab: " + err.Error())
	}

	return sym
}

func (in *Interner) getOrIntern(s string, intern func(string) (Symbol, error)) (Symbol, error) {
	// Grow first so the miss cursor stays valid for the insert below.
	in.table.grow()

	hash := in.hasher(s)

	sym, cursor := in.table.lookup(hash, in.contentEq(s))
	if sym != InvalidSymbol {
		in.hits++

		return sym, nil
	}

	newSym, err := intern(s)
	if err != nil {
		return InvalidSymbol, err
	}

	in.table.insert(cursor, hash, newSym)
	in.misses++

	return newSym, nil
}

// contentEq builds the probe predicate: candidate symbols resolve through
// the backend and compare by contents. Stored symbols are always valid for
// the owned backend, so the unchecked path is sound here.
func (in *Interner) contentEq(s string) func(Symbol) bool {
	return func(sym Symbol) bool {
		return in.backend.ResolveUnchecked(sym) == s
	}
}

// Get returns the symbol for s without interning. The interner is not
// mutated.
func (in *Interner) Get(s string) (Symbol, bool) {
	sym, _ := in.table.lookup(in.hasher(s), in.contentEq(s))

	return sym, sym != InvalidSymbol
}

// Resolve returns the contents for sym, or false when sym was not issued by
// this interner.
func (in *Interner) Resolve(sym Symbol) (string, bool) {
	return in.backend.Resolve(sym)
}

// ResolveUnchecked returns the contents for sym without validation; see
// Backend.ResolveUnchecked for the precondition.
func (in *Interner) ResolveUnchecked(sym Symbol) string {
	return in.backend.ResolveUnchecked(sym)
}

// Len returns the number of distinct interned strings.
func (in *Interner) Len() int {
	return in.backend.Len()
}

// IsEmpty reports whether nothing has been interned.
func (in *Interner) IsEmpty() bool {
	return in.backend.Len() == 0
}

// Capacity returns the backend's reserved capacity; see Backend.Capacity for
// the per-strategy units.
func (in *Interner) Capacity() int {
	return in.backend.Capacity()
}

// Backend exposes the storage strategy, for callers needing strategy-specific
// inspection. Mutating it directly voids the dedup index.
func (in *Interner) Backend() Backend {
	return in.backend
}

// Extend interns every string the sequence yields, in order.
func (in *Interner) Extend(seq iter.Seq[string]) error {
	for s := range seq {
		if _, err := in.GetOrIntern(s); err != nil {
			return fmt.Errorf("extend: %w", err)
		}
	}

	return nil
}

// InternAll interns each string in order and returns the symbols, duplicates
// mapping to their first occurrence.
func (in *Interner) InternAll(strs []string) ([]Symbol, error) {
	syms := make([]Symbol, 0, len(strs))

	for _, s := range strs {
		sym, err := in.GetOrIntern(s)
		if err != nil {
			return nil, fmt.Errorf("intern %q: %w", s, err)
		}

		syms = append(syms, sym)
	}

	return syms, nil
}

// All yields every (symbol, contents) pair in insertion order. The strings
// are backend views; see the backend's documentation for how long they stay
// valid.
func (in *Interner) All() iter.Seq2[Symbol, string] {
	return in.backend.All()
}

// Strings returns owned copies of all contents in symbol order, detached
// from backend storage.
func (in *Interner) Strings() []string {
	out := make([]string, 0, in.Len())
	for _, s := range in.backend.All() {
		out = append(out, strings.Clone(s))
	}

	return out
}

// Reset discards every entry and invalidates all previously issued symbols
// at once. Dedup statistics restart from zero.
func (in *Interner) Reset() {
	in.backend.Reset()
	in.table.reset()
	in.hits, in.misses = 0, 0
}

// ShrinkToFit releases unused reserved capacity in the backend and the dedup
// index. No issued symbol is invalidated.
func (in *Interner) ShrinkToFit() {
	in.backend.ShrinkToFit()
	in.table.shrink()
}

// Clone produces a fully independent interner with equal contents. The
// backend clone issues identical symbol values, so the dedup index can be
// copied verbatim.
func (in *Interner) Clone() *Interner {
	return &Interner{
		backend: in.backend.Clone(),
		hasher:  in.hasher,
		table:   in.table.clone(),
		hits:    in.hits,
		misses:  in.misses,
	}
}

// Equal reports whether both interners hold the same contents in the same
// insertion order, regardless of backend strategy or internal layout.
func (in *Interner) Equal(other *Interner) bool {
	if in == other {
		return true
	}

	return BackendsEqual(in.backend, other.backend)
}
