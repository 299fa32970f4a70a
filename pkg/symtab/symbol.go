// Package symtab implements string interning: every distinct string is stored
// exactly once and addressed by a compact Symbol that resolves back to the
// original contents. The storage strategy is pluggable through the Backend
// interface; four implementations trade off insertion speed, resolution
// speed, memory overhead, and stability of resolved strings across growth.
package symtab

import (
	"fmt"
	"math"

	"github.com/Sumatoshi-tech/symtab/pkg/safeconv"
)

// Symbol identifies one interned string within the Interner or Backend that
// issued it. Symbols are cheap to copy, comparable with ==, and ordered by
// issue order. The zero value is InvalidSymbol: valid symbols store their
// index offset by one, so representing "no symbol" costs no extra memory.
type Symbol uint32

// InvalidSymbol is the zero Symbol. No backend ever issues it.
const InvalidSymbol Symbol = 0

// MaxSymbolIndex is the largest index representable by a Symbol (2^32 - 2).
const MaxSymbolIndex = math.MaxUint32 - 1

// SymbolFromIndex returns the Symbol for a zero-based index.
// Returns ErrOutOfSymbols when idx is negative or exceeds MaxSymbolIndex.
func SymbolFromIndex(idx int) (Symbol, error) {
	if idx < 0 || uint64(idx) > MaxSymbolIndex {
		return InvalidSymbol, fmt.Errorf("symbol for index %d: %w", idx, ErrOutOfSymbols)
	}

	return Symbol(uint32(idx) + 1), nil
}

// MustSymbolFromIndex is SymbolFromIndex for indices known to be in range.
// Panics when they are not.
func MustSymbolFromIndex(idx int) Symbol {
	sym, err := SymbolFromIndex(idx)
	if err != nil {
		panic("symtab: " + err.Error())
	}

	return sym
}

// Index returns the zero-based index the symbol was issued for,
// or -1 for InvalidSymbol.
func (s Symbol) Index() int {
	if s == InvalidSymbol {
		return -1
	}

	return safeconv.MustUint32ToInt(uint32(s) - 1)
}

// IsValid reports whether the symbol was issued by a backend.
func (s Symbol) IsValid() bool {
	return s != InvalidSymbol
}

// String implements fmt.Stringer for diagnostics.
func (s Symbol) String() string {
	if s == InvalidSymbol {
		return "Symbol(invalid)"
	}

	return fmt.Sprintf("Symbol(%d)", s.Index())
}
