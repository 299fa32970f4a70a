package symtab_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/symtab/pkg/symtab"
)

// backendFactories enumerates every storage strategy under its conformance
// name.
func backendFactories() map[string]func(hint int) symtab.Backend {
	return map[string]func(int) symtab.Backend{
		"bucket":        func(hint int) symtab.Backend { return symtab.NewBucketBackend(hint) },
		"string_buffer": func(hint int) symtab.Backend { return symtab.NewStringBufferBackend(hint) },
		"byte_buffer":   func(hint int) symtab.Backend { return symtab.NewByteBufferBackend(hint) },
		"boxed":         func(hint int) symtab.Backend { return symtab.NewBoxedBackend(hint) },
	}
}

// denseSymbolBackends are the strategies whose symbols are dense zero-based
// indices; ByteBufferBackend symbols encode buffer offsets instead.
func denseSymbolBackends() []string {
	return []string{"bucket", "string_buffer", "boxed"}
}

func TestBackendInternResolveRoundTrip(t *testing.T) {
	t.Parallel()

	words := []string{"foo", "bar", "", "a much longer string that spans more than one growth step", "baz"}

	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(0)
			syms := make([]symtab.Symbol, 0, len(words))

			for _, w := range words {
				sym, err := b.Intern(w)
				require.NoError(t, err)
				require.True(t, sym.IsValid())

				syms = append(syms, sym)
			}

			assert.Equal(t, len(words), b.Len())

			for i, sym := range syms {
				got, ok := b.Resolve(sym)
				require.True(t, ok)
				assert.Equal(t, words[i], got)
				assert.Equal(t, words[i], b.ResolveUnchecked(sym))
			}
		})
	}
}

func TestBackendResolveRejectsForeignSymbols(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(0)

			_, ok := b.Resolve(symtab.InvalidSymbol)
			assert.False(t, ok)

			_, ok = b.Resolve(symtab.MustSymbolFromIndex(0))
			assert.False(t, ok)

			_, err := b.Intern("only")
			require.NoError(t, err)

			_, ok = b.Resolve(symtab.MustSymbolFromIndex(99))
			assert.False(t, ok)
		})
	}
}

func TestBackendIterationOrder(t *testing.T) {
	t.Parallel()

	words := []string{"alpha", "beta", "gamma", "delta"}

	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(len(words))

			issued := make([]symtab.Symbol, 0, len(words))
			for _, w := range words {
				sym, err := b.Intern(w)
				require.NoError(t, err)

				issued = append(issued, sym)
			}

			gotSyms := make([]symtab.Symbol, 0, len(words))
			gotWords := make([]string, 0, len(words))

			for sym, s := range b.All() {
				gotSyms = append(gotSyms, sym)
				gotWords = append(gotWords, s)
			}

			assert.Equal(t, issued, gotSyms)
			assert.Equal(t, words, gotWords)

			for i := 1; i < len(gotSyms); i++ {
				assert.Less(t, gotSyms[i-1], gotSyms[i], "symbols must be strictly increasing")
			}
		})
	}
}

func TestBackendDenseSymbolIndices(t *testing.T) {
	t.Parallel()

	factories := backendFactories()

	for _, name := range denseSymbolBackends() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := factories[name](0)

			for i := range 10 {
				sym, err := b.Intern(fmt.Sprintf("word-%d", i))
				require.NoError(t, err)
				assert.Equal(t, i, sym.Index())
			}
		})
	}
}

func TestBackendCloneIsIndependentAndEqual(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(0)

			sym, err := b.Intern("shared")
			require.NoError(t, err)

			clone := b.Clone()
			assert.True(t, symtab.BackendsEqual(b, clone))

			got, ok := clone.Resolve(sym)
			require.True(t, ok)
			assert.Equal(t, "shared", got)

			_, err = b.Intern("only in original")
			require.NoError(t, err)

			assert.Equal(t, 1, clone.Len())
			assert.False(t, symtab.BackendsEqual(b, clone))
		})
	}
}

func TestBackendReset(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(0)

			sym, err := b.Intern("ephemeral")
			require.NoError(t, err)

			b.Reset()

			assert.Equal(t, 0, b.Len())

			_, ok := b.Resolve(sym)
			assert.False(t, ok)

			// The backend is reusable after a reset.
			again, err := b.Intern("fresh")
			require.NoError(t, err)

			got, ok := b.Resolve(again)
			require.True(t, ok)
			assert.Equal(t, "fresh", got)
		})
	}
}

func TestBackendInternStatic(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(0)

			sym, err := b.InternStatic("static contents")
			require.NoError(t, err)

			got, ok := b.Resolve(sym)
			require.True(t, ok)
			assert.Equal(t, "static contents", got)
		})
	}
}

func TestBackendShrinkToFitPreservesContents(t *testing.T) {
	t.Parallel()

	for name, newBackend := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b := newBackend(1024)

			syms := make([]symtab.Symbol, 0, 20)
			for i := range 20 {
				sym, err := b.Intern(fmt.Sprintf("entry-%02d", i))
				require.NoError(t, err)

				syms = append(syms, sym)
			}

			b.ShrinkToFit()

			for i, sym := range syms {
				got, ok := b.Resolve(sym)
				require.True(t, ok)
				assert.Equal(t, fmt.Sprintf("entry-%02d", i), got)
			}
		})
	}
}
