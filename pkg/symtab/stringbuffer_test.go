package symtab

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringBufferBackendSpansSurviveReallocation(t *testing.T) {
	t.Parallel()

	b := NewStringBufferBackend(0)

	sym, err := b.Intern("early")
	require.NoError(t, err)

	// Enough growth to reallocate the buffer several times.
	for i := range 500 {
		_, err := b.Intern(fmt.Sprintf("growth-%04d", i))
		require.NoError(t, err)
	}

	got, ok := b.Resolve(sym)
	require.True(t, ok)
	assert.Equal(t, "early", got)
}

func TestStringBufferBackendCapacityScenario(t *testing.T) {
	t.Parallel()

	b := NewStringBufferBackend(100)
	assert.Positive(t, b.Capacity())

	b.ShrinkToFit()
	assert.Equal(t, 0, b.Capacity())

	_, err := b.Intern("hello")
	require.NoError(t, err)

	b.ShrinkToFit()
	assert.Equal(t, len("hello"), b.Capacity())
}

func TestStringBufferBackendSpanLayout(t *testing.T) {
	t.Parallel()

	b := NewStringBufferBackend(0)

	for _, w := range []string{"ab", "", "cdef"} {
		_, err := b.Intern(w)
		require.NoError(t, err)
	}

	assert.Equal(t, []span{{start: 0, end: 2}, {start: 2, end: 2}, {start: 2, end: 6}}, b.spans)
	assert.Equal(t, "abcdef", string(b.buf))
}

func TestStringBufferBackendCloneSharesNothing(t *testing.T) {
	t.Parallel()

	b := NewStringBufferBackend(0)

	sym, err := b.Intern("original")
	require.NoError(t, err)

	clone := b.Clone()

	_, err = b.Intern("diverged")
	require.NoError(t, err)

	got, ok := clone.Resolve(sym)
	require.True(t, ok)
	assert.Equal(t, "original", got)
	assert.Equal(t, 1, clone.Len())
}

func TestStringBufferBackendEmptyString(t *testing.T) {
	t.Parallel()

	b := NewStringBufferBackend(0)

	sym, err := b.Intern("")
	require.NoError(t, err)

	got, ok := b.Resolve(sym)
	require.True(t, ok)
	assert.Empty(t, got)
}
