package symtab_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/symtab/pkg/symtab"
)

func snapshotCodecs() map[string]symtab.Codec {
	return map[string]symtab.Codec{
		"json":         symtab.NewJSONCodec(),
		"json_compact": &symtab.JSONCodec{},
		"gob":          symtab.NewGobCodec(),
		"lz4":          symtab.NewLZ4Codec(),
	}
}

func TestSnapshotPreservesSymbolAssignment(t *testing.T) {
	t.Parallel()

	original, err := symtab.FromStrings([]string{"alpha", "beta", "gamma"})
	require.NoError(t, err)

	beta, ok := original.Get("beta")
	require.True(t, ok)

	restored, err := symtab.FromSnapshot(original.Snapshot())
	require.NoError(t, err)

	assert.True(t, original.Equal(restored))

	got, ok := restored.Get("beta")
	require.True(t, ok)
	assert.Equal(t, beta, got)
}

func TestSnapshotCodecRoundTrip(t *testing.T) {
	t.Parallel()

	snap := symtab.Snapshot{
		"plain",
		"",
		"unicode: éèê",
		strings.Repeat("compressible ", 100),
		"control\x00bytes\n\t",
	}

	for name, codec := range snapshotCodecs() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			require.NoError(t, codec.Encode(&buf, snap))

			got, err := codec.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, snap, got)
		})
	}
}

func TestSnapshotCodecEmpty(t *testing.T) {
	t.Parallel()

	for name, codec := range snapshotCodecs() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			require.NoError(t, codec.Encode(&buf, symtab.Snapshot{}))

			got, err := codec.Decode(&buf)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestLZ4CodecIncompressiblePayload(t *testing.T) {
	t.Parallel()

	// Short high-entropy contents that LZ4 stores raw.
	snap := symtab.Snapshot{"q8#zP!m2", "\x01\xfe\x7f\x80"}

	var buf bytes.Buffer

	codec := symtab.NewLZ4Codec()
	require.NoError(t, codec.Encode(&buf, snap))

	got, err := codec.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestLZ4CodecRejectsCorruptInput(t *testing.T) {
	t.Parallel()

	codec := symtab.NewLZ4Codec()

	var valid bytes.Buffer

	require.NoError(t, codec.Encode(&valid, symtab.Snapshot{"aaa", "bbb"}))

	cases := map[string][]byte{
		"empty":          {},
		"truncated":      valid.Bytes()[:valid.Len()-2],
		"bad_flag":       {0x03, 0x01, 0x07, 0x03, 'x', 'y', 'z'},
		"count_too_high": {0x01, 0xff, 0xff, 0x01, 0x00, 'x'},
		"trailing_bytes": {0x05, 0x01, 0x00, 0x01, 'x', 0x00, 0x00, 0x00},
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := codec.Decode(bytes.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	t.Parallel()

	in, err := symtab.FromStrings([]string{"persisted", "across", "processes"})
	require.NoError(t, err)

	for name, codec := range snapshotCodecs() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()

			require.NoError(t, symtab.SaveSnapshot(dir, "symbols", codec, in))

			_, err := os.Stat(filepath.Join(dir, "symbols"+codec.Extension()))
			require.NoError(t, err)

			restored, err := symtab.LoadSnapshot(dir, "symbols", codec)
			require.NoError(t, err)
			assert.True(t, in.Equal(restored))
		})
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	t.Parallel()

	_, err := symtab.LoadSnapshot(t.TempDir(), "absent", symtab.NewJSONCodec())
	assert.Error(t, err)
}

func TestFromSnapshotWithBackend(t *testing.T) {
	t.Parallel()

	snap := symtab.Snapshot{"one", "two"}

	in, err := symtab.FromSnapshotWithBackend(snap, symtab.NewStringBufferBackend(len(snap)))
	require.NoError(t, err)

	assert.Equal(t, []string(snap), in.Strings())
}

func TestCodecExtensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", symtab.NewJSONCodec().Extension())
	assert.Equal(t, ".gob", symtab.NewGobCodec().Extension())
	assert.Equal(t, ".lz4", symtab.NewLZ4Codec().Extension())
}
