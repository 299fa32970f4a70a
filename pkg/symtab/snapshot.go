package symtab

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/symtab/pkg/safeconv"
)

// ErrInvalidSnapshot is returned when decoding input that is not a snapshot
// produced by the matching codec.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the portable form of an interner: its contents in symbol
// order. Re-interning a snapshot in order reproduces symbol assignment
// exactly, because assignment is a pure function of insertion order.
type Snapshot []string

// Snapshot flattens the interner into owned contents in symbol order.
func (in *Interner) Snapshot() Snapshot {
	return in.Strings()
}

// FromSnapshot rebuilds an interner over a fresh BucketBackend.
func FromSnapshot(snap Snapshot) (*Interner, error) {
	return FromStrings(snap)
}

// FromSnapshotWithBackend rebuilds an interner over the supplied empty
// backend.
func FromSnapshotWithBackend(snap Snapshot, b Backend) (*Interner, error) {
	in := NewWithBackend(b)
	if _, err := in.InternAll(snap); err != nil {
		return nil, err
	}

	return in, nil
}

// File extensions for the supported codecs.
const (
	jsonExtension = ".json"
	gobExtension  = ".gob"
	lz4Extension  = ".lz4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how a Snapshot is serialized and deserialized.
type Codec interface {
	// Encode writes the snapshot to the writer.
	Encode(w io.Writer, snap Snapshot) error
	// Decode reads a snapshot from the reader.
	Decode(r io.Reader) (Snapshot, error)
	// Extension returns the file extension for this codec (e.g., ".json").
	Extension() string
}

// JSONCodec implements Codec as a JSON string array with optional
// indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact
	// JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, snap Snapshot) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(snap)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot

	err := json.NewDecoder(r).Decode(&snap)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	return snap, nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// GobCodec implements Codec using gob encoding.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.Encode using gob encoding.
func (c *GobCodec) Encode(w io.Writer, snap Snapshot) error {
	err := gob.NewEncoder(w).Encode(snap)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using gob decoding.
func (c *GobCodec) Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot

	err := gob.NewDecoder(r).Decode(&snap)
	if err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}

	return snap, nil
}

// Extension implements Codec.Extension for gob files.
func (c *GobCodec) Extension() string {
	return gobExtension
}

// Payload flags distinguishing LZ4-compressed from raw payloads; raw is kept
// for payloads LZ4 cannot shrink.
const (
	lz4FlagRaw        = 0
	lz4FlagCompressed = 1
)

// LZ4Codec implements Codec as var7 length-prefixed records compressed into
// a single LZ4 block. Framing: var7 payload size, var7 entry count, one flag
// byte, then the payload (compressed or raw per the flag).
type LZ4Codec struct{}

// NewLZ4Codec creates an LZ4 codec.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{}
}

// Encode implements Codec.Encode.
func (c *LZ4Codec) Encode(w io.Writer, snap Snapshot) error {
	total := 0
	for _, s := range snap {
		total += len(s) + maxVarUintLen
	}

	payload := make([]byte, 0, total)
	for _, s := range snap {
		payload = appendVarUint(payload, uint64(len(s)))
		payload = append(payload, s...)
	}

	header := appendVarUint(nil, uint64(len(payload)))
	header = appendVarUint(header, uint64(len(snap)))

	compressed := make([]byte, lz4.CompressBlockBound(len(payload)))

	written, err := lz4.CompressBlock(payload, compressed, nil)
	if err != nil {
		return fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock signals an incompressible payload with written == 0;
	// store such payloads raw.
	if written == 0 {
		header = append(header, lz4FlagRaw)
		compressed = payload
	} else {
		header = append(header, lz4FlagCompressed)
		compressed = compressed[:written]
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("write snapshot payload: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *LZ4Codec) Decode(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	size, n, ok := decodeVarUint(data)
	if !ok || size > uint64(safeconv.MaxInt) {
		return nil, fmt.Errorf("payload size: %w", ErrInvalidSnapshot)
	}

	data = data[n:]

	count, n, ok := decodeVarUint(data)
	if !ok || count > size || len(data) <= n {
		return nil, fmt.Errorf("entry count: %w", ErrInvalidSnapshot)
	}

	flag := data[n]
	data = data[n+1:]

	var payload []byte

	switch flag {
	case lz4FlagRaw:
		payload = data
	case lz4FlagCompressed:
		payload = make([]byte, size)
		if _, err := lz4.UncompressBlock(data, payload); err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
	default:
		return nil, fmt.Errorf("payload flag %d: %w", flag, ErrInvalidSnapshot)
	}

	if uint64(len(payload)) != size {
		return nil, fmt.Errorf("payload size mismatch: %w", ErrInvalidSnapshot)
	}

	snap := make(Snapshot, 0, count)
	offset := 0

	for range count {
		length, n, ok := decodeVarUint(payload[offset:])
		if !ok {
			return nil, fmt.Errorf("record prefix: %w", ErrInvalidSnapshot)
		}

		start := offset + n
		if length > uint64(len(payload)-start) {
			return nil, fmt.Errorf("record length: %w", ErrInvalidSnapshot)
		}

		end := start + int(length)
		snap = append(snap, string(payload[start:end]))
		offset = end
	}

	if offset != len(payload) {
		return nil, fmt.Errorf("trailing payload bytes: %w", ErrInvalidSnapshot)
	}

	return snap, nil
}

// Extension implements Codec.Extension for LZ4 files.
func (c *LZ4Codec) Extension() string {
	return lz4Extension
}

// SaveSnapshot writes the interner's snapshot to a file in dir. The filename
// is the basename plus the codec's extension.
func SaveSnapshot(dir, basename string, codec Codec, in *Interner) error {
	path := filepath.Join(dir, basename+codec.Extension())

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer file.Close()

	if err := codec.Encode(file, in.Snapshot()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot file from dir and rebuilds an interner over
// a fresh BucketBackend; use FromSnapshotWithBackend after Decode for a
// different strategy.
func LoadSnapshot(dir, basename string, codec Codec) (*Interner, error) {
	path := filepath.Join(dir, basename+codec.Extension())

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()

	snap, err := codec.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return FromSnapshot(snap)
}
