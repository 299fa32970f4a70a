package symtab

// Variable-length unsigned integer codec used to length-prefix records in
// ByteBufferBackend and the LZ4 snapshot framing: 7 data bits per byte in
// little-endian chunk order, with the high bit set on every byte except the
// last. Round-trips all uint64 values.

// maxVarUintLen is the encoded size of math.MaxUint64 (ceil(64/7) bytes).
const maxVarUintLen = 10

// varUintDataBits is the number of payload bits carried per encoded byte.
const varUintDataBits = 7

// appendVarUint appends the encoding of v to buf and returns the extended
// buffer.
func appendVarUint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v&0x7f)|0x80)
		v >>= varUintDataBits
	}

	return append(buf, byte(v))
}

// decodeVarUint decodes one value from the front of buf, returning the value
// and the number of bytes consumed. ok is false for truncated input and for
// encodings that would overflow a uint64.
func decodeVarUint(buf []byte) (v uint64, n int, ok bool) {
	var shift uint

	for i, c := range buf {
		if i >= maxVarUintLen || (i == maxVarUintLen-1 && c > 1) {
			return 0, 0, false
		}

		v |= uint64(c&0x7f) << shift

		if c&0x80 == 0 {
			return v, i + 1, true
		}

		shift += varUintDataBits
	}

	return 0, 0, false
}
