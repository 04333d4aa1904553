package container

import (
	"encoding/binary"
	"io"
	"math"
)

// DecodeFloat32 interprets chunk as a flt4 leaf, independent of cursor
// position. Exposed so callers holding a generically-typed Chunk (for
// example a SET block's value, whose tag isn't known until read) can
// decode it without re-entering the Decoder's cursor stack.
func DecodeFloat32(chunk Chunk) (float32, error) {
	if chunk.ID != "flt4" {
		return 0, &DecodeError{Expected: "flt4", Actual: chunk.ID}
	}
	if len(chunk.Payload) < 4 {
		return 0, &DecodeError{Cause: io.ErrUnexpectedEOF}
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(chunk.Payload)), nil
}

// DecodeInt32 interprets chunk as an int4 leaf.
func DecodeInt32(chunk Chunk) (int32, error) {
	if chunk.ID != "int4" {
		return 0, &DecodeError{Expected: "int4", Actual: chunk.ID}
	}
	if len(chunk.Payload) < 4 {
		return 0, &DecodeError{Cause: io.ErrUnexpectedEOF}
	}
	return int32(binary.LittleEndian.Uint32(chunk.Payload)), nil
}

// DecodeVec3 interprets chunk as a vec3 node (three nested flt4 leaves).
func DecodeVec3(chunk Chunk) (x, y, z float32, err error) {
	if chunk.ID != "vec3" {
		return 0, 0, 0, &DecodeError{Expected: "vec3", Actual: chunk.ID}
	}
	inner := bytesReader(chunk.Payload)
	vals := make([]float32, 0, 3)
	for i := 0; i < 3; i++ {
		leaf, err := readChunkFrom(inner)
		if err != nil {
			return 0, 0, 0, err
		}
		v, err := DecodeFloat32(leaf)
		if err != nil {
			return 0, 0, 0, err
		}
		vals = append(vals, v)
	}
	return vals[0], vals[1], vals[2], nil
}

// DecodeString interprets chunk as a str leaf (raw bytes, not
// NUL-terminated).
func DecodeString(chunk Chunk) (string, error) {
	if chunk.ID != "str " {
		return "", &DecodeError{Expected: "str ", Actual: chunk.ID}
	}
	return string(chunk.Payload), nil
}
