// Package container decodes the tagged-chunk binary scene format: a
// sequence of `id(4) | length(4) | payload` records, read strictly in
// order, with materials always preceding any mesh that references them.
package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// signature is the 4-byte marker expected at byte 0 of every scene file.
const signature = ".EAR"

// Chunk is one decoded `id | length | payload` record.
type Chunk struct {
	ID      string
	Payload []byte
}

// Decoder reads chunks from an in-memory buffer: the whole scene file is
// read up front (no streaming), and a stack of cursors lets typed reads
// descend into a chunk's payload and pop back out to its parent.
type Decoder struct {
	stack []*bytes.Reader
}

// Open validates the .EAR signature at byte 0 and returns a Decoder
// positioned just after it.
func Open(r io.Reader) (*Decoder, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecodeError{Offset: 0, Cause: err}
	}
	if len(data) < 4 || string(data[:4]) != signature {
		return nil, &DecodeError{Offset: 0, Expected: signature, Cause: fmt.Errorf("missing .EAR signature")}
	}
	br := bytes.NewReader(data[4:])
	return &Decoder{stack: []*bytes.Reader{br}}, nil
}

func (d *Decoder) current() *bytes.Reader {
	return d.stack[len(d.stack)-1]
}

func (d *Decoder) offset() int64 {
	cur := d.current()
	return cur.Size() - int64(cur.Len())
}

// Peek returns the next chunk's 4-byte tag without consuming it.
func (d *Decoder) Peek() (string, error) {
	cur := d.current()
	tagBytes := make([]byte, 4)
	n, err := cur.ReadAt(tagBytes, cur.Size()-int64(cur.Len()))
	if err != nil || n < 4 {
		return "", &DecodeError{Offset: d.offset(), Cause: io.ErrUnexpectedEOF}
	}
	return string(tagBytes), nil
}

// ReadChunk consumes one id(4)|length(4)|payload record from the current
// cursor.
func (d *Decoder) ReadChunk() (Chunk, error) {
	off := d.offset()
	chunk, err := readChunkFrom(d.current())
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Offset = off
		}
		return Chunk{}, err
	}
	return chunk, nil
}

// readChunkFrom consumes one id(4)|length(4)|payload record from r. It
// underlies both Decoder.ReadChunk (cursor-stack aware) and the
// standalone Decode* helpers in values.go that operate on an
// already-extracted Chunk's payload.
func readChunkFrom(r *bytes.Reader) (Chunk, error) {
	var idBytes [4]byte
	if _, err := io.ReadFull(r, idBytes[:]); err != nil {
		return Chunk{}, &DecodeError{Cause: err}
	}
	var length int32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return Chunk{}, &DecodeError{Cause: err}
	}
	if length < 0 {
		return Chunk{}, &DecodeError{Cause: fmt.Errorf("negative chunk length %d", length)}
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Chunk{}, &DecodeError{Cause: err}
	}
	return Chunk{ID: string(idBytes[:]), Payload: payload}, nil
}

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// Enter pushes a nested cursor over chunk's payload, so typed helpers
// below read from it until Exit pops it back off.
func (d *Decoder) Enter(chunk Chunk) {
	d.stack = append(d.stack, bytes.NewReader(chunk.Payload))
}

// Exit pops the most recently entered nested cursor.
func (d *Decoder) Exit() {
	if len(d.stack) > 1 {
		d.stack = d.stack[:len(d.stack)-1]
	}
}

// Done reports whether the current cursor has been fully consumed.
func (d *Decoder) Done() bool {
	return d.current().Len() == 0
}

// ReadFloat32 decodes a `flt4` leaf chunk's payload as a little-endian
// float32.
func (d *Decoder) ReadFloat32() (float32, error) {
	chunk, err := d.ReadChunk()
	if err != nil {
		return 0, err
	}
	v, err := DecodeFloat32(chunk)
	if err != nil {
		return 0, withOffset(err, d.offset())
	}
	return v, nil
}

// ReadVec3 decodes a `vec3` chunk (three nested `flt4` leaves) into an
// (x, y, z) triple.
func (d *Decoder) ReadVec3() (x, y, z float32, err error) {
	chunk, err := d.ReadChunk()
	if err != nil {
		return 0, 0, 0, err
	}
	x, y, z, err = DecodeVec3(chunk)
	if err != nil {
		return 0, 0, 0, withOffset(err, d.offset())
	}
	return x, y, z, nil
}

// ReadInt32 decodes an `int4` leaf chunk as a little-endian int32.
func (d *Decoder) ReadInt32() (int32, error) {
	chunk, err := d.ReadChunk()
	if err != nil {
		return 0, err
	}
	v, err := DecodeInt32(chunk)
	if err != nil {
		return 0, withOffset(err, d.offset())
	}
	return v, nil
}

// ReadString decodes a `str ` chunk whose length is the raw byte count
// (the payload is not NUL-terminated).
func (d *Decoder) ReadString() (string, error) {
	chunk, err := d.ReadChunk()
	if err != nil {
		return "", err
	}
	v, err := DecodeString(chunk)
	if err != nil {
		return "", withOffset(err, d.offset())
	}
	return v, nil
}

func withOffset(err error, offset int64) error {
	if de, ok := err.(*DecodeError); ok {
		de.Offset = offset
	}
	return err
}
