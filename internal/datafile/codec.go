// Package datafile implements the compact binary codec used to persist and
// replay core snapshots: fixed-width primitives via encoding/binary, and
// zigzag varints via protobuf's wire encoding helpers — the same
// base-128, MSB-continuation, zigzag-folded varint the spec's int/long/
// short codecs describe, reused rather than hand-rolled.
package datafile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Writer accumulates an encoded byte stream. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded stream so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteBool appends a single 0/1 byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteFloat appends a big-endian IEEE-754 32-bit float.
func (w *Writer) WriteFloat(v float32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteDouble appends a big-endian IEEE-754 64-bit float.
func (w *Writer) WriteDouble(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteInt appends a zigzag varint-encoded 32-bit integer.
func (w *Writer) WriteInt(v int32) {
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeZigZag(int64(v)))
}

// WriteLong appends a zigzag varint-encoded 64-bit integer.
func (w *Writer) WriteLong(v int64) {
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeZigZag(v))
}

// WriteShort appends a zigzag varint-encoded 16-bit integer.
func (w *Writer) WriteShort(v int16) {
	w.buf = protowire.AppendVarint(w.buf, protowire.EncodeZigZag(int64(v)))
}

// WriteString appends a varint length prefix followed by the UTF-8 bytes.
func (w *Writer) WriteString(s string) {
	w.WriteInt(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// Reader reads back a stream produced by Writer. The zero value is not
// usable; construct with NewReader.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reads starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Size returns the number of bytes already read.
func (r *Reader) Size() int {
	return r.pos
}

// Reset repositions the reader at offset 0.
func (r *Reader) Reset() {
	r.pos = 0
}

// ReadBool reads a single 0/1 byte.
func (r *Reader) ReadBool() (bool, error) {
	if r.pos >= len(r.buf) {
		return false, fmt.Errorf("datafile: read bool: %w", io.ErrUnexpectedEOF)
	}
	v := r.buf[r.pos] != 0
	r.pos++
	return v, nil
}

// ReadFloat reads a big-endian IEEE-754 32-bit float.
func (r *Reader) ReadFloat() (float32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("datafile: read float: %w", io.ErrUnexpectedEOF)
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

// ReadDouble reads a big-endian IEEE-754 64-bit float.
func (r *Reader) ReadDouble() (float64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, fmt.Errorf("datafile: read double: %w", io.ErrUnexpectedEOF)
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// ReadInt reads a zigzag varint-encoded 32-bit integer.
func (r *Reader) ReadInt() (int32, error) {
	v, err := r.readZigZag()
	return int32(v), err
}

// ReadLong reads a zigzag varint-encoded 64-bit integer.
func (r *Reader) ReadLong() (int64, error) {
	return r.readZigZag()
}

// ReadShort reads a zigzag varint-encoded 16-bit integer.
func (r *Reader) ReadShort() (int16, error) {
	v, err := r.readZigZag()
	return int16(v), err
}

func (r *Reader) readZigZag() (int64, error) {
	v, n := protowire.ConsumeVarint(r.buf[r.pos:])
	if n < 0 {
		return 0, fmt.Errorf("datafile: read varint: %w", io.ErrUnexpectedEOF)
	}
	r.pos += n
	return protowire.DecodeZigZag(v), nil
}

// ReadString reads a varint length prefix followed by that many UTF-8
// bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadInt()
	if err != nil {
		return "", err
	}
	if n < 0 || r.pos+int(n) > len(r.buf) {
		return "", fmt.Errorf("datafile: read string: %w", io.ErrUnexpectedEOF)
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}
