package database

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// The canonical binary encoding is the one form hashes are computed
// over: fixed-width integers little-endian, variable-length fields
// preceded by a u64 length, structs encoded field-by-field in
// declaration order. It must never vary between peers.

type encoder struct {
	buf bytes.Buffer
}

func newEncoder() *encoder {
	return &encoder{}
}

func (e *encoder) bytes() []byte {
	return e.buf.Bytes()
}

func (e *encoder) putU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) putU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *encoder) putByte(v byte) {
	e.buf.WriteByte(v)
}

func (e *encoder) putFixed(b []byte) {
	e.buf.Write(b)
}

func (e *encoder) putBytes(b []byte) {
	e.putU64(uint64(len(b)))
	e.buf.Write(b)
}

func (e *encoder) putString(s string) {
	e.putBytes([]byte(s))
}

type decoder struct {
	data []byte
	pos  int
}

func newDecoder(data []byte) *decoder {
	return &decoder{data: data}
}

func (d *decoder) remaining() int {
	return len(d.data) - d.pos
}

func (d *decoder) getU64() (uint64, error) {
	if d.remaining() < 8 {
		return 0, fmt.Errorf("database: decode u64: %w", errShortBuffer)
	}
	v := binary.LittleEndian.Uint64(d.data[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

func (d *decoder) getU32() (uint32, error) {
	if d.remaining() < 4 {
		return 0, fmt.Errorf("database: decode u32: %w", errShortBuffer)
	}
	v := binary.LittleEndian.Uint32(d.data[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

func (d *decoder) getByte() (byte, error) {
	if d.remaining() < 1 {
		return 0, fmt.Errorf("database: decode byte: %w", errShortBuffer)
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) getFixed(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, fmt.Errorf("database: decode fixed[%d]: %w", n, errShortBuffer)
	}
	v := d.data[d.pos : d.pos+n]
	d.pos += n
	return v, nil
}

func (d *decoder) getBytes() ([]byte, error) {
	n, err := d.getU64()
	if err != nil {
		return nil, err
	}
	return d.getFixed(int(n))
}

func (d *decoder) getString() (string, error) {
	b, err := d.getBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) getHash() (Hash, error) {
	b, err := d.getFixed(HashSize)
	if err != nil {
		return Hash{}, err
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
