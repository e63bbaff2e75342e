package classfile

import (
	"bytes"
	"encoding/binary"
	"io"
)

// reader consumes big-endian values from a byte slice. The first failure
// sticks; later reads return zero values.
type reader struct {
	buf []byte
	pos int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.buf)-r.pos < n {
		r.err = &InvalidClassError{Offset: r.pos, Reason: "unexpected end of data", Err: io.ErrUnexpectedEOF}
		return false
	}
	return true
}

func (r *reader) readU1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) readU2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) readU4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) readBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

// writer accumulates big-endian values.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) writeU1(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) writeU2(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) writeU4(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) writeBytes(b []byte) {
	w.buf.Write(b)
}

func (w *writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (r *reader) failf(format string, args ...any) {
	if r.err == nil {
		r.err = invalidf(r.pos, format, args...)
	}
}

func (r *reader) readU2s(n int) []uint16 {
	out := make([]uint16, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.readU2())
	}
	return out
}

func (w *writer) writeU2s(vs []uint16) error {
	if len(vs) > 0xFFFF {
		return errTooMany(len(vs))
	}
	w.writeU2(uint16(len(vs)))
	for _, v := range vs {
		w.writeU2(v)
	}
	return nil
}
