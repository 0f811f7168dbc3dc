// Package wire implements the byte-level primitives of the Palace wire
// protocol: big-endian integer codecs and the four Pascal/C string
// encodings used throughout message payloads and room templates.
package wire

import (
	"encoding/binary"
	"errors"
)

// ErrUnexpectedEOF is returned when a read needs more bytes than the
// cursor has remaining.
var ErrUnexpectedEOF = errors.New("wire: unexpected eof")

// ErrInvalidData is returned when a length prefix or discriminant in
// the stream cannot possibly be valid.
var ErrInvalidData = errors.New("wire: invalid data")

// Reader is a forward-only cursor over a byte slice. It never copies
// the underlying slice; callers that need to retain string data must
// copy it out themselves (string(b) already does this).
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len reports how many bytes remain unread.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// Bytes returns a view of the n bytes starting at the cursor and
// advances the cursor past them.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, ErrUnexpectedEOF
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.Bytes(n)
	return err
}

// U8 reads one unsigned byte.
func (r *Reader) U8() (byte, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads one signed byte.
func (r *Reader) I8() (int8, error) {
	b, err := r.U8()
	return int8(b), err
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// I16 reads a big-endian int16.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// I32 reads a big-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// Point reads a Mac/QuickDraw-order (v, h) coordinate pair.
type Point struct {
	V, H int16
}

// Point reads a Point: vertical coordinate first, then horizontal.
func (r *Reader) Point() (Point, error) {
	v, err := r.I16()
	if err != nil {
		return Point{}, err
	}
	h, err := r.I16()
	if err != nil {
		return Point{}, err
	}
	return Point{V: v, H: h}, nil
}

// Writer accumulates encoded bytes. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated encoding.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// Zero appends n zero bytes.
func (w *Writer) Zero(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// U8 appends one byte.
func (w *Writer) U8(v byte) { w.buf = append(w.buf, v) }

// I8 appends one signed byte.
func (w *Writer) I8(v int8) { w.U8(byte(v)) }

// U16 appends a big-endian uint16.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// I16 appends a big-endian int16.
func (w *Writer) I16(v int16) { w.U16(uint16(v)) }

// U32 appends a big-endian uint32.
func (w *Writer) U32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// I32 appends a big-endian int32.
func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

// Point appends a Point, vertical coordinate first.
func (w *Writer) Point(p Point) {
	w.I16(p.V)
	w.I16(p.H)
}

// AssetSpec is a (asset id, crc32) pair. A crc of 0 means "any version
// acceptable".
type AssetSpec struct {
	ID  int32
	CRC uint32
}

// AssetSpec reads an 8-byte AssetSpec.
func (r *Reader) AssetSpec() (AssetSpec, error) {
	id, err := r.I32()
	if err != nil {
		return AssetSpec{}, err
	}
	crc, err := r.U32()
	if err != nil {
		return AssetSpec{}, err
	}
	return AssetSpec{ID: id, CRC: crc}, nil
}

// AssetSpec appends an 8-byte AssetSpec.
func (w *Writer) AssetSpec(a AssetSpec) {
	w.I32(a.ID)
	w.U32(a.CRC)
}

// AssetType is a 4-byte ASCII tag such as "Prop", packed big-endian as
// if it were a uint32.
type AssetType [4]byte

func (t AssetType) String() string { return string(t[:]) }

// AssetType reads a 4-byte asset type tag.
func (r *Reader) AssetType() (AssetType, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return AssetType{}, err
	}
	var t AssetType
	copy(t[:], b)
	return t, nil
}

// AssetType appends a 4-byte asset type tag.
func (w *Writer) AssetType(t AssetType) { w.Raw(t[:]) }
