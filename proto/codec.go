package proto

import (
	"fmt"

	"github.com/palace-core/palace/wire"
)

// Reader decodes a message payload. Multi-byte integer fields honor
// the connection's byte order; PStrings and CStrings are byte
// sequences with no endianness (spec.md §4.C, §9) and are delegated to
// the wire package unchanged.
type Reader struct {
	w     *wire.Reader
	order ByteOrder
}

// NewReader wraps a payload for decoding under the given byte order.
func NewReader(b []byte, order ByteOrder) *Reader {
	return &Reader{w: wire.NewReader(b), order: order}
}

func (r *Reader) Len() int                    { return r.w.Len() }
func (r *Reader) Bytes(n int) ([]byte, error) { return r.w.Bytes(n) }
func (r *Reader) Skip(n int) error            { return r.w.Skip(n) }
func (r *Reader) PString() (string, error)    { return r.w.PString() }
func (r *Reader) Str31() (string, error)      { return r.w.Str31() }
func (r *Reader) Str63() (string, error)      { return r.w.Str63() }
func (r *Reader) CString() (string, error)    { return r.w.CString() }
func (r *Reader) AssetType() (wire.AssetType, error) { return r.w.AssetType() }

func (r *Reader) U8() (byte, error) { return r.w.U8() }
func (r *Reader) I8() (int8, error) { return r.w.I8() }

func (r *Reader) U16() (uint16, error) {
	b, err := r.w.Bytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.binary().Uint16(b), nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.w.Bytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.binary().Uint32(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) Point() (wire.Point, error) {
	v, err := r.I16()
	if err != nil {
		return wire.Point{}, err
	}
	h, err := r.I16()
	if err != nil {
		return wire.Point{}, err
	}
	return wire.Point{V: v, H: h}, nil
}

func (r *Reader) AssetSpec() (wire.AssetSpec, error) {
	id, err := r.I32()
	if err != nil {
		return wire.AssetSpec{}, err
	}
	crc, err := r.U32()
	if err != nil {
		return wire.AssetSpec{}, err
	}
	return wire.AssetSpec{ID: id, CRC: crc}, nil
}

// Writer encodes a message payload, mirroring Reader.
type Writer struct {
	w     *wire.Writer
	order ByteOrder
}

// NewWriter returns an empty Writer for the given byte order.
func NewWriter(order ByteOrder) *Writer {
	return &Writer{w: wire.NewWriter(), order: order}
}

func (w *Writer) Bytes() []byte              { return w.w.Bytes() }
func (w *Writer) Len() int                   { return w.w.Len() }
func (w *Writer) Raw(b []byte)                { w.w.Raw(b) }
func (w *Writer) Zero(n int)                  { w.w.Zero(n) }
func (w *Writer) U8(v byte)                   { w.w.U8(v) }
func (w *Writer) I8(v int8)                   { w.w.I8(v) }
func (w *Writer) PString(s string) error      { return w.w.PString(s) }
func (w *Writer) Str31(s string) error        { return w.w.Str31(s) }
func (w *Writer) Str63(s string) error        { return w.w.Str63(s) }
func (w *Writer) CString(s string) error      { return w.w.CString(s) }
func (w *Writer) AssetType(t wire.AssetType)  { w.w.AssetType(t) }

func (w *Writer) U16(v uint16) {
	b := make([]byte, 2)
	w.order.binary().PutUint16(b, v)
	w.w.Raw(b)
}

func (w *Writer) I16(v int16) { w.U16(uint16(v)) }

func (w *Writer) U32(v uint32) {
	b := make([]byte, 4)
	w.order.binary().PutUint32(b, v)
	w.w.Raw(b)
}

func (w *Writer) I32(v int32) { w.U32(uint32(v)) }

func (w *Writer) Point(p wire.Point) {
	w.I16(p.V)
	w.I16(p.H)
}

func (w *Writer) AssetSpec(a wire.AssetSpec) {
	w.I32(a.ID)
	w.U32(a.CRC)
}

// Payload is implemented by every decoded message body.
type Payload interface {
	Kind() Kind
	Encode(w *Writer)
}

// DecodeFunc decodes a payload of a known kind from r.
type DecodeFunc func(r *Reader) (Payload, error)

var registry = map[Kind]DecodeFunc{}

// register adds a kind to the closed dispatch table. Called from
// each message family's init(); a duplicate registration is a
// programming error and panics immediately.
func register(k Kind, f DecodeFunc) {
	if _, dup := registry[k]; dup {
		panic("proto: duplicate registration for kind " + k.String())
	}
	registry[k] = f
}

// EncodeFrame serializes a full frame: header plus encoded payload.
func EncodeFrame(ref int32, p Payload, order ByteOrder) []byte {
	w := NewWriter(order)
	p.Encode(w)
	body := w.Bytes()
	h := Header{Kind: p.Kind(), Length: uint32(len(body)), Ref: ref}
	out := PutHeader(h, order)
	return append(out, body...)
}

// DecodePayload looks up and runs the codec registered for h.Kind.
func DecodePayload(h Header, payload []byte, order ByteOrder) (Payload, error) {
	dec, ok := registry[h.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, h.Kind)
	}
	return dec(NewReader(payload, order))
}

// Scan extracts the next complete frame from buf, returning the
// header, its raw payload slice (a view into buf, not a copy), and
// the number of bytes consumed. If buf does not yet hold a complete
// frame, it returns ErrShortFrame and the caller should read more
// before calling Scan again (spec.md §4.C: incomplete frames are a
// request for more data, not an error).
func Scan(buf []byte, order ByteOrder) (h Header, payload []byte, consumed int, err error) {
	if len(buf) < HeaderSize {
		return Header{}, nil, 0, ErrShortFrame
	}
	h, err = ParseHeader(buf[:HeaderSize], order)
	if err != nil {
		return Header{}, nil, 0, err
	}
	if err := h.Validate(); err != nil {
		return Header{}, nil, 0, err
	}
	total := HeaderSize + int(h.Length)
	if len(buf) < total {
		return Header{}, nil, 0, ErrShortFrame
	}
	return h, buf[HeaderSize:total], total, nil
}
