package proto

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the fixed size of every frame header (spec.md §3.2).
const HeaderSize = 12

// ErrShortFrame indicates fewer than HeaderSize+length bytes are
// available yet; it is a request to read more, not a protocol error.
var ErrShortFrame = errors.New("proto: short frame")

// ErrUnknownKind indicates a frame whose kind has no registered codec.
// The frame's payload has already been skipped by the caller; the
// stream is not desynchronized.
var ErrUnknownKind = errors.New("proto: unknown message kind")

// ErrBadLength indicates a header whose declared length cannot
// possibly be valid (e.g. negative once reinterpreted, or absurdly
// large) and the connection must be closed.
var ErrBadLength = errors.New("proto: invalid frame length")

// MaxPayloadLen bounds the payload length accepted from a header,
// guarding against a corrupt or hostile peer claiming a huge length
// and stalling the reader indefinitely.
const MaxPayloadLen = 1 << 20

// Header is the 12-byte frame header: message kind, payload length,
// and reference number (spec.md §3.2).
type Header struct {
	Kind   Kind
	Length uint32
	Ref    int32
}

// ByteOrder decides how a connection's multi-byte fields are decoded,
// fixed for the lifetime of the connection by the one-time Tiyid
// endianness probe (spec.md §4.C, §9).
type ByteOrder int

const (
	// BigEndian is the normative wire byte order.
	BigEndian ByteOrder = iota
	// LittleEndian is used by a peer whose first Tiyid frame arrived
	// with its kind bytes reversed.
	LittleEndian
)

func (o ByteOrder) binary() binary.ByteOrder {
	if o == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// ParseHeader decodes a 12-byte header using the given byte order. It
// does not validate Length against MaxPayloadLen; callers that read
// directly off the wire should call Validate.
func ParseHeader(b []byte, order ByteOrder) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortFrame
	}
	bo := order.binary()
	h := Header{
		Kind:   Kind(bo.Uint32(b[0:4])),
		Length: bo.Uint32(b[4:8]),
		Ref:    int32(bo.Uint32(b[8:12])),
	}
	return h, nil
}

// Validate rejects headers whose declared length is not plausibly a
// real frame (spec.md §7: "invalid length... closes the connection").
func (h Header) Validate() error {
	if h.Length > MaxPayloadLen {
		return fmt.Errorf("%w: kind=%s length=%d", ErrBadLength, h.Kind, h.Length)
	}
	return nil
}

// PutHeader encodes h into a fresh 12-byte slice using the given byte
// order.
func PutHeader(h Header, order ByteOrder) []byte {
	b := make([]byte, HeaderSize)
	bo := order.binary()
	bo.PutUint32(b[0:4], uint32(h.Kind))
	bo.PutUint32(b[4:8], h.Length)
	bo.PutUint32(b[8:12], uint32(h.Ref))
	return b
}

// DetectByteOrder inspects the very first header's raw kind bytes
// (read without any byte-swapping applied, per spec.md §9) and decides
// whether the peer is big- or little-endian. The first message on any
// connection must be Tiyid; any other kind is a protocol error.
func DetectByteOrder(rawHeader []byte) (ByteOrder, error) {
	if len(rawHeader) < 4 {
		return BigEndian, ErrShortFrame
	}
	be := Kind(binary.BigEndian.Uint32(rawHeader[0:4]))
	switch be {
	case KindTiyid:
		return BigEndian, nil
	case KindTiyid.Swapped():
		return LittleEndian, nil
	default:
		return BigEndian, fmt.Errorf("%w: first frame kind %s is not Tiyid", ErrUnknownKind, be)
	}
}
