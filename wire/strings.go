package wire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/palace-core/palace/wire/macroman"
)

// ErrStringTooLong is returned when an encoder is asked to write a
// string that cannot fit its target encoding.
var ErrStringTooLong = errors.New("wire: string too long")

// ErrEmbeddedNUL is returned when a CString write is given a string
// containing a zero byte.
var ErrEmbeddedNUL = errors.New("wire: embedded nul in cstring")

// PString reads a 1-length-byte-prefixed MacRoman string, max 255
// bytes.
func (r *Reader) PString() (string, error) {
	n, err := r.U8()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return macroman.Decode(b), nil
}

// PString writes s as a length-prefixed MacRoman string. Fails if the
// MacRoman encoding of s exceeds 255 bytes.
func (w *Writer) PString(s string) error {
	b := macroman.Encode(s)
	if len(b) > 255 {
		return fmt.Errorf("%w: pstring %d bytes", ErrStringTooLong, len(b))
	}
	w.U8(byte(len(b)))
	w.Raw(b)
	return nil
}

// boundedPString reads a PString whose declared max length is maxLen
// (31 or 63), then consumes zero padding up to totalWidth-1 bytes
// (the 1 accounts for the already-consumed length byte).
func (r *Reader) boundedPString(maxLen, totalWidth int) (string, error) {
	n, err := r.U8()
	if err != nil {
		return "", err
	}
	if int(n) > maxLen {
		return "", fmt.Errorf("%w: str%d length %d", ErrInvalidData, maxLen, n)
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	pad := totalWidth - 1 - int(n)
	if pad > 0 {
		if err := r.Skip(pad); err != nil {
			return "", err
		}
	}
	return macroman.Decode(b), nil
}

func (w *Writer) boundedPString(s string, maxLen, totalWidth int) error {
	b := macroman.Encode(s)
	if len(b) > maxLen {
		return fmt.Errorf("%w: str%d %d bytes", ErrStringTooLong, maxLen, len(b))
	}
	w.U8(byte(len(b)))
	w.Raw(b)
	w.Zero(totalWidth - 1 - len(b))
	return nil
}

// Str31 reads a PString constrained to n<=31, zero-padded to 32 bytes
// total in its fixed-width slot.
func (r *Reader) Str31() (string, error) { return r.boundedPString(31, 32) }

// Str31 writes s into a zero-padded 32-byte slot.
func (w *Writer) Str31(s string) error { return w.boundedPString(s, 31, 32) }

// Str63 reads a PString constrained to n<=63, zero-padded to 64 bytes
// total in its fixed-width slot.
func (r *Reader) Str63() (string, error) { return r.boundedPString(63, 64) }

// Str63 writes s into a zero-padded 64-byte slot.
func (w *Writer) Str63(s string) error { return w.boundedPString(s, 63, 64) }

// CString reads MacRoman bytes up to a zero terminator, max 255 bytes
// not counting the terminator. The terminator is consumed but not
// included in the result.
func (r *Reader) CString() (string, error) {
	// Scan without consuming first so a missing terminator leaves the
	// cursor untouched for error reporting.
	idx := bytes.IndexByte(r.buf[r.pos:], 0)
	if idx < 0 {
		return "", fmt.Errorf("%w: cstring has no terminator", ErrInvalidData)
	}
	if idx > 255 {
		return "", fmt.Errorf("%w: cstring length %d exceeds 255", ErrInvalidData, idx)
	}
	b, err := r.Bytes(idx)
	if err != nil {
		return "", err
	}
	if err := r.Skip(1); err != nil {
		return "", err
	}
	return macroman.Decode(b), nil
}

// CString writes s as MacRoman bytes followed by a zero terminator.
// Fails if s contains an embedded NUL or its MacRoman encoding exceeds
// 255 bytes.
func (w *Writer) CString(s string) error {
	b := macroman.Encode(s)
	if bytes.IndexByte(b, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	if len(b) > 255 {
		return fmt.Errorf("%w: cstring %d bytes", ErrStringTooLong, len(b))
	}
	w.Raw(b)
	w.U8(0)
	return nil
}
