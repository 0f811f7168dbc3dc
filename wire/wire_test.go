package wire

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func TestIntRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(0xAB)
	w.I16(-1234)
	w.U32(0xDEADBEEF)
	w.Point(Point{V: -5, H: 1000})
	w.AssetSpec(AssetSpec{ID: 7, CRC: 0x42c57ff9})
	w.AssetType(AssetType{'P', 'r', 'o', 'p'})

	r := NewReader(w.Bytes())
	if v, err := r.U8(); err != nil || v != 0xAB {
		t.Fatalf("U8 = %v, %v", v, err)
	}
	if v, err := r.I16(); err != nil || v != -1234 {
		t.Fatalf("I16 = %v, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("U32 = %v, %v", v, err)
	}
	p, err := r.Point()
	if err != nil {
		t.Fatalf("Point decode: %v", err)
	}
	if diff := pretty.Compare(Point{V: -5, H: 1000}, p); diff != "" {
		t.Fatalf("Point round trip mismatch (-want +got):\n%s", diff)
	}
	a, err := r.AssetSpec()
	if err != nil {
		t.Fatalf("AssetSpec decode: %v", err)
	}
	if diff := pretty.Compare(AssetSpec{ID: 7, CRC: 0x42c57ff9}, a); diff != "" {
		t.Fatalf("AssetSpec round trip mismatch (-want +got):\n%s", diff)
	}
	at, err := r.AssetType()
	if err != nil || at.String() != "Prop" {
		t.Fatalf("AssetType = %v, %v", at, err)
	}
	if r.Len() != 0 {
		t.Fatalf("trailing bytes: %d", r.Len())
	}
}

func TestShortReadIsUnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.U32(); err != ErrUnexpectedEOF {
		t.Fatalf("err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestPStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hi", "exactly 31 characters long!!!!!", "a much longer ascii string that stays under 255 bytes easily"} {
		w := NewWriter()
		if err := w.PString(s); err != nil {
			t.Fatalf("PString(%q) encode: %v", s, err)
		}
		r := NewReader(w.Bytes())
		got, err := r.PString()
		if err != nil {
			t.Fatalf("PString(%q) decode: %v", s, err)
		}
		if got != s {
			t.Fatalf("PString round trip = %q, want %q", got, s)
		}
	}
}

func TestPStringTooLong(t *testing.T) {
	w := NewWriter()
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'x'
	}
	if err := w.PString(string(long)); err == nil {
		t.Fatal("expected error for 256-byte pstring")
	}
}

func TestStr31RoundTripAndPadding(t *testing.T) {
	w := NewWriter()
	if err := w.Str31("Alice"); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 32 {
		t.Fatalf("Str31 slot = %d bytes, want 32", w.Len())
	}
	r := NewReader(w.Bytes())
	got, err := r.Str31()
	if err != nil || got != "Alice" {
		t.Fatalf("Str31 = %q, %v", got, err)
	}
	if r.Len() != 0 {
		t.Fatalf("Str31 left %d trailing bytes", r.Len())
	}
}

func TestStr63RoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.Str63("a 63-char cap string"); err != nil {
		t.Fatal(err)
	}
	if w.Len() != 64 {
		t.Fatalf("Str63 slot = %d bytes, want 64", w.Len())
	}
	r := NewReader(w.Bytes())
	got, err := r.Str63()
	if err != nil || got != "a 63-char cap string" {
		t.Fatalf("Str63 = %q, %v", got, err)
	}
	if r.Len() != 0 {
		t.Fatalf("Str63 left %d trailing bytes", r.Len())
	}
}

func TestCStringRoundTrip(t *testing.T) {
	w := NewWriter()
	if err := w.CString("hello world"); err != nil {
		t.Fatal(err)
	}
	w.U8(0x99) // trailing byte after the cstring must not be consumed
	r := NewReader(w.Bytes())
	got, err := r.CString()
	if err != nil || got != "hello world" {
		t.Fatalf("CString = %q, %v", got, err)
	}
	if b, _ := r.U8(); b != 0x99 {
		t.Fatalf("trailing byte = %x, want 0x99", b)
	}
}

func TestCStringEmbeddedNUL(t *testing.T) {
	w := NewWriter()
	if err := w.CString("a\x00b"); err == nil {
		t.Fatal("expected error for embedded NUL")
	}
}

func TestCStringMissingTerminator(t *testing.T) {
	r := NewReader([]byte("no terminator"))
	if _, err := r.CString(); err == nil {
		t.Fatal("expected error for missing terminator")
	}
}
