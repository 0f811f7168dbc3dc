package cipher

import (
	"bytes"
	"testing"
)

func TestTableLength(t *testing.T) {
	if len(Table) != 512 {
		t.Fatalf("table length = %d, want 512", len(Table))
	}
}

func TestTableDeterministic(t *testing.T) {
	a := generateTable()
	b := generateTable()
	if a != b {
		t.Fatal("table generation is not deterministic")
	}
}

func TestInvolution(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("a"),
		[]byte("hello, palace"),
		bytes.Repeat([]byte{0x41}, 254),
	}
	for _, p := range cases {
		c := Encrypt(p)
		got := Decrypt(c)
		if !bytes.Equal(got, p) {
			t.Errorf("decrypt(encrypt(%q)) = %q", p, got)
		}
		// And the reverse composition.
		d := Decrypt(p)
		got2 := Encrypt(d)
		if !bytes.Equal(got2, p) {
			t.Errorf("encrypt(decrypt(%q)) = %q", p, got2)
		}
	}
}

func TestRNGDeterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)
	for i := 0; i < 100; i++ {
		x := a.Intn(1000)
		y := b.Intn(1000)
		if x != y {
			t.Fatalf("diverged at %d: %d != %d", i, x, y)
		}
		if x < 0 || x >= 1000 {
			t.Fatalf("out of range: %d", x)
		}
	}
}

func TestRNGZeroMax(t *testing.T) {
	r := NewRNG(1)
	if v := r.Intn(0); v != 0 {
		t.Fatalf("Intn(0) = %d, want 0", v)
	}
	if v := r.Intn(-5); v != 0 {
		t.Fatalf("Intn(-5) = %d, want 0", v)
	}
}
