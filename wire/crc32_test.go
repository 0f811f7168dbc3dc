package wire

import "testing"

func TestCRC32MatchesReferenceVector(t *testing.T) {
	got := CRC32([]byte("Hi there!"), DefaultCRCSeed)
	if got != 0x42C57FF9 {
		t.Fatalf("CRC32 = %#x, want 0x42c57ff9", got)
	}
}

func TestCRC32SeedChangesResult(t *testing.T) {
	a := CRC32([]byte("Hi there!"), DefaultCRCSeed)
	b := CRC32([]byte("Hi there!"), 0)
	if a == b {
		t.Fatal("different seeds produced the same CRC")
	}
}
