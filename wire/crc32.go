package wire

// DefaultCRCSeed is the seed the client/server use for prop asset
// CRCs when no other seed is specified (spec.md §8.1's "seed =
// default").
const DefaultCRCSeed uint32 = 0xD9216290

// CRC32 computes the Palace client's bespoke (non-IEEE) checksum: a
// 1-bit left rotate of the running value folded with each input byte,
// seeded with seed rather than the conventional all-ones start value.
func CRC32(input []byte, seed uint32) uint32 {
	crc := seed
	for _, b := range input {
		carry := uint32(0)
		if crc&0x80000000 != 0 {
			carry = 1
		}
		crc = (crc << 1) | (carry ^ uint32(b))
	}
	return crc
}
