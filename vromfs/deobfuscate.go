package vromfs

import "encoding/binary"

// keyA and keyB are the fixed XOR keys applied to the first and last
// 16-byte windows of a zstd-framed compressed body (spec §4.2). Treated
// as four little-endian uint32s each, per spec §9 "Endianness".
var (
	keyA = [4]uint32{0xAA55AA55, 0xF00FF00F, 0xAA55AA55, 0x12481248}
	keyB = [4]uint32{0x12481248, 0xAA55AA55, 0xF00FF00F, 0xAA55AA55}
)

// deobfuscate undoes the XOR obfuscation of the leading and trailing
// 16-byte windows of a zstd-framed compressed body. It operates on a
// fresh copy of raw and never mutates the caller's slice.
//
// Bodies shorter than 16 bytes are returned unchanged, and bodies shorter
// than 32 bytes get only the leading window. The trailing window ends
// just before the last len(raw)%4 bytes, which are left as they are.
//
// Applying deobfuscate twice to the same buffer returns the original
// bytes: XOR is its own inverse, and the windows it touches don't move.
func deobfuscate(raw []byte) []byte {
	out := append([]byte(nil), raw...)

	if len(out) >= 16 {
		xorWindow(out[0:16], keyA)
	}
	if len(out) >= 32 {
		mid := (len(out) - 32) &^ 3 // round the middle region down to a multiple of 4
		tailStart := 16 + mid
		xorWindow(out[tailStart:tailStart+16], keyB)
	}

	return out
}

func xorWindow(w []byte, key [4]uint32) {
	for i := 0; i < 4; i++ {
		v := binary.LittleEndian.Uint32(w[i*4:]) ^ key[i]
		binary.LittleEndian.PutUint32(w[i*4:], v)
	}
}
