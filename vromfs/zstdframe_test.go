package vromfs

// buildZstdRawFrame wraps content in a minimal, valid single-segment ZSTD
// frame using an uncompressed "Raw_Block" (RFC 8878 §3.1.1), so tests can
// exercise the real klauspost/compress/zstd decoder without needing an
// actual compressor. content must be no longer than 255 bytes, the limit
// of the single-byte Frame_Content_Size field used here.
func buildZstdRawFrame(content []byte) []byte {
	if len(content) > 255 {
		panic("buildZstdRawFrame: content too long for single-byte frame content size")
	}

	frame := []byte{0x28, 0xB5, 0x2F, 0xFD} // magic number, LE

	const (
		singleSegmentFlag = 1 << 5
		contentSizeFlag0  = 0 // 1-byte Frame_Content_Size field
	)
	frame = append(frame, singleSegmentFlag|contentSizeFlag0)
	frame = append(frame, byte(len(content))) // Frame_Content_Size

	blockSize := uint32(len(content))
	const (
		lastBlock = 1
		rawBlock  = 0 << 1
	)
	header := (blockSize << 3) | rawBlock | lastBlock
	frame = append(frame, byte(header), byte(header>>8), byte(header>>16))
	frame = append(frame, content...)

	return frame
}
