package vromfs

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// decompressor is a thin front for the two codecs the outer framing and
// inner BLK framing can select (spec §4.3). Every method is bounded by
// maxOutput: exceeding it fails with ErrOutputTooLarge rather than
// letting an adversarial container inflate without limit.
type decompressor struct {
	maxOutput int64
}

func (d decompressor) zstdPlain(in []byte) ([]byte, error) {
	return d.zstdWithDict(in, nil)
}

func (d decompressor) zstdWithDict(in []byte, dict *Dict) ([]byte, error) {
	opts := []zstd.DOption{zstd.WithDecoderLowmem(true)}
	if dict != nil {
		// Bytes that start with the zstd dictionary magic are parsed as a
		// formatted dictionary; anything else is used as raw content.
		if bytes.HasPrefix(dict.raw, []byte{0x37, 0xA4, 0x30, 0xEC}) {
			opts = append(opts, zstd.WithDecoderDicts(dict.raw))
		} else {
			opts = append(opts, zstd.WithDecoderDictRaw(0, dict.raw))
		}
	}
	r, err := zstd.NewReader(bytes.NewReader(in), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompressFailed, err)
	}
	defer r.Close()
	return d.readBounded(r, "zstd")
}

func (d decompressor) zlib(in []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", ErrDecompressFailed, err)
	}
	defer r.Close()
	return d.readBounded(r, "zlib")
}

func (d decompressor) readBounded(r io.Reader, codec string) ([]byte, error) {
	limited := io.LimitReader(r, d.maxOutput+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompressFailed, codec, err)
	}
	if int64(len(out)) > d.maxOutput {
		return nil, fmt.Errorf("%w: %s produced more than %d bytes", ErrOutputTooLarge, codec, d.maxOutput)
	}
	return out, nil
}
