package vromfs

import "fmt"

// blkFraming is the inner wrapping of a .blk entry's payload, tagged by
// its leading byte (spec §4.6).
type blkFraming uint8

const (
	blkFat          blkFraming = 1
	blkFatZstd      blkFraming = 2
	blkSlim         blkFraming = 3
	blkSlimZstd     blkFraming = 4
	blkSlimZstdDict blkFraming = 5
)

// DecodeBlk decodes one entry's inner framing, returning the decoded
// bytes with the envelope removed. dict may be nil; SlimZstdDict fails
// with ErrDictionaryRequired if it is (spec §4.6).
func DecodeBlk(entry Entry, dict *Dict, opts Options) ([]byte, error) {
	if len(entry.Payload) == 0 {
		return nil, nil
	}

	dc := decompressor{maxOutput: opts.maxOutput()}
	pk := blkFraming(entry.Payload[0])
	switch pk {
	case blkFat, blkSlim:
		return entry.Payload[1:], nil

	case blkFatZstd:
		if len(entry.Payload) < 4 {
			return nil, fmt.Errorf("%w: FatZstd entry too short (%d bytes)", ErrDirectoryMalformed, len(entry.Payload))
		}
		pkSize := uint32(entry.Payload[1]) | uint32(entry.Payload[2])<<8 | uint32(entry.Payload[3])<<16
		end := 4 + int(pkSize)
		if end > len(entry.Payload) {
			return nil, fmt.Errorf("%w: FatZstd pk_size %d exceeds payload length %d", ErrOffsetOutOfRange, pkSize, len(entry.Payload))
		}
		decoded, err := dc.zstdWithDict(entry.Payload[4:end], dict)
		if err != nil {
			return nil, err
		}
		if len(decoded) == 0 {
			return nil, nil
		}
		return decoded[1:], nil

	case blkSlimZstd:
		return dc.zstdWithDict(entry.Payload[1:], dict)

	case blkSlimZstdDict:
		if dict == nil {
			return nil, fmt.Errorf("%w: SlimZstdDict entry %q", ErrDictionaryRequired, entry.Name)
		}
		return dc.zstdWithDict(entry.Payload[1:], dict)

	default:
		return entry.Payload, nil
	}
}
