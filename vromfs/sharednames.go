package vromfs

import "fmt"

// sharedNamesHeaderSize is the combined size of the dictionary identifier
// region (32 bytes) plus reserved bytes that precede the "nm" entry's
// compressed payload (spec §4.7).
const sharedNamesHeaderSize = 40

// DecodeSharedNames decodes the "nm" entry's own payload: the dictionary
// identifier and reserved region (already consumed by ResolveDictionary)
// is skipped, and the remainder is ZSTD-decompressed with the
// container's dictionary (spec §4.7).
func DecodeSharedNames(entry Entry, dict Dict, opts Options) ([]byte, error) {
	if len(entry.Payload) < sharedNamesHeaderSize {
		return nil, fmt.Errorf("%w: nm entry too short (%d bytes)", ErrDirectoryMalformed, len(entry.Payload))
	}
	dc := decompressor{maxOutput: opts.maxOutput()}
	return dc.zstdWithDict(entry.Payload[sharedNamesHeaderSize:], &dict)
}
