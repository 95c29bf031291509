package vromfs

import (
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// sharedNamesIdentitySize is the length, in bytes, of the dictionary
// identifier region at the front of the "nm" entry's payload (spec §4.5).
const sharedNamesIdentitySize = 32

// Dict is a reusable ZSTD decompression dictionary resolved from a
// container's directory (spec §4.5). It is a value type, safe to cache
// and share across many decompressions and many goroutines.
type Dict struct {
	raw  []byte
	hash uint64
}

// Hash returns a content-addressed key for this dictionary, suitable for
// deduplicating identical dictionaries across many parsed containers
// without re-hex-decoding the identifier on every lookup.
func (d Dict) Hash() uint64 { return d.hash }

func newDict(raw []byte) Dict {
	return Dict{raw: raw, hash: xxhash.Sum64(raw)}
}

// ResolveDictionary inspects a container's directory and, if it carries
// dictionary-compressed content, returns a usable Dict. It returns
// (nil, nil) if the container has no "nm" entry or the entry's identity
// region is all zero (spec §4.5 steps 1-2).
func ResolveDictionary(dir Directory) (*Dict, error) {
	nm, ok := findEntry(dir, "nm")
	if !ok {
		return nil, nil
	}
	if len(nm.Payload) < sharedNamesIdentitySize+8 {
		return nil, fmt.Errorf("%w: nm entry too short (%d bytes)", ErrDirectoryMalformed, len(nm.Payload))
	}

	id := nm.Payload[8 : 8+sharedNamesIdentitySize]
	if isAllZero(id) {
		return nil, nil
	}

	dictName := hex.EncodeToString(id) + ".dict"
	dictEntry, ok := findEntry(dir, dictName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDictionaryMissing, dictName)
	}

	d := newDict(dictEntry.Payload)
	return &d, nil
}

func findEntry(dir Directory, name string) (Entry, bool) {
	for _, e := range dir.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
