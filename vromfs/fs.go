package vromfs

import (
	"io/fs"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/jareelskaj/vromfstools/internal/entrytree"
)

// Open parses data as a .vromfs.bin container and exposes its entries as
// a read-only [fs.FS]. Each file's inner BLK framing is decoded lazily,
// on first Read, per spec §4.6; the "nm" shared-names entry is decoded
// per spec §4.7 instead, and any "<hex>.dict" entry is exposed as its
// raw, still-framed bytes, since it is consumed as dictionary material
// rather than read as a file.
//
// cacheSize bounds the number of distinct decoded entries kept in an
// additive memoization cache (see cache.go); zero disables the cache.
func Open(data []byte, opts Options, cacheSize int) (fs.FS, error) {
	c, err := ParseContainer(data, opts)
	if err != nil {
		return nil, err
	}

	dict, err := ResolveDictionary(c.Directory)
	if err != nil {
		return nil, err
	}

	containerHash := xxhash.Sum64(data)
	cache := newDecodeCache(cacheSize)

	var dictHash uint64
	if dict != nil {
		dictHash = dict.Hash()
	}

	files := make([]entrytree.File, 0, len(c.Directory.Entries))
	for _, e := range c.Directory.Entries {
		e := e
		name := entryPath(e.Name)

		key := decodeKey{containerHash: containerHash, entryName: e.Name, dictHash: dictHash}
		files = append(files, entrytree.File{
			Path: name,
			Size: int64(len(e.Payload)),
			Open: func() ([]byte, error) {
				return decodeEntry(e, dict, opts, cache, key)
			},
		})
	}

	return entrytree.Build(files)
}

// entryPath maps a directory entry's raw name to the path exposed through
// fs.FS. Names are already record-separated by '/' in the source format;
// fs.ValidPath forbids a leading '/', which vromfs names never carry.
func entryPath(name string) string {
	return strings.TrimPrefix(name, "/")
}

func decodeEntry(e Entry, dict *Dict, opts Options, cache *decodeCache, key decodeKey) ([]byte, error) {
	if v, ok := cache.get(key); ok {
		return v, nil
	}

	var (
		v   []byte
		err error
	)
	switch {
	case e.Name == "nm":
		if dict == nil {
			return nil, ErrDictionaryRequired
		}
		v, err = DecodeSharedNames(e, *dict, opts)
	case isDictName(e.Name):
		v = e.Payload
	default:
		v, err = DecodeBlk(e, dict, opts)
	}
	if err != nil {
		return nil, err
	}

	cache.put(key, v)
	return v, nil
}

func isDictName(name string) bool {
	return strings.HasSuffix(name, ".dict") && len(name) == len(".dict")+2*sharedNamesIdentitySize
}
