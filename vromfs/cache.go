package vromfs

import (
	"hash/maphash"
	"log/slog"

	"github.com/dgryski/go-tinylfu"
)

// decodeCache memoizes BlkDecoder/SharedNamesDecoder output. The core's
// decode functions are already pure (spec §5); this cache is purely an
// optimization for callers that re-read the same entry repeatedly
// through Open's fs.FS, not a requirement of the format. A nil *decodeCache decodes every call,
// which keeps it optional without a sentinel "no cache" value.
type decodeCache struct {
	entries *tinylfu.T[decodeKey, []byte]
}

// decodeKey identifies one decoded result: an entry within a specific
// container, optionally keyed by the dictionary used.
type decodeKey struct {
	containerHash uint64
	entryName     string
	dictHash      uint64
}

// newDecodeCache creates a cache sized for roughly capacity distinct
// decoded entries, evicting the least-valuable ones under
// TinyLFU/window-admission once full.
func newDecodeCache(capacity int) *decodeCache {
	if capacity <= 0 {
		return nil
	}
	c := &decodeCache{}
	c.entries = tinylfu.New[decodeKey, []byte](capacity, capacity*10, hashDecodeKey, tinylfu.OnEvict(c.onEvict))
	return c
}

func (c *decodeCache) onEvict(k decodeKey, _ []byte) {
	slog.Debug("vromfs: decode cache evicted", "entry", k.entryName)
}

func (c *decodeCache) get(k decodeKey) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(k)
}

func (c *decodeCache) put(k decodeKey, v []byte) {
	if c == nil {
		return
	}
	c.entries.Add(k, v)
}

var decodeKeySeed = maphash.MakeSeed()

func hashDecodeKey(k decodeKey) uint64 {
	return maphash.Comparable(decodeKeySeed, k)
}
