package vromfs

import (
	"crypto/md5"
	"fmt"
)

const defaultMaxDecompressedSize = 5_000_000

// Options configures container parsing. The zero value turns off the
// strict trailer and platform checks; use DefaultOptions to get the
// recognized defaults (spec §6).
type Options struct {
	// MaxDecompressedSize bounds every decompression this package
	// performs, including per-entry BLK decoding. Zero means use the
	// default of 5,000,000 bytes.
	MaxDecompressedSize uint64

	// StrictTrailer requires |tail| to be exactly 0 or 256 bytes, per
	// spec §3. There is no relaxed mode described by the format, but the
	// option exists to mirror the recognized-option enumeration in §6.
	StrictTrailer bool

	// StrictPlatform requires the platform tag to be one of the three
	// documented values (spec §3).
	StrictPlatform bool

	// VerifyDigest additionally MD5-hashes the decompressed body and
	// compares it against the trailer digest when present. The source
	// format never performs this check (spec §9(c)); it is offered here
	// as the optional extension spec §7 describes.
	VerifyDigest bool
}

// DefaultOptions returns the recognized defaults from spec §6.
func DefaultOptions() Options {
	return Options{
		MaxDecompressedSize: defaultMaxDecompressedSize,
		StrictTrailer:       true,
		StrictPlatform:      true,
	}
}

func (o Options) maxOutput() int64 {
	if o.MaxDecompressedSize == 0 {
		return defaultMaxDecompressedSize
	}
	return int64(o.MaxDecompressedSize)
}

// Container is the fully parsed, immutable result of decoding a
// .vromfs.bin file's outer framing and directory (spec §3, §4.1).
type Container struct {
	Header    Header
	ExtHeader *ExtendedHeader
	Framing   Framing
	Directory Directory
	Digest    *[16]byte
	Tail      []byte
}

// ParseContainer decodes the outer framing of a vromfs container and
// its directory, per spec §4.1's algorithm. It is the library's single
// entry point for turning container bytes into a Container.
func ParseContainer(data []byte, opts Options) (*Container, error) {
	c := newCursor(data)

	hdr, err := readHeader(c)
	if err != nil {
		return nil, err
	}
	if opts.StrictPlatform && !hdr.Platform.known() {
		return nil, fmt.Errorf("%w: %v", ErrPlatformInvalid, hdr.Platform)
	}

	var extHdr *ExtendedHeader
	if hdr.Magic == MagicExtended {
		e, err := readExtendedHeader(c)
		if err != nil {
			return nil, err
		}
		extHdr = &e
	}

	framing, err := framingFor(hdr)
	if err != nil {
		return nil, err
	}

	bodyLen := hdr.PackedSize()
	if bodyLen == 0 {
		bodyLen = hdr.OriginalSize
	}
	rawBody, err := c.Bytes(int(bodyLen))
	if err != nil {
		return nil, err
	}

	dc := decompressor{maxOutput: opts.maxOutput()}
	var body []byte
	switch framing {
	case FramingZstd, FramingZstdNoCheck:
		deobfuscated := deobfuscate(rawBody)
		body, err = dc.zstdPlain(deobfuscated)
	case FramingZlib:
		body, err = dc.zlib(rawBody)
	default:
		body = rawBody
	}
	if err != nil {
		return nil, err
	}

	var digest *[16]byte
	if framing.HasDigest() {
		d, err := c.Bytes(16)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDigestMissing, err)
		}
		var arr [16]byte
		copy(arr[:], d)
		digest = &arr

		if opts.VerifyDigest {
			sum := md5.Sum(body)
			if sum != arr {
				return nil, fmt.Errorf("%w: expected %x got %x", ErrDigestMismatch, arr, sum)
			}
		}
	}

	tail := c.Rest()
	if opts.StrictTrailer && len(tail) != 0 && len(tail) != 256 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailerLengthInvalid, len(tail))
	}

	dir, err := parseDirectory(body)
	if err != nil {
		return nil, err
	}

	return &Container{
		Header:    hdr,
		ExtHeader: extHdr,
		Framing:   framing,
		Directory: dir,
		Digest:    digest,
		Tail:      tail,
	}, nil
}
