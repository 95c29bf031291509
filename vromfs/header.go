package vromfs

import "fmt"

// Magic identifies the header flavor: plain ("VRFs") or extended ("VRFx").
type Magic [4]byte

var (
	MagicPlain    = Magic{'V', 'R', 'F', 's'}
	MagicExtended = Magic{'V', 'R', 'F', 'x'}
)

// PlatformTag identifies the target platform the container was built for.
type PlatformTag [4]byte

var (
	PlatformPC  = PlatformTag{0x00, 0x00, 'P', 'C'}
	PlatformIOS = PlatformTag{0x00, 'i', 'O', 'S'}
	PlatformAnd = PlatformTag{0x00, 'a', 'n', 'd'}
)

func (p PlatformTag) known() bool {
	return p == PlatformPC || p == PlatformIOS || p == PlatformAnd
}

// Header is the fixed 16-byte leading structure of every vromfs container.
type Header struct {
	Magic        Magic
	Platform     PlatformTag
	OriginalSize uint32
	PackedInfo   uint32
}

// Type returns the top 6 bits of PackedInfo.
func (h Header) Type() uint8 {
	return uint8(h.PackedInfo >> 26)
}

// PackedSize returns the bottom 26 bits of PackedInfo.
func (h Header) PackedSize() uint32 {
	return h.PackedInfo & 0x03FFFFFF
}

// ExtendedHeader is present iff Header.Magic == MagicExtended. The core
// ascribes no semantics to it beyond preserving it for observers (§3).
type ExtendedHeader struct {
	ExtSize uint16
	Flags   uint16
	Version uint32
}

// Framing is the outer wrapping of the container body, derived from the
// header's type/packed_size fields per spec §3.
type Framing int

const (
	FramingNotPacked Framing = iota
	FramingZstd
	FramingZstdNoCheck
	FramingZlib
)

func (f Framing) String() string {
	switch f {
	case FramingNotPacked:
		return "not-packed"
	case FramingZstd:
		return "zstd"
	case FramingZstdNoCheck:
		return "zstd-no-check"
	case FramingZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// HasDigest reports whether this framing's body is followed by a 16-byte
// trailer digest. Only the two "checked" packed framings carry one: the
// zstd "no check" variant and the not-packed case (nothing was packed, so
// there is nothing to check) never do (spec §8 scenario 1).
func (f Framing) HasDigest() bool {
	return f == FramingZstd || f == FramingZlib
}

func readHeader(c *ByteCursor) (Header, error) {
	magicBytes, err := c.Bytes(4)
	if err != nil {
		return Header{}, err
	}
	var h Header
	copy(h.Magic[:], magicBytes)
	if h.Magic != MagicPlain && h.Magic != MagicExtended {
		return Header{}, fmt.Errorf("%w: %q", ErrMagicInvalid, magicBytes)
	}

	platBytes, err := c.Bytes(4)
	if err != nil {
		return Header{}, err
	}
	copy(h.Platform[:], platBytes)

	h.OriginalSize, err = c.U32()
	if err != nil {
		return Header{}, err
	}
	h.PackedInfo, err = c.U32()
	if err != nil {
		return Header{}, err
	}
	return h, nil
}

func readExtendedHeader(c *ByteCursor) (ExtendedHeader, error) {
	var e ExtendedHeader
	var err error
	if e.ExtSize, err = c.U16(); err != nil {
		return ExtendedHeader{}, err
	}
	if e.Flags, err = c.U16(); err != nil {
		return ExtendedHeader{}, err
	}
	if e.Version, err = c.U32(); err != nil {
		return ExtendedHeader{}, err
	}
	return e, nil
}

// framingFor derives the Framing from the header's type/packed_size pair,
// per spec §3.
func framingFor(h Header) (Framing, error) {
	if h.PackedSize() == 0 {
		return FramingNotPacked, nil
	}
	switch h.Type() {
	case 0x30:
		return FramingZstd, nil
	case 0x10:
		return FramingZstdNoCheck, nil
	case 0x20:
		return FramingZlib, nil
	default:
		return 0, fmt.Errorf("%w: type %#x", ErrUnsupportedFraming, h.Type())
	}
}
