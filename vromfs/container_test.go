package vromfs

import (
	"encoding/binary"
	"errors"
	"testing"
)

func buildScenario1Container() []byte {
	body := buildScenario1Body()

	header := make([]byte, 16)
	copy(header[0:4], MagicPlain[:])
	copy(header[4:8], PlatformPC[:])
	binary.LittleEndian.PutUint32(header[8:], uint32(len(body)))
	binary.LittleEndian.PutUint32(header[12:], 0) // packed_info: type 0, packed_size 0

	return append(header, body...)
}

// Scenario 1: not-packed PC container, 2 entries, no digest.
func TestParseContainerScenario1(t *testing.T) {
	data := buildScenario1Container()
	c, err := ParseContainer(data, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if c.Framing != FramingNotPacked {
		t.Fatalf("framing = %v, want NotPacked", c.Framing)
	}
	if c.Digest != nil {
		t.Fatal("expected no digest")
	}
	if len(c.Tail) != 0 {
		t.Fatalf("tail length = %d, want 0", len(c.Tail))
	}
	if len(c.Directory.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(c.Directory.Entries))
	}
}

// Scenario 2: VRFx with the ZstdNoCheck framing.
func TestParseContainerScenario2VRFxNoCheck(t *testing.T) {
	body := buildScenario1Body()
	frame := buildZstdRawFrame(body)
	rawBody := deobfuscate(frame) // "obfuscate": XOR is its own inverse

	header := make([]byte, 16)
	copy(header[0:4], MagicExtended[:])
	copy(header[4:8], PlatformPC[:])
	binary.LittleEndian.PutUint32(header[8:], uint32(len(body)))
	binary.LittleEndian.PutUint32(header[12:], (0x10<<26)|uint32(len(rawBody)))

	ext := make([]byte, 8)
	binary.LittleEndian.PutUint16(ext[0:], 8)
	binary.LittleEndian.PutUint16(ext[2:], 0)
	binary.LittleEndian.PutUint32(ext[4:], 1)

	var data []byte
	data = append(data, header...)
	data = append(data, ext...)
	data = append(data, rawBody...)
	// no digest: NoCheck variant
	// no tail

	c, err := ParseContainer(data, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if c.Framing != FramingZstdNoCheck {
		t.Fatalf("framing = %v, want ZstdNoCheck", c.Framing)
	}
	if c.ExtHeader == nil || c.ExtHeader.Version != 1 {
		t.Fatalf("ext header = %+v", c.ExtHeader)
	}
	if c.Digest != nil {
		t.Fatal("NoCheck variant must not read a digest")
	}
	if len(c.Directory.Entries) != 2 || c.Directory.Entries[0].Name != "a" {
		t.Fatalf("directory = %+v", c.Directory)
	}
}

// Scenario 4: invalid trailer length must fail with TrailerLengthInvalid.
// P3: |tail| in {0, 256} for any parseable container.
func TestParseContainerInvalidTrailer(t *testing.T) {
	data := append(buildScenario1Container(), make([]byte, 100)...)
	_, err := ParseContainer(data, DefaultOptions())
	if !errors.Is(err, ErrTrailerLengthInvalid) {
		t.Fatalf("err = %v, want ErrTrailerLengthInvalid", err)
	}
}

func TestParseContainerTrailer256Allowed(t *testing.T) {
	data := append(buildScenario1Container(), make([]byte, 256)...)
	c, err := ParseContainer(data, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Tail) != 256 {
		t.Fatalf("tail length = %d, want 256", len(c.Tail))
	}
}

func TestParseContainerUnknownPlatformStrict(t *testing.T) {
	data := buildScenario1Container()
	copy(data[4:8], []byte{'?', '?', '?', '?'})
	_, err := ParseContainer(data, DefaultOptions())
	if !errors.Is(err, ErrPlatformInvalid) {
		t.Fatalf("err = %v, want ErrPlatformInvalid", err)
	}
}
