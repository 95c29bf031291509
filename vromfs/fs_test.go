package vromfs

import (
	"encoding/binary"
	"io/fs"
	"testing"
	"testing/fstest"
)

// buildFSContainer builds a minimal not-packed container with one nested,
// raw-framed (pk=1) entry, to exercise Open's directory synthesis.
func buildFSContainer(t *testing.T) []byte {
	t.Helper()

	name := "dir/sub.txt"
	payload := append([]byte{1}, "nested content"...)

	filenameTableOff := 0x18
	fileDataTableOff := 0x18 + 4 + len(name) + 1
	fileDataOff := fileDataTableOff + 16
	bodyLen := fileDataOff + len(payload)

	body := make([]byte, bodyLen)
	put32 := func(off, v int) { binary.LittleEndian.PutUint32(body[off:], uint32(v)) }

	put32(0x00, filenameTableOff)
	put32(0x04, 1)
	put32(0x10, fileDataTableOff)

	put32(filenameTableOff, filenameTableOff+4)
	copy(body[filenameTableOff+4:], name)
	body[filenameTableOff+4+len(name)] = 0

	put32(fileDataTableOff, fileDataOff)
	put32(fileDataTableOff+4, len(payload))
	copy(body[fileDataOff:], payload)

	header := make([]byte, 16)
	copy(header[0:4], MagicPlain[:])
	copy(header[4:8], PlatformPC[:])
	binary.LittleEndian.PutUint32(header[8:], uint32(len(body)))
	binary.LittleEndian.PutUint32(header[12:], 0)

	return append(header, body...)
}

func TestOpenAsFS(t *testing.T) {
	data := buildFSContainer(t)
	fsys, err := Open(data, DefaultOptions(), 16)
	if err != nil {
		t.Fatal(err)
	}

	content, err := fs.ReadFile(fsys, "dir/sub.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "nested content" {
		t.Fatalf("got %q", content)
	}

	entries, err := fs.ReadDir(fsys, "dir")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "sub.txt" {
		t.Fatalf("ReadDir(\"dir\") = %+v", entries)
	}

	if err := fstest.TestFS(fsys, "dir/sub.txt"); err != nil {
		t.Fatal(err)
	}
}

func TestOpenRepeatedReadsAgree(t *testing.T) {
	data := buildFSContainer(t)
	fsys, err := Open(data, DefaultOptions(), 16)
	if err != nil {
		t.Fatal(err)
	}

	first, err := fs.ReadFile(fsys, "dir/sub.txt")
	if err != nil {
		t.Fatal(err)
	}
	second, err := fs.ReadFile(fsys, "dir/sub.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("got different content across reads: %q vs %q", first, second)
	}
}
