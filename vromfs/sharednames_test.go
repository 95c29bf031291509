package vromfs

import (
	"errors"
	"testing"
)

func TestDecodeSharedNames(t *testing.T) {
	frame := buildZstdRawFrame([]byte("a\x00b/c\x00"))
	payload := append(make([]byte, sharedNamesHeaderSize), frame...)

	d := newDict([]byte("unused by a raw block"))
	out, err := DecodeSharedNames(Entry{Name: "nm", Payload: payload}, d, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "a\x00b/c\x00" {
		t.Fatalf("got %q", out)
	}
}

func TestDecodeSharedNamesTooShort(t *testing.T) {
	_, err := DecodeSharedNames(Entry{Name: "nm", Payload: make([]byte, 10)}, Dict{}, DefaultOptions())
	if !errors.Is(err, ErrDirectoryMalformed) {
		t.Fatalf("err = %v, want ErrDirectoryMalformed", err)
	}
}
