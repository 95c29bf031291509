package vromfs

import (
	"bytes"
	"fmt"
)

// Entry is a single named file inside a container's directory (spec §3).
// Entries are immutable once parsed and share the container's backing
// bytes rather than copying them.
type Entry struct {
	Name     string
	Payload  []byte
	Reserved [8]byte
}

// Directory is the parsed, decompressed body of a container: the
// filename table plus the file-data table, resolved into an ordered
// list of Entry records (spec §3, "Directory").
type Directory struct {
	Reserved [8]byte
	Entries  []Entry
}

// parseDirectory parses the uncompressed directory body per spec §3/§4.4.
func parseDirectory(body []byte) (Directory, error) {
	if len(body) < 24 {
		return Directory{}, fmt.Errorf("%w: body too short for directory header (%d bytes)", ErrDirectoryMalformed, len(body))
	}

	filenameTableOffset, err := u32At(body, 0)
	if err != nil {
		return Directory{}, err
	}
	filesCount, err := u32At(body, 4)
	if err != nil {
		return Directory{}, err
	}
	var reserved [8]byte
	copy(reserved[:], body[8:16])
	fileDataTableOffset, err := u32At(body, 16)
	if err != nil {
		return Directory{}, err
	}

	names, namesStart, namesEnd, err := parseFilenameTable(body, int(filenameTableOffset), int(filesCount))
	if err != nil {
		return Directory{}, err
	}
	rows, err := parseFileDataTable(body, int(fileDataTableOffset), int(filesCount))
	if err != nil {
		return Directory{}, err
	}

	// files_count is trusted by both table walks above, so len(names) ==
	// len(rows) == filesCount always holds and can't itself catch a bad
	// count. Independently check that the two tables' byte ranges don't
	// overlap: an inflated files_count runs the filename walk past its
	// real end and/or the file-data walk past its real row count, and the
	// two regions start colliding (spec §4.4 CountMismatch).
	rowsStart := int(fileDataTableOffset)
	rowsEnd := rowsStart + int(filesCount)*16
	if rangesOverlap(namesStart, namesEnd, rowsStart, rowsEnd) {
		return Directory{}, fmt.Errorf("%w: filename table [%d:%d) overlaps file-data table [%d:%d) for files_count %d", ErrCountMismatch, namesStart, namesEnd, rowsStart, rowsEnd, filesCount)
	}

	entries := make([]Entry, filesCount)
	for i := range entries {
		row := rows[i]
		end := row.offset + row.size
		if end < row.offset || int(end) > len(body) {
			return Directory{}, fmt.Errorf("%w: entry %q data [%d:%d] exceeds body length %d", ErrOffsetOutOfRange, names[i], row.offset, end, len(body))
		}
		entries[i] = Entry{
			Name:     names[i],
			Payload:  body[row.offset:end:end],
			Reserved: row.reserved,
		}
	}

	return Directory{Reserved: reserved, Entries: entries}, nil
}

// sharedNamesMagicName is the special byte sequence (§3) that the filename
// table maps to the literal string "nm".
var sharedNamesMagicName = []byte{0xFF, '?', 'n', 'm'}

// parseFilenameTable reads count null-terminated names starting at the
// table's first_filename_offset field, returning the names plus the byte
// range [start, end) they occupy so callers can cross-check it against
// the file-data table.
func parseFilenameTable(body []byte, tableOffset, count int) (names []string, start, end int, err error) {
	firstOffset, err := u32At(body, tableOffset)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: filename table at %d: %v", ErrDirectoryMalformed, tableOffset, err)
	}

	c := newCursor(body)
	c.pos = int(firstOffset)
	names = make([]string, count)
	for i := range names {
		raw, err := c.CString()
		if err != nil {
			return nil, 0, 0, err
		}
		if bytes.Equal(raw, sharedNamesMagicName) {
			names[i] = "nm"
		} else {
			names[i] = string(raw)
		}
	}
	return names, int(firstOffset), c.pos, nil
}

// rangesOverlap reports whether [aStart, aEnd) and [bStart, bEnd) share
// any byte.
func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

type fileDataRow struct {
	offset, size uint32
	reserved     [8]byte
}

func parseFileDataTable(body []byte, tableOffset, count int) ([]fileDataRow, error) {
	const rowSize = 16
	rows := make([]fileDataRow, count)
	for i := range rows {
		off := tableOffset + i*rowSize
		if off+rowSize > len(body) {
			return nil, fmt.Errorf("%w: file-data row %d at %d exceeds body length %d", ErrOffsetOutOfRange, i, off, len(body))
		}
		dataOffset, err := u32At(body, off)
		if err != nil {
			return nil, err
		}
		dataSize, err := u32At(body, off+4)
		if err != nil {
			return nil, err
		}
		var reserved [8]byte
		copy(reserved[:], body[off+8:off+16])
		rows[i] = fileDataRow{offset: dataOffset, size: dataSize, reserved: reserved}
	}
	return rows, nil
}

