package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadCompressed indicates an invalid compressed-integer prefix byte.
	ErrBadCompressed = errors.New("format: invalid compressed integer")
	// ErrOverflow indicates a value that exceeds its format field width.
	ErrOverflow = errors.New("format: value exceeds field width")
	// ErrBadTable indicates an unknown table identifier, or a table that is
	// not an eligible target for a coded index kind.
	ErrBadTable = errors.New("format: invalid table")
	// ErrBadTag indicates a coded-index tag value with no eligible target table.
	ErrBadTag = errors.New("format: invalid coded index tag")
	// ErrMalformedHeap indicates heap bytes that violate the entry format.
	ErrMalformedHeap = errors.New("format: malformed heap")
)
