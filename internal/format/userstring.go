package format

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// #US heap entries hold UTF-16LE text followed by one terminal marker
// byte: 0x01 when any character is outside the 7-bit ASCII fast path,
// 0x00 otherwise. The compressed length prefix counts the UTF-16 payload
// plus the marker.

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UserStringPayloadSize returns the byte size of the UTF-16 payload of s,
// excluding prefix and marker. Characters outside the BMP take a surrogate
// pair (4 bytes).
func UserStringPayloadSize(s string) uint32 {
	var units uint32
	for _, r := range s {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return units * 2
}

// UserStringSize returns the full encoded size of the #US entry for s:
// compressed prefix + UTF-16 payload + marker byte.
func UserStringSize(s string) uint32 {
	payload := UserStringPayloadSize(s) + 1
	return uint32(CompressedUintSize(payload)) + payload
}

// AppendUserString appends the complete #US entry encoding of s to dst:
// length prefix, UTF-16LE payload, and the marker byte.
func AppendUserString(dst []byte, s string) ([]byte, error) {
	payload, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return dst, fmt.Errorf("format: encoding user string: %w", err)
	}
	dst, err = AppendCompressedUint(dst, uint32(len(payload))+1)
	if err != nil {
		return dst, err
	}
	dst = append(dst, payload...)
	return append(dst, userStringMarker(s)), nil
}

// DecodeUserString decodes the #US entry at off, returning the string and
// the entry's total encoded size.
func DecodeUserString(heap []byte, off uint32) (string, uint32, error) {
	size, n, err := ReadCompressedUint(heap, int(off))
	if err != nil {
		return "", 0, fmt.Errorf("#US entry at offset %d: %w", off, err)
	}
	if size == 0 {
		return "", uint32(n), nil
	}
	end := uint64(off) + uint64(n) + uint64(size)
	if end > uint64(len(heap)) || size%2 == 0 {
		// A valid entry is an even UTF-16 payload plus one marker byte.
		return "", 0, fmt.Errorf("%w: #US entry at offset %d has size %d", ErrMalformedHeap, off, size)
	}
	payload := heap[uint64(off)+uint64(n) : end-1]
	decoded, err := utf16le.NewDecoder().Bytes(payload)
	if err != nil {
		return "", 0, fmt.Errorf("format: decoding user string at offset %d: %w", off, err)
	}
	return string(decoded), uint32(n) + size, nil
}

// userStringMarker is 0x01 when the string contains any character at or
// above 0x80, matching the runtime's special-handling flag.
func userStringMarker(s string) byte {
	for _, r := range s {
		if r >= 0x80 {
			return 1
		}
	}
	return 0
}
