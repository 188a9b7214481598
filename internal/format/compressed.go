package format

import "fmt"

// Compressed unsigned integers (ECMA-335 II.23.2). Values below 0x80 take
// one byte; values below 0x4000 take two bytes with top bits 10; everything
// else takes four bytes with top bits 110, leaving 29 value bits. The
// 4-byte ceiling is therefore MaxCompressedUint, not the full uint32 range.

// CompressedUintSize returns the encoded byte width of v: 1, 2, or 4.
// The result is only meaningful for v <= MaxCompressedUint; larger values
// are rejected by AppendCompressedUint.
func CompressedUintSize(v uint32) int {
	switch {
	case v < 0x80:
		return 1
	case v < 0x4000:
		return 2
	default:
		return 4
	}
}

// AppendCompressedUint appends the compressed encoding of v to dst and
// returns the extended slice. Values above MaxCompressedUint do not fit the
// 4-byte form and are reported as an overflow rather than masked.
func AppendCompressedUint(dst []byte, v uint32) ([]byte, error) {
	switch {
	case v < 0x80:
		return append(dst, byte(v)), nil
	case v < 0x4000:
		return append(dst, 0x80|byte(v>>8), byte(v)), nil
	case v <= MaxCompressedUint:
		return append(dst, 0xC0|byte(v>>24), byte(v>>16), byte(v>>8), byte(v)), nil
	default:
		return dst, fmt.Errorf("%w: compressed integer %#x exceeds %#x", ErrOverflow, v, uint32(MaxCompressedUint))
	}
}

// ReadCompressedUint decodes the compressed integer starting at data[off].
// It returns the value and the number of bytes consumed.
func ReadCompressedUint(data []byte, off int) (uint32, int, error) {
	if off < 0 || off >= len(data) {
		return 0, 0, fmt.Errorf("%w: compressed integer at offset %d", ErrTruncated, off)
	}
	b0 := data[off]
	switch {
	case b0&0x80 == 0:
		return uint32(b0), 1, nil
	case b0&0xC0 == 0x80:
		if off+2 > len(data) {
			return 0, 0, fmt.Errorf("%w: 2-byte compressed integer at offset %d", ErrTruncated, off)
		}
		return uint32(b0&0x3F)<<8 | uint32(data[off+1]), 2, nil
	case b0&0xE0 == 0xC0:
		if off+4 > len(data) {
			return 0, 0, fmt.Errorf("%w: 4-byte compressed integer at offset %d", ErrTruncated, off)
		}
		v := uint32(b0&0x1F)<<24 |
			uint32(data[off+1])<<16 |
			uint32(data[off+2])<<8 |
			uint32(data[off+3])
		return v, 4, nil
	default:
		// 0xE0..0xFF: reserved prefix, also the heap pad byte.
		return 0, 0, fmt.Errorf("%w: prefix byte %#02x at offset %d", ErrBadCompressed, b0, off)
	}
}
