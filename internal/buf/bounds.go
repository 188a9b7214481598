// Package buf contains overflow-safe arithmetic for size and layout
// calculations. Output sizes are driven by caller-supplied row counts and
// payload lengths, so every add and multiply on them must fail loudly
// instead of wrapping.
package buf

import "math"

// AddU64 adds a and b, returning ok = false when the sum would wrap.
func AddU64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// MulU64 multiplies a and b, returning ok = false when the product would
// wrap. This is the form row-count * row-width sizing must use.
func MulU64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

// Slice returns the sub-slice b[off:off+n] when it lies within b.
func Slice(b []byte, off, n uint64) ([]byte, bool) {
	end, ok := AddU64(off, n)
	if !ok || end > uint64(len(b)) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n uint64) bool {
	_, ok := Slice(b, off, n)
	return ok
}
