package format

// Alignment utilities for the metadata physical layout. Heaps and stream
// boundaries are aligned to 4-byte boundaries.

// Align4 returns n aligned up to the next 4-byte boundary.
//
// Example:
//
//	Align4(1) = 4
//	Align4(4) = 4
//	Align4(5) = 8
func Align4(n int) int {
	return (n + 3) &^ 3
}

// Align4U64 returns n aligned up to the next 4-byte boundary.
// uint64 version for file offset arithmetic.
func Align4U64(n uint64) uint64 {
	return (n + 3) &^ 3
}
