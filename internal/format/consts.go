package format

import "fmt"

// Heap identifies one of the four metadata heaps. The zero value is the
// #Strings heap.
type Heap uint8

const (
	// HeapStrings is the null-terminated UTF-8 string heap ("#Strings").
	HeapStrings Heap = iota
	// HeapBlob is the length-prefixed binary blob heap ("#Blob").
	HeapBlob
	// HeapGUID is the fixed-stride 16-byte identifier heap ("#GUID").
	HeapGUID
	// HeapUS is the length-prefixed UTF-16 user-string literal heap ("#US").
	HeapUS

	// NumHeaps sizes dense per-heap arrays.
	NumHeaps = int(HeapUS) + 1
)

var heapStreamNames = [NumHeaps]string{"#Strings", "#Blob", "#GUID", "#US"}

// StreamName returns the physical stream name of the heap as it appears in
// the metadata root stream directory.
func (h Heap) StreamName() string {
	if int(h) < len(heapStreamNames) {
		return heapStreamNames[h]
	}
	return fmt.Sprintf("#heap(%d)", uint8(h))
}

func (h Heap) String() string { return h.StreamName() }

// TablesStreamName is the physical name of the metadata table stream.
const TablesStreamName = "#~"

const (
	// HeapAlignment is the byte alignment reconstructed heaps are padded to.
	HeapAlignment = 4

	// HeapPadByte fills heap alignment tails. It is non-zero so a pad run
	// can never be read back as an empty length-prefixed entry.
	HeapPadByte = 0xFF

	// GUIDSize is the fixed stride of #GUID heap entries. The #GUID heap
	// carries no length prefixes; entries are addressed by 1-based index.
	GUIDSize = 16

	// LargeHeapThreshold is the heap byte size above which table columns
	// indexing that heap widen from 2 to 4 bytes.
	LargeHeapThreshold = 0xFFFF

	// MaxRID is the largest row index a token or coded index can carry
	// (24 bits). RID 0 is the null sentinel and never addresses a row.
	MaxRID = 0x00FF_FFFF

	// MaxCompressedUint is the largest value the 4-byte compressed integer
	// form can carry (29 value bits).
	MaxCompressedUint = 0x1FFF_FFFF

	// PlaceholderBase seeds method-body placeholder addresses. It sits far
	// above any RVA a real image produces, so an unresolved placeholder
	// stays recognizable until final layout assigns real addresses.
	PlaceholderBase = 0xF000_0000
)

// IsPlaceholder reports whether addr lies in the method-body placeholder
// range rather than being a real RVA.
func IsPlaceholder(addr uint32) bool {
	return addr >= PlaceholderBase
}
