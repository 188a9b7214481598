package format

import (
	"bytes"
	"fmt"
)

// Heap entry boundary scanning. The reconstruction pass needs the byte span
// of an entry before it can zero or overwrite it; the span rules differ per
// heap kind:
//
//	#Strings  null-terminated UTF-8, span runs through the terminator
//	#Blob     compressed length prefix + payload
//	#US       compressed length prefix + UTF-16 payload + marker byte
//	#GUID     fixed 16-byte stride, addressed by 1-based index
//
// Offset 0 of the byte-addressed heaps is the reserved null entry and is
// never a valid scan target.

// EntrySpan returns the byte span [start, end) of the entry identified by
// off in heap bytes of kind h. For #Strings, #Blob, and #US, off is the
// entry's byte offset; for #GUID it is the 1-based entry index.
func EntrySpan(h Heap, heap []byte, off uint32) (start, end uint32, err error) {
	switch h {
	case HeapStrings:
		end, err = stringEntryEnd(heap, off)
		return off, end, err
	case HeapBlob, HeapUS:
		end, err = blobEntryEnd(h, heap, off)
		return off, end, err
	case HeapGUID:
		return guidEntrySpan(heap, off)
	default:
		return 0, 0, fmt.Errorf("%w: unknown heap kind %d", ErrMalformedHeap, uint8(h))
	}
}

func stringEntryEnd(heap []byte, off uint32) (uint32, error) {
	if off == 0 || uint64(off) >= uint64(len(heap)) {
		return 0, fmt.Errorf("%w: #Strings offset %d out of range", ErrMalformedHeap, off)
	}
	i := bytes.IndexByte(heap[off:], 0)
	if i < 0 {
		return 0, fmt.Errorf("%w: #Strings entry at offset %d is unterminated", ErrMalformedHeap, off)
	}
	return off + uint32(i) + 1, nil
}

func blobEntryEnd(h Heap, heap []byte, off uint32) (uint32, error) {
	if off == 0 || uint64(off) >= uint64(len(heap)) {
		return 0, fmt.Errorf("%w: %s offset %d out of range", ErrMalformedHeap, h, off)
	}
	size, n, err := ReadCompressedUint(heap, int(off))
	if err != nil {
		return 0, fmt.Errorf("%s entry at offset %d: %w", h, off, err)
	}
	end := uint64(off) + uint64(n) + uint64(size)
	if end > uint64(len(heap)) {
		return 0, fmt.Errorf("%w: %s entry at offset %d extends past heap end (%d > %d)",
			ErrMalformedHeap, h, off, end, len(heap))
	}
	return uint32(end), nil
}

func guidEntrySpan(heap []byte, index uint32) (uint32, uint32, error) {
	if index == 0 {
		return 0, 0, fmt.Errorf("%w: #GUID index 0 is the null sentinel", ErrMalformedHeap)
	}
	start := uint64(index-1) * GUIDSize
	end := start + GUIDSize
	if end > uint64(len(heap)) {
		return 0, 0, fmt.Errorf("%w: #GUID index %d out of range (heap holds %d entries)",
			ErrMalformedHeap, index, len(heap)/GUIDSize)
	}
	return uint32(start), uint32(end), nil
}

// PrefixWidth returns the compressed length-prefix width of the entry at
// off in a #Blob or #US heap. The in-place modification rule needs it: a
// payload may only be rewritten in place when its new prefix occupies the
// same number of bytes, otherwise the following entry's start would shift.
func PrefixWidth(h Heap, heap []byte, off uint32) (int, error) {
	if h != HeapBlob && h != HeapUS {
		return 0, fmt.Errorf("%w: %s entries carry no length prefix", ErrMalformedHeap, h)
	}
	if off == 0 || uint64(off) >= uint64(len(heap)) {
		return 0, fmt.Errorf("%w: %s offset %d out of range", ErrMalformedHeap, h, off)
	}
	_, n, err := ReadCompressedUint(heap, int(off))
	if err != nil {
		return 0, fmt.Errorf("%s entry at offset %d: %w", h, off, err)
	}
	return n, nil
}
