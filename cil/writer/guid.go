package writer

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/joshuapare/cilpatch/cil/changes"
	"github.com/joshuapare/cilpatch/internal/format"
)

// guidBytes encodes u in the on-disk GUID layout: uuid.UUID carries the
// RFC 4122 big-endian byte order, while the heap stores the first three
// fields little-endian and the remaining eight bytes in order.
func guidBytes(u uuid.UUID) [format.GUIDSize]byte {
	var b [format.GUIDSize]byte
	format.PutU32(b[:], 0, binary.BigEndian.Uint32(u[0:4]))
	format.PutU16(b[:], 4, binary.BigEndian.Uint16(u[4:6]))
	format.PutU16(b[:], 6, binary.BigEndian.Uint16(u[6:8]))
	copy(b[8:], u[8:])
	return b
}

// ReconstructGUIDs reconstructs a #GUID heap. Entries are fixed 16-byte
// slots addressed by 1-based index, so every rewrite is in place and the
// remap is always empty: indexes never move.
func ReconstructGUIDs(ch *changes.HeapChanges[uuid.UUID], original []byte) ([]byte, map[uint32]uint32, error) {
	remap := map[uint32]uint32{}
	if ch == nil || !ch.HasChanges() {
		return original, remap, nil
	}
	base := original
	if repl, ok := ch.Replacement(); ok {
		base = repl
	}
	if len(base)%format.GUIDSize != 0 {
		return nil, nil, fmt.Errorf("%w: #GUID heap of %d bytes", format.ErrMalformedHeap, len(base))
	}
	limit := ch.OriginalLimit()
	if uint64(len(base)/format.GUIDSize)+1 != uint64(limit) {
		return nil, nil, fmt.Errorf("%w: #GUID holds %d entries, changeset recorded %d", ErrHeapMismatch, len(base)/format.GUIDSize, limit-1)
	}

	out := make([]byte, len(base), len(base)+format.GUIDSize*ch.AppendedLen())
	copy(out, base)

	for _, idx := range ch.RemovedOffsets() {
		if idx >= limit {
			continue
		}
		start, end, err := format.EntrySpan(format.HeapGUID, out, idx)
		if err != nil {
			return nil, nil, err
		}
		zeroRange(out, start, end)
	}
	for _, idx := range ch.ModifiedOffsets() {
		if idx >= limit {
			continue
		}
		item, _ := ch.ModifiedItem(idx)
		start, _, err := format.EntrySpan(format.HeapGUID, out, idx)
		if err != nil {
			return nil, nil, err
		}
		enc := guidBytes(item)
		copy(out[start:], enc[:])
	}

	emissions := make([]emission, 0, ch.AppendedLen())
	for i := 0; i < ch.AppendedLen(); i++ {
		idx, item := ch.Appended(i)
		switch {
		case ch.IsRemoved(idx):
			emissions = append(emissions, emission{data: make([]byte, format.GUIDSize), zeroOnly: true})
		default:
			if repl, ok := ch.ModifiedItem(idx); ok {
				item = repl
			}
			enc := guidBytes(item)
			emissions = append(emissions, emission{data: enc[:]})
		}
	}
	for len(emissions) > 0 && emissions[len(emissions)-1].zeroOnly {
		emissions = emissions[:len(emissions)-1]
	}
	for _, e := range emissions {
		out = append(out, e.data...)
	}
	return out, remap, nil
}
