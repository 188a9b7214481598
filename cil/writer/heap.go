package writer

import (
	"fmt"
	"math"

	"github.com/joshuapare/cilpatch/cil/changes"
	"github.com/joshuapare/cilpatch/internal/format"
)

// relocation is an entry whose rewrite could not happen in place. It is
// re-emitted past the append region and its old offset remapped.
type relocation struct {
	oldOff uint32
	enc    []byte
}

// emission is one appended slot in reconstruction order. zeroOnly slots
// hold no live entry; a trailing run of them is trimmed so that appending
// an item and then removing it cancels the growth.
type emission struct {
	data     []byte
	zeroOnly bool
}

// reconstructByteHeap runs the shared reconstruction walk for the
// length-delimited byte heaps (#Strings, #Blob, #US): copy the base bytes
// verbatim, zero removed spans in place, rewrite modified entries in place
// when the new encoding fits the old span without changing the length
// prefix width, relocate them past the appends otherwise, then emit the
// appended items at their pre-assigned offsets and pad to alignment.
//
// Untouched entries never move. Every relocation is reported in the remap
// so the table serialization pass can rewrite stored references.
func reconstructByteHeap[T any](ch *changes.HeapChanges[T], original []byte, encode func([]byte, T) ([]byte, error)) ([]byte, map[uint32]uint32, error) {
	remap := map[uint32]uint32{}
	if ch == nil || !ch.HasChanges() {
		return original, remap, nil
	}
	kind := ch.Kind()
	base := original
	if repl, ok := ch.Replacement(); ok {
		base = repl
	}
	limit := ch.OriginalLimit()
	if uint64(len(base)) != uint64(limit) {
		return nil, nil, fmt.Errorf("%w: %s is %d bytes, changeset recorded %d", ErrHeapMismatch, kind, len(base), limit)
	}

	out := make([]byte, len(base), len(base)+64)
	copy(out, base)

	for _, off := range ch.RemovedOffsets() {
		if off >= limit {
			continue // appended entry, handled in the append phase
		}
		start, end, err := format.EntrySpan(kind, out, off)
		if err != nil {
			return nil, nil, err
		}
		zeroRange(out, start, end)
	}

	var relocated []relocation
	for _, off := range ch.ModifiedOffsets() {
		if off >= limit {
			continue
		}
		item, _ := ch.ModifiedItem(off)
		start, end, err := format.EntrySpan(kind, out, off)
		if err != nil {
			return nil, nil, err
		}
		enc, err := encode(nil, item)
		if err != nil {
			return nil, nil, err
		}
		inPlace := uint64(len(enc)) <= uint64(end-start)
		if inPlace && kind != format.HeapStrings {
			oldWidth, err := format.PrefixWidth(kind, out, off)
			if err != nil {
				return nil, nil, err
			}
			_, newWidth, err := format.ReadCompressedUint(enc, 0)
			if err != nil {
				return nil, nil, err
			}
			inPlace = oldWidth == newWidth
		}
		if inPlace {
			copy(out[start:], enc)
			zeroRange(out, start+uint32(len(enc)), end)
			continue
		}
		zeroRange(out, start, end)
		relocated = append(relocated, relocation{oldOff: off, enc: enc})
	}

	emissions := make([]emission, 0, ch.AppendedLen())
	for i := 0; i < ch.AppendedLen(); i++ {
		off, item := ch.Appended(i)
		slot, err := ch.EncodedSize(item)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case ch.IsRemoved(off):
			emissions = append(emissions, emission{data: make([]byte, slot), zeroOnly: true})
		default:
			repl, modified := ch.ModifiedItem(off)
			if !modified {
				enc, err := encode(nil, item)
				if err != nil {
					return nil, nil, err
				}
				emissions = append(emissions, emission{data: enc})
				continue
			}
			enc, err := encode(nil, repl)
			if err != nil {
				return nil, nil, err
			}
			if i == ch.AppendedLen()-1 {
				// Nothing follows this slot, so it may shrink or grow
				// freely without disturbing any assigned offset.
				emissions = append(emissions, emission{data: enc})
				continue
			}
			fits := uint64(len(enc)) <= uint64(slot)
			if fits && kind != format.HeapStrings {
				encOld, err := encode(nil, item)
				if err != nil {
					return nil, nil, err
				}
				_, oldWidth, err := format.ReadCompressedUint(encOld, 0)
				if err != nil {
					return nil, nil, err
				}
				_, newWidth, err := format.ReadCompressedUint(enc, 0)
				if err != nil {
					return nil, nil, err
				}
				fits = oldWidth == newWidth
			}
			if fits {
				data := make([]byte, slot)
				copy(data, enc)
				emissions = append(emissions, emission{data: data})
				continue
			}
			emissions = append(emissions, emission{data: make([]byte, slot), zeroOnly: true})
			relocated = append(relocated, relocation{oldOff: off, enc: enc})
		}
	}
	for len(emissions) > 0 && emissions[len(emissions)-1].zeroOnly {
		emissions = emissions[:len(emissions)-1]
	}
	for _, e := range emissions {
		out = append(out, e.data...)
	}

	for _, rel := range relocated {
		if uint64(len(out)) > math.MaxUint32 {
			return nil, nil, fmt.Errorf("%w: %s grows past 32-bit offsets", format.ErrOverflow, kind)
		}
		remap[rel.oldOff] = uint32(len(out))
		out = append(out, rel.enc...)
	}

	for target := format.Align4(len(out)); len(out) < target; {
		out = append(out, format.HeapPadByte)
	}
	return out, remap, nil
}

func zeroRange(buf []byte, start, end uint32) {
	for i := start; i < end; i++ {
		buf[i] = 0
	}
}

// ReconstructStrings reconstructs a #Strings heap: entries are raw bytes
// with a null terminator and no length prefix, so an in-place rewrite only
// needs the new encoding to fit the old span.
func ReconstructStrings(ch *changes.HeapChanges[string], original []byte) ([]byte, map[uint32]uint32, error) {
	return reconstructByteHeap(ch, original, func(dst []byte, s string) ([]byte, error) {
		dst = append(dst, s...)
		return append(dst, 0), nil
	})
}

// ReconstructBlobs reconstructs a #Blob heap: compressed length prefix
// followed by the payload.
func ReconstructBlobs(ch *changes.HeapChanges[[]byte], original []byte) ([]byte, map[uint32]uint32, error) {
	return reconstructByteHeap(ch, original, func(dst []byte, b []byte) ([]byte, error) {
		dst, err := format.AppendCompressedUint(dst, uint32(len(b)))
		if err != nil {
			return nil, err
		}
		return append(dst, b...), nil
	})
}

// ReconstructUserStrings reconstructs a #US heap: compressed length prefix
// over the UTF-16 payload plus the trailing marker byte.
func ReconstructUserStrings(ch *changes.HeapChanges[string], original []byte) ([]byte, map[uint32]uint32, error) {
	return reconstructByteHeap(ch, original, format.AppendUserString)
}
