package changes

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/joshuapare/cilpatch/internal/format"
)

// HeapChanges records sparse edits to one metadata heap: items appended at
// the running end, in-place payload replacements keyed by original offset,
// removed offsets, and an optional wholesale replacement of the heap
// bytes. Offsets of untouched entries never move; that is the property the
// whole reconstruction strategy is built around.
//
// For the byte-addressed heaps (#Strings, #Blob, #US) offsets are byte
// offsets and appended items advance by their encoded size. The #GUID heap
// is addressed by 1-based entry index and advances by one per item.
type HeapChanges[T any] struct {
	kind format.Heap

	// encoded returns the full encoded byte size of an item, prefix and
	// terminator included. advance returns the offset units one appended
	// item consumes: equal to encoded for byte heaps, 1 for #GUID.
	encoded func(T) (uint32, error)
	advance func(T) (uint32, error)

	// originalLimit bounds the original offset space: byte size for the
	// byte heaps, entry count + 1 for #GUID.
	originalLimit uint32
	next          uint32

	appended []T
	offsets  []uint32
	modified map[uint32]T
	removed  map[uint32]struct{}

	replaced    bool
	replacement []byte
}

func newHeapChanges[T any](kind format.Heap, originalLimit uint32, encoded, advance func(T) (uint32, error)) *HeapChanges[T] {
	return &HeapChanges[T]{
		kind:          kind,
		encoded:       encoded,
		advance:       advance,
		originalLimit: originalLimit,
		next:          originalLimit,
		modified:      make(map[uint32]T),
		removed:       make(map[uint32]struct{}),
	}
}

// NewStringChanges returns a changeset for a #Strings heap of the given
// original byte size. Entries encode as the string bytes plus a null
// terminator.
func NewStringChanges(originalSize uint32) *HeapChanges[string] {
	enc := func(s string) (uint32, error) {
		n := uint64(len(s)) + 1
		if n > math.MaxUint32 {
			return 0, fmt.Errorf("%w: string of %d bytes", format.ErrOverflow, len(s))
		}
		return uint32(n), nil
	}
	return newHeapChanges(format.HeapStrings, originalSize, enc, enc)
}

// NewBlobChanges returns a changeset for a #Blob heap of the given
// original byte size. Entries encode as a compressed length prefix plus
// the payload.
func NewBlobChanges(originalSize uint32) *HeapChanges[[]byte] {
	enc := func(b []byte) (uint32, error) {
		if uint64(len(b)) > format.MaxCompressedUint {
			return 0, fmt.Errorf("%w: blob of %d bytes", format.ErrOverflow, len(b))
		}
		n := uint32(len(b))
		return uint32(format.CompressedUintSize(n)) + n, nil
	}
	return newHeapChanges(format.HeapBlob, originalSize, enc, enc)
}

// NewGUIDChanges returns a changeset for a #GUID heap holding
// originalCount entries. The heap is index-addressed; each appended GUID
// takes the next 1-based index.
func NewGUIDChanges(originalCount uint32) *HeapChanges[uuid.UUID] {
	enc := func(uuid.UUID) (uint32, error) { return format.GUIDSize, nil }
	adv := func(uuid.UUID) (uint32, error) { return 1, nil }
	return newHeapChanges(format.HeapGUID, originalCount+1, enc, adv)
}

// NewUserStringChanges returns a changeset for a #US heap of the given
// original byte size. Entries encode as a compressed length prefix, the
// UTF-16 payload, and the trailing marker byte.
func NewUserStringChanges(originalSize uint32) *HeapChanges[string] {
	enc := func(s string) (uint32, error) {
		payload := uint64(format.UserStringPayloadSize(s)) + 1
		if payload > format.MaxCompressedUint {
			return 0, fmt.Errorf("%w: user string of %d UTF-16 bytes", format.ErrOverflow, payload-1)
		}
		return format.UserStringSize(s), nil
	}
	return newHeapChanges(format.HeapUS, originalSize, enc, enc)
}

// Kind returns the heap this changeset edits.
func (h *HeapChanges[T]) Kind() format.Heap { return h.kind }

// Append records item at the next free offset and returns the offset the
// reconstructed heap will hold it at. Offsets are assigned eagerly so
// callers can store them into table rows immediately.
func (h *HeapChanges[T]) Append(item T) (uint32, error) {
	step, err := h.advance(item)
	if err != nil {
		return 0, err
	}
	off := h.next
	if uint64(off)+uint64(step) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s grows past 32-bit offsets", format.ErrOverflow, h.kind)
	}
	h.appended = append(h.appended, item)
	h.offsets = append(h.offsets, off)
	h.next = off + step
	return off, nil
}

// Modify replaces the payload of the entry at off, which may address an
// original entry or a previously appended one. Whether the rewrite happens
// in place or relocates the entry is decided at reconstruction time.
func (h *HeapChanges[T]) Modify(off uint32, item T) error {
	if err := h.checkOffset(off); err != nil {
		return err
	}
	if _, gone := h.removed[off]; gone {
		return fmt.Errorf("%w: %s offset %d", ErrRemovedEntry, h.kind, off)
	}
	if _, err := h.encoded(item); err != nil {
		return err
	}
	h.modified[off] = item
	return nil
}

// Remove marks the entry at off as removed. Its bytes are zeroed during
// reconstruction, not compacted, so no later offset shifts. Removal
// supersedes a prior Modify of the same offset.
func (h *HeapChanges[T]) Remove(off uint32) error {
	if err := h.checkOffset(off); err != nil {
		return err
	}
	if _, gone := h.removed[off]; gone {
		return fmt.Errorf("%w: %s offset %d", ErrRemovedEntry, h.kind, off)
	}
	delete(h.modified, off)
	h.removed[off] = struct{}{}
	return nil
}

// Replace swaps the entire heap content for raw, clearing every sparse
// edit recorded so far. Subsequent edits apply against the replacement.
func (h *HeapChanges[T]) Replace(raw []byte) {
	h.replaced = true
	h.replacement = raw
	h.appended = nil
	h.offsets = nil
	h.modified = make(map[uint32]T)
	h.removed = make(map[uint32]struct{})
	if h.kind == format.HeapGUID {
		h.originalLimit = uint32(len(raw)/format.GUIDSize) + 1
	} else {
		h.originalLimit = uint32(len(raw))
	}
	h.next = h.originalLimit
}

func (h *HeapChanges[T]) checkOffset(off uint32) error {
	if off == 0 {
		return fmt.Errorf("%w: %s", ErrNullOffset, h.kind)
	}
	if off < h.originalLimit {
		return nil
	}
	for _, o := range h.offsets {
		if o == off {
			return nil
		}
	}
	return fmt.Errorf("%w: %s offset %d", ErrUnknownOffset, h.kind, off)
}

// HasChanges reports whether any edit is recorded.
func (h *HeapChanges[T]) HasChanges() bool {
	return h.replaced || len(h.appended) > 0 || len(h.modified) > 0 || len(h.removed) > 0
}

// Replacement returns the wholesale replacement bytes, if set.
func (h *HeapChanges[T]) Replacement() ([]byte, bool) {
	return h.replacement, h.replaced
}

// OriginalLimit returns the bound of the original offset space: the heap
// byte size for byte heaps, entry count + 1 for #GUID.
func (h *HeapChanges[T]) OriginalLimit() uint32 { return h.originalLimit }

// NextOffset returns the offset the next appended item would take.
func (h *HeapChanges[T]) NextOffset() uint32 { return h.next }

// AppendedLen returns the number of appended items.
func (h *HeapChanges[T]) AppendedLen() int { return len(h.appended) }

// Appended returns the i-th appended item and its assigned offset.
func (h *HeapChanges[T]) Appended(i int) (uint32, T) {
	return h.offsets[i], h.appended[i]
}

// ModifiedItem returns the replacement payload recorded for off.
func (h *HeapChanges[T]) ModifiedItem(off uint32) (T, bool) {
	item, ok := h.modified[off]
	return item, ok
}

// IsRemoved reports whether the entry at off was removed.
func (h *HeapChanges[T]) IsRemoved(off uint32) bool {
	_, ok := h.removed[off]
	return ok
}

// RemovedOffsets returns the removed offsets in ascending order.
func (h *HeapChanges[T]) RemovedOffsets() []uint32 {
	return sortedKeys(h.removed)
}

// ModifiedOffsets returns the modified offsets in ascending order.
func (h *HeapChanges[T]) ModifiedOffsets() []uint32 {
	offs := make([]uint32, 0, len(h.modified))
	for off := range h.modified {
		offs = append(offs, off)
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })
	return offs
}

// EncodedSize returns the full encoded byte size of item in this heap.
func (h *HeapChanges[T]) EncodedSize(item T) (uint32, error) {
	return h.encoded(item)
}

// EditCount returns the number of recorded edits, for change accounting.
func (h *HeapChanges[T]) EditCount() int {
	n := len(h.appended) + len(h.modified) + len(h.removed)
	if h.replaced {
		n++
	}
	return n
}

func sortedKeys(m map[uint32]struct{}) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
