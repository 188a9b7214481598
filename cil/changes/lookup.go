package changes

import (
	"bytes"

	"github.com/joshuapare/cilpatch/internal/format"
)

// StringLookup resolves string content to a #Strings heap offset across
// both the original heap and strings appended through the tracker. The
// index is rebuilt lazily: each Find compares its stamped generation with
// the tracker's and rebuilds only when an edit happened in between, which
// keeps the rebuild cost explicit rather than hiding it in background
// recomputation.
type StringLookup struct {
	tracker *Tracker
	index   map[string]uint32
	stamp   uint64
	built   bool
}

// NewStringLookup returns a lookup bound to the tracker.
func NewStringLookup(t *Tracker) *StringLookup {
	return &StringLookup{tracker: t}
}

// Find returns the heap offset holding s, preferring original entries
// over appended ones. Removed entries and entries whose content was
// modified away do not match.
func (l *StringLookup) Find(s string) (uint32, bool) {
	if !l.built || l.stamp != l.tracker.Generation() {
		l.rebuild()
	}
	off, ok := l.index[s]
	return off, ok
}

func (l *StringLookup) rebuild() {
	l.index = make(map[string]uint32)
	ch := l.tracker.strings

	// Appended and modified entries first so original occurrences win the
	// final overwrite below.
	for i := 0; i < ch.AppendedLen(); i++ {
		off, item := ch.Appended(i)
		if ch.IsRemoved(off) {
			continue
		}
		if m, ok := ch.ModifiedItem(off); ok {
			item = m
		}
		l.index[item] = off
	}
	for _, off := range ch.ModifiedOffsets() {
		if off >= ch.OriginalLimit() {
			continue // appended, handled above
		}
		if m, ok := ch.ModifiedItem(off); ok {
			l.index[m] = off
		}
	}

	heap := l.tracker.orig.Heap(format.HeapStrings)
	if _, replaced := ch.Replacement(); replaced {
		heap, _ = ch.Replacement()
	}
	for off := uint32(1); uint64(off) < uint64(len(heap)); {
		end := bytes.IndexByte(heap[off:], 0)
		if end < 0 {
			break
		}
		if !ch.IsRemoved(off) {
			if _, modified := ch.ModifiedItem(off); !modified {
				l.index[string(heap[off:off+uint32(end)])] = off
			}
		}
		off += uint32(end) + 1
	}

	l.stamp = l.tracker.Generation()
	l.built = true
}
