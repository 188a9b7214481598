package writer

import (
	"fmt"

	"github.com/joshuapare/cilpatch/cil/changes"
	"github.com/joshuapare/cilpatch/internal/format"
)

// RowWriter serializes table rows under fixed final index widths,
// substituting remapped heap offsets and resolving method-body
// placeholders to their final code addresses. Index widths must not change
// once serialization starts, so a RowWriter is only built after heap
// reconstruction and table sizing are done.
type RowWriter struct {
	sizes  *format.IndexSizes
	remaps map[format.Heap]map[uint32]uint32
	bodies map[uint32]uint32
}

// NewRowWriter returns a writer over the final index widths. remaps
// carries the per-heap offset remaps from reconstruction; bodies maps
// method-body placeholder addresses to resolved code addresses. Either may
// be nil when empty.
func NewRowWriter(sizes *format.IndexSizes, remaps map[format.Heap]map[uint32]uint32, bodies map[uint32]uint32) *RowWriter {
	return &RowWriter{sizes: sizes, remaps: remaps, bodies: bodies}
}

func (w *RowWriter) remapped(h format.Heap, v uint32) uint32 {
	if m, ok := w.remaps[h]; ok {
		if n, ok := m[v]; ok {
			return n
		}
	}
	return v
}

// AppendRow serializes row for table onto dst and returns the extended
// buffer. The row must carry exactly one value per schema column.
func (w *RowWriter) AppendRow(dst []byte, table format.TableID, row format.Row) ([]byte, error) {
	cols, err := format.Schema(table)
	if err != nil {
		return nil, err
	}
	if len(row) != len(cols) {
		return nil, fmt.Errorf("%w: %s row has %d columns, schema has %d", changes.ErrBadRow, table, len(row), len(cols))
	}
	size, err := format.RowSize(table, w.sizes)
	if err != nil {
		return nil, err
	}
	rowBuf := make([]byte, size)
	off := 0
	for i, col := range cols {
		v := row[i]
		switch col.Kind {
		case format.ColStringIndex:
			v = w.remapped(format.HeapStrings, v)
		case format.ColBlobIndex:
			v = w.remapped(format.HeapBlob, v)
		case format.ColGUIDIndex:
			v = w.remapped(format.HeapGUID, v)
		case format.ColU32:
			if format.IsPlaceholder(v) {
				resolved, ok := w.bodies[v]
				if !ok {
					return nil, fmt.Errorf("%w: %s.%s holds %#x", ErrUnknownPlaceholder, table, col.Name, v)
				}
				v = resolved
			}
		}
		switch width := col.Width(w.sizes); width {
		case 2:
			if v > 0xFFFF {
				return nil, fmt.Errorf("%w: %s.%s value %d exceeds its 2-byte column", format.ErrOverflow, table, col.Name, v)
			}
			format.PutU16(rowBuf, off, uint16(v))
			off += 2
		case 4:
			format.PutU32(rowBuf, off, v)
			off += 4
		default:
			return nil, fmt.Errorf("%w: %s.%s has width %d", format.ErrBadTable, table, col.Name, width)
		}
	}
	return append(dst, rowBuf...), nil
}
