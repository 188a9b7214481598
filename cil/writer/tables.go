package writer

import (
	"fmt"

	"github.com/joshuapare/cilpatch/cil/changes"
	"github.com/joshuapare/cilpatch/internal/buf"
	"github.com/joshuapare/cilpatch/internal/format"
)

// TableStreamSizer computes the growth of the table stream under the final
// index widths. Row widths depend on every table's final row count and on
// the final heap sizes, so the sizer is only built after the heaps are
// reconstructed and the IndexSizes fixed.
type TableStreamSizer struct {
	snap  *changes.Snapshot
	sizes *format.IndexSizes
}

// NewTableStreamSizer returns a sizer over the sealed snapshot with the
// given final index widths.
func NewTableStreamSizer(snap *changes.Snapshot, sizes *format.IndexSizes) *TableStreamSizer {
	return &TableStreamSizer{snap: snap, sizes: sizes}
}

// AdditionalRows returns how many rows table gains: the insert count for a
// sparse changeset, the growth beyond the original count for a replaced
// one. A shrinking replacement contributes zero, never a negative value.
func (s *TableStreamSizer) AdditionalRows(table format.TableID) uint32 {
	tc, ok := s.snap.Table(table)
	if !ok {
		return 0
	}
	if tc.IsReplaced() {
		if n := tc.FinalRowCount(); n > tc.OriginalRows() {
			return n - tc.OriginalRows()
		}
		return 0
	}
	return tc.InsertCount()
}

// AdditionalBytes returns the byte growth of table: additional rows times
// the row width under the final index sizes.
func (s *TableStreamSizer) AdditionalBytes(table format.TableID) (uint64, error) {
	rows := s.AdditionalRows(table)
	if rows == 0 {
		return 0, nil
	}
	return rowBytes(table, rows, s.sizes)
}

// TotalAdditionalBytes sums AdditionalBytes over every modified table.
func (s *TableStreamSizer) TotalAdditionalBytes() (uint64, error) {
	var total uint64
	for _, table := range s.snap.ModifiedTables() {
		n, err := s.AdditionalBytes(table)
		if err != nil {
			return 0, err
		}
		sum, ok := buf.AddU64(total, n)
		if !ok {
			return 0, fmt.Errorf("%w: table stream growth", format.ErrOverflow)
		}
		total = sum
	}
	return total, nil
}

// FinalRowCount returns the row count table carries after the changes.
func (s *TableStreamSizer) FinalRowCount(table format.TableID) uint32 {
	if tc, ok := s.snap.Table(table); ok {
		return tc.FinalRowCount()
	}
	return s.snap.Original().RowCount(table)
}

// StreamBytes returns the serialized size of table under the final index
// widths: final row count times row width.
func (s *TableStreamSizer) StreamBytes(table format.TableID) (uint64, error) {
	return rowBytes(table, s.FinalRowCount(table), s.sizes)
}

func rowBytes(table format.TableID, rows uint32, sizes *format.IndexSizes) (uint64, error) {
	if rows == 0 {
		return 0, nil
	}
	w, err := format.RowSize(table, sizes)
	if err != nil {
		return 0, err
	}
	n, ok := buf.MulU64(uint64(rows), uint64(w))
	if !ok {
		return 0, fmt.Errorf("%w: %s at %d rows", format.ErrOverflow, table, rows)
	}
	return n, nil
}
