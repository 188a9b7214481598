package changes

import (
	"fmt"
	"sort"

	"github.com/joshuapare/cilpatch/internal/format"
)

// OpKind discriminates the sparse table operations.
type OpKind uint8

const (
	OpInsert OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", uint8(k))
	}
}

// Operation is one timestamped sparse table edit. Row is nil for deletes.
type Operation struct {
	Kind      OpKind
	RID       uint32
	Row       format.Row
	Timestamp uint64
}

// MaxUpdatesPerRow bounds repeated updates of a single row. It is a sanity
// ceiling against runaway builder loops, not a format limit.
const MaxUpdatesPerRow = 4096

// TableChanges records edits to one table: either a wholesale row
// replacement or a chronological sparse operation log. The two variants
// are exclusive; a replaced table rejects sparse operations.
//
// Deleted rows are decommissioned, never compacted: the table keeps
// reserving their RID space, so existing references stay stable and the
// row count only grows.
type TableChanges struct {
	table        format.TableID
	originalRows uint32

	replaced bool
	rows     []format.Row

	ops      []Operation
	inserted map[uint32]struct{}
	deleted  map[uint32]struct{}
	updates  map[uint32]int
	maxRID   uint32
	lastTS   uint64
}

// NewTableChanges returns an empty changeset for table, which originally
// holds originalRows rows.
func NewTableChanges(table format.TableID, originalRows uint32) *TableChanges {
	return &TableChanges{
		table:        table,
		originalRows: originalRows,
		inserted:     make(map[uint32]struct{}),
		deleted:      make(map[uint32]struct{}),
		updates:      make(map[uint32]int),
		maxRID:       originalRows,
	}
}

// Table returns the table this changeset edits.
func (tc *TableChanges) Table() format.TableID { return tc.table }

// OriginalRows returns the original row count.
func (tc *TableChanges) OriginalRows() uint32 { return tc.originalRows }

// Insert records a new row at rid. The RID must not address an existing or
// decommissioned row.
func (tc *TableChanges) Insert(rid uint32, row format.Row, ts uint64) error {
	if err := tc.checkOp(rid, ts); err != nil {
		return err
	}
	if tc.HasRow(rid) {
		return fmt.Errorf("%w: %s[%d]", ErrDuplicateInsert, tc.table, rid)
	}
	if _, gone := tc.deleted[rid]; gone {
		return fmt.Errorf("%w: %s[%d] cannot be reinserted", ErrRowDeleted, tc.table, rid)
	}
	tc.ops = append(tc.ops, Operation{Kind: OpInsert, RID: rid, Row: row, Timestamp: ts})
	tc.inserted[rid] = struct{}{}
	if rid > tc.maxRID {
		tc.maxRID = rid
	}
	tc.lastTS = ts
	return nil
}

// Update records new content for the live row at rid.
func (tc *TableChanges) Update(rid uint32, row format.Row, ts uint64) error {
	if err := tc.checkOp(rid, ts); err != nil {
		return err
	}
	if _, gone := tc.deleted[rid]; gone {
		return fmt.Errorf("%w: %s[%d] cannot be updated", ErrRowDeleted, tc.table, rid)
	}
	if !tc.HasRow(rid) {
		return fmt.Errorf("%w: %s[%d]", ErrRowNotFound, tc.table, rid)
	}
	if tc.updates[rid] >= MaxUpdatesPerRow {
		return fmt.Errorf("%w: %s[%d] after %d updates", ErrTooManyUpdates, tc.table, rid, MaxUpdatesPerRow)
	}
	tc.ops = append(tc.ops, Operation{Kind: OpUpdate, RID: rid, Row: row, Timestamp: ts})
	tc.updates[rid]++
	tc.lastTS = ts
	return nil
}

// Delete decommissions the live row at rid. The slot's RID space stays
// reserved; reconstruction zeroes the row rather than shifting later rows.
func (tc *TableChanges) Delete(rid uint32, ts uint64) error {
	if err := tc.checkOp(rid, ts); err != nil {
		return err
	}
	if _, gone := tc.deleted[rid]; gone {
		return fmt.Errorf("%w: %s[%d]", ErrRowDeleted, tc.table, rid)
	}
	if !tc.HasRow(rid) {
		return fmt.Errorf("%w: %s[%d]", ErrRowNotFound, tc.table, rid)
	}
	tc.ops = append(tc.ops, Operation{Kind: OpDelete, RID: rid, Timestamp: ts})
	tc.deleted[rid] = struct{}{}
	tc.lastTS = ts
	return nil
}

func (tc *TableChanges) checkOp(rid uint32, ts uint64) error {
	if tc.replaced {
		return fmt.Errorf("%w: %s", ErrReplacedTable, tc.table)
	}
	if rid == 0 {
		return fmt.Errorf("%w: %s", ErrNullRID, tc.table)
	}
	if rid > format.MaxRID {
		return fmt.Errorf("%w: %s row %d exceeds 24-bit row index", format.ErrOverflow, tc.table, rid)
	}
	if ts < tc.lastTS {
		return fmt.Errorf("%w: %s at %d after %d", ErrStaleTimestamp, tc.table, ts, tc.lastTS)
	}
	return nil
}

// Replace swaps the table's full content for rows, discarding any sparse
// operations recorded so far.
func (tc *TableChanges) Replace(rows []format.Row) {
	tc.replaced = true
	tc.rows = rows
	tc.ops = nil
	tc.inserted = make(map[uint32]struct{})
	tc.deleted = make(map[uint32]struct{})
	tc.updates = make(map[uint32]int)
	tc.maxRID = uint32(len(rows))
}

// IsReplaced reports whether the table content was replaced wholesale.
func (tc *TableChanges) IsReplaced() bool { return tc.replaced }

// ReplacementRows returns the replacement content of a replaced table.
func (tc *TableChanges) ReplacementRows() []format.Row { return tc.rows }

// Operations returns the chronological operation log. The returned slice
// is shared; callers must not mutate it.
func (tc *TableChanges) Operations() []Operation { return tc.ops }

// HasRow reports whether rid addresses a live row: present in the
// original table or inserted here, and not deleted.
func (tc *TableChanges) HasRow(rid uint32) bool {
	if rid == 0 {
		return false
	}
	if tc.replaced {
		return uint64(rid) <= uint64(len(tc.rows))
	}
	if _, gone := tc.deleted[rid]; gone {
		return false
	}
	if _, ok := tc.inserted[rid]; ok {
		return true
	}
	return rid <= tc.originalRows
}

// IsDeleted reports whether rid was decommissioned.
func (tc *TableChanges) IsDeleted(rid uint32) bool {
	_, ok := tc.deleted[rid]
	return ok
}

// InsertCount returns the number of inserted rows, deleted or not; a
// deleted insert still reserves its slot.
func (tc *TableChanges) InsertCount() uint32 {
	if tc.replaced {
		return 0
	}
	return uint32(len(tc.inserted))
}

// NextRID returns the lowest RID above every row this changeset knows of.
func (tc *TableChanges) NextRID() uint32 { return tc.maxRID + 1 }

// FinalRowCount returns the row count the reconstructed table will carry.
func (tc *TableChanges) FinalRowCount() uint32 {
	if tc.replaced {
		return uint32(len(tc.rows))
	}
	return tc.maxRID
}

// FinalRow returns the content this changeset assigns to rid: the newest
// inserted or updated row. ok is false when the row is untouched, deleted,
// or unknown.
func (tc *TableChanges) FinalRow(rid uint32) (format.Row, bool) {
	if tc.replaced {
		if rid == 0 || uint64(rid) > uint64(len(tc.rows)) {
			return nil, false
		}
		return tc.rows[rid-1], true
	}
	if tc.IsDeleted(rid) {
		return nil, false
	}
	for i := len(tc.ops) - 1; i >= 0; i-- {
		op := tc.ops[i]
		if op.RID != rid {
			continue
		}
		switch op.Kind {
		case OpInsert, OpUpdate:
			return op.Row, true
		case OpDelete:
			return nil, false
		}
	}
	return nil, false
}

// Consolidate collapses the operation log to one surviving operation per
// RID (two for an inserted row that was later deleted, so the reserved
// slot stays visible). A RID introduced by an insert keeps its insert
// kind with the newest row content, so row accounting is unchanged.
func (tc *TableChanges) Consolidate() {
	if tc.replaced || len(tc.ops) == 0 {
		return
	}
	type rowState struct {
		inserted bool
		deleted  bool
		lastRow  format.Row
		firstTS  uint64
		lastTS   uint64
	}
	states := make(map[uint32]*rowState)
	order := make([]uint32, 0, len(tc.ops))
	for _, op := range tc.ops {
		st := states[op.RID]
		if st == nil {
			st = &rowState{firstTS: op.Timestamp}
			states[op.RID] = st
			order = append(order, op.RID)
		}
		switch op.Kind {
		case OpInsert:
			st.inserted = true
			st.lastRow = op.Row
		case OpUpdate:
			st.lastRow = op.Row
		case OpDelete:
			st.deleted = true
		}
		st.lastTS = op.Timestamp
	}

	out := make([]Operation, 0, len(order))
	for _, rid := range order {
		st := states[rid]
		switch {
		case st.inserted && st.deleted:
			out = append(out,
				Operation{Kind: OpInsert, RID: rid, Row: st.lastRow, Timestamp: st.firstTS},
				Operation{Kind: OpDelete, RID: rid, Timestamp: st.lastTS})
		case st.inserted:
			out = append(out, Operation{Kind: OpInsert, RID: rid, Row: st.lastRow, Timestamp: st.lastTS})
		case st.deleted:
			out = append(out, Operation{Kind: OpDelete, RID: rid, Timestamp: st.lastTS})
		default:
			out = append(out, Operation{Kind: OpUpdate, RID: rid, Row: st.lastRow, Timestamp: st.lastTS})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	tc.ops = out
}
