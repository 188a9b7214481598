package changes

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joshuapare/cilpatch/internal/format"
)

// Original is the read-only view of the image being edited. *cil.Image
// satisfies it.
type Original interface {
	Heap(h format.Heap) []byte
	RowCount(table format.TableID) uint32
}

// Tracker is the aggregate root of one editing session: the four heap
// changesets, one TableChanges per touched table, newly authored method
// bodies keyed by placeholder address, and a generation counter bumped on
// every mutation so derived caches can detect staleness.
//
// A tracker is not safe for concurrent use; the write pipeline's ordering
// requirements make concurrent mutation meaningless anyway.
type Tracker struct {
	orig Original

	strings     *HeapChanges[string]
	blobs       *HeapChanges[[]byte]
	guids       *HeapChanges[uuid.UUID]
	userStrings *HeapChanges[string]

	tables map[format.TableID]*TableChanges

	methodBodies    map[uint32][]byte
	nextPlaceholder uint32

	generation uint64
	lastTS     uint64
	finished   bool
}

// NewTracker creates an empty tracker against the original image view.
func NewTracker(orig Original) *Tracker {
	guidCount := uint32(len(orig.Heap(format.HeapGUID)) / format.GUIDSize)
	return &Tracker{
		orig:            orig,
		strings:         NewStringChanges(uint32(len(orig.Heap(format.HeapStrings)))),
		blobs:           NewBlobChanges(uint32(len(orig.Heap(format.HeapBlob)))),
		guids:           NewGUIDChanges(guidCount),
		userStrings:     NewUserStringChanges(uint32(len(orig.Heap(format.HeapUS)))),
		tables:          make(map[format.TableID]*TableChanges),
		methodBodies:    make(map[uint32][]byte),
		nextPlaceholder: format.PlaceholderBase,
	}
}

// Original returns the view the tracker was created against.
func (t *Tracker) Original() Original { return t.orig }

// Generation returns the mutation counter. It increases on every
// successful edit; caches stamp it to detect staleness.
func (t *Tracker) Generation() uint64 { return t.generation }

func (t *Tracker) bump() { t.generation++ }

// now hands out a strictly monotonic microsecond timestamp, so the
// chronological order of operations is total even when the wall clock
// stalls within one microsecond.
func (t *Tracker) now() uint64 {
	ts := uint64(time.Now().UnixMicro())
	if ts <= t.lastTS {
		ts = t.lastTS + 1
	}
	t.lastTS = ts
	return ts
}

func (t *Tracker) check() error {
	if t.finished {
		return ErrFinished
	}
	return nil
}

// AddString appends s to the #Strings heap and returns its offset.
func (t *Tracker) AddString(s string) (uint32, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	off, err := t.strings.Append(s)
	if err == nil {
		t.bump()
	}
	return off, err
}

// ModifyString replaces the string entry at off.
func (t *Tracker) ModifyString(off uint32, s string) error {
	return t.mutate(func() error { return t.strings.Modify(off, s) })
}

// RemoveString removes the string entry at off.
func (t *Tracker) RemoveString(off uint32) error {
	return t.mutate(func() error { return t.strings.Remove(off) })
}

// ReplaceStringHeap swaps the entire #Strings heap for raw.
func (t *Tracker) ReplaceStringHeap(raw []byte) error {
	return t.mutate(func() error { t.strings.Replace(raw); return nil })
}

// AddBlob appends b to the #Blob heap and returns its offset.
func (t *Tracker) AddBlob(b []byte) (uint32, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	off, err := t.blobs.Append(b)
	if err == nil {
		t.bump()
	}
	return off, err
}

// ModifyBlob replaces the blob entry at off.
func (t *Tracker) ModifyBlob(off uint32, b []byte) error {
	return t.mutate(func() error { return t.blobs.Modify(off, b) })
}

// RemoveBlob removes the blob entry at off.
func (t *Tracker) RemoveBlob(off uint32) error {
	return t.mutate(func() error { return t.blobs.Remove(off) })
}

// ReplaceBlobHeap swaps the entire #Blob heap for raw.
func (t *Tracker) ReplaceBlobHeap(raw []byte) error {
	return t.mutate(func() error { t.blobs.Replace(raw); return nil })
}

// AddGUID appends u to the #GUID heap and returns its 1-based index.
func (t *Tracker) AddGUID(u uuid.UUID) (uint32, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	idx, err := t.guids.Append(u)
	if err == nil {
		t.bump()
	}
	return idx, err
}

// ModifyGUID replaces the GUID at the 1-based index.
func (t *Tracker) ModifyGUID(index uint32, u uuid.UUID) error {
	return t.mutate(func() error { return t.guids.Modify(index, u) })
}

// RemoveGUID removes the GUID at the 1-based index.
func (t *Tracker) RemoveGUID(index uint32) error {
	return t.mutate(func() error { return t.guids.Remove(index) })
}

// AddUserString appends s to the #US heap and returns its offset.
func (t *Tracker) AddUserString(s string) (uint32, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	off, err := t.userStrings.Append(s)
	if err == nil {
		t.bump()
	}
	return off, err
}

// ModifyUserString replaces the user-string entry at off.
func (t *Tracker) ModifyUserString(off uint32, s string) error {
	return t.mutate(func() error { return t.userStrings.Modify(off, s) })
}

// RemoveUserString removes the user-string entry at off.
func (t *Tracker) RemoveUserString(off uint32) error {
	return t.mutate(func() error { return t.userStrings.Remove(off) })
}

func (t *Tracker) mutate(fn func() error) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	t.bump()
	return nil
}

// tableChanges returns the changeset for table, creating it on first use.
func (t *Tracker) tableChanges(table format.TableID) (*TableChanges, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X", format.ErrBadTable, uint8(table))
	}
	tc, ok := t.tables[table]
	if !ok {
		tc = NewTableChanges(table, t.orig.RowCount(table))
		t.tables[table] = tc
	}
	return tc, nil
}

func (t *Tracker) checkRow(table format.TableID, row format.Row) error {
	cols, err := format.Schema(table)
	if err != nil {
		return err
	}
	if len(row) != len(cols) {
		return fmt.Errorf("%w: %s row has %d columns, schema has %d",
			ErrBadRow, table, len(row), len(cols))
	}
	return nil
}

// InsertRow records a new row at rid in table.
func (t *Tracker) InsertRow(table format.TableID, rid uint32, row format.Row) error {
	return t.mutate(func() error {
		if err := t.checkRow(table, row); err != nil {
			return err
		}
		tc, err := t.tableChanges(table)
		if err != nil {
			return err
		}
		return tc.Insert(rid, row, t.now())
	})
}

// AppendRow inserts row at the table's next free RID and returns it.
func (t *Tracker) AppendRow(table format.TableID, row format.Row) (uint32, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	if err := t.checkRow(table, row); err != nil {
		return 0, err
	}
	tc, err := t.tableChanges(table)
	if err != nil {
		return 0, err
	}
	rid := tc.NextRID()
	if err := tc.Insert(rid, row, t.now()); err != nil {
		return 0, err
	}
	t.bump()
	return rid, nil
}

// UpdateRow records new content for the live row at rid.
func (t *Tracker) UpdateRow(table format.TableID, rid uint32, row format.Row) error {
	return t.mutate(func() error {
		if err := t.checkRow(table, row); err != nil {
			return err
		}
		tc, err := t.tableChanges(table)
		if err != nil {
			return err
		}
		return tc.Update(rid, row, t.now())
	})
}

// DeleteRow decommissions the live row at rid.
func (t *Tracker) DeleteRow(table format.TableID, rid uint32) error {
	return t.mutate(func() error {
		tc, err := t.tableChanges(table)
		if err != nil {
			return err
		}
		return tc.Delete(rid, t.now())
	})
}

// ReplaceTable swaps the table's full content for rows.
func (t *Tracker) ReplaceTable(table format.TableID, rows []format.Row) error {
	return t.mutate(func() error {
		for _, row := range rows {
			if err := t.checkRow(table, row); err != nil {
				return err
			}
		}
		tc, err := t.tableChanges(table)
		if err != nil {
			return err
		}
		tc.Replace(rows)
		return nil
	})
}

// StoreMethodBody records a newly authored method body and returns the
// placeholder address table rows should carry until final layout resolves
// real addresses.
func (t *Tracker) StoreMethodBody(body []byte) (uint32, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	if t.nextPlaceholder == math.MaxUint32 {
		return 0, fmt.Errorf("%w: method body placeholders exhausted", format.ErrOverflow)
	}
	addr := t.nextPlaceholder
	t.methodBodies[addr] = body
	t.nextPlaceholder++
	t.bump()
	return addr, nil
}

// MethodBody returns the body stored under the placeholder address.
func (t *Tracker) MethodBody(addr uint32) ([]byte, bool) {
	body, ok := t.methodBodies[addr]
	return body, ok
}

// MethodBodySpan returns the total code-section bytes the new bodies need:
// each body's length rounded up to a 4-byte boundary.
func (t *Tracker) MethodBodySpan() uint64 {
	var total uint64
	for _, body := range t.methodBodies {
		total += format.Align4U64(uint64(len(body)))
	}
	return total
}

// HasChanges reports whether any edit is recorded.
func (t *Tracker) HasChanges() bool {
	if t.strings.HasChanges() || t.blobs.HasChanges() ||
		t.guids.HasChanges() || t.userStrings.HasChanges() {
		return true
	}
	if len(t.methodBodies) > 0 {
		return true
	}
	for _, tc := range t.tables {
		if tc.IsReplaced() || len(tc.Operations()) > 0 {
			return true
		}
	}
	return false
}

// ModifiedTables returns the tables with recorded changes, ascending.
func (t *Tracker) ModifiedTables() []format.TableID {
	ids := make([]format.TableID, 0, len(t.tables))
	for id, tc := range t.tables {
		if tc.IsReplaced() || len(tc.Operations()) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats summarizes recorded changes per category.
type Stats struct {
	StringEdits     int
	BlobEdits       int
	GUIDEdits       int
	UserStringEdits int
	TableOps        int
	ReplacedTables  int
	MethodBodies    int
}

// Stats returns per-category change counts.
func (t *Tracker) Stats() Stats {
	s := Stats{
		StringEdits:     t.strings.EditCount(),
		BlobEdits:       t.blobs.EditCount(),
		GUIDEdits:       t.guids.EditCount(),
		UserStringEdits: t.userStrings.EditCount(),
		MethodBodies:    len(t.methodBodies),
	}
	for _, tc := range t.tables {
		if tc.IsReplaced() {
			s.ReplacedTables++
		}
		s.TableOps += len(tc.Operations())
	}
	return s
}

// Finish seals the tracker and returns the immutable snapshot the write
// pipeline consumes. Every later mutation, and any second Finish, fails
// with ErrFinished.
func (t *Tracker) Finish() (*Snapshot, error) {
	if t.finished {
		return nil, ErrFinished
	}
	t.finished = true
	return &Snapshot{tracker: t}, nil
}
