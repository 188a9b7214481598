package cil

import (
	"errors"
	"fmt"

	"github.com/joshuapare/cilpatch/internal/format"
)

var (
	// ErrRowNotFound indicates a RID outside the table's populated range.
	ErrRowNotFound = errors.New("cil: row not found")
	// ErrNullRID indicates RID 0, the null sentinel, used where a real row
	// is required.
	ErrNullRID = errors.New("cil: null row id")
)

// View is the read-only surface of parsed metadata that change tracking
// and reconstruction consume: raw heap bytes, table row counts, and
// decoded rows for tables being sparsely edited.
type View interface {
	// Heap returns the raw bytes of the given heap; nil when the image
	// does not carry that stream.
	Heap(h format.Heap) []byte
	// RowCount returns the number of rows the original table holds.
	RowCount(table format.TableID) uint32
	// Row returns the decoded row at rid (1-based), in schema column order.
	Row(table format.TableID, rid uint32) (format.Row, error)
}

// Image is an in-memory View implementation, populated by an external
// parser or directly by tests.
type Image struct {
	heaps [format.NumHeaps][]byte
	rows  map[format.TableID][]format.Row
}

// NewImage returns an empty image.
func NewImage() *Image {
	return &Image{rows: make(map[format.TableID][]format.Row)}
}

// SetHeap installs the raw bytes of one heap. The image aliases data; the
// caller must keep it immutable for the image's lifetime.
func (img *Image) SetHeap(h format.Heap, data []byte) {
	img.heaps[h] = data
}

// SetRows installs the decoded rows of one table, RID order, 1-based.
func (img *Image) SetRows(table format.TableID, rows []format.Row) {
	img.rows[table] = rows
}

// Heap returns the raw bytes of the given heap.
func (img *Image) Heap(h format.Heap) []byte {
	if int(h) >= format.NumHeaps {
		return nil
	}
	return img.heaps[h]
}

// RowCount returns the number of rows the table holds.
func (img *Image) RowCount(table format.TableID) uint32 {
	return uint32(len(img.rows[table]))
}

// Row returns the row at rid in schema column order.
func (img *Image) Row(table format.TableID, rid uint32) (format.Row, error) {
	if rid == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNullRID, table)
	}
	rows := img.rows[table]
	if uint64(rid) > uint64(len(rows)) {
		return nil, fmt.Errorf("%w: %s[%d] (table holds %d rows)", ErrRowNotFound, table, rid, len(rows))
	}
	return rows[rid-1], nil
}

var _ View = (*Image)(nil)
