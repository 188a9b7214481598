package writer

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/cilpatch/cil/changes"
	"github.com/joshuapare/cilpatch/internal/buf"
	"github.com/joshuapare/cilpatch/internal/format"
)

// Source is the read-only original image the pipeline reads from: heap
// bytes, row counts, and decoded rows of the tables being rewritten.
// cil.Image satisfies it.
type Source interface {
	changes.Original
	Row(table format.TableID, rid uint32) (format.Row, error)
}

// Sink receives the assembled output image in one call. The FileWriter
// and MemWriter in internal/writer satisfy it.
type Sink interface {
	WriteImage(buf []byte) error
}

// CodeRegionName names the planned region holding new method bodies.
const CodeRegionName = "code"

// streamOrder is the physical stream order of the metadata root: the
// table stream first, then the heaps.
var streamOrder = [format.NumHeaps]format.Heap{
	format.HeapStrings, format.HeapUS, format.HeapGUID, format.HeapBlob,
}

// Pipeline drives one complete write: reconstruct the four heaps, fix the
// index widths, size and lay out the output regions, resolve method-body
// placeholders, and serialize the modified tables. Any error aborts the
// whole run; no partial output escapes.
type Pipeline struct {
	src      Source
	snap     *changes.Snapshot
	parallel bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithParallelHeaps toggles concurrent reconstruction of the four heaps.
// They share no state, so this is purely a throughput knob.
func WithParallelHeaps(parallel bool) Option {
	return func(p *Pipeline) { p.parallel = parallel }
}

// NewPipeline returns a pipeline writing the sealed snapshot's changes
// against src.
func NewPipeline(src Source, snap *changes.Snapshot, opts ...Option) *Pipeline {
	p := &Pipeline{src: src, snap: snap, parallel: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the product of one pipeline run.
type Result struct {
	// Heaps holds the reconstructed bytes per heap; an unchanged heap
	// aliases the original bytes.
	Heaps map[format.Heap][]byte
	// Remaps holds, per heap, the relocated old offset to new offset map.
	Remaps map[format.Heap]map[uint32]uint32
	// Tables holds the serialized final rows of every modified table.
	Tables map[format.TableID][]byte
	// BodyAddrs maps each method-body placeholder to its resolved address
	// inside the code region.
	BodyAddrs map[uint32]uint32
	// Sizes is the final index-width decision the tables were written with.
	Sizes *format.IndexSizes
	// Regions is the planned output layout, in placement order.
	Regions []PlannedRegion
	// Image is the assembled output: all regions tiled into one buffer.
	Image []byte
}

// Run executes the pipeline and returns the assembled result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		Heaps:     make(map[format.Heap][]byte, format.NumHeaps),
		Remaps:    make(map[format.Heap]map[uint32]uint32, format.NumHeaps),
		Tables:    make(map[format.TableID][]byte),
		BodyAddrs: make(map[uint32]uint32),
	}
	if err := p.reconstructHeaps(ctx, res); err != nil {
		return nil, err
	}

	rows := make(map[format.TableID]uint32, format.NumTableIDs)
	for _, table := range format.TableIDs() {
		rows[table] = p.src.RowCount(table)
		if tc, ok := p.snap.Table(table); ok {
			rows[table] = tc.FinalRowCount()
		}
	}
	sizes := format.NewIndexSizes(rows,
		heapLen(res.Heaps[format.HeapStrings]),
		heapLen(res.Heaps[format.HeapGUID]),
		heapLen(res.Heaps[format.HeapBlob]))
	res.Sizes = sizes
	sizer := NewTableStreamSizer(p.snap, sizes)

	var tableBytes uint64
	modified := p.snap.ModifiedTables()
	for _, table := range modified {
		n, err := sizer.StreamBytes(table)
		if err != nil {
			return nil, err
		}
		tableBytes += n
	}

	planner := NewLayoutPlanner(0)
	tablesRegion, err := planner.Place(format.TablesStreamName, format.Align4U64(tableBytes), format.HeapAlignment)
	if err != nil {
		return nil, err
	}
	heapRegions := make(map[format.Heap]FileRegion, format.NumHeaps)
	for _, h := range streamOrder {
		r, err := planner.Place(h.StreamName(), uint64(len(res.Heaps[h])), format.HeapAlignment)
		if err != nil {
			return nil, err
		}
		heapRegions[h] = r
	}
	codeRegion, err := planner.Place(CodeRegionName, p.snap.MethodBodySpan(), format.HeapAlignment)
	if err != nil {
		return nil, err
	}
	if err := planner.Validate(); err != nil {
		return nil, err
	}
	res.Regions = planner.Regions()

	if err := p.resolveBodies(codeRegion, res); err != nil {
		return nil, err
	}

	rw := NewRowWriter(sizes, res.Remaps, res.BodyAddrs)
	for _, table := range modified {
		rows, err := p.serializeTable(rw, table, sizer.FinalRowCount(table))
		if err != nil {
			return nil, err
		}
		res.Tables[table] = rows
	}

	return p.assemble(res, tablesRegion, heapRegions, codeRegion, planner.End())
}

// WriteTo runs the pipeline and hands the assembled image to sink.
func (p *Pipeline) WriteTo(ctx context.Context, sink Sink) (*Result, error) {
	res, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := sink.WriteImage(res.Image); err != nil {
		return nil, err
	}
	return res, nil
}

func heapLen(heap []byte) uint32 {
	return uint32(len(heap))
}

func (p *Pipeline) reconstructHeaps(ctx context.Context, res *Result) error {
	// The steps write into per-heap array slots, not the shared maps, so
	// they are safe to run concurrently.
	var heaps [format.NumHeaps][]byte
	var remaps [format.NumHeaps]map[uint32]uint32
	steps := []func() error{
		func() (err error) {
			heaps[format.HeapStrings], remaps[format.HeapStrings], err =
				ReconstructStrings(p.snap.Strings(), p.src.Heap(format.HeapStrings))
			return err
		},
		func() (err error) {
			heaps[format.HeapBlob], remaps[format.HeapBlob], err =
				ReconstructBlobs(p.snap.Blobs(), p.src.Heap(format.HeapBlob))
			return err
		},
		func() (err error) {
			heaps[format.HeapGUID], remaps[format.HeapGUID], err =
				ReconstructGUIDs(p.snap.GUIDs(), p.src.Heap(format.HeapGUID))
			return err
		},
		func() (err error) {
			heaps[format.HeapUS], remaps[format.HeapUS], err =
				ReconstructUserStrings(p.snap.UserStrings(), p.src.Heap(format.HeapUS))
			return err
		},
	}
	if p.parallel {
		g, _ := errgroup.WithContext(ctx)
		for _, step := range steps {
			g.Go(step)
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := step(); err != nil {
				return err
			}
		}
	}
	for i := 0; i < format.NumHeaps; i++ {
		res.Heaps[format.Heap(i)] = heaps[i]
		res.Remaps[format.Heap(i)] = remaps[i]
	}
	return nil
}

// resolveBodies assigns each stored method body a final address inside the
// code region, in placeholder order, each body aligned to 4 bytes.
func (p *Pipeline) resolveBodies(code FileRegion, res *Result) error {
	bodies := p.snap.MethodBodies()
	if len(bodies) == 0 {
		return nil
	}
	if code.End() > math.MaxUint32 {
		return fmt.Errorf("%w: code region ends at %d", format.ErrOverflow, code.End())
	}
	placeholders := make([]uint32, 0, len(bodies))
	for addr := range bodies {
		placeholders = append(placeholders, addr)
	}
	sort.Slice(placeholders, func(i, j int) bool { return placeholders[i] < placeholders[j] })

	cursor := code.Offset
	for _, ph := range placeholders {
		res.BodyAddrs[ph] = uint32(cursor)
		cursor += format.Align4U64(uint64(len(bodies[ph])))
	}
	if cursor > code.End() {
		return fmt.Errorf("%w: method bodies need %d bytes, region holds %d", ErrRegionOverlap, cursor-code.Offset, code.Size)
	}
	return nil
}

// serializeTable writes every row of table from RID 1 through the final
// row count. Deleted and reserved-but-unfilled rows serialize as all-zero
// rows; their RID space stays allocated.
func (p *Pipeline) serializeTable(rw *RowWriter, table format.TableID, finalRows uint32) ([]byte, error) {
	tc, ok := p.snap.Table(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no changes to serialize", format.ErrBadTable, table)
	}
	cols, err := format.Schema(table)
	if err != nil {
		return nil, err
	}
	width, err := format.RowSize(table, rw.sizes)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, uint64(width)*uint64(finalRows))
	zero := make(format.Row, len(cols))
	orig := p.src.RowCount(table)

	for rid := uint32(1); rid <= finalRows; rid++ {
		row, live := tc.FinalRow(rid)
		if !live {
			switch {
			case tc.IsReplaced() || tc.IsDeleted(rid) || rid > orig:
				row = zero
			default:
				row, err = p.src.Row(table, rid)
				if err != nil {
					return nil, err
				}
			}
		}
		out, err = rw.AppendRow(out, table, row)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// assemble tiles every region into one output buffer. Alignment gaps
// between regions carry the heap pad byte so they cannot be misread as
// real entries. A component whose bytes do not fit its planned region
// means sizing and serialization disagree, which is fatal.
func (p *Pipeline) assemble(res *Result, tables FileRegion, heaps map[format.Heap]FileRegion, code FileRegion, total uint64) (*Result, error) {
	img := make([]byte, total)
	for i := range img {
		img[i] = format.HeapPadByte
	}

	off := tables.Offset
	for _, table := range p.snap.ModifiedTables() {
		data := res.Tables[table]
		dst, ok := buf.Slice(img, off, uint64(len(data)))
		if !ok || off+uint64(len(data)) > tables.End() {
			return nil, fmt.Errorf("%w: %s rows at offset %d overrun the %s region", ErrRegionOverlap, table, off, format.TablesStreamName)
		}
		copy(dst, data)
		off += uint64(len(data))
	}
	zeroTail(img, off, tables.End())

	for _, h := range streamOrder {
		r := heaps[h]
		dst, ok := buf.Slice(img, r.Offset, r.Size)
		if !ok || uint64(len(res.Heaps[h])) > r.Size {
			return nil, fmt.Errorf("%w: %s bytes overrun their region", ErrRegionOverlap, h)
		}
		copy(dst, res.Heaps[h])
	}

	bodies := p.snap.MethodBodies()
	zeroTail(img, code.Offset, code.End())
	for ph, addr := range res.BodyAddrs {
		if !buf.Has(img, uint64(addr), uint64(len(bodies[ph]))) {
			return nil, fmt.Errorf("%w: method body at %#x overruns the %s region", ErrRegionOverlap, addr, CodeRegionName)
		}
		copy(img[addr:], bodies[ph])
	}

	res.Image = img
	return res, nil
}

func zeroTail(b []byte, start, end uint64) {
	for i := start; i < end; i++ {
		b[i] = 0
	}
}
