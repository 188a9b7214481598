package writer

import (
	"fmt"

	"github.com/joshuapare/cilpatch/internal/buf"
)

// LayoutPlanner assigns file regions to the output components. Regions are
// placed sequentially from a base offset; explicit placement is available
// for callers that carry fixed offsets from an existing file shell.
type LayoutPlanner struct {
	cursor  uint64
	regions []PlannedRegion
}

// NewLayoutPlanner returns a planner whose first region starts at base.
func NewLayoutPlanner(base uint64) *LayoutPlanner {
	return &LayoutPlanner{cursor: base}
}

// Place allocates size bytes for name at the cursor, first rounding the
// cursor up to align (when align > 1), and advances past the region.
func (p *LayoutPlanner) Place(name string, size, align uint64) (FileRegion, error) {
	off := p.cursor
	if align > 1 {
		if rem := off % align; rem != 0 {
			aligned, ok := buf.AddU64(off, align-rem)
			if !ok {
				return FileRegion{}, fmt.Errorf("writer: layout overflow aligning %s", name)
			}
			off = aligned
		}
	}
	if _, ok := buf.AddU64(off, size); !ok {
		return FileRegion{}, fmt.Errorf("writer: layout overflow placing %s (%d bytes at %d)", name, size, off)
	}
	r := FileRegion{Offset: off, Size: size}
	p.regions = append(p.regions, PlannedRegion{Name: name, Region: r})
	p.cursor = r.End()
	return r, nil
}

// PlaceAt allocates size bytes for name at an explicit offset. The cursor
// moves to the region end if it lies beyond the current cursor.
func (p *LayoutPlanner) PlaceAt(name string, offset, size uint64) (FileRegion, error) {
	if _, ok := buf.AddU64(offset, size); !ok {
		return FileRegion{}, fmt.Errorf("writer: layout overflow placing %s (%d bytes at %d)", name, size, offset)
	}
	r := FileRegion{Offset: offset, Size: size}
	p.regions = append(p.regions, PlannedRegion{Name: name, Region: r})
	if r.End() > p.cursor {
		p.cursor = r.End()
	}
	return r, nil
}

// Region returns the region planned under name.
func (p *LayoutPlanner) Region(name string) (FileRegion, bool) {
	for _, pr := range p.regions {
		if pr.Name == name {
			return pr.Region, true
		}
	}
	return FileRegion{}, false
}

// Regions returns the planned regions in placement order.
func (p *LayoutPlanner) Regions() []PlannedRegion { return p.regions }

// End returns the first offset past every planned region.
func (p *LayoutPlanner) End() uint64 { return p.cursor }

// Validate checks all planned regions pairwise for overlap. An overlap
// here means the sizing and placement phases disagree, which is fatal for
// the whole write.
func (p *LayoutPlanner) Validate() error {
	return ValidateRegions(p.regions)
}
