package writer

import "fmt"

// FileRegion is a half-open byte span [Offset, Offset+Size) of the output
// file assigned to one structural component.
type FileRegion struct {
	Offset uint64
	Size   uint64
}

// End returns the exclusive end offset.
func (r FileRegion) End() uint64 { return r.Offset + r.Size }

// Contains reports whether other lies entirely within r.
func (r FileRegion) Contains(other FileRegion) bool {
	return other.Offset >= r.Offset && other.End() <= r.End()
}

// Overlaps reports whether r and other share any byte. Empty regions
// occupy no bytes and overlap nothing, wherever they sit.
func (r FileRegion) Overlaps(other FileRegion) bool {
	if r.Size == 0 || other.Size == 0 {
		return false
	}
	return r.Offset < other.End() && other.Offset < r.End()
}

// IsAdjacentTo reports whether one region starts exactly where the other
// ends.
func (r FileRegion) IsAdjacentTo(other FileRegion) bool {
	return r.End() == other.Offset || other.End() == r.Offset
}

// PlannedRegion names an allocated region.
type PlannedRegion struct {
	Name   string
	Region FileRegion
}

// ValidateRegions checks every pair of regions for overlap. The region
// count is small and bounded, so the quadratic check is fine.
func ValidateRegions(regions []PlannedRegion) error {
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Region.Overlaps(regions[j].Region) {
				return fmt.Errorf("%w: %s [%d,%d) and %s [%d,%d)",
					ErrRegionOverlap,
					regions[i].Name, regions[i].Region.Offset, regions[i].Region.End(),
					regions[j].Name, regions[j].Region.Offset, regions[j].Region.End())
			}
		}
	}
	return nil
}
