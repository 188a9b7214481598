package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutPlanner_SequentialPlacement(t *testing.T) {
	p := NewLayoutPlanner(0)

	tables, err := p.Place("#~", 18, 4)
	require.NoError(t, err)
	assert.Equal(t, FileRegion{Offset: 0, Size: 18}, tables)

	strs, err := p.Place("#Strings", 16, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), strs.Offset, "cursor rounds up to the alignment")

	us, err := p.Place("#US", 1, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(36), us.Offset)

	assert.Equal(t, uint64(37), p.End())
	require.NoError(t, p.Validate())

	got, ok := p.Region("#Strings")
	require.True(t, ok)
	assert.Equal(t, strs, got)
	_, ok = p.Region("#Blob")
	assert.False(t, ok)
}

func TestLayoutPlanner_PlaceAt(t *testing.T) {
	p := NewLayoutPlanner(0)
	_, err := p.Place("#~", 8, 4)
	require.NoError(t, err)

	fixed, err := p.PlaceAt("code", 64, 12)
	require.NoError(t, err)
	assert.Equal(t, uint64(64), fixed.Offset)
	assert.Equal(t, uint64(76), p.End(), "cursor jumps past an explicit region")

	// An explicit region below the cursor leaves the cursor alone.
	_, err = p.PlaceAt("shim", 16, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(76), p.End())
	require.NoError(t, p.Validate())
}

func TestLayoutPlanner_EmptyRegionInsideAnotherValidates(t *testing.T) {
	p := NewLayoutPlanner(0)
	_, err := p.Place("#~", 16, 4)
	require.NoError(t, err)

	// An empty stream pinned at an interior offset holds no bytes and
	// must not trip the overlap check.
	_, err = p.PlaceAt("#US", 8, 0)
	require.NoError(t, err)
	require.NoError(t, p.Validate())
}

func TestLayoutPlanner_ValidateCatchesOverlap(t *testing.T) {
	p := NewLayoutPlanner(0)
	_, err := p.Place("#~", 16, 4)
	require.NoError(t, err)
	_, err = p.PlaceAt("code", 8, 16)
	require.NoError(t, err)
	require.ErrorIs(t, p.Validate(), ErrRegionOverlap)
}

func TestLayoutPlanner_NonZeroBase(t *testing.T) {
	p := NewLayoutPlanner(0x200)
	r, err := p.Place("#~", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x200), r.Offset)
}
