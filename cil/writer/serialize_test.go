package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cilpatch/cil/changes"
	"github.com/joshuapare/cilpatch/internal/format"
)

func TestRowWriter_SubstitutesRemappedHeapOffsets(t *testing.T) {
	sizes := format.NewIndexSizes(nil, 8, 16, 4)
	remaps := map[format.Heap]map[uint32]uint32{
		format.HeapStrings: {5: 20},
	}
	rw := NewRowWriter(sizes, remaps, nil)

	buf, err := rw.AppendRow(nil, format.TableModuleRef, format.Row{5})
	require.NoError(t, err)
	assert.Equal(t, []byte{20, 0}, buf)

	buf, err = rw.AppendRow(nil, format.TableModuleRef, format.Row{7})
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0}, buf, "unrelocated offsets pass through")
}

func TestRowWriter_ResolvesMethodBodyPlaceholders(t *testing.T) {
	sizes := format.NewIndexSizes(nil, 8, 16, 4)
	bodies := map[uint32]uint32{format.PlaceholderBase: 0x2000}
	rw := NewRowWriter(sizes, nil, bodies)

	row := format.Row{format.PlaceholderBase, 0, 0, 1, 1, 1}
	buf, err := rw.AppendRow(nil, format.TableMethodDef, row)
	require.NoError(t, err)
	require.Len(t, buf, 14)
	assert.Equal(t, []byte{0x00, 0x20, 0x00, 0x00}, buf[:4])
}

func TestRowWriter_UnresolvedPlaceholderFails(t *testing.T) {
	sizes := format.NewIndexSizes(nil, 8, 16, 4)
	rw := NewRowWriter(sizes, nil, nil)

	row := format.Row{format.PlaceholderBase + 3, 0, 0, 1, 1, 1}
	_, err := rw.AppendRow(nil, format.TableMethodDef, row)
	require.ErrorIs(t, err, ErrUnknownPlaceholder)
}

func TestRowWriter_NarrowColumnOverflowFails(t *testing.T) {
	sizes := format.NewIndexSizes(nil, 8, 16, 4)
	rw := NewRowWriter(sizes, nil, nil)

	_, err := rw.AppendRow(nil, format.TableModuleRef, format.Row{0x1_0000})
	require.ErrorIs(t, err, format.ErrOverflow)
}

func TestRowWriter_ColumnCountMismatchFails(t *testing.T) {
	sizes := format.NewIndexSizes(nil, 8, 16, 4)
	rw := NewRowWriter(sizes, nil, nil)

	_, err := rw.AppendRow(nil, format.TableModuleRef, format.Row{1, 2})
	require.ErrorIs(t, err, changes.ErrBadRow)
}

func TestRowWriter_WideStringIndex(t *testing.T) {
	sizes := format.NewIndexSizes(nil, 0x1_0000, 16, 4)
	rw := NewRowWriter(sizes, nil, nil)

	buf, err := rw.AppendRow(nil, format.TableModuleRef, format.Row{0x1_2345})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x45, 0x23, 0x01, 0x00}, buf)
}
