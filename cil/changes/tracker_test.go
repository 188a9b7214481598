package changes

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cilpatch/cil"
	"github.com/joshuapare/cilpatch/internal/format"
)

func testImage() *cil.Image {
	img := cil.NewImage()
	img.SetHeap(format.HeapStrings, []byte{0, 'M', 'a', 'i', 'n', 0})
	img.SetHeap(format.HeapBlob, []byte{0, 2, 0xAA, 0xBB})
	img.SetHeap(format.HeapGUID, make([]byte, 16))
	img.SetHeap(format.HeapUS, []byte{0})
	img.SetRows(format.TableModuleRef, []format.Row{{1}})
	return img
}

func TestTracker_HeapEdits(t *testing.T) {
	tr := NewTracker(testImage())
	assert.False(t, tr.HasChanges())

	off, err := tr.AddString("Helper")
	require.NoError(t, err)
	assert.Equal(t, uint32(6), off, "appends start at the original heap end")

	blobOff, err := tr.AddBlob([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), blobOff)

	idx, err := tr.AddGUID(uuid.MustParse("11111111-2222-3333-4444-555555555555"))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx, "original heap holds one GUID")

	usOff, err := tr.AddUserString("lit")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), usOff)

	assert.True(t, tr.HasChanges())
	stats := tr.Stats()
	assert.Equal(t, 1, stats.StringEdits)
	assert.Equal(t, 1, stats.BlobEdits)
	assert.Equal(t, 1, stats.GUIDEdits)
	assert.Equal(t, 1, stats.UserStringEdits)
}

func TestTracker_GenerationBumpsOnMutation(t *testing.T) {
	tr := NewTracker(testImage())
	g0 := tr.Generation()

	_, err := tr.AddString("x")
	require.NoError(t, err)
	assert.Greater(t, tr.Generation(), g0)

	g1 := tr.Generation()
	require.Error(t, tr.RemoveString(0), "failed edits do not bump")
	assert.Equal(t, g1, tr.Generation())
}

func TestTracker_TableEdits(t *testing.T) {
	tr := NewTracker(testImage())

	rid, err := tr.AppendRow(format.TableModuleRef, format.Row{7})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), rid, "original table has one row")

	require.NoError(t, tr.UpdateRow(format.TableModuleRef, 1, format.Row{9}))
	require.NoError(t, tr.DeleteRow(format.TableModuleRef, 2))

	assert.Equal(t, []format.TableID{format.TableModuleRef}, tr.ModifiedTables())
}

func TestTracker_RowSchemaValidation(t *testing.T) {
	tr := NewTracker(testImage())

	// ModuleRef rows carry exactly one column.
	require.ErrorIs(t, tr.InsertRow(format.TableModuleRef, 2, format.Row{1, 2}), ErrBadRow)
	require.ErrorIs(t, tr.UpdateRow(format.TableModuleRef, 1, format.Row{}), ErrBadRow)
	_, err := tr.AppendRow(format.TableID(0x2D), format.Row{1})
	require.ErrorIs(t, err, format.ErrBadTable)
}

func TestTracker_OperationsStayChronological(t *testing.T) {
	tr := NewTracker(testImage())

	require.NoError(t, tr.UpdateRow(format.TableModuleRef, 1, format.Row{1}))
	require.NoError(t, tr.UpdateRow(format.TableModuleRef, 1, format.Row{2}))
	require.NoError(t, tr.UpdateRow(format.TableModuleRef, 1, format.Row{3}))

	tc, ok := tr.tables[format.TableModuleRef]
	require.True(t, ok)
	ops := tc.Operations()
	require.Len(t, ops, 3)
	assert.Less(t, ops[0].Timestamp, ops[1].Timestamp, "tracker clock is strictly monotonic")
	assert.Less(t, ops[1].Timestamp, ops[2].Timestamp)
}

func TestTracker_MethodBodies(t *testing.T) {
	tr := NewTracker(testImage())

	a1, err := tr.StoreMethodBody([]byte{0x2A, 0x2A, 0x2A})
	require.NoError(t, err)
	assert.Equal(t, uint32(format.PlaceholderBase), a1)
	assert.True(t, format.IsPlaceholder(a1))

	a2, err := tr.StoreMethodBody(make([]byte, 9))
	require.NoError(t, err)
	assert.Equal(t, a1+1, a2, "placeholders are sequential")

	body, ok := tr.MethodBody(a1)
	require.True(t, ok)
	assert.Len(t, body, 3)

	// 3 -> 4 aligned, 9 -> 12 aligned.
	assert.Equal(t, uint64(16), tr.MethodBodySpan())
}

func TestTracker_FinishSeals(t *testing.T) {
	tr := NewTracker(testImage())
	_, err := tr.AddString("x")
	require.NoError(t, err)

	snap, err := tr.Finish()
	require.NoError(t, err)
	require.NotNil(t, snap)

	_, err = tr.AddString("y")
	require.ErrorIs(t, err, ErrFinished)
	require.ErrorIs(t, tr.DeleteRow(format.TableModuleRef, 1), ErrFinished)
	_, err = tr.StoreMethodBody([]byte{1})
	require.ErrorIs(t, err, ErrFinished)

	_, err = tr.Finish()
	require.ErrorIs(t, err, ErrFinished, "a snapshot is consumed exactly once")

	assert.True(t, snap.HasChanges())
	assert.Equal(t, uint32(format.PlaceholderBase), snap.NextPlaceholder())
}
