package writer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cilpatch/cil/changes"
)

// stringsHeap is a #Strings heap with one entry "Main" at offset 1,
// already 4-byte aligned.
func stringsHeap() []byte {
	return []byte{0, 'M', 'a', 'i', 'n', 0, 0, 0}
}

func TestReconstructStrings_UnchangedIsByteIdentical(t *testing.T) {
	orig := stringsHeap()
	ch := changes.NewStringChanges(uint32(len(orig)))

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(orig, out))
	assert.Empty(t, remap)
}

func TestReconstructStrings_AppendsGrowByEncodedSize(t *testing.T) {
	orig := stringsHeap()
	ch := changes.NewStringChanges(uint32(len(orig)))

	off1, err := ch.Append("Hello")
	require.NoError(t, err)
	off2, err := ch.Append("World")
	require.NoError(t, err)
	require.Equal(t, uint32(8), off1)
	require.Equal(t, uint32(14), off2)

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Len(t, out, len(orig)+12, "two appends of (5+1) bytes each")
	assert.Equal(t, []byte("Hello\x00"), out[off1:off1+6])
	assert.Equal(t, []byte("World\x00"), out[off2:off2+6])
	assert.True(t, bytes.Equal(orig, out[:len(orig)]), "original bytes are untouched")
}

func TestReconstructStrings_ModifyInPlaceWhenShorter(t *testing.T) {
	orig := stringsHeap()
	ch := changes.NewStringChanges(uint32(len(orig)))
	require.NoError(t, ch.Modify(1, "Hi"))

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Len(t, out, len(orig))
	assert.Equal(t, []byte{0, 'H', 'i', 0, 0, 0, 0, 0}, out, "the old tail is zeroed, not left behind")
}

func TestReconstructStrings_ModifyRelocatesWhenLonger(t *testing.T) {
	orig := stringsHeap()
	ch := changes.NewStringChanges(uint32(len(orig)))
	require.NoError(t, ch.Modify(1, "Longer"))

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	require.Equal(t, map[uint32]uint32{1: 8}, remap)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, out[:8], "the old span is zeroed")
	assert.Equal(t, []byte("Longer\x00"), out[8:15])
	assert.Equal(t, byte(0xFF), out[15], "padded to 4-byte alignment with the pad byte")
	assert.Len(t, out, 16)
}

func TestReconstructStrings_RemoveZeroesWithoutShifting(t *testing.T) {
	orig := []byte{0, 'A', 0, 'B', 0, 0, 0, 0}
	ch := changes.NewStringChanges(uint32(len(orig)))
	require.NoError(t, ch.Remove(1))

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Equal(t, []byte{0, 0, 0, 'B', 0, 0, 0, 0}, out, "the entry at offset 3 stays put")
}

func TestReconstructStrings_AppendThenRemoveCancelsGrowth(t *testing.T) {
	orig := stringsHeap()
	ch := changes.NewStringChanges(uint32(len(orig)))

	off, err := ch.Append("Hello")
	require.NoError(t, err)
	require.NoError(t, ch.Remove(off))

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Len(t, out, len(orig), "the trailing zero slot is trimmed")
	assert.True(t, bytes.Equal(orig, out))
}

func TestReconstructStrings_InteriorRemovedAppendStaysZeroed(t *testing.T) {
	orig := stringsHeap()
	ch := changes.NewStringChanges(uint32(len(orig)))

	off1, err := ch.Append("Hello")
	require.NoError(t, err)
	off2, err := ch.Append("World")
	require.NoError(t, err)
	require.NoError(t, ch.Remove(off1))

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Equal(t, make([]byte, 6), out[off1:off1+6], "the removed slot keeps later offsets valid")
	assert.Equal(t, []byte("World\x00"), out[off2:off2+6])
}

func TestReconstructStrings_ReplacementIsTheBase(t *testing.T) {
	orig := stringsHeap()
	ch := changes.NewStringChanges(uint32(len(orig)))
	repl := []byte{0, 'X', 0, 0}
	ch.Replace(repl)

	off, err := ch.Append("Y")
	require.NoError(t, err)
	require.Equal(t, uint32(4), off, "appends restart at the replacement end")

	out, remap, err := ReconstructStrings(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Equal(t, []byte{0, 'X', 0, 0, 'Y', 0, 0xFF, 0xFF}, out)
}

func TestReconstructStrings_SizeMismatchFails(t *testing.T) {
	ch := changes.NewStringChanges(16)
	_, err := ch.Append("x")
	require.NoError(t, err)

	_, _, err = ReconstructStrings(ch, stringsHeap())
	require.ErrorIs(t, err, ErrHeapMismatch)
}

func TestReconstructBlobs_AppendedModifyGrowsInPlaceWhenLast(t *testing.T) {
	orig := []byte{0}
	ch := changes.NewBlobChanges(1)

	off, err := ch.Append([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, uint32(1), off)
	require.NoError(t, ch.Modify(off, []byte{9, 9, 9, 9, 9}))

	out, remap, err := ReconstructBlobs(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap, "nothing follows the slot, so it grows in place")
	assert.Equal(t, []byte{0, 5, 9, 9, 9, 9, 9, 0xFF}, out)
}

func TestReconstructBlobs_PrefixWidthChangeRelocates(t *testing.T) {
	// Null entry, a 3-byte payload at offset 1, a 2-byte payload at 5.
	orig := []byte{0, 3, 1, 2, 3, 2, 0xAA, 0xBB}
	ch := changes.NewBlobChanges(uint32(len(orig)))

	wide := bytes.Repeat([]byte{7}, 0x80) // needs a 2-byte prefix
	require.NoError(t, ch.Modify(5, wide))

	out, remap, err := ReconstructBlobs(ch, orig)
	require.NoError(t, err)
	require.Equal(t, map[uint32]uint32{5: 8}, remap)
	assert.Equal(t, []byte{0, 0, 0}, out[5:8], "the old span is zeroed")
	assert.Equal(t, byte(0x80), out[8], "relocated entry starts with the wide prefix")
	assert.Equal(t, byte(0x80), out[9])
	assert.Equal(t, wide, out[10:10+0x80])
	assert.Equal(t, []byte{0, 3, 1, 2, 3}, out[:5], "the earlier entry never moves")
}

func TestReconstructBlobs_SamePrefixWidthModifiesInPlace(t *testing.T) {
	orig := []byte{0, 3, 1, 2, 3, 2, 0xAA, 0xBB}
	ch := changes.NewBlobChanges(uint32(len(orig)))
	require.NoError(t, ch.Modify(1, []byte{4, 5}))

	out, remap, err := ReconstructBlobs(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Equal(t, []byte{0, 2, 4, 5, 0, 2, 0xAA, 0xBB}, out)
}

func TestReconstructUserStrings_Append(t *testing.T) {
	orig := []byte{0, 0, 0, 0}
	ch := changes.NewUserStringChanges(uint32(len(orig)))

	off, err := ch.Append("Hi")
	require.NoError(t, err)
	require.Equal(t, uint32(4), off)

	out, remap, err := ReconstructUserStrings(ch, orig)
	require.NoError(t, err)
	assert.Empty(t, remap)
	assert.Equal(t, []byte{0, 0, 0, 0, 5, 'H', 0, 'i', 0, 0, 0xFF, 0xFF}, out)
}
