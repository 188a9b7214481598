package format

// IndexSizes carries the sizing inputs every column-width decision depends
// on: final per-table row counts and whether each heap crossed the 16-bit
// index boundary. Row widths must be recomputed from a fresh IndexSizes
// whenever any table or heap grows, because one growing table can widen
// coded-index columns assembly-wide.
type IndexSizes struct {
	Rows        [NumTableIDs]uint32
	LargeString bool
	LargeGUID   bool
	LargeBlob   bool
}

// NewIndexSizes builds an IndexSizes from final row counts and final heap
// byte sizes.
func NewIndexSizes(rows map[TableID]uint32, stringSize, guidSize, blobSize uint32) *IndexSizes {
	s := &IndexSizes{
		LargeString: stringSize > LargeHeapThreshold,
		LargeGUID:   guidSize > LargeHeapThreshold,
		LargeBlob:   blobSize > LargeHeapThreshold,
	}
	for id, n := range rows {
		if int(id) < NumTableIDs {
			s.Rows[id] = n
		}
	}
	return s
}

// StringBytes returns the serialized width of a #Strings heap index.
func (s *IndexSizes) StringBytes() int {
	if s.LargeString {
		return 4
	}
	return 2
}

// GUIDBytes returns the serialized width of a #GUID heap index.
func (s *IndexSizes) GUIDBytes() int {
	if s.LargeGUID {
		return 4
	}
	return 2
}

// BlobBytes returns the serialized width of a #Blob heap index.
func (s *IndexSizes) BlobBytes() int {
	if s.LargeBlob {
		return 4
	}
	return 2
}

// TableIndexBytes returns the serialized width of a plain row index into
// table: 2 bytes until the table's row count exceeds 16 bits.
func (s *IndexSizes) TableIndexBytes(table TableID) int {
	if int(table) < NumTableIDs && s.Rows[table] > 0xFFFF {
		return 4
	}
	return 2
}

// CodedIndexBytes returns the serialized width of a coded-index column of
// the given kind: 2 bytes iff the largest eligible table's row count still
// fits alongside the tag bits in 16 bits.
func (s *IndexSizes) CodedIndexBytes(kind CodedIndexKind) int {
	var maxRows uint32
	for _, id := range kind.Tables() {
		if id == TableNone {
			continue
		}
		if int(id) < NumTableIDs && s.Rows[id] > maxRows {
			maxRows = s.Rows[id]
		}
	}
	if maxRows < 1<<(16-kind.TagBits()) {
		return 2
	}
	return 4
}
