package format

import (
	"errors"
	"testing"
)

func TestCodedIndexTagBits(t *testing.T) {
	cases := []struct {
		kind CodedIndexKind
		bits int
	}{
		{TypeDefOrRef, 2},
		{HasConstant, 2},
		{HasCustomAttribute, 5},
		{HasFieldMarshal, 1},
		{HasDeclSecurity, 2},
		{MemberRefParent, 3},
		{HasSemantics, 1},
		{MethodDefOrRef, 1},
		{MemberForwarded, 1},
		{Implementation, 2},
		{CustomAttributeType, 3},
		{ResolutionScope, 2},
		{TypeOrMethodDef, 1},
		{HasCustomDebugInformation, 5},
	}
	for _, tc := range cases {
		if got := tc.kind.TagBits(); got != tc.bits {
			t.Errorf("%s.TagBits() = %d, want %d", tc.kind, got, tc.bits)
		}
	}
}

func TestCodedIndexRoundTrip(t *testing.T) {
	rids := []uint32{1, 2, 0x7FFF, MaxRID}
	for k := CodedIndexKind(0); k.Valid(); k++ {
		for _, table := range k.Tables() {
			if table == TableNone {
				continue
			}
			for _, rid := range rids {
				raw, err := EncodeCodedIndex(k, table, rid)
				if err != nil {
					t.Fatalf("Encode(%s, %s, %d): %v", k, table, rid, err)
				}
				gotTable, gotRID, err := DecodeCodedIndex(k, raw)
				if err != nil {
					t.Fatalf("Decode(%s, %#x): %v", k, raw, err)
				}
				if gotTable != table || gotRID != rid {
					t.Fatalf("Decode(%s, %#x) = (%s, %d), want (%s, %d)",
						k, raw, gotTable, gotRID, table, rid)
				}
			}
		}
	}
}

func TestCodedIndexKnownValues(t *testing.T) {
	// TypeDefOrRef uses 2 tag bits: TypeDef=0, TypeRef=1, TypeSpec=2.
	raw, err := EncodeCodedIndex(TypeDefOrRef, TableTypeRef, 0x12)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if raw != 0x12<<2|1 {
		t.Fatalf("raw = %#x, want %#x", raw, uint32(0x12<<2|1))
	}

	// CustomAttributeType assigns MethodDef tag 2 and MemberRef tag 3.
	raw, err = EncodeCodedIndex(CustomAttributeType, TableMethodDef, 5)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if raw != 5<<3|2 {
		t.Fatalf("raw = %#x, want %#x", raw, uint32(5<<3|2))
	}
}

func TestCodedIndexIneligibleTable(t *testing.T) {
	if _, err := EncodeCodedIndex(TypeDefOrRef, TableAssembly, 1); !errors.Is(err, ErrBadTable) {
		t.Fatalf("err = %v, want ErrBadTable", err)
	}
}

func TestCodedIndexReservedTag(t *testing.T) {
	// CustomAttributeType tags 0, 1, and 4 are reserved.
	for _, tag := range []uint32{0, 1, 4} {
		raw := 7<<3 | tag
		if _, _, err := DecodeCodedIndex(CustomAttributeType, raw); !errors.Is(err, ErrBadTag) {
			t.Fatalf("tag %d err = %v, want ErrBadTag", tag, err)
		}
	}
}

func TestCodedIndexRIDOverflow(t *testing.T) {
	if _, err := EncodeCodedIndex(TypeDefOrRef, TableTypeDef, MaxRID+1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("err = %v, want ErrOverflow", err)
	}
}

func TestCodedIndexBytes(t *testing.T) {
	var sizes IndexSizes

	// Everything small: 2-byte columns.
	sizes.Rows[TableTypeDef] = 100
	if got := sizes.CodedIndexBytes(TypeDefOrRef); got != 2 {
		t.Fatalf("small CodedIndexBytes = %d, want 2", got)
	}

	// TypeDefOrRef has 2 tag bits, so the boundary sits at 1<<14 rows.
	sizes.Rows[TableTypeDef] = 1<<14 - 1
	if got := sizes.CodedIndexBytes(TypeDefOrRef); got != 2 {
		t.Fatalf("boundary-1 CodedIndexBytes = %d, want 2", got)
	}
	sizes.Rows[TableTypeDef] = 1 << 14
	if got := sizes.CodedIndexBytes(TypeDefOrRef); got != 4 {
		t.Fatalf("boundary CodedIndexBytes = %d, want 4", got)
	}

	// Growing a different eligible table widens the column too.
	sizes.Rows[TableTypeDef] = 10
	sizes.Rows[TableTypeSpec] = 1 << 14
	if got := sizes.CodedIndexBytes(TypeDefOrRef); got != 4 {
		t.Fatalf("sibling growth CodedIndexBytes = %d, want 4", got)
	}
}

func TestTableIndexBytes(t *testing.T) {
	var sizes IndexSizes
	sizes.Rows[TableField] = 0xFFFF
	if got := sizes.TableIndexBytes(TableField); got != 2 {
		t.Fatalf("TableIndexBytes at 0xFFFF = %d, want 2", got)
	}
	sizes.Rows[TableField] = 0x10000
	if got := sizes.TableIndexBytes(TableField); got != 4 {
		t.Fatalf("TableIndexBytes at 0x10000 = %d, want 4", got)
	}
}
