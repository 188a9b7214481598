package format

import (
	"fmt"
	"math/bits"
)

// Coded indexes (ECMA-335 II.24.2.6) pack a target-table tag and a 1-based
// row index into a single integer column. Each kind owns a fixed, ordered
// eligible-table list; the position within that list is the tag stored in
// the low bits of the raw value. The serialized column is 2 bytes unless
// the largest eligible table pushes the packed value past 16 bits.

// CodedIndexKind identifies one of the coded-index column kinds.
type CodedIndexKind uint8

const (
	TypeDefOrRef CodedIndexKind = iota
	HasConstant
	HasCustomAttribute
	HasFieldMarshal
	HasDeclSecurity
	MemberRefParent
	HasSemantics
	MethodDefOrRef
	MemberForwarded
	Implementation
	CustomAttributeType
	ResolutionScope
	TypeOrMethodDef
	HasCustomDebugInformation

	// NumCodedIndexKinds sizes dense per-kind arrays.
	NumCodedIndexKinds = int(HasCustomDebugInformation) + 1
)

var codedIndexNames = [NumCodedIndexKinds]string{
	"TypeDefOrRef",
	"HasConstant",
	"HasCustomAttribute",
	"HasFieldMarshal",
	"HasDeclSecurity",
	"MemberRefParent",
	"HasSemantics",
	"MethodDefOrRef",
	"MemberForwarded",
	"Implementation",
	"CustomAttributeType",
	"ResolutionScope",
	"TypeOrMethodDef",
	"HasCustomDebugInformation",
}

// codedIndexTables lists the eligible target tables per kind, in tag
// order. TableNone marks a reserved tag (CustomAttributeType uses only two
// of its five slots).
var codedIndexTables = [NumCodedIndexKinds][]TableID{
	TypeDefOrRef: {TableTypeDef, TableTypeRef, TableTypeSpec},
	HasConstant:  {TableField, TableParam, TableProperty},
	HasCustomAttribute: {
		TableMethodDef, TableField, TableTypeRef, TableTypeDef,
		TableParam, TableInterfaceImpl, TableMemberRef, TableModule,
		TableDeclSecurity, TableProperty, TableEvent, TableStandAloneSig,
		TableModuleRef, TableTypeSpec, TableAssembly, TableAssemblyRef,
		TableFile, TableExportedType, TableManifestResource,
		TableGenericParam, TableGenericParamConstraint, TableMethodSpec,
	},
	HasFieldMarshal: {TableField, TableParam},
	HasDeclSecurity: {TableTypeDef, TableMethodDef, TableAssembly},
	MemberRefParent: {
		TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef,
		TableTypeSpec,
	},
	HasSemantics:        {TableEvent, TableProperty},
	MethodDefOrRef:      {TableMethodDef, TableMemberRef},
	MemberForwarded:     {TableField, TableMethodDef},
	Implementation:      {TableFile, TableAssemblyRef, TableExportedType},
	CustomAttributeType: {TableNone, TableNone, TableMethodDef, TableMemberRef, TableNone},
	ResolutionScope:     {TableModule, TableModuleRef, TableAssemblyRef, TableTypeRef},
	TypeOrMethodDef:     {TableTypeDef, TableMethodDef},
	HasCustomDebugInformation: {
		TableMethodDef, TableField, TableTypeRef, TableTypeDef,
		TableParam, TableInterfaceImpl, TableMemberRef, TableModule,
		TableDeclSecurity, TableProperty, TableEvent, TableStandAloneSig,
		TableModuleRef, TableTypeSpec, TableAssembly, TableAssemblyRef,
		TableFile, TableExportedType, TableManifestResource,
		TableGenericParam, TableGenericParamConstraint, TableMethodSpec,
		TableDocument, TableLocalScope, TableLocalVariable,
		TableLocalConstant, TableImportScope,
	},
}

func (k CodedIndexKind) String() string {
	if int(k) < len(codedIndexNames) {
		return codedIndexNames[k]
	}
	return fmt.Sprintf("CodedIndexKind(%d)", uint8(k))
}

// Valid reports whether k names a defined coded-index kind.
func (k CodedIndexKind) Valid() bool {
	return int(k) < NumCodedIndexKinds
}

// Tables returns the kind's eligible-table list in tag order. The returned
// slice is shared; callers must not mutate it.
func (k CodedIndexKind) Tables() []TableID {
	if !k.Valid() {
		return nil
	}
	return codedIndexTables[k]
}

// TagBits returns the number of low-order tag bits the kind uses: the
// minimum needed to distinguish its eligible-table list.
func (k CodedIndexKind) TagBits() int {
	n := len(k.Tables())
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// EncodeCodedIndex packs (table, rid) into the raw coded value for kind.
// RID 0 encodes the null reference for any eligible table.
func EncodeCodedIndex(kind CodedIndexKind, table TableID, rid uint32) (uint32, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: kind %d", ErrBadTag, uint8(kind))
	}
	if rid > MaxRID {
		return 0, fmt.Errorf("%w: row %d exceeds 24-bit row index for %s", ErrOverflow, rid, kind)
	}
	tag := -1
	for i, id := range kind.Tables() {
		if id == table && id != TableNone {
			tag = i
			break
		}
	}
	if tag < 0 {
		return 0, fmt.Errorf("%w: %s is not a %s target", ErrBadTable, table, kind)
	}
	return rid<<kind.TagBits() | uint32(tag), nil
}

// DecodeCodedIndex unpacks a raw coded value into its target table and
// 1-based row index. Reserved tags are rejected.
func DecodeCodedIndex(kind CodedIndexKind, raw uint32) (TableID, uint32, error) {
	if !kind.Valid() {
		return 0, 0, fmt.Errorf("%w: kind %d", ErrBadTag, uint8(kind))
	}
	tables := kind.Tables()
	tagBits := kind.TagBits()
	tag := raw & (1<<tagBits - 1)
	if int(tag) >= len(tables) || tables[tag] == TableNone {
		return 0, 0, fmt.Errorf("%w: tag %d for %s", ErrBadTag, tag, kind)
	}
	return tables[tag], raw >> tagBits, nil
}
