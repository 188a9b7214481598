package format

import "fmt"

// Table schemas (ECMA-335 II.22). Each assigned table has a fixed, ordered
// column list; the serialized width of index columns depends on the final
// heap and table sizes, so widths are resolved against an IndexSizes at
// write time rather than baked in here.

// Row holds one table row as ordered column values, one value per schema
// column. Fixed columns carry the literal value; index columns carry the
// heap offset, row index, or packed coded-index value.
type Row []uint32

// ColumnKind says how a schema column serializes.
type ColumnKind uint8

const (
	// ColU16 is a fixed 2-byte value column.
	ColU16 ColumnKind = iota
	// ColU32 is a fixed 4-byte value column.
	ColU32
	// ColStringIndex is an offset into the #Strings heap.
	ColStringIndex
	// ColGUIDIndex is a 1-based index into the #GUID heap.
	ColGUIDIndex
	// ColBlobIndex is an offset into the #Blob heap.
	ColBlobIndex
	// ColTableIndex is a 1-based row index into one fixed target table.
	ColTableIndex
	// ColCodedIndex is a packed multi-table reference of one fixed kind.
	ColCodedIndex
)

// Column describes one serialized table column.
type Column struct {
	Name   string
	Kind   ColumnKind
	Target TableID        // for ColTableIndex
	Coded  CodedIndexKind // for ColCodedIndex
}

// Width returns the column's serialized byte width under sizes.
func (c Column) Width(sizes *IndexSizes) int {
	switch c.Kind {
	case ColU16:
		return 2
	case ColU32:
		return 4
	case ColStringIndex:
		return sizes.StringBytes()
	case ColGUIDIndex:
		return sizes.GUIDBytes()
	case ColBlobIndex:
		return sizes.BlobBytes()
	case ColTableIndex:
		return sizes.TableIndexBytes(c.Target)
	case ColCodedIndex:
		return sizes.CodedIndexBytes(c.Coded)
	default:
		return 0
	}
}

func u16(name string) Column  { return Column{Name: name, Kind: ColU16} }
func u32(name string) Column  { return Column{Name: name, Kind: ColU32} }
func str(name string) Column  { return Column{Name: name, Kind: ColStringIndex} }
func guid(name string) Column { return Column{Name: name, Kind: ColGUIDIndex} }
func blob(name string) Column { return Column{Name: name, Kind: ColBlobIndex} }

func tbl(name string, target TableID) Column {
	return Column{Name: name, Kind: ColTableIndex, Target: target}
}

func coded(name string, kind CodedIndexKind) Column {
	return Column{Name: name, Kind: ColCodedIndex, Coded: kind}
}

var tableSchemas = [NumTableIDs][]Column{
	TableModule: {
		u16("Generation"), str("Name"), guid("Mvid"),
		guid("EncId"), guid("EncBaseId"),
	},
	TableTypeRef: {
		coded("ResolutionScope", ResolutionScope),
		str("TypeName"), str("TypeNamespace"),
	},
	TableTypeDef: {
		u32("Flags"), str("TypeName"), str("TypeNamespace"),
		coded("Extends", TypeDefOrRef),
		tbl("FieldList", TableField), tbl("MethodList", TableMethodDef),
	},
	TableFieldPtr: {
		tbl("Field", TableField),
	},
	TableField: {
		u16("Flags"), str("Name"), blob("Signature"),
	},
	TableMethodPtr: {
		tbl("Method", TableMethodDef),
	},
	TableMethodDef: {
		u32("RVA"), u16("ImplFlags"), u16("Flags"),
		str("Name"), blob("Signature"), tbl("ParamList", TableParam),
	},
	TableParamPtr: {
		tbl("Param", TableParam),
	},
	TableParam: {
		u16("Flags"), u16("Sequence"), str("Name"),
	},
	TableInterfaceImpl: {
		tbl("Class", TableTypeDef), coded("Interface", TypeDefOrRef),
	},
	TableMemberRef: {
		coded("Class", MemberRefParent), str("Name"), blob("Signature"),
	},
	TableConstant: {
		// Type is a 1-byte element type followed by a zero pad byte;
		// serialized little-endian as one u16 the pad lands second.
		u16("Type"), coded("Parent", HasConstant), blob("Value"),
	},
	TableCustomAttribute: {
		coded("Parent", HasCustomAttribute),
		coded("Type", CustomAttributeType), blob("Value"),
	},
	TableFieldMarshal: {
		coded("Parent", HasFieldMarshal), blob("NativeType"),
	},
	TableDeclSecurity: {
		u16("Action"), coded("Parent", HasDeclSecurity),
		blob("PermissionSet"),
	},
	TableClassLayout: {
		u16("PackingSize"), u32("ClassSize"), tbl("Parent", TableTypeDef),
	},
	TableFieldLayout: {
		u32("Offset"), tbl("Field", TableField),
	},
	TableStandAloneSig: {
		blob("Signature"),
	},
	TableEventMap: {
		tbl("Parent", TableTypeDef), tbl("EventList", TableEvent),
	},
	TableEventPtr: {
		tbl("Event", TableEvent),
	},
	TableEvent: {
		u16("EventFlags"), str("Name"), coded("EventType", TypeDefOrRef),
	},
	TablePropertyMap: {
		tbl("Parent", TableTypeDef), tbl("PropertyList", TableProperty),
	},
	TablePropertyPtr: {
		tbl("Property", TableProperty),
	},
	TableProperty: {
		u16("Flags"), str("Name"), blob("Type"),
	},
	TableMethodSemantics: {
		u16("Semantics"), tbl("Method", TableMethodDef),
		coded("Association", HasSemantics),
	},
	TableMethodImpl: {
		tbl("Class", TableTypeDef),
		coded("MethodBody", MethodDefOrRef),
		coded("MethodDeclaration", MethodDefOrRef),
	},
	TableModuleRef: {
		str("Name"),
	},
	TableTypeSpec: {
		blob("Signature"),
	},
	TableImplMap: {
		u16("MappingFlags"), coded("MemberForwarded", MemberForwarded),
		str("ImportName"), tbl("ImportScope", TableModuleRef),
	},
	TableFieldRVA: {
		u32("RVA"), tbl("Field", TableField),
	},
	TableEncLog: {
		u32("Token"), u32("FuncCode"),
	},
	TableEncMap: {
		u32("Token"),
	},
	TableAssembly: {
		u32("HashAlgId"), u16("MajorVersion"), u16("MinorVersion"),
		u16("BuildNumber"), u16("RevisionNumber"), u32("Flags"),
		blob("PublicKey"), str("Name"), str("Culture"),
	},
	TableAssemblyProcessor: {
		u32("Processor"),
	},
	TableAssemblyOS: {
		u32("OSPlatformId"), u32("OSMajorVersion"), u32("OSMinorVersion"),
	},
	TableAssemblyRef: {
		u16("MajorVersion"), u16("MinorVersion"), u16("BuildNumber"),
		u16("RevisionNumber"), u32("Flags"), blob("PublicKeyOrToken"),
		str("Name"), str("Culture"), blob("HashValue"),
	},
	TableAssemblyRefProcessor: {
		u32("Processor"), tbl("AssemblyRef", TableAssemblyRef),
	},
	TableAssemblyRefOS: {
		u32("OSPlatformId"), u32("OSMajorVersion"), u32("OSMinorVersion"),
		tbl("AssemblyRef", TableAssemblyRef),
	},
	TableFile: {
		u32("Flags"), str("Name"), blob("HashValue"),
	},
	TableExportedType: {
		u32("Flags"), u32("TypeDefId"), str("TypeName"),
		str("TypeNamespace"), coded("Implementation", Implementation),
	},
	TableManifestResource: {
		u32("Offset"), u32("Flags"), str("Name"),
		coded("Implementation", Implementation),
	},
	TableNestedClass: {
		tbl("NestedClass", TableTypeDef), tbl("EnclosingClass", TableTypeDef),
	},
	TableGenericParam: {
		u16("Number"), u16("Flags"), coded("Owner", TypeOrMethodDef),
		str("Name"),
	},
	TableMethodSpec: {
		coded("Method", MethodDefOrRef), blob("Instantiation"),
	},
	TableGenericParamConstraint: {
		tbl("Owner", TableGenericParam), coded("Constraint", TypeDefOrRef),
	},
	TableDocument: {
		blob("Name"), guid("HashAlgorithm"), blob("Hash"), guid("Language"),
	},
	TableMethodDebugInformation: {
		tbl("Document", TableDocument), blob("SequencePoints"),
	},
	TableLocalScope: {
		tbl("Method", TableMethodDef), tbl("ImportScope", TableImportScope),
		tbl("VariableList", TableLocalVariable),
		tbl("ConstantList", TableLocalConstant),
		u32("StartOffset"), u32("Length"),
	},
	TableLocalVariable: {
		u16("Attributes"), u16("Index"), str("Name"),
	},
	TableLocalConstant: {
		str("Name"), blob("Signature"),
	},
	TableImportScope: {
		tbl("Parent", TableImportScope), blob("Imports"),
	},
	TableStateMachineMethod: {
		tbl("MoveNextMethod", TableMethodDef),
		tbl("KickoffMethod", TableMethodDef),
	},
	TableCustomDebugInformation: {
		coded("Parent", HasCustomDebugInformation),
		guid("Kind"), blob("Value"),
	},
}

// Schema returns the ordered column list of table. The returned slice is
// shared; callers must not mutate it.
func Schema(table TableID) ([]Column, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X has no schema", ErrBadTable, uint8(table))
	}
	return tableSchemas[table], nil
}

// RowSize returns the serialized byte width of one row of table under the
// given final sizes.
func RowSize(table TableID, sizes *IndexSizes) (int, error) {
	cols, err := Schema(table)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range cols {
		n += c.Width(sizes)
	}
	return n, nil
}
