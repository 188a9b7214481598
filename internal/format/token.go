package format

import "fmt"

// Token is the canonical 32-bit row identifier: the high 8 bits carry the
// table ID and the low 24 bits the 1-based row index. RID 0 is the null
// sentinel for the token's table.
type Token uint32

// NewToken builds a token for (table, rid). The RID must fit the 24-bit
// row index field; table must be an assigned table identifier.
func NewToken(table TableID, rid uint32) (Token, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("%w: 0x%02X", ErrBadTable, uint8(table))
	}
	if rid > MaxRID {
		return 0, fmt.Errorf("%w: row %d exceeds 24-bit row index", ErrOverflow, rid)
	}
	return Token(uint32(table)<<24 | rid), nil
}

// Table returns the table the token addresses.
func (t Token) Table() TableID { return TableID(t >> 24) }

// RID returns the 1-based row index; 0 means null.
func (t Token) RID() uint32 { return uint32(t) & MaxRID }

// IsNull reports whether the token is its table's null sentinel.
func (t Token) IsNull() bool { return t.RID() == 0 }

func (t Token) String() string {
	return fmt.Sprintf("%s[%d]", t.Table(), t.RID())
}
