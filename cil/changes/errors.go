package changes

import "errors"

var (
	// ErrFinished indicates a mutation on a tracker that has been sealed.
	ErrFinished = errors.New("changes: tracker already finished")
	// ErrNullOffset indicates an edit addressed at offset 0, the reserved
	// null entry of a heap.
	ErrNullOffset = errors.New("changes: offset 0 is the reserved null entry")
	// ErrUnknownOffset indicates an offset that addresses neither an
	// original entry range nor an appended item.
	ErrUnknownOffset = errors.New("changes: offset does not address an entry")
	// ErrRemovedEntry indicates an edit on a heap entry already removed.
	ErrRemovedEntry = errors.New("changes: entry already removed")
	// ErrReplacedTable indicates a sparse operation on a table whose
	// content was replaced wholesale.
	ErrReplacedTable = errors.New("changes: table fully replaced")
	// ErrNullRID indicates row id 0, which never addresses a row.
	ErrNullRID = errors.New("changes: row id 0")
	// ErrDuplicateInsert indicates an insert at a row id that exists.
	ErrDuplicateInsert = errors.New("changes: duplicate insert")
	// ErrRowNotFound indicates an update or delete of a missing row.
	ErrRowNotFound = errors.New("changes: row not found")
	// ErrRowDeleted indicates an operation on a decommissioned row id.
	ErrRowDeleted = errors.New("changes: row deleted")
	// ErrTooManyUpdates indicates the per-row update sanity ceiling.
	ErrTooManyUpdates = errors.New("changes: per-row update ceiling exceeded")
	// ErrStaleTimestamp indicates an operation older than the newest one
	// already recorded; the log must stay chronological.
	ErrStaleTimestamp = errors.New("changes: operation timestamp out of order")
	// ErrBadRow indicates a row whose column count does not match the
	// table schema.
	ErrBadRow = errors.New("changes: row does not match table schema")
)
