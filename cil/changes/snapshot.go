package changes

import (
	"github.com/google/uuid"

	"github.com/joshuapare/cilpatch/internal/format"
)

// Snapshot is the sealed product of Tracker.Finish. The underlying state
// can no longer change, so the write pipeline may read it from multiple
// goroutines without locking.
type Snapshot struct {
	tracker *Tracker
}

// Original returns the read-only view the edits were recorded against.
func (s *Snapshot) Original() Original { return s.tracker.orig }

// Strings returns the #Strings changeset.
func (s *Snapshot) Strings() *HeapChanges[string] { return s.tracker.strings }

// Blobs returns the #Blob changeset.
func (s *Snapshot) Blobs() *HeapChanges[[]byte] { return s.tracker.blobs }

// GUIDs returns the #GUID changeset.
func (s *Snapshot) GUIDs() *HeapChanges[uuid.UUID] { return s.tracker.guids }

// UserStrings returns the #US changeset.
func (s *Snapshot) UserStrings() *HeapChanges[string] { return s.tracker.userStrings }

// Table returns the changeset recorded for table, if any.
func (s *Snapshot) Table(table format.TableID) (*TableChanges, bool) {
	tc, ok := s.tracker.tables[table]
	return tc, ok
}

// ModifiedTables returns the tables with recorded changes, ascending.
func (s *Snapshot) ModifiedTables() []format.TableID {
	return s.tracker.ModifiedTables()
}

// MethodBodies returns the placeholder-keyed method body map. Callers
// must treat it as read-only.
func (s *Snapshot) MethodBodies() map[uint32][]byte {
	return s.tracker.methodBodies
}

// MethodBodySpan returns the total aligned code bytes of the new bodies.
func (s *Snapshot) MethodBodySpan() uint64 { return s.tracker.MethodBodySpan() }

// NextPlaceholder returns the first unassigned placeholder address; every
// stored body's key lies in [format.PlaceholderBase, NextPlaceholder).
func (s *Snapshot) NextPlaceholder() uint32 { return s.tracker.nextPlaceholder }

// HasChanges reports whether any edit was recorded before sealing.
func (s *Snapshot) HasChanges() bool { return s.tracker.HasChanges() }
