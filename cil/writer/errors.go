package writer

import "errors"

var (
	// ErrRegionOverlap indicates two planned file regions overlap; the
	// layout is corrupt and the write must abort.
	ErrRegionOverlap = errors.New("writer: file regions overlap")
	// ErrHeapMismatch indicates the original heap bytes disagree with the
	// sizes recorded when the changeset was created.
	ErrHeapMismatch = errors.New("writer: heap bytes disagree with the recorded changeset")
	// ErrUnknownPlaceholder indicates a row still references a method-body
	// placeholder that no resolution was supplied for.
	ErrUnknownPlaceholder = errors.New("writer: unresolved method body placeholder")
)
