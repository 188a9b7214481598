// Package changes implements the sparse change model for metadata
// patching: per-heap changesets, per-table operation logs, and the Tracker
// aggregate that owns them together with newly authored method bodies.
//
// A Tracker is created against a read-only view of the original image and
// mutated through narrow edit calls. Nothing in the original is touched;
// every edit is recorded sparsely and validated synchronously at the call.
// When editing is done, Finish seals the tracker into an immutable
// Snapshot that the write pipeline in cil/writer consumes exactly once.
package changes
