// Package format implements the wire-level pieces of the ECMA-335 metadata
// physical layout: compressed unsigned integers, metadata tokens, table
// identifiers and schemas, coded indexes, heap entry boundary scanning, and
// the alignment rules the streams follow.
//
// Everything here is pure byte/bit manipulation over caller-supplied
// buffers. Nothing in this package allocates long-lived state or performs
// I/O; the change tracking and reconstruction layers build on top of it.
package format
