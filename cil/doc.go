// Package cil holds the container-level view of an ECMA-335 metadata
// image: the read-only View interface the change tracker and write
// pipeline consume, an in-memory Image implementation of it, and
// read-only loading of input files via memory mapping.
//
// Parsing a PE file into heaps and decoded rows is an external concern;
// callers populate an Image from their own parser (or construct one
// directly in tests) and hand it to cil/changes and cil/writer.
package cil
