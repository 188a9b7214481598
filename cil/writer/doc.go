// Package writer turns a sealed change snapshot into reconstructed stream
// bytes: per-heap reconstruction with offset remapping, table stream
// sizing under the recomputed index widths, file-region layout planning
// with overlap validation, and row serialization.
//
// The pipeline is single-writer and single-pass, with strict ordering:
// heap reconstruction completes first (final heap sizes decide index
// widths), then table sizing, then layout, then serialization. The four
// heaps are mutually independent and reconstruct concurrently. Any error
// aborts the whole write; no partial output is retained.
package writer
