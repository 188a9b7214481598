// Package writer exposes sinks for emitted metadata images.
package writer

// Sink receives one fully assembled output image. Implementations must be
// all-or-nothing: a failed write leaves no partial output behind.
type Sink interface {
	WriteImage(buf []byte) error
}
