//go:build !unix && !windows

// Package mmfile provides platform-specific helpers for memory-mapping
// metadata image files.
package mmfile

import "os"

// Map reads the metadata image in full when mmap is not available;
// cleanup is a no-op.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
