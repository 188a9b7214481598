//go:build windows

package mmfile

import (
	"os"
)

// Map reads the metadata image at path in full. A shared mapping would
// keep the image locked while the patched output is written next to it,
// so Windows gets a plain copy; cleanup is a no-op.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}
