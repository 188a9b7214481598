package cil

import "github.com/joshuapare/cilpatch/internal/mmfile"

// RawImage is a read-only memory-mapped input file. Its Data must not be
// written; heap slices handed to an Image may alias it directly.
type RawImage struct {
	Data    []byte
	cleanup func() error
}

// OpenRaw maps the file at path read-only. The caller parses Data into an
// Image and calls Close when every derived slice is no longer needed.
func OpenRaw(path string) (*RawImage, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	return &RawImage{Data: data, cleanup: cleanup}, nil
}

// Close releases the mapping. Safe to call more than once.
func (r *RawImage) Close() error {
	if r.cleanup == nil {
		return nil
	}
	err := r.cleanup()
	r.cleanup = nil
	return err
}
