//go:build !linux

package writer

import "os"

func syncFile(f *os.File) error {
	return f.Sync()
}
