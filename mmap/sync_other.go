//go:build !unix

package mmap

import "os"

func syncData(f *os.File, _ []byte) error {
	return f.Sync()
}
