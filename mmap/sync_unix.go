//go:build unix && !linux

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func syncData(f *os.File, mapping []byte) error {
	if mapping != nil {
		if err := unix.Msync(mapping, unix.MS_SYNC); err != nil {
			return os.NewSyscallError("msync", err)
		}
	}
	return f.Sync()
}
