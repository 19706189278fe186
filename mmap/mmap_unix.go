//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

const supported = true

var advice = [...]struct {
	opt  Options
	flag int
	name string
}{
	{SequentialAccess, unix.MADV_SEQUENTIAL, "madvise(MADV_SEQUENTIAL)"},
	{RandomAccess, unix.MADV_RANDOM, "madvise(MADV_RANDOM)"},
}

func mapFile(f *os.File, size int, opt Options) ([]byte, error) {
	prot, flags := unix.PROT_READ, unix.MAP_SHARED
	if opt.Has(Writable) {
		prot |= unix.PROT_WRITE
	}
	if opt.Has(Prefault) {
		flags |= mapPopulate
	}
	b, err := unix.Mmap(int(f.Fd()), 0, size, prot, flags)
	if err != nil {
		return nil, os.NewSyscallError("mmap", err)
	}
	for _, a := range advice {
		if !opt.Has(a.opt) {
			continue
		}
		// kernels without madvise still map fine
		if err := unix.Madvise(b, a.flag); err != nil && !errors.Is(err, unix.ENOSYS) {
			unix.Munmap(b)
			return nil, os.NewSyscallError(a.name, err)
		}
		break
	}
	return b, nil
}

func unmapFile(b []byte) error {
	return os.NewSyscallError("munmap", unix.Munmap(b))
}
