//go:build !unix

package mmap

import (
	"errors"
	"os"
)

const supported = false

func mapFile(f *os.File, size int, opt Options) ([]byte, error) {
	if opt.Has(Writable) {
		return nil, errors.ErrUnsupported
	}
	b := make([]byte, size)
	if n, err := f.ReadAt(b, 0); n < size {
		return nil, err
	}
	return b, nil
}

func unmapFile([]byte) error {
	return nil
}
