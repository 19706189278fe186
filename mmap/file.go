package mmap

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a whole-file memory mapping.
type File struct {
	f    *os.File
	data []byte
	opt  Options
}

// Open maps the file at path. Empty files are not mapped; Bytes returns an
// empty slice for them.
func Open(path string, opt Options) (*File, error) {
	flag := os.O_RDONLY
	if opt.Has(Writable) {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := fi.Size()
	if size != int64(int(size)) {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %d bytes do not fit in the address space", path, size)
	}
	m := &File{f: f, opt: opt}
	if size > 0 {
		m.data, err = mapFile(f, int(size), opt)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mmap %s: %w", path, err)
		}
	}
	return m, nil
}

// Bytes returns the mapped contents. The slice is invalid after Close.
func (m *File) Bytes() []byte {
	return m.data
}

func (m *File) Len() int {
	return len(m.data)
}

// Sync flushes modifications of a writable mapping to disk. Errors are not
// recoverable: the kernel may already have dropped the dirty pages.
func (m *File) Sync() error {
	if !m.opt.Has(Writable) {
		return nil
	}
	return syncData(m.f, m.data)
}

func (m *File) Close() error {
	var err error
	if m.data != nil {
		err = unmapFile(m.data)
		m.data = nil
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteFile durably replaces the file at path with data. The data goes into
// a temporary file in the same directory (through a mapping where
// supported), is synced, and is renamed over path.
func WriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()
	if err = f.Chmod(perm); err != nil {
		return err
	}
	if err = writeData(f, data); err != nil {
		return err
	}
	if err = syncData(f, nil); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeData(f *os.File, data []byte) error {
	if !supported || len(data) == 0 {
		_, err := f.Write(data)
		return err
	}
	if err := f.Truncate(int64(len(data))); err != nil {
		return err
	}
	mapping, err := mapFile(f, len(data), Writable)
	if err != nil {
		return err
	}
	copy(mapping, data)
	err = syncData(f, mapping)
	if uerr := unmapFile(mapping); err == nil {
		err = uerr
	}
	return err
}
