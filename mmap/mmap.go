// Package mmap maps whole files into memory, so that binary documents can be
// decoded without an intermediate copy, and writes files durably.
//
// On systems without mmap a File holds a heap copy of the contents and
// writable mappings are not available.
package mmap

type Options uint

const (
	// Writable maps the file for writing; changes reach the file on Sync or
	// Close.
	Writable Options = 1 << iota

	// SequentialAccess asks for aggressive read-ahead (MADV_SEQUENTIAL).
	SequentialAccess

	// RandomAccess asks for little read-ahead (MADV_RANDOM). Ignored when
	// combined with SequentialAccess.
	RandomAccess

	// Prefault reads the whole file in at map time (MAP_POPULATE on Linux).
	Prefault
)

func (o Options) Has(v Options) bool {
	return o&v != 0
}

// Supported reports whether this platform really maps files.
const Supported = supported
