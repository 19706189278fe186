package store

// storage holds the stored records: bbolt on disk, or a sorted in-memory
// copy for tests.
type storage interface {
	BeginTx(writable bool) (storageTx, error)
	Close() error
}

// storageTx sees a consistent snapshot of the buckets. Rollback after
// Commit is a no-op.
type storageTx interface {
	// Bucket returns nil when the bucket does not exist.
	Bucket(name string) storageBucket
	CreateBucket(name string) (storageBucket, error)
	Commit() error
	Rollback() error

	// Size is the database file size, or 0 for backends without a file.
	Size() int64
}

// storageBucket maps document names to records. Values returned by Get and
// by cursors are only valid until the transaction ends.
type storageBucket interface {
	// Get returns nil for a missing name.
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error
	Cursor() storageCursor
	Stats() bucketStats
}

// bucketStats reports bucket usage. Backends that do not track page
// allocation leave the Alloc fields equal to LeafInuse.
type bucketStats struct {
	KeyN        int
	LeafInuse   int64
	LeafAlloc   int64
	BranchAlloc int64
}

func (s bucketStats) TotalAlloc() int64 { return s.BranchAlloc + s.LeafAlloc }

// storageCursor walks a bucket in name order. Both methods return a nil key
// past the end.
type storageCursor interface {
	Seek(seek []byte) (key, value []byte)
	Next() (key, value []byte)
}
