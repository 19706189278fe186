// Package store keeps named bdf documents in a bbolt database.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/andreyvit/bdf"
	"go.etcd.io/bbolt"
)

const docsBucket = "docs"

type Options struct {
	// Compress stores payloads gzip-compressed at CompressionLevel
	// (0 means gzip's default level).
	Compress         bool
	CompressionLevel int

	// StrictSize rejects stored documents that do not decode exactly.
	StrictSize bool

	Logger    *slog.Logger
	IsTesting bool
	MmapSize  int
}

// Store is a collection of documents keyed by name. It is safe for
// concurrent use; writes are serialized by the backend.
type Store struct {
	st     storage
	opt    Options
	logger *slog.Logger

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Open opens or creates a bbolt-backed store at path.
func Open(path string, opt Options) (*Store, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	s, err := newStore(newBoltStorage(bdb), opt)
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory returns a transient store that lives in memory.
func OpenMemory(opt Options) (*Store, error) {
	return newStore(newMemStorage(), opt)
}

func newStore(st storage, opt Options) (*Store, error) {
	s := &Store{st: st, opt: opt, logger: opt.Logger}
	if s.logger == nil {
		s.logger = discardLogger
	}
	err := s.write(func(tx storageTx) error {
		_, err := tx.CreateBucket(docsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: init: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.st.Close()
}

func (s *Store) read(f func(tx storageTx) error) error {
	tx, err := s.st.BeginTx(false)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	s.ReadCount.Add(1)
	return f(tx)
}

func (s *Store) write(f func(tx storageTx) error) error {
	tx, err := s.st.BeginTx(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	s.WriteCount.Add(1)
	if err := f(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) decodeOptions() bdf.DecodeOptions {
	return bdf.DecodeOptions{StrictSize: s.opt.StrictSize, Logger: s.opt.Logger}
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("store: empty name: %w", ErrInvalidName)
	}
	return nil
}

// Put stores doc under name, replacing any previous document.
func (s *Store) Put(name string, doc *bdf.Document) error {
	if err := checkName(name); err != nil {
		return err
	}
	payload := doc.Marshal()
	flags := rfDefault
	if s.opt.Compress {
		z, err := bdf.Gzip(payload, s.opt.CompressionLevel)
		if err != nil {
			return fmt.Errorf("store: %s: %w", name, err)
		}
		payload, flags = z, flags|rfGzip
	}
	raw := appendRecord(nil, flags, payload)

	err := s.write(func(tx storageTx) error {
		return tx.Bucket(docsBucket).Put([]byte(name), raw)
	})
	if err != nil {
		return fmt.Errorf("store: put %s: %w", name, err)
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "store: put", slog.String("name", name), slog.Int("size", len(raw)), slog.Bool("gzip", flags&rfGzip != 0))
	return nil
}

// Get loads the document stored under name, or returns ErrNotFound.
func (s *Store) Get(name string) (*bdf.Document, error) {
	var doc *bdf.Document
	err := s.read(func(tx storageTx) error {
		raw := tx.Bucket(docsBucket).Get(unsafeBytesFromString(name))
		if raw == nil {
			return ErrNotFound
		}
		var err error
		doc, err = s.decode(name, raw)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", name, err)
	}
	return doc, nil
}

func (s *Store) decode(name string, raw []byte) (*bdf.Document, error) {
	var rec record
	if err := rec.decode(raw); err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "store: corrupt record", slog.String("name", name), hexAttr("head", raw[:min(len(raw), 16)]), slog.Any("err", err))
		return nil, err
	}
	return rec.document(s.decodeOptions())
}

// Delete removes the document stored under name, or returns ErrNotFound.
func (s *Store) Delete(name string) error {
	err := s.write(func(tx storageTx) error {
		b := tx.Bucket(docsBucket)
		key := []byte(name)
		if b.Get(key) == nil {
			return ErrNotFound
		}
		return b.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", name, err)
	}
	return nil
}

// Names returns the sorted names that start with prefix.
func (s *Store) Names(prefix string) ([]string, error) {
	var names []string
	err := s.read(func(tx storageTx) error {
		scan(tx.Bucket(docsBucket), prefix, func(k, _ []byte) bool {
			names = append(names, string(k))
			return true
		})
		return nil
	})
	return names, err
}

// Each calls fn for every document whose name starts with prefix, in name
// order, stopping at the first error. The documents are decoded inside a
// single read transaction.
func (s *Store) Each(prefix string, fn func(name string, doc *bdf.Document) error) error {
	return s.read(func(tx storageTx) error {
		var err error
		scan(tx.Bucket(docsBucket), prefix, func(k, v []byte) bool {
			name := string(k)
			var doc *bdf.Document
			doc, err = s.decode(name, v)
			if err != nil {
				err = fmt.Errorf("store: %s: %w", name, err)
				return false
			}
			err = fn(name, doc)
			return err == nil
		})
		return err
	})
}

func scan(b storageBucket, prefix string, f func(k, v []byte) bool) {
	p := []byte(prefix)
	c := b.Cursor()
	for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
		if !f(k, v) {
			return
		}
	}
}

type Stats struct {
	Documents  int
	DataSize   int64
	AllocSize  int64
	FileSize   int64
	ReadCount  uint64
	WriteCount uint64
}

func (s Stats) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d documents, %d bytes", s.Documents, s.DataSize)
	if s.FileSize > 0 {
		fmt.Fprintf(&buf, " (%d allocated, file %d)", s.AllocSize, s.FileSize)
	}
	fmt.Fprintf(&buf, ", %d reads, %d writes", s.ReadCount, s.WriteCount)
	return buf.String()
}

func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.read(func(tx storageTx) error {
		bs := tx.Bucket(docsBucket).Stats()
		st.Documents = bs.KeyN
		st.DataSize = bs.LeafInuse
		st.AllocSize = bs.TotalAlloc()
		st.FileSize = tx.Size()
		return nil
	})
	st.ReadCount = s.ReadCount.Load()
	st.WriteCount = s.WriteCount.Load()
	return st, err
}
