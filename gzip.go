package bdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip reports whether data starts with the gzip magic number.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// Gzip compresses data at one of the gzip.*Compression levels. Level 0 means
// gzip.DefaultCompression, so stored output is never left uncompressed by
// accident.
func Gzip(data []byte, level int) ([]byte, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var bb bytesBuilder
	w, err := gzip.NewWriterLevel(&bb, level)
	if err != nil {
		return nil, fmt.Errorf("bdf: gzip: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("bdf: gzip: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("bdf: gzip: %w", err)
	}
	return bb.Buf, nil
}

// Gunzip decompresses a gzip stream, including multi-member streams.
func Gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("bdf: gunzip: %w", err)
	}
	defer r.Close()
	var bb bytesBuilder
	bb.Buf = make([]byte, 0, 4*len(data))
	if _, err := io.Copy(&bb, r); err != nil {
		return nil, fmt.Errorf("bdf: gunzip: %w", err)
	}
	return bb.Buf, nil
}

// MarshalGzip returns the gzip-compressed binary form of the document.
func (d *Document) MarshalGzip(level int) ([]byte, error) {
	return Gzip(d.Marshal(), level)
}

// UnmarshalGzip decompresses data and decodes the binary document inside.
func UnmarshalGzip(data []byte, opt DecodeOptions) (*Document, error) {
	raw, err := Gunzip(data)
	if err != nil {
		return nil, err
	}
	return UnmarshalWithOptions(raw, opt)
}
