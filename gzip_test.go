package bdf

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestGzip(t *testing.T) {
	data := bytes.Repeat([]byte("bdf "), 1000)
	for _, level := range []int{0, gzip.BestSpeed, gzip.BestCompression} {
		z := must(Gzip(data, level))
		eq(t, IsGzip(z), true)
		if len(z) >= len(data) {
			t.Errorf("level %d: %d bytes compressed to %d", level, len(data), len(z))
		}
		deepEqual(t, must(Gunzip(z)), data)
	}
	eq(t, IsGzip(data), false)
	eq(t, IsGzip([]byte{0x1f}), false)
}

func TestGzip_Errors(t *testing.T) {
	_, err := Gzip([]byte("x"), 42)
	if err == nil {
		t.Errorf("Gzip with level 42 succeeded")
	}
	_, err = Gunzip([]byte{0x1f, 0x8b, 0, 0})
	if err == nil {
		t.Errorf("Gunzip of a broken header succeeded")
	}
	z := must(Gzip([]byte("hello world"), 0))
	_, err = Gunzip(z[:len(z)-4])
	if err == nil {
		t.Errorf("Gunzip of a truncated stream succeeded")
	}
}

func TestMarshalGzip(t *testing.T) {
	doc := parse(t, `{"list": [1, 2, 3], "name": "compressed"}`)
	z := must(doc.MarshalGzip(0))
	back := must(UnmarshalGzip(z, DecodeOptions{StrictSize: true}))
	eq(t, back.String(), doc.String())

	_, err := UnmarshalGzip(doc.Marshal(), DecodeOptions{})
	if err == nil {
		t.Errorf("UnmarshalGzip of plain binary succeeded")
	}
}
