package store

import (
	"encoding/binary"
	"fmt"

	"github.com/andreyvit/bdf"
	"github.com/cespare/xxhash/v2"
)

type recordFlags uint64

const (
	rfVerBit0 = recordFlags(1 << iota)
	rfVerBit1
	rfVerBit2
	rfVerBit3
	rfCompressionBit0

	rfVerMask       = (rfVerBit0 | rfVerBit1 | rfVerBit2 | rfVerBit3)
	rfVer1          = rfVerBit0
	rfGzip          = rfCompressionBit0
	rfSupportedMask = (rfVer1 | rfGzip)
	rfDefault       = rfVer1

	checksumSize  = 8
	minRecordSize = 2 + checksumSize
)

func (rf recordFlags) ver() recordFlags {
	return rf & rfVerMask
}

// record is a stored document: uvarint flags, uvarint payload size, 8-byte
// big-endian xxhash64 of the payload, payload. The payload is the binary
// document, gzip-compressed when rfGzip is set.
type record struct {
	Flags   recordFlags
	Payload []byte
}

func appendRecord(buf []byte, flags recordFlags, payload []byte) []byte {
	if (flags &^ rfSupportedMask) != 0 {
		panic(fmt.Errorf("invalid flags %x", flags))
	}
	buf = appendUvarint(buf, uint64(flags))
	buf = appendUvarint(buf, uint64(len(payload)))
	buf = binary.BigEndian.AppendUint64(buf, xxhash.Sum64(payload))
	return append(buf, payload...)
}

func (rec *record) decode(data []byte) error {
	if len(data) < minRecordSize {
		return dataErrf(data, 0, nil, "invalid record: at least %d bytes required", minRecordSize)
	}
	d := makeByteDecoder(data)

	v, err := d.Uvarint()
	if err != nil {
		return err
	}
	flags := recordFlags(v)
	if (flags &^ rfSupportedMask) != 0 {
		return dataErrf(data, 0, nil, "invalid record: unsupported flags %x", v)
	}
	if flags.ver() != rfVer1 {
		return dataErrf(data, 0, nil, "invalid record: unsupported version %d", flags.ver())
	}
	rec.Flags = flags

	size, err := d.Uvarinti()
	if err != nil {
		return err
	}
	sum, err := d.Uint64()
	if err != nil {
		return err
	}
	off := d.Off()
	if len(d.Buf) != size {
		return dataErrf(data, off, nil, "invalid record: got %d bytes of payload, expected %d bytes", len(d.Buf), size)
	}
	if actual := xxhash.Sum64(d.Buf); actual != sum {
		return dataErrf(data, off, nil, "invalid record: checksum %016x, expected %016x", actual, sum)
	}
	rec.Payload = d.Buf
	return nil
}

func (rec *record) document(opt bdf.DecodeOptions) (*bdf.Document, error) {
	if rec.Flags&rfGzip != 0 {
		return bdf.UnmarshalGzip(rec.Payload, opt)
	}
	return bdf.UnmarshalWithOptions(rec.Payload, opt)
}
