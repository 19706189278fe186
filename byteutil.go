package bdf

import (
	"encoding/binary"
	"io"
)

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

func grow(buf []byte, n int) (int, []byte) {
	off := len(buf)
	newLen := off + n
	buf = ensureCapacity(buf, newLen)
	return off, buf[:newLen]
}

// bytesBuilder is a growable io.Writer for output of unknown size.
type bytesBuilder struct {
	Buf []byte
}

var _ io.Writer = (*bytesBuilder)(nil)

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	off, buf := grow(bb.Buf, len(b))
	copy(buf[off:], b)
	bb.Buf = buf
	return len(b), nil
}

func (bb *bytesBuilder) WriteByte(v byte) error {
	off, buf := grow(bb.Buf, 1)
	buf[off] = v
	bb.Buf = buf
	return nil
}

func (bb *bytesBuilder) WriteString(s string) (int, error) {
	off, buf := grow(bb.Buf, len(s))
	copy(buf[off:], s)
	bb.Buf = buf
	return len(s), nil
}

// byteBuf writes into a buffer preallocated to the exact output size.
type byteBuf struct {
	Buf []byte
	Off int
}

func prealloc(buf []byte, n int) byteBuf {
	off, buf := grow(buf, n)
	return byteBuf{buf, off}
}

func (b *byteBuf) Trimmed() []byte {
	return b.Buf[:b.Off]
}

func (b *byteBuf) AppendRaw(v []byte) {
	copy(b.Buf[b.Off:], v)
	b.Off += len(v)
}

func (b *byteBuf) AppendString(v string) {
	copy(b.Buf[b.Off:], v)
	b.Off += len(v)
}

func (b *byteBuf) AppendByte(v byte) {
	b.Buf[b.Off] = v
	b.Off++
}

func (b *byteBuf) AppendUint16(v uint16) {
	binary.BigEndian.PutUint16(b.Buf[b.Off:], v)
	b.Off += 2
}

func (b *byteBuf) AppendUint32(v uint32) {
	binary.BigEndian.PutUint32(b.Buf[b.Off:], v)
	b.Off += 4
}

func (b *byteBuf) AppendUint64(v uint64) {
	binary.BigEndian.PutUint64(b.Buf[b.Off:], v)
	b.Off += 8
}

// AppendSized writes v using the width selected by a width class.
func (b *byteBuf) AppendSized(class byte, v uint32) {
	switch class {
	case widthClass1:
		b.AppendByte(byte(v))
	case widthClass2:
		b.AppendUint16(uint16(v))
	default:
		b.AppendUint32(v)
	}
}

func (b *byteBuf) AppendUvarint(v uint64) {
	b.Off += binary.PutUvarint(b.Buf[b.Off:], v)
}

func (b *byteBuf) AppendVarString(v string) {
	b.AppendUvarint(uint64(len(v)))
	b.AppendString(v)
}

func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// readSized reads a big-endian unsigned integer of width 1, 2 or 4.
func readSized(buf []byte, width int) uint32 {
	switch width {
	case 1:
		return uint32(buf[0])
	case 2:
		return uint32(binary.BigEndian.Uint16(buf))
	default:
		return binary.BigEndian.Uint32(buf)
	}
}
