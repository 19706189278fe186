package bdf

import (
	"reflect"
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	var bb bytesBuilder
	_, _ = bb.Write([]byte{1, 2})
	_ = bb.WriteByte(3)
	_, _ = bb.WriteString("ab")
	if !reflect.DeepEqual(bb.Buf, []byte{1, 2, 3, 'a', 'b'}) {
		t.Fatalf("bb.Buf = %x, wanted 010203 6162", bb.Buf)
	}
}

func TestByteBuf_AppendAndOff(t *testing.T) {
	b := prealloc(nil, 8)
	if b.Off != 0 || len(b.Buf) != 8 {
		t.Fatalf("prealloc = (off=%d, len=%d), wanted (0, 8)", b.Off, len(b.Buf))
	}

	b.AppendByte(1)
	b.AppendRaw([]byte{2, 3})
	if off := b.Off; off != 3 {
		t.Fatalf("Off = %d, wanted 3", off)
	}
	if got := b.Trimmed(); !reflect.DeepEqual(got, []byte{1, 2, 3}) {
		t.Fatalf("Trimmed = %x, wanted 010203", got)
	}
}

func TestByteBuf_PreallocAppends(t *testing.T) {
	b := prealloc([]byte{0xEE}, 4)
	b.AppendUint16(0x0102)
	b.AppendByte(3)
	b.AppendByte(4)
	if got := b.Trimmed(); !reflect.DeepEqual(got, []byte{0xEE, 1, 2, 3, 4}) {
		t.Fatalf("Trimmed = %x, wanted ee01020304", got)
	}
}

func TestByteBuf_AppendSized(t *testing.T) {
	tests := []struct {
		class byte
		v     uint32
		want  []byte
	}{
		{widthClass1, 0xAB, []byte{0xAB}},
		{widthClass2, 0x0102, []byte{1, 2}},
		{widthClass4, 0x01020304, []byte{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		b := prealloc(nil, 4)
		b.AppendSized(tt.class, tt.v)
		got := b.Trimmed()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("AppendSized(%d, %x) = %x, wanted %x", tt.class, tt.v, got, tt.want)
		}
		if r := readSized(got, len(got)); r != tt.v {
			t.Errorf("readSized(%x) = %x, wanted %x", got, r, tt.v)
		}
	}
}

func TestByteBuf_VarString(t *testing.T) {
	s := string(make([]byte, 200))
	n := uvarintLen(uint64(len(s))) + len(s)
	if n != 202 {
		t.Fatalf("size = %d, wanted 202", n)
	}
	b := prealloc(nil, n)
	b.AppendVarString(s)
	got := b.Trimmed()
	if len(got) != n || got[0] != 0xC8 || got[1] != 0x01 {
		t.Fatalf("AppendVarString header = %x, wanted c801", got[:2])
	}
}

func TestUvarintLen(t *testing.T) {
	for _, tt := range []struct {
		v    uint64
		want int
	}{{0, 1}, {127, 1}, {128, 2}, {16383, 2}, {16384, 3}, {1 << 63, 10}} {
		if got := uvarintLen(tt.v); got != tt.want {
			t.Errorf("uvarintLen(%d) = %d, wanted %d", tt.v, got, tt.want)
		}
	}
}
