package bdf

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMsgpack_Bytes(t *testing.T) {
	tests := []struct {
		text string
		hex  string
	}{
		{`undefined`, "c0"},
		{`true`, "c3"},
		{`5`, "d200000005"},
		{`-1B`, "d0ff"},
		{`7S`, "d10007"},
		{`1L`, "d30000000000000001"},
		{`"hi"`, "a26869"},
		{`[1B, "x"]`, "92d001a178"},
		{`{"a": 2B}`, "81a161d002"},
		{`short(1)`, "d50e0001"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			data := must(parse(t, tt.text).MarshalMsgpack())
			eq(t, hex.EncodeToString(data), tt.hex)
		})
	}
}

func TestMsgpack_Roundtrip(t *testing.T) {
	doc := parse(t, `{
		"b": true, "i": -3, "l": 5000000000L, "s": 2S, "y": -9B,
		"d": 0.5, "f": 1.5F, "str": "héllo", "u": undefined,
		"list": [[], {}, [1, [2]]],
		"arrays": [bool(true, false), int(1), long(-1), short(3), byte(4), double(0.25), float(2)]
	}`)
	data := must(doc.MarshalMsgpack())
	back := must(UnmarshalMsgpack(data))
	if !back.Equal(doc) {
		t.Fatalf("msgpack round-trip = %v, wanted %v", back, doc)
	}
	eq(t, back.String(), doc.String())
}

func TestMsgpack_GenericInput(t *testing.T) {
	data := must(msgpack.Marshal(map[string]any{
		"n":   []any{1, 300, int64(1) << 40, uint8(200)},
		"bin": []byte("raw"),
	}))
	doc := must(UnmarshalMsgpack(data))
	m, _ := doc.Root().Map()
	n, _ := m.Get("n")
	eq(t, n.String(), "[1I, 300I, 1099511627776L, 200I]")
	bin, _ := m.Get("bin")
	eq(t, bin.String(), `"raw"`)

	doc = must(UnmarshalMsgpack(must(hex.DecodeString("d60e00010002"))))
	eq(t, doc.String(), "short(1S, 2S)")
}

func TestMsgpack_Invalid(t *testing.T) {
	tests := []string{
		"d5020001",   // ext carrying a scalar type
		"d50e00",     // truncated ext payload
		"d40e00",     // odd-sized short array
		"81d00101",   // non-string key
		"92c0",       // truncated array
		"c1",         // never used
	}
	for _, h := range tests {
		if _, err := UnmarshalMsgpack(must(hex.DecodeString(h))); err == nil {
			t.Errorf("UnmarshalMsgpack(%s) succeeded, wanted error", h)
		}
	}
}

func TestValue_MsgpackInterfaces(t *testing.T) {
	doc := parse(t, `{"k": [1B, 2B]}`)
	m, _ := doc.Root().Map()
	k, _ := m.Get("k")
	data := must(msgpack.Marshal(k))
	eq(t, hex.EncodeToString(data), "92d001d002")

	other := NewDocument()
	v := other.New()
	ensure(msgpack.Unmarshal(data, v))
	eq(t, v.String(), "[1B, 2B]")
}

func TestMsgpack_MaxDepth(t *testing.T) {
	nested := func(n int) []byte {
		return append(bytes.Repeat([]byte{0x91}, n), 0xc0)
	}
	doc := must(UnmarshalMsgpack(nested(DefaultMaxDepth)))
	eq(t, doc.Root().Type(), TypeList)

	if _, err := UnmarshalMsgpack(nested(DefaultMaxDepth + 1)); err == nil {
		t.Errorf("UnmarshalMsgpack of %d nested arrays succeeded, wanted error", DefaultMaxDepth+1)
	}
}
