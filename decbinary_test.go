package bdf

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

var strict = DecodeOptions{StrictSize: true}

func decodeBoth(t testing.TB, data []byte) (lenient *Document, strictErr *FormatError) {
	t.Helper()
	lenient, err := UnmarshalWithOptions(data, DecodeOptions{})
	if err != nil {
		t.Fatalf("permissive decode failed: %v", err)
	}
	_, err = UnmarshalWithOptions(data, strict)
	if err == nil {
		t.Fatalf("strict decode of %x succeeded, wanted error", data)
	}
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("strict decode error is %T, wanted *FormatError", err)
	}
	if !errors.Is(err, ErrBinarySizeTagMismatch) {
		t.Fatalf("strict decode error kind is %v", fe.Kind)
	}
	return lenient, fe
}

func TestUnmarshal_Empty(t *testing.T) {
	doc, fe := decodeBoth(t, nil)
	eq(t, doc.Root().Type(), TypeUndefined)
	eq(t, doc.Symbols().Len(), 0)
	eq(t, fe.Offset, 0)
	eq(t, fe.Short(), "binary size tag mismatch at offset 0")
}

func TestUnmarshal_Truncated(t *testing.T) {
	data := parse(t, `[1, 2, 3]`).Marshal()
	for n := 1; n < len(data); n++ {
		doc, _ := decodeBoth(t, data[:n])
		eq(t, doc.Root().Type(), TypeUndefined)
	}
}

func TestUnmarshal_PartialList(t *testing.T) {
	data := parse(t, `[1, 2, 3]`).Marshal()
	eq(t, data[16], byte(0x26))
	data[16] = 0xFF

	doc, fe := decodeBoth(t, data)
	eq(t, doc.String(), "[1I, 2I]")
	eq(t, fe.Offset, 16)
	eq(t, strings.Contains(fe.Context, "\n"), false)
}

func TestUnmarshal_TrailingBytes(t *testing.T) {
	data := append(parse(t, `5`).Marshal(), 0)
	doc, fe := decodeBoth(t, data)
	eq(t, doc.String(), "5I")
	eq(t, fe.Offset, 8)
}

func TestUnmarshal_WideSizeField(t *testing.T) {
	data := unhex("02 00 02 00000009 00000005")
	doc, fe := decodeBoth(t, data)
	eq(t, doc.String(), "5I")
	eq(t, fe.Offset, 2)
}

func TestUnmarshal_BadScalarPayload(t *testing.T) {
	doc, fe := decodeBoth(t, unhex("02 00 26 05 000000"))
	eq(t, doc.Root().Type(), TypeUndefined)
	eq(t, fe.Offset, 4)
}

func TestUnmarshal_RaggedArray(t *testing.T) {
	doc, _ := decodeBoth(t, unhex("02 00 32 05 0001 ff"))
	a, ok := doc.Root().Int16Array()
	eq(t, ok, true)
	deepEqual(t, a, []int16{1})
}

func TestUnmarshal_UnknownKey(t *testing.T) {
	doc, fe := decodeBoth(t, unhex("02 02 0161 2e 06 95 03 01 05"))
	m, ok := doc.Root().Map()
	eq(t, ok, true)
	eq(t, m.Len(), 0)
	eq(t, fe.Offset, 9)
}

func TestUnmarshal_KeyTable(t *testing.T) {
	tests := []struct {
		name string
		hex  string
	}{
		{"bad class", "05 00 24 02"},
		{"short size", "01 00"},
		{"table overflow", "02 09 0161"},
		{"bad name length", "02 02 0561 24 02"},
		{"duplicate name", "02 04 0161 0161 24 02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := decodeBoth(t, unhex(tt.hex))
			eq(t, doc.Root().Type(), TypeUndefined)
		})
	}
}

func TestUnmarshal_KeysOnlyInTable(t *testing.T) {
	// a table may register names no map uses
	doc, err := UnmarshalWithOptions(unhex("02 04 0161 0162 26 06 00000007"), strict)
	ensure(err)
	eq(t, doc.Symbols().Len(), 2)
	eq(t, doc.String(), "7I")
}

func TestUnmarshal_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	data := append(parse(t, `5`).Marshal(), 0, 0)
	doc, err := UnmarshalWithOptions(data, DecodeOptions{Logger: logger})
	ensure(err)
	eq(t, doc.String(), "5I")
	if !strings.Contains(buf.String(), "2 trailing bytes") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestUnmarshal_Detached(t *testing.T) {
	data := parse(t, `{"a": {"b": [1B]}}`).Marshal()
	doc := Unmarshal(data)

	// decoded strings and arrays do not alias the input
	for i := range data {
		data[i] = 0
	}
	eq(t, doc.String(), `{"a": {"b": [1B]}}`)
	doc.Root().SetNewList().AddNew().SetString("x")
	eq(t, doc.String(), `["x"]`)
}

func TestUnmarshalBinary_Strict(t *testing.T) {
	var doc Document
	err := doc.UnmarshalBinary(unhex("02 00 26 06 00000005 00"))
	eq(t, errors.Is(err, ErrBinarySizeTagMismatch), true)
}

func TestDecodeNode(t *testing.T) {
	doc := parse(t, `{"x": 1B, "y": 2B}`)
	yLoc, _ := doc.Symbols().Location("y")

	other := NewDocument()
	other.Symbols().Intern("x")
	other.Symbols().Intern("y")
	node := EncodeNode(doc.Root())

	v, err := other.DecodeNodeWithOptions(node, strict)
	ensure(err)
	m, _ := v.Map()
	got, ok := m.GetLocation(yLoc)
	eq(t, ok, true)
	eq(t, got.String(), "2B")

	// locations unknown to the receiving document stop decoding
	empty := NewDocument()
	_, err = empty.DecodeNodeWithOptions(node, strict)
	eq(t, errors.Is(err, ErrBinarySizeTagMismatch), true)
	eq(t, empty.DecodeNode(nil).Type(), TypeUndefined)
}

func TestUnmarshal_MaxDepth(t *testing.T) {
	data := parse(t, `[[[1]]]`).Marshal()

	doc := must(UnmarshalWithOptions(data, DecodeOptions{StrictSize: true, MaxDepth: 3}))
	eq(t, doc.String(), "[[[1I]]]")

	doc = must(UnmarshalWithOptions(data, DecodeOptions{MaxDepth: 2}))
	eq(t, doc.String(), "[[]]")

	_, err := UnmarshalWithOptions(data, DecodeOptions{StrictSize: true, MaxDepth: 2})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("strict decode error is %T: %v", err, err)
	}
	eq(t, fe.Kind, ErrBinarySizeTagMismatch)
	eq(t, fe.Offset, 6)
}

func TestUnmarshal_DefaultMaxDepth(t *testing.T) {
	nest := func(n int) *Document {
		doc := NewDocument()
		v := doc.Root()
		for range n {
			v = v.SetNewList().AddNew()
		}
		return doc
	}

	data := nest(DefaultMaxDepth).Marshal()
	must(UnmarshalWithOptions(data, strict))

	data = nest(DefaultMaxDepth + 1).Marshal()
	doc := Unmarshal(data)
	eq(t, doc.Root().Type(), TypeList)
	_, err := UnmarshalWithOptions(data, strict)
	eq(t, errors.Is(err, ErrBinarySizeTagMismatch), true)
}

func TestUnmarshalBinary_KeepsSymbols(t *testing.T) {
	doc := NewDocument()
	kept := doc.New()
	kept.SetNewMap().Set("zzz", doc.New().SetInt32(1))

	data := parse(t, `{"a": {"zzz": 2I, "b": 3I}}`).Marshal()
	ensure(doc.UnmarshalBinary(data))

	eq(t, doc.String(), `{"a": {"zzz": 2I, "b": 3I}}`)
	eq(t, kept.String(), `{"zzz": 1I}`)
	loc, _ := doc.Symbols().Location("zzz")
	eq(t, loc, Location(0))
	eq(t, doc.Symbols().Len(), 3)

	// the adopted tree belongs to doc
	m, _ := doc.Root().Map()
	a, _ := m.Get("a")
	am, _ := a.Map()
	b, ok := am.Get("b")
	eq(t, ok, true)
	eq(t, b.Document(), doc)
	am.Set("c", doc.New().SetString("x"))
	eq(t, doc.String(), `{"a": {"zzz": 2I, "b": 3I, "c": "x"}}`)

	var fresh Document
	ensure(fresh.UnmarshalBinary(data))
	eq(t, fresh.Equal(doc), false)
	eq(t, fresh.String(), `{"a": {"zzz": 2I, "b": 3I}}`)
}
