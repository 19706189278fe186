package bdf

import (
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want Ordering
	}{
		{`[0.5, 0.7, 2.0]`, `[0.5, 0.8, 1.7]`, Less},
		{`[1, 2, 3, 4, 5]`, `[1, 2, 3, 4]`, Greater},
		{`[1, 2]`, `[1, 2]`, Equal},
		{`[]`, `[1]`, Less},
		{`1`, `1L`, Unordered},
		{`1B`, `2B`, Less},
		{`-1S`, `-2S`, Greater},
		{`false`, `true`, Less},
		{`"abc"`, `"abd"`, Less},
		{`"b"`, `"abc"`, Greater},
		{`undefined`, `undefined`, Equal},
		{`NaN`, `NaN`, Unordered},
		{`NaN`, `1.0`, Unordered},
		{`1.5F`, `1.25F`, Greater},
		{`int(1, 2)`, `int(1, 3)`, Less},
		{`int(1, 2)`, `int(1)`, Greater},
		{`double(1, NaN)`, `double(1, 2)`, Unordered},
		{`bool(false, true)`, `bool(true)`, Less},
		{`[1, "x"]`, `[1, 2]`, Unordered},
		{`{"a": 1, "b": 2}`, `{"b": 2, "a": 1}`, Equal},
		{`{"a": 1}`, `{"a": 1, "b": 2}`, Less},
		{`{"a": 3}`, `{"a": 1, "b": 2}`, Greater},
		{`{"x": 1}`, `{"y": 2}`, Equal},
		{`{"x": 1}`, `{"y": 2, "z": 3}`, Less},
	}
	for _, tt := range tests {
		a, b := parse(t, tt.a), parse(t, tt.b)
		if got := Compare(a.Root(), b.Root()); got != tt.want {
			t.Errorf("Compare(%s, %s) = %v, wanted %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompare_MapsSameDocument(t *testing.T) {
	doc := parse(t, `[{"b": 1, "a": 5}, {"a": 4, "b": 2}]`)
	l, _ := doc.Root().List()
	x, _ := l.Get(0)
	y, _ := l.Get(1)
	// "b" has the lower location, so it decides
	eq(t, x.Compare(y), Less)
	eq(t, y.Compare(x), Greater)
	eq(t, x.Equal(x), true)
}

func TestCompare_CrossDocumentKeys(t *testing.T) {
	left := parse(t, `{"a": 1, "b": 9}`)
	right := NewDocument()
	m := right.Root().SetNewMap()
	// register "b" first so locations differ between the documents
	m.Set("b", right.New().SetInt32(1))
	m.Set("a", right.New().SetInt32(1))

	// compared in left's location order: "a" (equal), then "b" (9 > 1)
	eq(t, left.Compare(right), Greater)
}

func TestOrdering_String(t *testing.T) {
	eq(t, Less.String(), "less")
	eq(t, Equal.String(), "equal")
	eq(t, Greater.String(), "greater")
	eq(t, Unordered.String(), "unordered")
}

func TestCompare_Floats(t *testing.T) {
	doc := NewDocument()
	a := doc.New().SetFloat64(math.Inf(-1))
	b := doc.New().SetFloat64(0)
	eq(t, a.Compare(b), Less)
	c := doc.New().SetFloat32Array([]float32{1, float32(math.NaN())})
	d := doc.New().SetFloat32Array([]float32{2, 0})
	eq(t, c.Compare(d), Less)
}
