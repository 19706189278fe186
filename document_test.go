package bdf

import (
	"reflect"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func eq[T comparable](t testing.TB, a, e T) {
	if a != e {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func assertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	fn()
}

func parse(t testing.TB, text string) *Document {
	t.Helper()
	doc, err := ParseText(text)
	if err != nil {
		t.Fatalf("ParseText(%q) failed: %v", text, err)
	}
	return doc
}

func TestDocument_New(t *testing.T) {
	doc := NewDocument()
	eq(t, doc.Root().Type(), TypeUndefined)
	eq(t, doc.Symbols().Len(), 0)
	eq(t, doc.Root().Document(), doc)
	eq(t, doc.String(), "undefined")
}

func TestDocument_ResetRoot(t *testing.T) {
	doc := parse(t, `{"a": [1, 2]}`)
	root := doc.ResetRoot()
	eq(t, root.Type(), TypeUndefined)
	eq(t, doc.Root(), root)
	// keys stay registered
	eq(t, doc.Symbols().Len(), 1)
}

func TestDocument_DetachedValues(t *testing.T) {
	doc := NewDocument()
	m := doc.Root().SetNewMap()
	v := doc.New().SetString("x")
	m.Set("k", v)

	// attaching the same value twice is a programming error
	assertPanics(t, func() { m.Set("other", v) })

	// as is attaching a value of another document
	foreign := NewDocument().New()
	assertPanics(t, func() { m.Set("f", foreign) })

	// a container cannot hold itself, directly or through a descendant
	x := doc.New()
	xl := x.SetNewList()
	assertPanics(t, func() { xl.Add(x) })
	eq(t, xl.Len(), 0)

	y := doc.New()
	ym := y.SetNewMap()
	assertPanics(t, func() { ym.Set("a", y) })
	eq(t, ym.Len(), 0)

	inner := xl.AddNew()
	innerMap := inner.SetNewMap()
	assertPanics(t, func() { innerMap.Set("up", x) })
	assertPanics(t, func() { inner.SetNewList().Add(x) })

	// once detached, a former child can take its old container
	z := doc.New()
	zl := z.SetNewList()
	child := zl.AddNew()
	ensure(zl.RemoveAt(0))
	child.SetNewList().Add(z)
	eq(t, child.String(), "[[]]")
}

func TestDocument_SetSameValue(t *testing.T) {
	doc := parse(t, `{"a": 1, "b": [2, 3]}`)
	m, _ := doc.Root().Map()
	a, _ := m.Get("a")
	m.Set("a", a)
	eq(t, doc.String(), `{"a": 1I, "b": [2I, 3I]}`)

	b, _ := m.Get("b")
	l, _ := b.List()
	first, _ := l.Get(0)
	ensure(l.Set(0, first))
	eq(t, doc.String(), `{"a": 1I, "b": [2I, 3I]}`)

	// the value is still owned and cannot go elsewhere
	assertPanics(t, func() { l.Add(first) })
}

func TestDocument_Equal(t *testing.T) {
	a := parse(t, `{"x": 1, "y": [true]}`)
	b := parse(t, `{"y": [true], "x": 1}`)
	if !a.Equal(b) {
		t.Errorf("documents with the same entries in different order are not equal")
	}
	c := parse(t, `{"x": 2, "y": [true]}`)
	eq(t, a.Compare(c), Less)
}
