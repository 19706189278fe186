package bdf

import (
	"testing"
)

func TestMap_SetGet(t *testing.T) {
	doc := NewDocument()
	m := doc.Root().SetNewMap()
	m.Set("b", doc.New().SetInt32(1))
	m.Set("a", doc.New().SetInt32(2))

	eq(t, m.Len(), 2)
	deepEqual(t, m.Keys(), []string{"b", "a"})
	deepEqual(t, m.Locations(), []Location{0, 1})

	v, ok := m.Get("a")
	eq(t, ok, true)
	n, _ := v.Int32()
	eq(t, n, int32(2))

	// replacing keeps the position
	m.Set("b", doc.New().SetString("x"))
	deepEqual(t, m.Keys(), []string{"b", "a"})
	v, _ = m.Get("b")
	s, _ := v.Str()
	eq(t, s, "x")
}

func TestMap_GetDoesNotIntern(t *testing.T) {
	doc := NewDocument()
	m := doc.Root().SetNewMap()
	_, ok := m.Get("missing")
	eq(t, ok, false)
	eq(t, m.Has("missing"), false)
	eq(t, doc.Symbols().Len(), 0)

	v := m.GetOrInsert("missing")
	eq(t, v.IsDefined(), false)
	eq(t, doc.Symbols().Len(), 1)
	eq(t, m.GetOrInsert("missing"), v)
}

func TestMap_SharedLocations(t *testing.T) {
	doc := NewDocument()
	l := doc.Root().SetNewList()
	m1 := l.AddNew().SetNewMap()
	m2 := l.AddNew().SetNewMap()
	m1.Set("id", doc.New().SetInt32(1))
	m2.Set("id", doc.New().SetInt32(2))
	eq(t, doc.Symbols().Len(), 1)
	eq(t, m2.HasLocation(m1.Locations()[0]), true)
}

func TestMap_PopRemove(t *testing.T) {
	doc := NewDocument()
	m := doc.Root().SetNewMap()
	for _, k := range []string{"a", "b", "c", "d"} {
		m.Set(k, doc.New().SetString(k))
	}

	popped, ok := m.Pop("b")
	eq(t, ok, true)
	s, _ := popped.Str()
	eq(t, s, "b")
	deepEqual(t, m.Keys(), []string{"a", "c", "d"})

	// later entries are still found after the shift
	v, ok := m.Get("d")
	eq(t, ok, true)
	s, _ = v.Str()
	eq(t, s, "d")

	eq(t, m.Remove("a"), true)
	eq(t, m.Remove("a"), false)
	eq(t, m.Remove("never"), false)
	deepEqual(t, m.Keys(), []string{"c", "d"})

	// popped values are detached and reusable
	m.Set("b2", popped)

	// locations survive removal
	loc, _ := doc.Symbols().Location("a")
	eq(t, loc, Location(0))
}

func TestMap_SetLocationUnregistered(t *testing.T) {
	doc := NewDocument()
	m := doc.Root().SetNewMap()
	assertPanics(t, func() { m.SetLocation(3, doc.New()) })
}

func TestMap_ClearAndIterate(t *testing.T) {
	doc := NewDocument()
	m := doc.Root().SetNewMap()
	m.Set("x", doc.New().SetInt32(1))
	m.Set("y", doc.New().SetInt32(2))

	var keys []string
	for k, v := range m.All() {
		keys = append(keys, k+"="+v.String())
	}
	deepEqual(t, keys, []string{"x=1I", "y=2I"})

	var locs []Location
	for loc := range m.Entries() {
		locs = append(locs, loc)
	}
	deepEqual(t, locs, []Location{0, 1})

	m.Clear()
	eq(t, m.Len(), 0)
	eq(t, m.Has("x"), false)
	m.Set("x", doc.New())
	eq(t, m.Len(), 1)
}
