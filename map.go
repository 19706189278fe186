package bdf

import (
	"fmt"
	"iter"
	"slices"
)

// Map is a collection of values keyed by interned key locations. Iteration
// follows insertion order, which is unrelated to the numeric locations.
//
// String-keyed lookups go through the document's SymbolTable. Get never
// registers a key; Set and GetOrInsert do.
type Map struct {
	doc     *Document
	owner   *Value
	entries []mapEntry
	index   map[Location]int
}

type mapEntry struct {
	key Location
	val *Value
}

func newMap(doc *Document, owner *Value) *Map {
	return &Map{doc: doc, owner: owner}
}

func (m *Map) Len() int {
	return len(m.entries)
}

func (m *Map) slot(loc Location) (int, bool) {
	i, ok := m.index[loc]
	return i, ok
}

func (m *Map) Has(name string) bool {
	loc, ok := m.doc.syms.Location(name)
	return ok && m.HasLocation(loc)
}

func (m *Map) HasLocation(loc Location) bool {
	_, ok := m.slot(loc)
	return ok
}

func (m *Map) Get(name string) (*Value, bool) {
	loc, ok := m.doc.syms.Location(name)
	if !ok {
		return nil, false
	}
	return m.GetLocation(loc)
}

func (m *Map) GetLocation(loc Location) (*Value, bool) {
	i, ok := m.slot(loc)
	if !ok {
		return nil, false
	}
	return m.entries[i].val, true
}

// Set stores v under name, replacing (and releasing) any previous value
// while keeping the key's position.
func (m *Map) Set(name string, v *Value) *Map {
	return m.SetLocation(m.doc.syms.Intern(name), v)
}

// SetLocation is Set for an already registered location.
func (m *Map) SetLocation(loc Location, v *Value) *Map {
	if !m.doc.syms.Has(loc) {
		panic(fmt.Sprintf("bdf: location %d is not registered", loc))
	}
	i, ok := m.slot(loc)
	if ok && m.entries[i].val == v {
		return m
	}
	v.attach(m.doc, m.owner)
	if ok {
		m.entries[i].val.detach()
		m.entries[i].val = v
		return m
	}
	if m.index == nil {
		m.index = make(map[Location]int)
	}
	m.index[loc] = len(m.entries)
	m.entries = append(m.entries, mapEntry{loc, v})
	return m
}

// GetOrInsert returns the value stored under name, inserting a new
// Undefined value first when the key is missing.
func (m *Map) GetOrInsert(name string) *Value {
	loc := m.doc.syms.Intern(name)
	if v, ok := m.GetLocation(loc); ok {
		return v
	}
	v := m.doc.New()
	m.SetLocation(loc, v)
	return v
}

// Pop removes the entry for name and returns its detached value.
func (m *Map) Pop(name string) (*Value, bool) {
	loc, ok := m.doc.syms.Location(name)
	if !ok {
		return nil, false
	}
	return m.PopLocation(loc)
}

func (m *Map) PopLocation(loc Location) (*Value, bool) {
	i, ok := m.slot(loc)
	if !ok {
		return nil, false
	}
	v := m.entries[i].val
	m.entries = slices.Delete(m.entries, i, i+1)
	delete(m.index, loc)
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].key] = j
	}
	v.detach()
	return v, true
}

func (m *Map) Remove(name string) bool {
	_, ok := m.Pop(name)
	return ok
}

func (m *Map) RemoveLocation(loc Location) bool {
	_, ok := m.PopLocation(loc)
	return ok
}

// Keys returns key names in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = m.doc.syms.mustName(e.key)
	}
	return keys
}

// Locations returns key locations in insertion order.
func (m *Map) Locations() []Location {
	locs := make([]Location, len(m.entries))
	for i, e := range m.entries {
		locs[i] = e.key
	}
	return locs
}

func (m *Map) Clear() *Map {
	m.releaseAll()
	m.entries, m.index = nil, nil
	return m
}

func (m *Map) releaseAll() {
	for _, e := range m.entries {
		e.val.detach()
	}
}

// All yields key names and values in insertion order.
func (m *Map) All() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		for _, e := range m.entries {
			if !yield(m.doc.syms.mustName(e.key), e.val) {
				return
			}
		}
	}
}

// Entries yields key locations and values in insertion order.
func (m *Map) Entries() iter.Seq2[Location, *Value] {
	return func(yield func(Location, *Value) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}
