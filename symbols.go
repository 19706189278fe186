package bdf

import (
	"fmt"
	"iter"
)

// Location identifies an interned map key within one document.
type Location uint32

// SymbolTable assigns locations to map key names. Locations are handed out
// in first-use order starting from zero and are never reused, removed or
// renumbered, because the binary format and map comparison both refer to
// keys by location.
type SymbolTable struct {
	names  []string
	byName map[string]Location
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]Location)}
}

// Intern returns the location of name, registering it if it's new.
func (st *SymbolTable) Intern(name string) Location {
	if loc, ok := st.byName[name]; ok {
		return loc
	}
	if uint64(len(st.names)) >= maxLocations {
		panic(fmt.Sprintf("symbol table overflow registering %q", name))
	}
	loc := Location(len(st.names))
	st.names = append(st.names, name)
	st.byName[name] = loc
	return loc
}

// Location looks up name without registering it.
func (st *SymbolTable) Location(name string) (Location, bool) {
	loc, ok := st.byName[name]
	return loc, ok
}

// Name returns the key name registered at loc.
func (st *SymbolTable) Name(loc Location) (string, bool) {
	if !st.Has(loc) {
		return "", false
	}
	return st.names[loc], true
}

func (st *SymbolTable) mustName(loc Location) string {
	name, ok := st.Name(loc)
	if !ok {
		panic(fmt.Sprintf("location %d is not registered", loc))
	}
	return name
}

func (st *SymbolTable) Has(loc Location) bool {
	return uint64(loc) < uint64(len(st.names))
}

func (st *SymbolTable) Len() int {
	return len(st.names)
}

// All yields every registered key in location order.
func (st *SymbolTable) All() iter.Seq2[Location, string] {
	return func(yield func(Location, string) bool) {
		for i, name := range st.names {
			if !yield(Location(i), name) {
				return
			}
		}
	}
}

const maxLocations = 1 << 32

// keyWidthClass picks the document-wide width used for map key references
// given the number of registered locations.
func keyWidthClass(count int) byte {
	switch {
	case count < 256:
		return widthClass1
	case count <= 65536:
		return widthClass2
	default:
		return widthClass4
	}
}
