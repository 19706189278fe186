package bdf

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotFound        = errors.New("not found")
)

// Value is a node of a document tree. It holds exactly one representation
// at a time, selected by Type; setting a value of a different type discards
// the previous payload.
//
// A Value owns its List or Map payload and, through it, every descendant.
// Values are bound to the Document that created them and may only be
// attached to containers of that document, and only once.
type Value struct {
	doc   *Document
	typ   Type
	bits  uint64 // booleans, integers and IEEE bits of floats
	str   string
	arr   any // []bool, []int32, []int64, []int16, []int8, []float64, []float32
	list  *List
	dict  *Map
	owned bool

	parent *Value // container holding v, nil for roots and detached values
}

func (v *Value) Type() Type {
	return v.typ
}

func (v *Value) IsDefined() bool {
	return v.typ != TypeUndefined
}

// Document returns the document this value belongs to.
func (v *Value) Document() *Document {
	return v.doc
}

// NewValue returns a detached Undefined value bound to the same document.
func (v *Value) NewValue() *Value {
	return v.mustDoc().New()
}

func (v *Value) mustDoc() *Document {
	if v.doc == nil {
		panic("bdf: value is not bound to a document")
	}
	return v.doc
}

// Reset turns v into Undefined, dropping its payload.
func (v *Value) Reset() {
	v.assign(TypeUndefined)
}

// assign re-types v in a single assignment. Children of a dropped container
// are released so that nothing observes a half-replaced payload.
func (v *Value) assign(t Type) {
	v.release()
	*v = Value{doc: v.doc, owned: v.owned, parent: v.parent, typ: t}
}

func (v *Value) release() {
	switch v.typ {
	case TypeList:
		v.list.releaseAll()
	case TypeMap:
		v.dict.releaseAll()
	}
}

func (v *Value) Bool() (bool, bool) {
	if v.typ != TypeBoolean {
		return false, false
	}
	return v.bits != 0, true
}

func (v *Value) SetBool(b bool) *Value {
	v.assign(TypeBoolean)
	if b {
		v.bits = 1
	}
	return v
}

func (v *Value) Int32() (int32, bool) {
	if v.typ != TypeInteger {
		return 0, false
	}
	return int32(v.bits), true
}

func (v *Value) SetInt32(n int32) *Value {
	v.assign(TypeInteger)
	v.bits = uint64(int64(n))
	return v
}

func (v *Value) Int64() (int64, bool) {
	if v.typ != TypeLong {
		return 0, false
	}
	return int64(v.bits), true
}

func (v *Value) SetInt64(n int64) *Value {
	v.assign(TypeLong)
	v.bits = uint64(n)
	return v
}

func (v *Value) Int16() (int16, bool) {
	if v.typ != TypeShort {
		return 0, false
	}
	return int16(v.bits), true
}

func (v *Value) SetInt16(n int16) *Value {
	v.assign(TypeShort)
	v.bits = uint64(int64(n))
	return v
}

func (v *Value) Int8() (int8, bool) {
	if v.typ != TypeByte {
		return 0, false
	}
	return int8(v.bits), true
}

func (v *Value) SetInt8(n int8) *Value {
	v.assign(TypeByte)
	v.bits = uint64(int64(n))
	return v
}

func (v *Value) Float64() (float64, bool) {
	if v.typ != TypeDouble {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

func (v *Value) SetFloat64(f float64) *Value {
	v.assign(TypeDouble)
	v.bits = math.Float64bits(f)
	return v
}

func (v *Value) Float32() (float32, bool) {
	if v.typ != TypeFloat {
		return 0, false
	}
	return math.Float32frombits(uint32(v.bits)), true
}

func (v *Value) SetFloat32(f float32) *Value {
	v.assign(TypeFloat)
	v.bits = uint64(math.Float32bits(f))
	return v
}

// Str returns the payload of a String value. (String returns the text form.)
func (v *Value) Str() (string, bool) {
	if v.typ != TypeString {
		return "", false
	}
	return v.str, true
}

func (v *Value) SetString(s string) *Value {
	v.assign(TypeString)
	v.str = s
	return v
}

// SetAutoInt stores n using the narrowest integer type that can hold it.
func (v *Value) SetAutoInt(n int64) *Value {
	switch {
	case n >= math.MinInt8 && n <= math.MaxInt8:
		return v.SetInt8(int8(n))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		return v.SetInt16(int16(n))
	case n >= math.MinInt32 && n <= math.MaxInt32:
		return v.SetInt32(int32(n))
	default:
		return v.SetInt64(n)
	}
}

// AutoInt reads any of the integer types as an int64.
func (v *Value) AutoInt() (int64, bool) {
	switch v.typ {
	case TypeByte, TypeShort, TypeInteger, TypeLong:
		return int64(v.bits), true
	default:
		return 0, false
	}
}

// The array getters return the value's own slice; it stays valid until the
// value is re-typed. The setters copy their argument.

func (v *Value) BoolArray() ([]bool, bool)       { return arrayOf[bool](v, TypeArrayBoolean) }
func (v *Value) Int32Array() ([]int32, bool)     { return arrayOf[int32](v, TypeArrayInteger) }
func (v *Value) Int64Array() ([]int64, bool)     { return arrayOf[int64](v, TypeArrayLong) }
func (v *Value) Int16Array() ([]int16, bool)     { return arrayOf[int16](v, TypeArrayShort) }
func (v *Value) Int8Array() ([]int8, bool)       { return arrayOf[int8](v, TypeArrayByte) }
func (v *Value) Float64Array() ([]float64, bool) { return arrayOf[float64](v, TypeArrayDouble) }
func (v *Value) Float32Array() ([]float32, bool) { return arrayOf[float32](v, TypeArrayFloat) }

func (v *Value) SetBoolArray(a []bool) *Value       { return v.setArray(TypeArrayBoolean, cloneNonNil(a)) }
func (v *Value) SetInt32Array(a []int32) *Value     { return v.setArray(TypeArrayInteger, cloneNonNil(a)) }
func (v *Value) SetInt64Array(a []int64) *Value     { return v.setArray(TypeArrayLong, cloneNonNil(a)) }
func (v *Value) SetInt16Array(a []int16) *Value     { return v.setArray(TypeArrayShort, cloneNonNil(a)) }
func (v *Value) SetInt8Array(a []int8) *Value       { return v.setArray(TypeArrayByte, cloneNonNil(a)) }
func (v *Value) SetFloat64Array(a []float64) *Value { return v.setArray(TypeArrayDouble, cloneNonNil(a)) }
func (v *Value) SetFloat32Array(a []float32) *Value { return v.setArray(TypeArrayFloat, cloneNonNil(a)) }

func (v *Value) setArray(t Type, a any) *Value {
	v.assign(t)
	v.arr = a
	return v
}

func arrayOf[T any](v *Value, t Type) ([]T, bool) {
	if v.typ != t {
		return nil, false
	}
	return v.arr.([]T), true
}

func cloneNonNil[T any](a []T) []T {
	if a == nil {
		return []T{}
	}
	return slices.Clone(a)
}

// arrayLen returns the element count of an array value.
func (v *Value) arrayLen() int {
	switch a := v.arr.(type) {
	case []bool:
		return len(a)
	case []int32:
		return len(a)
	case []int64:
		return len(a)
	case []int16:
		return len(a)
	case []int8:
		return len(a)
	case []float64:
		return len(a)
	case []float32:
		return len(a)
	default:
		panic(fmt.Sprintf("unreachable: array payload %T", v.arr))
	}
}

// arrayElem returns element i of an array value as a detached scalar value.
func (v *Value) arrayElem(i int) *Value {
	e := &Value{doc: v.doc}
	switch a := v.arr.(type) {
	case []bool:
		e.SetBool(a[i])
	case []int32:
		e.SetInt32(a[i])
	case []int64:
		e.SetInt64(a[i])
	case []int16:
		e.SetInt16(a[i])
	case []int8:
		e.SetInt8(a[i])
	case []float64:
		e.SetFloat64(a[i])
	case []float32:
		e.SetFloat32(a[i])
	}
	return e
}

// List returns the list payload of a List value.
func (v *Value) List() (*List, bool) {
	if v.typ != TypeList {
		return nil, false
	}
	return v.list, true
}

// Map returns the map payload of a Map value.
func (v *Value) Map() (*Map, bool) {
	if v.typ != TypeMap {
		return nil, false
	}
	return v.dict, true
}

// SetNewList re-types v as a new empty list and returns it.
func (v *Value) SetNewList() *List {
	l := newList(v.mustDoc(), v)
	v.assign(TypeList)
	v.list = l
	return l
}

// SetNewMap re-types v as a new empty map and returns it.
func (v *Value) SetNewMap() *Map {
	m := newMap(v.mustDoc(), v)
	v.assign(TypeMap)
	v.dict = m
	return m
}

// GetOrCreateList returns the list held by v, turning an Undefined value
// into an empty list first. Any other type fails with ErrTypeMismatch.
func (v *Value) GetOrCreateList() (*List, error) {
	switch v.typ {
	case TypeList:
		return v.list, nil
	case TypeUndefined:
		return v.SetNewList(), nil
	default:
		return nil, fmt.Errorf("bdf: cannot use %s value as list: %w", v.typ, ErrTypeMismatch)
	}
}

// GetOrCreateMap is the map counterpart of GetOrCreateList.
func (v *Value) GetOrCreateMap() (*Map, error) {
	switch v.typ {
	case TypeMap:
		return v.dict, nil
	case TypeUndefined:
		return v.SetNewMap(), nil
	default:
		return nil, fmt.Errorf("bdf: cannot use %s value as map: %w", v.typ, ErrTypeMismatch)
	}
}

// KeyLocation interns name in the document's symbol table.
func (v *Value) KeyLocation(name string) Location {
	return v.mustDoc().syms.Intern(name)
}

func (v *Value) KeyName(loc Location) (string, bool) {
	return v.mustDoc().syms.Name(loc)
}

// attach marks v as owned by the container held by parent, which is nil
// for a document root.
func (v *Value) attach(doc *Document, parent *Value) {
	if v == nil {
		panic("bdf: cannot attach a nil value")
	}
	if v.doc != doc {
		panic("bdf: value belongs to a different document")
	}
	if v.owned {
		panic("bdf: value is already attached to a container")
	}
	for p := parent; p != nil; p = p.parent {
		if p == v {
			panic("bdf: cannot attach a value inside itself")
		}
	}
	v.owned = true
	v.parent = parent
}

func (v *Value) detach() {
	v.owned = false
	v.parent = nil
}
