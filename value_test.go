package bdf

import (
	"errors"
	"math"
	"testing"
)

func TestValue_Scalars(t *testing.T) {
	doc := NewDocument()
	v := doc.New()

	eq(t, v.IsDefined(), false)

	v.SetBool(true)
	b, ok := v.Bool()
	eq(t, b && ok, true)
	_, ok = v.Int32()
	eq(t, ok, false)

	v.SetInt8(-5)
	n8, ok := v.Int8()
	eq(t, n8, int8(-5))
	eq(t, ok, true)
	_, ok = v.Bool()
	eq(t, ok, false)

	v.SetInt16(-300)
	n16, _ := v.Int16()
	eq(t, n16, int16(-300))

	v.SetInt32(math.MinInt32)
	n32, _ := v.Int32()
	eq(t, n32, int32(math.MinInt32))

	v.SetInt64(math.MaxInt64)
	n64, _ := v.Int64()
	eq(t, n64, int64(math.MaxInt64))
	_, ok = v.Int32()
	eq(t, ok, false)

	v.SetFloat32(1.5)
	f32, _ := v.Float32()
	eq(t, f32, float32(1.5))
	_, ok = v.Float64()
	eq(t, ok, false)

	v.SetFloat64(-0.25)
	f64, _ := v.Float64()
	eq(t, f64, -0.25)

	v.SetString("héllo")
	s, ok := v.Str()
	eq(t, s, "héllo")
	eq(t, ok, true)

	v.Reset()
	eq(t, v.Type(), TypeUndefined)
	_, ok = v.Str()
	eq(t, ok, false)
}

func TestValue_AutoInt(t *testing.T) {
	tests := []struct {
		n    int64
		want Type
	}{
		{0, TypeByte},
		{-128, TypeByte},
		{128, TypeShort},
		{-32769, TypeInteger},
		{math.MaxInt32, TypeInteger},
		{math.MaxInt32 + 1, TypeLong},
		{math.MinInt64, TypeLong},
	}
	doc := NewDocument()
	for _, tt := range tests {
		v := doc.New().SetAutoInt(tt.n)
		eq(t, v.Type(), tt.want)
		n, ok := v.AutoInt()
		eq(t, ok, true)
		eq(t, n, tt.n)
	}
	_, ok := doc.New().SetFloat64(1).AutoInt()
	eq(t, ok, false)
}

func TestValue_Arrays(t *testing.T) {
	doc := NewDocument()
	v := doc.New()

	src := []int32{1, 2, 3}
	v.SetInt32Array(src)
	src[0] = 99
	got, ok := v.Int32Array()
	eq(t, ok, true)
	deepEqual(t, got, []int32{1, 2, 3})
	_, ok = v.Int64Array()
	eq(t, ok, false)

	v.SetBoolArray([]bool{true, false})
	bs, _ := v.BoolArray()
	deepEqual(t, bs, []bool{true, false})

	v.SetFloat32Array(nil)
	fs, ok := v.Float32Array()
	eq(t, ok, true)
	eq(t, len(fs), 0)
	eq(t, v.Type(), TypeArrayFloat)
}

func TestValue_GetOrCreate(t *testing.T) {
	doc := NewDocument()
	v := doc.New()

	l, err := v.GetOrCreateList()
	ensure(err)
	l.AddNew().SetInt32(1)
	l2, err := v.GetOrCreateList()
	ensure(err)
	if l2 != l {
		t.Fatalf("GetOrCreateList returned a different list")
	}
	_, err = v.GetOrCreateMap()
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("GetOrCreateMap on a list: err = %v, wanted ErrTypeMismatch", err)
	}

	w := doc.New().SetString("x")
	_, err = w.GetOrCreateList()
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("GetOrCreateList on a string: err = %v, wanted ErrTypeMismatch", err)
	}
	m, err := doc.New().GetOrCreateMap()
	ensure(err)
	eq(t, m.Len(), 0)
}

func TestValue_RetypeReleasesChildren(t *testing.T) {
	doc := NewDocument()
	root := doc.Root()
	l := root.SetNewList()
	child := doc.New().SetInt32(1)
	l.Add(child)

	root.SetString("replaced")
	_, ok := root.List()
	eq(t, ok, false)

	// the released child can be attached elsewhere
	doc.New().SetNewList().Add(child)
}

func TestValue_SetNewContainersAlwaysRetype(t *testing.T) {
	doc := NewDocument()
	v := doc.New()
	l := v.SetNewList()
	l.AddNew()
	l2 := v.SetNewList()
	eq(t, l2.Len(), 0)
	m := v.SetNewMap()
	eq(t, m.Len(), 0)
	eq(t, v.Type(), TypeMap)
}

func TestValue_Keys(t *testing.T) {
	doc := NewDocument()
	v := doc.Root()
	loc := v.KeyLocation("name")
	eq(t, loc, Location(0))
	name, ok := v.KeyName(loc)
	eq(t, name, "name")
	eq(t, ok, true)
	_, ok = v.KeyName(5)
	eq(t, ok, false)
}

func TestValue_Unbound(t *testing.T) {
	var v Value
	assertPanics(t, func() { v.SetNewList() })
}
