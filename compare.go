package bdf

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// Ordering is the result of comparing two values. Values of different types,
// and NaN payloads, are Unordered.
type Ordering int8

const (
	Less      Ordering = -1
	Equal     Ordering = 0
	Greater   Ordering = 1
	Unordered Ordering = 2
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "unordered"
	}
}

func (v *Value) Compare(o *Value) Ordering {
	return Compare(v, o)
}

func (v *Value) Equal(o *Value) bool {
	return Compare(v, o) == Equal
}

// Compare orders a relative to b. Scalars compare by payload; lists and
// arrays by their first differing element, then by length; maps by the
// values under the keys they have in common (ascending location order),
// then by key count.
func Compare(a, b *Value) Ordering {
	if a.typ != b.typ {
		return Unordered
	}
	switch a.typ {
	case TypeUndefined:
		return Equal
	case TypeBoolean:
		return ordering(cmp.Compare(a.bits, b.bits))
	case TypeInteger, TypeLong, TypeShort, TypeByte:
		return ordering(cmp.Compare(int64(a.bits), int64(b.bits)))
	case TypeDouble:
		return compareFloat(math.Float64frombits(a.bits), math.Float64frombits(b.bits))
	case TypeFloat:
		return compareFloat(float64(math.Float32frombits(uint32(a.bits))), float64(math.Float32frombits(uint32(b.bits))))
	case TypeString:
		return ordering(strings.Compare(a.str, b.str))
	case TypeList:
		return a.list.Compare(b.list)
	case TypeMap:
		return a.dict.Compare(b.dict)
	case TypeArrayBoolean:
		return compareBools(a.arr.([]bool), b.arr.([]bool))
	case TypeArrayInteger:
		return compareSlices(a.arr.([]int32), b.arr.([]int32))
	case TypeArrayLong:
		return compareSlices(a.arr.([]int64), b.arr.([]int64))
	case TypeArrayShort:
		return compareSlices(a.arr.([]int16), b.arr.([]int16))
	case TypeArrayByte:
		return compareSlices(a.arr.([]int8), b.arr.([]int8))
	case TypeArrayDouble:
		return compareSlices(a.arr.([]float64), b.arr.([]float64))
	case TypeArrayFloat:
		return compareSlices(a.arr.([]float32), b.arr.([]float32))
	default:
		panic("unreachable")
	}
}

func ordering(c int) Ordering {
	switch {
	case c < 0:
		return Less
	case c > 0:
		return Greater
	default:
		return Equal
	}
}

func compareFloat(x, y float64) Ordering {
	if math.IsNaN(x) || math.IsNaN(y) {
		return Unordered
	}
	return ordering(cmp.Compare(x, y))
}

func compareSlices[T cmp.Ordered](x, y []T) Ordering {
	for i := range min(len(x), len(y)) {
		if x[i] != x[i] || y[i] != y[i] {
			return Unordered // NaN
		}
		if c := cmp.Compare(x[i], y[i]); c != 0 {
			return ordering(c)
		}
	}
	return ordering(cmp.Compare(len(x), len(y)))
}

func compareBools(x, y []bool) Ordering {
	for i := range min(len(x), len(y)) {
		if x[i] != y[i] {
			if y[i] {
				return Less
			}
			return Greater
		}
	}
	return ordering(cmp.Compare(len(x), len(y)))
}

// Compare orders two lists by their first non-equal pair of entries; if one
// list runs out first, the longer list is greater.
func (l *List) Compare(o *List) Ordering {
	p, q := l.head, o.head
	for p != NoPos && q != NoPos {
		if r := Compare(l.items[p].val, o.items[q].val); r != Equal {
			return r
		}
		p, q = l.items[p].next, o.items[q].next
	}
	return ordering(cmp.Compare(l.size, o.size))
}

func (l *List) Equal(o *List) bool {
	return l.Compare(o) == Equal
}

// Compare orders two maps by the values stored under keys present in both,
// visited in ascending location order, falling back to the key counts. Key
// names themselves do not take part. When the maps belong to different
// documents, o's keys are translated into m's locations by name.
func (m *Map) Compare(o *Map) Ordering {
	type pair struct {
		loc  Location
		a, b *Value
	}
	sameTable := m.doc.syms == o.doc.syms
	var common []pair
	for _, e := range m.entries {
		oloc := e.key
		if !sameTable {
			var ok bool
			oloc, ok = o.doc.syms.Location(m.doc.syms.mustName(e.key))
			if !ok {
				continue
			}
		}
		if ov, ok := o.GetLocation(oloc); ok {
			common = append(common, pair{e.key, e.val, ov})
		}
	}
	slices.SortFunc(common, func(x, y pair) int {
		return cmp.Compare(x.loc, y.loc)
	})
	for _, c := range common {
		if r := Compare(c.a, c.b); r != Equal {
			return r
		}
	}
	return ordering(cmp.Compare(len(m.entries), len(o.entries)))
}

func (m *Map) Equal(o *Map) bool {
	return m.Compare(o) == Equal
}
