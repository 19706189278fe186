package bdf

import (
	"fmt"
	"math"
)

// Width classes select how many bytes a size field or key reference takes.
// Smaller classes are wider.
const (
	widthClass4 byte = 0
	widthClass2 byte = 1
	widthClass1 byte = 2

	classCount = 3
	flagLimit  = typeCount * classCount * classCount
)

var classWidths = [classCount]int{4, 2, 1}

func classWidth(class byte) int {
	return classWidths[class]
}

// widthClassFor returns the narrowest class that can hold v.
func widthClassFor(v int) byte {
	switch {
	case v <= math.MaxUint8:
		return widthClass1
	case v <= math.MaxUint16:
		return widthClass2
	default:
		return widthClass4
	}
}

func makeFlag(t Type, sizeClass, keyClass byte) byte {
	return byte(t) + typeCount*sizeClass + typeCount*classCount*keyClass
}

func splitFlag(f byte) (t Type, sizeClass, keyClass byte, ok bool) {
	if f >= flagLimit {
		return 0, 0, 0, false
	}
	t = Type(f % typeCount)
	f /= typeCount
	return t, f % classCount, f / classCount, true
}

// nodeSize returns the total encoded length of a node whose payload takes
// payload bytes, using the narrowest size field that can describe it.
func nodeSize(payload int) int {
	for _, w := range [...]int{1, 2, 4} {
		total := 1 + w + payload
		if w == 4 || total <= 1<<(8*w)-1 {
			if uint64(total) > math.MaxUint32 {
				panic(fmt.Sprintf("bdf: node of %d bytes is too large to encode", total))
			}
			return total
		}
	}
	panic("unreachable")
}

// Layout is the result of the seeker pass over a value tree.
type Layout struct {
	// Sizes holds the total encoded size of every node in pre-order.
	Sizes []int
	// Uses counts map entries per key location.
	Uses []int
	// KeyClass is the document-wide width class of map key references.
	KeyClass byte
	// Total is the encoded size of the root node.
	Total int
}

func (lay *Layout) KeyWidth() int {
	return classWidth(lay.KeyClass)
}

// Measure runs the seeker pass over v without producing any bytes.
func Measure(v *Value) Layout {
	syms := v.mustDoc().syms
	s := seeker{
		uses:     make([]int, syms.Len()),
		keyClass: keyWidthClass(syms.Len()),
	}
	s.keyWidth = classWidth(s.keyClass)
	total := s.measure(v)
	return Layout{
		Sizes:    s.sizes,
		Uses:     s.uses,
		KeyClass: s.keyClass,
		Total:    total,
	}
}

type seeker struct {
	sizes    []int
	uses     []int
	keyClass byte
	keyWidth int
}

func (s *seeker) measure(v *Value) int {
	i := len(s.sizes)
	s.sizes = append(s.sizes, 0)
	var payload int
	switch v.typ {
	case TypeString:
		payload = len(v.str)
	case TypeList:
		for p := v.list.head; p != NoPos; p = v.list.items[p].next {
			payload += s.measure(v.list.items[p].val)
		}
	case TypeMap:
		for _, e := range v.dict.entries {
			payload += s.measure(e.val) + s.keyWidth
			s.uses[e.key]++
		}
	default:
		w := v.typ.scalarWidth()
		if v.typ.IsArray() {
			payload = w * v.arrayLen()
		} else {
			payload = w
		}
	}
	n := nodeSize(payload)
	s.sizes[i] = n
	return n
}

type emitter struct {
	buf      byteBuf
	sizes    []int
	next     int
	keyClass byte
}

func (e *emitter) emit(v *Value, keyClass byte) {
	size := e.sizes[e.next]
	e.next++
	sizeClass := widthClassFor(size)
	e.buf.AppendByte(makeFlag(v.typ, sizeClass, keyClass))
	e.buf.AppendSized(sizeClass, uint32(size))

	switch v.typ {
	case TypeUndefined:
	case TypeBoolean:
		e.buf.AppendByte(byte(v.bits))
	case TypeByte:
		e.buf.AppendByte(byte(v.bits))
	case TypeShort:
		e.buf.AppendUint16(uint16(v.bits))
	case TypeInteger, TypeFloat:
		e.buf.AppendUint32(uint32(v.bits))
	case TypeLong, TypeDouble:
		e.buf.AppendUint64(v.bits)
	case TypeString:
		e.buf.AppendString(v.str)
	case TypeList:
		for p := v.list.head; p != NoPos; p = v.list.items[p].next {
			e.emit(v.list.items[p].val, widthClass4)
		}
	case TypeMap:
		for _, ent := range v.dict.entries {
			e.emit(ent.val, e.keyClass)
			e.buf.AppendSized(e.keyClass, uint32(ent.key))
		}
	default:
		e.buf.AppendArray(v)
	}
}

// AppendArray writes the elements of an array value back to back.
func (b *byteBuf) AppendArray(v *Value) {
	switch v.typ {
	case TypeArrayBoolean:
		for _, x := range v.arr.([]bool) {
			if x {
				b.AppendByte(1)
			} else {
				b.AppendByte(0)
			}
		}
	case TypeArrayInteger:
		for _, n := range v.arr.([]int32) {
			b.AppendUint32(uint32(n))
		}
	case TypeArrayLong:
		for _, n := range v.arr.([]int64) {
			b.AppendUint64(uint64(n))
		}
	case TypeArrayShort:
		for _, n := range v.arr.([]int16) {
			b.AppendUint16(uint16(n))
		}
	case TypeArrayByte:
		for _, n := range v.arr.([]int8) {
			b.AppendByte(byte(n))
		}
	case TypeArrayDouble:
		for _, f := range v.arr.([]float64) {
			b.AppendUint64(math.Float64bits(f))
		}
	case TypeArrayFloat:
		for _, f := range v.arr.([]float32) {
			b.AppendUint32(math.Float32bits(f))
		}
	default:
		panic(fmt.Sprintf("unreachable: type %d", v.typ))
	}
}

func emitNode(buf []byte, v *Value, lay *Layout) []byte {
	e := emitter{
		buf:      prealloc(buf, lay.Total),
		sizes:    lay.Sizes,
		keyClass: lay.KeyClass,
	}
	start := e.buf.Off
	e.emit(v, widthClass4)
	if e.buf.Off-start != lay.Total {
		panic(fmt.Sprintf("bdf: emitted %d bytes, measured %d", e.buf.Off-start, lay.Total))
	}
	return e.buf.Trimmed()
}

// EncodeNode encodes v as a bare node, without the key table. Map keys are
// written as locations in v's document, so the result can only be decoded
// by a document whose symbol table assigns the same locations.
func EncodeNode(v *Value) []byte {
	lay := Measure(v)
	return emitNode(nil, v, &lay)
}

// AppendNode is EncodeNode that appends to buf.
func AppendNode(buf []byte, v *Value) []byte {
	lay := Measure(v)
	return emitNode(buf, v, &lay)
}

func (st *SymbolTable) encodedSize() int {
	var n int
	for _, name := range st.names {
		n += uvarintLen(uint64(len(name))) + len(name)
	}
	return n
}

// Marshal encodes the document: the key table followed by the root node.
func (d *Document) Marshal() []byte {
	return d.appendBinary(nil)
}

// AppendBinary implements encoding.BinaryAppender.
func (d *Document) AppendBinary(buf []byte) ([]byte, error) {
	return d.appendBinary(buf), nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d *Document) MarshalBinary() ([]byte, error) {
	return d.appendBinary(nil), nil
}

func (d *Document) appendBinary(buf []byte) []byte {
	lay := Measure(d.root)
	tableSize := d.syms.encodedSize()
	tableClass := widthClassFor(tableSize)
	header := 1 + classWidth(tableClass) + tableSize

	b := prealloc(buf, header)
	b.AppendByte(tableClass)
	b.AppendSized(tableClass, uint32(tableSize))
	for _, name := range d.syms.names {
		b.AppendVarString(name)
	}
	return emitNode(b.Buf, d.root, &lay)
}
