package bdf

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
)

// DecodeOptions configure binary decoding. The zero value decodes
// permissively: malformed or truncated input stops decoding at the first
// problem and keeps the tree built so far, without returning an error.
type DecodeOptions struct {
	// StrictSize turns every truncation, trailing byte, or mismatch between
	// a declared size and the size actually required into an error of kind
	// ErrBinarySizeTagMismatch.
	StrictSize bool

	// Logger receives a debug record for every problem. Nil discards.
	Logger *slog.Logger

	// MaxDepth limits how deeply lists and maps may nest. Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

// DefaultMaxDepth is the container nesting limit used by both decoders
// unless overridden.
const DefaultMaxDepth = 10000

var errTooDeep = fmt.Errorf("containers nested deeper than %d", DefaultMaxDepth)

func maxDepth(n int) int {
	if n <= 0 {
		return DefaultMaxDepth
	}
	return n
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (o DecodeOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return discardLogger
	}
	return o.Logger
}

// Unmarshal decodes a document produced by Marshal. Decoding is permissive:
// a malformed or truncated buffer yields whatever could be decoded before
// the problem, down to an empty document.
func Unmarshal(data []byte) *Document {
	doc, _ := UnmarshalWithOptions(data, DecodeOptions{})
	return doc
}

// UnmarshalWithOptions decodes a document produced by Marshal. The returned
// document is never nil; with StrictSize it comes with a *FormatError when
// the input is not exactly one well-formed document.
func UnmarshalWithOptions(data []byte, opt DecodeOptions) (*Document, error) {
	doc := NewDocument()
	d := newDecoder(doc, data, opt)
	d.document()
	return doc, d.err
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler, replacing the
// tree of d. It decodes with StrictSize. The decoded keys are interned into
// d's existing symbol table, so values created earlier with d.New keep
// resolving their keys to the same names.
func (d *Document) UnmarshalBinary(data []byte) error {
	decoded, err := UnmarshalWithOptions(data, DecodeOptions{StrictSize: true})
	if err != nil {
		return err
	}
	if d.syms == nil {
		d.syms = newSymbolTable()
	}
	remap := make([]Location, 0, decoded.syms.Len())
	for _, name := range decoded.syms.All() {
		remap = append(remap, d.syms.Intern(name))
	}
	d.adopt(decoded.root, remap)
	if d.root != nil {
		d.root.detach()
	}
	d.root = decoded.root
	return nil
}

// adopt moves a tree decoded into another document over to d, translating
// map keys through remap.
func (d *Document) adopt(v *Value, remap []Location) {
	v.doc = d
	switch v.typ {
	case TypeList:
		v.list.doc = d
		for p := v.list.head; p != NoPos; p = v.list.items[p].next {
			d.adopt(v.list.items[p].val, remap)
		}
	case TypeMap:
		m := v.dict
		m.doc = d
		for i := range m.entries {
			e := &m.entries[i]
			e.key = remap[e.key]
			d.adopt(e.val, remap)
		}
		clear(m.index)
		for i, e := range m.entries {
			m.index[e.key] = i
		}
	}
}

// DecodeNode decodes a bare node produced by EncodeNode, resolving map keys
// against d's symbol table. The result is a detached value of d; it is
// Undefined when nothing could be decoded.
func (d *Document) DecodeNode(data []byte) *Value {
	v, _ := d.DecodeNodeWithOptions(data, DecodeOptions{})
	return v
}

func (d *Document) DecodeNodeWithOptions(data []byte, opt DecodeOptions) (*Value, error) {
	dec := newDecoder(d, data, opt)
	dec.keyClass = keyWidthClass(d.syms.Len())
	v := dec.root(0)
	if v == nil {
		v = d.New()
	}
	return v, dec.err
}

type decoder struct {
	doc      *Document
	data     []byte
	opt      DecodeOptions
	logger   *slog.Logger
	keyClass byte
	depth    int // enclosing containers of the node being decoded
	maxDepth int
	stopped  bool
	err      error
}

func newDecoder(doc *Document, data []byte, opt DecodeOptions) *decoder {
	return &decoder{
		doc:      doc,
		data:     data,
		opt:      opt,
		logger:   opt.logger(),
		maxDepth: maxDepth(opt.MaxDepth),
	}
}

// stop ends decoding at off. The first problem wins.
func (d *decoder) stop(off int, format string, args ...any) {
	if d.stopped {
		return
	}
	d.stopped = true
	d.report(off, fmt.Sprintf(format, args...))
}

// lenient records a problem that permissive decoding can step over.
func (d *decoder) lenient(off int, format string, args ...any) {
	if d.opt.StrictSize {
		d.stop(off, format, args...)
		return
	}
	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "bdf: decode: "+fmt.Sprintf(format, args...), slog.Int("off", off))
}

func (d *decoder) report(off int, msg string) {
	err := &FormatError{
		Kind:    ErrBinarySizeTagMismatch,
		Offset:  off,
		Length:  1,
		Context: msg,
	}
	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "bdf: decode stopped", slog.String("err", err.Short()), slog.String("reason", msg))
	if d.opt.StrictSize {
		d.err = err
	}
}

func (d *decoder) document() {
	data := d.data
	if len(data) == 0 {
		d.stop(0, "empty input")
		return
	}
	tableClass := data[0]
	if tableClass >= classCount {
		d.stop(0, "invalid key table width class %d", tableClass)
		return
	}
	w := classWidth(tableClass)
	if len(data) < 1+w {
		d.stop(1, "truncated key table size")
		return
	}
	tableSize := int(readSized(data[1:], w))
	start := 1 + w
	end := start + tableSize
	if end > len(data) {
		d.stop(1, "key table size %d exceeds remaining %d bytes", tableSize, len(data)-start)
		return
	}
	for off := start; off < end; {
		n, k := binary.Uvarint(data[off:end])
		if k <= 0 || n > uint64(end-off-k) {
			d.stop(off, "malformed key name")
			return
		}
		off += k
		name := string(data[off : off+int(n)])
		before := d.doc.syms.Len()
		d.doc.syms.Intern(name)
		if d.doc.syms.Len() == before {
			d.stop(off, "duplicate key name %q", name)
			return
		}
		off += int(n)
	}
	d.keyClass = keyWidthClass(d.doc.syms.Len())

	if v := d.root(end); v != nil {
		d.doc.setRoot(v)
	}
}

// root decodes the single node at off, which must span the rest of the
// buffer.
func (d *decoder) root(off int) *Value {
	v, size := d.node(off, len(d.data))
	if v == nil {
		return nil
	}
	if !d.stopped && off+size != len(d.data) {
		d.lenient(off+size, "%d trailing bytes after root node", len(d.data)-off-size)
	}
	if d.opt.StrictSize && !d.stopped {
		lay := Measure(v)
		if lay.Total != size {
			d.stop(off, "root node declares %d bytes, re-encodes to %d", size, lay.Total)
		}
	}
	return v
}

// node decodes one node starting at off and ending no later than end. It
// returns nil when not even the header could be decoded.
func (d *decoder) node(off, end int) (*Value, int) {
	v, size, _ := d.nodeWithKeyClass(off, end)
	return v, size
}

func (d *decoder) nodeWithKeyClass(off, end int) (*Value, int, byte) {
	if off >= end {
		d.stop(off, "missing node")
		return nil, 0, 0
	}
	t, sizeClass, keyClass, ok := splitFlag(d.data[off])
	if !ok {
		d.stop(off, "invalid flag byte %d", d.data[off])
		return nil, 0, 0
	}
	w := classWidth(sizeClass)
	if off+1+w > end {
		d.stop(off, "truncated size field")
		return nil, 0, 0
	}
	if (t == TypeList || t == TypeMap) && d.depth >= d.maxDepth {
		d.stop(off, "containers nested deeper than %d", d.maxDepth)
		return nil, 0, 0
	}
	size := int(readSized(d.data[off+1:], w))
	switch {
	case size == 0:
		d.stop(off, "zero node size")
		return nil, 0, 0
	case size < 1+w:
		d.stop(off, "node size %d is smaller than its header", size)
		return nil, 0, 0
	case size > end-off:
		d.stop(off, "node size %d exceeds remaining %d bytes", size, end-off)
		return nil, 0, 0
	}
	v := d.doc.New()
	d.payload(v, t, off+1+w, off+size)
	return v, size, keyClass
}

func (d *decoder) payload(v *Value, t Type, off, end int) {
	p := d.data[off:end]
	switch t {
	case TypeUndefined:
		if len(p) != 0 {
			d.lenient(off, "undefined value with %d payload bytes", len(p))
		}
	case TypeString:
		v.SetString(string(p))
	case TypeList:
		l := v.SetNewList()
		d.depth++
		defer func() { d.depth-- }()
		for pos := off; pos < end && !d.stopped; {
			child, n := d.node(pos, end)
			if child == nil {
				break
			}
			l.Add(child)
			pos += n
		}
	case TypeMap:
		m := v.SetNewMap()
		d.depth++
		defer func() { d.depth-- }()
		for pos := off; pos < end && !d.stopped; {
			child, n, keyClass := d.nodeWithKeyClass(pos, end)
			if child == nil || d.stopped {
				break
			}
			pos += n
			if keyClass != d.keyClass {
				d.lenient(pos-n, "key width class %d, document uses %d", keyClass, d.keyClass)
			}
			kw := classWidth(keyClass)
			if pos+kw > end {
				d.stop(pos, "truncated key location")
				break
			}
			loc := Location(readSized(d.data[pos:], kw))
			if !d.doc.syms.Has(loc) {
				d.stop(pos, "unknown key location %d", loc)
				break
			}
			pos += kw
			m.SetLocation(loc, child)
		}
	default:
		w := t.scalarWidth()
		if t.IsArray() {
			if len(p)%w != 0 {
				d.lenient(off, "%s payload of %d bytes is not a multiple of %d", t, len(p), w)
			}
			setArrayBytes(v, t, p[:len(p)/w*w])
			return
		}
		if len(p) != w {
			d.lenient(off, "%s payload of %d bytes, wanted %d", t, len(p), w)
			return
		}
		d.scalar(v, t, p)
	}
}

func (d *decoder) scalar(v *Value, t Type, p []byte) {
	switch t {
	case TypeBoolean:
		v.SetBool(p[0] != 0)
	case TypeByte:
		v.SetInt8(int8(p[0]))
	case TypeShort:
		v.SetInt16(int16(binary.BigEndian.Uint16(p)))
	case TypeInteger:
		v.SetInt32(int32(binary.BigEndian.Uint32(p)))
	case TypeLong:
		v.SetInt64(int64(binary.BigEndian.Uint64(p)))
	case TypeFloat:
		v.SetFloat32(math.Float32frombits(binary.BigEndian.Uint32(p)))
	case TypeDouble:
		v.SetFloat64(math.Float64frombits(binary.BigEndian.Uint64(p)))
	default:
		panic(fmt.Sprintf("unreachable: scalar type %v", t))
	}
}

// setArrayBytes re-types v as an array of type t holding the big-endian
// elements packed in p.
func setArrayBytes(v *Value, t Type, p []byte) {
	switch t {
	case TypeArrayBoolean:
		a := make([]bool, len(p))
		for i, b := range p {
			a[i] = b != 0
		}
		v.setArray(t, a)
	case TypeArrayByte:
		a := make([]int8, len(p))
		for i, b := range p {
			a[i] = int8(b)
		}
		v.setArray(t, a)
	case TypeArrayShort:
		a := make([]int16, len(p)/2)
		for i := range a {
			a[i] = int16(binary.BigEndian.Uint16(p[2*i:]))
		}
		v.setArray(t, a)
	case TypeArrayInteger:
		a := make([]int32, len(p)/4)
		for i := range a {
			a[i] = int32(binary.BigEndian.Uint32(p[4*i:]))
		}
		v.setArray(t, a)
	case TypeArrayFloat:
		a := make([]float32, len(p)/4)
		for i := range a {
			a[i] = math.Float32frombits(binary.BigEndian.Uint32(p[4*i:]))
		}
		v.setArray(t, a)
	case TypeArrayLong:
		a := make([]int64, len(p)/8)
		for i := range a {
			a[i] = int64(binary.BigEndian.Uint64(p[8*i:]))
		}
		v.setArray(t, a)
	case TypeArrayDouble:
		a := make([]float64, len(p)/8)
		for i := range a {
			a[i] = math.Float64frombits(binary.BigEndian.Uint64(p[8*i:]))
		}
		v.setArray(t, a)
	default:
		panic(fmt.Sprintf("unreachable: array type %v", t))
	}
}
