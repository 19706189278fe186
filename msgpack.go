package bdf

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Values map onto msgpack as follows: integers use the fixed-width int
// codes of their exact size, floats use float32/float64, lists and maps use
// msgpack arrays and string-keyed maps (in insertion order), Undefined is
// nil, and typed arrays are ext values whose type is the array's type tag
// and whose data is the binary-format payload.

var (
	_ msgpack.CustomEncoder = (*Value)(nil)
	_ msgpack.CustomDecoder = (*Value)(nil)
)

func (v *Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	switch v.typ {
	case TypeUndefined:
		return enc.EncodeNil()
	case TypeBoolean:
		return enc.EncodeBool(v.bits != 0)
	case TypeByte:
		return enc.EncodeInt8(int8(v.bits))
	case TypeShort:
		return enc.EncodeInt16(int16(v.bits))
	case TypeInteger:
		return enc.EncodeInt32(int32(v.bits))
	case TypeLong:
		return enc.EncodeInt64(int64(v.bits))
	case TypeFloat:
		return enc.EncodeFloat32(math.Float32frombits(uint32(v.bits)))
	case TypeDouble:
		return enc.EncodeFloat64(math.Float64frombits(v.bits))
	case TypeString:
		return enc.EncodeString(v.str)
	case TypeList:
		if err := enc.EncodeArrayLen(v.list.size); err != nil {
			return err
		}
		for p := v.list.head; p != NoPos; p = v.list.items[p].next {
			if err := v.list.items[p].val.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	case TypeMap:
		m := v.dict
		if err := enc.EncodeMapLen(len(m.entries)); err != nil {
			return err
		}
		for _, e := range m.entries {
			if err := enc.EncodeString(m.doc.syms.mustName(e.key)); err != nil {
				return err
			}
			if err := e.val.EncodeMsgpack(enc); err != nil {
				return err
			}
		}
		return nil
	default:
		n := v.typ.scalarWidth() * v.arrayLen()
		b := prealloc(nil, n)
		b.AppendArray(v)
		if err := enc.EncodeExtHeader(int8(v.typ), n); err != nil {
			return err
		}
		_, err := enc.Writer().Write(b.Trimmed())
		return err
	}
}

// DecodeMsgpack replaces v with the decoded value. v must be bound to a
// document. Integers without an exact-width code decode as Integer when
// they fit, Long otherwise; binary strings decode as strings. Arrays and
// maps may nest at most DefaultMaxDepth deep.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	return v.decodeMsgpack(dec, 0)
}

func (v *Value) decodeMsgpack(dec *msgpack.Decoder, depth int) error {
	doc := v.mustDoc()
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}
	switch {
	case c == msgpcode.Nil:
		v.Reset()
		return dec.DecodeNil()
	case c == msgpcode.False || c == msgpcode.True:
		b, err := dec.DecodeBool()
		v.SetBool(b)
		return err
	case c == msgpcode.Int8:
		n, err := dec.DecodeInt8()
		v.SetInt8(n)
		return err
	case c == msgpcode.Int16:
		n, err := dec.DecodeInt16()
		v.SetInt16(n)
		return err
	case c == msgpcode.Int32:
		n, err := dec.DecodeInt32()
		v.SetInt32(n)
		return err
	case c == msgpcode.Int64:
		n, err := dec.DecodeInt64()
		v.SetInt64(n)
		return err
	case msgpcode.IsFixedNum(c) || c == msgpcode.Uint8 || c == msgpcode.Uint16 || c == msgpcode.Uint32 || c == msgpcode.Uint64:
		n, err := dec.DecodeInt64()
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			v.SetInt32(int32(n))
		} else {
			v.SetInt64(n)
		}
		return err
	case c == msgpcode.Float:
		f, err := dec.DecodeFloat32()
		v.SetFloat32(f)
		return err
	case c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		v.SetFloat64(f)
		return err
	case msgpcode.IsString(c) || msgpcode.IsBin(c):
		s, err := dec.DecodeString()
		v.SetString(s)
		return err
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		if depth >= DefaultMaxDepth {
			return errTooDeep
		}
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		l := v.SetNewList()
		for range n {
			child := doc.New()
			if err := child.decodeMsgpack(dec, depth+1); err != nil {
				return err
			}
			l.Add(child)
		}
		return nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		if depth >= DefaultMaxDepth {
			return errTooDeep
		}
		n, err := dec.DecodeMapLen()
		if err != nil {
			return err
		}
		m := v.SetNewMap()
		for range n {
			key, err := dec.DecodeString()
			if err != nil {
				return err
			}
			child := doc.New()
			if err := child.decodeMsgpack(dec, depth+1); err != nil {
				return err
			}
			m.Set(key, child)
		}
		return nil
	case msgpcode.IsExt(c):
		id, n, err := dec.DecodeExtHeader()
		if err != nil {
			return err
		}
		t := Type(id)
		if id < 0 || !t.IsArray() {
			return fmt.Errorf("bdf: msgpack ext type %d is not an array type", id)
		}
		if n%t.scalarWidth() != 0 {
			return fmt.Errorf("bdf: msgpack %s of %d bytes is not a multiple of %d", t, n, t.scalarWidth())
		}
		data := make([]byte, n)
		if err := dec.ReadFull(data); err != nil {
			return err
		}
		setArrayBytes(v, t, data)
		return nil
	default:
		return fmt.Errorf("bdf: unsupported msgpack code 0x%02x", c)
	}
}

// MarshalMsgpack encodes the document root as msgpack.
func (d *Document) MarshalMsgpack() ([]byte, error) {
	bb := bytesBuilder{}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	err := d.root.EncodeMsgpack(enc)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("bdf: failed to encode msgpack: %w", err)
	}
	return bb.Buf, nil
}

// UnmarshalMsgpack decodes a msgpack value into a new document.
func UnmarshalMsgpack(data []byte) (*Document, error) {
	doc := NewDocument()
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	err := doc.root.DecodeMsgpack(dec)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, fmt.Errorf("bdf: failed to decode msgpack: %w", err)
	}
	return doc, nil
}
