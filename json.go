package bdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var _ json.Marshaler = (*Value)(nil)

// MarshalJSON renders v as JSON. Undefined, NaN and infinities become null;
// typed arrays become plain arrays; map keys keep insertion order.
func (v *Value) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, v), nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, d.root), nil
}

func appendJSON(buf []byte, v *Value) []byte {
	switch v.typ {
	case TypeUndefined:
		return append(buf, "null"...)
	case TypeBoolean:
		return strconv.AppendBool(buf, v.bits != 0)
	case TypeInteger, TypeLong, TypeShort, TypeByte:
		return strconv.AppendInt(buf, int64(v.bits), 10)
	case TypeDouble:
		return appendJSONFloat(buf, math.Float64frombits(v.bits), 64)
	case TypeFloat:
		return appendJSONFloat(buf, float64(math.Float32frombits(uint32(v.bits))), 32)
	case TypeString:
		return appendJSONString(buf, v.str)
	case TypeList:
		buf = append(buf, '[')
		for i, child := range v.list.All() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSON(buf, child)
		}
		return append(buf, ']')
	case TypeMap:
		buf = append(buf, '{')
		for i, e := range v.dict.entries {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSONString(buf, v.dict.doc.syms.mustName(e.key))
			buf = append(buf, ':')
			buf = appendJSON(buf, e.val)
		}
		return append(buf, '}')
	default:
		buf = append(buf, '[')
		for i := range v.arrayLen() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendJSON(buf, v.arrayElem(i))
		}
		return append(buf, ']')
	}
}

func appendJSONFloat(buf []byte, f float64, bitSize int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, "null"...)
	}
	return strconv.AppendFloat(buf, f, 'g', -1, bitSize)
}

func appendJSONString(buf []byte, s string) []byte {
	raw, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Errorf("failed to encode string to JSON: %w", err))
	}
	return append(buf, raw...)
}

// UnmarshalJSON parses a JSON document. Objects keep their key order,
// integral numbers become Integer (or Long when they don't fit), other
// numbers Double, and null Undefined.
func UnmarshalJSON(data []byte) (*Document, error) {
	doc := NewDocument()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := decodeJSON(dec, doc.root, 0); err != nil {
		return nil, fmt.Errorf("bdf: invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("bdf: invalid JSON: trailing data")
	}
	return doc, nil
}

func decodeJSON(dec *json.Decoder, v *Value, depth int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch tok := tok.(type) {
	case nil:
		v.Reset()
	case bool:
		v.SetBool(tok)
	case string:
		v.SetString(tok)
	case json.Number:
		if n, err := tok.Int64(); err == nil {
			if n >= math.MinInt32 && n <= math.MaxInt32 {
				v.SetInt32(int32(n))
			} else {
				v.SetInt64(n)
			}
			return nil
		}
		f, err := tok.Float64()
		if err != nil {
			return err
		}
		v.SetFloat64(f)
	case json.Delim:
		if depth >= DefaultMaxDepth {
			return errTooDeep
		}
		switch tok {
		case '[':
			l := v.SetNewList()
			for dec.More() {
				if err := decodeJSON(dec, l.AddNew(), depth+1); err != nil {
					return err
				}
			}
		case '{':
			m := v.SetNewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				child := v.doc.New()
				if err := decodeJSON(dec, child, depth+1); err != nil {
					return err
				}
				m.Set(keyTok.(string), child)
			}
		default:
			return fmt.Errorf("unexpected %v", tok)
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
	}
	return nil
}
