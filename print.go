package bdf

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ErrInvalidIndent = errors.New("invalid indent")

// Indent configures the text printer: Break is written before every child
// and closing bracket of a non-empty list or map, followed by Unit repeated
// once per nesting level.
type Indent struct {
	Unit  string
	Break string
}

var (
	// Compact prints everything on one line.
	Compact = Indent{}
	// Pretty puts every child on its own tab-indented line.
	Pretty = Indent{Unit: "\t", Break: "\n"}
)

// NewIndent returns an Indent after checking that both strings consist of
// spaces, tabs, carriage returns and line feeds only.
func NewIndent(unit, brk string) (Indent, error) {
	for _, s := range [...]string{unit, brk} {
		if i := strings.IndexFunc(s, func(c rune) bool { return !isBlank(c) }); i >= 0 {
			r, _ := utf8.DecodeRuneInString(s[i:])
			return Indent{}, fmt.Errorf("bdf: indent %q contains non-whitespace character %q: %w", s, r, ErrInvalidIndent)
		}
	}
	return Indent{Unit: unit, Break: brk}, nil
}

func (d *Document) Text(ind Indent) string {
	return d.root.Text(ind)
}

func (d *Document) WriteText(w io.Writer, ind Indent) error {
	_, err := w.Write(AppendText(nil, d.root, ind))
	return err
}

func (v *Value) Text(ind Indent) string {
	return string(AppendText(nil, v, ind))
}

// String returns the compact text form of v.
func (v *Value) String() string {
	return v.Text(Compact)
}

// AppendText appends the text form of v to buf.
func AppendText(buf []byte, v *Value, ind Indent) []byte {
	pr := printer{buf: buf, ind: ind}
	pr.value(v, 0)
	return pr.buf
}

type printer struct {
	buf []byte
	ind Indent
}

func (pr *printer) newline(level int) {
	pr.buf = append(pr.buf, pr.ind.Break...)
	for range level {
		pr.buf = append(pr.buf, pr.ind.Unit...)
	}
}

func (pr *printer) separator() {
	pr.buf = append(pr.buf, ',')
	if pr.ind.Break == "" {
		pr.buf = append(pr.buf, ' ')
	}
}

func (pr *printer) value(v *Value, level int) {
	switch v.typ {
	case TypeUndefined:
		pr.buf = append(pr.buf, "undefined"...)
	case TypeBoolean:
		pr.buf = strconv.AppendBool(pr.buf, v.bits != 0)
	case TypeInteger, TypeLong, TypeShort, TypeByte:
		pr.buf = strconv.AppendInt(pr.buf, int64(v.bits), 10)
		pr.buf = append(pr.buf, v.typ.suffix())
	case TypeDouble:
		pr.float(math.Float64frombits(v.bits), 64)
		pr.buf = append(pr.buf, 'D')
	case TypeFloat:
		pr.float(float64(math.Float32frombits(uint32(v.bits))), 32)
		pr.buf = append(pr.buf, 'F')
	case TypeString:
		pr.quoted(v.str)
	case TypeList:
		l := v.list
		if l.size == 0 {
			pr.buf = append(pr.buf, "[]"...)
			return
		}
		pr.buf = append(pr.buf, '[')
		for p := l.head; p != NoPos; p = l.items[p].next {
			if p != l.head {
				pr.separator()
			}
			pr.newline(level + 1)
			pr.value(l.items[p].val, level+1)
		}
		pr.newline(level)
		pr.buf = append(pr.buf, ']')
	case TypeMap:
		m := v.dict
		if len(m.entries) == 0 {
			pr.buf = append(pr.buf, "{}"...)
			return
		}
		pr.buf = append(pr.buf, '{')
		for i, e := range m.entries {
			if i > 0 {
				pr.separator()
			}
			pr.newline(level + 1)
			pr.quoted(m.doc.syms.mustName(e.key))
			pr.buf = append(pr.buf, ": "...)
			pr.value(e.val, level+1)
		}
		pr.newline(level)
		pr.buf = append(pr.buf, '}')
	default:
		pr.array(v)
	}
}

func (pr *printer) float(f float64, bitSize int) {
	switch {
	case math.IsNaN(f):
		pr.buf = append(pr.buf, "NaN"...)
	case math.IsInf(f, 1):
		pr.buf = append(pr.buf, "Infinity"...)
	case math.IsInf(f, -1):
		pr.buf = append(pr.buf, "-Infinity"...)
	default:
		pr.buf = strconv.AppendFloat(pr.buf, f, 'g', -1, bitSize)
	}
}

// array prints arrays on one line regardless of the indent.
func (pr *printer) array(v *Value) {
	pr.buf = append(pr.buf, arrayKeyword(v.typ)...)
	pr.buf = append(pr.buf, '(')
	for i := range v.arrayLen() {
		if i > 0 {
			pr.buf = append(pr.buf, ", "...)
		}
		pr.value(v.arrayElem(i), 0)
	}
	pr.buf = append(pr.buf, ')')
}

const hexDigits = "0123456789abcdef"

// quoted prints s as a string literal. Bytes that are not valid UTF-8
// print as \ufffd.
func (pr *printer) quoted(s string) {
	pr.buf = append(pr.buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			pr.buf = append(pr.buf, '\\', '\\')
		case c == '\n':
			pr.buf = append(pr.buf, '\\', 'n')
		case c == '\t':
			pr.buf = append(pr.buf, '\\', 't')
		case c == '"' || c < 0x20 || c == 0x7f:
			pr.buf = append(pr.buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		case c >= utf8.RuneSelf:
			r, n := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && n == 1 {
				pr.buf = append(pr.buf, `\ufffd`...)
			} else {
				pr.buf = append(pr.buf, s[i:i+n]...)
			}
			i += n - 1
		default:
			pr.buf = append(pr.buf, c)
		}
	}
	pr.buf = append(pr.buf, '"')
}
