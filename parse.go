package bdf

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ParseOptions configure text parsing. The zero value is the strict
// current behavior.
type ParseOptions struct {
	// LegacyEscapes keeps unrecognized backslash sequences in strings
	// literally (backslash included) instead of failing with
	// ErrIllegalStringBackslashEscape.
	LegacyEscapes bool

	// MaxDepth limits how deeply lists and maps may nest. Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

// ParseText parses the text form of a document. Blank input (only
// whitespace and comments) yields an Undefined root. Any error aborts the
// parse; the error is a *FormatError.
func ParseText(s string) (*Document, error) {
	return ParseRunesWithOptions([]rune(s), ParseOptions{})
}

func ParseTextWithOptions(s string, opt ParseOptions) (*Document, error) {
	return ParseRunesWithOptions([]rune(s), opt)
}

// ParseRunes parses text that has already been decoded into characters.
func ParseRunes(src []rune) (*Document, error) {
	return ParseRunesWithOptions(src, ParseOptions{})
}

func ParseRunesWithOptions(src []rune, opt ParseOptions) (*Document, error) {
	doc := NewDocument()
	p := &parser{src: src, opt: opt, doc: doc, maxDepth: maxDepth(opt.MaxDepth)}
	if err := p.document(); err != nil {
		return nil, err
	}
	return doc, nil
}

type parser struct {
	src      []rune
	pos      int
	opt      ParseOptions
	doc      *Document
	depth    int
	maxDepth int
}

const eof = -1

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return eof
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) rune {
	if p.pos+off >= len(p.src) {
		return eof
	}
	return p.src[p.pos+off]
}

func (p *parser) fail(kind ErrorKind, pos, length int) error {
	return newTextError(kind, p.src, pos, length)
}

// unexpected reports the character at the cursor, or a premature end.
func (p *parser) unexpected() error {
	if p.peek() == eof {
		return p.fail(ErrPrematureEndOfFile, p.pos, 1)
	}
	return p.fail(ErrSyntax, p.pos, 1)
}

func (p *parser) document() error {
	if err := p.skipBlanks(); err != nil {
		return err
	}
	if p.peek() == eof {
		return nil
	}
	if err := p.value(p.doc.root); err != nil {
		return err
	}
	if err := p.skipBlanks(); err != nil {
		return err
	}
	if p.peek() != eof {
		return p.fail(ErrSyntax, p.pos, 1)
	}
	return nil
}

func isBlank(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

// skipBlanks skips whitespace and comments.
func (p *parser) skipBlanks() error {
	for {
		c := p.peek()
		switch {
		case isBlank(c):
			p.pos++
		case c == '/' && p.peekAt(1) == '/':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '/' && p.peekAt(1) == '*':
			start := p.pos
			p.pos += 2
			for {
				if p.pos+1 >= len(p.src) {
					return p.fail(ErrUnescapedCommentBeforeEOF, start, 2)
				}
				if p.src[p.pos] == '*' && p.src[p.pos+1] == '/' {
					p.pos += 2
					break
				}
				p.pos++
			}
		default:
			return nil
		}
	}
}

func (p *parser) value(v *Value) error {
	c := p.peek()
	switch {
	case c == eof:
		return p.fail(ErrPrematureEndOfFile, p.pos, 1)
	case c == '{' || c == '[':
		if p.depth >= p.maxDepth {
			return p.fail(ErrSyntax, p.pos, 1)
		}
		p.depth++
		defer func() { p.depth-- }()
		if c == '{' {
			return p.mapValue(v)
		}
		return p.listValue(v)
	case c == '"':
		s, err := p.quoted()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	case isDigit(c) || c == '-' || c == '+' || c == '.':
		return p.number(v, TypeUndefined)
	case isLetter(c):
		return p.word(v)
	default:
		return p.fail(ErrSyntax, p.pos, 1)
	}
}

func (p *parser) ident() string {
	start := p.pos
	for isLetter(p.peek()) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

// word parses keywords, NaN/Infinity and array constructors.
func (p *parser) word(v *Value) error {
	start := p.pos
	w := strings.ToLower(p.ident())
	switch w {
	case "true":
		v.SetBool(true)
		return nil
	case "false":
		v.SetBool(false)
		return nil
	case "undefined":
		v.Reset()
		return nil
	}
	if t, ok := arrayKeywords[w]; ok {
		if err := p.skipBlanks(); err != nil {
			return err
		}
		if p.peek() == '(' {
			return p.array(v, t)
		}
		return p.unexpected()
	}
	p.pos = start
	return p.number(v, TypeUndefined)
}

func (p *parser) listValue(v *Value) error {
	p.pos++ // [
	l := v.SetNewList()
	for {
		if err := p.skipBlanks(); err != nil {
			return err
		}
		if p.peek() == ']' {
			p.pos++
			return nil
		}
		if err := p.value(l.AddNew()); err != nil {
			return err
		}
		if err := p.skipBlanks(); err != nil {
			return err
		}
		switch p.peek() {
		case ']':
			p.pos++
			return nil
		case ',':
			p.pos++
		default:
			return p.unexpected()
		}
	}
}

func (p *parser) mapValue(v *Value) error {
	p.pos++ // {
	m := v.SetNewMap()
	for {
		if err := p.skipBlanks(); err != nil {
			return err
		}
		switch p.peek() {
		case '}':
			p.pos++
			return nil
		case '"':
		default:
			return p.unexpected()
		}
		key, err := p.quoted()
		if err != nil {
			return err
		}
		if err := p.skipBlanks(); err != nil {
			return err
		}
		if p.peek() != ':' {
			return p.unexpected()
		}
		p.pos++
		if err := p.skipBlanks(); err != nil {
			return err
		}
		child := p.doc.New()
		if err := p.value(child); err != nil {
			return err
		}
		m.Set(key, child)
		if err := p.skipBlanks(); err != nil {
			return err
		}
		switch p.peek() {
		case '}':
			p.pos++
			return nil
		case ',':
			p.pos++
		default:
			return p.unexpected()
		}
	}
}

// quoted parses a string literal starting at the opening quote.
func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++
	var buf strings.Builder
	for {
		c := p.peek()
		switch c {
		case eof:
			return "", p.fail(ErrUnescapedStringBeforeEOF, start, 1)
		case '"':
			p.pos++
			return buf.String(), nil
		case '\\':
			if err := p.escape(&buf); err != nil {
				return "", err
			}
		default:
			buf.WriteRune(c)
			p.pos++
		}
	}
}

func (p *parser) escape(buf *strings.Builder) error {
	start := p.pos
	c := p.peekAt(1)
	switch c {
	case eof:
		return p.fail(ErrUnescapedStringBeforeEOF, start, 1)
	case 'n', '\n':
		buf.WriteByte('\n')
	case 't':
		buf.WriteByte('\t')
	case '\\':
		buf.WriteByte('\\')
	case 'u':
		r, err := p.unicodeEscape()
		if err != nil {
			return err
		}
		buf.WriteRune(r)
		return nil
	default:
		if !p.opt.LegacyEscapes {
			return p.fail(ErrIllegalStringBackslashEscape, start, 2)
		}
		buf.WriteByte('\\')
		buf.WriteRune(c)
	}
	p.pos += 2
	return nil
}

// unicodeEscape parses \uXXXX at the cursor.
func (p *parser) unicodeEscape() (rune, error) {
	start := p.pos
	if start+6 > len(p.src) {
		return 0, p.fail(ErrUnescapedStringBeforeEOF, start, len(p.src)-start)
	}
	var r rune
	for i := 2; i < 6; i++ {
		c := p.src[start+i]
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, p.fail(ErrSyntax, start+i, 1)
		}
		r = r<<4 | d
	}
	if utf16.IsSurrogate(r) {
		return 0, p.fail(ErrIllegalStringBackslashEscape, start, 6)
	}
	p.pos += 6
	return r, nil
}

// number parses a numeric literal into v. When want is an array element
// type, the literal is read as that type and a conflicting suffix is a
// syntax error.
func (p *parser) number(v *Value, want Type) error {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	if isLetter(p.peek()) {
		return p.special(v, start, want)
	}

	digits, fractional := 0, false
	for isDigit(p.peek()) {
		p.pos++
		digits++
	}
	if p.peek() == '.' {
		fractional = true
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
			digits++
		}
	}
	if digits == 0 {
		return p.unexpected()
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		fractional = true
		p.pos++
		if c := p.peek(); c == '-' || c == '+' {
			p.pos++
		}
		if !isDigit(p.peek()) {
			return p.unexpected()
		}
		for isDigit(p.peek()) {
			p.pos++
		}
	}
	text := string(p.src[start:p.pos])

	t := TypeUndefined
	if isLetter(p.peek()) {
		t = typeForSuffix(p.peek())
		if t == TypeUndefined {
			return p.fail(ErrSyntax, p.pos, 1)
		}
		p.pos++
	}
	if c := p.peek(); isLetter(c) || isDigit(c) {
		return p.fail(ErrSyntax, p.pos, 1)
	}
	length := p.pos - start

	switch {
	case want != TypeUndefined && t != TypeUndefined && t != want:
		return p.fail(ErrSyntax, start, length)
	case want != TypeUndefined:
		t = want
	case t == TypeUndefined && fractional:
		t = TypeDouble
	}
	if fractional && t != TypeUndefined && t != TypeDouble && t != TypeFloat {
		return p.fail(ErrSyntax, start, length)
	}

	outOfRange := func(err error) error {
		if errors.Is(err, strconv.ErrRange) {
			return p.fail(ErrNumericOutOfRange, start, length)
		}
		return p.fail(ErrSyntax, start, length)
	}
	switch t {
	case TypeUndefined:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return outOfRange(err)
		}
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			v.SetInt32(int32(n))
		} else {
			v.SetInt64(n)
		}
	case TypeByte, TypeShort, TypeInteger, TypeLong:
		n, err := strconv.ParseInt(text, 10, 8*t.scalarWidth())
		if err != nil {
			return outOfRange(err)
		}
		switch t {
		case TypeByte:
			v.SetInt8(int8(n))
		case TypeShort:
			v.SetInt16(int16(n))
		case TypeInteger:
			v.SetInt32(int32(n))
		default:
			v.SetInt64(n)
		}
	case TypeDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return outOfRange(err)
		}
		v.SetFloat64(f)
	case TypeFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return outOfRange(err)
		}
		v.SetFloat32(float32(f))
	default:
		return p.fail(ErrSyntax, start, length)
	}
	return nil
}

// special parses NaN and Infinity (with an optional sign and D/F suffix).
func (p *parser) special(v *Value, start int, want Type) error {
	negative := p.src[start] == '-'
	w := strings.ToLower(p.ident())
	length := p.pos - start

	suffix := TypeUndefined
	switch {
	case strings.HasSuffix(w, "d") && w != "d":
		w, suffix = w[:len(w)-1], TypeDouble
	case strings.HasSuffix(w, "f") && w != "f":
		w, suffix = w[:len(w)-1], TypeFloat
	}
	t := TypeDouble
	switch {
	case want != TypeUndefined && suffix != TypeUndefined && suffix != want:
		return p.fail(ErrSyntax, start, length)
	case want != TypeUndefined:
		t = want
	case suffix != TypeUndefined:
		t = suffix
	}

	var f float64
	switch w {
	case "nan":
		f = math.NaN()
	case "infinity":
		f = math.Inf(1)
		if negative {
			f = math.Inf(-1)
		}
	default:
		return p.fail(ErrSyntax, start, length)
	}
	switch t {
	case TypeDouble:
		v.SetFloat64(f)
	case TypeFloat:
		v.SetFloat32(float32(f))
	default:
		return p.fail(ErrSyntax, start, length)
	}
	return nil
}

// array parses "(elem, ...)" after an array keyword.
func (p *parser) array(v *Value, t Type) error {
	p.pos++ // (
	elemType := t.ElemType()
	elem := p.doc.New()
	var (
		bools   []bool
		ints    []int32
		longs   []int64
		shorts  []int16
		int8s   []int8
		doubles []float64
		floats  []float32
	)
	for {
		if err := p.skipBlanks(); err != nil {
			return err
		}
		if p.peek() == ')' {
			p.pos++
			break
		}
		if elemType == TypeBoolean {
			start := p.pos
			switch strings.ToLower(p.ident()) {
			case "true":
				bools = append(bools, true)
			case "false":
				bools = append(bools, false)
			default:
				p.pos = start
				return p.unexpected()
			}
		} else {
			if err := p.number(elem, elemType); err != nil {
				return err
			}
			switch elemType {
			case TypeInteger:
				ints = append(ints, int32(elem.bits))
			case TypeLong:
				longs = append(longs, int64(elem.bits))
			case TypeShort:
				shorts = append(shorts, int16(elem.bits))
			case TypeByte:
				int8s = append(int8s, int8(elem.bits))
			case TypeDouble:
				doubles = append(doubles, math.Float64frombits(elem.bits))
			case TypeFloat:
				floats = append(floats, math.Float32frombits(uint32(elem.bits)))
			}
		}
		if err := p.skipBlanks(); err != nil {
			return err
		}
		if p.peek() == ')' {
			p.pos++
			break
		}
		if p.peek() != ',' {
			return p.unexpected()
		}
		p.pos++
	}

	switch t {
	case TypeArrayBoolean:
		v.SetBoolArray(bools)
	case TypeArrayInteger:
		v.SetInt32Array(ints)
	case TypeArrayLong:
		v.SetInt64Array(longs)
	case TypeArrayShort:
		v.SetInt16Array(shorts)
	case TypeArrayByte:
		v.SetInt8Array(int8s)
	case TypeArrayDouble:
		v.SetFloat64Array(doubles)
	case TypeArrayFloat:
		v.SetFloat32Array(floats)
	}
	return nil
}
