package bdf

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies a FormatError. Kinds are errors themselves, so
// errors.Is(err, ErrSyntax) matches any syntax FormatError.
type ErrorKind int

const (
	ErrSyntax ErrorKind = iota + 1
	ErrPrematureEndOfFile
	ErrUnescapedCommentBeforeEOF
	ErrUnescapedStringBeforeEOF
	ErrIllegalStringBackslashEscape
	ErrNumericOutOfRange
	ErrBinarySizeTagMismatch
)

var errorKindNames = [...]string{
	ErrSyntax:                       "syntax error",
	ErrPrematureEndOfFile:           "premature end of file",
	ErrUnescapedCommentBeforeEOF:    "unterminated comment",
	ErrUnescapedStringBeforeEOF:     "unterminated string",
	ErrIllegalStringBackslashEscape: "illegal backslash escape",
	ErrNumericOutOfRange:            "number out of range",
	ErrBinarySizeTagMismatch:        "binary size tag mismatch",
}

func (k ErrorKind) Error() string {
	if k > 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return "error kind " + strconv.Itoa(int(k))
}

// FormatError reports malformed text or binary input.
//
// Text errors carry a 1-based Line and Column (counted in characters), the
// character Offset into the source, and a Context of the offending line
// with carets under the Length characters at fault. Binary errors have a
// zero Line, a byte Offset, and a Context describing the problem.
type FormatError struct {
	Kind    ErrorKind
	Line    int
	Column  int
	Offset  int
	Length  int
	Context string
}

// Short returns the kind and position, e.g. "syntax error 3:14".
func (e *FormatError) Short() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("%v %d:%d", e.Kind, e.Line, e.Column)
}

// Error returns the short form followed by the context on the next lines.
func (e *FormatError) Error() string {
	if e.Context == "" {
		return e.Short()
	}
	return e.Short() + "\n" + e.Context
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

// newTextError derives the position and context of an error spanning
// length characters at pos in src.
func newTextError(kind ErrorKind, src []rune, pos, length int) *FormatError {
	pos = max(0, min(pos, len(src)))
	length = max(length, 1)

	lineStart, line := 0, 1
	for i := 0; i < pos; i++ {
		if src[i] == '\n' {
			lineStart = i + 1
			line++
		}
	}
	lineEnd := lineStart
	for lineEnd < len(src) && src[lineEnd] != '\n' {
		lineEnd++
	}

	var ctx strings.Builder
	ctx.WriteString(strings.TrimRight(string(src[lineStart:lineEnd]), "\r"))
	ctx.WriteByte('\n')
	for _, c := range src[lineStart:pos] {
		if c == '\t' {
			ctx.WriteByte('\t')
		} else {
			ctx.WriteByte(' ')
		}
	}
	ctx.WriteString(strings.Repeat("^", length))

	return &FormatError{
		Kind:    kind,
		Line:    line,
		Column:  pos - lineStart + 1,
		Offset:  pos,
		Length:  length,
		Context: ctx.String(),
	}
}
