package bdf

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorKind_Error(t *testing.T) {
	eq(t, ErrSyntax.Error(), "syntax error")
	eq(t, ErrNumericOutOfRange.Error(), "number out of range")
	eq(t, ErrorKind(99).Error(), "error kind 99")
}

func TestNewTextError_Position(t *testing.T) {
	src := []rune("first\nsec\tond line\r\nthird")
	err := newTextError(ErrSyntax, src, 10, 3) // "ond"

	eq(t, err.Line, 2)
	eq(t, err.Column, 5)
	eq(t, err.Offset, 10)
	eq(t, err.Length, 3)
	eq(t, err.Context, "sec\tond line\n   \t^^^")
	eq(t, err.Short(), "syntax error 2:5")
	eq(t, err.Error(), "syntax error 2:5\nsec\tond line\n   \t^^^")
}

func TestNewTextError_Clamps(t *testing.T) {
	src := []rune("ab")
	err := newTextError(ErrPrematureEndOfFile, src, 10, 0)
	eq(t, err.Line, 1)
	eq(t, err.Column, 3)
	eq(t, err.Length, 1)
	eq(t, err.Context, "ab\n  ^")

	err = newTextError(ErrSyntax, nil, 0, 1)
	eq(t, err.Short(), "syntax error 1:1")
}

func TestFormatError_Unwrap(t *testing.T) {
	var err error = newTextError(ErrIllegalStringBackslashEscape, []rune(`"\q"`), 1, 2)
	if !errors.Is(err, ErrIllegalStringBackslashEscape) {
		t.Fatalf("errors.Is(%v, ErrIllegalStringBackslashEscape) = false", err)
	}
	if errors.Is(err, ErrSyntax) {
		t.Fatalf("errors.Is(%v, ErrSyntax) = true", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Kind != ErrIllegalStringBackslashEscape {
		t.Fatalf("errors.As failed for %v", err)
	}
}

func TestFormatError_Binary(t *testing.T) {
	err := &FormatError{Kind: ErrBinarySizeTagMismatch, Offset: 7, Context: "node size 9 exceeds remaining 3 bytes"}
	eq(t, err.Short(), "binary size tag mismatch at offset 7")
	if !strings.HasSuffix(err.Error(), "\nnode size 9 exceeds remaining 3 bytes") {
		t.Fatalf("Error() = %q", err.Error())
	}
	err.Context = ""
	eq(t, err.Error(), err.Short())
}
