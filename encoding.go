package bdf

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies a serialized representation of a document.
type Format int

const (
	FormatBinary Format = iota
	FormatText
	FormatMsgPack
	FormatJSON
	FormatGzip // gzip-compressed binary
)

var ErrUnknownFormat = errors.New("unknown format")

var formatNames = [...]string{
	FormatBinary:  "binary",
	FormatText:    "human",
	FormatMsgPack: "msgpack",
	FormatJSON:    "json",
	FormatGzip:    "gzip",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts the names returned by Format.String, plus "text" as
// an alias of "human".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	if s == "text" {
		return FormatText, nil
	}
	for f, name := range formatNames {
		if name == s {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("bdf: %q: %w", s, ErrUnknownFormat)
}

// Encode serializes doc. The indent only affects FormatText.
func Encode(doc *Document, f Format, ind Indent) ([]byte, error) {
	switch f {
	case FormatBinary:
		return doc.Marshal(), nil
	case FormatText:
		return AppendText(nil, doc.root, ind), nil
	case FormatMsgPack:
		return doc.MarshalMsgpack()
	case FormatJSON:
		return doc.MarshalJSON()
	case FormatGzip:
		return doc.MarshalGzip(0)
	default:
		return nil, fmt.Errorf("bdf: encode %v: %w", f, ErrUnknownFormat)
	}
}

// DecodeFormat parses data in the given format. Binary input (including
// gzip-compressed binary) honors opt; text input is parsed with default
// ParseOptions.
func DecodeFormat(data []byte, f Format, opt DecodeOptions) (*Document, error) {
	switch f {
	case FormatBinary:
		return UnmarshalWithOptions(data, opt)
	case FormatText:
		return ParseText(string(data))
	case FormatMsgPack:
		return UnmarshalMsgpack(data)
	case FormatJSON:
		return UnmarshalJSON(data)
	case FormatGzip:
		return UnmarshalGzip(data, opt)
	default:
		return nil, fmt.Errorf("bdf: decode %v: %w", f, ErrUnknownFormat)
	}
}

// Decode detects the format of data and parses it.
func Decode(data []byte, opt DecodeOptions) (*Document, Format, error) {
	f := DetectFormat(data)
	doc, err := DecodeFormat(data, f, opt)
	return doc, f, err
}

// DetectFormat tells gzip, binary and text apart. Anything that does not
// start with the gzip magic or a plausible binary envelope is text; msgpack
// and JSON are never detected.
func DetectFormat(data []byte) Format {
	switch {
	case IsGzip(data):
		return FormatGzip
	case looksBinary(data):
		return FormatBinary
	default:
		return FormatText
	}
}

// looksBinary checks the envelope header: a width class byte, a key table
// that fits in data, and a valid flag byte for the root node. Text never
// starts with the control bytes used as width classes.
func looksBinary(data []byte) bool {
	if len(data) == 0 || data[0] >= classCount {
		return false
	}
	w := classWidth(data[0])
	if len(data) < 1+w {
		return false
	}
	rootOff := uint64(1+w) + uint64(readSized(data[1:], w))
	if rootOff >= uint64(len(data)) {
		return false
	}
	_, _, _, ok := splitFlag(data[rootOff])
	return ok
}
