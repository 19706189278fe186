package bdf

import (
	"fmt"
	"os"

	"github.com/andreyvit/bdf/mmap"
)

// ReadFile maps the file at path and decodes it as gzip, binary or text,
// whichever DetectFormat recognizes. The decoded document does not refer to
// the mapping.
func ReadFile(path string, opt DecodeOptions) (*Document, error) {
	f, err := mmap.Open(path, mmap.SequentialAccess)
	if err != nil {
		return nil, fmt.Errorf("bdf: %w", err)
	}
	defer f.Close()

	doc, _, err := Decode(f.Bytes(), opt)
	if err != nil {
		return nil, fmt.Errorf("bdf: %s: %w", path, err)
	}
	return doc, nil
}

// ParseTextFile parses the text document at path.
func ParseTextFile(path string) (*Document, error) {
	return ParseTextFileWithOptions(path, ParseOptions{})
}

func ParseTextFileWithOptions(path string, opt ParseOptions) (*Document, error) {
	f, err := mmap.Open(path, mmap.SequentialAccess)
	if err != nil {
		return nil, fmt.Errorf("bdf: %w", err)
	}
	defer f.Close()

	doc, err := ParseTextWithOptions(string(f.Bytes()), opt)
	if err != nil {
		return nil, fmt.Errorf("bdf: %s: %w", path, err)
	}
	return doc, nil
}

// WriteFile durably replaces the file at path with the binary form of doc.
func WriteFile(path string, doc *Document, perm os.FileMode) error {
	if err := mmap.WriteFile(path, doc.Marshal(), perm); err != nil {
		return fmt.Errorf("bdf: %w", err)
	}
	return nil
}

// WriteTextFile durably replaces the file at path with the text form of doc.
func WriteTextFile(path string, doc *Document, ind Indent, perm os.FileMode) error {
	if err := mmap.WriteFile(path, AppendText(nil, doc.root, ind), perm); err != nil {
		return fmt.Errorf("bdf: %w", err)
	}
	return nil
}
