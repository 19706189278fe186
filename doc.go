/*
Package bdf implements a self-describing typed document format with a
compact binary encoding and a human-readable text encoding.

A Document owns a tree of Values and a SymbolTable. Values are scalars
(booleans, 8/16/32/64-bit integers, 32/64-bit floats, strings), fixed-width
typed arrays, ordered Lists, and Maps with string keys. Map keys are interned
in the document's SymbolTable and referenced by Location.

# Binary encoding

**Envelope.** One byte holding the width class of the key table size, the
key table size, the key table (uvarint length + UTF-8 bytes per name, in
location order), then the root node.

**Node.** A flag byte, a size field, and a payload. The flag byte packs
three things: the type tag (0..17), the width class of the size field, and
the width class of the key reference that follows the node when it is a map
entry:

	flag = type + 18*sizeClass + 54*keyClass

Width classes are 0 for four bytes, 1 for two bytes, 2 for one byte. The size
field holds the total length of the node including the flag byte and the size
field itself. Every node uses the narrowest size field that fits. All
integers are big-endian.

**Payloads.** Scalars are stored at their natural width, strings as raw
UTF-8, arrays as their elements back to back, lists as their child nodes, and
maps as (child node, key location) pairs in insertion order. Key locations use
one document-wide width: one byte for fewer than 256 keys, two bytes up to
65536 keys, four bytes above that.

Encoding is a two-pass process: Measure computes every node size (the seeker
pass), then the emitter writes bytes into a buffer of exactly that size.
Decoding is permissive by default and keeps whatever was decoded before the
first problem; DecodeOptions.StrictSize reports problems as FormatErrors
instead.

# Text encoding

The text form is a superset of JSON: numbers carry optional type suffixes
(I, L, S, B, D, F), typed arrays are written as bool(...), int(...), long(...),
short(...), byte(...), double(...) and float(...), undefined is a literal,
NaN and Infinity are accepted, trailing commas are allowed, and line and
block comments are skipped. Parse errors are FormatErrors carrying line,
column and a caret excerpt of the offending line.
*/
package bdf
