package bdf

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpStats = DumpFlags(1 << iota)
	DumpNodes
	DumpKeys

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)

	indentStep = "  "
)

var dumpSep = strings.Repeat("-", 60)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump describes how v is laid out by the binary encoder: a summary line,
// one line per node with its offset within the encoded node, total size and
// size field width, and the number of map entries using each key.
func Dump(v *Value, f DumpFlags) string {
	lay := Measure(v)
	syms := v.mustDoc().syms
	var buf strings.Builder
	sep := false
	section := func() {
		if sep {
			fmt.Fprintln(&buf, dumpSep)
		}
		sep = true
	}

	if f.Contains(DumpStats) {
		section()
		fmt.Fprintf(&buf, "total = %d, nodes = %d, keys = %d, key_width = %d\n", lay.Total, len(lay.Sizes), len(lay.Uses), lay.KeyWidth())
	}
	if f.Contains(DumpNodes) {
		section()
		d := dumper{w: &buf, lay: &lay, syms: syms}
		d.node(v, "", "")
	}
	if f.Contains(DumpKeys) {
		section()
		for loc, n := range lay.Uses {
			fmt.Fprintf(&buf, "@%d %q x%d\n", loc, syms.mustName(Location(loc)), n)
		}
	}
	return buf.String()
}

type dumper struct {
	w    *strings.Builder
	lay  *Layout
	syms *SymbolTable
	next int
	off  int
}

func (d *dumper) node(v *Value, indent, label string) {
	size := d.lay.Sizes[d.next]
	d.next++
	w := classWidth(widthClassFor(size))
	start := d.off

	fmt.Fprintf(d.w, "%06d %s%s%v size=%d/%d", start, indent, label, v.typ, size, w)
	switch v.typ {
	case TypeList:
		fmt.Fprintf(d.w, " len=%d\n", v.list.size)
		d.off += 1 + w
		for p := v.list.head; p != NoPos; p = v.list.items[p].next {
			d.node(v.list.items[p].val, indent+indentStep, "")
		}
	case TypeMap:
		fmt.Fprintf(d.w, " len=%d\n", len(v.dict.entries))
		d.off += 1 + w
		for _, e := range v.dict.entries {
			d.node(e.val, indent+indentStep, fmt.Sprintf("%q@%d: ", d.syms.mustName(e.key), e.key))
			d.off += d.lay.KeyWidth()
		}
	default:
		fmt.Fprintf(d.w, " %s\n", v.String())
	}
	d.off = start + size
}
