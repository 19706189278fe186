package bdf

// Document is a value tree together with the SymbolTable its maps use. A
// document and every value created through it belong to one owner at a
// time; none of it is safe for concurrent mutation.
type Document struct {
	syms *SymbolTable
	root *Value
}

// NewDocument returns a document with an Undefined root and an empty
// symbol table.
func NewDocument() *Document {
	doc := &Document{syms: newSymbolTable()}
	doc.root = &Value{doc: doc, owned: true}
	return doc
}

func (d *Document) Root() *Value {
	return d.root
}

// ResetRoot drops the whole tree and returns the (now Undefined) root. The
// symbol table is kept; locations are never reassigned.
func (d *Document) ResetRoot() *Value {
	d.root.Reset()
	return d.root
}

func (d *Document) Symbols() *SymbolTable {
	return d.syms
}

// New returns a detached Undefined value bound to d, ready to be added to
// one of d's lists or maps.
func (d *Document) New() *Value {
	return &Value{doc: d}
}

// setRoot installs v, which must be a detached value of d, as the root.
func (d *Document) setRoot(v *Value) {
	v.attach(d, nil)
	d.root.detach()
	d.root = v
}

// String returns the compact text form of the document.
func (d *Document) String() string {
	return d.Text(Compact)
}

// Compare compares the roots of two documents.
func (d *Document) Compare(o *Document) Ordering {
	return Compare(d.root, o.root)
}

func (d *Document) Equal(o *Document) bool {
	return Compare(d.root, o.root) == Equal
}
