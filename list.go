package bdf

import (
	"fmt"
	"iter"
)

// Pos is a handle to an entry of a List. Handles stay valid across
// insertions and removals of other entries; the handle of a removed entry
// must not be used again.
type Pos int32

// NoPos is returned when there is no such entry.
const NoPos Pos = -1

// List is an ordered sequence of values.
//
// Entries live in an arena slice and are linked by index, which gives O(1)
// append and positional insert/remove with stable iteration order. Slots
// of removed entries are recycled through a free list. Index lookup walks
// the links and is O(n).
type List struct {
	doc   *Document
	owner *Value
	items []listItem
	free  []Pos
	head  Pos
	tail  Pos
	size  int
}

type listItem struct {
	val  *Value
	prev Pos
	next Pos
}

func newList(doc *Document, owner *Value) *List {
	return &List{doc: doc, owner: owner, head: NoPos, tail: NoPos}
}

func (l *List) Len() int {
	return l.size
}

func (l *List) Front() Pos {
	return l.head
}

func (l *List) Back() Pos {
	return l.tail
}

func (l *List) Next(p Pos) Pos {
	return l.item(p).next
}

func (l *List) Prev(p Pos) Pos {
	return l.item(p).prev
}

// At returns the value stored at p.
func (l *List) At(p Pos) *Value {
	return l.item(p).val
}

func (l *List) item(p Pos) *listItem {
	if p < 0 || int(p) >= len(l.items) || l.items[p].val == nil {
		panic(fmt.Sprintf("bdf: invalid list position %d", p))
	}
	return &l.items[p]
}

func (l *List) alloc(v *Value) Pos {
	v.attach(l.doc, l.owner)
	if n := len(l.free); n > 0 {
		p := l.free[n-1]
		l.free = l.free[:n-1]
		l.items[p] = listItem{val: v, prev: NoPos, next: NoPos}
		return p
	}
	l.items = append(l.items, listItem{val: v, prev: NoPos, next: NoPos})
	return Pos(len(l.items) - 1)
}

// Add appends v to the end of the list.
func (l *List) Add(v *Value) *List {
	p := l.alloc(v)
	l.linkAfter(l.tail, p)
	return l
}

// AddNew appends a new Undefined value and returns it.
func (l *List) AddNew() *Value {
	v := l.doc.New()
	l.Add(v)
	return v
}

// linkAfter links p after at, or at the head when at is NoPos.
func (l *List) linkAfter(at, p Pos) {
	it := &l.items[p]
	if at == NoPos {
		it.prev = NoPos
		it.next = l.head
		if l.head != NoPos {
			l.items[l.head].prev = p
		} else {
			l.tail = p
		}
		l.head = p
	} else {
		a := &l.items[at]
		it.prev = at
		it.next = a.next
		if a.next != NoPos {
			l.items[a.next].prev = p
		} else {
			l.tail = p
		}
		a.next = p
	}
	l.size++
}

// InsertAfter inserts v right after the entry at p and returns its handle.
func (l *List) InsertAfter(p Pos, v *Value) Pos {
	l.item(p)
	np := l.alloc(v)
	l.linkAfter(p, np)
	return np
}

// InsertBefore inserts v right before the entry at p and returns its handle.
func (l *List) InsertBefore(p Pos, v *Value) Pos {
	prev := l.item(p).prev
	np := l.alloc(v)
	l.linkAfter(prev, np)
	return np
}

func (l *List) InsertAfterIndex(i int, v *Value) error {
	p, err := l.posErr(i)
	if err != nil {
		return err
	}
	l.InsertAfter(p, v)
	return nil
}

func (l *List) InsertBeforeIndex(i int, v *Value) error {
	p, err := l.posErr(i)
	if err != nil {
		return err
	}
	l.InsertBefore(p, v)
	return nil
}

// InsertAfterMatch inserts v after the first entry equal to needle. If no
// entry matches, v is appended when fallbackToAdd is set, otherwise
// ErrNotFound is returned.
func (l *List) InsertAfterMatch(needle, v *Value, fallbackToAdd bool) error {
	p := l.Find(needle)
	switch {
	case p != NoPos:
		l.InsertAfter(p, v)
	case fallbackToAdd:
		l.Add(v)
	default:
		return fmt.Errorf("bdf: list insert: no matching element: %w", ErrNotFound)
	}
	return nil
}

// InsertBeforeMatch inserts v before the first entry equal to needle, with
// the same fallback rules as InsertAfterMatch.
func (l *List) InsertBeforeMatch(needle, v *Value, fallbackToAdd bool) error {
	p := l.Find(needle)
	switch {
	case p != NoPos:
		l.InsertBefore(p, v)
	case fallbackToAdd:
		l.Add(v)
	default:
		return fmt.Errorf("bdf: list insert: no matching element: %w", ErrNotFound)
	}
	return nil
}

// Pos returns the handle of the i-th entry, or NoPos.
func (l *List) Pos(i int) Pos {
	if i < 0 || i >= l.size {
		return NoPos
	}
	if i > l.size/2 {
		p := l.tail
		for n := l.size - 1; n > i; n-- {
			p = l.items[p].prev
		}
		return p
	}
	p := l.head
	for ; i > 0; i-- {
		p = l.items[p].next
	}
	return p
}

func (l *List) posErr(i int) (Pos, error) {
	p := l.Pos(i)
	if p == NoPos {
		return NoPos, fmt.Errorf("bdf: list index %d (len %d): %w", i, l.size, ErrIndexOutOfRange)
	}
	return p, nil
}

func (l *List) Get(i int) (*Value, bool) {
	p := l.Pos(i)
	if p == NoPos {
		return nil, false
	}
	return l.items[p].val, true
}

// Set replaces the i-th entry with v.
func (l *List) Set(i int, v *Value) error {
	p, err := l.posErr(i)
	if err != nil {
		return err
	}
	it := &l.items[p]
	if it.val == v {
		return nil
	}
	v.attach(l.doc, l.owner)
	it.val.detach()
	it.val = v
	return nil
}

// Remove unlinks the entry at p.
func (l *List) Remove(p Pos) {
	it := l.item(p)
	if it.prev != NoPos {
		l.items[it.prev].next = it.next
	} else {
		l.head = it.next
	}
	if it.next != NoPos {
		l.items[it.next].prev = it.prev
	} else {
		l.tail = it.prev
	}
	it.val.detach()
	*it = listItem{prev: NoPos, next: NoPos}
	l.free = append(l.free, p)
	l.size--
	if l.size == 0 {
		l.items, l.free = l.items[:0], l.free[:0]
	}
}

func (l *List) RemoveAt(i int) error {
	p, err := l.posErr(i)
	if err != nil {
		return err
	}
	l.Remove(p)
	return nil
}

// RemoveValue removes the entry holding exactly v (by identity).
func (l *List) RemoveValue(v *Value) bool {
	for p := l.head; p != NoPos; p = l.items[p].next {
		if l.items[p].val == v {
			l.Remove(p)
			return true
		}
	}
	return false
}

// Find returns the first entry equal to needle, or NoPos.
func (l *List) Find(needle *Value) Pos {
	for p := l.head; p != NoPos; p = l.items[p].next {
		if Compare(l.items[p].val, needle) == Equal {
			return p
		}
	}
	return NoPos
}

func (l *List) FindIndex(needle *Value) (int, bool) {
	i := 0
	for p := l.head; p != NoPos; p = l.items[p].next {
		if Compare(l.items[p].val, needle) == Equal {
			return i, true
		}
		i++
	}
	return -1, false
}

// Resize grows the list to n entries by appending Undefined values, or
// shrinks it by dropping entries from the tail.
func (l *List) Resize(n int) *List {
	if n < 0 {
		panic("bdf: negative list size")
	}
	for l.size < n {
		l.AddNew()
	}
	for l.size > n {
		l.Remove(l.tail)
	}
	return l
}

// TrimUndefined removes trailing Undefined entries.
func (l *List) TrimUndefined() *List {
	for l.tail != NoPos && !l.items[l.tail].val.IsDefined() {
		l.Remove(l.tail)
	}
	return l
}

func (l *List) Clear() *List {
	l.releaseAll()
	l.items, l.free = nil, nil
	l.head, l.tail, l.size = NoPos, NoPos, 0
	return l
}

func (l *List) releaseAll() {
	for p := l.head; p != NoPos; p = l.items[p].next {
		l.items[p].val.detach()
	}
}

// All yields entries front to back with their indices.
func (l *List) All() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		i := 0
		for p := l.head; p != NoPos; p = l.items[p].next {
			if !yield(i, l.items[p].val) {
				return
			}
			i++
		}
	}
}

// Backward yields entries back to front with their indices.
func (l *List) Backward() iter.Seq2[int, *Value] {
	return func(yield func(int, *Value) bool) {
		i := l.size - 1
		for p := l.tail; p != NoPos; p = l.items[p].prev {
			if !yield(i, l.items[p].val) {
				return
			}
			i--
		}
	}
}
