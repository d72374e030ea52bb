package delta

import "math"

type opKind int

const (
	kindRetain opKind = iota
	kindInsert
	kindDelete
)

// unbounded stands in for an infinite op length. Exhausted iterators
// yield plain retains of this length so two deltas of different lengths
// can be walked in a single loop.
const unbounded = math.MaxInt / 2

// opIterator walks a delta's ops in character steps, splitting ops at
// arbitrary boundaries. Iterators never modify the underlying ops.
type opIterator struct {
	ops    []Op
	index  int
	offset int // rune offset into ops[index]
}

func newIterator(ops []Op) *opIterator {
	return &opIterator{ops: ops}
}

func (it *opIterator) hasNext() bool {
	return it.index < len(it.ops)
}

// peekLength is the remaining length of the current op, unbounded when
// the iterator is exhausted.
func (it *opIterator) peekLength() int {
	if !it.hasNext() {
		return unbounded
	}
	return it.ops[it.index].Length() - it.offset
}

// peekKind is the kind of the current op, retain when exhausted.
func (it *opIterator) peekKind() opKind {
	if !it.hasNext() {
		return kindRetain
	}
	switch it.ops[it.index].(type) {
	case DeleteOp:
		return kindDelete
	case RetainOp:
		return kindRetain
	}
	return kindInsert
}

// next consumes up to n characters of the current op and returns the
// consumed piece. Past the end it returns an unbounded plain retain.
func (it *opIterator) next(n int) Op {
	if !it.hasNext() {
		return RetainOp{N: unbounded}
	}
	op := it.ops[it.index]
	offset := it.offset
	remaining := op.Length() - offset
	if n >= remaining {
		n = remaining
		it.index++
		it.offset = 0
	} else {
		it.offset += n
	}
	switch o := op.(type) {
	case DeleteOp:
		return DeleteOp{N: n}
	case RetainOp:
		return RetainOp{N: n, Attributes: o.Attributes}
	case InsertOp:
		return InsertOp{Text: runeSlice(o.Text, offset, offset+n), Attributes: o.Attributes}
	default:
		return op // embeds are atomic
	}
}

// rest returns the unconsumed tail, including the remainder of a
// partially consumed op.
func (it *opIterator) rest() []Op {
	if !it.hasNext() {
		return nil
	}
	if it.offset == 0 {
		return it.ops[it.index:]
	}
	offset, index := it.offset, it.index
	head := it.next(unbounded)
	tail := it.ops[it.index:]
	it.offset, it.index = offset, index
	return append([]Op{head}, tail...)
}

// runeSlice returns the substring of s covering rune positions [from, to).
func runeSlice(s string, from, to int) string {
	if from == 0 && to >= len(s) {
		return s
	}
	r := []rune(s)
	if to > len(r) {
		to = len(r)
	}
	return string(r[from:to])
}
