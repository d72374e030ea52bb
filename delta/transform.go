package delta

// Transform rebases other to apply after d, assuming both were built
// against the same base document. With priority, d is treated as having
// happened first: its inserts stay ahead of other's at the same
// position, and its attribute writes win conflicts.
//
// This is the single-writer rebase primitive used for chaining rule
// outputs and for caret tracking, not a multi-writer merge.
func (d *Delta) Transform(other *Delta, priority bool) *Delta {
	thisIter := newIterator(d.ops)
	otherIter := newIterator(other.ops)
	out := New()
	for thisIter.hasNext() || otherIter.hasNext() {
		if thisIter.peekKind() == kindInsert && (priority || otherIter.peekKind() != kindInsert) {
			out.Retain(thisIter.next(unbounded).Length(), nil)
			continue
		}
		if otherIter.peekKind() == kindInsert {
			out.push(otherIter.next(unbounded))
			continue
		}
		n := min(thisIter.peekLength(), otherIter.peekLength())
		thisOp := thisIter.next(n)
		otherOp := otherIter.next(n)
		if _, ok := thisOp.(DeleteOp); ok {
			// d already removed this range; other's retain or delete of
			// it has nothing left to act on.
			continue
		}
		if del, ok := otherOp.(DeleteOp); ok {
			out.push(del)
			continue
		}
		out.Retain(n, TransformAttributes(opAttributes(thisOp), opAttributes(otherOp), priority))
	}
	return out.chop()
}

// TransformPosition rebases a character offset across d. With priority,
// an insert exactly at the offset leaves it in place; without, the
// offset moves past the inserted content.
func (d *Delta) TransformPosition(index int, priority bool) int {
	iter := newIterator(d.ops)
	offset := 0
	for iter.hasNext() && offset <= index {
		n := iter.peekLength()
		kind := iter.peekKind()
		iter.next(unbounded)
		switch kind {
		case kindDelete:
			index -= min(n, index-offset)
			continue
		case kindInsert:
			if offset < index || !priority {
				index += n
			}
		}
		offset += n
	}
	return index
}
