package delta

import "fmt"

// Compose returns the delta equivalent to applying d and then other to
// the same base document. other's base length must not exceed d's result
// length; any uncovered tail of d carries through unchanged.
//
// Deletes in other win over retained content in d; an insert in d that
// other deletes cancels out entirely. Attribute sets on overlapping
// retains merge key by key with other's value winning and a nil value
// removing the key.
func (d *Delta) Compose(other *Delta) (*Delta, error) {
	if ob, dl := other.BaseLength(), d.Length(); ob > dl {
		return nil, fmt.Errorf("compose: base length %d against result length %d: %w", ob, dl, ErrLengthMismatch)
	}
	thisIter := newIterator(d.ops)
	otherIter := newIterator(other.ops)
	out := New()
	for thisIter.hasNext() || otherIter.hasNext() {
		if otherIter.peekKind() == kindInsert {
			out.push(otherIter.next(unbounded))
			continue
		}
		if thisIter.peekKind() == kindDelete {
			out.push(thisIter.next(unbounded))
			continue
		}
		n := min(thisIter.peekLength(), otherIter.peekLength())
		thisOp := thisIter.next(n)
		switch otherOp := otherIter.next(n).(type) {
		case RetainOp:
			switch t := thisOp.(type) {
			case RetainOp:
				out.push(RetainOp{N: n, Attributes: ComposeAttributes(t.Attributes, otherOp.Attributes, true)})
			case InsertOp:
				out.push(InsertOp{Text: t.Text, Attributes: ComposeAttributes(t.Attributes, otherOp.Attributes, false)})
			case InsertEmbedOp:
				out.push(InsertEmbedOp{Embed: t.Embed, Attributes: ComposeAttributes(t.Attributes, otherOp.Attributes, false)})
			}
		case DeleteOp:
			// Deleting content d inserted cancels both ops; deleting
			// retained base content survives.
			if _, ok := thisOp.(RetainOp); ok {
				out.push(otherOp)
			}
		}
	}
	return out.chop(), nil
}
