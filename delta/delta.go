package delta

import "fmt"

// Delta is an ordered sequence of operations describing either a whole
// document (inserts only) or a change to one. The zero value is not
// usable; construct with New.
//
// Builder methods mutate and return the receiver for chaining. A delta
// handed to another component must not be modified afterwards.
type Delta struct {
	ops []Op
}

// New returns an empty delta.
func New() *Delta {
	return &Delta{}
}

// Insert appends a text insert. Empty text is a no-op.
func (d *Delta) Insert(text string, attrs Attributes) *Delta {
	if text == "" {
		return d
	}
	d.push(InsertOp{Text: text, Attributes: attrs.Clone()})
	return d
}

// InsertEmbed appends an embed insert.
func (d *Delta) InsertEmbed(embed Embed, attrs Attributes) *Delta {
	d.push(InsertEmbedOp{Embed: embed, Attributes: attrs.Clone()})
	return d
}

// Retain appends a retain of n characters. Non-positive n is a no-op.
func (d *Delta) Retain(n int, attrs Attributes) *Delta {
	if n <= 0 {
		return d
	}
	d.push(RetainOp{N: n, Attributes: attrs.Clone()})
	return d
}

// Delete appends a delete of n characters. Non-positive n is a no-op.
func (d *Delta) Delete(n int) *Delta {
	if n <= 0 {
		return d
	}
	d.push(DeleteOp{N: n})
	return d
}

// push appends an op, keeping the sequence canonical: adjacent deletes
// merge, adjacent same-attribute text inserts and retains merge, and an
// insert pushed after a delete is ordered before it (the two orders are
// equivalent, inserts-first is the canonical one). Embeds never merge.
func (d *Delta) push(op Op) {
	if op.Length() <= 0 {
		return
	}
	index := len(d.ops)
	if index > 0 {
		last := d.ops[index-1]
		if lastDel, ok := last.(DeleteOp); ok {
			if del, ok := op.(DeleteOp); ok {
				d.ops[index-1] = DeleteOp{N: lastDel.N + del.N}
				return
			}
			if isInsert(op) {
				index--
				if index == 0 {
					d.ops = append([]Op{op}, d.ops...)
					return
				}
				last = d.ops[index-1]
			}
		}
		if opAttributes(op).Equal(opAttributes(last)) {
			switch o := op.(type) {
			case InsertOp:
				if lastIns, ok := last.(InsertOp); ok {
					d.ops[index-1] = InsertOp{Text: lastIns.Text + o.Text, Attributes: lastIns.Attributes}
					return
				}
			case RetainOp:
				if lastRet, ok := last.(RetainOp); ok {
					d.ops[index-1] = RetainOp{N: lastRet.N + o.N, Attributes: lastRet.Attributes}
					return
				}
			}
		}
	}
	if index == len(d.ops) {
		d.ops = append(d.ops, op)
		return
	}
	d.ops = append(d.ops, nil)
	copy(d.ops[index+1:], d.ops[index:])
	d.ops[index] = op
}

func isInsert(op Op) bool {
	switch op.(type) {
	case InsertOp, InsertEmbedOp:
		return true
	}
	return false
}

// Ops returns the operation sequence. Callers must not modify it.
func (d *Delta) Ops() []Op {
	return d.ops
}

// Length is the result length: the document length after applying the
// delta to an empty tail, counting inserts and retains.
func (d *Delta) Length() int {
	n := 0
	for _, op := range d.ops {
		if _, ok := op.(DeleteOp); !ok {
			n += op.Length()
		}
	}
	return n
}

// BaseLength is the length of base document the delta consumes, counting
// retains and deletes.
func (d *Delta) BaseLength() int {
	n := 0
	for _, op := range d.ops {
		if !isInsert(op) {
			n += op.Length()
		}
	}
	return n
}

// Equal reports canonical equality: same ops, same attributes.
func (d *Delta) Equal(other *Delta) bool {
	if len(d.ops) != len(other.ops) {
		return false
	}
	for i, op := range d.ops {
		if !equalOp(op, other.ops[i]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy. Attribute sets are copied; embed
// payloads are shared (they are treated as immutable).
func (d *Delta) Clone() *Delta {
	out := &Delta{ops: make([]Op, len(d.ops))}
	for i, op := range d.ops {
		switch o := op.(type) {
		case InsertOp:
			out.ops[i] = InsertOp{Text: o.Text, Attributes: o.Attributes.Clone()}
		case InsertEmbedOp:
			out.ops[i] = InsertEmbedOp{Embed: o.Embed, Attributes: o.Attributes.Clone()}
		case RetainOp:
			out.ops[i] = RetainOp{N: o.N, Attributes: o.Attributes.Clone()}
		case DeleteOp:
			out.ops[i] = o
		}
	}
	return out
}

// Slice returns the sub-delta covering result positions [start, end).
// Both bounds must lie within [0, Length()].
func (d *Delta) Slice(start, end int) (*Delta, error) {
	if start < 0 || end < start || end > d.Length() {
		return nil, fmt.Errorf("slice [%d, %d) of length %d: %w", start, end, d.Length(), ErrOutOfRange)
	}
	return d.slice(start, end), nil
}

// slice is Slice without bounds checking, clamping to available length.
func (d *Delta) slice(start, end int) *Delta {
	out := New()
	iter := newIterator(d.ops)
	index := 0
	for index < end && iter.hasNext() {
		if index < start {
			index += iter.next(start - index).Length()
			continue
		}
		op := iter.next(end - index)
		index += op.Length()
		out.push(op)
	}
	return out
}

// Concat appends another delta, merging at the seam when the boundary
// ops are compatible.
func (d *Delta) Concat(other *Delta) *Delta {
	out := &Delta{ops: append([]Op(nil), d.ops...)}
	if len(other.ops) > 0 {
		out.push(other.ops[0])
		out.ops = append(out.ops, other.ops[1:]...)
	}
	return out
}

// chop removes a trailing attribute-less retain, the canonical form for
// algebra results.
func (d *Delta) chop() *Delta {
	if n := len(d.ops); n > 0 {
		if last, ok := d.ops[n-1].(RetainOp); ok && len(last.Attributes) == 0 {
			d.ops = d.ops[:n-1]
		}
	}
	return d
}

// String renders the wire JSON, for logs and test failures.
func (d *Delta) String() string {
	raw, err := d.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("delta<%d ops>", len(d.ops))
	}
	return string(raw)
}
