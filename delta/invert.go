package delta

// Invert returns the delta that undoes d against base, the document
// delta d was applied to. Inserts invert to deletes; deletes invert to
// re-inserting the covered slice of base; attributed retains invert to
// retains restoring the attributes base carried.
//
// base must be a document delta (inserts only) at least as long as d's
// base length. The deleted text and prior attribute values exist only in
// base, which is why inversion needs the pre-image and d alone is not
// enough.
func (d *Delta) Invert(base *Delta) *Delta {
	inverted := New()
	baseIndex := 0
	for _, op := range d.ops {
		switch o := op.(type) {
		case InsertOp, InsertEmbedOp:
			inverted.Delete(op.Length())
		case RetainOp:
			if len(o.Attributes) == 0 {
				inverted.Retain(o.N, nil)
				baseIndex += o.N
				continue
			}
			for _, baseOp := range base.slice(baseIndex, baseIndex+o.N).Ops() {
				inverted.Retain(baseOp.Length(), InvertAttributes(o.Attributes, opAttributes(baseOp)))
			}
			baseIndex += o.N
		case DeleteOp:
			for _, baseOp := range base.slice(baseIndex, baseIndex+o.N).Ops() {
				inverted.push(baseOp)
			}
			baseIndex += o.N
		}
	}
	return inverted.chop()
}
