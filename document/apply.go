package document

import (
	"fmt"
	"strings"

	"github.com/inkwell-editor/inkwell/delta"
)

// ChangeResult reports what an applied delta touched, for downstream
// redraw. Start and End are in new-document coordinates and bound every
// inserted, deleted, or restyled position; a pure deletion collapses to
// Start == End at the deletion point.
type ChangeResult struct {
	OldLength int
	NewLength int
	Start     int
	End       int
}

// ApplyDelta mutates the tree according to change. Application is
// all-or-nothing: the change is validated in full first and the tree is
// untouched on error.
//
// The change's base length must not exceed the document length; content
// past the change's coverage is implicitly retained. The final line
// terminator cannot be deleted: a document always ends with one.
func (d *Document) ApplyDelta(change *delta.Delta) (ChangeResult, error) {
	if err := d.validate(change); err != nil {
		return ChangeResult{}, err
	}

	lines := d.flatten()
	res := ChangeResult{OldLength: d.length, Start: -1}
	li, lo := 0, 0 // cursor: line index, rune offset within line
	pos := 0       // cursor in new-document coordinates

	touch := func(from, to int) {
		if res.Start < 0 || from < res.Start {
			res.Start = from
		}
		if to > res.End {
			res.End = to
		}
	}

	for _, op := range change.Ops() {
		switch o := op.(type) {
		case delta.RetainOp:
			if len(o.Attributes) == 0 {
				li, lo, pos = advance(lines, li, lo, pos, o.N)
				continue
			}
			touch(pos, pos+o.N)
			inline := o.Attributes.Inline()
			block := o.Attributes.Block()
			n := o.N
			for n > 0 {
				ln := lines[li]
				textLen := ln.textLength()
				if lo < textLen {
					end := min(lo+n, textLen)
					ln.applyInline(lo, end, inline)
					n -= end - lo
					lo = end
					continue
				}
				if len(block) > 0 {
					ln.attrs = delta.ComposeAttributes(ln.attrs, block, false)
				}
				n--
				li++
				lo = 0
			}
			pos += o.N

		case delta.DeleteOp:
			touch(pos, pos)
			n := o.N
			for n > 0 {
				ln := lines[li]
				textLen := ln.textLength()
				if lo < textLen {
					end := min(lo+n, textLen)
					ln.deleteText(lo, end)
					n -= end - lo
					continue
				}
				// Deleting the terminator merges this line with the
				// next; the survivor keeps the next line's attributes
				// since that terminator remains.
				next := lines[li+1]
				ln.leaves = append(ln.leaves, next.leaves...)
				ln.attrs = next.attrs
				lines = append(lines[:li+1], lines[li+2:]...)
				n--
			}

		case delta.InsertOp:
			touch(pos, pos+o.Length())
			inline := o.Attributes.Inline()
			block := o.Attributes.Block()
			if !strings.Contains(o.Text, "\n") {
				lines[li].insertText(lo, o.Text, inline)
				lo += runeLen(o.Text)
				pos += runeLen(o.Text)
				continue
			}
			ln := lines[li]
			tail := ln.cutAfter(lo)
			origAttrs := ln.attrs
			parts := strings.Split(o.Text, "\n")
			ln.insertText(lo, parts[0], inline)
			ln.attrs = block.Clone()
			inserted := make([]*line, 0, len(parts)-1)
			for _, mid := range parts[1 : len(parts)-1] {
				ml := &line{attrs: block.Clone()}
				if mid != "" {
					ml.leaves = append(ml.leaves, newTextLeaf(mid, inline))
				}
				inserted = append(inserted, ml)
			}
			last := &line{attrs: origAttrs}
			if p := parts[len(parts)-1]; p != "" {
				last.leaves = append(last.leaves, newTextLeaf(p, inline))
			}
			lastTextLen := last.textLength()
			last.leaves = append(last.leaves, tail...)
			inserted = append(inserted, last)
			lines = append(lines[:li+1], append(inserted, lines[li+1:]...)...)
			li += len(inserted)
			lo = lastTextLen
			pos += o.Length()

		case delta.InsertEmbedOp:
			touch(pos, pos+1)
			lines[li].insertEmbed(lo, o.Embed, o.Attributes.Inline())
			lo++
			pos++
		}
	}

	d.rebuild(lines)
	res.NewLength = d.length
	if res.Start < 0 {
		res.Start, res.End = 0, 0
	}
	return res, nil
}

// advance moves the cursor n positions without touching content.
func advance(lines []*line, li, lo, pos, n int) (int, int, int) {
	pos += n
	for n > 0 {
		remaining := lines[li].length() - lo
		if n < remaining {
			lo += n
			break
		}
		n -= remaining
		li++
		lo = 0
	}
	return li, lo, pos
}

// validate checks a change against the document before any mutation.
func (d *Document) validate(change *delta.Delta) error {
	if base := change.BaseLength(); base > d.length {
		return fmt.Errorf("apply delta: base length %d exceeds document length %d: %w", base, d.length, delta.ErrLengthMismatch)
	}
	pos := 0
	for _, op := range change.Ops() {
		switch o := op.(type) {
		case delta.RetainOp:
			pos += o.N
		case delta.DeleteOp:
			if pos+o.N >= d.length {
				return fmt.Errorf("apply delta: delete at %d covers the final terminator: %w", pos, delta.ErrInvalidOperation)
			}
			pos += o.N
		case delta.InsertOp, delta.InsertEmbedOp:
			if pos >= d.length {
				return fmt.Errorf("apply delta: insert at %d lands after the final terminator: %w", pos, delta.ErrInvalidOperation)
			}
		}
	}
	return nil
}
