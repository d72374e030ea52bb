package document

import (
	"fmt"

	"github.com/inkwell-editor/inkwell/delta"
)

// CollectStyle reports the attributes in effect over the range
// [offset, offset+length). A key appears in the result only when every
// covered unit agrees on its value: inline keys must match across every
// covered leaf, block keys across every touched line.
//
// A zero length asks for the typing format at a caret: the inline style
// of the character before offset on the same line, merged with the
// line's block attributes. Returns nil when nothing applies.
func (d *Document) CollectStyle(offset, length int) (delta.Attributes, error) {
	if offset < 0 || length < 0 || offset+length > d.length || (length == 0 && offset >= d.length) {
		return nil, fmt.Errorf("collect style: range [%d, %d) outside document of length %d: %w", offset, offset+length, d.length, delta.ErrOutOfRange)
	}
	lines := d.flatten()
	if length == 0 {
		return caretStyle(lines, offset), nil
	}

	var inline, blockAttrs delta.Attributes
	inlineSeeded, blockSeeded := false, false
	end := offset + length
	start := 0
	for _, ln := range lines {
		if start >= end {
			break
		}
		lineEnd := start + ln.length()
		if lineEnd <= offset {
			start = lineEnd
			continue
		}
		blockAttrs, blockSeeded = intersectStyle(blockAttrs, blockSeeded, ln.attrs)

		lo := max(0, offset-start)
		hi := min(ln.textLength(), end-start)
		acc := 0
		for _, lf := range ln.leaves {
			if acc >= hi {
				break
			}
			llen := lf.length()
			if acc+llen > lo {
				inline, inlineSeeded = intersectStyle(inline, inlineSeeded, lf.style())
			}
			acc += llen
		}
		start = lineEnd
	}

	out := delta.Attributes{}
	for k, v := range inline {
		out[k] = v
	}
	for k, v := range blockAttrs {
		out[k] = v
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// caretStyle is the collapsed-selection variant of CollectStyle.
func caretStyle(lines []*line, offset int) delta.Attributes {
	li, lo, _ := advance(lines, 0, 0, 0, offset)
	ln := lines[li]
	out := delta.Attributes{}
	for k, v := range ln.attrs {
		out[k] = v
	}
	if lo > 0 {
		acc := 0
		for _, lf := range ln.leaves {
			acc += lf.length()
			if lo <= acc {
				for k, v := range lf.style() {
					out[k] = v
				}
				break
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// intersectStyle folds next into the running intersection. The first
// contribution seeds the set; later ones drop any key that is missing
// or disagrees.
func intersectStyle(acc delta.Attributes, seeded bool, next delta.Attributes) (delta.Attributes, bool) {
	if !seeded {
		return next.Clone(), true
	}
	for k, v := range acc {
		nv, ok := next[k]
		if !ok || !delta.EqualValue(v, nv) {
			delete(acc, k)
		}
	}
	return acc, true
}
