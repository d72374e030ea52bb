package document

import (
	"strings"
	"unicode/utf8"

	"github.com/inkwell-editor/inkwell/delta"
)

// leaf is a run of text or a single embed carrying inline style. Leaves
// are owned by exactly one line.
type leaf interface {
	length() int
	style() delta.Attributes
	setStyle(delta.Attributes)
}

type textLeaf struct {
	text  string
	runes int
	attrs delta.Attributes
}

func newTextLeaf(text string, attrs delta.Attributes) *textLeaf {
	return &textLeaf{text: text, runes: utf8.RuneCountInString(text), attrs: attrs}
}

func (t *textLeaf) length() int                 { return t.runes }
func (t *textLeaf) style() delta.Attributes     { return t.attrs }
func (t *textLeaf) setStyle(a delta.Attributes) { t.attrs = a }

// split divides the leaf at rune offset k into two leaves sharing the
// style. Styles are replaced wholesale on format, never mutated in
// place, so sharing the map is safe.
func (t *textLeaf) split(k int) (*textLeaf, *textLeaf) {
	r := []rune(t.text)
	return newTextLeaf(string(r[:k]), t.attrs), newTextLeaf(string(r[k:]), t.attrs)
}

type embedLeaf struct {
	embed delta.Embed
	attrs delta.Attributes
}

func (e *embedLeaf) length() int                 { return 1 }
func (e *embedLeaf) style() delta.Attributes     { return e.attrs }
func (e *embedLeaf) setStyle(a delta.Attributes) { e.attrs = a }

// line is one line of the document. Its block-scope attributes ride on
// the implicit terminator, which contributes 1 to the line's length.
type line struct {
	leaves []leaf
	attrs  delta.Attributes
}

func (l *line) textLength() int {
	n := 0
	for _, lf := range l.leaves {
		n += lf.length()
	}
	return n
}

func (l *line) length() int { return l.textLength() + 1 }

// text renders the line's content without the terminator, embeds as
// U+FFFC.
func (l *line) text() string {
	var b strings.Builder
	for _, lf := range l.leaves {
		switch t := lf.(type) {
		case *textLeaf:
			b.WriteString(t.text)
		case *embedLeaf:
			b.WriteRune(embedChar)
		}
	}
	return b.String()
}

// boundary splits leaves so a leaf boundary falls exactly at text
// offset k and returns the leaf index sitting at that boundary. k must
// be within [0, textLength()]. Embeds are never split: k cannot fall
// strictly inside a length-1 leaf.
func (l *line) boundary(k int) int {
	pos := 0
	for i, lf := range l.leaves {
		if pos == k {
			return i
		}
		n := lf.length()
		if k < pos+n {
			t := lf.(*textLeaf)
			left, right := t.split(k - pos)
			l.leaves = append(l.leaves[:i], append([]leaf{left, right}, l.leaves[i+1:]...)...)
			return i + 1
		}
		pos += n
	}
	return len(l.leaves)
}

// insertText places a styled text run at text offset k.
func (l *line) insertText(k int, text string, style delta.Attributes) {
	if text == "" {
		return
	}
	i := l.boundary(k)
	l.leaves = append(l.leaves[:i], append([]leaf{newTextLeaf(text, style)}, l.leaves[i:]...)...)
}

// insertEmbed places an embed at text offset k.
func (l *line) insertEmbed(k int, embed delta.Embed, style delta.Attributes) {
	i := l.boundary(k)
	l.leaves = append(l.leaves[:i], append([]leaf{&embedLeaf{embed: embed, attrs: style}}, l.leaves[i:]...)...)
}

// deleteText removes the text range [a, b).
func (l *line) deleteText(a, b int) {
	if a >= b {
		return
	}
	i := l.boundary(a)
	j := l.boundary(b)
	l.leaves = append(l.leaves[:i], l.leaves[j:]...)
}

// applyInline merges attrs into every leaf covering [a, b).
func (l *line) applyInline(a, b int, attrs delta.Attributes) {
	if a >= b || len(attrs) == 0 {
		return
	}
	i := l.boundary(a)
	j := l.boundary(b)
	for _, lf := range l.leaves[i:j] {
		lf.setStyle(delta.ComposeAttributes(lf.style(), attrs, false))
	}
}

// cutAfter removes and returns the leaves after text offset k.
func (l *line) cutAfter(k int) []leaf {
	i := l.boundary(k)
	tail := append([]leaf(nil), l.leaves[i:]...)
	l.leaves = l.leaves[:i]
	return tail
}

// mergeLeaves drops empty text leaves and joins adjacent text leaves
// with equal styles. Called after every mutation pass.
func (l *line) mergeLeaves() {
	merged := l.leaves[:0]
	for _, lf := range l.leaves {
		if t, ok := lf.(*textLeaf); ok {
			if t.runes == 0 {
				continue
			}
			if len(merged) > 0 {
				if prev, ok := merged[len(merged)-1].(*textLeaf); ok && prev.attrs.Equal(t.attrs) {
					prev.text += t.text
					prev.runes += t.runes
					continue
				}
			}
		}
		merged = append(merged, lf)
	}
	l.leaves = merged
}

// block groups adjacent lines sharing identical block-scope attributes.
// Blocks are derived from line attributes after each mutation.
type block struct {
	lines []*line
}

func (b *block) attrs() delta.Attributes {
	if len(b.lines) == 0 {
		return nil
	}
	return b.lines[0].attrs
}

func (b *block) length() int {
	n := 0
	for _, l := range b.lines {
		n += l.length()
	}
	return n
}
