package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/inkwell-editor/inkwell/delta"
)

// embedChar is the placeholder embeds render as in plain text.
const embedChar = '￼'

// Document is the tree form of an Inkwell document. It always contains
// at least one line and always ends with a line terminator; the empty
// document is a single empty line of length 1.
//
// Documents are single-owner and not safe for concurrent mutation.
type Document struct {
	blocks []*block

	length     int
	plainText  string
	plainValid bool
	deltaCache *delta.Delta
}

// New returns an empty document: one empty line, length 1.
func New() *Document {
	d := &Document{}
	d.rebuild([]*line{{}})
	return d
}

// FromDelta builds a document from a document delta (inserts only). A
// missing final terminator is appended. Non-insert ops fail with
// ErrInvalidOperation.
func FromDelta(src *delta.Delta) (*Document, error) {
	var lines []*line
	current := &line{}
	for _, op := range src.Ops() {
		switch o := op.(type) {
		case delta.InsertOp:
			inline := o.Attributes.Inline()
			parts := strings.Split(o.Text, "\n")
			for i, part := range parts {
				if i > 0 {
					current.attrs = o.Attributes.Block()
					lines = append(lines, current)
					current = &line{}
				}
				if part != "" {
					current.leaves = append(current.leaves, newTextLeaf(part, inline))
				}
			}
		case delta.InsertEmbedOp:
			current.leaves = append(current.leaves, &embedLeaf{embed: o.Embed, attrs: o.Attributes.Inline()})
		default:
			return nil, fmt.Errorf("document delta has non-insert op: %w", delta.ErrInvalidOperation)
		}
	}
	if len(current.leaves) > 0 || len(lines) == 0 {
		lines = append(lines, current)
	}
	d := &Document{}
	d.rebuild(lines)
	return d, nil
}

// rebuild regroups lines into blocks, refreshes the cached length, and
// invalidates derived caches.
func (d *Document) rebuild(lines []*line) {
	d.blocks = d.blocks[:0]
	var cur *block
	total := 0
	for _, l := range lines {
		l.mergeLeaves()
		total += l.length()
		if cur == nil || !cur.attrs().Equal(l.attrs) {
			cur = &block{}
			d.blocks = append(d.blocks, cur)
		}
		cur.lines = append(cur.lines, l)
	}
	d.length = total
	d.plainValid = false
	d.deltaCache = nil
}

// flatten returns the document's lines in order.
func (d *Document) flatten() []*line {
	var lines []*line
	for _, b := range d.blocks {
		lines = append(lines, b.lines...)
	}
	return lines
}

// Length is the document length in character positions, including one
// terminator per line. Never less than 1.
func (d *Document) Length() int { return d.length }

// Delta serializes the document canonically: leaf runs as styled
// inserts, each line closed by a terminator insert carrying the line's
// block attributes. The result is cached until the next mutation and
// must not be modified by callers.
func (d *Document) Delta() *delta.Delta {
	if d.deltaCache != nil {
		return d.deltaCache
	}
	out := delta.New()
	for _, l := range d.flatten() {
		for _, lf := range l.leaves {
			switch t := lf.(type) {
			case *textLeaf:
				out.Insert(t.text, t.attrs)
			case *embedLeaf:
				out.InsertEmbed(t.embed, t.attrs)
			}
		}
		out.Insert("\n", l.attrs)
	}
	d.deltaCache = out
	return out
}

// PlainText returns the document text without the final terminator,
// embeds rendered as U+FFFC. Interior terminators appear as newlines.
// The result is cached until the next mutation.
func (d *Document) PlainText() string {
	if d.plainValid {
		return d.plainText
	}
	lines := d.flatten()
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.text())
	}
	d.plainText = b.String()
	d.plainValid = true
	return d.plainText
}

// fullText is PlainText plus the final terminator: one character per
// document position.
func (d *Document) fullText() string {
	return d.PlainText() + "\n"
}

// TextAt returns the text covering [offset, offset+length). The final
// terminator reads as a newline.
func (d *Document) TextAt(offset, length int) (string, error) {
	if offset < 0 || length < 0 || offset+length > d.length {
		return "", fmt.Errorf("text at [%d, %d) of length %d: %w", offset, offset+length, d.length, delta.ErrOutOfRange)
	}
	r := []rune(d.fullText())
	return string(r[offset : offset+length]), nil
}

// LineInfo describes one line for read-only callers.
type LineInfo struct {
	// Start is the document offset of the line's first character.
	Start int
	// Length includes the terminator.
	Length int
	// Text is the line content without the terminator.
	Text string
	// Attributes are the line's block-scope attributes.
	Attributes delta.Attributes
}

// LineAt returns the line containing the given document offset. The
// offset may point at the line's terminator.
func (d *Document) LineAt(offset int) (LineInfo, error) {
	if offset < 0 || offset >= d.length {
		return LineInfo{}, fmt.Errorf("line at %d of length %d: %w", offset, d.length, delta.ErrOutOfRange)
	}
	start := 0
	for _, l := range d.flatten() {
		n := l.length()
		if offset < start+n {
			return LineInfo{
				Start:      start,
				Length:     n,
				Text:       l.text(),
				Attributes: l.attrs.Clone(),
			}, nil
		}
		start += n
	}
	// unreachable: offset < d.length
	return LineInfo{}, fmt.Errorf("line at %d: %w", offset, delta.ErrOutOfRange)
}

// EmbedAt reports the embed occupying the given offset, if any.
func (d *Document) EmbedAt(offset int) (delta.Embed, bool) {
	if offset < 0 || offset >= d.length {
		return delta.Embed{}, false
	}
	pos := 0
	for _, l := range d.flatten() {
		textLen := l.textLength()
		if offset < pos+textLen {
			k := offset - pos
			at := 0
			for _, lf := range l.leaves {
				n := lf.length()
				if k < at+n {
					if e, ok := lf.(*embedLeaf); ok {
						return e.embed, true
					}
					return delta.Embed{}, false
				}
				at += n
			}
			return delta.Embed{}, false
		}
		pos += textLen + 1
	}
	return delta.Embed{}, false
}

// Equal reports whether two documents serialize to the same canonical
// delta.
func (d *Document) Equal(other *Document) bool {
	return d.Delta().Equal(other.Delta())
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
