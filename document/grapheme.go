package document

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/inkwell-editor/inkwell/delta"
)

// GraphemeRangeAt widens offset to the grapheme cluster containing it,
// returned as a rune range [start, end). Offsets resolve against the
// full document text including the final terminator, so offset must be
// below Length. A combining sequence or emoji ZWJ run counts as one
// cluster even though it spans several runes.
func (d *Document) GraphemeRangeAt(offset int) (start, end int, err error) {
	if offset < 0 || offset >= d.length {
		return 0, 0, fmt.Errorf("grapheme at %d: outside document of length %d: %w", offset, d.length, delta.ErrOutOfRange)
	}
	text := d.fullText()
	state := -1
	pos := 0
	for rest := text; rest != ""; {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		n := utf8.RuneCountInString(cluster)
		if offset < pos+n {
			return pos, pos + n, nil
		}
		pos += n
	}
	return 0, 0, fmt.Errorf("grapheme at %d: outside document of length %d: %w", offset, d.length, delta.ErrOutOfRange)
}

// GraphemeRangeBefore widens a caret to the grapheme cluster that ends
// at offset, the unit a backward deletion should remove. Returns
// ok=false at the start of the document.
func (d *Document) GraphemeRangeBefore(offset int) (start, end int, ok bool) {
	if offset <= 0 || offset > d.length {
		return 0, 0, false
	}
	text := d.fullText()
	state := -1
	pos := 0
	for rest := text; rest != ""; {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		n := utf8.RuneCountInString(cluster)
		if offset <= pos+n {
			return pos, pos + n, true
		}
		pos += n
	}
	return 0, 0, false
}

// Stats summarizes the visible content. Graphemes is the user-perceived
// character count; Runes is the unit op lengths are measured in. The
// final terminator is excluded throughout.
type Stats struct {
	Lines     int
	Words     int
	Runes     int
	Graphemes int
}

// Stats walks the plain text once per counter. Embeds count as a single
// rune and a single grapheme.
func (d *Document) Stats() Stats {
	text := d.PlainText()
	s := Stats{
		Lines:     len(d.flatten()),
		Runes:     utf8.RuneCountInString(text),
		Graphemes: uniseg.GraphemeClusterCount(text),
	}
	state := -1
	for rest := text; rest != ""; {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsNumber(r) {
				s.Words++
				break
			}
		}
	}
	return s
}
