package editor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/rules"
)

// ReplaceText deletes length runes at index and inserts text in their
// place. A nil sel derives the resulting selection by shifting the
// current one across the change. Empty text with a zero length is a
// no-op.
func (e *Editor) ReplaceText(index, length int, text string, sel *Selection) error {
	if err := e.checkRange(index, length); err != nil {
		return err
	}
	// The final terminator is structural; a range reaching it is
	// clamped to the editable text.
	if limit := e.doc.Length() - 1; index+length > limit {
		if index > limit {
			index = limit
		}
		length = limit - index
	}
	if length == 0 && text == "" {
		return nil
	}

	before := e.doc.Delta()

	// The insert lands after the range being replaced so the delete
	// below still addresses the positions the caller named. The
	// delete chain must then run against the post-insert document,
	// not the pre-image, or its rules reason about stale line
	// boundaries.
	var applied *delta.Delta
	if text != "" {
		d, err := e.shape(rules.Request{
			Kind:    rules.KindInsert,
			Index:   index + length,
			Text:    text,
			Pending: e.pending,
		})
		if err != nil {
			return err
		}
		if d != nil {
			if _, err := e.doc.ApplyDelta(d); err != nil {
				return fmt.Errorf("replace insert: %w", err)
			}
			applied = d
		}
	}
	if length > 0 {
		midLen := e.doc.Length()
		d, err := e.shape(rules.Request{
			Kind:   rules.KindDelete,
			Index:  index,
			Length: length,
		})
		if err != nil {
			e.rollback(applied, before)
			return err
		}
		if d != nil {
			if _, err := e.doc.ApplyDelta(d); err != nil {
				e.rollback(applied, before)
				return fmt.Errorf("replace delete: %w", err)
			}
			if applied == nil {
				applied = d
			} else {
				combined, err := padResult(applied, midLen).Compose(d)
				if err != nil {
					panic(fmt.Sprintf("editor: compose replace phases: %v", err))
				}
				applied = combined
			}
		}
	}
	if applied == nil {
		return nil
	}
	e.commit(before, applied, sel, SourceUser)
	return nil
}

// InsertEmbed places an embed at index. Embeds occupy one position
// and are never split by later edits.
func (e *Editor) InsertEmbed(index int, embed delta.Embed, sel *Selection) error {
	if err := e.checkRange(index, 0); err != nil {
		return err
	}
	index = min(index, e.doc.Length()-1)

	before := e.doc.Delta()
	d, err := e.shape(rules.Request{
		Kind:  rules.KindInsert,
		Index: index,
		Embed: &embed,
	})
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	if _, err := e.doc.ApplyDelta(d); err != nil {
		return fmt.Errorf("insert embed: %w", err)
	}
	e.commit(before, d, sel, SourceUser)
	return nil
}

// FormatText applies one attribute over length runes at index. A nil
// value removes the attribute. Inline attributes need a non-empty
// range; block attributes restyle the lines the range touches, so a
// collapsed range formats the caret's line.
func (e *Editor) FormatText(index, length int, key string, value any) error {
	if err := e.checkRange(index, length); err != nil {
		return err
	}
	before := e.doc.Delta()
	d, err := e.shape(rules.Request{
		Kind:       rules.KindFormat,
		Index:      index,
		Length:     length,
		Attributes: delta.Attributes{key: value},
	})
	if err != nil {
		return err
	}
	if d == nil {
		return nil
	}
	if _, err := e.doc.ApplyDelta(d); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	e.commit(before, d, nil, SourceUser)
	return nil
}

// FormatSelection formats the current selection. On a collapsed
// selection the attribute only joins the pending style carried by the
// next typed text; moving the caret discards it.
func (e *Editor) FormatSelection(key string, value any) error {
	sel := e.selection
	if sel.IsCollapsed() {
		e.pending = delta.ComposeAttributes(e.pending, delta.Attributes{key: value}, true)
		e.log.Debug("pending style set",
			zap.String("key", key),
			zap.Any("value", value))
		return nil
	}
	return e.FormatText(sel.Start(), sel.End()-sel.Start(), key, value)
}

// Compose applies a raw change without consulting the rules, for
// programmatic edits that are already valid mutations. The change
// still lands in history and on the change stream, marked SourceAPI.
func (e *Editor) Compose(change *delta.Delta, sel *Selection) error {
	before := e.doc.Delta()
	if _, err := e.doc.ApplyDelta(change); err != nil {
		return err
	}
	e.commit(before, change, sel, SourceAPI)
	return nil
}

// shape runs the rule chain for a request. Nil means the edit is a
// no-op: either no rule produced a delta or the winning rule emitted
// an empty one.
func (e *Editor) shape(req rules.Request) (*delta.Delta, error) {
	d, err := e.engine.Apply(rules.NewContext(e.doc, req))
	if err != nil {
		return nil, err
	}
	if d == nil || len(d.Ops()) == 0 {
		return nil, nil
	}
	return d, nil
}

// commit finishes one applied change: history, selection, pending
// style, change event.
func (e *Editor) commit(before, change *delta.Delta, sel *Selection, src Source) {
	padded := padChange(change, before)
	inverted := padded.Invert(before)
	prev := e.selection
	if sel != nil {
		e.selection = e.clamp(*sel)
	} else {
		e.selection = e.clamp(Selection{
			Anchor: padded.TransformPosition(prev.Anchor, false),
			Head:   padded.TransformPosition(prev.Head, false),
		})
	}
	e.pending = nil
	e.hist.Record(padded, inverted, prev, e.selection)
	e.emit(before, padded, src)
	e.log.Debug("change committed",
		zap.Stringer("source", src),
		zap.Stringer("change", padded))
}

// rollback undoes an applied insert phase after the delete phase
// fails, restoring the pre-image.
func (e *Editor) rollback(applied, before *delta.Delta) {
	if applied == nil {
		return
	}
	if _, err := e.doc.ApplyDelta(applied.Invert(before)); err != nil {
		panic(fmt.Sprintf("editor: replace rollback: %v", err))
	}
}

func (e *Editor) checkRange(index, length int) error {
	if index < 0 || length < 0 || index+length > e.doc.Length() {
		return fmt.Errorf("range [%d, %d) in document of length %d: %w",
			index, index+length, e.doc.Length(), delta.ErrOutOfRange)
	}
	return nil
}

// clamp keeps a selection on the editable text, in front of the final
// terminator.
func (e *Editor) clamp(sel Selection) Selection {
	limit := e.doc.Length() - 1
	sel.Anchor = min(max(sel.Anchor, 0), limit)
	sel.Head = min(max(sel.Head, 0), limit)
	return sel
}

// padChange widens change with a plain trailing retain until it spans
// the editable text of the document described by before. History and
// the change stream carry these widened deltas so consumers can
// compose them without length bookkeeping.
func padChange(change, before *delta.Delta) *delta.Delta {
	if gap := before.Length() - 1 - change.BaseLength(); gap > 0 {
		return change.Clone().Retain(gap, nil)
	}
	return change
}

// padResult widens d with a plain trailing retain until its result
// length reaches n.
func padResult(d *delta.Delta, n int) *delta.Delta {
	if gap := n - d.Length(); gap > 0 {
		return d.Clone().Retain(gap, nil)
	}
	return d
}
