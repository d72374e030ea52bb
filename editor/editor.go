package editor

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/document"
	"github.com/inkwell-editor/inkwell/event"
	"github.com/inkwell-editor/inkwell/history"
	"github.com/inkwell-editor/inkwell/rules"
)

// Selection is a caret range in rune offsets.
type Selection = history.Selection

// Editor owns a document and everything that edits it.
type Editor struct {
	id      uuid.UUID
	doc     *document.Document
	engine  *rules.Engine
	hist    *history.History
	changes *event.Stream[Change]
	log     *zap.Logger

	selection Selection
	pending   delta.Attributes
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger attaches a logger; edits and selection moves are reported
// at debug level. Defaults to a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRules replaces the default rule engine.
func WithRules(eng *rules.Engine) Option {
	return func(e *Editor) {
		if eng != nil {
			e.engine = eng
		}
	}
}

// WithHistory replaces the default history.
func WithHistory(h *history.History) Option {
	return func(e *Editor) {
		if h != nil {
			e.hist = h
		}
	}
}

// New creates an editor holding an empty document.
func New(opts ...Option) *Editor {
	e := &Editor{
		id:      uuid.New(),
		doc:     document.New(),
		log:     zap.NewNop(),
		changes: event.NewStream[Change](),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.engine == nil {
		e.engine = rules.NewEngine()
	}
	if e.hist == nil {
		e.hist = history.New()
	}
	return e
}

// FromDelta creates an editor holding the given document.
func FromDelta(content *delta.Delta, opts ...Option) (*Editor, error) {
	doc, err := document.FromDelta(content)
	if err != nil {
		return nil, err
	}
	e := New(opts...)
	e.doc = doc
	return e, nil
}

// ID identifies this editor in change events.
func (e *Editor) ID() uuid.UUID { return e.id }

// Changes is the stream edits are announced on.
func (e *Editor) Changes() *event.Stream[Change] { return e.changes }

// Rules exposes the engine so collaborators can register custom rules.
func (e *Editor) Rules() *rules.Engine { return e.engine }

// Length returns the document length in runes, including the final
// terminator.
func (e *Editor) Length() int { return e.doc.Length() }

// PlainText returns the document text without the final terminator.
func (e *Editor) PlainText() string { return e.doc.PlainText() }

// TextAt returns length runes starting at offset.
func (e *Editor) TextAt(offset, length int) (string, error) {
	return e.doc.TextAt(offset, length)
}

// Delta returns the full-document delta.
func (e *Editor) Delta() *delta.Delta { return e.doc.Delta() }

// CollectStyle intersects the styles over a range; see
// document.Document.CollectStyle.
func (e *Editor) CollectStyle(offset, length int) (delta.Attributes, error) {
	return e.doc.CollectStyle(offset, length)
}

// LineAt describes the line containing the given offset.
func (e *Editor) LineAt(offset int) (document.LineInfo, error) {
	return e.doc.LineAt(offset)
}

// EmbedAt reports the embed occupying the given offset, if any.
func (e *Editor) EmbedAt(offset int) (delta.Embed, bool) {
	return e.doc.EmbedAt(offset)
}

// Stats reports document counters.
func (e *Editor) Stats() document.Stats { return e.doc.Stats() }

// Selection returns the current selection.
func (e *Editor) Selection() Selection { return e.selection }

// PendingStyle returns the style that will apply to the next typed
// text. Nil when nothing is pending.
func (e *Editor) PendingStyle() delta.Attributes { return e.pending.Clone() }

// CanUndo reports whether an undo step exists.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a redo step exists.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// UpdateSelection moves the selection and drops any pending style.
func (e *Editor) UpdateSelection(sel Selection, src Source) {
	e.selection = e.clamp(sel)
	e.pending = nil
	e.log.Debug("selection updated",
		zap.Int("anchor", e.selection.Anchor),
		zap.Int("head", e.selection.Head),
		zap.Stringer("source", src))
}

// Checkpoint closes the open history batch so surrounding typing does
// not merge with what follows.
func (e *Editor) Checkpoint() { e.hist.Checkpoint() }

// SetContents replaces the whole document. The history is cleared and
// the selection resets. On error the previous document stays
// authoritative.
func (e *Editor) SetContents(content *delta.Delta) error {
	doc, err := document.FromDelta(content)
	if err != nil {
		return fmt.Errorf("set contents: %w", err)
	}
	before := e.doc.Delta()
	change, err := before.Diff(doc.Delta())
	if err != nil {
		return fmt.Errorf("set contents: %w", err)
	}
	e.doc = doc
	e.selection = Selection{}
	e.pending = nil
	e.hist.Clear()
	e.emit(before, change, SourceAPI)
	return nil
}

// Undo reverts the newest history entry. Returns false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	entry, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.replay(entry.Inverted, entry.Before, "undo")
	return true
}

// Redo reapplies the newest undone entry. Returns false when there is
// nothing to redo.
func (e *Editor) Redo() bool {
	entry, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.replay(entry.Change, entry.After, "redo")
	return true
}

// replay applies a recorded delta without consulting the rules. A
// recorded delta that no longer applies means the history diverged
// from the document, which is a programming error, not user input.
func (e *Editor) replay(change *delta.Delta, sel Selection, kind string) {
	before := e.doc.Delta()
	if _, err := e.doc.ApplyDelta(change); err != nil {
		panic(fmt.Sprintf("editor: %s replay of %s: %v", kind, change, err))
	}
	e.selection = e.clamp(sel)
	e.pending = nil
	e.emit(before, padChange(change, before), SourceHistory)
}
