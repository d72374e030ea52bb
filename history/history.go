package history

import (
	"time"

	"github.com/inkwell-editor/inkwell/delta"
)

// Selection is a caret range in rune offsets. Anchor is where the
// selection started, Head where it ends; a caret has Anchor == Head.
type Selection struct {
	Anchor int
	Head   int
}

// IsCollapsed reports whether the selection is a bare caret.
func (s Selection) IsCollapsed() bool { return s.Anchor == s.Head }

// Start returns the lower bound of the selection.
func (s Selection) Start() int {
	if s.Head < s.Anchor {
		return s.Head
	}
	return s.Anchor
}

// End returns the upper bound of the selection.
func (s Selection) End() int {
	if s.Head > s.Anchor {
		return s.Head
	}
	return s.Anchor
}

// Entry is one undoable step. Change replays the edit forward,
// Inverted rolls it back. Before and After are the selections to
// restore on undo and redo.
type Entry struct {
	Change     *delta.Delta
	Inverted   *delta.Delta
	Before     Selection
	After      Selection
	RecordedAt time.Time
}

const (
	defaultCoalescing = 500 * time.Millisecond
	defaultMaxEntries = 100
)

// History holds the undo and redo stacks.
type History struct {
	undo       []Entry
	redo       []Entry
	coalesce   time.Duration
	maxEntries int
	sealed     bool
}

// Option configures a History.
type Option func(*History)

// WithCoalescing sets the window inside which contiguous edits merge
// into one entry. Zero disables merging.
func WithCoalescing(d time.Duration) Option {
	return func(h *History) { h.coalesce = d }
}

// WithMaxEntries caps the undo stack; the oldest entry is dropped when
// the cap is exceeded.
func WithMaxEntries(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.maxEntries = n
		}
	}
}

// New builds an empty history. The default coalescing window is 500ms
// and the default cap is 100 entries.
func New(opts ...Option) *History {
	h := &History{
		coalesce:   defaultCoalescing,
		maxEntries: defaultMaxEntries,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record stores an applied change and its inverse. The redo stack is
// always cleared. The change merges into the top entry when it arrives
// inside the coalescing window and contiguously extends it; the window
// is anchored at the entry's first record, so long typing runs still
// break into batches.
func (h *History) Record(change, inverted *delta.Delta, before, after Selection) {
	now := time.Now()
	h.redo = nil
	if h.sealed {
		h.sealed = false
	} else if len(h.undo) > 0 {
		top := &h.undo[len(h.undo)-1]
		if h.mergeable(top, change, now) {
			merged, err := padTo(top.Change, change.BaseLength()).Compose(change)
			if err == nil {
				inv, err := padTo(inverted, top.Inverted.BaseLength()).Compose(top.Inverted)
				if err == nil {
					top.Change = merged
					top.Inverted = inv
					top.After = after
					return
				}
			}
		}
	}
	h.undo = append(h.undo, Entry{
		Change:     change,
		Inverted:   inverted,
		Before:     before,
		After:      after,
		RecordedAt: now,
	})
	if len(h.undo) > h.maxEntries {
		n := copy(h.undo, h.undo[1:])
		h.undo = h.undo[:n]
	}
}

// Undo pops the newest entry onto the redo stack. The caller replays
// Entry.Inverted and restores Entry.Before.
func (h *History) Undo() (Entry, bool) {
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	h.sealed = true
	return e, true
}

// Redo pops the newest redone entry back onto the undo stack. The
// caller replays Entry.Change and restores Entry.After.
func (h *History) Redo() (Entry, bool) {
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	h.sealed = true
	return e, true
}

// Checkpoint closes the open batch: the next Record starts a new entry
// no matter how soon it arrives.
func (h *History) Checkpoint() { h.sealed = true }

// CanUndo reports whether an undo entry exists.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo entry exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo, h.redo = nil, nil
	h.sealed = false
}

// padTo extends d with a plain retain until its result length reaches
// n. Canonical deltas drop trailing retains, so two entries covering
// the same document can disagree on length; padding restores the
// overlap Compose needs.
func padTo(d *delta.Delta, n int) *delta.Delta {
	if gap := n - d.Length(); gap > 0 {
		return d.Clone().Retain(gap, nil)
	}
	return d
}

func (h *History) mergeable(top *Entry, change *delta.Delta, now time.Time) bool {
	if now.Sub(top.RecordedAt) >= h.coalesce {
		return false
	}
	prevKind, prevPos, prevSize := editShape(top.Change)
	nextKind, nextPos, nextSize := editShape(change)
	if prevKind == editNone || prevKind != nextKind {
		return false
	}
	if prevKind == editInsert {
		return nextPos == prevPos+prevSize
	}
	// Deletes extend backwards (backspace) or repeat in place (the
	// delete key).
	return nextPos+nextSize == prevPos || nextPos == prevPos
}

type editKind int

const (
	editNone editKind = iota
	editInsert
	editDelete
)

// editShape classifies a change as one plain text insert or one delete
// surrounded only by plain retains. Anything richer never coalesces.
func editShape(d *delta.Delta) (editKind, int, int) {
	kind := editNone
	pos, size := 0, 0
	for _, op := range d.Ops() {
		switch o := op.(type) {
		case delta.RetainOp:
			if len(o.Attributes) > 0 {
				return editNone, 0, 0
			}
			if kind == editNone {
				pos += o.N
			}
		case delta.InsertOp:
			if kind != editNone {
				return editNone, 0, 0
			}
			kind = editInsert
			size = o.Length()
		case delta.DeleteOp:
			if kind != editNone {
				return editNone, 0, 0
			}
			kind = editDelete
			size = o.N
		case delta.InsertEmbedOp:
			return editNone, 0, 0
		}
	}
	if kind == editNone {
		return editNone, 0, 0
	}
	return kind, pos, size
}
