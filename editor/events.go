package editor

import (
	"github.com/google/uuid"

	"github.com/inkwell-editor/inkwell/delta"
)

// Source identifies what caused a change.
type Source int

const (
	// SourceUser marks edits from the intent surface: typing,
	// formatting, selection-driven calls.
	SourceUser Source = iota

	// SourceAPI marks programmatic changes: Compose and SetContents.
	SourceAPI

	// SourceHistory marks undo and redo replay.
	SourceHistory
)

func (s Source) String() string {
	switch s {
	case SourceUser:
		return "user"
	case SourceAPI:
		return "api"
	case SourceHistory:
		return "history"
	}
	return "unknown"
}

// Change describes one committed document mutation. Before and After
// are full-document deltas; Change maps one onto the other. Handlers
// run on the editor's goroutine and must not call back into the
// emitting editor.
type Change struct {
	// Editor identifies the emitting editor instance.
	Editor uuid.UUID

	Before *delta.Delta
	Change *delta.Delta
	After  *delta.Delta

	Source Source
}

func (e *Editor) emit(before, change *delta.Delta, src Source) {
	e.changes.Publish(Change{
		Editor: e.id,
		Before: before,
		Change: change,
		After:  e.doc.Delta(),
		Source: src,
	})
}
