// Package editor is the single entry point collaborators use to edit
// a document. An Editor owns one document tree, the rule engine that
// shapes raw edits into valid mutations, the undo history, the current
// selection, and the change stream subscribers listen on.
//
// The editor is single-writer: all mutation runs synchronously on the
// calling goroutine and there is no internal locking. Callers using an
// Editor from several goroutines must serialize access themselves.
//
// # Edit pipeline
//
// Every intent call follows the same path: the request is handed to
// the rule engine, the winning rule's delta is applied to the document
// all-or-nothing, the change and its inverse are recorded by the
// history, the selection is transformed, and a Change is published to
// subscribers. Errors surface to the caller with the document
// unchanged.
//
//	ed := editor.New()
//	ed.Changes().Subscribe(func(c editor.Change) {
//		fmt.Println(c.Source, c.Change)
//	})
//	if err := ed.ReplaceText(0, 0, "hello", nil); err != nil {
//		log.Fatal(err)
//	}
//
// Undo and redo replay recorded deltas directly, bypassing the rule
// engine, so history restores exactly what was applied.
package editor
