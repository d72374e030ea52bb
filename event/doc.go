// Package event provides the change notification stream used by the
// editor.
//
// A Stream delivers published values to subscribers synchronously and
// in subscription order. Delivery is fire-and-forget from the
// publisher's point of view: a panicking handler is recovered and
// counted, and the remaining handlers still run. Handlers execute on
// the publisher's goroutine and must not publish back into the same
// stream.
package event
