// Package delta implements the operation algebra at the core of Inkwell.
//
// A Delta is an ordered sequence of insert, retain, and delete operations.
// A delta made only of inserts describes a whole document; a delta mixing
// the three kinds describes a change to one. The same representation is
// the wire format, the undo currency, and the input to the document tree.
//
// # Operations
//
// Each operation covers a run of characters and may carry attributes:
//
//   - InsertOp adds text. Its length is the rune count of the text.
//   - InsertEmbedOp adds one atomic non-text element (image, divider).
//     Embeds always have length 1 and are never split or merged.
//   - RetainOp skips over existing content. With attributes, it merges
//     them into the retained range; a nil attribute value removes the key.
//   - DeleteOp removes existing content.
//
// # Building
//
// The builder methods chain and keep the delta canonical as ops are
// pushed: adjacent ops of the same kind with equal attributes merge, and
// an insert pushed after a delete at the same position is ordered before
// the delete.
//
//	change := delta.New().
//	    Retain(5, nil).
//	    Insert("X", delta.Attributes{"bold": true}).
//	    Retain(6, nil)
//
// # Algebra
//
// Compose combines two sequential deltas into one. Transform rebases a
// concurrent delta, and TransformPosition rebases a caret offset.
// Invert produces the delta that undoes another against its pre-image
// document. Diff computes the change between two documents.
//
//	doc := delta.New().Insert("Hello World\n", nil)
//	next, _ := doc.Compose(change)
//	undo := change.Invert(doc)
//
// Compose, Transform, Diff, and Invert all return canonical deltas with
// any trailing attribute-less retain removed.
//
// # Wire Format
//
// Deltas serialize to a JSON array of operation objects:
//
//	[{"insert":"Hello"},{"retain":2,"attributes":{"bold":true}},{"delete":1}]
//
// An embed serializes its payload as the insert value, keyed by type:
//
//	[{"insert":{"image":"https://example.com/cat.png"}}]
//
// FromJSON decodes tolerantly (unknown fields ignored) but rejects
// structurally invalid input with ErrParse and invalid operations (zero
// lengths, malformed embeds) with ErrInvalidOperation. Canonical deltas
// survive a round trip unchanged.
package delta
