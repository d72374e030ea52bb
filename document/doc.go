// Package document implements the tree form of an Inkwell document.
//
// A Document mirrors its delta form as a navigable hierarchy: the root
// owns blocks, a block owns lines that share the same block-scope
// attributes, and a line owns leaves, each a styled run of text or a
// single embed. Every line ends with an implicit terminator that counts
// one character position; a line's block attributes ride on that
// terminator in delta form. A document is never empty: its minimal
// content is one empty line, length 1.
//
// # Synchronization with deltas
//
// FromDelta builds the tree from a document delta (inserts only),
// appending a final terminator when the source lacks one. Delta
// re-serializes the tree; FromDelta followed by Delta is exact for
// canonical documents. ApplyDelta mutates the tree incrementally,
// splitting leaves and lines at op boundaries, merging lines when a
// terminator is deleted, and regrouping blocks afterwards. Application
// is all-or-nothing: the change is validated in full before the first
// mutation.
//
// # Queries
//
// PlainText returns leaf text with embeds as U+FFFC and without the
// final terminator. CollectStyle intersects formatting over a range the
// way a toolbar needs it: a key survives only when every covered piece
// agrees on its value. Grapheme helpers expose cluster boundaries so
// callers can widen character edits to whole user-perceived characters.
//
// The tree is exclusively owned: callers interact through the methods
// here and never hold references into nodes. Documents are not safe for
// concurrent mutation.
package document
