// Package history tracks undo and redo state for a document as pairs
// of forward and inverted deltas.
//
// Consecutive edits coalesce into one entry when they arrive within the
// coalescing window and extend each other contiguously, so typing a
// word undoes as a unit. The history never touches a document itself:
// the owner replays the stored deltas and restores the stored
// selections.
package history
