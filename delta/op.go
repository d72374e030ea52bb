package delta

import "unicode/utf8"

// Op is a single step in a delta: an insert, a retain, or a delete.
// Implementations are the value types InsertOp, InsertEmbedOp, RetainOp,
// and DeleteOp.
type Op interface {
	// Length is the number of character positions the op covers. Text
	// inserts count runes; embeds count 1.
	Length() int

	isOp()
}

// InsertOp adds a run of text, optionally styled.
type InsertOp struct {
	Text       string
	Attributes Attributes
}

func (o InsertOp) Length() int { return utf8.RuneCountInString(o.Text) }
func (InsertOp) isOp()         {}

// InsertEmbedOp adds one atomic embed, optionally styled.
type InsertEmbedOp struct {
	Embed      Embed
	Attributes Attributes
}

func (InsertEmbedOp) Length() int { return 1 }
func (InsertEmbedOp) isOp()       {}

// RetainOp skips over existing content. With attributes, it merges them
// into the skipped range; a nil value removes the key there.
type RetainOp struct {
	N          int
	Attributes Attributes
}

func (o RetainOp) Length() int { return o.N }
func (RetainOp) isOp()         {}

// DeleteOp removes existing content.
type DeleteOp struct {
	N int
}

func (o DeleteOp) Length() int { return o.N }
func (DeleteOp) isOp()         {}

// opAttributes returns the attribute set an op carries, nil for deletes.
func opAttributes(op Op) Attributes {
	switch o := op.(type) {
	case InsertOp:
		return o.Attributes
	case InsertEmbedOp:
		return o.Attributes
	case RetainOp:
		return o.Attributes
	}
	return nil
}

// equalOp reports whether two ops are identical in kind, coverage, and
// attributes.
func equalOp(a, b Op) bool {
	switch ao := a.(type) {
	case InsertOp:
		bo, ok := b.(InsertOp)
		return ok && ao.Text == bo.Text && ao.Attributes.Equal(bo.Attributes)
	case InsertEmbedOp:
		bo, ok := b.(InsertEmbedOp)
		return ok && ao.Embed.Equal(bo.Embed) && ao.Attributes.Equal(bo.Attributes)
	case RetainOp:
		bo, ok := b.(RetainOp)
		return ok && ao.N == bo.N && ao.Attributes.Equal(bo.Attributes)
	case DeleteOp:
		bo, ok := b.(DeleteOp)
		return ok && ao.N == bo.N
	}
	return false
}
