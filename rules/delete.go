package rules

import (
	"github.com/inkwell-editor/inkwell/delta"
)

// EnsureFinalNewlineRule keeps the document's final terminator alive.
// A delete reaching it shrinks to stop just short, and the surviving
// terminator takes over the block style of the first touched line.
type EnsureFinalNewlineRule struct{}

func (EnsureFinalNewlineRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	docLen := ctx.Doc.Length()
	if req.Index+req.Length < docLen {
		return nil, nil
	}
	keep := docLen - 1 - req.Index
	if keep <= 0 {
		return delta.New(), nil
	}
	first, err := ctx.Doc.LineAt(req.Index)
	if err != nil {
		return nil, nil
	}
	last, err := ctx.Doc.LineAt(docLen - 1)
	if err != nil {
		return nil, nil
	}
	out := delta.New().Retain(req.Index, nil).Delete(keep)
	if first.Start == last.Start {
		return out, nil
	}
	restyle := delta.Attributes{}
	for k := range last.Attributes {
		restyle[k] = nil
	}
	for k, v := range first.Attributes {
		restyle[k] = v
	}
	if len(restyle) > 0 {
		out.Retain(1, restyle)
	}
	return out, nil
}

// EnsureGraphemeBoundariesRule widens a delete that lands inside a
// grapheme cluster to whole clusters, so combining sequences and emoji
// are never torn apart. The final terminator is never widened into.
type EnsureGraphemeBoundariesRule struct{}

func (EnsureGraphemeBoundariesRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	docLen := ctx.Doc.Length()
	if req.Length <= 0 || req.Index >= docLen-1 {
		return nil, nil
	}
	start, _, err := ctx.Doc.GraphemeRangeAt(req.Index)
	if err != nil {
		return nil, nil
	}
	_, end, err := ctx.Doc.GraphemeRangeAt(req.Index + req.Length - 1)
	if err != nil {
		return nil, nil
	}
	if end > docLen-1 {
		end = docLen - 1
	}
	if start == req.Index && end == req.Index+req.Length {
		return nil, nil
	}
	if end <= start {
		return delta.New(), nil
	}
	return delta.New().Retain(start, nil).Delete(end - start), nil
}

// PreserveLineStyleOnMergeRule handles a delete that starts on a line
// terminator: the lines merge, and the first surviving terminator is
// re-styled with the first line's block attributes so the merged line
// keeps the look of the line the caret came from.
type PreserveLineStyleOnMergeRule struct{}

func (PreserveLineStyleOnMergeRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	ch, err := ctx.Doc.TextAt(req.Index, 1)
	if err != nil || ch != "\n" {
		return nil, nil
	}
	first, err := ctx.Doc.LineAt(req.Index)
	if err != nil {
		return nil, nil
	}
	after := req.Index + req.Length
	survivor, err := ctx.Doc.LineAt(after)
	if err != nil {
		return nil, nil
	}
	restyle := delta.Attributes{}
	for k := range survivor.Attributes {
		restyle[k] = nil
	}
	for k, v := range first.Attributes {
		restyle[k] = v
	}
	out := delta.New().Retain(req.Index, nil).Delete(req.Length)
	if len(restyle) == 0 {
		return out, nil
	}
	return out.
		Retain(terminatorPos(survivor)-after, nil).
		Retain(1, restyle), nil
}

// CatchAllDeleteRule performs the literal delete.
type CatchAllDeleteRule struct{}

func (CatchAllDeleteRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	return delta.New().Retain(req.Index, nil).Delete(req.Length), nil
}
