package rules

import (
	"github.com/inkwell-editor/inkwell/delta"
)

// ResolveBlockFormatRule lands block attributes on line terminators:
// every terminator inside the range plus the first one at or after its
// end, so formatting any part of a line formats the whole line.
// Setting a member of an exclusive block family clears its siblings.
type ResolveBlockFormatRule struct{}

func (ResolveBlockFormatRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	attrs := req.Attributes.Block()
	if len(attrs) == 0 {
		return nil, nil
	}
	attrs = attrs.Clone()
	for _, k := range delta.ExclusiveBlockKeys {
		if v, ok := attrs[k]; ok && v != nil {
			for _, sibling := range delta.ExclusiveBlockKeys {
				if sibling == k {
					continue
				}
				if _, ok := attrs[sibling]; !ok {
					attrs[sibling] = nil
				}
			}
			break
		}
	}

	out := delta.New().Retain(req.Index, nil)
	docEnd := ctx.Doc.Length() - 1
	pos := req.Index
	end := req.Index + req.Length
	for {
		info, err := ctx.Doc.LineAt(pos)
		if err != nil {
			break
		}
		term := terminatorPos(info)
		out.Retain(term-pos, nil).Retain(1, attrs)
		if term >= end || term == docEnd {
			break
		}
		pos = term + 1
	}
	return out, nil
}

// FormatEmbedRule takes inline attributes aimed at exactly one embed.
type FormatEmbedRule struct{}

func (FormatEmbedRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Length != 1 {
		return nil, nil
	}
	if _, ok := ctx.Doc.EmbedAt(req.Index); !ok {
		return nil, nil
	}
	attrs := req.Attributes.Inline()
	if len(attrs) == 0 {
		return nil, nil
	}
	return delta.New().Retain(req.Index, nil).Retain(1, attrs), nil
}

// ResolveInlineFormatRule applies inline attributes to the covered
// text, skipping line terminators. Zero-length requests pass; a
// collapsed selection only changes the controller's pending style.
type ResolveInlineFormatRule struct{}

func (ResolveInlineFormatRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Length <= 0 {
		return nil, nil
	}
	attrs := req.Attributes.Inline()
	if len(attrs) == 0 {
		return nil, nil
	}
	out := delta.New().Retain(req.Index, nil)
	pos := req.Index
	end := req.Index + req.Length
	for pos < end {
		info, err := ctx.Doc.LineAt(pos)
		if err != nil {
			break
		}
		term := terminatorPos(info)
		if chunk := min(end, term) - pos; chunk > 0 {
			out.Retain(chunk, attrs)
			pos += chunk
		}
		if pos >= end {
			break
		}
		// pos sits on the terminator; leave it untouched.
		out.Retain(1, nil)
		pos++
	}
	return out, nil
}
