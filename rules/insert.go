package rules

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/inkwell-editor/inkwell/delta"
)

// InsertEmbedRule routes embed payloads. Embeds always land as their
// own op at the caret.
type InsertEmbedRule struct{}

func (InsertEmbedRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Embed == nil {
		return nil, nil
	}
	return delta.New().
		Retain(req.Index, nil).
		InsertEmbed(*req.Embed, req.Attributes.Inline()), nil
}

// autoExitKeys are the block decorations Enter escapes from when the
// line is empty.
var autoExitKeys = []string{"list", "blockquote", "code-block", "indent"}

// AutoExitBlockRule clears list, quote, and code decorations when Enter
// is pressed on an empty decorated line at the end of its block,
// instead of adding another empty decorated line.
type AutoExitBlockRule struct{}

func (AutoExitBlockRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Text != "\n" || req.Embed != nil {
		return nil, nil
	}
	info, err := ctx.Doc.LineAt(req.Index)
	if err != nil {
		return nil, nil
	}
	if info.Text != "" || req.Index != info.Start {
		return nil, nil
	}
	cleared := delta.Attributes{}
	for _, k := range autoExitKeys {
		if _, ok := info.Attributes[k]; ok {
			cleared[k] = nil
		}
	}
	if len(cleared) == 0 {
		return nil, nil
	}
	// Only the last line of a block exits; mid-block the newline
	// continues the decoration.
	if next, err := ctx.Doc.LineAt(req.Index + 1); err == nil {
		for k := range cleared {
			if delta.EqualValue(next.Attributes[k], info.Attributes[k]) {
				return nil, nil
			}
		}
	}
	return delta.New().Retain(req.Index, nil).Retain(1, cleared), nil
}

// PreserveLineStyleOnSplitRule decides what a typed newline does to the
// line it lands on. Mid-line, the new terminator copies the line's
// block attributes so both halves keep their look. At the end of a
// line the same happens, except a header does not carry onto the new
// empty line below.
type PreserveLineStyleOnSplitRule struct{}

func (PreserveLineStyleOnSplitRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Text != "\n" || req.Embed != nil {
		return nil, nil
	}
	info, err := ctx.Doc.LineAt(req.Index)
	if err != nil {
		return nil, nil
	}
	switch {
	case req.Index == terminatorPos(info):
		out := delta.New().Retain(req.Index, nil).Insert("\n", info.Attributes)
		if _, ok := info.Attributes["header"]; ok {
			out.Retain(1, delta.Attributes{"header": nil})
		}
		return out, nil
	case req.Index > info.Start:
		return delta.New().Retain(req.Index, nil).Insert("\n", info.Attributes), nil
	default:
		// Line start: a plain newline above pushes the styled line
		// down untouched.
		return nil, nil
	}
}

// AutoFormatLinksRule links the word before the caret when a space is
// typed after an http(s) URL.
type AutoFormatLinksRule struct{}

func (AutoFormatLinksRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Text != " " || req.Embed != nil {
		return nil, nil
	}
	info, err := ctx.Doc.LineAt(req.Index)
	if err != nil || req.Index == info.Start {
		return nil, nil
	}
	before := string([]rune(info.Text)[:req.Index-info.Start])
	cand := before
	if i := strings.LastIndex(before, " "); i >= 0 {
		cand = before[i+1:]
	}
	if cand == "" {
		return nil, nil
	}
	u, err := url.Parse(cand)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, nil
	}
	candLen := utf8.RuneCountInString(cand)
	existing, err := ctx.Doc.CollectStyle(req.Index-candLen, candLen)
	if err != nil {
		return nil, nil
	}
	if _, ok := existing["link"]; ok {
		return nil, nil
	}
	caret, err := ctx.Doc.CollectStyle(req.Index, 0)
	if err != nil {
		return nil, nil
	}
	return delta.New().
		Retain(req.Index-candLen, nil).
		Retain(candLen, delta.Attributes{"link": cand}).
		Insert(" ", caret.Inline()), nil
}

// PreserveInlineStylesRule gives plain typing the inline style under
// the caret, merged with the controller's pending style. Links never
// extend past their last character. Explicit attributes on the request
// bypass inheritance entirely.
type PreserveInlineStylesRule struct{}

func (PreserveInlineStylesRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Embed != nil || req.Text == "" || strings.Contains(req.Text, "\n") {
		return nil, nil
	}
	if len(req.Attributes) > 0 {
		return nil, nil
	}
	caret, err := ctx.Doc.CollectStyle(req.Index, 0)
	if err != nil {
		return nil, nil
	}
	inherited := caret.Inline()
	delete(inherited, "link")
	effective := delta.ComposeAttributes(inherited, req.Pending, false)
	if len(effective) == 0 {
		return nil, nil
	}
	return delta.New().Retain(req.Index, nil).Insert(req.Text, effective), nil
}

// CatchAllInsertRule performs the literal insert.
type CatchAllInsertRule struct{}

func (CatchAllInsertRule) Apply(ctx *Context) (*delta.Delta, error) {
	req := ctx.Request
	if req.Embed != nil {
		return delta.New().Retain(req.Index, nil).InsertEmbed(*req.Embed, req.Attributes.Inline()), nil
	}
	return delta.New().Retain(req.Index, nil).Insert(req.Text, req.Attributes), nil
}
