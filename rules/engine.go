package rules

import (
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/document"
)

// Kind selects which policy chain handles a request.
type Kind int

const (
	KindInsert Kind = iota
	KindDelete
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindFormat:
		return "format"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Request is a raw edit intent before any policy has shaped it. Index
// and Length address the pre-image document in runes. Text and Embed
// are mutually exclusive insert payloads. Attributes carries explicit
// formatting (API inserts, format requests); Pending carries the
// controller's ephemeral typing style for plain inserts.
type Request struct {
	Kind       Kind
	Index      int
	Length     int
	Text       string
	Embed      *delta.Embed
	Attributes delta.Attributes
	Pending    delta.Attributes
}

// Context is what a rule sees: the request and a document snapshot.
// Rules must treat the document as read-only.
type Context struct {
	Doc     *document.Document
	Request Request
}

// NewContext pairs a document snapshot with a request.
func NewContext(doc *document.Document, req Request) *Context {
	return &Context{Doc: doc, Request: req}
}

// Rule is a single editing policy. Apply returns the delta to use in
// place of the literal request, or nil to pass the decision down the
// chain. An error aborts the edit.
type Rule interface {
	Apply(ctx *Context) (*delta.Delta, error)
}

// Engine holds the per-kind chains.
type Engine struct {
	log           *zap.Logger
	autoLink      bool
	autoExitBlock bool
	custom        map[Kind][]Rule
	builtin       map[Kind][]Rule
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger; rule matches are reported at debug
// level. Defaults to a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithAutoLink toggles URL auto-linking on space. Enabled by default.
func WithAutoLink(enabled bool) Option {
	return func(e *Engine) { e.autoLink = enabled }
}

// WithAutoExitBlock toggles exiting an empty list, quote, or code line
// on Enter. Enabled by default.
func WithAutoExitBlock(enabled bool) Option {
	return func(e *Engine) { e.autoExitBlock = enabled }
}

// NewEngine builds an engine with the built-in chains installed.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:           zap.NewNop(),
		autoLink:      true,
		autoExitBlock: true,
		custom:        make(map[Kind][]Rule),
	}
	for _, opt := range opts {
		opt(e)
	}

	insert := []Rule{InsertEmbedRule{}}
	if e.autoExitBlock {
		insert = append(insert, AutoExitBlockRule{})
	}
	insert = append(insert, PreserveLineStyleOnSplitRule{})
	if e.autoLink {
		insert = append(insert, AutoFormatLinksRule{})
	}
	insert = append(insert, PreserveInlineStylesRule{}, CatchAllInsertRule{})

	e.builtin = map[Kind][]Rule{
		KindInsert: insert,
		KindDelete: {
			EnsureFinalNewlineRule{},
			EnsureGraphemeBoundariesRule{},
			PreserveLineStyleOnMergeRule{},
			CatchAllDeleteRule{},
		},
		KindFormat: {
			ResolveBlockFormatRule{},
			FormatEmbedRule{},
			ResolveInlineFormatRule{},
		},
	}
	return e
}

// Register installs a custom rule for a kind. Custom rules run before
// the built-ins, in registration order.
func (e *Engine) Register(kind Kind, r Rule) {
	e.custom[kind] = append(e.custom[kind], r)
}

// Apply walks the chain for the request's kind. A nil delta with a nil
// error means no rule produced a mutation; the caller treats that as a
// no-op.
func (e *Engine) Apply(ctx *Context) (*delta.Delta, error) {
	d, matched, err := e.run(ctx, e.custom[ctx.Request.Kind])
	if matched {
		return d, err
	}
	d, _, err = e.run(ctx, e.builtin[ctx.Request.Kind])
	return d, err
}

func (e *Engine) run(ctx *Context, chain []Rule) (*delta.Delta, bool, error) {
	for _, r := range chain {
		d, err := r.Apply(ctx)
		if err != nil {
			return nil, true, fmt.Errorf("rule %T: %w", r, err)
		}
		if d != nil {
			e.log.Debug("rule matched",
				zap.String("rule", fmt.Sprintf("%T", r)),
				zap.Stringer("kind", ctx.Request.Kind),
				zap.Int("index", ctx.Request.Index),
				zap.Int("length", ctx.Request.Length))
			return d, true, nil
		}
	}
	return nil, false, nil
}

// terminatorPos is the document offset of a line's terminator.
func terminatorPos(info document.LineInfo) int {
	return info.Start + utf8.RuneCountInString(info.Text)
}
