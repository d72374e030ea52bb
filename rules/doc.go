// Package rules turns raw edit requests into the deltas actually
// applied to a document.
//
// Every mutation funnels through an ordered policy chain for its kind
// (insert, delete, format). Each rule inspects the request against a
// read-only document snapshot and either returns a replacement delta or
// passes; the first non-pass wins. Custom rules registered with
// [Engine.Register] run before the built-ins in registration order, so
// a host can override any built-in policy without forking the chain.
//
// The built-in chains encode the editing conventions users expect from
// a rich-text editor: pressing Enter keeps the current line's look,
// leaving an empty list item exits the list, typing inherits the style
// under the caret, deletes respect grapheme clusters and never remove
// the document's final line terminator, and block formats land on line
// terminators rather than text.
//
// # Writing a rule
//
//	type shout struct{}
//
//	func (shout) Apply(ctx *rules.Context) (*delta.Delta, error) {
//		if ctx.Request.Kind != rules.KindInsert || ctx.Request.Text != "!" {
//			return nil, nil
//		}
//		return delta.New().Retain(ctx.Request.Index, nil).Insert("!!", nil), nil
//	}
//
//	engine.Register(rules.KindInsert, shout{})
//
// Returning (nil, nil) passes. Returning an error aborts the edit; the
// document is untouched.
package rules
