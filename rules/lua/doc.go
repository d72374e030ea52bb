// Package lua runs user-supplied Lua scripts as editing policies.
//
// A script declares which chain it joins and defines an apply
// function:
//
//	kind = "insert"
//
//	function apply(request, doc)
//	    if request.text ~= "(c)" then
//	        return nil
//	    end
//	    return {
//	        { retain = request.index },
//	        { insert = "\u{00A9}" },
//	    }
//	end
//
// apply receives the edit request and read-only document accessors
// and returns an operation list addressing the document before the
// edit, or nil to pass the decision to the next rule in the chain.
//
// # Request table
//
// request carries kind, index, length, and, when present, text,
// embed, attributes, and pending. Attribute tables map keys to
// values; a false value marks the attribute for removal, since a nil
// table value would drop the key entirely.
//
// # Document accessors
//
// doc.length() returns the document length, doc.text() the editable
// text (doc.text(offset, length) a slice of it), doc.line_attrs(at)
// the block attributes of the line containing at, and
// doc.style(offset, length) the formatting in effect over a range.
//
// # Sandbox
//
// Scripts run in an interpreter with only the base, table, string,
// and math libraries. There is no io, os, debug, or package access,
// and the code loaders are removed, so a script cannot reach the file
// system or pull in code beyond its own source. Each apply call is
// bounded by a deadline; a script that fails or overruns counts as a
// pass and is logged, never as a broken edit.
package lua
