package delta

import "reflect"

// AttributeScope identifies whether an attribute styles runs of characters
// or whole lines.
type AttributeScope int

const (
	// ScopeInline attributes style character runs (bold, link, color).
	ScopeInline AttributeScope = iota

	// ScopeBlock attributes style whole lines and ride on the line's
	// terminating newline in delta form (header, list, indent).
	ScopeBlock
)

// attributeScopes maps known attribute keys to their scope. Keys not
// listed here are treated as inline.
var attributeScopes = map[string]AttributeScope{
	"bold":       ScopeInline,
	"italic":     ScopeInline,
	"underline":  ScopeInline,
	"strike":     ScopeInline,
	"code":       ScopeInline,
	"link":       ScopeInline,
	"color":      ScopeInline,
	"background": ScopeInline,
	"font":       ScopeInline,
	"size":       ScopeInline,
	"script":     ScopeInline,

	"header":     ScopeBlock,
	"list":       ScopeBlock,
	"indent":     ScopeBlock,
	"align":      ScopeBlock,
	"direction":  ScopeBlock,
	"blockquote": ScopeBlock,
	"code-block": ScopeBlock,
}

// ExclusiveBlockKeys lists block attributes that cannot coexist on one
// line. Applying any member clears the others.
var ExclusiveBlockKeys = []string{"header", "list", "blockquote", "code-block"}

// ScopeOf returns the scope of an attribute key.
func ScopeOf(key string) AttributeScope {
	if s, ok := attributeScopes[key]; ok {
		return s
	}
	return ScopeInline
}

// Attributes is a set of formatting facts keyed by attribute name. A nil
// value marks the key for removal when the set is composed onto existing
// formatting.
type Attributes map[string]any

// Clone returns a shallow copy. Clone of an empty set is nil.
func (a Attributes) Clone() Attributes {
	if len(a) == 0 {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal reports whether two sets carry the same keys and values. Empty
// and nil sets are equal.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !EqualValue(av, bv) {
			return false
		}
	}
	return true
}

// Inline returns the subset of a with inline scope.
func (a Attributes) Inline() Attributes {
	return a.filter(ScopeInline)
}

// Block returns the subset of a with block scope.
func (a Attributes) Block() Attributes {
	return a.filter(ScopeBlock)
}

func (a Attributes) filter(scope AttributeScope) Attributes {
	var out Attributes
	for k, v := range a {
		if ScopeOf(k) == scope {
			if out == nil {
				out = Attributes{}
			}
			out[k] = v
		}
	}
	return out
}

// ComposeAttributes merges b onto a with b winning per key. When keepNil
// is false, nil values from b are dropped from the result; retained
// ranges keep them so the nil can remove downstream formatting.
func ComposeAttributes(a, b Attributes, keepNil bool) Attributes {
	out := make(Attributes, len(a)+len(b))
	for k, v := range b {
		if v != nil || keepNil {
			out[k] = v
		}
	}
	for k, v := range a {
		if _, ok := b[k]; !ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DiffAttributes returns the attribute changes that turn a into b. Keys
// present only in a map to nil.
func DiffAttributes(a, b Attributes) Attributes {
	out := Attributes{}
	for k, av := range a {
		bv, ok := b[k]
		switch {
		case !ok:
			out[k] = nil
		case !EqualValue(av, bv):
			out[k] = bv
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			out[k] = bv
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// InvertAttributes returns the attributes that undo applying attr on top
// of base: overridden keys restore their base value, added keys map to
// nil.
func InvertAttributes(attr, base Attributes) Attributes {
	out := Attributes{}
	for k, bv := range base {
		if av, ok := attr[k]; ok && !EqualValue(av, bv) {
			out[k] = bv
		}
	}
	for k := range attr {
		if _, ok := base[k]; !ok {
			out[k] = nil
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TransformAttributes rebases b against a concurrently applied a. With
// priority, keys a already set are dropped from b; without, b passes
// through unchanged.
func TransformAttributes(a, b Attributes, priority bool) Attributes {
	if len(a) == 0 {
		return b.Clone()
	}
	if len(b) == 0 {
		return nil
	}
	if !priority {
		return b.Clone()
	}
	out := Attributes{}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// EqualValue compares attribute values the way the wire format does:
// numeric values compare by magnitude regardless of Go type, so a header
// level decoded as float64 matches the int it was built with.
func EqualValue(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if _, ok := toFloat(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
