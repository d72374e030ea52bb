package delta

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// FromJSON decodes the wire array form. Decoding is tolerant of unknown
// fields but strict about operations: each element must be exactly one of
// insert, retain, or delete, with positive lengths and well-formed embed
// payloads. The returned delta is canonical.
func FromJSON(data []byte) (*Delta, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode delta: %w", ErrParse)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("decode delta: expected array: %w", ErrParse)
	}
	d := New()
	var opErr error
	index := 0
	root.ForEach(func(_, item gjson.Result) bool {
		op, err := decodeOp(item)
		if err != nil {
			opErr = fmt.Errorf("op %d: %w", index, err)
			return false
		}
		d.push(op)
		index++
		return true
	})
	if opErr != nil {
		return nil, opErr
	}
	return d, nil
}

func decodeOp(item gjson.Result) (Op, error) {
	if !item.IsObject() {
		return nil, fmt.Errorf("expected object: %w", ErrParse)
	}
	attrs, err := decodeAttributes(item.Get("attributes"))
	if err != nil {
		return nil, err
	}

	if ins := item.Get("insert"); ins.Exists() {
		switch {
		case ins.Type == gjson.String:
			if ins.Str == "" {
				return nil, fmt.Errorf("empty insert: %w", ErrInvalidOperation)
			}
			if !utf8.ValidString(ins.Str) {
				return nil, fmt.Errorf("insert is not valid UTF-8: %w", ErrInvalidOperation)
			}
			return InsertOp{Text: ins.Str, Attributes: attrs}, nil
		case ins.IsObject():
			embed, err := decodeEmbed(ins)
			if err != nil {
				return nil, err
			}
			return InsertEmbedOp{Embed: embed, Attributes: attrs}, nil
		default:
			return nil, fmt.Errorf("insert must be text or embed: %w", ErrInvalidOperation)
		}
	}
	if ret := item.Get("retain"); ret.Exists() {
		n, err := decodeLength(ret, "retain")
		if err != nil {
			return nil, err
		}
		return RetainOp{N: n, Attributes: attrs}, nil
	}
	if del := item.Get("delete"); del.Exists() {
		n, err := decodeLength(del, "delete")
		if err != nil {
			return nil, err
		}
		return DeleteOp{N: n}, nil
	}
	return nil, fmt.Errorf("op has no insert, retain, or delete: %w", ErrParse)
}

func decodeLength(v gjson.Result, field string) (int, error) {
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%s must be a number: %w", field, ErrInvalidOperation)
	}
	f := v.Float()
	if f < 1 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s of %v: %w", field, v.Value(), ErrInvalidOperation)
	}
	return int(f), nil
}

// decodeEmbed unpacks {"<type>": <data>}. Exactly one key is required.
func decodeEmbed(v gjson.Result) (Embed, error) {
	var embed Embed
	keys := 0
	v.ForEach(func(key, value gjson.Result) bool {
		keys++
		embed = Embed{Type: key.String(), Data: value.Value()}
		return true
	})
	if keys != 1 || embed.Type == "" {
		return Embed{}, fmt.Errorf("embed must have exactly one type key: %w", ErrInvalidOperation)
	}
	return embed, nil
}

func decodeAttributes(v gjson.Result) (Attributes, error) {
	if !v.Exists() {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, fmt.Errorf("attributes must be an object: %w", ErrParse)
	}
	attrs := Attributes{}
	v.ForEach(func(key, value gjson.Result) bool {
		attrs[key.String()] = value.Value()
		return true
	})
	if len(attrs) == 0 {
		return nil, nil
	}
	return attrs, nil
}

// wireOp is the encoding shape of one operation.
type wireOp struct {
	Insert     any        `json:"insert,omitempty"`
	Retain     int        `json:"retain,omitempty"`
	Delete     int        `json:"delete,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`
}

// MarshalJSON emits the wire array form.
func (d *Delta) MarshalJSON() ([]byte, error) {
	ops := make([]wireOp, len(d.ops))
	for i, op := range d.ops {
		switch o := op.(type) {
		case InsertOp:
			ops[i] = wireOp{Insert: o.Text, Attributes: o.Attributes}
		case InsertEmbedOp:
			ops[i] = wireOp{Insert: o.Embed, Attributes: o.Attributes}
		case RetainOp:
			ops[i] = wireOp{Retain: o.N, Attributes: o.Attributes}
		case DeleteOp:
			ops[i] = wireOp{Delete: o.N}
		}
	}
	return json.Marshal(ops)
}

// UnmarshalJSON decodes the wire array form in place.
func (d *Delta) UnmarshalJSON(data []byte) error {
	decoded, err := FromJSON(data)
	if err != nil {
		return err
	}
	d.ops = decoded.ops
	return nil
}
