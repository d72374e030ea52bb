package delta

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Embed is an atomic non-text document element such as an image, video,
// or divider. Type selects the renderer; Data is the renderer's payload
// and must be JSON-marshalable. Embeds occupy exactly one character
// position and are never split.
type Embed struct {
	Type string
	Data any
}

// Equal reports whether two embeds have the same type and an identical
// wire payload. Payloads compare by their canonical JSON encoding.
func (e Embed) Equal(other Embed) bool {
	if e.Type != other.Type {
		return false
	}
	a, errA := json.Marshal(e.Data)
	b, errB := json.Marshal(other.Data)
	if errA != nil || errB != nil {
		return false
	}
	return string(a) == string(b)
}

// Get reads a dotted path from a structured payload, for example
// Get("size.width") on an image embed. The zero Result is returned for
// missing paths or unmarshalable payloads.
func (e Embed) Get(path string) gjson.Result {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(raw, path)
}

// Set returns a copy of the embed with the dotted path in its payload
// replaced. The original embed is not modified.
func (e Embed) Set(path string, value any) (Embed, error) {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return Embed{}, fmt.Errorf("embed payload: %w", err)
	}
	updated, err := sjson.SetBytes(raw, path, value)
	if err != nil {
		return Embed{}, fmt.Errorf("embed path %q: %w", path, err)
	}
	var data any
	if err := json.Unmarshal(updated, &data); err != nil {
		return Embed{}, fmt.Errorf("embed payload: %w", err)
	}
	return Embed{Type: e.Type, Data: data}, nil
}

// MarshalJSON emits the wire shape {"<type>": <data>}.
func (e Embed) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{e.Type: e.Data})
}
