package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/document"
	"github.com/inkwell-editor/inkwell/rules"
)

// requestTable exposes an edit request to a script.
func requestTable(ls *lua.LState, req rules.Request) *lua.LTable {
	t := ls.NewTable()
	ls.SetField(t, "kind", lua.LString(req.Kind.String()))
	ls.SetField(t, "index", lua.LNumber(req.Index))
	ls.SetField(t, "length", lua.LNumber(req.Length))
	if req.Text != "" {
		ls.SetField(t, "text", lua.LString(req.Text))
	}
	if req.Embed != nil {
		et := ls.NewTable()
		ls.SetField(et, "type", lua.LString(req.Embed.Type))
		ls.SetField(et, "data", valueToLua(ls, req.Embed.Data))
		ls.SetField(t, "embed", et)
	}
	if len(req.Attributes) > 0 {
		ls.SetField(t, "attributes", attrsToTable(ls, req.Attributes))
	}
	if len(req.Pending) > 0 {
		ls.SetField(t, "pending", attrsToTable(ls, req.Pending))
	}
	return t
}

// documentTable exposes read-only accessors over the pre-image
// document. Each accessor closes over the snapshot the engine handed
// the chain; nothing a script does can mutate it.
func documentTable(ls *lua.LState, doc *document.Document) *lua.LTable {
	t := ls.NewTable()

	ls.SetField(t, "length", ls.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(doc.Length()))
		return 1
	}))

	ls.SetField(t, "text", ls.NewFunction(func(L *lua.LState) int {
		if L.GetTop() == 0 {
			L.Push(lua.LString(doc.PlainText()))
			return 1
		}
		s, err := doc.TextAt(L.CheckInt(1), L.CheckInt(2))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(s))
		return 1
	}))

	ls.SetField(t, "line_attrs", ls.NewFunction(func(L *lua.LState) int {
		info, err := doc.LineAt(L.CheckInt(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(attrsToTable(L, info.Attributes))
		return 1
	}))

	ls.SetField(t, "style", ls.NewFunction(func(L *lua.LState) int {
		attrs, err := doc.CollectStyle(L.CheckInt(1), L.CheckInt(2))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(attrsToTable(L, attrs))
		return 1
	}))

	return t
}

// opsToDelta decodes the operation list a script returned. Each entry
// carries exactly one of retain, insert, embed, or delete, with
// optional attributes on the first three.
func opsToDelta(t *lua.LTable) (*delta.Delta, error) {
	n := t.MaxN()
	if n == 0 {
		return nil, fmt.Errorf("operation list is empty")
	}
	d := delta.New()
	for i := 1; i <= n; i++ {
		entry, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("operation %d: not a table", i)
		}
		var attrs delta.Attributes
		if at, ok := entry.RawGetString("attributes").(*lua.LTable); ok {
			attrs = tableToAttrs(at)
		}
		retain := entry.RawGetString("retain")
		insert := entry.RawGetString("insert")
		embed := entry.RawGetString("embed")
		del := entry.RawGetString("delete")
		switch {
		case retain != lua.LNil:
			count, ok := retain.(lua.LNumber)
			if !ok || count < 0 {
				return nil, fmt.Errorf("operation %d: retain must be a non-negative number", i)
			}
			// A zero retain is a no-op, so scripts can blindly emit
			// the request index.
			d.Retain(int(count), attrs)
		case insert != lua.LNil:
			s, ok := insert.(lua.LString)
			if !ok {
				return nil, fmt.Errorf("operation %d: insert must be a string", i)
			}
			d.Insert(string(s), attrs)
		case embed != lua.LNil:
			et, ok := embed.(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("operation %d: embed must be a table", i)
			}
			typ, ok := et.RawGetString("type").(lua.LString)
			if !ok {
				return nil, fmt.Errorf("operation %d: embed.type must be a string", i)
			}
			d.InsertEmbed(delta.Embed{
				Type: string(typ),
				Data: luaToValue(et.RawGetString("data")),
			}, attrs)
		case del != lua.LNil:
			count, ok := del.(lua.LNumber)
			if !ok || count < 1 {
				return nil, fmt.Errorf("operation %d: delete must be a positive number", i)
			}
			d.Delete(int(count))
		default:
			return nil, fmt.Errorf("operation %d: no retain, insert, embed, or delete", i)
		}
	}
	return d, nil
}

// attrsToTable converts attributes for a script. A removal marker
// (nil value) becomes false, since a nil table value would drop the
// key entirely.
func attrsToTable(ls *lua.LState, attrs delta.Attributes) *lua.LTable {
	t := ls.NewTable()
	for k, v := range attrs {
		if v == nil {
			ls.SetField(t, k, lua.LFalse)
			continue
		}
		ls.SetField(t, k, valueToLua(ls, v))
	}
	return t
}

// tableToAttrs is the inverse of attrsToTable; false marks removal.
func tableToAttrs(t *lua.LTable) delta.Attributes {
	attrs := delta.Attributes{}
	t.ForEach(func(k, v lua.LValue) {
		if v == lua.LFalse {
			attrs[k.String()] = nil
			return
		}
		attrs[k.String()] = luaToValue(v)
	})
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func valueToLua(ls *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case map[string]any:
		t := ls.NewTable()
		for k, item := range val {
			ls.SetField(t, k, valueToLua(ls, item))
		}
		return t
	case []any:
		t := ls.NewTable()
		for _, item := range val {
			t.Append(valueToLua(ls, item))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

func luaToValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LString:
		return string(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, luaToValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := make(map[string]any)
		val.ForEach(func(k, item lua.LValue) {
			m[k.String()] = luaToValue(item)
		})
		return m
	default:
		return nil
	}
}
