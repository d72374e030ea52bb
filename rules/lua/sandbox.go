package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// openSandboxed opens only the libraries editing policies need. The
// package library is never opened, so require does not exist; the
// loaders base installs are removed so a script cannot pull in code
// beyond its own source.
func openSandboxed(ls *lua.LState) {
	lua.OpenBase(ls)
	lua.OpenTable(ls)
	lua.OpenString(ls)
	lua.OpenMath(ls)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		ls.SetGlobal(name, lua.LNil)
	}
}
