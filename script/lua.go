package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// LuaBridge is the Bridge implementation backed by an embedded pure-Go
// Lua interpreter. It is grounded on the original SSR tool's own
// embedded-Lua scripting layer; gopher-lua is the idiomatic cgo-free Go
// equivalent.
type LuaBridge struct {
	state        *lua.LState
	setFormat    FormatSetter
	pathProvider PathProvider
	loaded       bool
}

// NewLuaBridge constructs a bridge that exposes setFormat and paths to
// loaded scripts as the globals set_format and archive_paths.
func NewLuaBridge(setFormat FormatSetter, paths PathProvider) *LuaBridge {
	b := &LuaBridge{
		state:        lua.NewState(),
		setFormat:    setFormat,
		pathProvider: paths,
	}
	b.state.SetGlobal("set_format", b.state.NewFunction(b.luaSetFormat))
	b.state.SetGlobal("archive_paths", b.state.NewFunction(b.luaArchivePaths))
	return b
}

func (b *LuaBridge) luaSetFormat(L *lua.LState) int {
	format := L.CheckString(1)
	suppress := L.ToBool(2)
	b.setFormat(format, suppress)
	return 0
}

func (b *LuaBridge) luaArchivePaths(L *lua.LState) int {
	abs, dir, stem, ext, cwd := b.pathProvider()
	tbl := L.NewTable()
	tbl.RawSetString("path", lua.LString(abs))
	tbl.RawSetString("dir", lua.LString(dir))
	tbl.RawSetString("stem", lua.LString(stem))
	tbl.RawSetString("ext", lua.LString(ext))
	tbl.RawSetString("cwd", lua.LString(cwd))
	L.Push(tbl)
	return 1
}

// Load evaluates the script file at path, registering its ParseData
// function for subsequent calls.
func (b *LuaBridge) Load(path string) error {
	if err := b.state.DoFile(path); err != nil {
		return &Error{Err: fmt.Errorf("script: loading %s: %w", path, err)}
	}
	fn := b.state.GetGlobal("ParseData")
	if fn == lua.LNil {
		return &Error{Err: fmt.Errorf("script: %s does not define ParseData", path)}
	}
	b.loaded = true
	return nil
}

// ParseData calls the script's ParseData(runtime, timestamp, data).
func (b *LuaBridge) ParseData(runtime float64, timestamp string, data []byte) error {
	if !b.loaded {
		return &Error{Err: fmt.Errorf("script: ParseData called before a script was loaded")}
	}
	fn := b.state.GetGlobal("ParseData")
	err := b.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(runtime), lua.LString(timestamp), lua.LString(data))
	if err != nil {
		return &Error{Err: fmt.Errorf("script: ParseData: %w", err)}
	}
	return nil
}

// Close releases the Lua interpreter.
func (b *LuaBridge) Close() {
	b.state.Close()
}
