package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua tables into L.
//
// engine.log.{debug,info,warn,error}(msg) write through the Manager's logger.
// engine.text.titlecase(s) uppercases the first letter of each word.
// engine.text.oxford(tbl) joins a string list as "a, b, and c".
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	logTable := L.NewTable()
	engine.RawSetString("log", logTable)
	logTable.RawSetString("debug", L.NewFunction(m.luaLog(func(msg string) { m.logger.Debug(msg, zap.String("source", "lua")) })))
	logTable.RawSetString("info", L.NewFunction(m.luaLog(func(msg string) { m.logger.Info(msg, zap.String("source", "lua")) })))
	logTable.RawSetString("warn", L.NewFunction(m.luaLog(func(msg string) { m.logger.Warn(msg, zap.String("source", "lua")) })))
	logTable.RawSetString("error", L.NewFunction(m.luaLog(func(msg string) { m.logger.Error(msg, zap.String("source", "lua")) })))

	textTable := L.NewTable()
	engine.RawSetString("text", textTable)
	textTable.RawSetString("titlecase", L.NewFunction(luaTitlecase))
	textTable.RawSetString("oxford", L.NewFunction(luaOxford))
}

func (m *Manager) luaLog(emit func(msg string)) lua.LGFunction {
	return func(L *lua.LState) int {
		emit(L.CheckString(1))
		return 0
	}
}

func luaTitlecase(L *lua.LState) int {
	s := L.CheckString(1)
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	L.Push(lua.LString(strings.Join(words, " ")))
	return 1
}

func luaOxford(L *lua.LState) int {
	tbl := L.CheckTable(1)
	var items []string
	tbl.ForEach(func(_, v lua.LValue) {
		items = append(items, lua.LVAsString(v))
	})
	var out string
	switch len(items) {
	case 0:
		out = ""
	case 1:
		out = items[0]
	case 2:
		out = items[0] + " and " + items[1]
	default:
		out = strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
	L.Push(lua.LString(out))
	return 1
}
