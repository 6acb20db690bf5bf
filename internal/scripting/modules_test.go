package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/mapsmith/internal/scripting"
)

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	// Use a unique theme per test to avoid collisions
	themeName := "modtest_" + t.Name()
	require.NoError(t, mgr.LoadTheme(themeName, dir, 0))
	ret, err := mgr.CallHook(themeName, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_WritesToLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(zap.New(core))

	runScript(t, mgr, `
		function do_log()
			engine.log.info("hello from lua")
		end
	`, "do_log")

	found := false
	for _, e := range logs.All() {
		if e.Level == zap.InfoLevel {
			found = true
			break
		}
	}
	assert.True(t, found, "expected Info log entry")
}

func TestEngineLog_AllLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(zap.New(core))

	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.All() {
		levels[e.Level.String()] = true
	}
	assert.True(t, levels["debug"], "expected debug log")
	assert.True(t, levels["info"], "expected info log")
	assert.True(t, levels["warn"], "expected warn log")
	assert.True(t, levels["error"], "expected error log")
}

func TestEngineText_Titlecase(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function do_title()
			return engine.text.titlecase("crumbling stone hall")
		end
	`, "do_title")
	assert.Equal(t, lua.LString("Crumbling Stone Hall"), ret)
}

func TestEngineText_Oxford(t *testing.T) {
	mgr, _ := newTestManager(t)

	cases := []struct {
		name string
		src  string
		want lua.LString
	}{
		{"empty", `return engine.text.oxford({})`, ""},
		{"one", `return engine.text.oxford({"rats"})`, "rats"},
		{"two", `return engine.text.oxford({"rats", "bats"})`, "rats and bats"},
		{"three", `return engine.text.oxford({"rats", "bats", "spiders"})`, "rats, bats, and spiders"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ret := runScript(t, mgr, "function do_join()\n"+tc.src+"\nend", "do_join")
			assert.Equal(t, tc.want, ret)
		})
	}
}
