package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// globalThemeKey is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no theme VM is found.
const globalThemeKey = "__global__"

// DescribeHook is the Lua global a theme script defines to override room
// descriptions. It receives a table with kind, width, height, seed, and base
// fields and returns the replacement description, or nil/"" to keep the base.
const DescribeHook = "describe_room"

// RoomContext is the snapshot of a room handed to description hooks.
type RoomContext struct {
	Kind   string
	Width  int
	Height int
	Seed   int64
	Base   string
}

// Manager owns one sandboxed LState per theme and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all LoadTheme calls complete.
// Each theme's LState is single-threaded; the mutex serializes concurrent
// calls into the VMs.
type Manager struct {
	mu      sync.Mutex
	states  map[string]*lua.LState
	cancels map[string]context.CancelFunc
	limits  map[string]int
	logger  *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with an empty theme map.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{
		states:  make(map[string]*lua.LState),
		cancels: make(map[string]context.CancelFunc),
		limits:  make(map[string]int),
		logger:  logger,
	}
}

// LoadTheme creates a sandboxed VM for themeName, registers the engine.*
// modules, then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: themeName must be non-empty; scriptDir must be a readable directory.
// Postcondition: Theme VM is registered; returns error on Lua load failure.
func (m *Manager) LoadTheme(themeName, scriptDir string, instLimit int) error {
	return m.loadInto(themeName, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared scripts accessible as a
// CallHook fallback from any theme.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalThemeKey, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	limit := normalizeLimit(instLimit)
	L, cancel := NewSandboxedState(limit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		// Fresh budget per file, so one long script cannot starve the next.
		cancel = armInstructionBudget(L, limit, cancel)
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		if oldCancel := m.cancels[key]; oldCancel != nil {
			oldCancel()
		}
		old.Close()
	}
	m.states[key] = L
	m.cancels[key] = cancel
	m.limits[key] = limit
	m.mu.Unlock()
	return nil
}

// Close releases every theme VM. The Manager stays usable; CallHook returns
// LNil for every theme afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, L := range m.states {
		if cancel := m.cancels[key]; cancel != nil {
			cancel()
		}
		L.Close()
		delete(m.states, key)
		delete(m.cancels, key)
		delete(m.limits, key)
	}
}

// vmLocked resolves themeName to a VM, falling back to the __global__ VM.
// Returns the key the VM is registered under so callers can update its budget.
//
// Precondition: m.mu must be held.
func (m *Manager) vmLocked(themeName string) (string, *lua.LState) {
	if L, ok := m.states[themeName]; ok {
		return themeName, L
	}
	if L, ok := m.states[globalThemeKey]; ok {
		return globalThemeKey, L
	}
	return "", nil
}

// CallHook calls the named Lua global function in themeName's VM. If the theme
// has no VM, the __global__ VM is tried as a fallback. Returns (LNil, nil) if
// the hook is not defined or no VM exists. Lua runtime errors are logged at
// Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(themeName, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, L := m.vmLocked(themeName)
	if L == nil {
		m.logger.Debug("scripting: no VM for theme",
			zap.String("theme", themeName),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	m.cancels[key] = armInstructionBudget(L, m.limits[key], m.cancels[key])
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("theme", themeName),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// DescribeRoom asks themeName's describe_room hook for a replacement
// description. Returns (override, true) when the hook produced a non-empty
// string, (ctx.Base, false) otherwise.
func (m *Manager) DescribeRoom(themeName string, ctx RoomContext) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, L := m.vmLocked(themeName)
	if L == nil {
		return ctx.Base, false
	}

	fn := L.GetGlobal(DescribeHook)
	if fn == lua.LNil {
		return ctx.Base, false
	}

	tbl := L.NewTable()
	tbl.RawSetString("kind", lua.LString(ctx.Kind))
	tbl.RawSetString("width", lua.LNumber(ctx.Width))
	tbl.RawSetString("height", lua.LNumber(ctx.Height))
	tbl.RawSetString("seed", lua.LNumber(ctx.Seed))
	tbl.RawSetString("base", lua.LString(ctx.Base))

	m.cancels[key] = armInstructionBudget(L, m.limits[key], m.cancels[key])
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, tbl); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("theme", themeName),
			zap.String("hook", DescribeHook),
			zap.Error(err),
		)
		return ctx.Base, false
	}
	ret := L.Get(-1)
	L.Pop(1)
	if s, ok := ret.(lua.LString); ok && string(s) != "" {
		return string(s), true
	}
	return ctx.Base, false
}
