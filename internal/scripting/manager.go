package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook names looked up as Lua globals. A script defines any subset; missing
// hooks are silently skipped.
const (
	HookGuardDeath  = "on_guard_death"
	HookBossPhase   = "on_boss_phase"
	HookParry       = "on_parry"
	HookPlayerDeath = "on_player_death"
)

// Manager owns a single sandboxed Lua VM and dispatches combat presentation
// hooks into it. A hook that errors at runtime is logged and disabled for
// the rest of the run; a hook that exceeds the instruction budget counts as
// an error. Script failures never reach the simulation.
//
// Manager is not safe for concurrent use. The simulation loop owns it and
// calls it from the tick goroutine only.
type Manager struct {
	state    *lua.LState
	logger   *zap.Logger
	budget   int
	disabled map[string]bool

	// Injected after construction; they back the cue() and particle() Lua
	// globals. nil = no-op.
	RequestCue    func(id string)
	SpawnParticle func(kind string)
}

// NewManager creates a Manager with an empty sandboxed VM. budget is the
// per-invocation instruction limit; values <= 0 fall back to
// DefaultInstructionBudget.
//
// Postcondition: Returns a non-nil Manager; the caller must Close it.
func NewManager(logger *zap.Logger, budget int) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if budget <= 0 {
		budget = DefaultInstructionBudget
	}
	m := &Manager{
		state:    NewSandboxedState(),
		logger:   logger,
		budget:   budget,
		disabled: make(map[string]bool),
	}
	m.registerCollectors()
	return m
}

// LoadDir executes every *.lua file in dir, in lexicographic order, inside
// the sandbox. Load errors propagate: a broken script file is a content bug
// and should fail startup, unlike runtime hook errors which are swallowed.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		err := runLimited(m.state, m.budget, func() error {
			return m.state.DoFile(path)
		})
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		m.logger.Debug("script loaded", zap.String("path", path))
	}
	return nil
}

// OnGuardDeath calls on_guard_death(archetype).
func (m *Manager) OnGuardDeath(archetype string) {
	m.call(HookGuardDeath, lua.LString(archetype))
}

// OnBossPhase calls on_boss_phase(phase).
func (m *Manager) OnBossPhase(phase int) {
	m.call(HookBossPhase, lua.LNumber(phase))
}

// OnParry calls on_parry().
func (m *Manager) OnParry() {
	m.call(HookParry)
}

// OnPlayerDeath calls on_player_death(cause, subtype).
func (m *Manager) OnPlayerDeath(cause, subtype string) {
	m.call(HookPlayerDeath, lua.LString(cause), lua.LString(subtype))
}

// Close releases the Lua VM.
func (m *Manager) Close() {
	m.state.Close()
}

// call dispatches one hook by global name. Hooks that are undefined or
// already disabled are a no-op. A Lua runtime error, including budget
// exhaustion, is logged at Warn and disables the hook; it never propagates.
func (m *Manager) call(hook string, args ...lua.LValue) {
	if m.disabled[hook] {
		return
	}
	fn := m.state.GetGlobal(hook)
	if fn == lua.LNil {
		return
	}

	err := runLimited(m.state, m.budget, func() error {
		return m.state.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, args...)
	})
	if err != nil {
		m.disabled[hook] = true
		m.logger.Warn("scripting: hook failed, disabling",
			zap.String("hook", hook),
			zap.Error(err),
		)
	}
}
