package scripting

import lua "github.com/yuin/gopher-lua"

// registerCollectors installs the globals a hook may call back into:
//
//	cue(id)        request an audio cue
//	particle(kind) spawn a particle burst
//
// Both route through the Manager's injected funcs and are no-ops until those
// are set.
//
// Precondition: m.state must be from NewSandboxedState.
func (m *Manager) registerCollectors() {
	m.state.SetGlobal("cue", m.state.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.RequestCue != nil {
			m.RequestCue(id)
		}
		return 0
	}))

	m.state.SetGlobal("particle", m.state.NewFunction(func(L *lua.LState) int {
		kind := L.CheckString(1)
		if m.SpawnParticle != nil {
			m.SpawnParticle(kind)
		}
		return 0
	}))
}
