// Package scripting runs the presentation cue hooks in a sandboxed
// GopherLua environment. It has no dependency on game domain packages;
// everything a hook can reach is injected via Manager collector fields.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionBudget is the maximum number of Lua opcodes allowed per
// hook invocation when the configuration does not override it.
const DefaultInstructionBudget = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's main loop calls Done() once per
// opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to
// Done().
//
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// NewSandboxedState creates a GopherLua LState with only the safe stdlib
// loaded: base, table, string, math. The globals that reach the filesystem
// or the loader are stripped.
//
// Postcondition: Returns a non-nil LState; the caller owns it and must call
// Close when done.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	return L
}

// runLimited executes fn with the instruction budget armed, so a runaway
// script halts at the budget instead of hanging the caller.
//
// Precondition: budget > 0.
func runLimited(L *lua.LState, budget int, fn func() error) error {
	ctx, cancel := newCountingContext(budget)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()
	return fn()
}
