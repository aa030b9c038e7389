package arena_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderpeak/ironwatch/internal/game/arena"
	"github.com/cinderpeak/ironwatch/internal/game/player"
	"github.com/cinderpeak/ironwatch/internal/game/rng"
)

var idleInput = arena.InputFunc(func(uint64) player.Input { return player.Input{} })

func meetArena(t *testing.T) *arena.Arena {
	t.Helper()
	return arena.New(arena.Config{
		Level:    loadLevel(t, meetYAML),
		Registry: testRegistry(t),
		Source:   rng.NewSeeded(1),
	})
}

func TestNewLoop_Preconditions(t *testing.T) {
	a := meetArena(t)

	assert.PanicsWithValue(t, "arena.NewLoop: precondition violated: arena must be non-nil", func() {
		arena.NewLoop(arena.LoopConfig{Input: idleInput, Rate: time.Second / 60})
	})
	assert.PanicsWithValue(t, "arena.NewLoop: precondition violated: input source must be non-nil", func() {
		arena.NewLoop(arena.LoopConfig{Arena: a, Rate: time.Second / 60})
	})
	assert.PanicsWithValue(t, "arena.NewLoop: precondition violated: rate must be positive", func() {
		arena.NewLoop(arena.LoopConfig{Arena: a, Input: idleInput})
	})
}

func TestRunHeadless_StopsWhenCleared(t *testing.T) {
	a := meetArena(t)
	a.Guards()[0].ApplyDamage(999)

	loop := arena.NewLoop(arena.LoopConfig{Arena: a, Input: idleInput, Rate: time.Second / 60})
	loop.RunHeadless(context.Background(), 600)

	assert.True(t, a.Cleared())
	assert.Less(t, a.TickCount(), uint64(60),
		"the loop stops as soon as the last guard is removed")
}

func TestRunHeadless_HonorsTickBudget(t *testing.T) {
	a := meetArena(t)
	loop := arena.NewLoop(arena.LoopConfig{Arena: a, Input: idleInput, Rate: time.Second / 60})

	loop.RunHeadless(context.Background(), 25)

	assert.Equal(t, uint64(25), a.TickCount())
}

func TestRunHeadless_PanicLosesOneTickOnly(t *testing.T) {
	a := meetArena(t)
	poisoned := false
	in := arena.InputFunc(func(tick uint64) player.Input {
		if tick == 5 && !poisoned {
			poisoned = true
			panic("scripted input failure")
		}
		return player.Input{}
	})
	loop := arena.NewLoop(arena.LoopConfig{Arena: a, Input: in, Rate: time.Second / 60})

	loop.RunHeadless(context.Background(), 20)

	assert.True(t, poisoned)
	assert.Equal(t, uint64(19), a.TickCount(),
		"the poisoned step is lost, every later step still runs")
}

func TestRunHeadless_OnTickObservesEverySnapshot(t *testing.T) {
	a := meetArena(t)
	var views []arena.View
	loop := arena.NewLoop(arena.LoopConfig{
		Arena:  a,
		Input:  idleInput,
		Rate:   time.Second / 60,
		OnTick: func(v arena.View) { views = append(views, v) },
	})

	loop.RunHeadless(context.Background(), 10)

	require.Len(t, views, 10)
	assert.Equal(t, uint64(1), views[0].Tick)
	assert.Equal(t, uint64(10), views[9].Tick)
	require.Len(t, views[9].Guards, 1)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	a := meetArena(t)
	loop := arena.NewLoop(arena.LoopConfig{Arena: a, Input: idleInput, Rate: 2 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	require.NoError(t, loop.Run(ctx))
	assert.GreaterOrEqual(t, a.TickCount(), uint64(1))
}
