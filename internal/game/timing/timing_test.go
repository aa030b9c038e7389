package timing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cinderpeak/ironwatch/internal/game/timing"
)

func TestStateTimer_AdvanceAccumulates(t *testing.T) {
	var st timing.StateTimer
	st.Advance(0.5)
	st.Advance(0.25)
	assert.InDelta(t, 0.75, st.Elapsed(), 1e-9)
	assert.True(t, st.Reached(0.75))
	assert.False(t, st.Reached(0.76))
}

func TestStateTimer_Reset(t *testing.T) {
	var st timing.StateTimer
	st.Advance(2)
	st.Reset()
	assert.Zero(t, st.Elapsed())
}

func TestStateTimer_PanicsOnNegativeDelta(t *testing.T) {
	var st timing.StateTimer
	assert.Panics(t, func() { st.Advance(-0.01) })
}

func TestCooldownSet_ReadyWhenNeverSet(t *testing.T) {
	c := timing.NewCooldownSet()
	assert.True(t, c.Ready("dash"))
	assert.Zero(t, c.Remaining("dash"))
}

func TestCooldownSet_SetAndExpire(t *testing.T) {
	c := timing.NewCooldownSet()
	c.Set("dash", 1.0)
	assert.False(t, c.Ready("dash"))

	c.Advance(0.5)
	assert.False(t, c.Ready("dash"))
	assert.InDelta(t, 0.5, c.Remaining("dash"), 1e-9)

	c.Advance(0.5)
	assert.True(t, c.Ready("dash"))
	assert.Zero(t, c.Remaining("dash"))
}

func TestCooldownSet_SetZeroClears(t *testing.T) {
	c := timing.NewCooldownSet()
	c.Set("invuln", 2.0)
	c.Set("invuln", 0)
	assert.True(t, c.Ready("invuln"))
}

func TestCooldownSet_Clear(t *testing.T) {
	c := timing.NewCooldownSet()
	c.Set("reaction", 3.0)
	c.Clear("reaction")
	assert.True(t, c.Ready("reaction"))
}

func TestCooldownSet_IndependentCooldowns(t *testing.T) {
	c := timing.NewCooldownSet()
	c.Set("dash", 1.0)
	c.Set("invuln", 0.2)

	c.Advance(0.3)
	assert.True(t, c.Ready("invuln"))
	assert.False(t, c.Ready("dash"))
}

func TestCooldownSet_PanicsOnNegative(t *testing.T) {
	c := timing.NewCooldownSet()
	assert.Panics(t, func() { c.Set("dash", -1) })
	assert.Panics(t, func() { c.Advance(-0.1) })
}

// TestCooldownSet_Property_AdvanceNeverRevives verifies that once a cooldown
// reads ready it stays ready until Set is called again.
func TestCooldownSet_Property_AdvanceNeverRevives(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := timing.NewCooldownSet()
		d := rapid.Float64Range(0.01, 5).Draw(rt, "duration")
		c.Set("cd", d)

		steps := rapid.SliceOfN(rapid.Float64Range(0, 1), 1, 20).Draw(rt, "steps")
		wasReady := false
		for _, dt := range steps {
			c.Advance(dt)
			if wasReady {
				assert.True(rt, c.Ready("cd"), "expired cooldown must stay expired")
			}
			if c.Ready("cd") {
				wasReady = true
			}
		}
	})
}

// TestCooldownSet_Property_RemainingMatchesAdvances verifies the remaining
// time equals the set duration minus total advanced time while active.
func TestCooldownSet_Property_RemainingMatchesAdvances(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := timing.NewCooldownSet()
		d := rapid.Float64Range(1, 10).Draw(rt, "duration")
		c.Set("cd", d)

		total := 0.0
		steps := rapid.SliceOfN(rapid.Float64Range(0, 0.5), 1, 10).Draw(rt, "steps")
		for _, dt := range steps {
			c.Advance(dt)
			total += dt
		}
		if total < d {
			assert.InDelta(rt, d-total, c.Remaining("cd"), 1e-9)
		} else {
			assert.True(rt, c.Ready("cd"))
		}
	})
}
