package player_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/player"
	"github.com/cinderpeak/ironwatch/internal/game/world"
)

const dt = 1.0 / 60

// gymLevel has a floor, a raised platform spanning tiles x=3..6 at row 4,
// and an open drop column on the right.
const gymLevel = `
level:
  id: gym
  name: "Gym"
  rows:
    - "############"
    - "#..........#"
    - "#..........#"
    - "#..........#"
    - "#..####....#"
    - "#..........#"
    - "#..........#"
    - "############"
  player_start: { x: 2.0, y: 6.0 }
`

const (
	floorStandY    = 6.2 // standing on the floor row (top at y=7)
	platformStandY = 3.2 // standing on the platform row (top at y=4)
)

func gym(t testing.TB) *world.Level {
	t.Helper()
	l, err := world.LoadLevelFromBytes([]byte(gymLevel))
	require.NoError(t, err)
	return l
}

func newGrounded(start geom.Vec2, caps player.Capabilities) *player.Controller {
	return player.NewController(start, caps)
}

func step(c *player.Controller, lvl *world.Level, in player.Input) {
	c.Update(dt, in)
	c.Integrate(dt, lvl)
}

func stepN(c *player.Controller, lvl *world.Level, in player.Input, n int) {
	for i := 0; i < n; i++ {
		step(c, lvl, in)
	}
}

func TestNewController_Defaults(t *testing.T) {
	c := player.NewController(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	assert.Equal(t, player.StateIdle, c.State())
	assert.Equal(t, player.BaseMaxHealth, c.Health())
	assert.Equal(t, player.BaseMaxHealth, c.MaxHealth())
	assert.Equal(t, geom.FacingRight, c.Facing())
	assert.True(t, c.Alive())
	assert.Nil(t, c.Hitbox())
	assert.Equal(t, geom.Vec2{X: 2, Y: floorStandY}, c.Checkpoint())
}

func TestHeartCapability_RaisesMaxHealth(t *testing.T) {
	c := player.NewController(geom.Vec2{}, player.Capabilities{Heart: true})
	assert.Equal(t, player.BaseMaxHealth+player.HeartBonus, c.MaxHealth())
	assert.Equal(t, c.MaxHealth(), c.Health())
}

func TestIdleRunTransitions(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	step(c, lvl, player.Input{Move: 1})
	assert.Equal(t, player.StateRun, c.State())
	assert.Equal(t, geom.FacingRight, c.Facing())
	assert.True(t, c.Noisy(), "running must be noisy")

	step(c, lvl, player.Input{})
	assert.Equal(t, player.StateIdle, c.State())
	assert.False(t, c.Noisy())

	step(c, lvl, player.Input{Move: -1})
	assert.Equal(t, player.StateRun, c.State())
	assert.Equal(t, geom.FacingLeft, c.Facing())
}

func TestJump_FromGround(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	step(c, lvl, player.Input{Jump: true, JumpHeld: true})

	assert.Equal(t, player.StateJump, c.State())
	assert.Equal(t, player.JumpVelocity, c.Velocity().Y)
	assert.False(t, c.Grounded())
}

func TestWalkIntoWall_StopsAndZeroesVelocity(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 9.5, Y: floorStandY}, player.Capabilities{})

	stepN(c, lvl, player.Input{Move: 1}, 30)

	assert.InDelta(t, 11.0-player.Width, c.Position().X, 1e-9)
	assert.Equal(t, 0.0, c.Velocity().X)
}

// walkOffPlatform runs right from the platform until the controller goes
// airborne, returning it mid-fall with the coyote window freshly armed.
func walkOffPlatform(t *testing.T, lvl *world.Level) *player.Controller {
	t.Helper()
	c := newGrounded(geom.Vec2{X: 5.8, Y: platformStandY}, player.Capabilities{})
	for i := 0; i < 100; i++ {
		step(c, lvl, player.Input{Move: 1})
		if c.State() == player.StateFall {
			return c
		}
	}
	t.Fatal("controller never walked off the platform")
	return nil
}

func TestCoyoteTime_JumpWithinWindowSucceeds(t *testing.T) {
	lvl := gym(t)
	c := walkOffPlatform(t, lvl)

	// 4 airborne ticks plus the press tick stay inside the 0.10s window.
	stepN(c, lvl, player.Input{}, 4)
	step(c, lvl, player.Input{Jump: true, JumpHeld: true})

	assert.Equal(t, player.StateJump, c.State())
	assert.Equal(t, player.JumpVelocity, c.Velocity().Y)
}

func TestCoyoteTime_JumpAfterWindowFails(t *testing.T) {
	lvl := gym(t)
	c := walkOffPlatform(t, lvl)

	stepN(c, lvl, player.Input{}, 8)
	c.Update(dt, player.Input{Jump: true, JumpHeld: true})

	assert.NotEqual(t, player.StateJump, c.State())
}

// dropTicks counts the steps a fresh controller dropped from start takes to
// reach the ground.
func dropTicks(t *testing.T, lvl *world.Level, start geom.Vec2) int {
	t.Helper()
	c := player.NewController(start, player.Capabilities{})
	for i := 1; i <= 300; i++ {
		step(c, lvl, player.Input{})
		if i > 1 && c.Grounded() {
			return i
		}
	}
	t.Fatal("controller never landed")
	return 0
}

func TestJumpBuffer_PressShortlyBeforeLandingFiresOnTouchdown(t *testing.T) {
	lvl := gym(t)
	start := geom.Vec2{X: 8.0, Y: 2.0}
	land := dropTicks(t, lvl, start)

	c := player.NewController(start, player.Capabilities{})
	for i := 1; i <= land; i++ {
		in := player.Input{}
		if i == land-4 { // 4 ticks early: inside the 0.12s buffer
			in.Jump = true
			in.JumpHeld = true
		}
		step(c, lvl, in)
	}

	assert.Equal(t, player.StateJump, c.State())
	assert.Equal(t, player.JumpVelocity, c.Velocity().Y)
}

func TestJumpBuffer_PressTooEarlyDoesNotFire(t *testing.T) {
	lvl := gym(t)
	start := geom.Vec2{X: 8.0, Y: 2.0}
	land := dropTicks(t, lvl, start)

	c := player.NewController(start, player.Capabilities{})
	for i := 1; i <= land; i++ {
		in := player.Input{}
		if i == land-10 { // 10 ticks early: outside the 0.12s buffer
			in.Jump = true
			in.JumpHeld = true
		}
		step(c, lvl, in)
	}

	assert.Equal(t, player.StateIdle, c.State())
	assert.True(t, c.Grounded())
}

func TestJumpCut_AppliesExactlyOnce(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	step(c, lvl, player.Input{Jump: true, JumpHeld: true})
	require.Equal(t, player.StateJump, c.State())

	// Release while ascending: gravity applies first, then the cut.
	c.Update(dt, player.Input{})
	wantCut := (player.JumpVelocity + player.Gravity*dt) * player.JumpCutFactor
	assert.InDelta(t, wantCut, c.Velocity().Y, 1e-9)
	c.Integrate(dt, lvl)

	// Press and release again while still ascending: no second cut.
	step(c, lvl, player.Input{JumpHeld: true})
	beforeRelease := c.Velocity().Y
	require.Negative(t, beforeRelease)
	c.Update(dt, player.Input{})
	assert.InDelta(t, beforeRelease+player.Gravity*dt, c.Velocity().Y, 1e-9)
	c.Integrate(dt, lvl)
}

func TestJumpCut_ReleaseInFallDoesNotApply(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	step(c, lvl, player.Input{Jump: true, JumpHeld: true})
	for c.State() == player.StateJump {
		step(c, lvl, player.Input{JumpHeld: true})
	}
	require.Equal(t, player.StateFall, c.State())

	before := c.Velocity().Y
	c.Update(dt, player.Input{})
	assert.InDelta(t, before+player.Gravity*dt, c.Velocity().Y, 1e-9,
		"a release after the apex must only see gravity")
}

func TestTakeDamage_BlockNegation(t *testing.T) {
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})
	require.True(t, c.Block())

	lethal := c.TakeDamage(1, false)
	assert.False(t, lethal)
	assert.Equal(t, player.BaseMaxHealth, c.Health(), "blocked damage must not apply")
	assert.True(t, c.Blocking())

	lethal = c.TakeDamage(1, true)
	assert.False(t, lethal)
	assert.Equal(t, player.BaseMaxHealth-1, c.Health(), "bypassing damage must apply")
	assert.False(t, c.Blocking(), "a bypassing hit clears the block")
	assert.Equal(t, player.StateHurt, c.State())
}

func TestTakeDamage_InvulnerabilityWindow(t *testing.T) {
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	assert.False(t, c.TakeDamage(2, false))
	assert.Equal(t, player.BaseMaxHealth-2, c.Health())
	assert.True(t, c.Invulnerable())

	assert.False(t, c.TakeDamage(2, false))
	assert.Equal(t, player.BaseMaxHealth-2, c.Health(), "hits inside the invulnerability window are ignored")
}

func TestTakeDamage_LethalFloorsHealthAndStopsFurtherDamage(t *testing.T) {
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	lethal := c.TakeDamage(player.BaseMaxHealth+5, false)
	assert.True(t, lethal)
	assert.Equal(t, 0.0, c.Health())
	assert.Equal(t, player.StateDying, c.State())
	assert.False(t, c.Alive())

	assert.False(t, c.TakeDamage(1, true))
	assert.Equal(t, 0.0, c.Health(), "no damage once dying")
}

func TestArmorCapability_HalvesDamage(t *testing.T) {
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{Armor: true})
	c.TakeDamage(4, false)
	assert.Equal(t, player.BaseMaxHealth-2, c.Health())
}

func TestDyingRunsToDeadThenRespawns(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})
	c.SetCheckpoint(geom.Vec2{X: 8, Y: floorStandY})

	require.True(t, c.TakeDamage(99, false))
	ticks := int(player.DyingDuration/dt) + 2
	stepN(c, lvl, player.Input{}, ticks)
	assert.Equal(t, player.StateDead, c.State())

	c.Respawn()
	assert.Equal(t, player.StateIdle, c.State())
	assert.Equal(t, c.MaxHealth(), c.Health())
	assert.Equal(t, geom.Vec2{X: 8, Y: floorStandY}, c.Position())
	assert.True(t, c.Alive())
}

func TestAttack_HitboxLiveOnlyInsideWindow(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	require.True(t, c.Attack())
	assert.Nil(t, c.Hitbox(), "hitbox must be nil immediately on entering the attack")

	// Advance into the active window.
	for c.Hitbox() == nil && c.State() == player.StateAttack {
		step(c, lvl, player.Input{})
	}
	require.Equal(t, player.StateAttack, c.State())
	h := c.Hitbox()
	require.NotNil(t, h)
	assert.Equal(t, player.UnarmedDamage, h.Damage)
	assert.False(t, h.BypassesBlock)
	assert.Equal(t, player.UnarmedHitboxWidth, h.Box.W)
	assert.Greater(t, h.Box.X, c.Position().X, "hitbox extends in front when facing right")

	// Run the attack out: the hitbox must be gone before the state ends.
	for c.State() == player.StateAttack {
		step(c, lvl, player.Input{})
	}
	assert.Equal(t, player.StateCombatIdle, c.State())
	assert.Nil(t, c.Hitbox(), "hitbox must be nil immediately on leaving the attack")
}

func TestAttack_WeaponModeChangesShapeAndDamage(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{Weapon: true})

	require.True(t, c.Attack())
	assert.True(t, c.Noisy(), "a weapon swing is noisy")
	for c.Hitbox() == nil {
		step(c, lvl, player.Input{})
	}
	h := c.Hitbox()
	require.NotNil(t, h)
	assert.Equal(t, player.WeaponDamage, h.Damage)
	assert.Equal(t, player.WeaponHitboxWidth, h.Box.W)
	assert.Equal(t, player.WeaponHitboxHeight, h.Box.H)
}

func TestAttack_SwingNumbersAdvancePerAttack(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	require.True(t, c.Attack())
	for c.Hitbox() == nil {
		step(c, lvl, player.Input{})
	}
	first := c.Hitbox().Swing

	for c.State() == player.StateAttack {
		step(c, lvl, player.Input{})
	}
	require.True(t, c.Attack())
	for c.Hitbox() == nil {
		step(c, lvl, player.Input{})
	}
	assert.Equal(t, first+1, c.Hitbox().Swing)
}

func TestActions_IllegalOutsideCanActGate(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{Boots: true})

	// Airborne: attack and block are grounded-only actions.
	step(c, lvl, player.Input{Jump: true, JumpHeld: true})
	assert.False(t, c.Attack())
	assert.False(t, c.Block())

	// Land again, then verify mutual exclusion from the attack state.
	for !c.Grounded() {
		step(c, lvl, player.Input{})
	}
	require.True(t, c.Attack())
	assert.False(t, c.Block())
	assert.False(t, c.Dash())

	// Hurt gates everything.
	c2 := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{Boots: true})
	c2.TakeDamage(1, false)
	require.Equal(t, player.StateHurt, c2.State())
	assert.False(t, c2.Attack())
	assert.False(t, c2.Block())
	assert.False(t, c2.Dash())
}

func TestDash_GatingAndCooldown(t *testing.T) {
	lvl := gym(t)

	noBoots := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})
	assert.False(t, noBoots.Dash(), "dash requires the boots capability")

	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{Boots: true})
	require.True(t, c.Dash())
	assert.True(t, c.Dashing())
	assert.True(t, c.Invulnerable(), "dashing grants brief invulnerability")
	assert.False(t, c.Dash(), "dashing blocks further actions")
	assert.False(t, c.Attack(), "dashing blocks attack transitions")

	// A hit during the dash must be ignored.
	assert.False(t, c.TakeDamage(3, true))
	assert.Equal(t, player.BaseMaxHealth, c.Health())

	// Run the dash out, then sit through the cooldown.
	dashTicks := player.DashDuration / dt
	ticks := int(dashTicks) + 2
	stepN(c, lvl, player.Input{}, ticks)
	assert.False(t, c.Dashing())
	assert.False(t, c.Dash(), "reuse is gated by the cooldown")

	stepN(c, lvl, player.Input{}, int(player.DashCooldown/dt)+2)
	assert.True(t, c.Dash())
}

func TestTransition_ResetsActionLocalFields(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	require.True(t, c.Attack())
	for c.Hitbox() == nil {
		step(c, lvl, player.Input{})
	}
	require.NotNil(t, c.Hitbox())

	// An incoming hit aborts the attack mid-window.
	c.TakeDamage(1, false)
	assert.Equal(t, player.StateHurt, c.State())
	assert.Nil(t, c.Hitbox(), "transition must clear the hitbox")
	assert.False(t, c.Blocking())
}

func TestCombatIdle_DecaysToIdle(t *testing.T) {
	lvl := gym(t)
	c := newGrounded(geom.Vec2{X: 2, Y: floorStandY}, player.Capabilities{})

	require.True(t, c.Attack())
	for c.State() == player.StateAttack {
		step(c, lvl, player.Input{})
	}
	require.Equal(t, player.StateCombatIdle, c.State())

	stepN(c, lvl, player.Input{}, int(player.CombatIdleDecay/dt)+2)
	assert.Equal(t, player.StateIdle, c.State())
}

// Property: under arbitrary input and damage sequences the controller keeps
// its core invariants: health stays in range, the hitbox exists only inside
// an attack, and the body never ends a tick inside a solid tile.
func TestController_Property_InvariantsUnderRandomInput(t *testing.T) {
	lvl := gym(t)
	rapid.Check(t, func(rt *rapid.T) {
		caps := player.Capabilities{
			Weapon: rapid.Bool().Draw(rt, "weapon"),
			Armor:  rapid.Bool().Draw(rt, "armor"),
			Boots:  rapid.Bool().Draw(rt, "boots"),
			Heart:  rapid.Bool().Draw(rt, "heart"),
		}
		c := player.NewController(geom.Vec2{X: 2, Y: floorStandY}, caps)

		steps := rapid.IntRange(1, 200).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			in := player.Input{
				Move:   float64(rapid.IntRange(-1, 1).Draw(rt, "move")),
				Jump:   rapid.Bool().Draw(rt, "jump"),
				Attack: rapid.Bool().Draw(rt, "attack"),
				Block:  rapid.Bool().Draw(rt, "block"),
				Dash:   rapid.Bool().Draw(rt, "dash"),
			}
			in.JumpHeld = in.Jump || rapid.Bool().Draw(rt, "held")
			step(c, lvl, in)

			if rapid.IntRange(0, 9).Draw(rt, "hit") == 0 {
				c.TakeDamage(float64(rapid.IntRange(1, 6).Draw(rt, "dmg")),
					rapid.Bool().Draw(rt, "bypass"))
			}

			assert.GreaterOrEqual(rt, c.Health(), 0.0)
			assert.LessOrEqual(rt, c.Health(), c.MaxHealth())
			if c.Hitbox() != nil {
				assert.Equal(rt, player.StateAttack, c.State())
			}
			if !c.Alive() {
				assert.Nil(rt, c.Hitbox())
			}
			box := c.Bounds()
			for ty := -1; ty <= lvl.Height; ty++ {
				for tx := -1; tx <= lvl.Width; tx++ {
					if lvl.IsSolidAt(tx, ty) {
						assert.False(rt, box.Intersects(lvl.TileBox(tx, ty)),
							"body inside solid tile (%d,%d) at step %d", tx, ty, i)
					}
				}
			}
		}
	})
}
