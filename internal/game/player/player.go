// Package player implements the avatar state machine: grounded and airborne
// movement with the coyote-time and jump-buffer grace windows, the
// attack/block/dash actions behind a single canAct gate, and hurt/death
// sequencing.
package player

import (
	"math"

	"github.com/cinderpeak/ironwatch/internal/game/combat"
	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/timing"
	"github.com/cinderpeak/ironwatch/internal/game/world"
)

// State identifies the controller's current mode. Exactly one state is
// active at any time; the dashing flag is orthogonal to it.
type State string

const (
	StateIdle       State = "idle"
	StateRun        State = "run"
	StateJump       State = "jump"
	StateFall       State = "fall"
	StateCombatIdle State = "combat_idle"
	StateAttack     State = "attack"
	StateBlock      State = "block"
	StateHurt       State = "hurt"
	StateDying      State = "dying"
	StateDead       State = "dead"
)

// Capabilities are the inventory-gated ability flags.
type Capabilities struct {
	// Weapon switches attacks from unarmed strikes to weapon swings.
	Weapon bool
	// Armor halves incoming damage.
	Armor bool
	// Boots unlock the dash.
	Boots bool
	// Heart raises maximum health.
	Heart bool
}

// Input is one tick's sampled control state.
type Input struct {
	// Move is the horizontal axis in [-1, 1].
	Move float64
	// Jump is true on the tick the jump control was pressed.
	Jump bool
	// JumpHeld is true while the jump control stays down.
	JumpHeld bool
	// Attack, Block and Dash are true on the tick each control was pressed.
	Attack bool
	Block  bool
	Dash   bool
}

// Named cooldown keys.
const (
	cdCoyote     = "coyote"
	cdJumpBuffer = "jump_buffer"
	cdInvuln     = "invuln"
	cdDash       = "dash"
	cdDashActive = "dash_active"
)

// Controller is the player avatar. It is owned by the simulation tick and
// is not safe for concurrent use.
//
// Invariant: the active hitbox and the block flag derive from the current
// state, so every transition clears them atomically.
type Controller struct {
	pos    geom.Vec2
	vel    geom.Vec2
	facing geom.Facing

	health    float64
	maxHealth float64
	caps      Capabilities

	state     State
	timer     timing.StateTimer
	cooldowns *timing.CooldownSet

	dashing      bool
	grounded     bool
	jumpCutDone  bool
	prevJumpHeld bool
	noisy        bool

	swing      uint64
	checkpoint geom.Vec2
}

// NewController creates the avatar at start with the given capability flags.
// The controller is created once per session and repositioned on respawn,
// never recreated.
func NewController(start geom.Vec2, caps Capabilities) *Controller {
	maxHealth := float64(BaseMaxHealth)
	if caps.Heart {
		maxHealth += HeartBonus
	}
	return &Controller{
		pos:        start,
		facing:     geom.FacingRight,
		health:     maxHealth,
		maxHealth:  maxHealth,
		caps:       caps,
		state:      StateIdle,
		cooldowns:  timing.NewCooldownSet(),
		grounded:   true,
		checkpoint: start,
	}
}

// Update advances timers and applies one tick of input to the state machine.
// World collision runs afterwards in Integrate, per the tick pipeline.
//
// Precondition: dt >= 0 and already clamped by the caller.
func (c *Controller) Update(dt float64, in Input) {
	c.timer.Advance(dt)
	c.cooldowns.Advance(dt)
	c.noisy = false

	releasedJump := c.prevJumpHeld && !in.JumpHeld
	c.prevJumpHeld = in.JumpHeld

	switch c.state {
	case StateDead:
		c.vel = geom.Vec2{}
		return
	case StateDying:
		c.vel.X = 0
		c.applyGravity(dt)
		if c.timer.Reached(DyingDuration) {
			c.transitionTo(StateDead)
		}
		return
	}

	if c.dashing {
		c.updateDash()
		return
	}

	if in.Attack {
		c.Attack()
	}
	if in.Block {
		c.Block()
	}
	if in.Dash && c.Dash() {
		return
	}

	c.updateMovement(dt, in, releasedJump)
	c.updateState(in)
}

// updateDash holds dash velocity until the active window expires, then
// starts the reuse cooldown.
func (c *Controller) updateDash() {
	if c.cooldowns.Ready(cdDashActive) {
		c.dashing = false
		c.vel.X = 0
		c.cooldowns.Set(cdDash, DashCooldown)
		return
	}
	c.vel.X = c.facing.Sign() * DashSpeed
	c.vel.Y = 0
	c.noisy = true
}

func (c *Controller) updateMovement(dt float64, in Input, releasedJump bool) {
	switch c.state {
	case StateAttack, StateBlock, StateHurt:
		c.vel.X = 0
	default:
		c.vel.X = in.Move * MoveSpeed
		if in.Move < 0 {
			c.facing = geom.FacingLeft
		} else if in.Move > 0 {
			c.facing = geom.FacingRight
		}
		if c.grounded && in.Move != 0 {
			c.noisy = true
		}
	}

	c.applyGravity(dt)

	// Variable jump height: the cut applies at most once, and only while
	// still ascending in the jump state.
	if releasedJump && c.state == StateJump && c.vel.Y < 0 && !c.jumpCutDone {
		c.vel.Y *= JumpCutFactor
		c.jumpCutDone = true
	}

	if in.Jump {
		c.tryJump()
	}
}

func (c *Controller) updateState(in Input) {
	switch c.state {
	case StateIdle:
		if c.grounded && in.Move != 0 {
			c.transitionTo(StateRun)
		}
	case StateRun:
		if in.Move == 0 {
			c.transitionTo(StateIdle)
		}
	case StateCombatIdle:
		if in.Move != 0 {
			c.transitionTo(StateRun)
		} else if c.timer.Reached(CombatIdleDecay) {
			c.transitionTo(StateIdle)
		}
	case StateJump:
		if c.vel.Y >= 0 {
			c.transitionTo(StateFall)
		}
	case StateAttack:
		if c.timer.Reached(c.attackDuration()) {
			c.transitionTo(StateCombatIdle)
		}
	case StateBlock:
		if c.timer.Reached(BlockDuration) {
			c.transitionTo(StateCombatIdle)
		}
	case StateHurt:
		if c.timer.Reached(HurtDuration) {
			if c.grounded {
				c.transitionTo(StateCombatIdle)
			} else {
				c.transitionTo(StateFall)
			}
		}
	}
}

func (c *Controller) applyGravity(dt float64) {
	if c.grounded {
		return
	}
	c.vel.Y = math.Min(c.vel.Y+Gravity*dt, MaxFallSpeed)
}

// tryJump starts a jump when grounded or within the coyote window; an
// illegal airborne press arms the jump buffer instead.
func (c *Controller) tryJump() {
	if !c.canAct() {
		return
	}
	if c.grounded || !c.cooldowns.Ready(cdCoyote) {
		c.beginJump()
		return
	}
	c.cooldowns.Set(cdJumpBuffer, JumpBufferTime)
}

func (c *Controller) beginJump() {
	c.vel.Y = JumpVelocity
	c.grounded = false
	c.jumpCutDone = false
	c.cooldowns.Clear(cdCoyote)
	c.cooldowns.Clear(cdJumpBuffer)
	c.transitionTo(StateJump)
}

// Integrate moves the controller through the world and reacts to contacts:
// wall stops, landings (honoring a buffered jump the instant landing
// completes), and walking off a ledge (arming the coyote window).
//
// Precondition: lvl must not be nil.
func (c *Controller) Integrate(dt float64, lvl *world.Level) {
	wasGrounded := c.grounded

	contact := lvl.ResolveMove(c.Bounds(), c.vel.Scale(dt))
	c.pos = contact.Position

	if contact.HitWall {
		c.vel.X = 0
	}
	if contact.HitCeiling && c.vel.Y < 0 {
		c.vel.Y = 0
	}

	c.grounded = contact.OnGround || lvl.Grounded(c.Bounds())
	if c.grounded && c.vel.Y > 0 {
		c.vel.Y = 0
	}

	if c.grounded && !wasGrounded {
		switch c.state {
		case StateJump, StateFall:
			c.noisy = true
			c.transitionTo(StateIdle)
			if !c.cooldowns.Ready(cdJumpBuffer) {
				c.beginJump()
			}
		}
		return
	}

	if wasGrounded && !c.grounded && c.state != StateJump {
		c.cooldowns.Set(cdCoyote, CoyoteTime)
		switch c.state {
		case StateIdle, StateRun, StateCombatIdle:
			c.transitionTo(StateFall)
		}
	}
}

// Attack starts a swing. It reports whether the attempt was legal; illegal
// attempts never raise.
func (c *Controller) Attack() bool {
	if !c.canAct() || !c.grounded {
		return false
	}
	c.swing++
	if c.caps.Weapon {
		c.noisy = true
	}
	c.transitionTo(StateAttack)
	return true
}

// Block raises the guard, granting immunity to non-bypassing damage for a
// fixed window.
func (c *Controller) Block() bool {
	if !c.canAct() || !c.grounded {
		return false
	}
	c.transitionTo(StateBlock)
	return true
}

// Dash starts a dash when the boots capability is unlocked and the reuse
// cooldown has expired. The dash carries brief invulnerability and blocks
// all other action transitions while active.
func (c *Controller) Dash() bool {
	if !c.canAct() || !c.caps.Boots || !c.cooldowns.Ready(cdDash) {
		return false
	}
	c.dashing = true
	c.cooldowns.Set(cdDashActive, DashDuration)
	c.vel.X = c.facing.Sign() * DashSpeed
	c.vel.Y = 0
	c.noisy = true
	return true
}

// canAct reports whether a new action may start. Attack, block, dash, hurt
// and the death states are mutually exclusive through this gate.
func (c *Controller) canAct() bool {
	switch c.state {
	case StateAttack, StateBlock, StateHurt, StateDying, StateDead:
		return false
	}
	return !c.dashing
}

// TakeDamage applies a hit and reports whether it was lethal so the caller
// can classify the cause of death.
//
// Postcondition: health never drops below zero, and no damage applies once
// the controller is dying or dead.
func (c *Controller) TakeDamage(amount float64, ignoresBlock bool) bool {
	if c.state == StateDying || c.state == StateDead {
		return false
	}
	if c.Invulnerable() {
		return false
	}
	if c.state == StateBlock && !ignoresBlock {
		return false
	}

	if c.caps.Armor {
		amount *= ArmorDamageFactor
	}
	c.health -= amount
	c.cooldowns.Set(cdInvuln, HitInvulnTime)

	if c.health <= 0 {
		c.health = 0
		c.transitionTo(StateDying)
		return true
	}
	c.transitionTo(StateHurt)
	return false
}

// Kill applies lethal damage regardless of blocking or invulnerability.
// Environment deaths (pits, hazards) come through here; combat deaths go
// through TakeDamage.
func (c *Controller) Kill() {
	if c.state == StateDying || c.state == StateDead {
		return
	}
	c.health = 0
	c.dashing = false
	c.transitionTo(StateDying)
}

// Invulnerable reports whether incoming damage is currently ignored.
func (c *Controller) Invulnerable() bool {
	return c.dashing || !c.cooldowns.Ready(cdInvuln)
}

// Respawn repositions the controller at its checkpoint at full health. The
// session's controller instance is reused, never replaced.
func (c *Controller) Respawn() {
	c.pos = c.checkpoint
	c.vel = geom.Vec2{}
	c.health = c.maxHealth
	c.dashing = false
	c.grounded = false
	c.jumpCutDone = false
	c.noisy = false
	c.cooldowns = timing.NewCooldownSet()
	c.transitionTo(StateIdle)
}

// transitionTo switches state and resets the state timer. The hitbox and
// block flag derive from state, so they clear with the switch.
func (c *Controller) transitionTo(s State) {
	c.state = s
	c.timer.Reset()
}

// Hitbox returns the live attack volume, or nil outside the active window
// of an attack. The volume tracks position and facing.
func (c *Controller) Hitbox() *combat.Hitbox {
	if c.state != StateAttack {
		return nil
	}
	start, end := c.attackWindow()
	elapsed := c.timer.Elapsed()
	if elapsed < start || elapsed >= end {
		return nil
	}
	return &combat.Hitbox{
		Box:    c.attackBox(),
		Damage: c.attackDamage(),
		Swing:  c.swing,
	}
}

func (c *Controller) attackDuration() float64 {
	if c.caps.Weapon {
		return WeaponAttackDuration
	}
	return UnarmedAttackDuration
}

func (c *Controller) attackWindow() (start, end float64) {
	if c.caps.Weapon {
		return WeaponWindowStart, WeaponWindowEnd
	}
	return UnarmedWindowStart, UnarmedWindowEnd
}

func (c *Controller) attackDamage() float64 {
	if c.caps.Weapon {
		return WeaponDamage
	}
	return UnarmedDamage
}

func (c *Controller) attackBox() geom.AABB {
	w, h := UnarmedHitboxWidth, UnarmedHitboxHeight
	if c.caps.Weapon {
		w, h = WeaponHitboxWidth, WeaponHitboxHeight
	}
	x := c.pos.X + Width
	if c.facing == geom.FacingLeft {
		x = c.pos.X - w
	}
	return geom.AABB{X: x, Y: c.pos.Y + (Height-h)/2, W: w, H: h}
}

// Position returns the min corner in world units.
func (c *Controller) Position() geom.Vec2 { return c.pos }

// Velocity returns the current velocity in world units per second.
func (c *Controller) Velocity() geom.Vec2 { return c.vel }

// Bounds returns the collision box.
func (c *Controller) Bounds() geom.AABB {
	return geom.AABB{X: c.pos.X, Y: c.pos.Y, W: Width, H: Height}
}

// Center returns the midpoint of the collision box.
func (c *Controller) Center() geom.Vec2 { return c.Bounds().Center() }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Facing returns the horizontal orientation.
func (c *Controller) Facing() geom.Facing { return c.facing }

// Health returns current health.
func (c *Controller) Health() float64 { return c.health }

// MaxHealth returns the capability-adjusted maximum health.
func (c *Controller) MaxHealth() float64 { return c.maxHealth }

// Grounded reports whether the controller stood on solid ground after its
// last Integrate.
func (c *Controller) Grounded() bool { return c.grounded }

// Dashing reports whether the orthogonal dash flag is active.
func (c *Controller) Dashing() bool { return c.dashing }

// Alive reports whether the controller is neither dying nor dead.
func (c *Controller) Alive() bool {
	return c.state != StateDying && c.state != StateDead
}

// Attacking reports whether a swing is in progress.
func (c *Controller) Attacking() bool { return c.state == StateAttack }

// Blocking reports whether the guard is up.
func (c *Controller) Blocking() bool { return c.state == StateBlock }

// Noisy reports whether this tick's actions made noise a guard could hear.
func (c *Controller) Noisy() bool { return c.noisy }

// HasWeapon reports the weapon capability.
func (c *Controller) HasWeapon() bool { return c.caps.Weapon }

// Capabilities returns the ability flags.
func (c *Controller) Capabilities() Capabilities { return c.caps }

// SetCheckpoint records the respawn position.
func (c *Controller) SetCheckpoint(p geom.Vec2) { c.checkpoint = p }

// Checkpoint returns the recorded respawn position.
func (c *Controller) Checkpoint() geom.Vec2 { return c.checkpoint }
