package guard

import (
	"math"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/sense"
	"github.com/cinderpeak/ironwatch/internal/game/world"
)

// Update advances the behavior machine by dt using the tick's sense snapshot.
// Movement is expressed as velocity here and applied by Integrate.
//
// Precondition: dt must not be negative.
func (g *Guard) Update(dt float64, snap sense.Snapshot) {
	if g.state == StateDead {
		return
	}
	g.timer.Advance(dt)
	g.cooldowns.Advance(dt)

	switch g.state {
	case StateDying:
		g.vel.X = 0
		if g.timer.Reached(g.arch.DeathDuration) {
			g.transitionTo(StateDead)
		}
	case StateKnockedOut:
		g.vel.X = 0
		if g.timer.Reached(g.arch.KnockoutRecovery) {
			g.health = g.maxHealth
			g.transitionTo(g.restState())
			g.emit(EventRecovered)
		}
	case StateStunned:
		g.vel.X = 0
		if g.timer.Reached(g.arch.StunDuration) {
			g.transitionTo(StateCombatReady)
		}
	case StateBlocking:
		g.vel.X = 0
		g.faceToward(snap.PlayerPos.X)
		if g.timer.Reached(g.arch.BlockDuration) {
			g.transitionTo(StateCombatReady)
		}
	case StateRetreating:
		g.faceToward(snap.PlayerPos.X)
		g.vel.X = -g.facing.Sign() * g.speed()
		if g.timer.Reached(g.arch.RetreatDuration) {
			g.transitionTo(StateCombatReady)
		}
	case StateAttacking:
		g.updateAttack()
	case StateIdle, StatePatrol:
		g.vel.X = 0
		if g.sees(snap) {
			g.spotPlayer()
			return
		}
		if g.hears(snap) {
			g.noiseAt = snap.PlayerPos
			g.transitionTo(StateSuspicious)
			return
		}
		if g.state == StatePatrol {
			g.patrolStep()
		}
	case StateSuspicious:
		g.updateSuspicious(snap)
	case StateAlert:
		g.faceToward(snap.PlayerPos.X)
		if g.inCombatRange(snap) {
			g.transitionTo(StateCombatReady)
			return
		}
		g.vel.X = g.facing.Sign() * g.speed()
	case StateCombatReady:
		g.updateCombatReady(snap)
	}
}

// updateAttack tracks the live window of the playing variant. Entering a new
// window advances the swing number, so every window of a multi-hit variant
// can land once.
func (g *Guard) updateAttack() {
	g.vel.X = 0
	idx := g.liveWindowIndex()
	if idx != g.winIdx {
		g.winIdx = idx
		if idx >= 0 {
			g.swing++
		}
	}
	if g.timer.Reached(g.attack.Duration) {
		g.transitionTo(StateCombatReady)
	}
}

// spotPlayer escalates to alert on a fresh sighting. Re-entering alert from
// combat_ready is not a sighting and stays silent.
func (g *Guard) spotPlayer() {
	g.transitionTo(StateAlert)
	g.emit(EventAlerted)
}

func (g *Guard) liveWindowIndex() int {
	elapsed := g.timer.Elapsed()
	for i, w := range g.attack.Windows {
		if elapsed >= w.Start && elapsed < w.End {
			return i
		}
	}
	return -1
}

// updateSuspicious walks toward the last heard noise within the patrol
// bounds. Seeing the player escalates to alert, fresh noise restarts the
// timeout, and silence decays back to patrol.
func (g *Guard) updateSuspicious(snap sense.Snapshot) {
	if g.sees(snap) {
		g.spotPlayer()
		return
	}
	if g.hears(snap) {
		g.noiseAt = snap.PlayerPos
		g.timer.Reset()
	}
	if g.timer.Reached(g.arch.SuspicionTimeout) {
		g.transitionTo(g.restState())
		return
	}
	g.faceToward(g.noiseAt.X)
	g.vel.X = 0
	cx := g.Center().X
	if math.Abs(g.noiseAt.X-cx) > InvestigateSlack && cx > g.patrolMin && cx < g.patrolMax {
		g.vel.X = g.facing.Sign() * g.speed() * SuspiciousSpeedFactor
	}
}

// updateCombatReady runs the reaction-gated decision loop while the player
// stays in combat range.
func (g *Guard) updateCombatReady(snap sense.Snapshot) {
	if !g.inCombatRange(snap) {
		g.transitionTo(StateAlert)
		return
	}
	g.faceToward(snap.PlayerPos.X)
	if g.cooldowns.Ready(cdDecision) {
		g.cooldowns.Set(cdDecision, g.arch.ReactionTime)
		g.decide(snap)
		if g.state != StateCombatReady {
			return
		}
	}
	g.vel.X = 0
	if g.plan == planAdvance {
		g.vel.X = g.facing.Sign() * g.speed()
	}
}

// patrolStep walks between the patrol bounds, turning at either end.
func (g *Guard) patrolStep() {
	cx := g.Center().X
	if cx >= g.patrolMax {
		g.facing = geom.FacingLeft
	} else if cx <= g.patrolMin {
		g.facing = geom.FacingRight
	}
	g.vel.X = g.facing.Sign() * g.speed() * PatrolSpeedFactor
}

// sees reports line of sight: the player's center within the vision range
// horizontally and inside the vertical vision band.
func (g *Guard) sees(snap sense.Snapshot) bool {
	c := g.Center()
	return math.Abs(snap.PlayerPos.X-c.X) <= g.arch.VisionRange &&
		math.Abs(snap.PlayerPos.Y-c.Y) <= g.arch.VisionBand
}

// hears reports a noise event inside the hearing range.
func (g *Guard) hears(snap sense.Snapshot) bool {
	if !snap.Noisy {
		return false
	}
	c := g.Center()
	return math.Hypot(snap.PlayerPos.X-c.X, snap.PlayerPos.Y-c.Y) <= g.arch.HearingRange
}

func (g *Guard) inCombatRange(snap sense.Snapshot) bool {
	c := g.Center()
	return math.Abs(snap.PlayerPos.X-c.X) <= g.arch.CombatRange &&
		math.Abs(snap.PlayerPos.Y-c.Y) <= g.arch.VisionBand
}

func (g *Guard) faceToward(x float64) {
	if x < g.Center().X {
		g.facing = geom.FacingLeft
	} else {
		g.facing = geom.FacingRight
	}
}

// speed returns the archetype move speed under the current boss phase.
func (g *Guard) speed() float64 {
	switch g.phase {
	case 2:
		return g.arch.MoveSpeed * Phase2SpeedMult
	case 3:
		return g.arch.MoveSpeed * Phase3SpeedMult
	default:
		return g.arch.MoveSpeed
	}
}

// Integrate applies gravity, moves the body through the level, and settles
// ground contact.
//
// Precondition: lvl must not be nil; dt must not be negative.
// Postcondition: The body does not overlap any solid tile.
func (g *Guard) Integrate(dt float64, lvl *world.Level) {
	if !g.grounded {
		g.vel.Y += Gravity * dt
		if g.vel.Y > MaxFallSpeed {
			g.vel.Y = MaxFallSpeed
		}
	}
	contact := lvl.ResolveMove(g.Bounds(), g.vel.Scale(dt))
	g.pos = contact.Position
	if contact.HitWall {
		g.vel.X = 0
		if g.state == StatePatrol {
			g.facing = g.facing.Opposite()
		}
	}
	if contact.HitCeiling && g.vel.Y < 0 {
		g.vel.Y = 0
	}
	g.grounded = contact.OnGround || lvl.Grounded(g.Bounds())
	if g.grounded && g.vel.Y > 0 {
		g.vel.Y = 0
	}
}
