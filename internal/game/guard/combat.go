package guard

import (
	"github.com/cinderpeak/ironwatch/internal/game/combat"
	"github.com/cinderpeak/ironwatch/internal/game/geom"
)

// ApplyDamage subtracts health and reports whether the hit was lethal.
// Damage does not interrupt the current state; only a lethal hit forces the
// dying transition, at the tick the health crosses zero.
//
// Precondition: amount must not be negative.
// Postcondition: Returns false without effect when the guard is dying, dead,
// or knocked out. Health never drops below zero.
func (g *Guard) ApplyDamage(amount float64) bool {
	if !g.Targetable() {
		return false
	}
	g.health -= amount
	if g.health <= 0 {
		g.health = 0
		g.transitionTo(StateDying)
		g.emit(EventDeath)
		return true
	}
	g.recomputePhase()
	return false
}

// ForceKnockout collapses the guard into the recoverable knocked-out state
// instead of applying damage. Callers use it to convert a would-be-lethal
// unarmed hit on an unarmored archetype.
//
// Postcondition: No effect when the guard is dying, dead, or already knocked
// out. Health is untouched; recovery restores it to max.
func (g *Guard) ForceKnockout() {
	if !g.Targetable() {
		return
	}
	g.transitionTo(StateKnockedOut)
	g.emit(EventKnockedOut)
}

// Stagger interrupts whatever the guard is doing with the fixed stun
// recovery. Any live hitbox is cleared by the transition.
//
// Postcondition: No effect when the guard is dying, dead, or knocked out.
func (g *Guard) Stagger() {
	if !g.Targetable() {
		return
	}
	g.transitionTo(StateStunned)
}

// NoteBlocked records one block interaction with the player, on either side
// of the shield. Reaching the threshold forces the next attack decision to a
// block-bypassing variant.
func (g *Guard) NoteBlocked() {
	g.blockedCount++
}

// ClearBlocked resets the block interaction counter. Callers invoke it when
// the guard lands an unblocked hit.
func (g *Guard) ClearBlocked() {
	g.blockedCount = 0
}

// recomputePhase latches the boss phase from the health fraction. The phase
// only ever advances; restoring health does not lower it within an encounter.
func (g *Guard) recomputePhase() {
	if !g.arch.BossTier {
		return
	}
	p := 1
	frac := g.HealthFraction()
	if frac < g.arch.Phase2Below {
		p = 2
	}
	if frac < g.arch.Phase3Below {
		p = 3
	}
	if p > g.phase {
		g.phase = p
		g.emit(EventPhaseChange)
	}
}

// Hitbox returns the live attack hitbox, or nil.
//
// Postcondition: Non-nil only while attacking with elapsed state time inside
// one of the variant's windows. The box extends the variant reach in front
// of the facing edge, vertically centered on the body.
func (g *Guard) Hitbox() *combat.Hitbox {
	if g.state != StateAttacking || g.winIdx < 0 {
		return nil
	}
	w := g.attack.Windows[g.winIdx]
	damage := float64(w.Damage)
	if damage == 0 {
		damage = float64(g.arch.AttackDamage)
	}
	b := g.Bounds()
	box := geom.AABB{
		Y: b.Y + (b.H-g.attack.Height)/2,
		W: g.attack.Reach,
		H: g.attack.Height,
	}
	if g.facing == geom.FacingRight {
		box.X = b.MaxX()
	} else {
		box.X = b.X - g.attack.Reach
	}
	return &combat.Hitbox{
		Box:           box,
		Damage:        damage,
		BypassesBlock: w.BypassesBlock,
		Swing:         g.swing,
	}
}
