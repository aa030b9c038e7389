// Package combat resolves hits between the player and the guards each tick
// and fans the outcomes out to presentation and bookkeeping collaborators.
// It owns the shared Hitbox type; entity packages depend on combat, never
// the other way around.
package combat

import (
	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/ruleset"
)

// Score deltas emitted through the Score collaborator.
const (
	ScoreBlockReward = 10
	ScoreKnockout    = 50
	ScoreKill        = 100
	ScoreKillElite   = 250
	ScoreKillBoss    = 1000
)

// Player is the resolver's view of the player controller. Using a local
// interface keeps entity packages free to import combat for the Hitbox type.
type Player interface {
	Bounds() geom.AABB
	Center() geom.Vec2
	Hitbox() *Hitbox
	HasWeapon() bool
	Blocking() bool
	Invulnerable() bool
	Alive() bool
	TakeDamage(amount float64, ignoresBlock bool) bool
}

// Guard is the resolver's view of one guard.
type Guard interface {
	ID() string
	Bounds() geom.AABB
	Center() geom.Vec2
	Hitbox() *Hitbox
	Targetable() bool
	Blocking() bool
	Health() float64
	Archetype() *ruleset.Archetype
	ApplyDamage(amount float64) bool
	ForceKnockout()
	Stagger()
	NoteBlocked()
	ClearBlocked()
}

// Resolver applies the tick's hit resolution. It keeps per-guard ledgers so
// one swing lands at most once per target across the whole exposure, and the
// unarmed hit cadence that staggers mid-armored guards every Nth punch.
type Resolver struct {
	hooks Hooks

	// playerHits maps guard ID to the last player swing resolved against it;
	// guardHits maps guard ID to the last of its own swings resolved against
	// the player. Swing numbers start at one, so zero means none yet.
	playerHits map[string]uint64
	guardHits  map[string]uint64
	unarmed    map[string]int
}

// NewResolver returns a resolver emitting side effects through hooks. Nil
// hook fields are skipped.
func NewResolver(hooks Hooks) *Resolver {
	return &Resolver{
		hooks:      hooks,
		playerHits: make(map[string]uint64),
		guardHits:  make(map[string]uint64),
		unarmed:    make(map[string]int),
	}
}

// Forget drops the resolver's bookkeeping for one guard. The orchestrator
// calls it when a guard leaves the simulation.
func (r *Resolver) Forget(guardID string) {
	delete(r.playerHits, guardID)
	delete(r.guardHits, guardID)
	delete(r.unarmed, guardID)
}

// Resolve runs one tick of hit resolution: the player's hitbox against every
// targetable guard first, then each guard's hitbox against the player.
//
// Precondition: p must be non-nil; guards may be empty.
func (r *Resolver) Resolve(p Player, guards []Guard) {
	if p == nil {
		panic("combat.Resolve: precondition violated: player must be non-nil")
	}
	r.resolvePlayerHitbox(p, guards)
	r.resolveGuardHitboxes(p, guards)
}

func (r *Resolver) resolvePlayerHitbox(p Player, guards []Guard) {
	h := p.Hitbox()
	if h == nil {
		return
	}
	for _, g := range guards {
		if !g.Targetable() {
			continue
		}
		if r.playerHits[g.ID()] == h.Swing {
			continue
		}
		if !h.Box.Intersects(g.Bounds()) {
			continue
		}
		r.playerHits[g.ID()] = h.Swing
		if p.HasWeapon() {
			r.weaponHit(g, h)
		} else {
			r.unarmedHit(g, h)
		}
	}
}

// weaponHit applies an armed player swing. A blocking guard parries: it takes
// no damage, staggers off the impact, and remembers the block.
func (r *Resolver) weaponHit(g Guard, h *Hitbox) {
	if g.Blocking() {
		g.Stagger()
		g.NoteBlocked()
		r.cue(CueParry)
		r.particle(g, ParticleSpark)
		r.note(playerStrike(g, HitBlocked, 0, false))
		return
	}
	lethal := g.ApplyDamage(h.Damage)
	r.cue(CueSwordHit)
	r.particle(g, ParticleBlood)
	r.note(playerStrike(g, HitLanded, h.Damage, lethal))
	if lethal {
		r.score(killScore(g.Archetype()))
		r.cue(CueGuardDown)
	}
}

// unarmedHit applies a bare-handed player swing, tiered by the target's
// armor: heavy deflects outright, mid staggers every Nth hit without taking
// damage, and unarmored targets take damage with a would-be-lethal hit
// converted to knockout when the archetype can recover from one. A mid-armor
// archetype with a non-positive stagger cadence never staggers.
func (r *Resolver) unarmedHit(g Guard, h *Hitbox) {
	arch := g.Archetype()
	switch arch.Armor {
	case ruleset.ArmorHeavy:
		r.cue(CueDeflect)
		r.particle(g, ParticleSpark)
		r.note(playerStrike(g, HitDeflected, 0, false))
	case ruleset.ArmorMid:
		r.unarmed[g.ID()]++
		if arch.StaggerEvery > 0 && r.unarmed[g.ID()]%arch.StaggerEvery == 0 {
			g.Stagger()
			r.cue(CuePunchHit)
			r.particle(g, ParticleDust)
			r.note(playerStrike(g, HitLanded, 0, false))
		} else {
			r.cue(CueDeflect)
			r.note(playerStrike(g, HitDeflected, 0, false))
		}
	default:
		if g.Health() <= h.Damage && arch.KnockoutRecovery > 0 {
			g.ForceKnockout()
			r.score(ScoreKnockout)
			r.cue(CueKnockout)
			r.particle(g, ParticleDust)
			r.note(playerStrike(g, HitKnockout, 0, false))
			return
		}
		lethal := g.ApplyDamage(h.Damage)
		r.cue(CuePunchHit)
		r.note(playerStrike(g, HitLanded, h.Damage, lethal))
		if lethal {
			r.score(killScore(arch))
			r.cue(CueGuardDown)
		}
	}
}

func (r *Resolver) resolveGuardHitboxes(p Player, guards []Guard) {
	if !p.Alive() {
		return
	}
	for _, g := range guards {
		h := g.Hitbox()
		if h == nil {
			continue
		}
		if r.guardHits[g.ID()] == h.Swing {
			continue
		}
		if !h.Box.Intersects(p.Bounds()) {
			continue
		}
		// An invulnerable player is not an exposure; the swing can still land
		// if its window outlives the invulnerability.
		if p.Invulnerable() {
			continue
		}
		r.guardHits[g.ID()] = h.Swing
		if p.Blocking() && !h.BypassesBlock {
			g.NoteBlocked()
			r.score(ScoreBlockReward)
			r.cue(CueBlock)
			r.particle(g, ParticleSpark)
			r.note(guardStrike(g, p, HitBlocked, 0, false))
			continue
		}
		lethal := p.TakeDamage(h.Damage, h.BypassesBlock)
		g.ClearBlocked()
		r.cue(CuePlayerHit)
		r.spawnAt(p.Center(), ParticleBlood)
		r.note(guardStrike(g, p, HitLanded, h.Damage, lethal))
		if lethal {
			r.cue(CuePlayerDown)
			if r.hooks.Deaths != nil {
				r.hooks.Deaths.Record(DeathRecord{
					Cause:    CauseGuard,
					Subtype:  g.Archetype().ID,
					Position: p.Center(),
				})
			}
		}
	}
}

func killScore(arch *ruleset.Archetype) int {
	switch {
	case arch.BossTier:
		return ScoreKillBoss
	case arch.Elite:
		return ScoreKillElite
	default:
		return ScoreKill
	}
}

// playerStrike builds the report for a player swing against g.
func playerStrike(g Guard, outcome string, damage float64, lethal bool) HitReport {
	return HitReport{
		Attacker: ActorPlayer,
		Target:   g.Archetype().ID,
		GuardID:  g.ID(),
		Outcome:  outcome,
		Damage:   damage,
		Lethal:   lethal,
		Position: g.Center(),
	}
}

// guardStrike builds the report for g's swing against the player.
func guardStrike(g Guard, p Player, outcome string, damage float64, lethal bool) HitReport {
	return HitReport{
		Attacker: g.Archetype().ID,
		Target:   ActorPlayer,
		GuardID:  g.ID(),
		Outcome:  outcome,
		Damage:   damage,
		Lethal:   lethal,
		Position: p.Center(),
	}
}

func (r *Resolver) cue(id string) {
	if r.hooks.Audio != nil {
		r.hooks.Audio.Request(id)
	}
}

func (r *Resolver) score(delta int) {
	if r.hooks.Score != nil {
		r.hooks.Score.Add(delta)
	}
}

func (r *Resolver) note(rep HitReport) {
	if r.hooks.Hits != nil {
		r.hooks.Hits.Note(rep)
	}
}

func (r *Resolver) particle(g Guard, kind string) {
	r.spawnAt(g.Center(), kind)
}

func (r *Resolver) spawnAt(pos geom.Vec2, kind string) {
	if r.hooks.Particles != nil {
		r.hooks.Particles.Spawn(pos, kind)
	}
}
