// Package arena drives one encounter: the player and the guards a level
// spawns, stepped through a fixed-order tick pipeline and observed through
// read-only views. Everything inside a tick runs on one goroutine; entities
// never see each other except through the pipeline.
package arena

import (
	"math"

	"go.uber.org/zap"

	"github.com/cinderpeak/ironwatch/internal/game/combat"
	"github.com/cinderpeak/ironwatch/internal/game/guard"
	"github.com/cinderpeak/ironwatch/internal/game/player"
	"github.com/cinderpeak/ironwatch/internal/game/rng"
	"github.com/cinderpeak/ironwatch/internal/game/ruleset"
	"github.com/cinderpeak/ironwatch/internal/game/sense"
	"github.com/cinderpeak/ironwatch/internal/game/world"
)

// EventSink receives the guard notifications drained during bookkeeping.
// Sinks are presentation-side; nothing they do can reach back into the tick.
type EventSink interface {
	HandleGuardEvent(ev guard.Event)
}

// Config assembles an encounter.
type Config struct {
	Level    *world.Level
	Registry *ruleset.Registry
	// Source feeds every guard's decision rolls. One shared source keeps a
	// whole encounter reproducible from a single seed.
	Source rng.Source
	// Capabilities are the player's unlocked capability flags for this run.
	Capabilities player.Capabilities
	// Hooks carries the combat side-effect collaborators. The zero value is
	// valid; nil fields are skipped.
	Hooks combat.Hooks
	// Events receives drained guard events. Nil drops them after logging.
	Events EventSink
	// TimeLimit is the per-life time allowance in seconds. Zero disables it.
	TimeLimit float64
	Logger    *zap.Logger
}

// Arena owns every entity of a running encounter.
type Arena struct {
	lvl    *world.Level
	log    *zap.Logger
	hooks  combat.Hooks
	events EventSink

	player   *player.Controller
	guards   []*guard.Guard
	fighters []combat.Guard
	resolver *combat.Resolver

	tick         uint64
	elapsed      float64
	lifeStart    float64
	timeLimit    float64
	checkpoint   int
	playerDeaths int
}

// New builds an arena from a loaded level. Spawn archetype keys resolve
// through the registry, so an unknown key yields a default-table guard
// rather than an error.
//
// Precondition: Level, Registry and Source must be non-nil.
func New(cfg Config) *Arena {
	if cfg.Level == nil {
		panic("arena.New: precondition violated: level must be non-nil")
	}
	if cfg.Registry == nil {
		panic("arena.New: precondition violated: registry must be non-nil")
	}
	if cfg.Source == nil {
		panic("arena.New: precondition violated: random source must be non-nil")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	a := &Arena{
		lvl:        cfg.Level,
		log:        log,
		hooks:      cfg.Hooks,
		events:     cfg.Events,
		player:     player.NewController(cfg.Level.PlayerStart, cfg.Capabilities),
		resolver:   combat.NewResolver(cfg.Hooks),
		timeLimit:  cfg.TimeLimit,
		checkpoint: -1,
	}

	for i, sp := range cfg.Level.Spawns {
		arch := cfg.Registry.Archetype(sp.Archetype)
		g := guard.New(arch, cfg.Registry.Repertoire(arch),
			sp.Position, sp.PatrolMin, sp.PatrolMax, cfg.Source)
		a.guards = append(a.guards, g)
		log.Debug("guard spawned",
			zap.Int("spawn", i),
			zap.String("guard_id", g.ID()),
			zap.String("archetype", arch.ID))
	}
	a.rebuildFighters()
	return a
}

// Tick advances the encounter by one step: sample input, update the player,
// resolve it against the world, update each guard on a freshly captured
// snapshot, resolve combat, then run the bookkeeping.
//
// Precondition: dt must be positive and already clamped by the caller.
func (a *Arena) Tick(dt float64, in player.Input) {
	a.tick++
	a.elapsed += dt

	a.player.Update(dt, in)
	a.player.Integrate(dt, a.lvl)

	for _, g := range a.guards {
		g.Update(dt, sense.Capture(a.player))
		g.Integrate(dt, a.lvl)
	}

	a.resolver.Resolve(a.player, a.fighters)

	a.drainEvents()
	a.removeDead()
	a.latchCheckpoint()
	a.checkHazards()
	a.checkTimeLimit()
	a.respawnIfDead()
}

// drainEvents forwards every buffered guard notification to the sink.
func (a *Arena) drainEvents() {
	for _, g := range a.guards {
		for _, ev := range g.DrainEvents() {
			a.log.Info("guard event",
				zap.String("kind", string(ev.Kind)),
				zap.String("guard_id", ev.GuardID),
				zap.String("archetype", ev.Archetype),
				zap.Int("phase", ev.Phase))
			if a.events != nil {
				a.events.HandleGuardEvent(ev)
			}
		}
	}
}

// removeDead drops guards that finished dying and clears the resolver's
// bookkeeping for them. The death event fired when dying began.
func (a *Arena) removeDead() {
	kept := a.guards[:0]
	removed := false
	for _, g := range a.guards {
		if g.State() == guard.StateDead {
			a.resolver.Forget(g.ID())
			a.log.Info("guard removed",
				zap.String("guard_id", g.ID()),
				zap.String("archetype", g.Archetype().ID))
			removed = true
			continue
		}
		kept = append(kept, g)
	}
	a.guards = kept
	if removed {
		a.rebuildFighters()
	}
}

func (a *Arena) rebuildFighters() {
	a.fighters = a.fighters[:0]
	for _, g := range a.guards {
		a.fighters = append(a.fighters, g)
	}
}

// latchCheckpoint moves the respawn point to whichever checkpoint tile the
// player currently overlaps. Latching is sticky until a different
// checkpoint is touched.
func (a *Arena) latchCheckpoint() {
	if !a.player.Alive() {
		return
	}
	bounds := a.player.Bounds()
	for i, cp := range a.lvl.Checkpoints {
		if i == a.checkpoint {
			continue
		}
		tx := int(math.Floor(cp.X / a.lvl.TileSize))
		ty := int(math.Floor(cp.Y / a.lvl.TileSize))
		if !bounds.Intersects(a.lvl.TileBox(tx, ty)) {
			continue
		}
		a.checkpoint = i
		a.player.SetCheckpoint(cp)
		a.log.Info("checkpoint reached", zap.Int("checkpoint", i))
		break
	}
}

// checkHazards kills the player on contact with spike or pit tiles and
// records the environment death.
func (a *Arena) checkHazards() {
	if !a.player.Alive() {
		return
	}
	switch a.lvl.HazardIn(a.player.Bounds()) {
	case world.HazardSpikes:
		a.killPlayer(combat.CauseTrap, "spikes")
	case world.HazardPit:
		a.killPlayer(combat.CausePit, "pit")
	}
}

// checkTimeLimit enforces the per-life time allowance.
func (a *Arena) checkTimeLimit() {
	if a.timeLimit <= 0 || !a.player.Alive() {
		return
	}
	if a.elapsed-a.lifeStart >= a.timeLimit {
		a.killPlayer(combat.CauseTime, "expired")
	}
}

func (a *Arena) killPlayer(cause combat.DeathCause, subtype string) {
	pos := a.player.Center()
	a.player.Kill()
	a.log.Info("player killed",
		zap.String("cause", string(cause)),
		zap.String("subtype", subtype))
	if a.hooks.Deaths != nil {
		a.hooks.Deaths.Record(combat.DeathRecord{
			Cause:    cause,
			Subtype:  subtype,
			Position: pos,
		})
	}
	if a.hooks.Audio != nil {
		a.hooks.Audio.Request(combat.CuePlayerDown)
	}
}

// respawnIfDead reuses the controller at its checkpoint once the dead state
// is reached, and restarts the per-life clock.
func (a *Arena) respawnIfDead() {
	if a.player.State() != player.StateDead {
		return
	}
	a.playerDeaths++
	a.player.Respawn()
	a.lifeStart = a.elapsed
	a.log.Info("player respawned",
		zap.Int("deaths", a.playerDeaths),
		zap.Int("checkpoint", a.checkpoint))
}

// Player returns the live controller. Mutating it outside Tick is test-only.
func (a *Arena) Player() *player.Controller { return a.player }

// Guards returns the living guards in spawn order.
func (a *Arena) Guards() []*guard.Guard {
	out := make([]*guard.Guard, len(a.guards))
	copy(out, a.guards)
	return out
}

// GuardsRemaining counts guards still in the encounter, knocked out
// included.
func (a *Arena) GuardsRemaining() int { return len(a.guards) }

// Cleared reports whether every guard has been removed.
func (a *Arena) Cleared() bool { return len(a.guards) == 0 }

// TickCount returns the number of completed ticks.
func (a *Arena) TickCount() uint64 { return a.tick }

// Elapsed returns the simulated seconds so far.
func (a *Arena) Elapsed() float64 { return a.elapsed }

// PlayerDeaths counts respawns consumed so far.
func (a *Arena) PlayerDeaths() int { return a.playerDeaths }
