// Package main provides the headless skirmish harness. It drives scripted
// encounters through the arena loop for balancing and regression work,
// recording telemetry and serving the spectator feed when configured.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinderpeak/ironwatch/internal/config"
	"github.com/cinderpeak/ironwatch/internal/game/arena"
	"github.com/cinderpeak/ironwatch/internal/game/combat"
	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/guard"
	"github.com/cinderpeak/ironwatch/internal/game/player"
	"github.com/cinderpeak/ironwatch/internal/game/rng"
	"github.com/cinderpeak/ironwatch/internal/game/ruleset"
	"github.com/cinderpeak/ironwatch/internal/game/world"
	"github.com/cinderpeak/ironwatch/internal/observability"
	"github.com/cinderpeak/ironwatch/internal/scripting"
	"github.com/cinderpeak/ironwatch/internal/server"
	"github.com/cinderpeak/ironwatch/internal/spectator"
	"github.com/cinderpeak/ironwatch/internal/storage"
	"github.com/cinderpeak/ironwatch/internal/storage/postgres"
	"github.com/cinderpeak/ironwatch/internal/storage/sqlite"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/skirmish.yaml", "path to configuration file")
	headless := flag.Bool("headless", false, "step at full speed instead of the wall-clock tick rate")
	encounters := flag.Int("encounters", 1, "number of encounters to run (0 = until interrupted)")
	maxTicks := flag.Uint64("max-ticks", 36000, "per-encounter tick cap in headless mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting skirmish harness",
		zap.Int64("seed", seed),
		zap.Int("tick_rate", cfg.Simulation.TickRate),
		zap.Bool("headless", *headless),
	)

	// Load content tables and the configured level.
	contentStart := time.Now()
	registry, err := ruleset.LoadDir(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content tables", zap.Error(err))
	}
	level, err := world.LoadLevelFromFile(cfg.Content.Level)
	if err != nil {
		logger.Fatal("loading level", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("archetypes", len(registry.ArchetypeIDs())),
		zap.Int("variants", len(registry.VariantIDs())),
		zap.String("level", level.ID),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry recorder per the configured driver.
	var (
		rec storage.Recorder
		pg  *postgres.Recorder
	)
	switch cfg.Storage.Driver {
	case "postgres":
		dbStart := time.Now()
		pg, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to telemetry database", zap.Error(err))
		}
		rec = pg
		logger.Info("telemetry recorder ready",
			zap.String("driver", "postgres"),
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
	case "sqlite":
		rec, err = sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			logger.Fatal("opening telemetry database", zap.Error(err))
		}
		logger.Info("telemetry recorder ready",
			zap.String("driver", "sqlite"),
			zap.String("path", cfg.Storage.SQLitePath),
		)
	default:
		rec = storage.NewNop()
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Warn("closing recorder", zap.Error(err))
		}
	}()

	// Cue hook scripts. Broken scripts fail startup, not the first cue.
	var scripts *scripting.Manager
	if cfg.Scripting.Enabled {
		scripts = scripting.NewManager(logger, cfg.Scripting.InstructionBudget)
		scripts.RequestCue = func(id string) {
			logger.Debug("cue requested", zap.String("cue", id))
		}
		scripts.SpawnParticle = func(kind string) {
			logger.Debug("particle requested", zap.String("kind", kind))
		}
		if err := scripts.LoadDir(cfg.Scripting.Dir); err != nil {
			logger.Fatal("loading cue hook scripts", zap.Error(err))
		}
		defer scripts.Close()
		logger.Info("cue hooks loaded", zap.String("dir", cfg.Scripting.Dir))
	}

	// Spectator feed.
	var (
		hub  *spectator.Hub
		feed *spectator.Server
	)
	if cfg.Spectator.Enabled {
		hub = spectator.NewHub(logger)
		feed = spectator.NewServer(cfg.Spectator, hub, logger)
	}

	// Content watcher marks tables dirty; the encounter loop reloads at the
	// next encounter boundary so a running tick never sees a half-swap.
	var (
		watcher *ruleset.Watcher
		dirty   atomic.Bool
	)
	if cfg.Content.Watch {
		watcher, err = ruleset.NewWatcher(
			filepath.Join(cfg.Content.Dir, "archetypes"),
			filepath.Join(cfg.Content.Dir, "attacks"),
			filepath.Dir(cfg.Content.Level),
		)
		if err != nil {
			logger.Fatal("starting content watcher", zap.Error(err))
		}
		logger.Info("content watch enabled", zap.String("dir", cfg.Content.Dir))
	}

	run := &harness{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		level:    level,
		recorder: rec,
		scripts:  scripts,
		hub:      hub,
		seed:     seed,
		headless: *headless,
		maxTicks: *maxTicks,
		dirty:    &dirty,
	}

	lc := server.NewLifecycle(logger)

	if feed != nil {
		lc.Add("spectator", feed)
	}

	if watcher != nil {
		stopped := make(chan struct{})
		lc.Add("watcher", &server.FuncService{
			StartFn: func() error {
				for {
					select {
					case path, ok := <-watcher.Events:
						if !ok {
							// A dead watcher must not end the run; hold
							// until shutdown.
							<-stopped
							return nil
						}
						dirty.Store(true)
						logger.Info("content change detected", zap.String("path", path))
					case werr, ok := <-watcher.Errors:
						if !ok {
							<-stopped
							return nil
						}
						logger.Warn("content watcher error", zap.Error(werr))
					}
				}
			},
			StopFn: func() {
				watcher.Close()
				close(stopped)
			},
		})
	}

	if pg != nil {
		lc.AddPoll("recorder", 30*time.Second, func() error {
			return pg.Health(ctx, 5*time.Second)
		})
	}

	lc.Add("simulation", &server.FuncService{
		StartFn: func() error {
			return run.runEncounters(ctx, *encounters)
		},
		StopFn: cancel,
	})

	logger.Info("harness initialized", zap.Duration("startup", time.Since(start)))

	if err := lc.Run(ctx); err != nil {
		logger.Fatal("harness error", zap.Error(err))
	}
}

// harness owns everything one encounter run needs.
type harness struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *ruleset.Registry
	level    *world.Level
	recorder storage.Recorder
	scripts  *scripting.Manager
	hub      *spectator.Hub
	seed     int64
	headless bool
	maxTicks uint64
	dirty    *atomic.Bool
}

// runEncounters drives count encounters back to back, reloading content
// between encounters when the watcher flagged a change. count zero runs
// until the context ends.
func (h *harness) runEncounters(ctx context.Context, count int) error {
	for n := 1; count == 0 || n <= count; n++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		h.reloadIfDirty()
		h.runOne(ctx, n)
	}
	return nil
}

// reloadIfDirty swaps in freshly loaded tables. A failed reload keeps the
// previous tables so a tuning typo never kills the session.
func (h *harness) reloadIfDirty() {
	if h.dirty == nil || !h.dirty.CompareAndSwap(true, false) {
		return
	}
	registry, err := ruleset.LoadDir(h.cfg.Content.Dir)
	if err != nil {
		h.logger.Warn("content reload failed, keeping previous tables", zap.Error(err))
		return
	}
	level, err := world.LoadLevelFromFile(h.cfg.Content.Level)
	if err != nil {
		h.logger.Warn("level reload failed, keeping previous level", zap.Error(err))
		return
	}
	h.registry = registry
	h.level = level
	h.logger.Info("content reloaded",
		zap.Int("archetypes", len(registry.ArchetypeIDs())),
		zap.String("level", level.ID),
	)
}

// runOne builds a fresh arena and steps it to completion.
func (h *harness) runOne(ctx context.Context, n int) {
	encSeed := h.seed + int64(n-1)
	encStart := time.Now()

	enc, err := h.recorder.BeginEncounter(ctx, h.level.ID, encSeed)
	recording := h.recorder
	if err != nil {
		h.logger.Warn("starting encounter record failed, recording disabled for this encounter", zap.Error(err))
		recording = storage.NewNop()
		enc, _ = recording.BeginEncounter(ctx, h.level.ID, encSeed)
	}

	pres := &presenter{
		ctx:      ctx,
		logger:   h.logger,
		scripts:  h.scripts,
		recorder: recording,
		enc:      enc,
	}

	a := arena.New(arena.Config{
		Level:        h.level,
		Registry:     h.registry,
		Source:       rng.NewSeeded(encSeed),
		Capabilities: player.Capabilities{Weapon: true, Armor: true, Boots: true, Heart: true},
		Hooks: combat.Hooks{
			Audio:     pres,
			Particles: pres,
			Score:     pres,
			Deaths:    pres,
			Hits:      pres,
		},
		Events: pres,
		Logger: h.logger,
	})
	pres.arena = a

	var onTick func(arena.View)
	if h.hub != nil {
		onTick = h.hub.Observer(h.cfg.Spectator.Every)
	}

	loop := arena.NewLoop(arena.LoopConfig{
		Arena:  a,
		Input:  &drillBot{arena: a, attackEvery: 24},
		Rate:   time.Second / time.Duration(h.cfg.Simulation.TickRate),
		MaxDT:  h.cfg.Simulation.MaxDelta.Seconds(),
		OnTick: onTick,
		Logger: h.logger,
	})

	h.logger.Info("encounter starting",
		zap.Int("encounter", n),
		zap.Int64("seed", encSeed),
		zap.Int("guards", a.GuardsRemaining()),
	)

	if h.headless {
		loop.RunHeadless(ctx, h.maxTicks)
	} else {
		if err := loop.Run(ctx); err != nil {
			h.logger.Error("encounter loop failed", zap.Error(err))
		}
	}

	sum := storage.Summary{
		Cleared:      a.Cleared(),
		Ticks:        a.TickCount(),
		PlayerDeaths: a.PlayerDeaths(),
		Score:        pres.score,
	}
	if err := recording.EndEncounter(ctx, enc, sum); err != nil {
		h.logger.Warn("ending encounter record failed", zap.Error(err))
	}

	h.logger.Info("encounter complete",
		zap.Int("encounter", n),
		zap.Bool("cleared", sum.Cleared),
		zap.Uint64("ticks", sum.Ticks),
		zap.Int("player_deaths", sum.PlayerDeaths),
		zap.Int("score", sum.Score),
		zap.Duration("wall", time.Since(encStart)),
	)
}

// presenter fans the arena's side channels out to logging, the cue hook
// scripts, and the telemetry recorder. Recorder errors are logged and
// dropped; nothing here reaches back into the simulation.
type presenter struct {
	ctx      context.Context
	logger   *zap.Logger
	scripts  *scripting.Manager
	recorder storage.Recorder
	arena    *arena.Arena
	enc      uuid.UUID
	score    int
}

func (p *presenter) Request(cue string) {
	p.logger.Debug("audio cue", zap.String("cue", cue))
	if p.scripts != nil && cue == combat.CueParry {
		p.scripts.OnParry()
	}
}

func (p *presenter) Spawn(pos geom.Vec2, kind string) {
	p.logger.Debug("particle",
		zap.String("kind", kind),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
	)
}

func (p *presenter) Add(delta int) {
	p.score += delta
}

func (p *presenter) Record(rec combat.DeathRecord) {
	if p.scripts != nil {
		p.scripts.OnPlayerDeath(string(rec.Cause), rec.Subtype)
	}
	if err := p.recorder.RecordDeath(p.ctx, p.enc, storage.Death{
		Tick:    p.arena.TickCount(),
		Cause:   string(rec.Cause),
		Subtype: rec.Subtype,
		X:       rec.Position.X,
		Y:       rec.Position.Y,
	}); err != nil {
		p.logger.Warn("recording death failed", zap.Error(err))
	}
}

func (p *presenter) Note(rep combat.HitReport) {
	if err := p.recorder.RecordHit(p.ctx, p.enc, storage.Hit{
		Tick:     p.arena.TickCount(),
		Attacker: rep.Attacker,
		Target:   rep.Target,
		GuardID:  rep.GuardID,
		Outcome:  rep.Outcome,
		Damage:   rep.Damage,
		Lethal:   rep.Lethal,
		X:        rep.Position.X,
		Y:        rep.Position.Y,
	}); err != nil {
		p.logger.Warn("recording hit failed", zap.Error(err))
	}
}

func (p *presenter) HandleGuardEvent(ev guard.Event) {
	if p.scripts == nil {
		return
	}
	switch ev.Kind {
	case guard.EventDeath:
		p.scripts.OnGuardDeath(ev.Archetype)
	case guard.EventPhaseChange:
		p.scripts.OnBossPhase(ev.Phase)
	}
}

// drillBot is the scripted sparring input: walk toward the nearest guard
// and swing on a fixed cadence once in reach. Deterministic, so a seeded
// encounter replays exactly.
type drillBot struct {
	arena       *arena.Arena
	attackEvery uint64
}

func (b *drillBot) Next(tick uint64) player.Input {
	var in player.Input
	guards := b.arena.Guards()
	if len(guards) == 0 {
		return in
	}
	px := b.arena.Player().Center().X
	nearest := guards[0]
	best := math.Abs(nearest.Center().X - px)
	for _, g := range guards[1:] {
		if d := math.Abs(g.Center().X - px); d < best {
			nearest = g
			best = d
		}
	}
	dx := nearest.Center().X - px
	if math.Abs(dx) > 1.2 {
		if dx > 0 {
			in.Move = 1
		} else {
			in.Move = -1
		}
		return in
	}
	if b.attackEvery > 0 && tick%b.attackEvery == 0 {
		in.Attack = true
	}
	return in
}
