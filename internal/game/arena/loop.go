package arena

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cinderpeak/ironwatch/internal/game/player"
)

// InputSource supplies the player's input each tick. Implementations range
// from scripted bots to live control feeds.
type InputSource interface {
	Next(tick uint64) player.Input
}

// InputFunc adapts a plain function to InputSource.
type InputFunc func(tick uint64) player.Input

// Next implements InputSource.
func (f InputFunc) Next(tick uint64) player.Input { return f(tick) }

// LoopConfig assembles a loop around an arena.
type LoopConfig struct {
	Arena *Arena
	Input InputSource
	// Rate is the wall-clock tick interval.
	Rate time.Duration
	// MaxDT caps the dt handed to a tick after a stall, in seconds.
	// Zero selects a default of four tick intervals.
	MaxDT float64
	// OnTick observes the post-tick snapshot. Nil skips observation.
	OnTick func(View)
	Logger *zap.Logger
}

// Loop steps an arena at a fixed wall-clock rate until its context ends or
// the encounter is cleared.
type Loop struct {
	arena  *Arena
	input  InputSource
	rate   time.Duration
	maxDT  float64
	onTick func(View)
	log    *zap.Logger
}

// NewLoop builds a loop.
//
// Precondition: Arena and Input must be non-nil; Rate must be positive.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Arena == nil {
		panic("arena.NewLoop: precondition violated: arena must be non-nil")
	}
	if cfg.Input == nil {
		panic("arena.NewLoop: precondition violated: input source must be non-nil")
	}
	if cfg.Rate <= 0 {
		panic("arena.NewLoop: precondition violated: rate must be positive")
	}
	maxDT := cfg.MaxDT
	if maxDT <= 0 {
		maxDT = 4 * cfg.Rate.Seconds()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		arena:  cfg.Arena,
		input:  cfg.Input,
		rate:   cfg.Rate,
		maxDT:  maxDT,
		onTick: cfg.OnTick,
		log:    log,
	}
}

// Run steps the arena in real time. It returns nil when ctx is cancelled or
// the encounter is cleared.
//
// Postcondition: a panicking tick is logged and skipped, never fatal.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.rate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt > l.maxDT {
				dt = l.maxDT
			}
			l.step(dt)
			if l.arena.Cleared() {
				l.log.Info("encounter cleared", zap.Uint64("tick", l.arena.TickCount()))
				return nil
			}
		}
	}
}

// RunHeadless steps the arena at full speed with a fixed dt of one tick
// interval, for at most maxTicks steps, stopping early once the encounter
// is cleared or ctx ends.
func (l *Loop) RunHeadless(ctx context.Context, maxTicks uint64) {
	dt := l.rate.Seconds()
	for i := uint64(0); i < maxTicks; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}
		l.step(dt)
		if l.arena.Cleared() {
			l.log.Info("encounter cleared", zap.Uint64("tick", l.arena.TickCount()))
			return
		}
	}
}

// step isolates one tick: a panic in entity code or a collaborator loses
// that tick, not the encounter.
func (l *Loop) step(dt float64) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("tick panicked",
				zap.Any("panic", r),
				zap.Uint64("tick", l.arena.TickCount()))
		}
	}()
	l.arena.Tick(dt, l.input.Next(l.arena.TickCount()))
	if l.onTick != nil {
		l.onTick(l.arena.Snapshot())
	}
}
