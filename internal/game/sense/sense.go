// Package sense builds the read-only per-tick view of the player that guard
// AI consumes. Guards only ever see a Snapshot value, never live player
// state.
package sense

import (
	"github.com/cinderpeak/ironwatch/internal/game/geom"
)

// Snapshot is the immutable per-tick view handed to each guard before its
// update. It is copied by value on every capture.
type Snapshot struct {
	// PlayerPos is the player's center in world units.
	PlayerPos geom.Vec2
	// Attacking is true while the player has a live attack going.
	Attacking bool
	// Blocking is true while the player's guard is up.
	Blocking bool
	// Noisy is true on ticks where the player made noise a guard could
	// hear: running, landing, dashing, or swinging a weapon.
	Noisy bool
	// HasWeapon is true once the player carries the weapon capability.
	HasWeapon bool
}

// Source is the view of the player the builder samples each tick.
type Source interface {
	Center() geom.Vec2
	Attacking() bool
	Blocking() bool
	Noisy() bool
	HasWeapon() bool
}

// Capture samples src into an immutable Snapshot.
//
// Precondition: src must not be nil.
func Capture(src Source) Snapshot {
	if src == nil {
		panic("sense.Capture: src must not be nil")
	}
	return Snapshot{
		PlayerPos: src.Center(),
		Attacking: src.Attacking(),
		Blocking:  src.Blocking(),
		Noisy:     src.Noisy(),
		HasWeapon: src.HasWeapon(),
	}
}
