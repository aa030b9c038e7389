package combat

import (
	"github.com/cinderpeak/ironwatch/internal/game/geom"
)

// Hitbox is a live damage volume produced by an attacking entity. Owners
// derive it from their current state each tick, so it exists only while an
// attack window is open.
type Hitbox struct {
	// Box is the world-space damage volume.
	Box geom.AABB
	// Damage carried by the hit.
	Damage float64
	// BypassesBlock makes the hit ignore a raised guard.
	BypassesBlock bool
	// Swing numbers the window exposure that produced this hitbox. Together
	// with a target identity it keys hit deduplication: one swing lands at
	// most once per target.
	Swing uint64
}
