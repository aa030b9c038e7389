package world

import (
	"math"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
)

// groundProbe is the distance below a body checked by Grounded.
const groundProbe = 0.01

// Contact reports how a resolved move ended.
type Contact struct {
	// Position is the resolved min corner.
	Position geom.Vec2
	// HitWall is set when horizontal movement was stopped by a tile.
	HitWall bool
	// OnGround is set when downward movement landed on a tile.
	OnGround bool
	// HitCeiling is set when upward movement was stopped by a tile.
	HitCeiling bool
}

// ResolveMove translates box by delta one axis at a time, clamping each axis
// at the face of the nearest solid tile in the swept span. Resolving per
// axis keeps a wall spanning several tiles from deflecting the body at the
// seams, and sweeping keeps a large delta from crossing a tile outright.
//
// Precondition: box must not already intersect a solid tile.
// Postcondition: The returned position does not intersect any solid tile.
func (l *Level) ResolveMove(box geom.AABB, delta geom.Vec2) Contact {
	var c Contact

	if delta.X != 0 {
		target := box.X + delta.X
		l.eachSolidOverlap(sweptX(box, delta.X), func(tile geom.AABB) {
			if delta.X > 0 {
				target = math.Min(target, tile.X-box.W)
			} else {
				target = math.Max(target, tile.MaxX())
			}
			c.HitWall = true
		})
		box.X = target
	}

	if delta.Y != 0 {
		target := box.Y + delta.Y
		l.eachSolidOverlap(sweptY(box, delta.Y), func(tile geom.AABB) {
			if delta.Y > 0 {
				target = math.Min(target, tile.Y-box.H)
				c.OnGround = true
			} else {
				target = math.Max(target, tile.MaxY())
				c.HitCeiling = true
			}
		})
		box.Y = target
	}

	c.Position = geom.Vec2{X: box.X, Y: box.Y}
	return c
}

// Grounded reports whether box rests on a solid tile within a small probe
// distance below it.
func (l *Level) Grounded(box geom.AABB) bool {
	probe := box.Translate(geom.Vec2{Y: groundProbe})
	return l.anySolidOverlap(probe)
}

// sweptX extends box along the X motion so the scan covers everything the
// body would pass through.
func sweptX(box geom.AABB, dx float64) geom.AABB {
	if dx > 0 {
		box.W += dx
	} else {
		box.X += dx
		box.W -= dx
	}
	return box
}

func sweptY(box geom.AABB, dy float64) geom.AABB {
	if dy > 0 {
		box.H += dy
	} else {
		box.Y += dy
		box.H -= dy
	}
	return box
}

// eachSolidOverlap calls fn for every solid tile strictly intersecting box.
func (l *Level) eachSolidOverlap(box geom.AABB, fn func(tile geom.AABB)) {
	tx0 := int(math.Floor(box.X / l.TileSize))
	ty0 := int(math.Floor(box.Y / l.TileSize))
	tx1 := int(math.Floor(box.MaxX() / l.TileSize))
	ty1 := int(math.Floor(box.MaxY() / l.TileSize))

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			if !l.IsSolidAt(tx, ty) {
				continue
			}
			tile := l.TileBox(tx, ty)
			if box.Intersects(tile) {
				fn(tile)
			}
		}
	}
}

func (l *Level) anySolidOverlap(box geom.AABB) bool {
	found := false
	l.eachSolidOverlap(box, func(geom.AABB) { found = true })
	return found
}
