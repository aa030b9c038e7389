// Package world provides the tile map model, the solidity queries used by
// perception and collision, and resolution of moving bodies against solid
// tiles.
package world

import (
	"fmt"
	"math"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
)

// Hazard classifies a lethal open tile.
type Hazard uint8

const (
	HazardNone Hazard = iota
	// HazardSpikes kills a body that touches the tile.
	HazardSpikes
	// HazardPit kills a body that falls into the tile.
	HazardPit
)

// SpawnPoint places one guard in a level.
type SpawnPoint struct {
	// Archetype is the stat table key. Unknown keys resolve to the default
	// table at spawn time.
	Archetype string
	// Position is the guard's starting min corner in world units.
	Position geom.Vec2
	// PatrolMin and PatrolMax bound the patrol walk on the X axis.
	PatrolMin float64
	PatrolMax float64
}

// Level is a loaded tile map plus its entity placements.
type Level struct {
	// ID uniquely identifies this level.
	ID string
	// Name is the display name of the level.
	Name string
	// TileSize is the edge length of one tile in world units.
	TileSize float64
	// Width and Height are the map extents in tiles.
	Width  int
	Height int

	// PlayerStart is the player's min corner at level load.
	PlayerStart geom.Vec2
	// Checkpoints are respawn positions, in level order.
	Checkpoints []geom.Vec2
	// Spawns lists the guards populating this level.
	Spawns []SpawnPoint

	solid   [][]bool
	hazards [][]Hazard
}

// IsSolidAt reports whether the tile at (tx, ty) is solid. Coordinates
// outside the defined map read as solid so nothing escapes past the bounds.
//
// Postcondition: Returns true for every out-of-range coordinate.
func (l *Level) IsSolidAt(tx, ty int) bool {
	if tx < 0 || ty < 0 || tx >= l.Width || ty >= l.Height {
		return true
	}
	return l.solid[ty][tx]
}

// SolidAtWorld reports tile solidity at a world-space point.
//
// Precondition: TileSize > 0.
func (l *Level) SolidAtWorld(x, y float64) bool {
	return l.IsSolidAt(int(math.Floor(x/l.TileSize)), int(math.Floor(y/l.TileSize)))
}

func (l *Level) hazardAtWorld(x, y float64) Hazard {
	return l.HazardAt(int(math.Floor(x/l.TileSize)), int(math.Floor(y/l.TileSize)))
}

// HazardAt reports the hazard on the tile at (tx, ty). Out-of-range
// coordinates carry no hazard; they already read as solid.
func (l *Level) HazardAt(tx, ty int) Hazard {
	if tx < 0 || ty < 0 || tx >= l.Width || ty >= l.Height {
		return HazardNone
	}
	return l.hazards[ty][tx]
}

// HazardIn scans the tiles a body overlaps and returns the first hazard
// found, row-major. HazardNone means the volume is safe.
func (l *Level) HazardIn(box geom.AABB) Hazard {
	tx0 := int(math.Floor(box.X / l.TileSize))
	ty0 := int(math.Floor(box.Y / l.TileSize))
	tx1 := int(math.Floor(box.MaxX() / l.TileSize))
	ty1 := int(math.Floor(box.MaxY() / l.TileSize))

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			h := l.HazardAt(tx, ty)
			if h == HazardNone {
				continue
			}
			if box.Intersects(l.TileBox(tx, ty)) {
				return h
			}
		}
	}
	return HazardNone
}

// TileBox returns the world-space rectangle of the tile at (tx, ty).
func (l *Level) TileBox(tx, ty int) geom.AABB {
	return geom.AABB{
		X: float64(tx) * l.TileSize,
		Y: float64(ty) * l.TileSize,
		W: l.TileSize,
		H: l.TileSize,
	}
}

// Validate checks the level invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first
// violation.
func (l *Level) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("level ID must not be empty")
	}
	if l.Name == "" {
		return fmt.Errorf("level %q: name must not be empty", l.ID)
	}
	if l.TileSize <= 0 {
		return fmt.Errorf("level %q: tile_size must be positive", l.ID)
	}
	if l.Width < 1 || l.Height < 1 {
		return fmt.Errorf("level %q: map must contain at least one row and column", l.ID)
	}
	for y, row := range l.solid {
		if len(row) != l.Width {
			return fmt.Errorf("level %q: row %d width %d does not match map width %d", l.ID, y, len(row), l.Width)
		}
	}
	if l.SolidAtWorld(l.PlayerStart.X, l.PlayerStart.Y) {
		return fmt.Errorf("level %q: player_start is inside a solid tile", l.ID)
	}
	if l.hazardAtWorld(l.PlayerStart.X, l.PlayerStart.Y) != HazardNone {
		return fmt.Errorf("level %q: player_start is inside a hazard tile", l.ID)
	}
	for i, cp := range l.Checkpoints {
		if l.SolidAtWorld(cp.X, cp.Y) {
			return fmt.Errorf("level %q: checkpoint %d is inside a solid tile", l.ID, i)
		}
		if l.hazardAtWorld(cp.X, cp.Y) != HazardNone {
			return fmt.Errorf("level %q: checkpoint %d is inside a hazard tile", l.ID, i)
		}
	}
	for i, s := range l.Spawns {
		if s.Archetype == "" {
			return fmt.Errorf("level %q: spawn %d archetype must not be empty", l.ID, i)
		}
		if l.SolidAtWorld(s.Position.X, s.Position.Y) {
			return fmt.Errorf("level %q: spawn %d is inside a solid tile", l.ID, i)
		}
		if s.PatrolMin > s.PatrolMax {
			return fmt.Errorf("level %q: spawn %d patrol_min exceeds patrol_max", l.ID, i)
		}
		if s.Position.X < s.PatrolMin || s.Position.X > s.PatrolMax {
			return fmt.Errorf("level %q: spawn %d position lies outside its patrol bounds", l.ID, i)
		}
	}
	return nil
}
