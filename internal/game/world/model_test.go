package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/world"
)

const tinyLevel = `
level:
  id: tiny
  name: "Tiny"
  tile_size: 1.0
  rows:
    - "#####"
    - "#...#"
    - "#...#"
    - "#####"
  player_start: { x: 1.5, y: 1.5 }
`

func loadLevel(t testing.TB, src string) *world.Level {
	t.Helper()
	l, err := world.LoadLevelFromBytes([]byte(src))
	require.NoError(t, err)
	return l
}

func TestIsSolidAt_InsideMap(t *testing.T) {
	l := loadLevel(t, tinyLevel)
	assert.True(t, l.IsSolidAt(0, 0))
	assert.False(t, l.IsSolidAt(1, 1))
	assert.False(t, l.IsSolidAt(3, 2))
	assert.True(t, l.IsSolidAt(4, 3))
}

func TestIsSolidAt_OutOfRangeIsSolid(t *testing.T) {
	l := loadLevel(t, tinyLevel)
	assert.True(t, l.IsSolidAt(-1, 1))
	assert.True(t, l.IsSolidAt(1, -1))
	assert.True(t, l.IsSolidAt(5, 1))
	assert.True(t, l.IsSolidAt(1, 4))
	assert.True(t, l.IsSolidAt(1000, 1000))
}

func TestSolidAtWorld(t *testing.T) {
	l := loadLevel(t, tinyLevel)
	assert.True(t, l.SolidAtWorld(0.5, 0.5))
	assert.False(t, l.SolidAtWorld(1.5, 1.5))
	assert.True(t, l.SolidAtWorld(-3.7, 1.5))
	assert.True(t, l.SolidAtWorld(2.0, 99.0))
}

func TestTileBox(t *testing.T) {
	l := loadLevel(t, tinyLevel)
	box := l.TileBox(2, 1)
	assert.Equal(t, 2.0, box.X)
	assert.Equal(t, 1.0, box.Y)
	assert.Equal(t, 1.0, box.W)
	assert.Equal(t, 1.0, box.H)
}

const hazardLevel = `
level:
  id: gauntlet
  name: "Gauntlet"
  tile_size: 1.0
  rows:
    - "######"
    - "#....#"
    - "#.^.~#"
    - "######"
  player_start: { x: 1.5, y: 1.5 }
`

func TestHazardAt(t *testing.T) {
	l := loadLevel(t, hazardLevel)
	assert.Equal(t, world.HazardSpikes, l.HazardAt(2, 2))
	assert.Equal(t, world.HazardPit, l.HazardAt(4, 2))
	assert.Equal(t, world.HazardNone, l.HazardAt(1, 2))
	assert.Equal(t, world.HazardNone, l.HazardAt(-1, 2), "out of range carries no hazard")
	assert.Equal(t, world.HazardNone, l.HazardAt(2, 99))
}

func TestHazardIn(t *testing.T) {
	l := loadLevel(t, hazardLevel)

	body := geom.AABB{X: 1.1, Y: 1.1, W: 0.6, H: 0.8}
	assert.Equal(t, world.HazardNone, l.HazardIn(body), "open tiles are safe")

	onSpikes := geom.AABB{X: 2.2, Y: 2.1, W: 0.6, H: 0.8}
	assert.Equal(t, world.HazardSpikes, l.HazardIn(onSpikes))

	edgeTouch := geom.AABB{X: 1.4, Y: 2.1, W: 0.6, H: 0.8}
	assert.Equal(t, world.HazardNone, l.HazardIn(edgeTouch),
		"a shared edge does not count as overlap")

	intoPit := geom.AABB{X: 4.15, Y: 2.3, W: 0.6, H: 0.8}
	assert.Equal(t, world.HazardPit, l.HazardIn(intoPit))
}

// Property: solidity queries are total over the full integer plane.
func TestIsSolidAt_Property_Total(t *testing.T) {
	l := loadLevel(t, tinyLevel)
	rapid.Check(t, func(rt *rapid.T) {
		tx := rapid.IntRange(-1000, 1000).Draw(rt, "tx")
		ty := rapid.IntRange(-1000, 1000).Draw(rt, "ty")
		got := l.IsSolidAt(tx, ty)
		if tx < 0 || ty < 0 || tx >= l.Width || ty >= l.Height {
			assert.True(rt, got, "out-of-range (%d,%d) must read solid", tx, ty)
		}
	})
}
