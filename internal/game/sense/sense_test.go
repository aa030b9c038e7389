package sense_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinderpeak/ironwatch/internal/game/geom"
	"github.com/cinderpeak/ironwatch/internal/game/sense"
)

type fakeSource struct {
	center    geom.Vec2
	attacking bool
	blocking  bool
	noisy     bool
	hasWeapon bool
}

func (f *fakeSource) Center() geom.Vec2 { return f.center }
func (f *fakeSource) Attacking() bool   { return f.attacking }
func (f *fakeSource) Blocking() bool    { return f.blocking }
func (f *fakeSource) Noisy() bool       { return f.noisy }
func (f *fakeSource) HasWeapon() bool   { return f.hasWeapon }

func TestCapture_CopiesAllFields(t *testing.T) {
	src := &fakeSource{
		center:    geom.Vec2{X: 3.5, Y: 8.25},
		attacking: true,
		noisy:     true,
	}

	snap := sense.Capture(src)

	assert.Equal(t, geom.Vec2{X: 3.5, Y: 8.25}, snap.PlayerPos)
	assert.True(t, snap.Attacking)
	assert.False(t, snap.Blocking)
	assert.True(t, snap.Noisy)
	assert.False(t, snap.HasWeapon)
}

func TestCapture_SnapshotIsDetached(t *testing.T) {
	src := &fakeSource{center: geom.Vec2{X: 1, Y: 2}, blocking: true}
	snap := sense.Capture(src)

	// Mutating the source after capture must not reach the snapshot.
	src.center = geom.Vec2{X: 9, Y: 9}
	src.blocking = false

	assert.Equal(t, geom.Vec2{X: 1, Y: 2}, snap.PlayerPos)
	assert.True(t, snap.Blocking)
}

func TestCapture_NilSourcePanics(t *testing.T) {
	assert.PanicsWithValue(t, "sense.Capture: src must not be nil", func() {
		sense.Capture(nil)
	})
}
