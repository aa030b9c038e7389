package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cinderpeak/ironwatch/internal/scripting"
)

// repoRoot walks up from the test's working directory to find the module root.
func repoRoot(t testing.TB) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatalf("could not find repo root from %s", wd)
		}
		root = parent
	}
}

// loadShippedScripts loads the scripts/ directory that ships with the repo.
func loadShippedScripts(t testing.TB) (*scripting.Manager, *recorder) {
	t.Helper()
	mgr, rec, _ := newTestManager(t, 0)
	require.NoError(t, mgr.LoadDir(filepath.Join(repoRoot(t), "scripts")))
	return mgr, rec
}

func TestShippedScripts_ParryCue(t *testing.T) {
	mgr, rec := loadShippedScripts(t)

	mgr.OnParry()

	assert.Equal(t, []string{"parry_clang"}, rec.cues)
	assert.Equal(t, []string{"spark"}, rec.particles)
}

func TestShippedScripts_GuardDeathDistinguishesCaptain(t *testing.T) {
	mgr, rec := loadShippedScripts(t)

	mgr.OnGuardDeath("soldier")
	mgr.OnGuardDeath("captain")

	assert.Equal(t, []string{"guard_down", "captain_down"}, rec.cues)
	assert.Equal(t, []string{"dust_burst", "dust_burst"}, rec.particles)
}

func TestShippedScripts_BossPhaseCues(t *testing.T) {
	mgr, rec := loadShippedScripts(t)

	mgr.OnBossPhase(1)
	mgr.OnBossPhase(2)

	assert.Equal(t, []string{"captain_taunt", "captain_enrage"}, rec.cues)
	assert.Equal(t, []string{"shockwave", "shockwave"}, rec.particles)
}

func TestShippedScripts_UnknownPhaseStillSpawnsShockwave(t *testing.T) {
	mgr, rec := loadShippedScripts(t)

	mgr.OnBossPhase(7)

	assert.Empty(t, rec.cues)
	assert.Equal(t, []string{"shockwave"}, rec.particles)
}

func TestShippedScripts_PlayerDeathCues(t *testing.T) {
	mgr, rec := loadShippedScripts(t)

	mgr.OnPlayerDeath("trap", "spikes")
	mgr.OnPlayerDeath("guard", "soldier")
	mgr.OnPlayerDeath("pit", "pit")

	assert.Equal(t, []string{"impaled", "player_down_guard", "player_down_pit"}, rec.cues)
}

func TestProperty_ShippedScripts_EveryPhaseSpawnsOneParticle(t *testing.T) {
	mgr, rec := loadShippedScripts(t)
	rapid.Check(t, func(rt *rapid.T) {
		before := len(rec.particles)
		phase := rapid.IntRange(0, 10).Draw(rt, "phase")
		mgr.OnBossPhase(phase)
		if len(rec.particles) != before+1 {
			rt.Fatalf("phase %d spawned %d particles, want 1", phase, len(rec.particles)-before)
		}
	})
}
