package ruleset_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cinderpeak/ironwatch/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadArchetypes_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "watcher.yaml"), `
id: watcher
name: "Wall Watcher"
description: "A rampart sentry with a long sightline."
max_health: 40
move_speed: 2.2
attack_damage: 6
aggression: 0.5
block_chance: 0.3
reaction_time: 0.4
vision_range: 10
hearing_range: 6
combat_range: 1.5
armor: mid
can_block: true
stagger_every: 4
attacks:
  - normal
`)
	archetypes, err := ruleset.LoadArchetypes(dir)
	require.NoError(t, err)
	require.Len(t, archetypes, 1)
	a := archetypes[0]
	assert.Equal(t, "watcher", a.ID)
	assert.Equal(t, "Wall Watcher", a.Name)
	assert.Equal(t, 40, a.MaxHealth)
	assert.Equal(t, ruleset.ArmorMid, a.Armor)
	assert.Equal(t, 4, a.StaggerEvery)
	assert.True(t, a.CanBlock)
	assert.Equal(t, []string{"normal"}, a.Attacks)
}

func TestLoadArchetypes_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "minimal.yaml"), `
id: minimal
name: "Minimal"
max_health: 10
move_speed: 1.5
`)
	archetypes, err := ruleset.LoadArchetypes(dir)
	require.NoError(t, err)
	require.Len(t, archetypes, 1)
	a := archetypes[0]
	assert.Equal(t, ruleset.ArmorNone, a.Armor)
	assert.Greater(t, a.SuspicionTimeout, 0.0)
	assert.Greater(t, a.BlockDuration, 0.0)
	assert.Greater(t, a.StunDuration, 0.0)
	assert.Greater(t, a.DeathDuration, 0.0)
	assert.Equal(t, []string{"normal"}, a.Attacks, "empty repertoire must default to the normal attack")
}

func TestLoadArchetypes_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
id: bad
name: "Bad"
max_health: 0
move_speed: 2
`)
	_, err := ruleset.LoadArchetypes(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_health")
}

func TestLoadArchetypes_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `{{{ not yaml`)
	_, err := ruleset.LoadArchetypes(dir)
	require.Error(t, err)
}

func TestLoadArchetypes_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	archetypes, err := ruleset.LoadArchetypes(dir)
	require.NoError(t, err)
	assert.Empty(t, archetypes)
}

func TestLoadVariants_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lunge.yaml"), `
id: lunge
name: "Lunge"
duration: 1.2
damage: 7
reach: 2.0
windows:
  - start: 0.6
    end: 0.9
`)
	variants, err := ruleset.LoadVariants(dir)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	v := variants[0]
	assert.Equal(t, "lunge", v.ID)
	assert.Equal(t, 1.2, v.Duration)
	require.Len(t, v.Windows, 1)
	assert.Equal(t, 7, v.Windows[0].Damage, "window must inherit variant damage")
	assert.False(t, v.Windows[0].BypassesBlock)
}

func TestLoadVariants_MissingWindowsDefaultsToSingleWindow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "plain.yaml"), `
id: plain
name: "Plain"
duration: 1.0
damage: 4
`)
	variants, err := ruleset.LoadVariants(dir)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	v := variants[0]
	require.Len(t, v.Windows, 1)
	w := v.Windows[0]
	assert.Greater(t, w.Start, 0.0)
	assert.Less(t, w.End, v.Duration)
	assert.Less(t, w.Start, w.End)
	assert.Equal(t, 4, w.Damage)
}

func TestLoadVariants_RejectsWindowOutsideDuration(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
id: bad
name: "Bad"
duration: 0.5
windows:
  - start: 0.2
    end: 0.9
`)
	_, err := ruleset.LoadVariants(dir)
	require.Error(t, err)
}

func TestLoadDir_BuildsRegistry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "archetypes"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "attacks"), 0755))
	writeFile(t, filepath.Join(root, "archetypes", "sentry.yaml"), `
id: sentry
name: "Sentry"
max_health: 25
move_speed: 2.0
attacks: [jab]
`)
	writeFile(t, filepath.Join(root, "attacks", "jab.yaml"), `
id: jab
name: "Jab"
duration: 0.6
damage: 3
`)
	reg, err := ruleset.LoadDir(root)
	require.NoError(t, err)
	assert.True(t, reg.Known("sentry"))
	_, ok := reg.Variant("jab")
	assert.True(t, ok)
}

func TestLoadDir_RejectsDanglingAttackReference(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "archetypes"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "attacks"), 0755))
	writeFile(t, filepath.Join(root, "archetypes", "sentry.yaml"), `
id: sentry
name: "Sentry"
max_health: 25
move_speed: 2.0
attacks: [haymaker]
`)
	_, err := ruleset.LoadDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "haymaker")
}

// Property: every loaded archetype passes Validate after defaults.
func TestLoadArchetypes_AllValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		hp := rapid.IntRange(10, 200).Draw(rt, "hp")
		dir := t.TempDir()
		for i := 0; i < n; i++ {
			content := fmt.Sprintf(`
id: guard_%d
name: "Guard %d"
max_health: %d
move_speed: 2.0
`, i, i, hp)
			fname := filepath.Join(dir, fmt.Sprintf("guard_%d.yaml", i))
			if err := os.WriteFile(fname, []byte(content), 0644); err != nil {
				rt.Fatal(err)
			}
		}
		archetypes, err := ruleset.LoadArchetypes(dir)
		if err != nil {
			rt.Fatal(err)
		}
		for _, a := range archetypes {
			if err := a.Validate(); err != nil {
				rt.Fatalf("loaded archetype failed validation: %v", err)
			}
		}
	})
}

func TestLoadDir_ActualContent(t *testing.T) {
	reg, err := ruleset.LoadDir("../../../content")
	require.NoError(t, err)

	for _, id := range []string{"recruit", "soldier", "veteran", "captain", "shadow"} {
		assert.True(t, reg.Known(id), "missing archetype %q", id)
	}
	for _, id := range []string{"normal", "double", "bash", "charge", "spin"} {
		_, ok := reg.Variant(id)
		assert.True(t, ok, "missing attack variant %q", id)
	}

	recruit := reg.Archetype("recruit")
	assert.Equal(t, ruleset.ArmorNone, recruit.Armor)
	assert.Greater(t, recruit.KnockoutRecovery, 0.0, "recruit must recover from knockout")

	shadow := reg.Archetype("shadow")
	assert.True(t, shadow.BossTier)
	assert.InDelta(t, 0.7, shadow.Phase2Below, 1e-9)
	assert.InDelta(t, 0.3, shadow.Phase3Below, 1e-9)

	captain := reg.Archetype("captain")
	assert.True(t, captain.Elite)
	assert.Equal(t, ruleset.ArmorHeavy, captain.Armor)

	bash, ok := reg.Variant("bash")
	require.True(t, ok)
	require.NotEmpty(t, bash.Windows)
	assert.True(t, bash.Windows[0].BypassesBlock, "bash must bypass block")

	double, ok := reg.Variant("double")
	require.True(t, ok)
	assert.True(t, double.BossOnly)
	assert.InDelta(t, 0.6, double.MaxHealthFrac, 1e-9)
	assert.Len(t, double.Windows, 2, "double must carry two windows")

	charge, ok := reg.Variant("charge")
	require.True(t, ok)
	assert.Equal(t, 2, charge.MinPhase)

	spin, ok := reg.Variant("spin")
	require.True(t, ok)
	assert.Equal(t, 3, spin.MinPhase)
	assert.GreaterOrEqual(t, len(spin.Windows), 2, "spin must hit more than once")
}
