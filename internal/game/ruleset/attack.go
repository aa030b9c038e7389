package ruleset

import "fmt"

// AttackWindow is a sub-interval of an attack during which its hitbox is
// live. Start and End are offsets in seconds into elapsed attack time.
type AttackWindow struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	// Damage dealt by hits landed in this window. Zero inherits the variant
	// damage, which in turn falls back to the archetype attack damage.
	Damage        int  `yaml:"damage"`
	BypassesBlock bool `yaml:"bypasses_block"`
}

// AttackVariant is one entry of a guard's attack repertoire: a fixed total
// duration, the live windows within it, the hitbox extents, and the gates
// restricting who may use it and when.
type AttackVariant struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`
	// Damage is the default for windows that omit their own.
	Damage int `yaml:"damage"`

	// Reach and Height are the hitbox extents. The hitbox extends Reach in
	// front of the guard's facing edge.
	Reach  float64 `yaml:"reach"`
	Height float64 `yaml:"height"`

	// BossOnly restricts the variant to boss-tier archetypes.
	BossOnly bool `yaml:"boss_only"`
	// MinPhase gates the variant to boss phase >= MinPhase. Zero or one means
	// no phase gate.
	MinPhase int `yaml:"min_phase"`
	// MaxHealthFrac gates the variant to health fraction below this value.
	// Zero means no health gate.
	MaxHealthFrac float64 `yaml:"max_health_frac"`

	Windows []AttackWindow `yaml:"windows"`
}

// applyDefaults fills a missing window list with a single normal window
// spanning the middle of the attack, and inherits variant damage into
// windows that omit their own.
func (v *AttackVariant) applyDefaults() {
	if v.Reach == 0 {
		v.Reach = 1.2
	}
	if v.Height == 0 {
		v.Height = 1.0
	}
	if len(v.Windows) == 0 {
		v.Windows = []AttackWindow{{
			Start:  v.Duration * 0.35,
			End:    v.Duration * 0.65,
			Damage: v.Damage,
		}}
		return
	}
	for i := range v.Windows {
		if v.Windows[i].Damage == 0 {
			v.Windows[i].Damage = v.Damage
		}
	}
}

// Validate checks the variant invariants.
//
// Precondition: v must not be nil and applyDefaults must have run.
// Postcondition: Returns nil iff Duration is positive and every window lies
// inside [0, Duration] with Start < End; returns an error describing the
// first violation otherwise.
func (v *AttackVariant) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("attack variant: id must not be empty")
	}
	if v.Duration <= 0 {
		return fmt.Errorf("attack variant %q: duration must be positive", v.ID)
	}
	if v.MinPhase < 0 || v.MinPhase > 3 {
		return fmt.Errorf("attack variant %q: min_phase must be in [0,3], got %d", v.ID, v.MinPhase)
	}
	if v.MaxHealthFrac < 0 || v.MaxHealthFrac > 1 {
		return fmt.Errorf("attack variant %q: max_health_frac must be in [0,1], got %g", v.ID, v.MaxHealthFrac)
	}
	if v.Reach <= 0 || v.Height <= 0 {
		return fmt.Errorf("attack variant %q: reach and height must be positive", v.ID)
	}
	for i, w := range v.Windows {
		if w.Start < 0 || w.End > v.Duration || w.Start >= w.End {
			return fmt.Errorf("attack variant %q: window %d must satisfy 0 <= start < end <= duration", v.ID, i)
		}
		if w.Damage < 0 {
			return fmt.Errorf("attack variant %q: window %d damage must not be negative", v.ID, i)
		}
	}
	return nil
}

// builtinNormal returns the attack present in every repertoire, used whenever
// content supplies nothing better.
func builtinNormal() *AttackVariant {
	v := &AttackVariant{
		ID:       "normal",
		Name:     "Strike",
		Duration: 0.8,
		Damage:   5,
	}
	v.applyDefaults()
	return v
}
