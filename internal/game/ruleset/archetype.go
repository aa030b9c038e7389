// Package ruleset provides the data tables that drive guard behavior:
// archetype stat blocks, attack variants, and their YAML loaders. Behavior
// code consults these tables through a Registry; unknown archetype keys fall
// back to a built-in default so lookups never fail at run time.
package ruleset

import (
	"fmt"
)

// ArmorTier classifies how an archetype responds to unarmed hits.
type ArmorTier string

const (
	// ArmorNone takes full unarmed effect, including knockout conversion.
	ArmorNone ArmorTier = "none"
	// ArmorMid takes no unarmed damage but staggers every Nth unarmed hit.
	ArmorMid ArmorTier = "mid"
	// ArmorHeavy ignores unarmed hits entirely.
	ArmorHeavy ArmorTier = "heavy"
)

// Archetype is the stat table for one guard variant. All behavior differences
// between guard kinds flow through these fields plus the capability flags;
// state machine code holds no per-archetype branches beyond knockout
// conversion and boss rally/phase handling.
type Archetype struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	MaxHealth    int     `yaml:"max_health"`
	MoveSpeed    float64 `yaml:"move_speed"`    // world units per second
	AttackDamage int     `yaml:"attack_damage"` // default for windows that omit damage

	Aggression   float64 `yaml:"aggression"`    // base attack weight in [0,1]
	BlockChance  float64 `yaml:"block_chance"`  // base block weight in [0,1]
	ReactionTime float64 `yaml:"reaction_time"` // seconds between combat decisions

	VisionRange  float64 `yaml:"vision_range"`
	VisionBand   float64 `yaml:"vision_band"` // vertical half-band for line of sight
	HearingRange float64 `yaml:"hearing_range"`
	CombatRange  float64 `yaml:"combat_range"`

	Armor    ArmorTier `yaml:"armor"`
	CanBlock bool      `yaml:"can_block"`
	Elite    bool      `yaml:"elite"`     // rallies below the rally threshold
	BossTier bool      `yaml:"boss_tier"` // phases, rally, and boss-only variants

	// StaggerEvery is the number of unarmed hits per stagger on mid armor.
	StaggerEvery int `yaml:"stagger_every"`
	// KnockoutRecovery is the knocked-out duration in seconds. Positive only
	// for the weakest tier; zero disables knockout conversion.
	KnockoutRecovery float64 `yaml:"knockout_recovery"`

	SuspicionTimeout float64 `yaml:"suspicion_timeout"`
	BlockDuration    float64 `yaml:"block_duration"`
	StunDuration     float64 `yaml:"stun_duration"`
	RetreatDuration  float64 `yaml:"retreat_duration"`
	DeathDuration    float64 `yaml:"death_duration"`

	// Phase2Below and Phase3Below are the health fractions that open boss
	// phases 2 and 3. Ignored unless BossTier.
	Phase2Below float64 `yaml:"phase_2_below"`
	Phase3Below float64 `yaml:"phase_3_below"`

	// Attacks is the unlocked attack variant repertoire, by variant ID.
	Attacks []string `yaml:"attacks"`
}

// applyDefaults fills zero-valued tuning fields with workable values so
// content files only need to state what differs.
func (a *Archetype) applyDefaults() {
	if a.Armor == "" {
		a.Armor = ArmorNone
	}
	if a.VisionBand == 0 {
		a.VisionBand = 1.0
	}
	if a.SuspicionTimeout == 0 {
		a.SuspicionTimeout = 2.5
	}
	if a.BlockDuration == 0 {
		a.BlockDuration = 0.6
	}
	if a.StunDuration == 0 {
		a.StunDuration = 0.8
	}
	if a.RetreatDuration == 0 {
		a.RetreatDuration = 0.7
	}
	if a.DeathDuration == 0 {
		a.DeathDuration = 1.0
	}
	if a.Armor == ArmorMid && a.StaggerEvery == 0 {
		a.StaggerEvery = 3
	}
	if a.BossTier {
		if a.Phase2Below == 0 {
			a.Phase2Below = 0.7
		}
		if a.Phase3Below == 0 {
			a.Phase3Below = 0.3
		}
	}
	if len(a.Attacks) == 0 {
		a.Attacks = []string{"normal"}
	}
}

// Validate checks the stat table invariants.
//
// Precondition: a must not be nil.
// Postcondition: Returns nil iff every field is in range; returns an error
// describing the first violation otherwise.
func (a *Archetype) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("archetype: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("archetype %q: name must not be empty", a.ID)
	}
	if a.MaxHealth < 1 {
		return fmt.Errorf("archetype %q: max_health must be >= 1", a.ID)
	}
	if a.MoveSpeed <= 0 {
		return fmt.Errorf("archetype %q: move_speed must be positive", a.ID)
	}
	if a.Aggression < 0 || a.Aggression > 1 {
		return fmt.Errorf("archetype %q: aggression must be in [0,1], got %g", a.ID, a.Aggression)
	}
	if a.BlockChance < 0 || a.BlockChance > 1 {
		return fmt.Errorf("archetype %q: block_chance must be in [0,1], got %g", a.ID, a.BlockChance)
	}
	if a.ReactionTime < 0 {
		return fmt.Errorf("archetype %q: reaction_time must not be negative", a.ID)
	}
	if a.VisionRange < 0 || a.HearingRange < 0 || a.CombatRange < 0 {
		return fmt.Errorf("archetype %q: perception ranges must not be negative", a.ID)
	}
	switch a.Armor {
	case ArmorNone, ArmorMid, ArmorHeavy:
	default:
		return fmt.Errorf("archetype %q: armor must be one of [none, mid, heavy], got %q", a.ID, a.Armor)
	}
	if a.Armor == ArmorMid && a.StaggerEvery < 1 {
		return fmt.Errorf("archetype %q: stagger_every must be >= 1 for mid armor", a.ID)
	}
	if a.KnockoutRecovery < 0 {
		return fmt.Errorf("archetype %q: knockout_recovery must not be negative", a.ID)
	}
	if a.BossTier {
		if a.Phase3Below <= 0 || a.Phase2Below >= 1 || a.Phase3Below >= a.Phase2Below {
			return fmt.Errorf("archetype %q: phase thresholds must satisfy 0 < phase_3_below < phase_2_below < 1", a.ID)
		}
	}
	return nil
}

// DefaultArchetype returns the built-in stat table used when an unrecognized
// archetype key is requested.
//
// Postcondition: The returned archetype passes Validate and its repertoire is
// exactly the built-in normal attack.
func DefaultArchetype() *Archetype {
	a := &Archetype{
		ID:           "default",
		Name:         "Watch Guard",
		MaxHealth:    30,
		MoveSpeed:    2.0,
		AttackDamage: 5,
		Aggression:   0.45,
		BlockChance:  0.2,
		ReactionTime: 0.5,
		VisionRange:  8,
		HearingRange: 5,
		CombatRange:  1.6,
		Armor:        ArmorMid,
		CanBlock:     true,
	}
	a.applyDefaults()
	return a
}
