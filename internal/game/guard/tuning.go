package guard

// Body extents in world units.
const (
	Width  = 0.7
	Height = 0.95
)

// Fall physics. Guards share the world's gravity but keep their own clamp.
const (
	Gravity      = 30.0
	MaxFallSpeed = 16.0
)

// Movement pacing relative to the archetype move speed.
const (
	PatrolSpeedFactor     = 0.6
	SuspiciousSpeedFactor = 0.5
	// InvestigateSlack is how close to a noise a suspicious guard walks
	// before holding position.
	InvestigateSlack = 0.2
)

// Rally activates for elite and boss archetypes below the health fraction
// threshold: retreat stops being an option, aggression climbs, and blocking
// thins out.
const (
	RallyThreshold       = 0.3
	RallyAggressionBoost = 1.5
	RallyBlockFactor     = 0.5
)

// BlockedAttackThreshold is how many block interactions with the player force
// the next attack to be a block-bypassing variant.
const BlockedAttackThreshold = 3

// Decision weight modulation. Base attack and block weights come from the
// archetype table; these factors bend them by what the player is doing.
const (
	AdvanceWeight              = 0.25
	RetreatFactor              = 0.3
	PlayerAttackingBlockBoost  = 2.0
	PlayerBlockingAttackFactor = 0.6
	UnarmedAggressionBoost     = 1.25
	UnarmedBlockFactor         = 0.5
)

// Boss phase multipliers over aggression, block chance, and move speed.
const (
	Phase2AggressionMult = 1.15
	Phase2BlockMult      = 1.1
	Phase2SpeedMult      = 1.1

	Phase3AggressionMult = 1.35
	Phase3BlockMult      = 0.8
	Phase3SpeedMult      = 1.25
)
