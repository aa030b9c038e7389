package player

// Body extents in world units (tiles).
const (
	Width  = 0.6
	Height = 0.8
)

// Locomotion. Velocity is set directly from input; only gravity integrates.
const (
	MoveSpeed    = 6.0
	JumpVelocity = -11.0
	Gravity      = 30.0
	MaxFallSpeed = 16.0
)

// Responsiveness grace windows, in seconds.
const (
	CoyoteTime     = 0.10
	JumpBufferTime = 0.12
	JumpCutFactor  = 0.45
)

// Attack timing and shape per mode. Window offsets are into elapsed attack
// state time.
const (
	UnarmedAttackDuration = 0.25
	UnarmedWindowStart    = 0.05
	UnarmedWindowEnd      = 0.20
	UnarmedDamage         = 5.0
	UnarmedHitboxWidth    = 0.5
	UnarmedHitboxHeight   = 0.5

	WeaponAttackDuration = 0.35
	WeaponWindowStart    = 0.10
	WeaponWindowEnd      = 0.30
	WeaponDamage         = 10.0
	WeaponHitboxWidth    = 0.9
	WeaponHitboxHeight   = 0.7
)

// Defensive actions.
const (
	BlockDuration = 0.5

	DashDuration = 0.18
	DashCooldown = 0.8
	DashSpeed    = 14.0
)

// Damage sequencing.
const (
	HurtDuration    = 0.3
	HitInvulnTime   = 1.0
	DyingDuration   = 1.0
	CombatIdleDecay = 1.2
)

// Health and capability effects.
const (
	BaseMaxHealth     = 10.0
	HeartBonus        = 5.0
	ArmorDamageFactor = 0.5
)
