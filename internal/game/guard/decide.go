package guard

import (
	"github.com/cinderpeak/ironwatch/internal/game/rng"
	"github.com/cinderpeak/ironwatch/internal/game/ruleset"
	"github.com/cinderpeak/ironwatch/internal/game/sense"
)

// decide runs one combat decision: attack, block, retreat, or advance.
// Weights come from the archetype table bent by rally, boss phase, and what
// the player is doing; the roll is a cumulative-weight pick against the
// injected source, so a seeded guard replays the same fight.
func (g *Guard) decide(snap sense.Snapshot) {
	if g.blockedCount >= BlockedAttackThreshold {
		if v := g.bypassingVariant(); v != nil {
			g.blockedCount = 0
			g.beginAttack(v)
			return
		}
	}

	agg := g.arch.Aggression * g.phaseAggressionMult()
	blk := g.arch.BlockChance * g.phaseBlockMult()
	if g.Rallying() {
		agg *= RallyAggressionBoost
		if agg > 1 {
			agg = 1
		}
		blk *= RallyBlockFactor
	}
	if !snap.HasWeapon {
		agg *= UnarmedAggressionBoost
		blk *= UnarmedBlockFactor
	}
	if snap.Blocking {
		agg *= PlayerBlockingAttackFactor
	}

	attackW := agg
	blockW := 0.0
	if g.arch.CanBlock {
		blockW = blk
		if snap.Attacking {
			blockW *= PlayerAttackingBlockBoost
		}
	}
	retreatW := (1 - g.arch.Aggression) * RetreatFactor
	if g.Rallying() {
		retreatW = 0
	}

	switch rng.Pick(g.src, []float64{attackW, blockW, retreatW, AdvanceWeight}) {
	case 0:
		g.beginAttack(g.chooseVariant())
	case 1:
		g.transitionTo(StateBlocking)
	case 2:
		g.transitionTo(StateRetreating)
	default:
		g.plan = planAdvance
	}
}

func (g *Guard) phaseAggressionMult() float64 {
	switch g.phase {
	case 2:
		return Phase2AggressionMult
	case 3:
		return Phase3AggressionMult
	default:
		return 1
	}
}

func (g *Guard) phaseBlockMult() float64 {
	switch g.phase {
	case 2:
		return Phase2BlockMult
	case 3:
		return Phase3BlockMult
	default:
		return 1
	}
}

// eligible reports whether the variant's gates pass for this guard right now.
func (g *Guard) eligible(v *ruleset.AttackVariant) bool {
	if v.BossOnly && !g.arch.BossTier {
		return false
	}
	if v.MinPhase > 1 && g.phase < v.MinPhase {
		return false
	}
	if v.MaxHealthFrac > 0 && g.HealthFraction() >= v.MaxHealthFrac {
		return false
	}
	return true
}

// chooseVariant picks uniformly among the currently eligible repertoire.
//
// Postcondition: Never returns nil; with no eligible variant the first
// repertoire entry is used so the guard can always swing.
func (g *Guard) chooseVariant() *ruleset.AttackVariant {
	eligible := make([]*ruleset.AttackVariant, 0, len(g.repertoire))
	for _, v := range g.repertoire {
		if g.eligible(v) {
			eligible = append(eligible, v)
		}
	}
	if len(eligible) == 0 {
		return g.repertoire[0]
	}
	return eligible[g.src.Intn(len(eligible))]
}

// bypassingVariant returns the first eligible variant with a block-bypassing
// window, or nil.
func (g *Guard) bypassingVariant() *ruleset.AttackVariant {
	for _, v := range g.repertoire {
		if !g.eligible(v) {
			continue
		}
		for _, w := range v.Windows {
			if w.BypassesBlock {
				return v
			}
		}
	}
	return nil
}

func (g *Guard) beginAttack(v *ruleset.AttackVariant) {
	g.transitionTo(StateAttacking)
	g.attack = v
}
