// Package combat resolves attacks, contested grapple and shove checks,
// opportunity attacks, the per-turn action economy, and initiative.
//
// Every function takes combatants by value and returns updated copies; the
// caller turns before/after pairs into StateChanges with effects.Diff.
// Draws are taken from the Source in a fixed order that each function
// documents, so a queued Source reproduces an exact sequence.
package combat

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/types"
)

// Cover is the obstruction between attacker and defender.
type Cover string

const (
	CoverNone          Cover = "none"
	CoverHalf          Cover = "half"
	CoverThreeQuarters Cover = "three-quarters"
	CoverFull          Cover = "full"
)

// ParseCover maps a name to a Cover. The empty string is CoverNone.
func ParseCover(s string) (Cover, bool) {
	switch Cover(s) {
	case "", CoverNone:
		return CoverNone, true
	case CoverHalf, CoverThreeQuarters, CoverFull:
		return Cover(s), true
	case "three_quarters", "three quarters":
		return CoverThreeQuarters, true
	}
	return "", false
}

// Bonus returns the AC bonus granted by c. Full cover has no bonus because
// it blocks the attack outright.
func (c Cover) Bonus() int {
	switch c {
	case CoverHalf:
		return 2
	case CoverThreeQuarters:
		return 5
	}
	return 0
}

// Blocks reports whether c makes the defender untargetable.
func (c Cover) Blocks() bool {
	return c == CoverFull
}

// DefaultDamage is rolled when a combatant has no damage notation.
const DefaultDamage = "1d4"

// Attack describes one weapon attack.
type Attack struct {
	Attacker types.Combatant
	Defender types.Combatant
	Cover    Cover
	Ranged   bool
	// Finesse uses the better of STR and DEX for melee.
	Finesse bool
	OffHand bool
	// Untrained drops the proficiency bonus from the attack roll.
	Untrained bool
	// Advantage and Disadvantage add sources beyond the conditions the
	// resolver derives itself.
	Advantage    bool
	Disadvantage bool
}

// AttackResult is the outcome of Resolve.
type AttackResult struct {
	Hit      bool
	Critical bool
	Fumble   bool
	// AutoMiss is set when full cover blocked the attack before any roll.
	AutoMiss   bool
	Mode       dice.Mode
	TargetAC   int
	Roll       *dice.D20Result
	DamageRoll *dice.Result
	Damage     int
	Message    string
}

// Adjacent reports whether two combatants are within 5 feet (one tile).
func Adjacent(a, b types.Combatant) bool {
	dx := a.Position.X - b.Position.X
	dy := a.Position.Y - b.Position.Y
	return abs(dx) <= 1 && abs(dy) <= 1
}

// AttackMode derives the advantage mode of an attack from conditions,
// positioning, and the extra sources on the attack.
func AttackMode(a Attack) dice.Mode {
	adv, dis := a.Advantage, a.Disadvantage

	if a.Defender.Conditions.Has(types.CondProne) {
		if a.Ranged {
			dis = true
		} else {
			adv = true
		}
	}
	if a.Defender.Conditions.Has(types.CondUnconscious) || a.Defender.Conditions.Has(types.CondRestrained) {
		adv = true
	}
	if a.Attacker.Conditions.Has(types.CondProne) || a.Attacker.Conditions.Has(types.CondRestrained) {
		dis = true
	}
	if a.Ranged && Adjacent(a.Attacker, a.Defender) {
		dis = true
	}
	if a.Attacker.Conditions.Has(types.CondHidden) {
		adv = true
	}

	return dice.ModeFor(adv, dis)
}

// AbilityModifier returns the ability modifier used for the attack roll.
func AbilityModifier(a Attack) int {
	switch {
	case a.Ranged:
		return a.Attacker.DexMod
	case a.Finesse:
		return max(a.Attacker.StrMod, a.Attacker.DexMod)
	default:
		return a.Attacker.StrMod
	}
}

// Resolve rolls an attack. Draw order is the attack d20 (two draws under
// advantage or disadvantage) followed by the damage dice on a hit. Full
// cover returns a miss without drawing. The only error is an invalid damage
// notation, which is reported before anything is drawn.
func Resolve(a Attack, src dice.Source) (AttackResult, error) {
	notation := a.Attacker.Stats.Damage
	if notation == "" {
		notation = DefaultDamage
	}
	if _, err := dice.Parse(notation); err != nil {
		return AttackResult{}, fmt.Errorf("attack by %s: %w", a.Attacker.ID, err)
	}

	mode := AttackMode(a)
	res := AttackResult{
		Mode:     mode,
		TargetAC: a.Defender.Stats.ArmorClass + a.Cover.Bonus(),
	}

	if a.Cover.Blocks() {
		res.AutoMiss = true
		res.Message = fmt.Sprintf("%s has full cover; %s cannot target it.", a.Defender.Name, a.Attacker.Name)
		return res, nil
	}

	abilityMod := AbilityModifier(a)
	prof := a.Attacker.ProficiencyBonus
	if a.Untrained {
		prof = 0
	}
	roll := dice.RollD20(dice.D20Options{Mode: mode, AbilityModifier: abilityMod, ProficiencyBonus: prof}, src)
	res.Roll = &roll

	switch {
	case roll.Critical:
		res.Hit, res.Critical = true, true
	case roll.Fumble:
		res.Fumble = true
		res.Message = fmt.Sprintf("%s fumbles the attack against %s.", a.Attacker.Name, a.Defender.Name)
		return res, nil
	case roll.Total >= res.TargetAC:
		res.Hit = true
	default:
		res.Message = fmt.Sprintf("%s misses %s (%d vs AC %d).", a.Attacker.Name, a.Defender.Name, roll.Total, res.TargetAC)
		return res, nil
	}

	dmg, err := dice.RollDamage(notation, res.Critical, src)
	if err != nil {
		return AttackResult{}, err
	}
	res.DamageRoll = &dmg
	res.Damage = max(0, dmg.Total)
	if a.OffHand && abilityMod > 0 {
		res.Damage = max(1, dmg.Total-abilityMod)
	}

	if res.Critical {
		res.Message = fmt.Sprintf("%s critically hits %s for %d damage!", a.Attacker.Name, a.Defender.Name, res.Damage)
	} else {
		res.Message = fmt.Sprintf("%s hits %s for %d damage (%d vs AC %d).", a.Attacker.Name, a.Defender.Name, res.Damage, roll.Total, res.TargetAC)
	}
	return res, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
