package combat

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/types"
)

// ShoveMode selects the effect of a successful shove.
type ShoveMode string

const (
	ShoveProne ShoveMode = "prone"
	ShovePush  ShoveMode = "push"
)

// ContestResult is the outcome of a grapple or shove. Attacker and Defender
// hold the updated combatants; they equal the inputs when the contest fails.
// DefenderRoll is the better of the defender's two checks.
type ContestResult struct {
	Success       bool
	AttackerRoll  dice.D20Result
	DefenderRoll  dice.D20Result
	DefenderSkill string
	Attacker      types.Combatant
	Defender      types.Combatant
	Message       string
}

// contest rolls the attacker's Athletics against the better of the
// defender's Athletics and Acrobatics. Draw order: attacker, defender STR,
// defender DEX. The attacker is treated as proficient in Athletics; the
// defender is proficient in Athletics only. Ties go to the defender.
func contest(attacker, defender types.Combatant, src dice.Source) (bool, dice.D20Result, dice.D20Result, string) {
	atk := dice.RollD20(dice.D20Options{
		AbilityModifier:  attacker.StrMod,
		ProficiencyBonus: attacker.ProficiencyBonus,
	}, src)
	athletics := dice.RollD20(dice.D20Options{
		AbilityModifier:  defender.StrMod,
		ProficiencyBonus: defender.ProficiencyBonus,
	}, src)
	acrobatics := dice.RollD20(dice.D20Options{
		AbilityModifier: defender.DexMod,
	}, src)

	best, skill := athletics, "athletics"
	if acrobatics.Total > athletics.Total {
		best, skill = acrobatics, "acrobatics"
	}
	return atk.Total > best.Total, atk, best, skill
}

// Grapple resolves a grapple attempt. On success the defender gains the
// grappled condition and both sides record the other.
func Grapple(attacker, defender types.Combatant, src dice.Source) ContestResult {
	ok, atk, def, skill := contest(attacker, defender, src)
	res := ContestResult{
		Success:       ok,
		AttackerRoll:  atk,
		DefenderRoll:  def,
		DefenderSkill: skill,
		Attacker:      attacker,
		Defender:      defender,
	}
	if !ok {
		res.Message = fmt.Sprintf("%s slips free of %s's grasp (%d vs %d).", defender.Name, attacker.Name, atk.Total, def.Total)
		return res
	}

	res.Attacker.Grappling = defender.ID
	res.Defender.GrappledBy = attacker.ID
	res.Defender.Conditions = defender.Conditions.With(types.CondGrappled)
	res.Message = fmt.Sprintf("%s grapples %s (%d vs %d).", attacker.Name, defender.Name, atk.Total, def.Total)
	return res
}

// Shove resolves a shove. On success the defender is knocked prone or
// pushed one tile directly away from the attacker.
func Shove(attacker, defender types.Combatant, mode ShoveMode, src dice.Source) ContestResult {
	ok, atk, def, skill := contest(attacker, defender, src)
	res := ContestResult{
		Success:       ok,
		AttackerRoll:  atk,
		DefenderRoll:  def,
		DefenderSkill: skill,
		Attacker:      attacker,
		Defender:      defender,
	}
	if !ok {
		res.Message = fmt.Sprintf("%s holds their ground against %s (%d vs %d).", defender.Name, attacker.Name, atk.Total, def.Total)
		return res
	}

	if mode == ShovePush {
		res.Defender.Position = types.Point{
			X: defender.Position.X + sign(defender.Position.X-attacker.Position.X),
			Y: defender.Position.Y + sign(defender.Position.Y-attacker.Position.Y),
		}
		if res.Defender.Position == defender.Position {
			res.Defender.Position.X++
		}
		res.Message = fmt.Sprintf("%s shoves %s back (%d vs %d).", attacker.Name, defender.Name, atk.Total, def.Total)
		return res
	}

	res.Defender.Conditions = defender.Conditions.With(types.CondProne)
	res.Message = fmt.Sprintf("%s knocks %s prone (%d vs %d).", attacker.Name, defender.Name, atk.Total, def.Total)
	return res
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}
