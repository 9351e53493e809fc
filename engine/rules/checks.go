package rules

import (
	"fmt"
	"strings"

	"github.com/nathoo/rulecore/engine/ability"
	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/types"
)

// SearchDC is the Investigation DC to find hidden creatures.
const SearchDC = 12

func dcOr(dc int) int {
	if dc <= 0 {
		return DefaultDC
	}
	return dc
}

// checkMode folds the poisoned condition into the requested mode.
func checkMode(c types.Character, adv, dis bool) dice.Mode {
	return dice.ModeFor(adv, dis || c.Conditions.Has(types.CondPoisoned))
}

func skillBonus(c types.Character, skill string) int {
	if ability.Proficient(c.Proficiencies, skill) {
		return ability.ProficiencyBonus(c.Level)
	}
	return 0
}

func wisdom(c types.Character) int { return ability.ModifierOf(c.Abilities, ability.WIS) }

func medicine(c types.Character) int { return skillBonus(c, "medicine") }

func verdict(ok bool) string {
	if ok {
		return "succeeds"
	}
	return "fails"
}

// SkillCheck rolls d20 + ability modifier + proficiency (when trained)
// against the DC, 15 when unset. A successful stealth check hides the
// actor. Draws: one d20, two with advantage or disadvantage.
func (r *resolver) SkillCheck(a action.SkillCheck) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}

	skill := ability.NormalizeSkill(a.Skill)
	abil, _ := ability.SkillAbility(skill)
	dc := dcOr(a.DC)
	roll := dice.RollD20(dice.D20Options{
		Mode:             checkMode(actor, a.Advantage, a.Disadvantage),
		AbilityModifier:  ability.ModifierOf(actor.Abilities, abil),
		ProficiencyBonus: skillBonus(actor, skill),
	}, r.src)
	ok := roll.Total >= dc

	after := actor.Combatant
	if ok && skill == "stealth" {
		after.Conditions = after.Conditions.With(types.CondHidden)
	}

	name := strings.ReplaceAll(skill, "_", " ")
	out := action.Resolution{
		Success: ok,
		Outcome: checkOutcome(roll, ok),
		Rolls:   map[string]types.DiceRoll{"check": roll.Record()},
		Changes: effects.DiffCombatant(actor, after),
		Narrative: action.Narrative{
			Summary: fmt.Sprintf("%s's %s check %s (%d vs DC %d).", actor.Name, name, verdict(ok), roll.Total, dc),
			Mood:    action.MoodNeutral,
		},
	}
	if ok {
		out.Narrative.Mood = action.MoodTriumph
	}
	return out, nil
}

// AbilityCheck rolls d20 + ability modifier against the DC. Draws: one d20.
func (r *resolver) AbilityCheck(a action.AbilityCheck) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}

	abil, _ := ability.Parse(a.Ability)
	dc := dcOr(a.DC)
	roll := dice.RollD20(dice.D20Options{
		Mode:            checkMode(actor, false, false),
		AbilityModifier: ability.ModifierOf(actor.Abilities, abil),
	}, r.src)
	ok := roll.Total >= dc
	return action.Resolution{
		Success: ok,
		Outcome: checkOutcome(roll, ok),
		Rolls:   map[string]types.DiceRoll{"check": roll.Record()},
		Narrative: action.Narrative{
			Summary: fmt.Sprintf("%s's %s check %s (%d vs DC %d).", actor.Name, abil, verdict(ok), roll.Total, dc),
			Mood:    action.MoodNeutral,
		},
	}, nil
}

// SavingThrow rolls d20 + ability modifier, plus proficiency when the
// action says so. Unconscious creatures fail STR and DEX saves without
// rolling. Draws: one d20.
func (r *resolver) SavingThrow(a action.SavingThrow) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if death.IsDead(actor.Combatant) {
		return fail("%s is dead.", actor.Name), nil
	}

	abil, _ := ability.Parse(a.Ability)
	dc := dcOr(a.DC)
	if (abil == ability.STR || abil == ability.DEX) && incapacitated(actor) != "" {
		return action.Resolution{
			Outcome: action.OutcomeFailure,
			Narrative: action.Narrative{
				Summary: fmt.Sprintf("%s is unconscious and automatically fails the %s save.", actor.Name, abil),
				Mood:    action.MoodDefeat,
			},
		}, nil
	}

	prof := 0
	if a.Proficient {
		prof = ability.ProficiencyBonus(actor.Level)
	}
	roll := dice.RollD20(dice.D20Options{
		AbilityModifier:  ability.ModifierOf(actor.Abilities, abil),
		ProficiencyBonus: prof,
	}, r.src)
	ok := roll.Total >= dc
	return action.Resolution{
		Success: ok,
		Outcome: checkOutcome(roll, ok),
		Rolls:   map[string]types.DiceRoll{"save": roll.Record()},
		Narrative: action.Narrative{
			Summary: fmt.Sprintf("%s's %s save %s (%d vs DC %d).", actor.Name, abil, verdict(ok), roll.Total, dc),
			Mood:    action.MoodTense,
		},
	}, nil
}

// Search rolls Investigation against SearchDC. On success every hidden
// creature on the table other than the actor is revealed. Draws: one d20.
func (r *resolver) Search(a action.Search) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}

	roll := dice.RollD20(dice.D20Options{
		Mode:             checkMode(actor, false, false),
		AbilityModifier:  ability.ModifierOf(actor.Abilities, ability.INT),
		ProficiencyBonus: skillBonus(actor, "investigation"),
	}, r.src)
	ok := roll.Total >= SearchDC

	area := a.Area
	if area == "" {
		area = "the area"
	}
	out := action.Resolution{
		Success: ok,
		Outcome: checkOutcome(roll, ok),
		Rolls:   map[string]types.DiceRoll{"investigation": roll.Record()},
	}
	if !ok {
		out.Narrative = action.Narrative{Summary: fmt.Sprintf("%s searches %s but finds nothing.", actor.Name, area), Mood: action.MoodNeutral}
		return out, nil
	}

	var found []string
	for _, id := range sortedIDs(r.t) {
		c := r.t.Entities[id]
		if id == actor.ID || !c.Conditions.Has(types.CondHidden) {
			continue
		}
		before, _ := r.entity(id)
		after := before.Combatant
		after.Conditions = after.Conditions.Without(types.CondHidden)
		out.Changes = append(out.Changes, effects.DiffCombatant(before, after)...)
		found = append(found, c.Name)
	}
	if len(found) == 0 {
		out.Narrative = action.Narrative{Summary: fmt.Sprintf("%s searches %s thoroughly. Nothing is hiding there.", actor.Name, area), Mood: action.MoodNeutral}
		return out, nil
	}
	out.Narrative = action.Narrative{
		Summary: fmt.Sprintf("%s searches %s and spots %s!", actor.Name, area, strings.Join(found, ", ")),
		Mood:    action.MoodTense,
	}
	return out, nil
}
