package rules

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/ability"
	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/types"
)

// HitDie is spent on a short rest.
const HitDie = "1d8"

// Rest recovers hit points. A short rest spends one hit die plus the CON
// modifier; a long rest restores full HP and clears the death-save track.
// Active threats are rolled with RestThreatBonus and an interrupted rest
// still heals. Draws: the hit die on a short rest, then the threat rolls.
func (r *resolver) Rest(a action.Rest) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	switch {
	case death.IsDead(actor.Combatant):
		return fail("%s is dead.", actor.Name), nil
	case death.IsDying(actor.Combatant):
		return fail("%s is dying and cannot rest.", actor.Name), nil
	}

	rolls := map[string]types.DiceRoll{}
	after := actor
	var summary string
	if a.RestType == "short" {
		hd, err := dice.Roll(HitDie, r.src)
		if err != nil {
			return action.Resolution{}, err
		}
		rolls["hit_die"] = hd.Record()
		amount := hd.Total + ability.ModifierOf(actor.Abilities, ability.CON)
		rep := death.ApplyHealing(actor.Combatant, max(0, amount))
		after.Combatant = rep.Combatant
		summary = fmt.Sprintf("%s takes a short rest and recovers %d HP.", actor.Name, rep.Restored)
	} else {
		rep := death.ApplyHealing(actor.Combatant, actor.Stats.MaxHP-actor.Stats.HP)
		after.Combatant = rep.Combatant
		after.DeathSaves = nil
		summary = fmt.Sprintf("%s sleeps peacefully and wakes fully refreshed.", actor.Name)
	}

	out := action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Rolls:     rolls,
		Narrative: action.Narrative{Summary: summary, Mood: action.MoodNeutral},
	}
	if hit, ok := r.rollThreats(actor, RestThreatBonus, rolls); ok {
		out.Outcome = action.OutcomePartial
		out.Narrative = action.Narrative{
			Summary: fmt.Sprintf("%s Then the rest is interrupted: %s (%s, %s severity)!", summary, hit.Variant, hit.Name, hit.Severity),
			Mood:    action.MoodTense,
		}
	}
	out.Changes = effects.Diff(actor, after)
	return out, nil
}
