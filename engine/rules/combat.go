package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/combat"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/types"
)

// NormalRange is the distance in feet beyond which a ranged attack has
// disadvantage.
const NormalRange = 80

// MeleeAttack spends the attacker's action (bonus action for an off-hand
// strike). Draws: attack d20, then damage dice on a hit.
func (r *resolver) MeleeAttack(a action.MeleeAttack) (action.Resolution, error) {
	cover, _ := combat.ParseCover(a.Cover)
	return r.attack(a.ActorID, a.TargetID, combat.Attack{
		Cover:   cover,
		Finesse: a.Finesse,
		OffHand: a.OffHand,
	})
}

// RangedAttack spends the attacker's action. Draws as MeleeAttack.
func (r *resolver) RangedAttack(a action.RangedAttack) (action.Resolution, error) {
	cover, _ := combat.ParseCover(a.Cover)
	return r.attack(a.ActorID, a.TargetID, combat.Attack{
		Cover:        cover,
		Ranged:       true,
		Disadvantage: a.Range > NormalRange,
	})
}

func (r *resolver) attack(actorID, targetID string, atk combat.Attack) (action.Resolution, error) {
	attacker, defender, err := r.pair(actorID, targetID)
	if err != nil {
		return action.Resolution{}, err
	}
	slot := types.SlotAction
	if atk.OffHand {
		slot = types.SlotBonusAction
	}
	if res, ok := r.canStrike(attacker, defender, slot, !atk.Ranged); !ok {
		return res, nil
	}

	atk.Attacker = attacker.Combatant
	atk.Defender = defender.Combatant
	res, err := combat.Resolve(atk, r.src)
	if err != nil {
		return action.Resolution{}, err
	}

	after := combat.UseSlot(attacker.Combatant, slot)
	// Attacking gives away a hidden attacker.
	after.Conditions = after.Conditions.Without(types.CondHidden)
	return strike(attacker, after, defender, res), nil
}

// canStrike applies the shared preconditions of attacks and contests.
func (r *resolver) canStrike(actor, target types.Character, slot string, needReach bool) (action.Resolution, bool) {
	switch {
	case actor.ID == target.ID:
		return fail("%s cannot target themself.", actor.Name), false
	case incapacitated(actor) != "":
		return fail("%s", incapacitated(actor)), false
	case combat.SlotUsed(actor.Combatant, slot):
		return fail("%s has already used their %s this turn.", actor.Name, strings.ReplaceAll(slot, "_", " ")), false
	case death.IsDead(target.Combatant):
		return fail("%s is already dead.", target.Name), false
	case needReach && !combat.Adjacent(actor.Combatant, target.Combatant):
		return fail("%s is out of reach.", target.Name), false
	}
	return action.Resolution{}, true
}

// strike turns an attack roll into a resolution, routing any damage
// through the death machine.
func strike(attacker types.Character, attackerAfter types.Combatant, defender types.Character, res combat.AttackResult) action.Resolution {
	rolls := map[string]types.DiceRoll{}
	if res.Roll != nil {
		rolls["attack"] = res.Roll.Record()
	}
	if res.DamageRoll != nil {
		rolls["damage"] = res.DamageRoll.Record()
	}

	summary := res.Message
	defenderAfter := defender.Combatant
	mood := action.MoodDefeat
	outcome := action.OutcomeFailure
	switch {
	case res.Critical:
		outcome, mood = action.OutcomeCriticalSuccess, action.MoodTriumph
	case res.Fumble:
		outcome = action.OutcomeCriticalFailure
	case res.Hit:
		outcome, mood = action.OutcomeSuccess, action.MoodNeutral
	}
	if res.Hit {
		rep := death.ApplyDamage(defender.Combatant, res.Damage, res.Critical)
		defenderAfter = rep.Combatant
		if rep.KnockedOut || rep.Dead || rep.DeathSaveFailures > 0 {
			summary += " " + rep.Message
			mood = action.MoodTriumph
		}
	}

	changes := effects.DiffCombatant(attacker, attackerAfter)
	changes = append(changes, effects.DiffCombatant(defender, defenderAfter)...)
	return action.Resolution{
		Success:   res.Hit,
		Outcome:   outcome,
		Rolls:     rolls,
		Changes:   changes,
		Narrative: action.Narrative{Summary: summary, Mood: mood},
	}
}

// Grapple spends the attacker's action. Draws: attacker Athletics, then the
// defender's Athletics and Acrobatics.
func (r *resolver) Grapple(a action.Grapple) (action.Resolution, error) {
	return r.contest(a.ActorID, a.TargetID, func(att, def types.Combatant) combat.ContestResult {
		return combat.Grapple(att, def, r.src)
	})
}

// Shove spends the attacker's action. Draws as Grapple.
func (r *resolver) Shove(a action.Shove) (action.Resolution, error) {
	mode := combat.ShoveMode(a.Mode)
	return r.contest(a.ActorID, a.TargetID, func(att, def types.Combatant) combat.ContestResult {
		return combat.Shove(att, def, mode, r.src)
	})
}

func (r *resolver) contest(actorID, targetID string, roll func(att, def types.Combatant) combat.ContestResult) (action.Resolution, error) {
	attacker, defender, err := r.pair(actorID, targetID)
	if err != nil {
		return action.Resolution{}, err
	}
	if res, ok := r.canStrike(attacker, defender, types.SlotAction, true); !ok {
		return res, nil
	}

	res := roll(attacker.Combatant, defender.Combatant)
	after := combat.UseSlot(res.Attacker, types.SlotAction)
	rolls := map[string]types.DiceRoll{"attacker_athletics": res.AttackerRoll.Record()}
	rolls["defender_"+res.DefenderSkill] = res.DefenderRoll.Record()

	changes := effects.DiffCombatant(attacker, after)
	changes = append(changes, effects.DiffCombatant(defender, res.Defender)...)
	out := action.Resolution{
		Success:   res.Success,
		Rolls:     rolls,
		Changes:   changes,
		Narrative: action.Narrative{Summary: res.Message, Mood: action.MoodTense},
	}
	if res.Success {
		out.Outcome = action.OutcomeSuccess
		out.Narrative.Mood = action.MoodTriumph
	} else {
		out.Outcome = action.OutcomeFailure
	}
	return out, nil
}

// OpportunityAttack spends the actor's reaction. With no reaction or no
// reach it is an unsuccessful no-op. Draws as MeleeAttack.
func (r *resolver) OpportunityAttack(a action.OpportunityAttack) (action.Resolution, error) {
	reactor, target, err := r.pair(a.ActorID, a.TargetID)
	if err != nil {
		return action.Resolution{}, err
	}
	switch {
	case reactor.ID == target.ID:
		return fail("%s cannot target themself.", reactor.Name), nil
	case incapacitated(reactor) != "":
		return fail("%s", incapacitated(reactor)), nil
	case death.IsDead(target.Combatant):
		return fail("%s is already dead.", target.Name), nil
	}

	res, err := combat.OpportunityAttack(reactor.Combatant, target.Combatant, r.src)
	if err != nil {
		return action.Resolution{}, err
	}
	if res == nil {
		if !reactor.HasReaction {
			return fail("%s has no reaction available.", reactor.Name), nil
		}
		return fail("%s is out of reach.", target.Name), nil
	}
	return strike(reactor, res.Reactor, target, res.Attack), nil
}

// StartTurn clears the actor's used actions and restores its reaction.
func (r *resolver) StartTurn(a action.StartTurn) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if death.IsDead(actor.Combatant) {
		return fail("%s is dead.", actor.Name), nil
	}
	after := combat.ResetActionEconomy(actor.Combatant)
	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Changes:   effects.DiffCombatant(actor, after),
		Narrative: action.Narrative{Summary: fmt.Sprintf("%s's turn begins.", actor.Name), Mood: action.MoodNeutral},
	}, nil
}

// RollInitiative rolls for every listed participant in the given order,
// skipping duplicates and the dead, and records the sorted order on the
// table. Draws: one d20 per participant.
func (r *resolver) RollInitiative(a action.RollInitiative) (action.Resolution, error) {
	var participants []types.Combatant
	seen := map[string]bool{}
	for _, id := range a.ParticipantIDs {
		c, err := r.entity(id)
		if err != nil {
			return action.Resolution{}, err
		}
		if seen[id] || death.IsDead(c.Combatant) {
			continue
		}
		seen[id] = true
		participants = append(participants, c.Combatant)
	}
	if len(participants) == 0 {
		return fail("No one is able to fight."), nil
	}

	entries := combat.RollInitiative(participants, r.src)
	rolls := make(map[string]types.DiceRoll, len(entries))
	order := make([]string, len(entries))
	parts := make([]string, len(entries))
	for i, e := range entries {
		rolls["initiative_"+e.ID] = e.Roll.Record()
		order[i] = e.ID
		parts[i] = fmt.Sprintf("%s %d", e.Name, e.Total)
	}
	return action.Resolution{
		Success: true,
		Outcome: action.OutcomeSuccess,
		Rolls:   rolls,
		Changes: []types.StateChange{effects.InitiativeChange(r.t.Initiative, order)},
		Narrative: action.Narrative{
			Summary: "Roll for initiative! " + strings.Join(parts, ", ") + ".",
			Mood:    action.MoodTense,
		},
	}, nil
}

// DeathSave rolls the actor's death saving throw. Draws: one d20.
func (r *resolver) DeathSave(a action.DeathSave) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	rep, err := death.MakeSave(actor.Combatant, r.src)
	if errors.Is(err, death.ErrNotDying) {
		return fail("%s is not making death saves.", actor.Name), nil
	}
	if err != nil {
		return action.Resolution{}, err
	}

	out := action.Resolution{
		Success:   rep.Save.Success,
		Outcome:   checkOutcome(rep.Save.Roll, rep.Save.Success),
		Rolls:     map[string]types.DiceRoll{"death_save": rep.Save.Roll.Record()},
		Changes:   effects.DiffCombatant(actor, rep.Combatant),
		Narrative: action.Narrative{Summary: rep.Message, Mood: action.MoodTense},
	}
	switch {
	case rep.Dead:
		out.Narrative.Mood = action.MoodDefeat
	case rep.RegainedConsciousness || rep.Stabilized:
		out.Narrative.Mood = action.MoodTriumph
	}
	return out, nil
}

// Stabilize spends the actor's action on a Medicine check for a dying
// target. Draws: one d20.
func (r *resolver) Stabilize(a action.Stabilize) (action.Resolution, error) {
	healer, patient, err := r.pair(a.ActorID, a.TargetID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(healer); why != "" {
		return fail("%s", why), nil
	}
	if combat.SlotUsed(healer.Combatant, types.SlotAction) {
		return fail("%s has already used their action this turn.", healer.Name), nil
	}

	rep, err := death.AttemptStabilization(healer.Name, wisdom(healer), medicine(healer), patient.Combatant, r.src)
	if errors.Is(err, death.ErrNotDying) {
		return fail("%s does not need stabilizing.", patient.Name), nil
	}
	if err != nil {
		return action.Resolution{}, err
	}

	changes := effects.DiffCombatant(healer, combat.UseSlot(healer.Combatant, types.SlotAction))
	changes = append(changes, effects.DiffCombatant(patient, rep.Patient)...)
	out := action.Resolution{
		Success:   rep.Success,
		Outcome:   checkOutcome(rep.Check, rep.Success),
		Rolls:     map[string]types.DiceRoll{"medicine": rep.Check.Record()},
		Changes:   changes,
		Narrative: action.Narrative{Summary: rep.Message, Mood: action.MoodTense},
	}
	if rep.Success {
		out.Narrative.Mood = action.MoodTriumph
	}
	return out, nil
}
