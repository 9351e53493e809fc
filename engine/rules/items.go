package rules

import (
	"fmt"
	"slices"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/combat"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// DefaultHealing is rolled by potions that do not name their own dice.
const DefaultHealing = "2d4+2"

// addItem returns inv with n of it added, stacking by ID. The new stack is
// never equipped.
func addItem(inv []types.Item, it types.Item, n int) []types.Item {
	out := slices.Clone(inv)
	for i := range out {
		if out[i].ID == it.ID {
			out[i].Quantity += n
			return out
		}
	}
	it.Quantity = n
	it.Equipped = false
	return append(out, it)
}

// removeItem returns inv with n of the stack at i taken away. An emptied
// stack is dropped.
func removeItem(inv []types.Item, i, n int) []types.Item {
	out := slices.Clone(inv)
	out[i].Quantity -= n
	if out[i].Quantity <= 0 {
		out = slices.Delete(out, i, i+1)
	}
	return out
}

// TakeItem moves one of an item from the source's inventory to the actor.
// An item with a cost is bought: the actor must have the gold, and it goes
// to the source.
func (r *resolver) TakeItem(a action.TakeItem) (action.Resolution, error) {
	actor, source, err := r.pair(a.ActorID, a.SourceID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}
	if actor.ID == source.ID {
		return fail("%s already has that.", actor.Name), nil
	}
	it, idx, ok := state.FindItem(source, a.ItemID)
	if !ok || it.Quantity <= 0 {
		return fail("%s has no %s.", source.Name, a.ItemID), nil
	}
	if it.Cost > actor.Gold {
		out := fail("You don't have enough gold for that! The %s costs %d gold; you have %d.", it.Name, it.Cost, actor.Gold)
		out.Narrative.Mood = action.MoodDefeat
		return out, nil
	}

	actorAfter := actor
	actorAfter.Inventory = addItem(actor.Inventory, it, 1)
	actorAfter.Gold -= it.Cost
	sourceAfter := source
	sourceAfter.Inventory = removeItem(source.Inventory, idx, 1)
	sourceAfter.Gold += it.Cost
	if it.Equipped && it.Quantity == 1 && it.Kind == "weapon" {
		sourceAfter.Stats.Damage = combat.DefaultDamage
	}

	summary := fmt.Sprintf("%s takes the %s.", actor.Name, it.Name)
	if it.Cost > 0 {
		summary = fmt.Sprintf("%s buys the %s for %d gold.", actor.Name, it.Name, it.Cost)
	}
	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Changes:   append(effects.Diff(actor, actorAfter), effects.Diff(source, sourceAfter)...),
		Narrative: action.Narrative{Summary: summary, Mood: action.MoodNeutral},
	}, nil
}

// DropItem discards a whole stack. Dropping the wielded weapon leaves the
// actor unarmed.
func (r *resolver) DropItem(a action.DropItem) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}
	it, idx, ok := state.FindItem(actor, a.ItemID)
	if !ok {
		return fail("%s is not carrying %s.", actor.Name, a.ItemID), nil
	}

	after := actor
	after.Inventory = slices.Delete(slices.Clone(actor.Inventory), idx, idx+1)
	if it.Equipped && it.Kind == "weapon" {
		after.Stats.Damage = combat.DefaultDamage
	}
	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Changes:   effects.Diff(actor, after),
		Narrative: action.Narrative{Summary: fmt.Sprintf("%s drops the %s.", actor.Name, it.Name), Mood: action.MoodNeutral},
	}, nil
}

// EquipItem wields a weapon or dons armor, unequipping any other item of
// the same kind. A weapon's damage dice become the actor's damage.
func (r *resolver) EquipItem(a action.EquipItem) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}
	it, idx, ok := state.FindItem(actor, a.ItemID)
	if !ok || it.Quantity <= 0 {
		return fail("%s is not carrying %s.", actor.Name, a.ItemID), nil
	}
	if it.Kind != "weapon" && it.Kind != "armor" {
		return fail("The %s cannot be equipped.", it.Name), nil
	}

	after := actor
	after.Inventory = slices.Clone(actor.Inventory)
	for i := range after.Inventory {
		if after.Inventory[i].Kind == it.Kind {
			after.Inventory[i].Equipped = i == idx
		}
	}
	if it.Kind == "weapon" && it.Damage != "" {
		if _, err := dice.Parse(it.Damage); err != nil {
			return action.Resolution{}, fmt.Errorf("item %s: %w", it.ID, err)
		}
		after.Stats.Damage = it.Damage
	}
	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Changes:   effects.Diff(actor, after),
		Narrative: action.Narrative{Summary: fmt.Sprintf("%s equips the %s.", actor.Name, it.Name), Mood: action.MoodNeutral},
	}, nil
}

// UseItem drinks a potion, healing the target (the actor by default)
// through the death machine, which revives a dying target. One of the
// stack is consumed. Draws: the healing dice.
func (r *resolver) UseItem(a action.UseItem) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	targetID := a.TargetID
	if targetID == "" {
		targetID = actor.ID
	}
	target, err := r.entity(targetID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}
	it, idx, ok := state.FindItem(actor, a.ItemID)
	if !ok || it.Quantity <= 0 {
		return fail("%s is not carrying %s.", actor.Name, a.ItemID), nil
	}
	if it.Kind != "potion" {
		return fail("%s can't use the %s that way.", actor.Name, it.Name), nil
	}
	if death.IsDead(target.Combatant) {
		return fail("%s is beyond healing.", target.Name), nil
	}

	notation := it.Healing
	if notation == "" {
		notation = DefaultHealing
	}
	heal, err := dice.Roll(notation, r.src)
	if err != nil {
		return action.Resolution{}, fmt.Errorf("item %s: %w", it.ID, err)
	}

	actorAfter := actor
	actorAfter.Inventory = removeItem(actor.Inventory, idx, 1)
	var rep death.HealReport
	var changes []types.StateChange
	if target.ID == actor.ID {
		rep = death.ApplyHealing(actor.Combatant, max(0, heal.Total))
		actorAfter.Combatant = rep.Combatant
		changes = effects.Diff(actor, actorAfter)
	} else {
		rep = death.ApplyHealing(target.Combatant, max(0, heal.Total))
		changes = append(effects.Diff(actor, actorAfter), effects.DiffCombatant(target, rep.Combatant)...)
	}

	mood := action.MoodNeutral
	if rep.RegainedConsciousness {
		mood = action.MoodTriumph
	}
	return action.Resolution{
		Success: true,
		Outcome: action.OutcomeSuccess,
		Rolls:   map[string]types.DiceRoll{"healing": heal.Record()},
		Changes: changes,
		Narrative: action.Narrative{
			Summary: fmt.Sprintf("%s uses the %s. %s", actor.Name, it.Name, rep.Message),
			Mood:    mood,
		},
	}, nil
}
