package effects

import (
	"maps"
	"slices"

	"github.com/nathoo/rulecore/types"
)

// Diff returns the changes that turn before into after, in a fixed field
// order. Values are copies, so later edits to either character do not leak
// into the changes.
func Diff(before, after types.Character) []types.StateChange {
	d := differ{id: after.ID, typ: after.Type}
	if d.typ == "" {
		d.typ = types.EntityCharacter
	}

	d.intField(types.FieldHP, before.Stats.HP, after.Stats.HP)
	d.intField(types.FieldTempHP, before.Stats.TempHP, after.Stats.TempHP)
	d.strField(types.FieldDamage, before.Stats.Damage, after.Stats.Damage)
	if !slices.Equal(before.Conditions, after.Conditions) {
		d.add(types.FieldConditions, cloneStrings(before.Conditions), cloneStrings(after.Conditions))
	}
	if !sameSaves(before.DeathSaves, after.DeathSaves) {
		d.add(types.FieldDeathSaves, copySaves(before.DeathSaves), copySaves(after.DeathSaves))
	}
	if !slices.Equal(before.UsedActions, after.UsedActions) {
		d.add(types.FieldUsedActions, cloneStrings(before.UsedActions), cloneStrings(after.UsedActions))
	}
	if before.HasReaction != after.HasReaction {
		d.add(types.FieldHasReaction, before.HasReaction, after.HasReaction)
	}
	d.strField(types.FieldGrappling, before.Grappling, after.Grappling)
	d.strField(types.FieldGrappledBy, before.GrappledBy, after.GrappledBy)
	d.intField(types.FieldPositionX, before.Position.X, after.Position.X)
	d.intField(types.FieldPositionY, before.Position.Y, after.Position.Y)
	d.intField(types.FieldXP, before.XP, after.XP)
	d.intField(types.FieldGold, before.Gold, after.Gold)
	if !slices.Equal(before.Inventory, after.Inventory) {
		d.add(types.FieldInventory, slices.Clone(before.Inventory), slices.Clone(after.Inventory))
	}
	d.strField(types.FieldTutorialState, before.TutorialState, after.TutorialState)
	if !slices.Equal(before.ReputationTags, after.ReputationTags) {
		d.add(types.FieldReputationTags, cloneStrings(before.ReputationTags), cloneStrings(after.ReputationTags))
	}
	if !maps.Equal(before.ReputationScores, after.ReputationScores) {
		d.add(types.FieldReputationScores, cloneMap(before.ReputationScores), cloneMap(after.ReputationScores))
	}
	if !maps.Equal(before.ActiveThreats, after.ActiveThreats) {
		d.add(types.FieldActiveThreats, cloneMap(before.ActiveThreats), cloneMap(after.ActiveThreats))
	}
	if !slices.Equal(before.Reviews, after.Reviews) {
		d.add(types.FieldReviews, cloneStrings(before.Reviews), cloneStrings(after.Reviews))
	}
	return d.out
}

// DiffCombatant diffs a character against the same character with its
// combat state replaced.
func DiffCombatant(before types.Character, after types.Combatant) []types.StateChange {
	next := before
	next.Combatant = after
	return Diff(before, next)
}

// InitiativeChange records a new initiative order.
func InitiativeChange(before, after []string) types.StateChange {
	return types.StateChange{
		EntityID:   types.TableID,
		EntityType: types.EntityTable,
		Field:      types.FieldInitiative,
		OldValue:   cloneStrings(before),
		NewValue:   cloneStrings(after),
	}
}

type differ struct {
	id  string
	typ types.EntityType
	out []types.StateChange
}

func (d *differ) add(field string, from, to any) {
	d.out = append(d.out, types.StateChange{
		EntityID:   d.id,
		EntityType: d.typ,
		Field:      field,
		OldValue:   from,
		NewValue:   to,
	})
}

func (d *differ) intField(field string, from, to int) {
	if from == to {
		return
	}
	delta := to - from
	d.out = append(d.out, types.StateChange{
		EntityID:   d.id,
		EntityType: d.typ,
		Field:      field,
		OldValue:   from,
		NewValue:   to,
		Delta:      &delta,
	})
}

func (d *differ) strField(field string, from, to string) {
	if from != to {
		d.add(field, from, to)
	}
}

func cloneStrings[S ~[]string](s S) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone([]string(s))
}

func sameSaves(a, b *types.DeathSaveState) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// copySaves returns an untyped nil for a missing state so the change value
// reads as null both natively and after JSON.
func copySaves(s *types.DeathSaveState) any {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
