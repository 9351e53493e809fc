package combat

import (
	"slices"
	"sort"

	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/types"
)

// UseSlot returns c with slot marked as used this turn.
func UseSlot(c types.Combatant, slot string) types.Combatant {
	if slices.Contains(c.UsedActions, slot) {
		return c
	}
	c.UsedActions = append(slices.Clone(c.UsedActions), slot)
	slices.Sort(c.UsedActions)
	return c
}

// SlotUsed reports whether c already spent slot this turn.
func SlotUsed(c types.Combatant, slot string) bool {
	return slices.Contains(c.UsedActions, slot)
}

// ResetActionEconomy returns c at the start of its turn: no used actions
// and its reaction available again.
func ResetActionEconomy(c types.Combatant) types.Combatant {
	c.UsedActions = nil
	c.HasReaction = true
	return c
}

// OpportunityResult is the outcome of an opportunity attack.
type OpportunityResult struct {
	Attack  AttackResult
	Reactor types.Combatant
}

// OpportunityAttack resolves a reaction attack by reactor against a target
// leaving its reach. It returns nil, with nothing drawn, when the reactor
// has no reaction available or the target is not adjacent. Otherwise the
// reaction is spent and a melee attack without cover is resolved.
func OpportunityAttack(reactor, target types.Combatant, src dice.Source) (*OpportunityResult, error) {
	if !reactor.HasReaction || !Adjacent(reactor, target) {
		return nil, nil
	}

	spent := UseSlot(reactor, types.SlotReaction)
	spent.HasReaction = false

	atk, err := Resolve(Attack{Attacker: reactor, Defender: target, Cover: CoverNone}, src)
	if err != nil {
		return nil, err
	}
	return &OpportunityResult{Attack: atk, Reactor: spent}, nil
}

// InitiativeEntry is one combatant's initiative roll.
type InitiativeEntry struct {
	ID     string
	Name   string
	DexMod int
	Roll   dice.D20Result
	Total  int
}

// RollInitiative rolls 1d20 + DEX modifier for each combatant in the given
// order and returns the entries sorted by Order.
func RollInitiative(combatants []types.Combatant, src dice.Source) []InitiativeEntry {
	entries := make([]InitiativeEntry, 0, len(combatants))
	for _, c := range combatants {
		r := dice.RollD20(dice.D20Options{AbilityModifier: c.DexMod}, src)
		entries = append(entries, InitiativeEntry{
			ID:     c.ID,
			Name:   c.Name,
			DexMod: c.DexMod,
			Roll:   r,
			Total:  r.Total,
		})
	}
	Order(entries)
	return entries
}

// Order sorts entries by total, highest first. Ties go to the higher DEX
// modifier and then keep their original order.
func Order(entries []InitiativeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].DexMod > entries[j].DexMod
	})
}
