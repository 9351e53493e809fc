package engine

import (
	"context"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/combat"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// EnemyTurn returns the actions an enemy takes on its turn against the
// target: a StartTurn, then a melee attack if the target is within reach.
// A dead or incapacitated enemy, or a target already dead, gets nothing.
func EnemyTurn(t *types.Table, enemyID, targetID string, base func(actorID string) action.Base) []action.Action {
	enemy, ok := state.Get(t, enemyID)
	if !ok || !canAct(enemy.Combatant) {
		return nil
	}
	target, ok := state.Get(t, targetID)
	if !ok || death.IsDead(target.Combatant) {
		return nil
	}

	acts := []action.Action{action.StartTurn{Base: base(enemyID)}}
	if combat.Adjacent(enemy.Combatant, target.Combatant) {
		acts = append(acts, action.MeleeAttack{Base: base(enemyID), TargetID: targetID})
	}
	return acts
}

// runEnemyTurns lets every enemy in initiative order act against targetID.
// It stops early once the target is dead.
func (e *Engine) runEnemyTurns(ctx context.Context, targetID string) ([]action.Result, error) {
	var results []action.Result
	for _, id := range append([]string(nil), e.Table.Initiative...) {
		c, ok := state.Get(e.Table, id)
		if !ok || c.Type != types.EntityEnemy {
			continue
		}
		for _, a := range EnemyTurn(e.Table, id, targetID, e.base) {
			res, err := e.rules.Execute(a, e.Table)
			if err != nil {
				return results, err
			}
			if _, err := e.Commit(ctx, res); err != nil {
				return results, err
			}
			e.log.Debug("enemy acted", "enemy_id", id, "kind", a.Kind(), "outcome", res.Outcome)
			if a.Kind() != action.KindStartTurn {
				results = append(results, res)
			}
		}
		if target, ok := state.Get(e.Table, targetID); ok && death.IsDead(target.Combatant) {
			break
		}
	}
	return results, nil
}

func (e *Engine) base(actorID string) action.Base {
	return action.Base{ID: e.parser.NewID(), ActorID: actorID, Timestamp: e.parser.Now().UTC()}
}

func canAct(c types.Combatant) bool {
	return !death.IsDead(c) && !death.IsDying(c) && !c.Conditions.Has(types.CondUnconscious)
}
