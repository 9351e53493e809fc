// Package rules resolves structured actions against a table snapshot.
//
// Engine.Execute is the only entry point. Each action kind has exactly one
// resolver method; a resolver reads the snapshot, draws from the dice
// source in the order its doc comment gives, and returns StateChanges
// without writing anything. Rule failures (no action left, not enough
// gold, target already dead) are unsuccessful results, not errors. Errors
// are reserved for malformed actions and unknown entities, and nothing is
// returned alongside them.
package rules

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// ErrUnknownEntity is returned when an action names an entity that is not
// on the table.
var ErrUnknownEntity = errors.New("unknown entity")

// DefaultDC is used for checks that do not name a DC.
const DefaultDC = 15

// Engine dispatches actions to their resolvers.
type Engine struct {
	src   dice.Source
	clock func() time.Time
}

// New returns an engine drawing from src.
func New(src dice.Source) *Engine {
	return &Engine{src: src, clock: time.Now}
}

// SetSource replaces the dice source, for example after loading a save.
func (e *Engine) SetSource(src dice.Source) { e.src = src }

// SetClock replaces the provenance clock.
func (e *Engine) SetClock(clock func() time.Time) { e.clock = clock }

// Execute resolves a against the snapshot t and stamps the result with
// provenance. t is never modified.
func (e *Engine) Execute(a action.Action, t *types.Table) (action.Result, error) {
	if err := action.Validate(a); err != nil {
		return action.Result{}, err
	}
	meta := a.Meta()
	if _, ok := t.Entities[meta.ActorID]; !ok {
		return action.Result{}, fmt.Errorf("actor %q: %w", meta.ActorID, ErrUnknownEntity)
	}

	res, err := action.Accept(a, &resolver{t: t, src: e.src})
	if err != nil {
		return action.Result{}, fmt.Errorf("%s %s: %w", a.Kind(), meta.ID, err)
	}

	if res.Rolls == nil {
		res.Rolls = map[string]types.DiceRoll{}
	}
	if res.Changes == nil {
		res.Changes = []types.StateChange{}
	}
	if res.Outcome == "" {
		res.Outcome = action.OutcomeFailure
		if res.Success {
			res.Outcome = action.OutcomeSuccess
		}
	}
	if res.Narrative.Mood == "" {
		res.Narrative.Mood = action.MoodNeutral
	}
	return action.Result{
		ActionID:     meta.ID,
		Success:      res.Success,
		Outcome:      res.Outcome,
		Rolls:        res.Rolls,
		StateChanges: res.Changes,
		Source: action.Provenance{
			Action:        a,
			EngineVersion: action.EngineVersion,
			Timestamp:     e.clock().UTC(),
			SessionID:     t.SessionID,
		},
		Narrative: res.Narrative,
	}, nil
}

// resolver handles one Execute call.
type resolver struct {
	t   *types.Table
	src dice.Source
}

var _ action.Visitor = (*resolver)(nil)

func (r *resolver) entity(id string) (types.Character, error) {
	c, ok := state.Get(r.t, id)
	if !ok {
		return types.Character{}, fmt.Errorf("%q: %w", id, ErrUnknownEntity)
	}
	return c, nil
}

// pair looks up an actor and a target.
func (r *resolver) pair(actorID, targetID string) (types.Character, types.Character, error) {
	actor, err := r.entity(actorID)
	if err != nil {
		return types.Character{}, types.Character{}, err
	}
	target, err := r.entity(targetID)
	if err != nil {
		return types.Character{}, types.Character{}, err
	}
	return actor, target, nil
}

func fail(format string, args ...any) action.Resolution {
	return action.Resolution{
		Outcome:   action.OutcomeFailure,
		Narrative: action.Narrative{Summary: fmt.Sprintf(format, args...), Mood: action.MoodNeutral},
	}
}

// incapacitated returns why c cannot take actions, or "" if it can.
func incapacitated(c types.Character) string {
	switch {
	case death.IsDead(c.Combatant):
		return fmt.Sprintf("%s is dead.", c.Name)
	case c.Stats.HP == 0 || c.Conditions.Has(types.CondUnconscious) || c.Conditions.Has(types.CondDying):
		return fmt.Sprintf("%s is unconscious and cannot act.", c.Name)
	}
	return ""
}

// checkOutcome classifies a d20 check. A natural 20 that succeeds and a
// natural 1 that fails are critical.
func checkOutcome(roll dice.D20Result, ok bool) action.Outcome {
	switch {
	case ok && roll.Critical:
		return action.OutcomeCriticalSuccess
	case !ok && roll.Fumble:
		return action.OutcomeCriticalFailure
	case ok:
		return action.OutcomeSuccess
	}
	return action.OutcomeFailure
}

func sortedIDs(t *types.Table) []string {
	return slices.Sorted(maps.Keys(t.Entities))
}
