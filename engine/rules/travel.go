package rules

import (
	"fmt"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/types"
)

const (
	// TravelXP is awarded for every journey.
	TravelXP = 10
	// EncounterThreshold is the highest d20 roll that triggers a random
	// encounter on the road.
	EncounterThreshold = 3
)

// directions maps a compass direction to its unit step. North is +Y.
var directions = map[string]types.Point{
	"north":     {X: 0, Y: 1},
	"south":     {X: 0, Y: -1},
	"east":      {X: 1, Y: 0},
	"west":      {X: -1, Y: 0},
	"northeast": {X: 1, Y: 1},
	"northwest": {X: -1, Y: 1},
	"southeast": {X: 1, Y: -1},
	"southwest": {X: -1, Y: -1},
}

// Travel moves the actor Distance tiles in Direction and awards TravelXP.
// A grappled actor cannot travel. Draws: the encounter d20, then the threat
// rolls in threat-name order.
func (r *resolver) Travel(a action.Travel) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if why := incapacitated(actor); why != "" {
		return fail("%s", why), nil
	}
	if actor.GrappledBy != "" {
		return fail("%s is grappled and cannot move.", actor.Name), nil
	}

	step := directions[a.Direction]
	after := actor
	after.Position = types.Point{
		X: actor.Position.X + step.X*a.Distance,
		Y: actor.Position.Y + step.Y*a.Distance,
	}
	after.XP += TravelXP

	encounter := dice.RollD20(dice.D20Options{}, r.src)
	rolls := map[string]types.DiceRoll{"encounter": encounter.Record()}
	threat, hit := r.rollThreats(actor, 0, rolls)

	summary := fmt.Sprintf("%s travels %s to (%d, %d).", actor.Name, a.Direction, after.Position.X, after.Position.Y)
	mood := action.MoodNeutral
	switch {
	case hit:
		summary += fmt.Sprintf(" Trouble finds them on the road: %s (%s, %s severity).", threat.Variant, threat.Name, threat.Severity)
		mood = action.MoodTense
	case encounter.Kept <= EncounterThreshold:
		summary += " Something stirs nearby..."
		mood = action.MoodTense
	default:
		summary += " The journey is uneventful."
	}

	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Rolls:     rolls,
		Changes:   effects.Diff(actor, after),
		Narrative: action.Narrative{Summary: summary, Mood: mood},
	}, nil
}
