package rules

import (
	"fmt"
	"slices"

	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/types"
)

// Interview states, in order. An empty tutorial state means the character
// is in the world.
const (
	InterviewWelcome    = "interview_welcome"
	InterviewClassIntro = "interview_class_intro"
	NeedsEquipment      = "needs_equipment"
	InterviewBackstory  = "interview_backstory"
	InterviewComplete   = "interview_complete"
)

var interviewNext = map[string]string{
	InterviewWelcome:    InterviewClassIntro,
	InterviewClassIntro: NeedsEquipment,
	NeedsEquipment:      InterviewBackstory,
	InterviewBackstory:  InterviewComplete,
}

// WorldStart is where a character enters the world.
var WorldStart = types.Point{X: 500, Y: 500}

// ContinueInterview advances the session-zero interview one step.
func (r *resolver) ContinueInterview(a action.ContinueInterview) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	next, ok := interviewNext[actor.TutorialState]
	if !ok {
		if actor.TutorialState == InterviewComplete {
			return fail("The interview is complete. Enter the world to begin."), nil
		}
		return fail("No interview is in progress."), nil
	}
	after := actor
	after.TutorialState = next
	return action.Resolution{
		Success: true,
		Outcome: action.OutcomeSuccess,
		Changes: effects.Diff(actor, after),
		Narrative: action.Narrative{
			Summary: fmt.Sprintf("The interview moves on from %s to %s.", actor.TutorialState, next),
			Mood:    action.MoodNeutral,
		},
	}, nil
}

// SkipInterview jumps straight to the end of the interview.
func (r *resolver) SkipInterview(a action.SkipInterview) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if actor.TutorialState == "" {
		return fail("No interview is in progress."), nil
	}
	after := actor
	after.TutorialState = InterviewComplete
	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Changes:   effects.Diff(actor, after),
		Narrative: action.Narrative{Summary: "You skip the interview and are ready to begin your adventure.", Mood: action.MoodNeutral},
	}, nil
}

// EnterWorld ends the tutorial and places the actor at WorldStart. It is
// refused part way through the interview.
func (r *resolver) EnterWorld(a action.EnterWorld) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	if actor.TutorialState != "" && actor.TutorialState != InterviewComplete {
		return fail("Finish the interview before entering the world."), nil
	}
	after := actor
	after.TutorialState = ""
	after.Position = WorldStart
	return action.Resolution{
		Success: true,
		Outcome: action.OutcomeSuccess,
		Changes: effects.Diff(actor, after),
		Narrative: action.Narrative{
			Summary: fmt.Sprintf("%s steps into the world at (%d, %d), ready to begin.", actor.Name, WorldStart.X, WorldStart.Y),
			Mood:    action.MoodTriumph,
		},
	}, nil
}

// Conversation has no mechanics. It exists so free text still yields an
// auditable result.
func (r *resolver) Conversation(a action.Conversation) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	summary := fmt.Sprintf("%s speaks.", actor.Name)
	if a.NPCID != "" {
		npc, err := r.entity(a.NPCID)
		if err != nil {
			return action.Resolution{}, err
		}
		summary = fmt.Sprintf("%s speaks with %s.", actor.Name, npc.Name)
	}
	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Narrative: action.Narrative{Summary: summary, Mood: action.MoodNeutral},
	}, nil
}

// ReviewNarration records the player's feedback about a narration.
func (r *resolver) ReviewNarration(a action.ReviewNarration) (action.Resolution, error) {
	actor, err := r.entity(a.ActorID)
	if err != nil {
		return action.Resolution{}, err
	}
	after := actor
	after.Reviews = append(slices.Clone(actor.Reviews), a.Feedback)
	return action.Resolution{
		Success:   true,
		Outcome:   action.OutcomeSuccess,
		Changes:   effects.Diff(actor, after),
		Narrative: action.Narrative{Summary: "Your feedback on the narration has been recorded.", Mood: action.MoodNeutral},
	}, nil
}
