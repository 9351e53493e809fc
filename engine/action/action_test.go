package action

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/rulecore/types"
)

func base() Base {
	return Base{ID: "act-1", ActorID: "aria", Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

// kindRecorder is a Visitor that records which method ran.
type kindRecorder struct{ got Kind }

func (r *kindRecorder) rec(k Kind) (Resolution, error) { r.got = k; return Resolution{}, nil }

func (r *kindRecorder) MeleeAttack(a MeleeAttack) (Resolution, error)   { return r.rec(a.Kind()) }
func (r *kindRecorder) RangedAttack(a RangedAttack) (Resolution, error) { return r.rec(a.Kind()) }
func (r *kindRecorder) Grapple(a Grapple) (Resolution, error)           { return r.rec(a.Kind()) }
func (r *kindRecorder) Shove(a Shove) (Resolution, error)               { return r.rec(a.Kind()) }
func (r *kindRecorder) OpportunityAttack(a OpportunityAttack) (Resolution, error) {
	return r.rec(a.Kind())
}
func (r *kindRecorder) StartTurn(a StartTurn) (Resolution, error)           { return r.rec(a.Kind()) }
func (r *kindRecorder) RollInitiative(a RollInitiative) (Resolution, error) { return r.rec(a.Kind()) }
func (r *kindRecorder) DeathSave(a DeathSave) (Resolution, error)           { return r.rec(a.Kind()) }
func (r *kindRecorder) Stabilize(a Stabilize) (Resolution, error)           { return r.rec(a.Kind()) }
func (r *kindRecorder) SkillCheck(a SkillCheck) (Resolution, error)         { return r.rec(a.Kind()) }
func (r *kindRecorder) AbilityCheck(a AbilityCheck) (Resolution, error)     { return r.rec(a.Kind()) }
func (r *kindRecorder) SavingThrow(a SavingThrow) (Resolution, error)       { return r.rec(a.Kind()) }
func (r *kindRecorder) Travel(a Travel) (Resolution, error)                 { return r.rec(a.Kind()) }
func (r *kindRecorder) Search(a Search) (Resolution, error)                 { return r.rec(a.Kind()) }
func (r *kindRecorder) TakeItem(a TakeItem) (Resolution, error)             { return r.rec(a.Kind()) }
func (r *kindRecorder) DropItem(a DropItem) (Resolution, error)             { return r.rec(a.Kind()) }
func (r *kindRecorder) EquipItem(a EquipItem) (Resolution, error)           { return r.rec(a.Kind()) }
func (r *kindRecorder) UseItem(a UseItem) (Resolution, error)               { return r.rec(a.Kind()) }
func (r *kindRecorder) Rest(a Rest) (Resolution, error)                     { return r.rec(a.Kind()) }
func (r *kindRecorder) SocialClaim(a SocialClaim) (Resolution, error)       { return r.rec(a.Kind()) }
func (r *kindRecorder) Conversation(a Conversation) (Resolution, error)     { return r.rec(a.Kind()) }
func (r *kindRecorder) ContinueInterview(a ContinueInterview) (Resolution, error) {
	return r.rec(a.Kind())
}
func (r *kindRecorder) SkipInterview(a SkipInterview) (Resolution, error) { return r.rec(a.Kind()) }
func (r *kindRecorder) EnterWorld(a EnterWorld) (Resolution, error)       { return r.rec(a.Kind()) }
func (r *kindRecorder) ReviewNarration(a ReviewNarration) (Resolution, error) {
	return r.rec(a.Kind())
}

func samples() []Action {
	b := base()
	return []Action{
		MeleeAttack{Base: b, TargetID: "goblin", Cover: "half"},
		RangedAttack{Base: b, TargetID: "goblin", Range: 60},
		Grapple{Base: b, TargetID: "goblin"},
		Shove{Base: b, TargetID: "goblin", Mode: "prone"},
		OpportunityAttack{Base: b, TargetID: "goblin"},
		StartTurn{Base: b},
		RollInitiative{Base: b, ParticipantIDs: []string{"aria", "goblin"}},
		DeathSave{Base: b},
		Stabilize{Base: b, TargetID: "bram"},
		SkillCheck{Base: b, Skill: "stealth", DC: 12},
		AbilityCheck{Base: b, Ability: "STR", DC: 10},
		SavingThrow{Base: b, Ability: "dex", DC: 14},
		Travel{Base: b, Direction: "north", Distance: 2},
		Search{Base: b, Area: "chest"},
		TakeItem{Base: b, ItemID: "rope", SourceID: "shop"},
		DropItem{Base: b, ItemID: "rope"},
		EquipItem{Base: b, ItemID: "longsword"},
		UseItem{Base: b, ItemID: "potion"},
		Rest{Base: b, RestType: "short"},
		SocialClaim{Base: b, ClaimType: "fame", ClaimText: "I am famous", DC: 15},
		Conversation{Base: b, Text: "hello there"},
		ContinueInterview{Base: b},
		SkipInterview{Base: b},
		EnterWorld{Base: b},
		ReviewNarration{Base: b, Feedback: "the goblin was already dead"},
	}
}

func TestAccept_EveryKindRoutesToItsMethod(t *testing.T) {
	all := samples()
	require.Len(t, all, len(Kinds()), "every kind needs a sample")
	for _, a := range all {
		r := &kindRecorder{}
		_, err := Accept(a, r)
		require.NoError(t, err)
		assert.Equal(t, a.Kind(), r.got)
	}
}

func TestAccept_Nil(t *testing.T) {
	_, err := Accept(nil, &kindRecorder{})
	assert.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestEncodeDecode_EveryKind(t *testing.T) {
	for _, a := range samples() {
		data, err := Encode(a)
		require.NoError(t, err)

		var head map[string]any
		require.NoError(t, json.Unmarshal(data, &head))
		assert.Equal(t, string(a.Kind()), head["type"])
		assert.Equal(t, "act-1", head["actionId"])
		assert.Equal(t, "aria", head["actorId"])

		back, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, a, back)
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	_, err := Decode([]byte(`{"type":"review_dm_response","actionId":"x","actorId":"y"}`))
	assert.ErrorIs(t, err, ErrUnsupportedAction)

	_, err = Decode([]byte(`{"actionId":"x"}`))
	assert.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestValidate_Samples(t *testing.T) {
	for _, a := range samples() {
		assert.NoError(t, Validate(a), "%s", a.Kind())
	}
}

func TestValidate_Rejects(t *testing.T) {
	b := base()
	tests := []struct {
		name string
		a    Action
	}{
		{"missing action id", MeleeAttack{Base: Base{ActorID: "aria"}, TargetID: "goblin"}},
		{"missing actor", StartTurn{Base: Base{ID: "x"}}},
		{"missing target", MeleeAttack{Base: b}},
		{"bad cover", MeleeAttack{Base: b, TargetID: "goblin", Cover: "wall"}},
		{"unknown skill", SkillCheck{Base: b, Skill: "juggling"}},
		{"unknown ability", AbilityCheck{Base: b, Ability: "luck"}},
		{"bad direction", Travel{Base: b, Direction: "up", Distance: 1}},
		{"zero distance", Travel{Base: b, Direction: "north"}},
		{"bad rest", Rest{Base: b, RestType: "nap"}},
		{"bad shove", Shove{Base: b, TargetID: "goblin", Mode: "spin"}},
		{"empty initiative", RollInitiative{Base: b}},
		{"bad claim", SocialClaim{Base: b, ClaimType: "wizardry", ClaimText: "x", DC: 10}},
		{"empty feedback", ReviewNarration{Base: b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.a)
			assert.ErrorIs(t, err, ErrInvalidAction)
		})
	}
}

func TestResultJSON(t *testing.T) {
	res := Result{
		ActionID: "act-1",
		Success:  true,
		Outcome:  OutcomeSuccess,
		Rolls:    map[string]types.DiceRoll{"attack": {Notation: "1d20", Rolls: []int{15}, Modifier: 5, Total: 20, Kept: 15}},
		StateChanges: []types.StateChange{
			{EntityID: "goblin", EntityType: types.EntityEnemy, Field: types.FieldHP, OldValue: 7, NewValue: 0},
		},
		Source:    Provenance{Action: MeleeAttack{Base: base(), TargetID: "goblin"}, EngineVersion: EngineVersion, Timestamp: base().Timestamp},
		Narrative: Narrative{Summary: "The goblin falls.", Mood: MoodTriumph},
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	source := raw["source"].(map[string]any)
	assert.Equal(t, "1.0.0", source["ruleEngineVersion"])
	assert.Equal(t, "melee_attack", source["action"].(map[string]any)["type"])
	assert.Contains(t, raw, "narrativeContext")

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, res.Source.Action, back.Source.Action)
	assert.Equal(t, "act-1", back.ActionID)
	assert.Len(t, back.StateChanges, 1)
}

func TestMechanical(t *testing.T) {
	assert.False(t, Mechanical(KindConversation))
	assert.False(t, Mechanical(KindReviewNarration))
	assert.True(t, Mechanical(KindMeleeAttack))
	assert.True(t, Mechanical(KindRest))
}
