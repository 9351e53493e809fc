// Package action defines the closed set of structured actions the rules
// core accepts and the result it returns for each.
//
// Action is a sealed interface: only types in this package implement it,
// and each one routes itself to a single Visitor method. A resolver that
// implements Visitor therefore covers every kind, and adding a kind without
// a Visitor method fails to compile.
package action

import (
	"errors"
	"time"

	"github.com/nathoo/rulecore/types"
)

// EngineVersion is stamped on every result.
const EngineVersion = "1.0.0"

var (
	// ErrUnsupportedAction is returned for an unknown wire tag or a nil action.
	ErrUnsupportedAction = errors.New("unsupported action")
	// ErrInvalidAction is returned when an action fails structural validation.
	ErrInvalidAction = errors.New("invalid action")
)

// Kind is the wire tag of an action.
type Kind string

const (
	KindMeleeAttack       Kind = "melee_attack"
	KindRangedAttack      Kind = "ranged_attack"
	KindGrapple           Kind = "grapple"
	KindShove             Kind = "shove"
	KindOpportunityAttack Kind = "opportunity_attack"
	KindStartTurn         Kind = "start_turn"
	KindRollInitiative    Kind = "roll_initiative"
	KindDeathSave         Kind = "death_save"
	KindStabilize         Kind = "stabilize"
	KindSkillCheck        Kind = "skill_check"
	KindAbilityCheck      Kind = "ability_check"
	KindSavingThrow       Kind = "saving_throw"
	KindTravel            Kind = "travel"
	KindSearch            Kind = "search"
	KindTakeItem          Kind = "take_item"
	KindDropItem          Kind = "drop_item"
	KindEquipItem         Kind = "equip_item"
	KindUseItem           Kind = "use_item"
	KindRest              Kind = "rest"
	KindSocialClaim       Kind = "social_claim"
	KindConversation      Kind = "conversation"
	KindContinueInterview Kind = "continue_interview"
	KindSkipInterview     Kind = "skip_interview"
	KindEnterWorld        Kind = "enter_world"
	KindReviewNarration   Kind = "review_narration"
)

// Base carries the fields every action has.
type Base struct {
	ID        string    `json:"actionId" validate:"required"`
	ActorID   string    `json:"actorId" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// Meta returns the common fields.
func (b Base) Meta() Base { return b }

// Action is one structured player action.
type Action interface {
	Kind() Kind
	Meta() Base
	accept(v Visitor) (Resolution, error)
}

// Visitor resolves each action kind.
type Visitor interface {
	MeleeAttack(MeleeAttack) (Resolution, error)
	RangedAttack(RangedAttack) (Resolution, error)
	Grapple(Grapple) (Resolution, error)
	Shove(Shove) (Resolution, error)
	OpportunityAttack(OpportunityAttack) (Resolution, error)
	StartTurn(StartTurn) (Resolution, error)
	RollInitiative(RollInitiative) (Resolution, error)
	DeathSave(DeathSave) (Resolution, error)
	Stabilize(Stabilize) (Resolution, error)
	SkillCheck(SkillCheck) (Resolution, error)
	AbilityCheck(AbilityCheck) (Resolution, error)
	SavingThrow(SavingThrow) (Resolution, error)
	Travel(Travel) (Resolution, error)
	Search(Search) (Resolution, error)
	TakeItem(TakeItem) (Resolution, error)
	DropItem(DropItem) (Resolution, error)
	EquipItem(EquipItem) (Resolution, error)
	UseItem(UseItem) (Resolution, error)
	Rest(Rest) (Resolution, error)
	SocialClaim(SocialClaim) (Resolution, error)
	Conversation(Conversation) (Resolution, error)
	ContinueInterview(ContinueInterview) (Resolution, error)
	SkipInterview(SkipInterview) (Resolution, error)
	EnterWorld(EnterWorld) (Resolution, error)
	ReviewNarration(ReviewNarration) (Resolution, error)
}

// Accept routes a to the matching Visitor method.
func Accept(a Action, v Visitor) (Resolution, error) {
	if a == nil {
		return Resolution{}, ErrUnsupportedAction
	}
	return a.accept(v)
}

// Mechanical reports whether a kind resolves game mechanics. Conversation
// and review are the only kinds that never roll dice.
func Mechanical(k Kind) bool {
	return k != KindConversation && k != KindReviewNarration
}

// Combat actions.

type MeleeAttack struct {
	Base
	TargetID string `json:"targetId" validate:"required"`
	Cover    string `json:"cover,omitempty" validate:"omitempty,cover"`
	OffHand  bool   `json:"offHand,omitempty"`
	Finesse  bool   `json:"finesse,omitempty"`
}

type RangedAttack struct {
	Base
	TargetID string `json:"targetId" validate:"required"`
	Range    int    `json:"range" validate:"gte=0,lte=600"`
	Cover    string `json:"cover,omitempty" validate:"omitempty,cover"`
}

type Grapple struct {
	Base
	TargetID string `json:"targetId" validate:"required"`
}

type Shove struct {
	Base
	TargetID string `json:"targetId" validate:"required"`
	Mode     string `json:"mode" validate:"oneof=prone push"`
}

// OpportunityAttack is a reaction by the actor against a target leaving
// its reach.
type OpportunityAttack struct {
	Base
	TargetID string `json:"targetId" validate:"required"`
}

// StartTurn resets the actor's action economy.
type StartTurn struct {
	Base
}

type RollInitiative struct {
	Base
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1,dive,required"`
}

// Death actions.

type DeathSave struct {
	Base
}

// Stabilize is the actor's Medicine check on a dying target.
type Stabilize struct {
	Base
	TargetID string `json:"targetId" validate:"required"`
}

// Checks.

type SkillCheck struct {
	Base
	Skill        string `json:"skill" validate:"required,skill"`
	DC           int    `json:"dc,omitempty" validate:"gte=0,lte=40"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
	Context      string `json:"context,omitempty"`
}

type AbilityCheck struct {
	Base
	Ability string `json:"ability" validate:"required,ability"`
	DC      int    `json:"dc,omitempty" validate:"gte=0,lte=40"`
}

type SavingThrow struct {
	Base
	Ability    string `json:"ability" validate:"required,ability"`
	DC         int    `json:"dc,omitempty" validate:"gte=0,lte=40"`
	Proficient bool   `json:"proficient,omitempty"`
}

// Exploration.

type Travel struct {
	Base
	Direction string `json:"direction" validate:"required,oneof=north south east west northeast northwest southeast southwest"`
	Distance  int    `json:"distance" validate:"min=1,max=100"`
}

type Search struct {
	Base
	Area string `json:"area,omitempty"`
}

// Items.

// TakeItem moves an item from a source entity's inventory to the actor.
// Items with a cost are bought.
type TakeItem struct {
	Base
	ItemID   string `json:"itemId" validate:"required"`
	SourceID string `json:"sourceId" validate:"required"`
}

type DropItem struct {
	Base
	ItemID string `json:"itemId" validate:"required"`
}

type EquipItem struct {
	Base
	ItemID string `json:"itemId" validate:"required"`
}

// UseItem consumes an item. TargetID defaults to the actor.
type UseItem struct {
	Base
	ItemID   string `json:"itemId" validate:"required"`
	TargetID string `json:"targetId,omitempty"`
}

type Rest struct {
	Base
	RestType string `json:"restType" validate:"oneof=short long"`
}

// Social and dialogue.

type SocialClaim struct {
	Base
	ClaimType string `json:"claimType" validate:"required,oneof=royal_heritage fame powerful_connection supernatural physical_prowess expertise"`
	ClaimText string `json:"claimText" validate:"required,max=500"`
	DC        int    `json:"difficulty" validate:"gte=1,lte=30"`
	NPCID     string `json:"npcId,omitempty"`
}

// Conversation is free text with no mechanical effect.
type Conversation struct {
	Base
	Text  string `json:"text" validate:"max=2000"`
	NPCID string `json:"npcId,omitempty"`
}

// Interview and meta.

type ContinueInterview struct {
	Base
}

type SkipInterview struct {
	Base
}

type EnterWorld struct {
	Base
}

// ReviewNarration records the player's complaint about a narration.
type ReviewNarration struct {
	Base
	Feedback string `json:"feedback" validate:"required,max=500"`
}

func (MeleeAttack) Kind() Kind       { return KindMeleeAttack }
func (RangedAttack) Kind() Kind      { return KindRangedAttack }
func (Grapple) Kind() Kind           { return KindGrapple }
func (Shove) Kind() Kind             { return KindShove }
func (OpportunityAttack) Kind() Kind { return KindOpportunityAttack }
func (StartTurn) Kind() Kind         { return KindStartTurn }
func (RollInitiative) Kind() Kind    { return KindRollInitiative }
func (DeathSave) Kind() Kind         { return KindDeathSave }
func (Stabilize) Kind() Kind         { return KindStabilize }
func (SkillCheck) Kind() Kind        { return KindSkillCheck }
func (AbilityCheck) Kind() Kind      { return KindAbilityCheck }
func (SavingThrow) Kind() Kind       { return KindSavingThrow }
func (Travel) Kind() Kind            { return KindTravel }
func (Search) Kind() Kind            { return KindSearch }
func (TakeItem) Kind() Kind          { return KindTakeItem }
func (DropItem) Kind() Kind          { return KindDropItem }
func (EquipItem) Kind() Kind         { return KindEquipItem }
func (UseItem) Kind() Kind           { return KindUseItem }
func (Rest) Kind() Kind              { return KindRest }
func (SocialClaim) Kind() Kind       { return KindSocialClaim }
func (Conversation) Kind() Kind      { return KindConversation }
func (ContinueInterview) Kind() Kind { return KindContinueInterview }
func (SkipInterview) Kind() Kind     { return KindSkipInterview }
func (EnterWorld) Kind() Kind        { return KindEnterWorld }
func (ReviewNarration) Kind() Kind   { return KindReviewNarration }

func (a MeleeAttack) accept(v Visitor) (Resolution, error)       { return v.MeleeAttack(a) }
func (a RangedAttack) accept(v Visitor) (Resolution, error)      { return v.RangedAttack(a) }
func (a Grapple) accept(v Visitor) (Resolution, error)           { return v.Grapple(a) }
func (a Shove) accept(v Visitor) (Resolution, error)             { return v.Shove(a) }
func (a OpportunityAttack) accept(v Visitor) (Resolution, error) { return v.OpportunityAttack(a) }
func (a StartTurn) accept(v Visitor) (Resolution, error)         { return v.StartTurn(a) }
func (a RollInitiative) accept(v Visitor) (Resolution, error)    { return v.RollInitiative(a) }
func (a DeathSave) accept(v Visitor) (Resolution, error)         { return v.DeathSave(a) }
func (a Stabilize) accept(v Visitor) (Resolution, error)         { return v.Stabilize(a) }
func (a SkillCheck) accept(v Visitor) (Resolution, error)        { return v.SkillCheck(a) }
func (a AbilityCheck) accept(v Visitor) (Resolution, error)      { return v.AbilityCheck(a) }
func (a SavingThrow) accept(v Visitor) (Resolution, error)       { return v.SavingThrow(a) }
func (a Travel) accept(v Visitor) (Resolution, error)            { return v.Travel(a) }
func (a Search) accept(v Visitor) (Resolution, error)            { return v.Search(a) }
func (a TakeItem) accept(v Visitor) (Resolution, error)          { return v.TakeItem(a) }
func (a DropItem) accept(v Visitor) (Resolution, error)          { return v.DropItem(a) }
func (a EquipItem) accept(v Visitor) (Resolution, error)         { return v.EquipItem(a) }
func (a UseItem) accept(v Visitor) (Resolution, error)           { return v.UseItem(a) }
func (a Rest) accept(v Visitor) (Resolution, error)              { return v.Rest(a) }
func (a SocialClaim) accept(v Visitor) (Resolution, error)       { return v.SocialClaim(a) }
func (a Conversation) accept(v Visitor) (Resolution, error)      { return v.Conversation(a) }
func (a ContinueInterview) accept(v Visitor) (Resolution, error) { return v.ContinueInterview(a) }
func (a SkipInterview) accept(v Visitor) (Resolution, error)     { return v.SkipInterview(a) }
func (a EnterWorld) accept(v Visitor) (Resolution, error)        { return v.EnterWorld(a) }
func (a ReviewNarration) accept(v Visitor) (Resolution, error)   { return v.ReviewNarration(a) }

// Outcome classifies a result.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomePartial         Outcome = "partial"
	OutcomeFailure         Outcome = "failure"
	OutcomeCriticalSuccess Outcome = "critical_success"
	OutcomeCriticalFailure Outcome = "critical_failure"
)

// Mood is the emotional register handed to the narrator.
type Mood string

const (
	MoodTriumph Mood = "triumph"
	MoodDefeat  Mood = "defeat"
	MoodNeutral Mood = "neutral"
	MoodTense   Mood = "tense"
)

// Narrative is the only part of a result meant for the narrator.
type Narrative struct {
	Summary string `json:"summary"`
	Mood    Mood   `json:"mood"`
}

// Resolution is what a resolver returns; the dispatcher stamps it into a
// Result.
type Resolution struct {
	Success   bool
	Outcome   Outcome
	Rolls     map[string]types.DiceRoll
	Changes   []types.StateChange
	Narrative Narrative
}

// Provenance records which action and engine produced a result.
type Provenance struct {
	Action        Action
	EngineVersion string
	Timestamp     time.Time
	SessionID     string
}

// Result is the immutable outcome of one action.
type Result struct {
	ActionID     string                    `json:"actionId"`
	Success      bool                      `json:"success"`
	Outcome      Outcome                   `json:"outcome"`
	Rolls        map[string]types.DiceRoll `json:"rolls"`
	StateChanges []types.StateChange       `json:"stateChanges"`
	Source       Provenance                `json:"source"`
	Narrative    Narrative                 `json:"narrativeContext"`
}
