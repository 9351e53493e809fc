// Package types defines the shared data structures for the rules core.
// Apart from the Conditions set helpers, this package contains only type
// definitions.
package types

import "slices"

// EntityType classifies the owner of a piece of state.
type EntityType string

const (
	EntityCharacter EntityType = "character"
	EntityNPC       EntityType = "npc"
	EntityEnemy     EntityType = "enemy"
	EntityObject    EntityType = "object"
	EntityTable     EntityType = "table"
)

// TableID is the entity ID used for table-wide state such as initiative.
const TableID = "table"

// Condition vocabulary.
const (
	CondUnconscious = "unconscious"
	CondDying       = "dying"
	CondDead        = "dead"
	CondProne       = "prone"
	CondGrappled    = "grappled"
	CondRestrained  = "restrained"
	CondHidden      = "hidden"
	CondPoisoned    = "poisoned"
)

// Action economy slots.
const (
	SlotAction      = "action"
	SlotBonusAction = "bonus_action"
	SlotReaction    = "reaction"
	SlotMovement    = "movement"
)

// Field names used in StateChanges.
const (
	FieldHP               = "hp_current"
	FieldTempHP           = "temp_hp"
	FieldDamage           = "damage"
	FieldConditions       = "conditions"
	FieldDeathSaves       = "death_saves"
	FieldUsedActions      = "used_actions"
	FieldHasReaction      = "has_reaction"
	FieldGrappling        = "grappling"
	FieldGrappledBy       = "grappled_by"
	FieldPositionX        = "position_x"
	FieldPositionY        = "position_y"
	FieldXP               = "xp"
	FieldGold             = "gold"
	FieldInventory        = "inventory"
	FieldTutorialState    = "tutorial_state"
	FieldReputationTags   = "reputation_tags"
	FieldReputationScores = "reputation_scores"
	FieldActiveThreats    = "active_threats"
	FieldReviews          = "narration_reviews"
	FieldInitiative       = "initiative_order"
)

// Conditions is a sorted set of condition names. The zero value is empty.
// Methods never modify the receiver.
type Conditions []string

// Has reports whether c contains name.
func (c Conditions) Has(name string) bool {
	return slices.Contains(c, name)
}

// With returns a copy of c with the given names added.
func (c Conditions) With(names ...string) Conditions {
	out := slices.Clone(c)
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// Without returns a copy of c with the given names removed.
func (c Conditions) Without(names ...string) Conditions {
	out := make(Conditions, 0, len(c))
	for _, n := range c {
		if !slices.Contains(names, n) {
			out = append(out, n)
		}
	}
	return out
}

// Stats holds the vital numbers of a combatant.
type Stats struct {
	HP         int    `json:"hp"`
	MaxHP      int    `json:"max_hp"`
	TempHP     int    `json:"temp_hp,omitempty"`
	Damage     string `json:"damage"`
	ArmorClass int    `json:"ac"`
}

// DeathSaveState tracks the death-save ladder of a character at 0 HP.
type DeathSaveState struct {
	Successes int  `json:"successes"`
	Failures  int  `json:"failures"`
	Stable    bool `json:"stable"`
}

// Point is a grid position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Combatant is everything the combat resolver and the death machine read.
type Combatant struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Type             EntityType      `json:"type"`
	Stats            Stats           `json:"stats"`
	StrMod           int             `json:"str_mod"`
	DexMod           int             `json:"dex_mod"`
	ProficiencyBonus int             `json:"proficiency_bonus"`
	Conditions       Conditions      `json:"conditions,omitempty"`
	UsedActions      []string        `json:"used_actions,omitempty"`
	HasReaction      bool            `json:"has_reaction"`
	Grappling        string          `json:"grappling,omitempty"`
	GrappledBy       string          `json:"grappled_by,omitempty"`
	DeathSaves       *DeathSaveState `json:"death_saves,omitempty"`
	Position         Point           `json:"position"`
}

// Abilities holds the six ability scores.
type Abilities struct {
	STR int `json:"STR"`
	DEX int `json:"DEX"`
	CON int `json:"CON"`
	INT int `json:"INT"`
	WIS int `json:"WIS"`
	CHA int `json:"CHA"`
}

// Item is one inventory stack.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"` // weapon, armor, potion, gear
	Quantity int    `json:"quantity"`
	Equipped bool   `json:"equipped,omitempty"`
	Damage   string `json:"damage,omitempty"`
	Healing  string `json:"healing,omitempty"`
	Cost     int    `json:"cost,omitempty"`
}

// Threat is an ongoing consequence of a believed social claim.
type Threat struct {
	Chance   int    `json:"chance"`
	Severity string `json:"severity"`
}

// Character is a full sheet: combat state plus everything else the
// resolvers read or change.
type Character struct {
	Combatant

	Class            string            `json:"class,omitempty"`
	Level            int               `json:"level"`
	Abilities        Abilities         `json:"abilities"`
	Proficiencies    []string          `json:"proficiencies,omitempty"`
	Spells           []string          `json:"spells,omitempty"`
	Inventory        []Item            `json:"inventory,omitempty"`
	Gold             int               `json:"gold"`
	XP               int               `json:"xp"`
	TutorialState    string            `json:"tutorial_state,omitempty"`
	ReputationTags   []string          `json:"reputation_tags,omitempty"`
	ReputationScores map[string]int    `json:"reputation_scores,omitempty"`
	ActiveThreats    map[string]Threat `json:"active_threats,omitempty"`
	Reviews          []string          `json:"narration_reviews,omitempty"`
}

// Table is the snapshot of a running session. Resolvers read it; only
// effects.Apply writes it.
type Table struct {
	Title       string               `json:"title"`
	PlayerID    string               `json:"player_id"`
	Entities    map[string]Character `json:"entities"`
	Initiative  []string             `json:"initiative,omitempty"`
	TurnCount   int                  `json:"turn_count"`
	RNGSeed     int64                `json:"rng_seed"`
	RNGPosition int64                `json:"rng_position"`
	CommandLog  []string             `json:"command_log,omitempty"`
	// SessionID groups the journal entries of one line of play.
	SessionID string `json:"session_id,omitempty"`
}

// StateChange is one absolute field mutation. NewValue is the complete
// value after the change, so applying a change twice is the same as
// applying it once.
type StateChange struct {
	EntityID   string     `json:"entityId"`
	EntityType EntityType `json:"entityType"`
	Field      string     `json:"field"`
	OldValue   any        `json:"oldValue"`
	NewValue   any        `json:"newValue"`
	Delta      *int       `json:"delta,omitempty"`
}

// DiceRoll is the audit record of one roll inside an action result.
type DiceRoll struct {
	Notation string `json:"notation"`
	Rolls    []int  `json:"rolls"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
	Mode     string `json:"mode,omitempty"`
	Kept     int    `json:"kept,omitempty"`
	Critical bool   `json:"critical,omitempty"`
	Fumble   bool   `json:"fumble,omitempty"`
}
