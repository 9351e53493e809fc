// Package state builds table snapshots from content definitions and
// provides read-only lookups over them.
package state

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/nathoo/rulecore/engine/ability"
	"github.com/nathoo/rulecore/types"
)

// Defs holds the immutable content definitions loaded from Lua.
type Defs struct {
	Title      string
	Intro      string
	PlayerID   string
	Characters map[string]types.Character
}

// NewTable creates a fresh table from definitions. Every character is
// copied and has its derived combat numbers filled in.
func NewTable(defs *Defs) *types.Table {
	t := &types.Table{
		Title:      defs.Title,
		PlayerID:   defs.PlayerID,
		Entities:   make(map[string]types.Character, len(defs.Characters)),
		CommandLog: []string{},
	}
	for id, c := range defs.Characters {
		c = CloneCharacter(c)
		c.ID = id
		t.Entities[id] = Derive(c)
	}
	return t
}

// Derive fills the combat fields that follow from the sheet: STR and DEX
// modifiers from ability scores and the proficiency bonus from level.
// Characters without ability scores keep whatever modifiers they carry.
func Derive(c types.Character) types.Character {
	if c.Type == "" {
		c.Type = types.EntityCharacter
	}
	if c.Abilities != (types.Abilities{}) {
		c.StrMod = ability.Modifier(c.Abilities.STR)
		c.DexMod = ability.Modifier(c.Abilities.DEX)
	}
	if c.ProficiencyBonus == 0 {
		c.ProficiencyBonus = ability.ProficiencyBonus(c.Level)
	}
	return c
}

// CloneCharacter returns a deep copy of c.
func CloneCharacter(c types.Character) types.Character {
	c.Conditions = slices.Clone(c.Conditions)
	c.UsedActions = slices.Clone(c.UsedActions)
	if c.DeathSaves != nil {
		ds := *c.DeathSaves
		c.DeathSaves = &ds
	}
	c.Proficiencies = slices.Clone(c.Proficiencies)
	c.Spells = slices.Clone(c.Spells)
	c.Inventory = slices.Clone(c.Inventory)
	c.ReputationTags = slices.Clone(c.ReputationTags)
	c.ReputationScores = maps.Clone(c.ReputationScores)
	c.ActiveThreats = maps.Clone(c.ActiveThreats)
	c.Reviews = slices.Clone(c.Reviews)
	return c
}

// Clone returns a deep copy of t.
func Clone(t *types.Table) *types.Table {
	out := *t
	out.Entities = make(map[string]types.Character, len(t.Entities))
	for id, c := range t.Entities {
		out.Entities[id] = CloneCharacter(c)
	}
	out.Initiative = slices.Clone(t.Initiative)
	out.CommandLog = slices.Clone(t.CommandLog)
	return &out
}

// Get returns a copy of an entity.
func Get(t *types.Table, id string) (types.Character, bool) {
	c, ok := t.Entities[id]
	if !ok {
		return types.Character{}, false
	}
	return CloneCharacter(c), true
}

// Player returns the player character.
func Player(t *types.Table) (types.Character, bool) {
	return Get(t, t.PlayerID)
}

// IDsByType returns the sorted IDs of every entity of the given type.
func IDsByType(t *types.Table, typ types.EntityType) []string {
	var ids []string
	for id, c := range t.Entities {
		if c.Type == typ {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// FindItem looks up an inventory stack by ID or case-insensitive name.
// It returns the stack and its index.
func FindItem(c types.Character, query string) (types.Item, int, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return types.Item{}, -1, false
	}
	for i, it := range c.Inventory {
		if strings.ToLower(it.ID) == q || strings.ToLower(it.Name) == q {
			return it, i, true
		}
	}
	for i, it := range c.Inventory {
		if strings.ReplaceAll(q, " ", "_") == strings.ToLower(it.ID) {
			return it, i, true
		}
	}
	return types.Item{}, -1, false
}

// HasItem reports whether c carries at least one of the item.
func HasItem(c types.Character, query string) bool {
	it, _, ok := FindItem(c, query)
	return ok && it.Quantity > 0
}

// KnowsSpell reports whether spell is on c's spell list.
func KnowsSpell(c types.Character, spell string) bool {
	want := strings.ToLower(strings.TrimSpace(spell))
	for _, s := range c.Spells {
		if strings.ToLower(s) == want {
			return true
		}
	}
	return false
}

// EquippedWeapon returns the weapon c is holding, if any.
func EquippedWeapon(c types.Character) (types.Item, bool) {
	for _, it := range c.Inventory {
		if it.Equipped && it.Kind == "weapon" {
			return it, true
		}
	}
	return types.Item{}, false
}
