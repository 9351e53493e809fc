package state

import (
	"reflect"
	"testing"

	"github.com/nathoo/rulecore/types"
)

func testDefs() *Defs {
	return &Defs{
		Title:    "Test Table",
		PlayerID: "aria",
		Characters: map[string]types.Character{
			"aria": {
				Combatant: types.Combatant{
					Name:  "Aria",
					Stats: types.Stats{HP: 12, MaxHP: 12, Damage: "1d8", ArmorClass: 15},
				},
				Class:     "fighter",
				Level:     5,
				Abilities: types.Abilities{STR: 16, DEX: 13, CON: 14, INT: 8, WIS: 12, CHA: 10},
				Spells:    []string{"Cure Wounds"},
				Inventory: []types.Item{
					{ID: "longsword", Name: "Longsword", Kind: "weapon", Quantity: 1, Equipped: true, Damage: "1d8"},
					{ID: "healing_potion", Name: "Potion of Healing", Kind: "potion", Quantity: 1},
					{ID: "torch", Name: "Torch", Kind: "gear", Quantity: 0},
				},
			},
			"goblin": {
				Combatant: types.Combatant{
					Name:   "Goblin",
					Type:   types.EntityEnemy,
					Stats:  types.Stats{HP: 7, MaxHP: 7, Damage: "1d6", ArmorClass: 13},
					DexMod: 2,
				},
			},
			"merchant": {
				Combatant: types.Combatant{Name: "Merchant", Type: types.EntityNPC},
			},
		},
	}
}

func TestNewTable(t *testing.T) {
	tbl := NewTable(testDefs())
	if tbl.Title != "Test Table" || tbl.PlayerID != "aria" {
		t.Errorf("header = %q/%q", tbl.Title, tbl.PlayerID)
	}
	if len(tbl.Entities) != 3 {
		t.Fatalf("entities = %d, want 3", len(tbl.Entities))
	}
	aria := tbl.Entities["aria"]
	if aria.ID != "aria" {
		t.Errorf("ID = %q, want filled from the key", aria.ID)
	}
	if aria.Type != types.EntityCharacter {
		t.Errorf("Type = %q, want character default", aria.Type)
	}
	if aria.StrMod != 3 || aria.DexMod != 1 {
		t.Errorf("mods = %d/%d, want 3/1", aria.StrMod, aria.DexMod)
	}
	if aria.ProficiencyBonus != 3 {
		t.Errorf("proficiency = %d, want 3 at level 5", aria.ProficiencyBonus)
	}

	gob := tbl.Entities["goblin"]
	if gob.DexMod != 2 {
		t.Errorf("goblin DexMod = %d, want explicit 2 kept", gob.DexMod)
	}
	if gob.ProficiencyBonus != 2 {
		t.Errorf("goblin proficiency = %d, want 2", gob.ProficiencyBonus)
	}
}

func TestNewTable_DoesNotAliasDefs(t *testing.T) {
	defs := testDefs()
	tbl := NewTable(defs)
	aria := tbl.Entities["aria"]
	aria.Inventory[0].Quantity = 99
	if defs.Characters["aria"].Inventory[0].Quantity != 1 {
		t.Error("table inventory aliases the definitions")
	}
}

func TestClone(t *testing.T) {
	tbl := NewTable(testDefs())
	tbl.Initiative = []string{"aria", "goblin"}
	c := Clone(tbl)
	if !reflect.DeepEqual(tbl, c) {
		t.Fatal("clone differs from original")
	}
	c.Initiative[0] = "goblin"
	c.Entities["aria"].Inventory[1].Quantity = 5
	if tbl.Initiative[0] != "aria" {
		t.Error("initiative aliases")
	}
	if tbl.Entities["aria"].Inventory[1].Quantity != 1 {
		t.Error("inventory aliases")
	}
}

func TestGetAndPlayer(t *testing.T) {
	tbl := NewTable(testDefs())
	if _, ok := Get(tbl, "dragon"); ok {
		t.Error("Get found a missing entity")
	}
	p, ok := Player(tbl)
	if !ok || p.Name != "Aria" {
		t.Errorf("Player = %q, %v", p.Name, ok)
	}
}

func TestIDsByType(t *testing.T) {
	tbl := NewTable(testDefs())
	if got := IDsByType(tbl, types.EntityEnemy); !reflect.DeepEqual(got, []string{"goblin"}) {
		t.Errorf("enemies = %v", got)
	}
	if got := IDsByType(tbl, types.EntityObject); len(got) != 0 {
		t.Errorf("objects = %v, want none", got)
	}
}

func TestFindItem(t *testing.T) {
	aria := NewTable(testDefs()).Entities["aria"]
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"longsword", "longsword", true},
		{"Potion of Healing", "healing_potion", true},
		{"healing potion", "healing_potion", true},
		{"  LONGSWORD ", "longsword", true},
		{"shield", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		it, _, ok := FindItem(aria, tt.query)
		if ok != tt.ok || it.ID != tt.want {
			t.Errorf("FindItem(%q) = %q, %v; want %q, %v", tt.query, it.ID, ok, tt.want, tt.ok)
		}
	}
}

func TestHasItem(t *testing.T) {
	aria := NewTable(testDefs()).Entities["aria"]
	if !HasItem(aria, "longsword") {
		t.Error("expected longsword")
	}
	if HasItem(aria, "torch") {
		t.Error("an empty stack should not count")
	}
}

func TestKnowsSpell(t *testing.T) {
	aria := NewTable(testDefs()).Entities["aria"]
	if !KnowsSpell(aria, "cure wounds") {
		t.Error("expected cure wounds")
	}
	if KnowsSpell(aria, "fireball") {
		t.Error("aria does not know fireball")
	}
}

func TestEquippedWeapon(t *testing.T) {
	aria := NewTable(testDefs()).Entities["aria"]
	w, ok := EquippedWeapon(aria)
	if !ok || w.ID != "longsword" {
		t.Errorf("EquippedWeapon = %q, %v", w.ID, ok)
	}
}
