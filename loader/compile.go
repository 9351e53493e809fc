// Package loader loads Lua content (the table, its characters, NPCs,
// enemies and item templates) into Go structs at load time. The Lua VM is
// discarded after loading; nothing runs Lua during play.
package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// rawCharacter holds a character, NPC or enemy table before compilation.
type rawCharacter struct {
	id    string
	typ   types.EntityType
	table *lua.LTable
}

// rawItem holds an item template before compilation.
type rawItem struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or def if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	if coll.table == nil {
		return nil, fmt.Errorf("no Table{} definition found")
	}
	defs := &state.Defs{
		Title:      getString(coll.table, "title"),
		Intro:      getString(coll.table, "intro"),
		PlayerID:   getString(coll.table, "player"),
		Characters: map[string]types.Character{},
	}

	items := map[string]types.Item{}
	for _, raw := range coll.items {
		if _, dup := items[raw.id]; dup {
			return nil, fmt.Errorf("item %q defined twice", raw.id)
		}
		items[raw.id] = compileItem(raw)
	}

	for _, raw := range coll.characters {
		if _, dup := defs.Characters[raw.id]; dup {
			return nil, fmt.Errorf("entity %q defined twice", raw.id)
		}
		c, err := compileCharacter(raw, items)
		if err != nil {
			return nil, fmt.Errorf("compiling %s %s: %w", raw.typ, raw.id, err)
		}
		defs.Characters[raw.id] = c
	}
	return defs, nil
}

func compileItem(raw rawItem) types.Item {
	t := raw.table
	it := types.Item{
		ID:       raw.id,
		Name:     getString(t, "name"),
		Kind:     getString(t, "kind"),
		Quantity: 1,
		Damage:   getString(t, "damage"),
		Healing:  getString(t, "healing"),
		Cost:     getInt(t, "cost", 0),
	}
	if it.Name == "" {
		it.Name = raw.id
	}
	if it.Kind == "" {
		it.Kind = "gear"
	}
	return it
}

func compileCharacter(raw rawCharacter, items map[string]types.Item) (types.Character, error) {
	t := raw.table
	hp := getInt(t, "hp", 0)
	c := types.Character{
		Combatant: types.Combatant{
			ID:   raw.id,
			Name: getString(t, "name"),
			Type: raw.typ,
			Stats: types.Stats{
				HP:         hp,
				MaxHP:      getInt(t, "max_hp", hp),
				TempHP:     getInt(t, "temp_hp", 0),
				Damage:     getString(t, "damage"),
				ArmorClass: getInt(t, "ac", 10),
			},
			StrMod:           getInt(t, "str_mod", 0),
			DexMod:           getInt(t, "dex_mod", 0),
			ProficiencyBonus: getInt(t, "proficiency_bonus", 0),
			Conditions:       types.Conditions(nil).With(getStrings(t, "conditions")...),
			HasReaction:      getBool(t, "has_reaction", true),
		},
		Class:         getString(t, "class"),
		Level:         getInt(t, "level", 1),
		Proficiencies: getStrings(t, "proficiencies"),
		Spells:        getStrings(t, "spells"),
		Gold:          getInt(t, "gold", 0),
		XP:            getInt(t, "xp", 0),
		TutorialState: getString(t, "tutorial"),
	}
	if c.Name == "" {
		c.Name = raw.id
	}
	if len(c.Conditions) == 0 {
		c.Conditions = nil
	}
	if pos := getTable(t, "position"); pos != nil {
		c.Position = types.Point{X: getInt(pos, "x", 0), Y: getInt(pos, "y", 0)}
	}
	if ab := getTable(t, "abilities"); ab != nil {
		c.Abilities = types.Abilities{
			STR: getInt(ab, "STR", 10),
			DEX: getInt(ab, "DEX", 10),
			CON: getInt(ab, "CON", 10),
			INT: getInt(ab, "INT", 10),
			WIS: getInt(ab, "WIS", 10),
			CHA: getInt(ab, "CHA", 10),
		}
	}

	inv, err := compileInventory(getTable(t, "inventory"), items)
	if err != nil {
		return types.Character{}, err
	}
	c.Inventory = inv

	// An unstated damage notation comes from the equipped weapon.
	if c.Stats.Damage == "" {
		for _, it := range c.Inventory {
			if it.Kind == "weapon" && it.Equipped && it.Damage != "" {
				c.Stats.Damage = it.Damage
				break
			}
		}
	}
	return c, nil
}

// compileInventory resolves inventory entries against the item templates.
// An entry is either an item ID or a table with item, quantity and
// equipped fields. Repeated IDs stack.
func compileInventory(tbl *lua.LTable, items map[string]types.Item) ([]types.Item, error) {
	if tbl == nil {
		return nil, nil
	}
	var out []types.Item
	index := map[string]int{}
	for i := 1; i <= tbl.MaxN(); i++ {
		var (
			id       string
			qty      = 1
			equipped bool
		)
		switch v := tbl.RawGetInt(i).(type) {
		case lua.LString:
			id = string(v)
		case *lua.LTable:
			id = getString(v, "item")
			qty = getInt(v, "quantity", 1)
			equipped = getBool(v, "equipped", false)
		default:
			return nil, fmt.Errorf("inventory entry %d must be an item ID or table", i)
		}

		it, ok := items[id]
		if !ok {
			return nil, fmt.Errorf("inventory references undefined item %q", id)
		}
		if j, seen := index[id]; seen {
			out[j].Quantity += qty
			out[j].Equipped = out[j].Equipped || equipped
			continue
		}
		it.Quantity = qty
		it.Equipped = equipped
		index[id] = len(out)
		out = append(out, it)
	}
	return out, nil
}
