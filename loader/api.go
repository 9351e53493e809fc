package loader

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/rulecore/types"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerInventoryHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Table { title = "...", player = "...", intro = "..." }
	L.SetGlobal("Table", L.NewFunction(func(L *lua.LState) int {
		coll.table = L.CheckTable(1)
		return 0
	}))

	// Character "id" { ... }, NPC "id" { ... }, Enemy "id" { ... }: curried,
	// the first call takes the ID and returns a function taking the sheet.
	for name, typ := range map[string]types.EntityType{
		"Character": types.EntityCharacter,
		"NPC":       types.EntityNPC,
		"Enemy":     types.EntityEnemy,
	} {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				coll.characters = append(coll.characters, rawCharacter{id: id, typ: typ, table: tbl})
				return 0
			}))
			return 1
		}))
	}

	// Item "id" { ... }: an item template referenced by inventories.
	L.SetGlobal("Item", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.items = append(coll.items, rawItem{id: id, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerInventoryHelpers(L *lua.LState) {
	// Carry("id", quantity)
	L.SetGlobal("Carry", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		qty := L.OptInt(2, 1)
		tbl := L.NewTable()
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("quantity", lua.LNumber(qty))
		L.Push(tbl)
		return 1
	}))

	// Equipped("id")
	L.SetGlobal("Equipped", L.NewFunction(func(L *lua.LState) int {
		item := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("item", lua.LString(item))
		tbl.RawSetString("quantity", lua.LNumber(1))
		tbl.RawSetString("equipped", lua.LTrue)
		L.Push(tbl)
		return 1
	}))
}
