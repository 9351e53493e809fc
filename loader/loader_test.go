package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/types"
)

const minimalTable = `Table { title = "Minimal Table", player = "hero" }`

const minimalHero = `
Item "club" { name = "Club", kind = "weapon", damage = "1d4" }
Character "hero" {
  name = "Hero",
  hp = 10,
  ac = 12,
  abilities = { STR = 12, DEX = 12, CON = 12, INT = 10, WIS = 10, CHA = 10 },
  inventory = { Equipped "club" },
}
Enemy "rat" { name = "Rat", hp = 1, ac = 10, damage = "1d1" }
`

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, src := range files {
		if err := afero.WriteFile(fs, "/content/"+name, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestLoad_Minimal(t *testing.T) {
	fs := memFS(t, map[string]string{"table.lua": minimalTable, "hero.lua": minimalHero})
	defs, err := Load(fs, "/content")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Title != "Minimal Table" {
		t.Errorf("Title = %q", defs.Title)
	}
	if defs.PlayerID != "hero" {
		t.Errorf("PlayerID = %q", defs.PlayerID)
	}
	hero, ok := defs.Characters["hero"]
	if !ok {
		t.Fatal("character 'hero' not found")
	}
	if hero.Type != types.EntityCharacter || hero.Stats.MaxHP != 10 || hero.Level != 1 {
		t.Errorf("hero = %+v", hero)
	}
	if hero.Stats.Damage != "1d4" {
		t.Errorf("damage from equipped weapon = %q, want 1d4", hero.Stats.Damage)
	}
	if rat := defs.Characters["rat"]; rat.Type != types.EntityEnemy || rat.Stats.ArmorClass != 10 {
		t.Errorf("rat = %+v", rat)
	}
}

func TestLoad_SampleContent(t *testing.T) {
	fs := afero.NewBasePathFs(afero.NewOsFs(), "../content")
	defs, err := Load(fs, "goblin_ambush")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Title != "Goblin Ambush" || defs.Intro == "" {
		t.Errorf("table = %q / %q", defs.Title, defs.Intro)
	}
	if len(defs.Characters) != 6 {
		t.Errorf("expected 6 entities, got %d", len(defs.Characters))
	}

	aria := defs.Characters["aria"]
	if aria.Stats.Damage != "1d8+3" {
		t.Errorf("aria damage = %q", aria.Stats.Damage)
	}
	if len(aria.Inventory) != 5 {
		t.Fatalf("aria inventory = %+v", aria.Inventory)
	}
	if potion := aria.Inventory[3]; potion.ID != "healing_potion" || potion.Quantity != 2 || potion.Healing != "2d4+2" {
		t.Errorf("potion = %+v", potion)
	}
	if !aria.Inventory[2].Equipped || aria.Inventory[2].Kind != "armor" {
		t.Errorf("chain mail = %+v", aria.Inventory[2])
	}

	g2 := defs.Characters["goblin_2"]
	if g2.Name != "Goblin 2" || g2.Position != (types.Point{X: 4, Y: 3}) {
		t.Errorf("goblin_2 = %+v", g2)
	}
	if wolf := defs.Characters["wolf"]; wolf.DexMod != 2 || wolf.ProficiencyBonus != 2 {
		t.Errorf("wolf = %+v", wolf)
	}
	if bram := defs.Characters["bram"]; len(bram.Spells) != 3 || bram.Spells[0] != "Cure Wounds" {
		t.Errorf("bram spells = %v", bram.Spells)
	}
}

func TestLoad_TableFileRunsFirst(t *testing.T) {
	// a.lua reads a global that table.lua sets.
	fs := memFS(t, map[string]string{
		"table.lua": `HERO_HP = 14
` + minimalTable,
		"a.lua": strings.Replace(minimalHero, "hp = 10", "hp = HERO_HP", 1),
	})
	defs, err := Load(fs, "/content")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.Characters["hero"].Stats.HP != 14 {
		t.Errorf("hp = %d", defs.Characters["hero"].Stats.HP)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"no lua files", map[string]string{"notes.txt": "hi"}, "no .lua files"},
		{"syntax error", map[string]string{"table.lua": "Table {"}, "parsing table.lua"},
		{"runtime error", map[string]string{"table.lua": "error('boom')"}, "executing table.lua"},
		{"no table", map[string]string{"hero.lua": minimalHero}, "no Table{} definition"},
		{"undefined item", map[string]string{
			"table.lua": minimalTable,
			"hero.lua":  strings.Replace(minimalHero, `Equipped "club"`, `"mace"`, 1),
		}, `undefined item "mace"`},
		{"duplicate entity", map[string]string{
			"table.lua": minimalTable,
			"hero.lua":  minimalHero + `Enemy "rat" { hp = 1, ac = 10, damage = "1d1" }`,
		}, `entity "rat" defined twice`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(memFS(t, tt.files), "/content")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	if _, err := Load(afero.NewMemMapFs(), "/nowhere"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_ValidationError(t *testing.T) {
	fs := memFS(t, map[string]string{
		"table.lua": minimalTable,
		"hero.lua":  strings.Replace(minimalHero, "ac = 12", "ac = 0", 1),
	})
	_, err := Load(fs, "/content")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Errors) != 1 || !strings.Contains(ve.Errors[0], "ac must be positive") {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestSandbox(t *testing.T) {
	for _, global := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		t.Run(global, func(t *testing.T) {
			fs := memFS(t, map[string]string{
				"table.lua": "if " + global + " ~= nil then error('exposed') end\n" + minimalTable,
				"hero.lua":  minimalHero,
			})
			if _, err := Load(fs, "/content"); err != nil {
				t.Errorf("%s still reachable: %v", global, err)
			}
		})
	}

	fs := memFS(t, map[string]string{"table.lua": "os.exit(1)"})
	if _, err := Load(fs, "/content"); err == nil {
		t.Error("os library should not be available")
	}
	fs = memFS(t, map[string]string{"table.lua": "math.random()"})
	if _, err := Load(fs, "/content"); err == nil {
		t.Error("math.random should not be available")
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"zeta.lua", "table.lua", "alpha.lua"})
	want := []string{"table.lua", "alpha.lua", "zeta.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
