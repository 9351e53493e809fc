package save

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

func testTable() *types.Table {
	return state.NewTable(&state.Defs{
		Title:    "Test Table",
		PlayerID: "aria",
		Characters: map[string]types.Character{
			"aria": {
				Combatant: types.Combatant{Name: "Aria", Stats: types.Stats{HP: 12, MaxHP: 12, Damage: "1d8+3", ArmorClass: 16}},
				Level:     1,
				Abilities: types.Abilities{STR: 16, DEX: 14, CON: 14, INT: 10, WIS: 12, CHA: 14},
				Inventory: []types.Item{{ID: "rope", Name: "Rope", Kind: "gear", Quantity: 1}},
			},
			"goblin": {
				Combatant: types.Combatant{Name: "Goblin", Type: types.EntityEnemy, Stats: types.Stats{HP: 7, MaxHP: 7, Damage: "1d6+2", ArmorClass: 13}},
			},
		},
	})
}

func TestRoundTrip(t *testing.T) {
	tbl := testTable()

	// Modify state.
	aria := tbl.Entities["aria"]
	aria.Stats.HP = 0
	aria.Conditions = types.Conditions{types.CondDying, types.CondUnconscious}
	aria.DeathSaves = &types.DeathSaveState{Successes: 1, Failures: 2}
	aria.Position = types.Point{X: 3, Y: -2}
	aria.ReputationScores = map[string]int{"general": -20}
	tbl.Entities["aria"] = aria
	tbl.Initiative = []string{"goblin", "aria"}
	tbl.TurnCount = 7
	tbl.RNGSeed = 42
	tbl.RNGPosition = 19
	tbl.CommandLog = []string{"attack goblin", "death save"}
	tbl.SessionID = "session-1"

	// Save.
	data, err := Save(tbl)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load.
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Apply to a fresh table.
	t2 := testTable()
	ApplySave(t2, sd)

	// Verify.
	got := t2.Entities["aria"]
	if got.ID != "aria" || got.Stats.HP != 0 || !got.Conditions.Has(types.CondDying) {
		t.Errorf("aria = %+v", got)
	}
	if got.DeathSaves == nil || *got.DeathSaves != (types.DeathSaveState{Successes: 1, Failures: 2}) {
		t.Errorf("death saves = %+v", got.DeathSaves)
	}
	if got.Position != (types.Point{X: 3, Y: -2}) {
		t.Errorf("position = %+v", got.Position)
	}
	if got.ReputationScores["general"] != -20 {
		t.Errorf("reputation = %v", got.ReputationScores)
	}
	if len(t2.Initiative) != 2 || t2.Initiative[0] != "goblin" {
		t.Errorf("initiative = %v", t2.Initiative)
	}
	if t2.TurnCount != 7 {
		t.Errorf("expected turn 7, got %d", t2.TurnCount)
	}
	if t2.RNGSeed != 42 || t2.RNGPosition != 19 {
		t.Errorf("rng = %d@%d", t2.RNGSeed, t2.RNGPosition)
	}
	if len(t2.CommandLog) != 2 || t2.CommandLog[1] != "death save" {
		t.Errorf("command log mismatch: %v", t2.CommandLog)
	}
	if t2.SessionID != "session-1" {
		t.Errorf("session = %q", t2.SessionID)
	}
}

func TestApplySave_DoesNotAliasSaveData(t *testing.T) {
	tbl := testTable()
	data, _ := Save(tbl)
	sd, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}

	t2 := &types.Table{}
	ApplySave(t2, sd)
	aria := t2.Entities["aria"]
	aria.Inventory[0].Quantity = 99
	t2.CommandLog = append(t2.CommandLog, "x")

	if sd.Entities["aria"].Inventory[0].Quantity != 1 {
		t.Error("inventory shared with save data")
	}
	if len(sd.CommandLog) != 0 {
		t.Error("command log shared with save data")
	}
}

func TestSave_ProducesValidJSON(t *testing.T) {
	data, err := Save(testTable())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("Save output is not valid JSON")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if raw["version"] != FormatVersion {
		t.Errorf("expected version %q, got %v", FormatVersion, raw["version"])
	}
	if raw["title"] != "Test Table" {
		t.Errorf("expected title 'Test Table', got %v", raw["title"])
	}
}

func TestLoad_MissingOptionalFields(t *testing.T) {
	sd, err := Load([]byte(`{"version":"1","title":"Test","turn":0}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sd.Entities == nil {
		t.Error("expected non-nil entities")
	}
	if sd.CommandLog == nil {
		t.Error("expected non-nil command_log")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load([]byte(`{"version":"0.9"}`)); !errors.Is(err, ErrVersion) {
		t.Errorf("old version: err = %v", err)
	}
	if _, err := Load([]byte(`not json`)); err == nil {
		t.Error("expected error for bad JSON")
	}
}

func TestFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	tbl := testTable()
	tbl.TurnCount = 3

	if err := WriteFile(fs, "/saves/slot1.json", tbl); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sd, err := ReadFile(fs, "/saves/slot1.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if sd.Turn != 3 || sd.PlayerID != "aria" {
		t.Errorf("got %+v", sd)
	}

	if _, err := ReadFile(fs, "/saves/missing.json"); err == nil {
		t.Error("expected error for missing save")
	}
}
