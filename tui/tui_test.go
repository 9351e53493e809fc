package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/engine/validate"
	"github.com/nathoo/rulecore/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Title:    "Test Table",
		PlayerID: "aria",
		Characters: map[string]types.Character{
			"aria": {
				Combatant: types.Combatant{
					Name:        "Aria",
					Type:        types.EntityCharacter,
					Stats:       types.Stats{HP: 12, MaxHP: 12, Damage: "1d8+3", ArmorClass: 16},
					HasReaction: true,
				},
				Level: 1,
			},
			"goblin": {
				Combatant: types.Combatant{
					Name:     "Goblin",
					Type:     types.EntityEnemy,
					Stats:    types.Stats{HP: 7, MaxHP: 7, Damage: "1d6+2", ArmorClass: 13},
					Position: types.Point{X: 1},
				},
			},
		},
	}
}

func newModel(t *testing.T) Model {
	t.Helper()
	eng, err := engine.New(testDefs(), engine.Options{Seed: 3})
	if err != nil {
		t.Fatal(err)
	}
	m := New(context.Background(), eng, Config{Title: "Test Table", Fs: afero.NewMemMapFs(), SaveDir: "/saves"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

// submit types text and presses enter.
func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.prompt.SetValue(text)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model)
}

func lastLines(m Model, n int) []string {
	var out []string
	for _, rl := range m.transcript {
		if rl.text != "" {
			out = append(out, rl.text)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[trace] Result a-1: success", kindTrace},
		{"Which one do you mean: Goblin 1 or Goblin 2?", kindPrompt},
		{"Aria speaks.", kindNarrative},
		{"", kindNarrative},
	}
	for _, tt := range tests {
		if got := classifyLine(tt.line); got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestMoodKind(t *testing.T) {
	tests := map[action.Mood]lineKind{
		action.MoodTriumph: kindTriumph,
		action.MoodDefeat:  kindDefeat,
		action.MoodTense:   kindTense,
		action.MoodNeutral: kindNarrative,
	}
	for mood, want := range tests {
		if got := moodKind(mood); got != want {
			t.Errorf("moodKind(%s) = %v, want %v", mood, got, want)
		}
	}
}

func TestTurnLines(t *testing.T) {
	turn := engine.Turn{
		Results: []action.Result{{Narrative: action.Narrative{Summary: "Aria hits.", Mood: action.MoodTriumph}}},
		Output:  []string{"Aria hits.", engine.GameOver},
	}
	lines := turnLines(turn)
	if len(lines) != 2 || lines[0].kind != kindTriumph || lines[1].kind != kindError {
		t.Errorf("lines = %+v", lines)
	}

	v := validate.Result{IsValid: false, Reason: "nope"}
	lines = turnLines(engine.Turn{Validation: &v, Output: []string{"I can't do that. nope"}})
	if lines[0].kind != kindError {
		t.Errorf("rejected kind = %v", lines[0].kind)
	}

	lines = turnLines(engine.Turn{Clarification: "What do you want to do", Output: []string{"What do you want to do"}})
	if lines[0].kind != kindPrompt {
		t.Errorf("clarification kind = %v", lines[0].kind)
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The goblin snarls and lunges at you with its scimitar.", 30,
			"The goblin snarls and lunges\nat you with its scimitar."},
		{"", 80, ""},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		if got := wordWrap(tt.text, tt.width); got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	for _, cmd := range []string{"attack", "attack", "dodge", "rest", "search"} {
		h.Push(cmd)
	}

	// Consecutive duplicates collapse and the oldest falls off.
	want := []string{"search", "rest", "dodge", "dodge"}
	for i, w := range want {
		got, ok := h.Prev()
		if !ok || got != w {
			t.Fatalf("Prev #%d = %q (ok=%v), want %q", i, got, ok, w)
		}
	}

	if got, ok := h.Next(); !ok || got != "rest" {
		t.Errorf("Next = %q (ok=%v)", got, ok)
	}
	h.Next()
	if _, ok := h.Next(); ok {
		t.Error("expected false past newest entry")
	}

	if _, ok := NewHistory(3).Prev(); ok {
		t.Error("empty history should return false")
	}
}

func TestModel_GameCommand(t *testing.T) {
	m := newModel(t)
	m = submit(t, m, "hello there")

	got := lastLines(m, 2)
	if len(got) != 2 || got[0] != "> hello there" || got[1] != "Aria speaks." {
		t.Errorf("lines = %q", got)
	}
	if m.last != "hello there" {
		t.Errorf("last = %q", m.last)
	}
}

func TestModel_AgainAndTrace(t *testing.T) {
	m := newModel(t)
	m = submit(t, m, "/trace")
	m = submit(t, m, "hello there")
	m = submit(t, m, "g")

	if m.engine.Table.TurnCount != 2 {
		t.Errorf("turn = %d, want 2", m.engine.Table.TurnCount)
	}
	found := false
	for _, rl := range m.transcript {
		if rl.kind == kindTrace && strings.HasPrefix(rl.text, "[trace] Action: conversation") {
			found = true
		}
	}
	if !found {
		t.Error("expected trace lines")
	}
}

func TestModel_SaveLoad(t *testing.T) {
	m := newModel(t)
	m = submit(t, m, "hello there")
	m = submit(t, m, "/save slot1")
	if got := lastLines(m, 1); got[0] != "Game saved to slot1." {
		t.Fatalf("save output = %q", got)
	}

	m = submit(t, m, "hello again")
	m = submit(t, m, "/load slot1")
	if got := lastLines(m, 1); got[0] != "Game loaded from slot1 (turn 1)." {
		t.Errorf("load output = %q", got)
	}
	if m.engine.Table.TurnCount != 1 {
		t.Errorf("turn = %d after load", m.engine.Table.TurnCount)
	}

	m = submit(t, m, "/load missing")
	if got := lastLines(m, 1); !strings.HasPrefix(got[0], "Load failed") {
		t.Errorf("missing load output = %q", got)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t)
	m.prompt.SetValue("/quit")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !updated.(Model).quitting || cmd == nil {
		t.Error("expected quit")
	}
	if updated.(Model).View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestStatusBar(t *testing.T) {
	m := newModel(t)
	bar := m.renderStatusBar()
	if !strings.Contains(bar, "Aria HP 12/12 AC 16") || !strings.Contains(bar, "T:0") {
		t.Errorf("bar = %q", bar)
	}

	aria := m.engine.Table.Entities["aria"]
	aria.Stats.HP = 0
	aria.Conditions = types.Conditions{types.CondDying, types.CondUnconscious}
	aria.DeathSaves = &types.DeathSaveState{Successes: 1, Failures: 2}
	m.engine.Table.Entities["aria"] = aria
	m.engine.Table.Initiative = []string{"goblin", "aria"}

	bar = m.renderStatusBar()
	for _, want := range []string{"[dying,unconscious]", "Saves 1✓ 2✗", "Init: Goblin > Aria"} {
		if !strings.Contains(bar, want) {
			t.Errorf("bar missing %q: %q", want, bar)
		}
	}
}
