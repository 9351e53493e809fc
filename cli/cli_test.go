package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/types"
)

// testDefs returns a minimal table for CLI testing.
func testDefs() *state.Defs {
	return &state.Defs{
		Title:    "Test Table",
		Intro:    "Welcome to the test.",
		PlayerID: "aria",
		Characters: map[string]types.Character{
			"aria": {
				Combatant: types.Combatant{
					Name:        "Aria",
					Type:        types.EntityCharacter,
					Stats:       types.Stats{HP: 12, MaxHP: 12, Damage: "1d8+3", ArmorClass: 16},
					HasReaction: true,
				},
				Level:     1,
				Abilities: types.Abilities{STR: 16, DEX: 14, CON: 14, INT: 10, WIS: 12, CHA: 14},
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

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(testDefs(), engine.Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := &CLI{
		Session: Session{Engine: newEngine(t), Fs: afero.NewMemMapFs(), SaveDir: "/saves"},
		Intro:   "Welcome to the test.",
		In:      strings.NewReader(input),
		Out:     &out,
	}
	return c, &out
}

func TestCLI_Intro(t *testing.T) {
	c, out := newTestCLI(t, "/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Welcome to the test.") {
		t.Error("expected intro text in output")
	}
	if !strings.Contains(output, "Goodbye.") {
		t.Error("expected goodbye")
	}
}

func TestCLI_Conversation(t *testing.T) {
	c, out := newTestCLI(t, "hello there\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Aria speaks.") {
		t.Errorf("output = %q", out.String())
	}
	if c.Engine.Table.TurnCount != 1 {
		t.Errorf("turn = %d", c.Engine.Table.TurnCount)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out := newTestCLI(t, "/help\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	for _, want := range []string{"/save", "/load", "/quit", "roll initiative"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()

	// Play a bit and save.
	eng := newEngine(t)
	var out bytes.Buffer
	c := &CLI{
		Session: Session{Engine: eng, Fs: fs, SaveDir: "/saves"},
		In:      strings.NewReader("hello there\n/save test\n/quit\n"),
		Out:     &out,
	}
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Game saved to test.") {
		t.Errorf("expected save confirmation, got %q", out.String())
	}
	if ok, _ := afero.Exists(fs, "/saves/test.json"); !ok {
		t.Fatal("save file not written")
	}

	// Start fresh and load.
	eng2, err := engine.New(testDefs(), engine.Options{Seed: 99})
	if err != nil {
		t.Fatal(err)
	}
	var out2 bytes.Buffer
	c2 := &CLI{
		Session: Session{Engine: eng2, Fs: fs, SaveDir: "/saves"},
		In:      strings.NewReader("/load test\n/state\n/quit\n"),
		Out:     &out2,
	}
	c2.Run(context.Background())

	loadOutput := out2.String()
	if !strings.Contains(loadOutput, "Game loaded from test (turn 1)") {
		t.Errorf("expected load confirmation, got %q", loadOutput)
	}
	if !strings.Contains(loadOutput, "Turn: 1") {
		t.Error("expected restored turn count")
	}
	if eng2.Table.RNGSeed != eng.Table.RNGSeed || eng2.RNG.Position() != eng.RNG.Position() {
		t.Errorf("rng not restored: %d@%d vs %d@%d",
			eng2.Table.RNGSeed, eng2.RNG.Position(), eng.Table.RNGSeed, eng.RNG.Position())
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out := newTestCLI(t, "/bogus\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI(t, "/trace\nhello there\n/trace\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Trace output enabled") {
		t.Error("expected trace enabled message")
	}
	if !strings.Contains(output, "[trace] Action: conversation") {
		t.Errorf("expected action trace, got %q", output)
	}
	if !strings.Contains(output, "Trace output disabled") {
		t.Error("expected trace disabled message")
	}
}

func TestCLI_StateCommand(t *testing.T) {
	c, out := newTestCLI(t, "/state\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Turn: 0") {
		t.Error("expected turn count in state output")
	}
	if !strings.Contains(output, "Goblin (enemy): HP 7/7 AC 13") {
		t.Errorf("expected goblin line, got %q", output)
	}
}

func TestCLI_EmptyInput(t *testing.T) {
	c, out := newTestCLI(t, "\n\n# comment\n/quit\n")
	c.Run(context.Background())

	// Empty lines should be skipped (no "What do you want to do?" spam).
	if strings.Contains(out.String(), "What do you want to do?") {
		t.Error("empty lines should be silently skipped by CLI")
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "/load nonexistent\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	for _, again := range []string{"again", "g"} {
		t.Run(again, func(t *testing.T) {
			c, out := newTestCLI(t, "hello there\n"+again+"\n/quit\n")
			c.Run(context.Background())

			if n := strings.Count(out.String(), "Aria speaks."); n != 2 {
				t.Errorf("expected 'Aria speaks.' twice, got %d", n)
			}
		})
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out := newTestCLI(t, "again\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}

func TestCLI_GameOver(t *testing.T) {
	c, out := newTestCLI(t, "hello\n/quit\n")
	aria := c.Engine.Table.Entities["aria"]
	aria.Stats.HP = 0
	aria.Conditions = types.Conditions{types.CondDead}
	c.Engine.Table.Entities["aria"] = aria
	c.Run(context.Background())

	if !strings.Contains(out.String(), engine.GameOver) {
		t.Errorf("output = %q", out.String())
	}
}

func TestSession_Meta(t *testing.T) {
	s := &Session{Engine: newEngine(t), Fs: afero.NewMemMapFs(), SaveDir: "/saves"}

	if r := s.Meta("/help"); !r.Plain || r.Quit || len(r.Lines) != len(Help) {
		t.Errorf("/help = %+v", r)
	}
	if r := s.Meta("/trace"); !s.Trace || r.Lines[0] != "Trace output enabled." {
		t.Errorf("/trace = %+v trace=%v", r, s.Trace)
	}
	if r := s.Meta("/save"); r.Lines[0] != "Game saved to quicksave." {
		t.Errorf("/save = %+v", r)
	}
	if r := s.Meta("/load"); r.Lines[0] != "Game loaded from quicksave (turn 0)." {
		t.Errorf("/load = %+v", r)
	}
	if r := s.Meta("/exit"); !r.Quit {
		t.Errorf("/exit = %+v", r)
	}
}

func TestFormatState_Dying(t *testing.T) {
	tbl := newEngine(t).Table
	gob := tbl.Entities["goblin"]
	gob.Stats.HP = 0
	gob.Conditions = types.Conditions{types.CondDying, types.CondUnconscious}
	gob.DeathSaves = &types.DeathSaveState{Successes: 2, Failures: 1}
	tbl.Entities["goblin"] = gob

	lines := FormatState(tbl)
	want := "Goblin (enemy): HP 0/7 AC 13 @1,0 [dying, unconscious] saves 2/1"
	if lines[len(lines)-1] != want {
		t.Errorf("got %q, want %q", lines[len(lines)-1], want)
	}
}

func TestSession_SaveNameStaysInDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := &Session{Engine: newEngine(t), Fs: fs, SaveDir: "/saves"}

	for _, name := range []string{"../escape", "..", "sub/slot", `..\escape`, "/etc/passwd"} {
		if r := s.Meta("/save " + name); !strings.HasPrefix(r.Lines[0], "Save failed: invalid save name") {
			t.Errorf("/save %s = %q", name, r.Lines[0])
		}
		if r := s.Meta("/load " + name); !strings.HasPrefix(r.Lines[0], "Load failed: invalid save name") {
			t.Errorf("/load %s = %q", name, r.Lines[0])
		}
	}
	if ok, _ := afero.Exists(fs, "/escape.json"); ok {
		t.Error("save escaped the save directory")
	}
	if r := s.Meta("/save slot-1"); r.Lines[0] != "Game saved to slot-1." {
		t.Errorf("/save slot-1 = %q", r.Lines[0])
	}
}
