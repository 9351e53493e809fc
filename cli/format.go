package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/types"
)

// Help lists the meta-commands and the common game commands.
var Help = []string{
	"System:",
	"  /save [name]  Save game (default: quicksave)",
	"  /load [name]  Load game (default: quicksave)",
	"  /quit         Exit game",
	"  /help         Show this help",
	"  /state        Show every combatant",
	"  /trace        Toggle rolls and state changes",
	"",
	"Game commands:",
	"  attack <target>             Melee attack (\"shoot\" for ranged)",
	"  grapple / shove <target>    Contested athletics",
	"  roll initiative             Start combat",
	"  start my turn               Reset your action economy",
	"  death save / stabilize <x>  At 0 HP and beside the dying",
	"  <skill> check               e.g. \"make a stealth check\"",
	"  go <direction>              Travel",
	"  search / take / drop / equip / use <item>",
	"  short rest / long rest",
	"  @review <feedback>          Comment on the narration",
	"  again (g)                   Repeat your last command",
	"",
	"Anything else is spoken in character.",
}

// FormatState describes the turn counter, initiative and every entity.
func FormatState(t *types.Table) []string {
	lines := []string{fmt.Sprintf("Turn: %d", t.TurnCount)}
	if len(t.Initiative) > 0 {
		lines = append(lines, fmt.Sprintf("Initiative: %s", strings.Join(t.Initiative, ", ")))
	}
	ids := make([]string, 0, len(t.Entities))
	for id := range t.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		lines = append(lines, Describe(t.Entities[id]))
	}
	return lines
}

// Describe renders one entity on a single line.
func Describe(e types.Character) string {
	line := fmt.Sprintf("%s (%s): HP %d/%d AC %d @%d,%d",
		e.Name, e.Type, e.Stats.HP, e.Stats.MaxHP, e.Stats.ArmorClass, e.Position.X, e.Position.Y)
	if e.Stats.TempHP > 0 {
		line += fmt.Sprintf(" +%d temp", e.Stats.TempHP)
	}
	if len(e.Conditions) > 0 {
		line += " [" + strings.Join(e.Conditions, ", ") + "]"
	}
	if s := e.DeathSaves; s != nil && death.IsDying(e.Combatant) {
		line += fmt.Sprintf(" saves %d/%d", s.Successes, s.Failures)
	}
	return line
}

// FormatTrace lists the action, verdict, rolls and state changes of a turn.
func FormatTrace(turn engine.Turn) []string {
	var lines []string
	if turn.Action != nil {
		m := turn.Action.Meta()
		lines = append(lines, fmt.Sprintf("[trace] Action: %s %s by %s", turn.Action.Kind(), m.ID, m.ActorID))
	}
	if len(turn.Flavor) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Flavor: %s", strings.Join(turn.Flavor, " | ")))
	}
	if v := turn.Validation; v != nil {
		lines = append(lines, fmt.Sprintf("[trace] Validation: valid=%t %s", v.IsValid, v.Reason))
	}
	for _, res := range turn.Results {
		lines = append(lines, fmt.Sprintf("[trace] Result %s: %s", res.ActionID, res.Outcome))
		names := make([]string, 0, len(res.Rolls))
		for name := range res.Rolls {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r := res.Rolls[name]
			lines = append(lines, fmt.Sprintf("[trace]   roll %s %s %v = %d", name, r.Notation, r.Rolls, r.Total))
		}
		for _, ch := range res.StateChanges {
			lines = append(lines, fmt.Sprintf("[trace]   %s.%s %v -> %v", ch.EntityID, ch.Field, ch.OldValue, ch.NewValue))
		}
	}
	return lines
}
