package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/rulecore/engine/death"
	"github.com/nathoo/rulecore/engine/state"
)

// renderStatusBar produces a full-width inverted status line showing the
// player's vitals on the left and the combat order and turn on the right.
func (m Model) renderStatusBar() string {
	t := m.engine.Table
	p, ok := state.Player(t)
	if !ok {
		return styleStatusBar.Width(m.width).Render(fmt.Sprintf(" T:%d ", t.TurnCount))
	}

	left := fmt.Sprintf(" %s HP %d/%d", p.Name, p.Stats.HP, p.Stats.MaxHP)
	if p.Stats.TempHP > 0 {
		left += fmt.Sprintf("+%d", p.Stats.TempHP)
	}
	left += fmt.Sprintf(" AC %d", p.Stats.ArmorClass)
	if len(p.Conditions) > 0 {
		left += " [" + strings.Join(p.Conditions, ",") + "]"
	}
	if s := p.DeathSaves; s != nil && death.IsDying(p.Combatant) {
		left += fmt.Sprintf(" | Saves %d✓ %d✗", s.Successes, s.Failures)
	}

	right := fmt.Sprintf("T:%d ", t.TurnCount)
	if len(t.Initiative) > 0 {
		names := make([]string, 0, len(t.Initiative))
		for _, id := range t.Initiative {
			name := id
			if c, ok := state.Get(t, id); ok {
				name = c.Name
			}
			names = append(names, name)
		}
		candidate := fmt.Sprintf("Init: %s | T:%d ", strings.Join(names, " > "), t.TurnCount)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Combat | T:%d ", t.TurnCount)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	style := styleStatusBar
	if p.Stats.HP*4 <= p.Stats.MaxHP {
		style = styleStatusHurt
	}
	return style.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
