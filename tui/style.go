package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/rulecore/engine/action"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusHurt = styleStatusBar.
			Foreground(lipgloss.Color("203"))

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleTriumph = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true)

	styleDefeat = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleTense = lipgloss.NewStyle().
			Foreground(lipgloss.Color("221"))

	stylePrompt = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Italic(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindTriumph
	kindDefeat
	kindTense
	kindPrompt
	kindError
	kindTrace
)

func moodKind(m action.Mood) lineKind {
	switch m {
	case action.MoodTriumph:
		return kindTriumph
	case action.MoodDefeat:
		return kindDefeat
	case action.MoodTense:
		return kindTense
	default:
		return kindNarrative
	}
}

// classifyLine guesses the kind of a line that did not come from a result.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasSuffix(line, "?"):
		return kindPrompt
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindTriumph:
		return styleTriumph.Render(line)
	case kindDefeat:
		return styleDefeat.Render(line)
	case kindTense:
		return styleTense.Render(line)
	case kindPrompt:
		return stylePrompt.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
