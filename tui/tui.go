package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/cli"
	"github.com/nathoo/rulecore/engine"
)

type source int

const (
	fromGame source = iota
	fromPlayer
	fromSystem
)

// entry is one transcript line kept unstyled so it can be re-wrapped when
// the terminal is resized.
type entry struct {
	text string
	kind lineKind
	from source
}

// Config carries what the TUI needs besides the engine.
type Config struct {
	Title   string
	Intro   string
	Fs      afero.Fs
	SaveDir string
}

// Model is the Bubble Tea model for the table.
type Model struct {
	ctx     context.Context
	engine  *engine.Engine
	session *cli.Session
	cfg     Config

	log     viewport.Model
	prompt  textinput.Model
	history *History

	transcript []entry
	last       string // previous game command, for "again"

	width, height int
	sized         bool
	quitting      bool
}

// outputMsg delivers transcript lines to Update.
type outputMsg struct {
	echo    string
	entries []entry
}

// New creates a TUI model wired to the given engine.
func New(ctx context.Context, eng *engine.Engine, cfg Config) Model {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = styleInputPrompt
	in.CharLimit = 256
	in.Focus()

	return Model{
		ctx:     ctx,
		engine:  eng,
		session: &cli.Session{Engine: eng, Fs: cfg.Fs, SaveDir: cfg.SaveDir},
		cfg:     cfg,
		prompt:  in,
		history: NewHistory(100),
	}
}

// Run blocks until the player quits or ctx is cancelled.
func Run(ctx context.Context, eng *engine.Engine, cfg Config) error {
	_, err := tea.NewProgram(New(ctx, eng, cfg),
		tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	banner := []entry{{text: m.cfg.Title, kind: kindTriumph}, {}}
	if m.cfg.Intro != "" {
		banner = append(banner, entry{text: m.cfg.Intro}, entry{})
	}
	banner = append(banner, entry{text: "Type /help for commands.", from: fromSystem})
	return tea.Batch(textinput.Blink, func() tea.Msg { return outputMsg{entries: banner} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if next, cmd, done := m.handleKey(msg); done {
			return next, cmd
		}
	case outputMsg:
		m = m.add(msg)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// resize keeps one row for the status bar and one for the prompt.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	rows := max(h-2, 1)
	if m.sized {
		m.log.Width, m.log.Height = w, rows
	} else {
		m.log = viewport.New(w, rows)
		m.log.KeyMap = scrollKeys()
		m.sized = true
	}
	m.render()
}

// handleKey reports done when the key was consumed and the prompt should
// not see it.
func (m Model) handleKey(k tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch k.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit, true
	case "enter":
		next, cmd := m.submit()
		return next, cmd, true
	case "up":
		if s, ok := m.history.Prev(); ok {
			m.recall(s)
		}
		return m, nil, true
	case "down":
		s, ok := m.history.Next()
		if !ok {
			s = ""
			m.history.ResetCursor()
		}
		m.recall(s)
		return m, nil, true
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(k)
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) recall(s string) {
	m.prompt.SetValue(s)
	m.prompt.CursorEnd()
}

func (m Model) submit() (Model, tea.Cmd) {
	line := strings.TrimSpace(m.prompt.Value())
	m.prompt.SetValue("")
	if line == "" {
		return m, nil
	}
	m.history.Push(line)

	if strings.HasPrefix(line, "/") {
		lines, quit := m.handleMeta(line)
		m = m.add(systemMsg(line, lines...))
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	cmd := line
	switch strings.ToLower(line) {
	case "again", "g":
		if m.last == "" {
			return m.add(systemMsg(line, "Nothing to repeat.")), nil
		}
		cmd = m.last
	default:
		m.last = line
	}

	turn, err := m.engine.Step(m.ctx, cmd)
	if err != nil {
		return m.add(outputMsg{echo: cmd, entries: []entry{{text: err.Error(), kind: kindError}}}), nil
	}
	out := turnLines(turn)
	if m.session.Trace {
		for _, l := range cli.FormatTrace(turn) {
			out = append(out, entry{text: l, kind: kindTrace})
		}
	}
	return m.add(outputMsg{echo: cmd, entries: out}), nil
}

// handleMeta runs a slash command through the shared session and adds the
// key bindings to /help.
func (m *Model) handleMeta(line string) ([]string, bool) {
	r := m.session.Meta(line)
	if strings.Fields(line)[0] == "/help" {
		r.Lines = append(append([]string(nil), r.Lines...), "", "Navigation: PgUp/PgDn to scroll, Up/Down for command history")
	}
	return r.Lines, r.Quit
}

// turnLines styles each output line: result summaries by mood, refusals as
// errors, and anything else by its shape.
func turnLines(turn engine.Turn) []entry {
	out := make([]entry, 0, len(turn.Output))
	for i, text := range turn.Output {
		kind := classifyLine(text)
		switch {
		case i < len(turn.Results):
			kind = moodKind(turn.Results[i].Narrative.Mood)
		case text == engine.GameOver:
			kind = kindError
		case turn.Validation != nil && !turn.Validation.IsValid:
			kind = kindError
		case turn.Clarification != "":
			kind = kindPrompt
		}
		out = append(out, entry{text: text, kind: kind})
	}
	return out
}

func systemMsg(echo string, lines ...string) outputMsg {
	msg := outputMsg{echo: echo}
	for _, l := range lines {
		msg.entries = append(msg.entries, entry{text: l, from: fromSystem})
	}
	return msg
}

// add appends a turn to the transcript, followed by a blank separator.
func (m Model) add(msg outputMsg) Model {
	if msg.echo != "" {
		m.transcript = append(m.transcript, entry{text: "> " + msg.echo, from: fromPlayer})
	}
	m.transcript = append(m.transcript, msg.entries...)
	m.transcript = append(m.transcript, entry{})
	m.render()
	return m
}

// render styles the transcript at the current width and scrolls to the end.
func (m *Model) render() {
	if !m.sized {
		return
	}
	width := max(m.width, 10)
	var b strings.Builder
	for i, e := range m.transcript {
		if i > 0 {
			b.WriteByte('\n')
		}
		if e.text == "" {
			continue
		}
		text := wordWrap(e.text, width)
		switch e.from {
		case fromPlayer:
			b.WriteString(stylePlayerInput.Render(text))
		case fromSystem:
			b.WriteString(styledSystemMsg(text))
		default:
			b.WriteString(renderLineKind(text, e.kind))
		}
	}
	m.log.SetContent(b.String())
	m.log.GotoBottom()
}

// wordWrap breaks text at spaces so no line exceeds width, unless a single
// word is longer.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var b strings.Builder
	col := 0
	for _, w := range strings.Fields(text) {
		switch {
		case col == 0:
		case col+1+len(w) > width:
			b.WriteByte('\n')
			col = 0
		default:
			b.WriteByte(' ')
			col++
		}
		b.WriteString(w)
		col += len(w)
	}
	return b.String()
}

func (m Model) View() string {
	switch {
	case m.quitting:
		return ""
	case !m.sized:
		return "Loading..."
	}
	return strings.Join([]string{m.log.View(), m.renderStatusBar(), m.prompt.View()}, "\n")
}

// scrollKeys leaves Up and Down to command history.
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
