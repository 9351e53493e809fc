// Package tui provides a Bubble Tea terminal UI for the rules engine.
package tui

// History keeps the most recent commands for Up/Down recall.
type History struct {
	entries []string
	max     int
	// pos is len(entries) while the player is typing fresh input.
	pos int
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records cmd unless it repeats the previous command, and resets
// navigation.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != cmd {
		h.entries = append(h.entries, cmd)
		if len(h.entries) > h.max {
			h.entries = h.entries[len(h.entries)-h.max:]
		}
	}
	h.ResetCursor()
}

// Prev steps back to an older command, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next steps forward. It returns false once past the newest command.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

// ResetCursor returns to fresh input.
func (h *History) ResetCursor() {
	h.pos = len(h.entries)
}
