package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/save"
)

// Session is the state shared by the plain and TUI drivers: the engine,
// where saves live, and whether traces are shown.
type Session struct {
	Engine  *engine.Engine
	Fs      afero.Fs
	SaveDir string
	Trace   bool
}

// MetaReply is the answer to a slash command.
type MetaReply struct {
	Lines []string
	// Plain lines are printed as-is rather than as system messages.
	Plain bool
	Quit  bool
}

// Meta runs one slash command such as /save or /trace.
func (s *Session) Meta(input string) MetaReply {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return MetaReply{}
	}
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd := parts[0]; cmd {
	case "/quit", "/exit":
		return MetaReply{Lines: []string{"Goodbye."}, Quit: true}
	case "/save":
		return reply(s.save(arg))
	case "/load":
		return reply(s.load(arg))
	case "/help":
		return MetaReply{Lines: Help, Plain: true}
	case "/state":
		return MetaReply{Lines: FormatState(s.Engine.Table)}
	case "/trace":
		s.Trace = !s.Trace
		if s.Trace {
			return reply("Trace output enabled.")
		}
		return reply("Trace output disabled.")
	default:
		return reply(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
}

func reply(line string) MetaReply {
	return MetaReply{Lines: []string{line}}
}

// saveName defaults an empty name to quicksave and refuses names that
// would leave the save directory.
func saveName(name string) (string, error) {
	if name == "" {
		return "quicksave", nil
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid save name %q", name)
	}
	return name, nil
}

func (s *Session) fs() afero.Fs {
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}
	return s.Fs
}

func (s *Session) save(name string) string {
	name, err := saveName(name)
	if err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	if err := save.WriteFile(s.fs(), filepath.Join(s.SaveDir, name+".json"), s.Engine.Table); err != nil {
		return fmt.Sprintf("Save failed: %v", err)
	}
	return fmt.Sprintf("Game saved to %s.", name)
}

// load replaces the table with a save and resumes its dice sequence.
func (s *Session) load(name string) string {
	name, err := saveName(name)
	if err != nil {
		return fmt.Sprintf("Load failed: %v", err)
	}
	sd, err := save.ReadFile(s.fs(), filepath.Join(s.SaveDir, name+".json"))
	if err != nil {
		return fmt.Sprintf("Load failed: %v", err)
	}
	save.ApplySave(s.Engine.Table, sd)
	s.Engine.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	return fmt.Sprintf("Game loaded from %s (turn %d).", name, sd.Turn)
}
