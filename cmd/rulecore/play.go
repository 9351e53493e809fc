package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nathoo/rulecore/cli"
	"github.com/nathoo/rulecore/engine"
	"github.com/nathoo/rulecore/engine/action"
	"github.com/nathoo/rulecore/engine/events"
	"github.com/nathoo/rulecore/engine/save"
	"github.com/nathoo/rulecore/engine/validate"
	"github.com/nathoo/rulecore/journal"
	"github.com/nathoo/rulecore/loader"
	"github.com/nathoo/rulecore/tui"
)

var playFlags struct {
	plain      bool
	trace      bool
	script     string
	seed       int64
	resume     string
	enemyTurns bool
}

var playCmd = &cobra.Command{
	Use:   "play <content_dir>",
	Short: "Sit down at a table loaded from Lua content",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	f := playCmd.Flags()
	f.BoolVar(&playFlags.plain, "plain", false, "use the line-oriented interface instead of the TUI")
	f.BoolVar(&playFlags.trace, "trace", false, "print rolls and state changes after each command")
	f.StringVar(&playFlags.script, "script", "", "read commands from this file (implies --plain)")
	f.Int64Var(&playFlags.seed, "seed", 0, "dice seed (overrides RULECORE_SEED)")
	f.StringVar(&playFlags.resume, "resume", "", "start from this save file")
	f.BoolVar(&playFlags.enemyTurns, "enemy-turns", true, "let enemies act when you start a turn in combat")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()
	ctx := cmd.Context()

	fs := afero.NewOsFs()
	defs, err := loader.Load(fs, args[0])
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	seed := rt.cfg.Seed
	if playFlags.seed != 0 {
		seed = playFlags.seed
	}
	opts := engine.Options{
		Seed:       seed,
		Validator:  newValidator(rt),
		EnemyTurns: playFlags.enemyTurns,
		Logger:     rt.log,
	}

	if rt.cfg.JournalPath != "" {
		j, err := journal.Open(rt.cfg.JournalPath)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, j)
		opts.Journal = j
	}

	bus := events.NewBus(rt.log)
	rt.closers = append(rt.closers, bus)
	if err := bus.Subscribe(ctx, narrationLog(rt)); err != nil {
		return err
	}
	opts.Publisher = bus

	eng, err := engine.New(defs, opts)
	if err != nil {
		return err
	}
	if playFlags.resume != "" {
		sd, err := save.ReadFile(fs, playFlags.resume)
		if err != nil {
			return err
		}
		save.ApplySave(eng.Table, sd)
		eng.RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	}
	rt.log.Info("table ready", "title", defs.Title, "session", eng.Table.SessionID, "seed", eng.Table.RNGSeed, "turn", eng.Table.TurnCount)

	out := cmd.OutOrStdout()
	if playFlags.script != "" {
		f, err := os.Open(playFlags.script)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		fmt.Fprintf(out, "%s\n\n", defs.Title)
		c := cli.New(eng, defs.Intro, rt.cfg.SaveDir)
		c.In = f
		c.Out = out
		c.EchoInput = true
		c.Trace = playFlags.trace
		c.Run(ctx)
		return nil
	}

	if playFlags.plain || !isTerminal() {
		fmt.Fprintf(out, "%s\n\n", defs.Title)
		c := cli.New(eng, defs.Intro, rt.cfg.SaveDir)
		c.Out = out
		c.Trace = playFlags.trace
		c.Run(ctx)
		return nil
	}

	return tui.Run(ctx, eng, tui.Config{
		Title:   defs.Title,
		Intro:   defs.Intro,
		Fs:      fs,
		SaveDir: rt.cfg.SaveDir,
	})
}

// newValidator always runs the deterministic stage; the external check is
// added when a validator URL is configured.
func newValidator(rt *runtimeEnv) *validate.Validator {
	opts := validate.Options{
		Timeout:  rt.cfg.ValidatorTimeout,
		FailOpen: rt.cfg.ValidatorFailOpen,
		Logger:   rt.log,
	}
	if !rt.cfg.ValidatorEnabled() {
		return validate.New(nil, opts)
	}
	checker := validate.NewHTTPChecker(rt.cfg.ValidatorURL, rt.cfg.ValidatorModel, rt.cfg.ValidatorAPIKey, nil)
	return validate.New(checker, opts)
}

// narrationLog hands each applied result to the log in the shape a
// narrator consumes: the summary and mood only.
func narrationLog(rt *runtimeEnv) events.Handler {
	return func(ctx context.Context, res action.Result) error {
		rt.log.DebugContext(ctx, "narration",
			"action_id", res.ActionID,
			"outcome", res.Outcome,
			"mood", res.Narrative.Mood,
			"summary", res.Narrative.Summary)
		return nil
	}
}
