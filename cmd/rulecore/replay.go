package main

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nathoo/rulecore/cli"
	"github.com/nathoo/rulecore/engine/effects"
	"github.com/nathoo/rulecore/engine/state"
	"github.com/nathoo/rulecore/journal"
	"github.com/nathoo/rulecore/loader"
)

var replayFlags struct {
	journal string
	session string
	limit   int
	verbose bool
}

var replayCmd = &cobra.Command{
	Use:   "replay <content_dir>",
	Short: "Rebuild a table by applying journaled results in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.close()
		ctx := cmd.Context()

		path := replayFlags.journal
		if path == "" {
			path = rt.cfg.JournalPath
		}
		if path == "" {
			return fmt.Errorf("no journal: pass --journal or set RULECORE_JOURNAL_PATH")
		}

		defs, err := loader.Load(afero.NewOsFs(), args[0])
		if err != nil {
			return fmt.Errorf("loading content: %w", err)
		}
		j, err := journal.Open(path)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, j)

		sessions, err := j.Sessions(ctx)
		if err != nil {
			return err
		}
		session, err := pickSession(sessions, replayFlags.session)
		if err != nil {
			return err
		}
		entries, err := j.ListSession(ctx, session, replayFlags.limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		t := state.NewTable(defs)
		t.SessionID = session
		for _, e := range entries {
			if err := effects.Apply(t, e.Result.StateChanges); err != nil {
				return fmt.Errorf("replaying %s (#%d): %w", e.ActionID, e.Seq, err)
			}
			if replayFlags.verbose {
				fmt.Fprintf(out, "#%d %s %s %s: %s\n", e.Seq, e.Kind, e.ActorID, e.Outcome, e.Result.Narrative.Summary)
			}
		}
		rt.log.Info("replayed journal", "path", path, "session", session, "entries", len(entries))

		fmt.Fprintf(out, "Replayed %d result(s).\n", len(entries))
		for _, line := range cli.FormatState(t) {
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

// pickSession returns the session to replay. Without a requested ID the
// journal must hold exactly one session.
func pickSession(sessions []journal.Session, want string) (string, error) {
	if want != "" {
		for _, s := range sessions {
			if s.ID == want {
				return want, nil
			}
		}
		return "", fmt.Errorf("session %q is not in the journal", want)
	}
	switch len(sessions) {
	case 0:
		return "", fmt.Errorf("journal is empty")
	case 1:
		return sessions[0].ID, nil
	}
	lines := make([]string, len(sessions))
	for i, s := range sessions {
		lines[i] = fmt.Sprintf("  %s (%d results, %s)", s.ID, s.Entries, s.First.Format("2006-01-02 15:04"))
	}
	return "", fmt.Errorf("journal holds %d sessions, pick one with --session:\n%s", len(sessions), strings.Join(lines, "\n"))
}

func init() {
	f := replayCmd.Flags()
	f.StringVar(&replayFlags.journal, "journal", "", "journal database (default RULECORE_JOURNAL_PATH)")
	f.StringVar(&replayFlags.session, "session", "", "session to replay (required when the journal holds several)")
	f.IntVar(&replayFlags.limit, "limit", 0, "replay only the first N results (0 for all)")
	f.BoolVarP(&replayFlags.verbose, "verbose", "v", false, "print each result as it is applied")
	rootCmd.AddCommand(replayCmd)
}
