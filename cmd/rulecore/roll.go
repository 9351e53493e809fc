package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathoo/rulecore/engine/dice"
)

var rollFlags struct {
	seed         int64
	advantage    bool
	disadvantage bool
	critical     bool
}

var rollCmd = &cobra.Command{
	Use:   "roll <notation>",
	Short: "Roll dice, e.g. 2d6+3 or d20 with --advantage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rng, err := newRollRNG()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		n, err := dice.Parse(args[0])
		if err != nil {
			return err
		}
		if n.Count == 1 && n.Sides == 20 && (rollFlags.advantage || rollFlags.disadvantage) {
			r := dice.RollD20(dice.D20Options{
				Mode:            dice.ModeFor(rollFlags.advantage, rollFlags.disadvantage),
				AbilityModifier: n.Modifier,
			}, rng)
			line := fmt.Sprintf("1d20 %s %v kept %d", r.Mode, r.Rolls, r.Kept)
			if r.Modifier() != 0 {
				line += fmt.Sprintf(" %+d", r.Modifier())
			}
			line += fmt.Sprintf(" = %d", r.Total)
			switch {
			case r.Critical:
				line += " (critical)"
			case r.Fumble:
				line += " (fumble)"
			}
			fmt.Fprintln(out, line)
		} else {
			r, err := dice.RollDamage(args[0], rollFlags.critical, rng)
			if err != nil {
				return err
			}
			parts := make([]string, len(r.Rolls))
			for i, v := range r.Rolls {
				parts[i] = fmt.Sprint(v)
			}
			line := fmt.Sprintf("%s [%s]", r.Notation, strings.Join(parts, " "))
			if r.Modifier != 0 {
				line += fmt.Sprintf(" %+d", r.Modifier)
			}
			fmt.Fprintf(out, "%s = %d\n", line, r.Total)
		}
		fmt.Fprintf(out, "seed %d\n", rng.Seed())
		return nil
	},
}

func init() {
	f := rollCmd.Flags()
	f.Int64Var(&rollFlags.seed, "seed", 0, "roll from this seed instead of a random one")
	f.BoolVar(&rollFlags.advantage, "advantage", false, "roll a d20 twice and keep the higher")
	f.BoolVar(&rollFlags.disadvantage, "disadvantage", false, "roll a d20 twice and keep the lower")
	f.BoolVar(&rollFlags.critical, "critical", false, "double the dice as for a critical hit")
	rootCmd.AddCommand(rollCmd)
}

func newRollRNG() (*dice.RNG, error) {
	if rollFlags.seed != 0 {
		return dice.NewSeeded(rollFlags.seed), nil
	}
	return dice.NewRandom()
}
