package main

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nathoo/rulecore/loader"
)

var validateCmd = &cobra.Command{
	Use:   "validate <content_dir>",
	Short: "Load content and report every validation error",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.close()

		out := cmd.OutOrStdout()
		defs, err := loader.Load(afero.NewOsFs(), args[0])
		var ve *loader.ValidationError
		if errors.As(err, &ve) {
			for _, e := range ve.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			for _, w := range ve.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return fmt.Errorf("%d validation error(s)", len(ve.Errors))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d entities, player %s\n", defs.Title, len(defs.Characters), defs.PlayerID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
