package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var matchVersion string

var matchCmd = &cobra.Command{
	Use:   "match <lead_id>",
	Short: "Run agent matching for a lead without syncing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initSync(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := env.Source.GetByLeadID(ctx, args[0])
		if err != nil {
			return err
		}
		if lead == nil {
			return eris.Errorf("lead %s not found", args[0])
		}

		match, err := env.Matcher.Match(ctx, *lead, matchVersion)
		if err != nil {
			return err
		}
		return printJSON(match)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchVersion, "prompt-version", "", "prompt version (default from config)")
	rootCmd.AddCommand(matchCmd)
}
