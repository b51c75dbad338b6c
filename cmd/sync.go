package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var (
	syncSkip       int
	syncLimit      int
	syncMatchAgent bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync leads to the CRM",
}

var syncAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Sync a batch of leads from the configured source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initSync(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		batch, err := env.Orchestrator.SyncAll(ctx, syncSkip, syncLimit, syncMatchAgent)
		if err != nil {
			return err
		}
		return printJSON(batch)
	},
}

var syncLeadCmd = &cobra.Command{
	Use:   "lead <lead_id>",
	Short: "Sync a single lead by its external id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initSync(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Orchestrator.SyncByLeadID(ctx, args[0], syncMatchAgent)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	syncCmd.PersistentFlags().BoolVar(&syncMatchAgent, "match-agent", true, "run agent matching before syncing")
	syncAllCmd.Flags().IntVar(&syncSkip, "skip", 0, "number of leads to skip")
	syncAllCmd.Flags().IntVar(&syncLimit, "limit", 0, "max leads to sync (default 1000)")
	syncCmd.AddCommand(syncAllCmd)
	syncCmd.AddCommand(syncLeadCmd)
	rootCmd.AddCommand(syncCmd)
}
