package main

import (
	"github.com/spf13/cobra"
)

var (
	leadsSkip  int
	leadsLimit int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect the configured lead source",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads from the configured source",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, store, err := initSource(ctx)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}
		}

		leads, err := source.List(ctx, leadsSkip, leadsLimit)
		if err != nil {
			return err
		}
		return printJSON(leads)
	},
}

var leadsGetCmd = &cobra.Command{
	Use:   "get <lead_id>",
	Short: "Show one lead by its external id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, store, err := initSource(ctx)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}
		}

		lead, err := source.GetByLeadID(ctx, args[0])
		if err != nil {
			return err
		}
		if lead == nil {
			cmd.PrintErrf("lead %s not found\n", args[0])
			return nil
		}
		return printJSON(lead)
	},
}

func init() {
	leadsListCmd.Flags().IntVar(&leadsSkip, "skip", 0, "number of leads to skip")
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 100, "max leads to list")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsGetCmd)
	rootCmd.AddCommand(leadsCmd)
}
