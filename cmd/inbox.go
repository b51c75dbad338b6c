package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	inboxMax     int
	inboxWindow  int
	inboxNoMatch bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Extract leads from recent mailbox messages and sync them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initSync(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		inbox, err := initInbox(env)
		if err != nil {
			return err
		}

		maxCount := inboxMax
		if maxCount == 0 {
			maxCount = cfg.Email.MaxMessages
		}
		window := inboxWindow
		if window == 0 {
			window = cfg.Email.WindowMinutes
		}

		batch, err := inbox.Sync(ctx, maxCount, time.Duration(window)*time.Minute, !inboxNoMatch)
		if err != nil {
			return err
		}
		return printJSON(batch)
	},
}

func init() {
	inboxCmd.Flags().IntVar(&inboxMax, "max", 0, "max messages to process (default from config)")
	inboxCmd.Flags().IntVar(&inboxWindow, "window", 0, "recency window in minutes (default from config)")
	inboxCmd.Flags().BoolVar(&inboxNoMatch, "no-match", false, "skip agent matching")
	rootCmd.AddCommand(inboxCmd)
}
