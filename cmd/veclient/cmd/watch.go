package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/virtengine/virtengine-sub005/cmd/signals"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <query>",
		Short: "Stream chain events matching a query",
		Long: `watch subscribes to chain events matching the given CometBFT query, e.g.
"tm.event='Tx'", and prints each event as a JSON line. Gap markers are printed
when the connection dropped and events may have been missed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			eventsClient, err := newEventsClient(ctx, logger)
			if err != nil {
				return err
			}
			defer eventsClient.Close()

			signals.GoOnExitSignal(logger, func() {
				eventsClient.Close()
				cancel()
			})

			sub, err := eventsClient.Subscribe(ctx, args[0])
			if err != nil {
				return err
			}
			defer sub.Close()

			encoder := json.NewEncoder(cmd.OutOrStdout())
			for event := range sub.Events() {
				if event.GapDetected() {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: connection dropped, events may have been missed")
					continue
				}
				if err := encoder.Encode(event); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
