package cmd

import (
	"fmt"
	"os"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

func newSubmitCmd() *cobra.Command {
	var (
		flagFeeAmount   int64
		flagFeeDenom    string
		flagGasLimit    uint64
		flagMemo        string
		flagWait        bool
		flagWaitTimeout time.Duration
	)

	submitCmd := &cobra.Command{
		Use:   "submit <type-url> <payload-file>",
		Short: "Sign and broadcast a pre-encoded message",
		Long: `submit reads the wire-encoded message payload from <payload-file>, wraps
it in a transaction signed with the configured key, and broadcasts it. With
--wait it blocks until the transaction's confirmation event arrives.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			payloadBz, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			txClient, err := newTxClient(ctx, logger)
			if err != nil {
				return err
			}

			msgs := []client.EncodedMessage{{
				TypeURL: args[0],
				Bytes:   payloadBz,
			}}
			fee := client.Fee{
				Amount:   math.NewInt(flagFeeAmount),
				Denom:    flagFeeDenom,
				GasLimit: flagGasLimit,
			}

			result, err := txClient.SubmitWithRetry(ctx, msgs, fee, flagMemo)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "accepted: %s\n", result.TxHash)

			if !flagWait {
				return nil
			}

			eventsClient, err := newEventsClient(ctx, logger)
			if err != nil {
				return err
			}
			defer eventsClient.Close()

			event, err := eventsClient.AwaitConfirmation(ctx, result.TxHash, flagWaitTimeout)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "confirmed at height %d\n", event.Height)
			return nil
		},
	}

	submitCmd.Flags().Int64Var(&flagFeeAmount, "fee-amount", 1000, "fee amount")
	submitCmd.Flags().StringVar(&flagFeeDenom, "fee-denom", "uve", "fee denomination")
	submitCmd.Flags().Uint64Var(&flagGasLimit, "gas-limit", 200000, "gas limit")
	submitCmd.Flags().StringVar(&flagMemo, "memo", "", "transaction memo")
	submitCmd.Flags().BoolVar(&flagWait, "wait", false, "block until the confirmation event arrives")
	submitCmd.Flags().DurationVar(&flagWaitTimeout, "wait-timeout", time.Minute, "confirmation wait timeout")

	return submitCmd
}
