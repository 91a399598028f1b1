package cmd

import (
	"context"
	"os"

	"cosmossdk.io/depinject"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/config"
	"github.com/virtengine/virtengine-sub005/pkg/client/events"
	"github.com/virtengine/virtengine-sub005/pkg/client/keys"
	"github.com/virtengine/virtengine-sub005/pkg/client/query"
	"github.com/virtengine/virtengine-sub005/pkg/client/rpc"
	"github.com/virtengine/virtengine-sub005/pkg/client/tx"
)

// mnemonicEnvVar is the environment variable the signing mnemonic is read
// from, keeping key material out of argv and shell history.
const mnemonicEnvVar = "VE_MNEMONIC"

var (
	flagConfigPath string
	flagKeyName    string
	flagVerbose    bool
)

// NewRootCmd returns the veclient root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "veclient",
		Short: "Interact with the VirtEngine network",
		Long: `veclient submits pre-encoded transactions to a VirtEngine node and
streams chain events. The signing mnemonic is read from the ` + mnemonicEnvVar + `
environment variable.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to the client YAML config (required)")
	rootCmd.PersistentFlags().StringVar(&flagKeyName, "key-name", "default", "name the signing key is stored under")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("config")

	rootCmd.AddCommand(
		newSubmitCmd(),
		newWatchCmd(),
	)

	return rootCmd
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadClientConfig() (*config.ClientConfig, error) {
	content, err := os.ReadFile(flagConfigPath)
	if err != nil {
		return nil, err
	}
	return config.ParseClientConfig(content)
}

// baseDeps assembles the dependencies shared by every command.
func baseDeps(logger zerolog.Logger) (depinject.Config, *config.ClientConfig, error) {
	clientConfig, err := loadClientConfig()
	if err != nil {
		return nil, nil, err
	}

	rpcClient := rpc.NewClient(clientConfig.RPCURL.String())

	return depinject.Supply(logger, clientConfig, rpcClient), clientConfig, nil
}

// newTxClient wires the full submission pipeline: keystore, account querier,
// sequence tracker, tx context, tx client.
func newTxClient(ctx context.Context, logger zerolog.Logger) (client.TxClient, error) {
	deps, _, err := baseDeps(logger)
	if err != nil {
		return nil, err
	}

	keyStore := keys.NewKeyStore("")
	if _, err := keyStore.ImportMnemonic(flagKeyName, os.Getenv(mnemonicEnvVar), "", 0); err != nil {
		return nil, err
	}
	deps = depinject.Configs(deps, depinject.Supply(keyStore))

	accountQuerier, err := query.NewAccountQuerier(deps)
	if err != nil {
		return nil, err
	}

	sequenceTracker, err := tx.NewSequenceTracker(depinject.Configs(deps, depinject.Supply(accountQuerier)))
	if err != nil {
		return nil, err
	}

	txCtx, err := tx.NewTxContext(deps)
	if err != nil {
		return nil, err
	}

	deps = depinject.Configs(deps, depinject.Supply(txCtx, sequenceTracker))

	return tx.NewTxClient(ctx, deps, tx.WithSigningKeyName(flagKeyName))
}

// newEventsClient wires the event subscription pipeline against the node's
// websocket endpoint.
func newEventsClient(ctx context.Context, logger zerolog.Logger) (client.EventsClient, error) {
	deps, clientConfig, err := baseDeps(logger)
	if err != nil {
		return nil, err
	}

	queryClient := events.NewEventsQueryClient(clientConfig.WebsocketURL)
	deps = depinject.Configs(deps, depinject.Supply(queryClient))

	return events.NewEventsClient(ctx, deps)
}
