package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/assets"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/gateway"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
)

type rootOptions struct {
	assetsDir string
	output    string
	logLevel  string
	timeout   time.Duration
}

func newRootCmd() *cobra.Command {
	defaults := config.LoadOrDefault()
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "modulectl",
		Short: "Call protocol modules from the command line",
		Long: `modulectl starts a module gateway in-process, performs a single action
and prints the unwrapped result.

Examples:
  modulectl load --protocol-type offline
  modulectl load --module ethereum
  modulectl call offline getName --protocol btc-main
  modulectl call online getBalance '["0xabc"]' --protocol eth --network mainnet -o yaml`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.assetsDir, "assets", defaults.Assets.Dir, "Directory holding the glue script and module bundles")
	flags.StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.DurationVar(&opts.timeout, "timeout", time.Minute, "Overall deadline for the action")

	rootCmd.AddCommand(newLoadCmd(opts, defaults))
	rootCmd.AddCommand(newCallCmd(opts, defaults))
	return rootCmd
}

// withGuard initializes a gateway for one action and always tears it down.
func withGuard(cmd *cobra.Command, opts *rootOptions, defaults *config.Config, run func(ctx context.Context, guard *gateway.Guard) (any, error)) error {
	if _, err := formatterFor(opts.output); err != nil {
		return err
	}

	logCfg := logging.DevelopmentConfig()
	logCfg.Level = opts.logLevel
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	defer logger.Sync()

	store := assets.NewDir(opts.assetsDir)
	guard := gateway.NewGuard(gateway.NewFactory(defaults.SandboxSettings(), store, logger, nil))
	if err := guard.Initialize(); err != nil {
		return err
	}
	defer guard.Teardown()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	value, err := run(ctx, guard)
	if err != nil {
		return err
	}
	return writeValue(cmd.OutOrStdout(), opts.output, value)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
