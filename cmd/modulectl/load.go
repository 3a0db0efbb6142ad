package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/gateway"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
)

func newLoadCmd(opts *rootOptions, defaults *config.Config) *cobra.Command {
	var (
		protocolType string
		module       string
	)

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Describe the protocols provided by the modules",
		Long: `Run LoadModules in every module, or only in --module, and print the
result. Every module is bootstrapped in parallel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := modules.ParseProtocolType(protocolType)
			if err != nil {
				return err
			}
			return withGuard(cmd, opts, defaults, func(ctx context.Context, guard *gateway.Guard) (any, error) {
				return guard.LoadModules(ctx, parsed, modules.ModuleName(module))
			})
		},
	}

	loadCmd.Flags().StringVar(&protocolType, "protocol-type", "", "Protocol type: offline, online or full")
	loadCmd.Flags().StringVar(&module, "module", "", "Only load this module")
	return loadCmd
}
