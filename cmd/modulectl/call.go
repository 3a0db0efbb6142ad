package main

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/gateway"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
)

var argsAPI = sonic.Config{UseNumber: true}.Froze()

func newCallCmd(opts *rootOptions, defaults *config.Config) *cobra.Command {
	var (
		protocolIdentifier string
		moduleIdentifier   string
		networkID          string
	)

	callCmd := &cobra.Command{
		Use:   "call <target> <method> [args-json]",
		Short: "Call a method on a protocol or module facet",
		Long: `Call a method on one of the facets of a module:
offline, online, blockexplorer or v3serializercompanion.

args-json must be a JSON array. Protocol targets need --protocol,
v3serializercompanion needs --module.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var callArgs []any
			if len(args) == 3 {
				if err := argsAPI.UnmarshalFromString(args[2], &callArgs); err != nil {
					return fmt.Errorf("args must be a JSON array: %w", err)
				}
			}

			action, err := modules.NewCallAction(modules.CallRequest{
				Target:             args[0],
				Method:             args[1],
				Args:               callArgs,
				ProtocolIdentifier: protocolIdentifier,
				ModuleIdentifier:   moduleIdentifier,
				NetworkID:          networkID,
			})
			if err != nil {
				return err
			}

			return withGuard(cmd, opts, defaults, func(ctx context.Context, guard *gateway.Guard) (any, error) {
				return guard.Evaluate(ctx, action)
			})
		},
	}

	callCmd.Flags().StringVar(&protocolIdentifier, "protocol", "", "Protocol identifier, e.g. btc-main")
	callCmd.Flags().StringVar(&moduleIdentifier, "module", "", "Module identifier for v3serializercompanion")
	callCmd.Flags().StringVar(&networkID, "network", "", "Network id for online and blockexplorer calls")
	return callCmd
}
