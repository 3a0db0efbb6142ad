// Package gateway runs actions inside one isolated script context per module.
//
// Components:
//   - Registry: creates a module's context on first use. Concurrent first
//     calls share one bootstrap; a failed bootstrap is discarded so the next
//     call tries again.
//   - Gateway: routes an action to its module, evaluates it and decodes the
//     result. Each call is a single round-trip.
//   - Guard: owns the process-wide gateway through Initialize, Current and
//     Teardown.
//
// Bootstrap order for a new context:
//  1. var global = {};
//  2. the shared glue script
//  3. the module bundle, handed over as named data and evaluated into global
//
// Example Usage:
//
//	guard := gateway.NewGuard(gateway.NewFactory(sandbox.DefaultConfig(), store, logger, metrics))
//	if err := guard.Initialize(); err != nil {
//	    return err
//	}
//	defer guard.Teardown()
//
//	gw, _ := guard.Current()
//	name, err := gw.CallOfflineProtocolMethod(ctx, "getName", nil, "btc-main")
package gateway
