package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/sandbox"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Gateway evaluates actions inside per-module isolated contexts.
type Gateway struct {
	registry *Registry
	sandbox  Sandbox
	logger   *logging.Logger
	metrics  *monitoring.Metrics

	closeOnce sync.Once
	closeErr  error
}

// New creates a gateway backed by sandbox and assets. Contexts are created on
// first use.
func New(sandbox Sandbox, assets Assets, logger *logging.Logger, metrics *monitoring.Metrics) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gateway{
		registry: NewRegistry(sandbox, assets, logger, metrics),
		sandbox:  sandbox,
		logger:   logger.Named("gateway"),
		metrics:  metrics,
	}
}

// Registry exposes the context registry.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Evaluate routes action to its module, evaluates it there and returns the
// unwrapped result. Each call is one round-trip into the module's context.
func (g *Gateway) Evaluate(ctx context.Context, action modules.Action) (any, error) {
	start := time.Now()

	module, err := modules.ModuleOf(action)
	if err != nil {
		g.record("", action, err, start)
		return nil, err
	}

	value, err := g.evaluate(ctx, module, action)
	g.record(module, action, err, start)
	if err != nil && !modules.IsSandboxError(err) {
		g.logger.Warn("Module evaluation failed",
			logging.Module(string(module)),
			logging.Action(modules.MethodOf(action)),
			zap.String("target", string(modules.TargetOf(action))),
			zap.Error(err))
	}
	return value, err
}

func (g *Gateway) evaluate(ctx context.Context, module modules.ModuleName, action modules.Action) (any, error) {
	script, err := modules.Script(module, action)
	if err != nil {
		return nil, err
	}

	moduleCtx, err := g.registry.GetOrCreate(ctx, module)
	if err != nil {
		return nil, err
	}

	raw, err := moduleCtx.Evaluate(ctx, script)
	if err != nil {
		return nil, translate(ctx, err)
	}
	return modules.Decode(action, raw)
}

// translate maps isolate failures onto the gateway's error taxonomy.
func translate(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err
	case errors.Is(err, sandbox.ErrIsolateClosed):
		return fmt.Errorf("%w: %v", modules.ErrClosed, err)
	default:
		return fmt.Errorf("%w: %v", modules.ErrEvaluation, err)
	}
}

// LoadModules runs LoadModules in every known module, in parallel, and
// returns each module's result keyed by module name. Any failure fails the
// whole call.
func (g *Gateway) LoadModules(ctx context.Context, protocolType modules.ProtocolType) (map[modules.ModuleName]any, error) {
	names := modules.Modules()
	results := make([]any, len(names))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, name := range names {
		group.Go(func() error {
			value, err := g.LoadModule(groupCtx, protocolType, name)
			if err != nil {
				return err
			}
			results[i] = value
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	loaded := make(map[modules.ModuleName]any, len(names))
	for i, name := range names {
		loaded[name] = results[i]
	}
	return loaded, nil
}

// LoadModule runs LoadModules in a single module.
func (g *Gateway) LoadModule(ctx context.Context, protocolType modules.ProtocolType, module modules.ModuleName) (any, error) {
	return g.Evaluate(ctx, modules.LoadModules{ProtocolType: protocolType, Module: module})
}

// CallOfflineProtocolMethod calls method on the offline facet of a protocol.
func (g *Gateway) CallOfflineProtocolMethod(ctx context.Context, method string, args []any, protocolIdentifier string) (any, error) {
	return g.Evaluate(ctx, modules.CallOfflineProtocolMethod{
		Method:             method,
		Args:               args,
		ProtocolIdentifier: protocolIdentifier,
	})
}

// CallOnlineProtocolMethod calls method on the online facet of a protocol.
func (g *Gateway) CallOnlineProtocolMethod(ctx context.Context, method string, args []any, protocolIdentifier, networkID string) (any, error) {
	return g.Evaluate(ctx, modules.CallOnlineProtocolMethod{
		Method:             method,
		Args:               args,
		ProtocolIdentifier: protocolIdentifier,
		NetworkID:          networkID,
	})
}

// CallBlockExplorerMethod calls method on a protocol's block explorer.
func (g *Gateway) CallBlockExplorerMethod(ctx context.Context, method string, args []any, protocolIdentifier, networkID string) (any, error) {
	return g.Evaluate(ctx, modules.CallBlockExplorerMethod{
		Method:             method,
		Args:               args,
		ProtocolIdentifier: protocolIdentifier,
		NetworkID:          networkID,
	})
}

// CallSerializerCompanionMethod calls method on a module's v3 serializer companion.
func (g *Gateway) CallSerializerCompanionMethod(ctx context.Context, method string, args []any, moduleIdentifier string) (any, error) {
	return g.Evaluate(ctx, modules.CallSerializerCompanionMethod{
		Method:           method,
		Args:             args,
		ModuleIdentifier: moduleIdentifier,
	})
}

// Close closes every module context, then releases the sandbox. Only the
// first call does any work.
func (g *Gateway) Close() error {
	g.closeOnce.Do(func() {
		contextsErr := g.registry.CloseAll()
		sandboxErr := g.sandbox.Close()
		g.closeErr = errors.Join(contextsErr, sandboxErr)
		g.logger.Info("Gateway closed")
	})
	return g.closeErr
}

func (g *Gateway) record(module modules.ModuleName, action modules.Action, err error, start time.Time) {
	name := string(module)
	if name == "" {
		name = "unresolved"
	}
	actionLabel := "invalid"
	if action != nil {
		actionLabel = string(action.Type())
	}
	g.metrics.RecordEvaluation(name, actionLabel, Status(err), time.Since(start))
}

// Status classifies an evaluation outcome for metrics and logs.
func Status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case modules.IsSandboxError(err):
		return "sandbox_error"
	case errors.Is(err, modules.ErrModuleNotFound):
		return "not_found"
	case errors.Is(err, modules.ErrInvalidAction):
		return "invalid"
	case errors.Is(err, modules.ErrBootstrap):
		return "bootstrap_error"
	case errors.Is(err, modules.ErrClosed):
		return "closed"
	case errors.Is(err, modules.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "evaluation_error"
	}
}
