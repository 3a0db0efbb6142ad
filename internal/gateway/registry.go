package gateway

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// IsolatedContext is a bootstrapped execution context owned by one module.
// It is only ever handed out after its bootstrap completed.
type IsolatedContext struct {
	module  modules.ModuleName
	isolate Isolate
}

// Module returns the module the context belongs to.
func (c *IsolatedContext) Module() modules.ModuleName {
	return c.module
}

// Evaluate runs script in the context. Calls are queued by the isolate.
func (c *IsolatedContext) Evaluate(ctx context.Context, script string) (string, error) {
	return c.isolate.Evaluate(ctx, script)
}

// Registry owns one IsolatedContext per module, creating each lazily.
type Registry struct {
	sandbox Sandbox
	assets  Assets
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu       sync.Mutex
	contexts map[modules.ModuleName]*IsolatedContext
	closed   bool

	bootstraps singleflight.Group
}

// NewRegistry creates an empty registry
func NewRegistry(sandbox Sandbox, assets Assets, logger *logging.Logger, metrics *monitoring.Metrics) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		sandbox:  sandbox,
		assets:   assets,
		logger:   logger.Named("registry"),
		metrics:  metrics,
		contexts: make(map[modules.ModuleName]*IsolatedContext),
	}
}

// GetOrCreate returns the context of module, bootstrapping it on first use.
// Concurrent first calls share a single bootstrap. A failed bootstrap is not
// kept, so the next call starts over. If ctx ends while waiting, the
// bootstrap still completes for later callers.
func (r *Registry) GetOrCreate(ctx context.Context, module modules.ModuleName) (*IsolatedContext, error) {
	if c, err := r.lookup(module); c != nil || err != nil {
		return c, err
	}

	// Bootstrap outlives the first caller's cancellation.
	bootstrapCtx := context.WithoutCancel(ctx)
	ch := r.bootstraps.DoChan(string(module), func() (interface{}, error) {
		if c, err := r.lookup(module); c != nil || err != nil {
			return c, err
		}
		return r.create(bootstrapCtx, module)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*IsolatedContext), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) lookup(module modules.ModuleName) (*IsolatedContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, modules.ErrClosed
	}
	return r.contexts[module], nil
}

func (r *Registry) create(ctx context.Context, module modules.ModuleName) (*IsolatedContext, error) {
	start := time.Now()
	log := r.logger.ForModule(string(module))
	log.Info("Bootstrapping module context")

	c, err := r.bootstrap(ctx, module)
	if err != nil {
		r.metrics.RecordBootstrap(string(module), "error", time.Since(start))
		log.Warn("Module bootstrap failed", zap.Error(err))
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		c.isolate.Close()
		return nil, modules.ErrClosed
	}
	r.contexts[module] = c
	live := len(r.contexts)
	r.mu.Unlock()

	r.metrics.RecordBootstrap(string(module), "ok", time.Since(start))
	r.metrics.SetContextsLive(live)
	log.Info("Module context ready", zap.Duration("duration", time.Since(start)))
	return c, nil
}

// Live lists the modules with a bootstrapped context, sorted.
func (r *Registry) Live() []modules.ModuleName {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]modules.ModuleName, 0, len(r.contexts))
	for name := range r.contexts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// CloseAll closes every live context once and marks the registry closed.
// Later GetOrCreate calls fail with modules.ErrClosed.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	contexts := r.contexts
	r.contexts = make(map[modules.ModuleName]*IsolatedContext)
	r.mu.Unlock()

	var errs []error
	for name, c := range contexts {
		if err := c.isolate.Close(); err != nil {
			errs = append(errs, err)
			r.logger.Warn("Failed to close module context", logging.Module(string(name)), zap.Error(err))
		}
	}
	r.metrics.SetContextsLive(0)
	return errors.Join(errs...)
}
