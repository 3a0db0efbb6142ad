package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
)

// State is the lifecycle state of the process-wide gateway.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateDestroyed
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Factory builds the gateway when the host starts.
type Factory func() (*Gateway, error)

// Guard holds the single gateway of the host process. Initialize, Current
// and Teardown serialize on one mutex. The lifecycle only moves forward:
// Uninitialized → Ready → Destroyed.
type Guard struct {
	factory Factory

	mu      sync.Mutex
	state   State
	gateway *Gateway
}

// NewGuard creates an uninitialized guard
func NewGuard(factory Factory) *Guard {
	return &Guard{factory: factory}
}

// Initialize creates the gateway. Calling it again while ready is a no-op;
// calling it after Teardown fails.
func (g *Guard) Initialize() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateReady:
		return nil
	case StateDestroyed:
		return fmt.Errorf("%w: gateway was torn down", modules.ErrClosed)
	}

	gateway, err := g.factory()
	if err != nil {
		return fmt.Errorf("initialize gateway: %w", err)
	}
	g.gateway = gateway
	g.state = StateReady
	return nil
}

// Current returns the live gateway, modules.ErrNotInitialized before
// Initialize, and modules.ErrClosed after Teardown.
func (g *Guard) Current() (*Gateway, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case StateReady:
		return g.gateway, nil
	case StateDestroyed:
		return nil, modules.ErrClosed
	default:
		return nil, modules.ErrNotInitialized
	}
}

// State returns the current lifecycle state
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Teardown closes every module context and then the sandbox. It is
// effective once; the guard never becomes ready again.
func (g *Guard) Teardown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateDestroyed {
		return nil
	}
	g.state = StateDestroyed

	gateway := g.gateway
	g.gateway = nil
	if gateway == nil {
		return nil
	}
	return gateway.Close()
}

// Evaluate evaluates action on the current gateway.
func (g *Guard) Evaluate(ctx context.Context, action modules.Action) (any, error) {
	gateway, err := g.Current()
	if err != nil {
		return nil, err
	}
	return gateway.Evaluate(ctx, action)
}

// LoadModules runs LoadModules on the current gateway, in every module or
// only in module when it is set.
func (g *Guard) LoadModules(ctx context.Context, protocolType modules.ProtocolType, module modules.ModuleName) (any, error) {
	gateway, err := g.Current()
	if err != nil {
		return nil, err
	}
	if module != "" {
		return gateway.LoadModule(ctx, protocolType, module)
	}
	return gateway.LoadModules(ctx, protocolType)
}
