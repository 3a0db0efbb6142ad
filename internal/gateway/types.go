package gateway

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/sandbox"
)

// Isolate is the execution surface the registry needs from one context.
// Implementations must run submissions one at a time in arrival order.
type Isolate interface {
	Evaluate(ctx context.Context, script string) (string, error)
	ProvideNamedData(ctx context.Context, name string, data []byte) error
	Close() error
}

// Sandbox creates isolates and is released once after all of them are closed.
type Sandbox interface {
	NewIsolate(ctx context.Context, module modules.ModuleName) (Isolate, error)
	Close() error
}

// Assets supplies the glue script and module bundles.
type Assets interface {
	Glue() ([]byte, error)
	Module(name modules.ModuleName) ([]byte, error)
}

// EngineSandbox adapts a goja sandbox engine to Sandbox.
type EngineSandbox struct {
	Engine *sandbox.Engine
}

func (s EngineSandbox) NewIsolate(ctx context.Context, module modules.ModuleName) (Isolate, error) {
	isolate, err := s.Engine.CreateIsolate(ctx, string(module))
	if err != nil {
		return nil, err
	}
	return isolate, nil
}

func (s EngineSandbox) Close() error {
	return s.Engine.Close()
}
