package sandbox

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"go.uber.org/zap"
)

// Engine hands out isolates. One engine backs one gateway; closing it
// refuses new isolates but leaves closing live ones to their owner.
type Engine struct {
	config Config
	logger *logging.Logger

	mu      sync.Mutex
	closed  bool
	live    int
	created int
}

// NewEngine creates a sandbox engine
func NewEngine(config Config, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		config: config,
		logger: logger.Named("sandbox"),
	}
}

// CreateIsolate starts a fresh isolate labelled name.
func (e *Engine) CreateIsolate(ctx context.Context, name string) (*Isolate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}

	isolate, err := newIsolate(name, e.config, e.logger, e.release)
	if err != nil {
		return nil, err
	}
	e.live++
	e.created++
	return isolate, nil
}

func (e *Engine) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.live--
}

// Close stops the engine from creating isolates
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.logger.Info("Sandbox engine closed",
		zap.Int("created", e.created),
		zap.Int("live", e.live))
	return nil
}
