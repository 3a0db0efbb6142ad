package gateway

import (
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/GriffinCanCode/AgentOS/modulegate/internal/sandbox"
)

// NewFactory returns a Factory that builds a gateway on a fresh goja engine.
func NewFactory(settings sandbox.Config, assets Assets, logger *logging.Logger, metrics *monitoring.Metrics) Factory {
	return func() (*Gateway, error) {
		engine := sandbox.NewEngine(settings, logger)
		return New(EngineSandbox{Engine: engine}, assets, logger, metrics), nil
	}
}
