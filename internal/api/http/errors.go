package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/modules"
)

// StatusCode maps a gateway error onto an HTTP status.
func StatusCode(err error) int {
	var sandboxErr *modules.SandboxError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &sandboxErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, modules.ErrModuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, modules.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, modules.ErrNotInitialized), errors.Is(err, modules.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, modules.ErrBootstrap), errors.Is(err, modules.ErrEvaluation):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the text sent to clients. Module-reported errors are
// passed through verbatim.
func ErrorMessage(err error) string {
	var sandboxErr *modules.SandboxError
	if errors.As(err, &sandboxErr) {
		return sandboxErr.Message
	}
	return err.Error()
}
