package modules

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized = errors.New("module context has not been initialized yet")
	ErrModuleNotFound = errors.New("module not found")
	ErrBootstrap      = errors.New("module bootstrap failed")
	ErrEvaluation     = errors.New("script evaluation failed")
	ErrMissingResult  = fmt.Errorf("%w: response carries no result field", ErrEvaluation)
	ErrClosed         = errors.New("module context is closed")
	ErrInvalidAction  = errors.New("invalid action")
)

// ModuleNotFoundError reports an identifier that matches no module family.
type ModuleNotFoundError struct {
	Identifier string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module %s could not be found", e.Identifier)
}

func (e *ModuleNotFoundError) Is(target error) bool {
	return target == ErrModuleNotFound
}

// BootstrapError reports a context that could not be prepared for a module.
// The failed context is never cached, so the next call bootstraps again.
type BootstrapError struct {
	Module ModuleName
	Err    error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap of module %s failed: %v", e.Module, e.Err)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

func (e *BootstrapError) Is(target error) bool {
	return target == ErrBootstrap
}

// SandboxError carries an error reported by the module's own code, verbatim.
type SandboxError struct {
	Message string
}

func (e *SandboxError) Error() string {
	return e.Message
}

// IsSandboxError reports whether err was raised by module code.
func IsSandboxError(err error) bool {
	var sandboxErr *SandboxError
	return errors.As(err, &sandboxErr)
}
