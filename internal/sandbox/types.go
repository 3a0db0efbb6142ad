package sandbox

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEngineClosed  = errors.New("sandbox engine is closed")
	ErrIsolateClosed = errors.New("isolate is closed")
	ErrTimeout       = errors.New("execution timeout exceeded")
	ErrPending       = errors.New("script result never settled")
	ErrNamedData     = errors.New("named data unavailable")
)

// Config defines isolate configuration
type Config struct {
	Timeout          time.Duration // Per-evaluation engine limit, 0 disables
	MaxCallStackSize int           // goja call stack limit, 0 keeps the engine default
	EnableConsole    bool          // Forward console.* to the logger
}

// DefaultConfig returns the configuration used for module isolates
func DefaultConfig() Config {
	return Config{
		Timeout:          30 * time.Second,
		MaxCallStackSize: 1024,
		EnableConsole:    true,
	}
}

// ScriptError is raised when a script throws, fails to compile, rejects, or is interrupted.
type ScriptError struct {
	Isolate string
	Message string
	Err     error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("isolate %s: %s", e.Isolate, e.Message)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
