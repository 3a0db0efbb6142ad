package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/logging"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Isolate is one goja VM with its own global scope. The VM is owned by a
// single goroutine; every operation is submitted to it and runs in order.
type Isolate struct {
	name   string
	config Config
	logger *logging.Logger

	// Owned by the loop goroutine.
	vm        *goja.Runtime
	namedData map[string][]byte

	jobs      chan job
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	onClose   func()
}

type job struct {
	run    func() (string, error)
	result chan jobResult
}

type jobResult struct {
	value string
	err   error
}

func newIsolate(name string, config Config, logger *logging.Logger, onClose func()) (*Isolate, error) {
	vm := goja.New()
	if config.MaxCallStackSize > 0 {
		vm.SetMaxCallStackSize(config.MaxCallStackSize)
	}

	i := &Isolate{
		name:      name,
		config:    config,
		logger:    logger,
		vm:        vm,
		namedData: make(map[string][]byte),
		jobs:      make(chan job),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		onClose:   onClose,
	}

	if err := i.setupGlobals(); err != nil {
		return nil, err
	}

	go i.loop()
	return i, nil
}

// Name returns the label the isolate was created with.
func (i *Isolate) Name() string {
	return i.name
}

// Evaluate runs script and returns its completion value as a string. A
// returned Promise is settled first. If ctx ends before the script finishes,
// the result is discarded but the script still runs to completion.
func (i *Isolate) Evaluate(ctx context.Context, script string) (string, error) {
	return i.submit(ctx, func() (string, error) {
		return i.evaluate(script)
	})
}

// ProvideNamedData stores data that scripts can read once through
// host.consumeNamedDataAsArrayBuffer(name).
func (i *Isolate) ProvideNamedData(ctx context.Context, name string, data []byte) error {
	_, err := i.submit(ctx, func() (string, error) {
		if _, exists := i.namedData[name]; exists {
			return "", fmt.Errorf("%w: %q already provided", ErrNamedData, name)
		}
		i.namedData[name] = append([]byte(nil), data...)
		return "", nil
	})
	return err
}

// Close interrupts any running script, stops the loop and releases the VM.
// Later calls are no-ops.
func (i *Isolate) Close() error {
	i.closeOnce.Do(func() {
		close(i.done)
		i.vm.Interrupt(ErrIsolateClosed)
		<-i.stopped
		i.vm = nil
		i.namedData = nil
		if i.onClose != nil {
			i.onClose()
		}
	})
	return nil
}

func (i *Isolate) submit(ctx context.Context, run func() (string, error)) (string, error) {
	j := job{run: run, result: make(chan jobResult, 1)}

	select {
	case i.jobs <- j:
	case <-i.done:
		return "", ErrIsolateClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-j.result:
		return res.value, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (i *Isolate) loop() {
	defer close(i.stopped)
	for {
		select {
		case j := <-i.jobs:
			value, err := i.guarded(j.run)
			j.result <- jobResult{value: value, err: err}
		case <-i.done:
			return
		}
	}
}

// guarded applies the engine timeout to one job.
func (i *Isolate) guarded(run func() (string, error)) (string, error) {
	if i.config.Timeout <= 0 {
		return run()
	}

	fired := make(chan struct{})
	timer := time.AfterFunc(i.config.Timeout, func() {
		i.vm.Interrupt(ErrTimeout)
		close(fired)
	})
	defer func() {
		if !timer.Stop() {
			<-fired
		}
		i.vm.ClearInterrupt()
	}()

	return run()
}

func (i *Isolate) evaluate(script string) (string, error) {
	val, err := i.vm.RunString(script)
	if err != nil {
		return "", i.scriptError(err)
	}

	if promise, ok := val.Export().(*goja.Promise); ok {
		switch promise.State() {
		case goja.PromiseStateFulfilled:
			val = promise.Result()
		case goja.PromiseStateRejected:
			return "", &ScriptError{Isolate: i.name, Message: "rejected: " + promise.Result().String()}
		default:
			return "", &ScriptError{Isolate: i.name, Message: ErrPending.Error(), Err: ErrPending}
		}
	}

	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return "", nil
	}
	return val.String(), nil
}

func (i *Isolate) scriptError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return &ScriptError{Isolate: i.name, Message: cause.Error(), Err: cause}
		}
		return &ScriptError{Isolate: i.name, Message: interrupted.Error(), Err: err}
	}

	var exception *goja.Exception
	if errors.As(err, &exception) {
		return &ScriptError{Isolate: i.name, Message: exception.Value().String(), Err: err}
	}
	return &ScriptError{Isolate: i.name, Message: err.Error(), Err: err}
}

// setupGlobals strips host escape hatches and installs the host bridge
func (i *Isolate) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := i.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	console := i.vm.NewObject()
	for _, level := range []string{"log", "info", "debug", "warn", "error"} {
		if err := console.Set(level, i.makeConsoleFunc(level)); err != nil {
			return err
		}
	}
	if err := i.vm.Set("console", console); err != nil {
		return err
	}

	host := i.vm.NewObject()
	if err := host.Set("consumeNamedDataAsArrayBuffer", i.consumeNamedData); err != nil {
		return err
	}
	return i.vm.Set("host", host)
}

// makeConsoleFunc creates a console function
func (i *Isolate) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if !i.config.EnableConsole {
			return goja.Undefined()
		}

		parts := make([]string, len(call.Arguments))
		for n, arg := range call.Arguments {
			parts[n] = arg.String()
		}
		msg := strings.Join(parts, " ")

		fields := []zap.Field{zap.String("isolate", i.name), zap.String("level", level)}
		switch level {
		case "warn", "error":
			i.logger.Warn(msg, fields...)
		default:
			i.logger.Debug(msg, fields...)
		}
		return goja.Undefined()
	}
}

func (i *Isolate) consumeNamedData(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	promise, resolve, reject := i.vm.NewPromise()

	data, ok := i.namedData[name]
	if ok {
		delete(i.namedData, name)
		resolve(i.vm.ToValue(i.vm.NewArrayBuffer(data)))
	} else {
		reject(i.vm.NewGoError(fmt.Errorf("%w: %q", ErrNamedData, name)))
	}
	return i.vm.ToValue(promise)
}
