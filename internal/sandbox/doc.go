/*
Package sandbox runs JavaScript module bundles in isolated goja runtimes.

# Overview

An Engine creates Isolates. Each Isolate owns one goja VM with its own global
scope and a single goroutine that executes submitted work in order, so two
evaluations against the same isolate never interleave.

Isolates have:
  - No require, process, module or exports globals
  - console.* forwarded to the structured logger
  - host.consumeNamedDataAsArrayBuffer(name), a Promise of bytes provided
    from Go through ProvideNamedData, readable once
  - An optional per-evaluation timeout enforced with Runtime.Interrupt

# Cancellation

Cancelling the context passed to Evaluate only stops the caller from waiting.
The script keeps running and its result is dropped; the isolate stays usable.

# Usage Example

	engine := sandbox.NewEngine(sandbox.DefaultConfig(), logger)
	isolate, err := engine.CreateIsolate(ctx, "ethereum")
	if err != nil {
		return err
	}
	defer isolate.Close()

	out, err := isolate.Evaluate(ctx, "JSON.stringify({ ok: true })")
*/
package sandbox
