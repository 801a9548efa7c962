package worker

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
)

// Registry maps operation names to raw gob-in/gob-out functions. A
// worker binary registers the operations it can run. A client needs
// no Registry: NewCall and Call take the argument/result types as type
// parameters, which must match what the worker registered under that
// name. Go has no
// serializable Callable the way JavaProcess.java's protocol does, so
// this registry of names stands in for shipping code across the
// wire.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]func([]byte) ([]byte, error)
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]func([]byte) ([]byte, error))}
}

// Register adds a raw operation under name, overwriting any previous
// registration. Most callers want RegisterFunc instead.
func (r *Registry) Register(name string, op func([]byte) ([]byte, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[name] = op
}

// RegisterFunc registers a typed Go function under name, wrapping it
// with gob decode/encode of Arg/Result so client and worker share one
// statically typed signature instead of juggling raw bytes by hand.
func RegisterFunc[Arg, Result any](r *Registry, name string, fn func(Arg) (Result, error)) {
	r.Register(name, func(raw []byte) ([]byte, error) {
		var arg Arg
		if len(raw) > 0 {
			if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&arg); err != nil {
				return nil, fmt.Errorf("worker: decoding argument for %q: %w", name, err)
			}
		}
		result, err := fn(arg)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(result); err != nil {
			return nil, fmt.Errorf("worker: encoding result for %q: %w", name, err)
		}
		return buf.Bytes(), nil
	})
}

// Run executes the operation registered under req.Op, turning an
// unknown operation or the wrapped function's own error into a
// populated Response.Err exactly as JavaProcess's main loop turns any
// Throwable from the submitted Callable into a serialized Response.
func (r *Registry) Run(req Request) Response {
	r.mu.RLock()
	op, ok := r.ops[req.Op]
	r.mu.RUnlock()
	if !ok {
		return Response{Err: fmt.Sprintf("worker: unregistered operation %q", req.Op)}
	}
	result, err := op(req.Arg)
	if err != nil {
		return Response{Err: err.Error()}
	}
	return Response{Result: result}
}
