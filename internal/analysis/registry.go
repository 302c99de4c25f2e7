package analysis

import (
	"context"
	"fmt"
	"log/slog"
)

// Adapter normalizes one backend's output into the task's result type.
type Adapter[R any] func(ctx context.Context, req Request) (R, error)

// Backend is a registered method. A non-nil Err marks the backend unavailable.
type Backend[R any] struct {
	Key     string
	Label   string
	Adapter Adapter[R]
	Err     error
}

// Registry maps method keys to adapters. It is filled once when a task is
// constructed and only read afterwards.
type Registry[R any] struct {
	task     string
	backends []Backend[R]
	index    map[string]int
}

// NewRegistry creates an empty registry for the named task.
func NewRegistry[R any](task string) *Registry[R] {
	return &Registry[R]{
		task:  task,
		index: make(map[string]int),
	}
}

// Register adds a backend. Registering the same key twice is a programming
// error and panics.
func (r *Registry[R]) Register(b Backend[R]) {
	if _, exists := r.index[b.Key]; exists {
		panic(fmt.Sprintf("analysis: method %q registered twice for %s", b.Key, r.task))
	}
	if b.Adapter == nil && b.Err == nil {
		panic(fmt.Sprintf("analysis: method %q for %s has no adapter", b.Key, r.task))
	}
	if b.Err != nil {
		slog.Warn("Backend unavailable, method disabled", "task", r.task, "method", b.Key, "err", b.Err)
	}
	r.index[b.Key] = len(r.backends)
	r.backends = append(r.backends, b)
}

// Lookup returns the adapter for key.
func (r *Registry[R]) Lookup(key string) (Adapter[R], error) {
	i, ok := r.index[key]
	if !ok {
		return nil, &InvalidMethodError{Method: key, Valid: r.Keys()}
	}
	b := r.backends[i]
	if b.Err != nil {
		return nil, &UnavailableError{Method: b.Key, Label: b.Label, Err: b.Err}
	}
	return b.Adapter, nil
}

// Run looks up key and calls its adapter.
func (r *Registry[R]) Run(ctx context.Context, req Request) (R, error) {
	adapter, err := r.Lookup(req.Method)
	if err != nil {
		var zero R
		return zero, err
	}
	slog.Debug("Dispatching request", "task", r.task, "method", req.Method, "length", len(req.Text))
	return adapter(ctx, req)
}

// Keys returns the registered keys in registration order.
func (r *Registry[R]) Keys() []string {
	keys := make([]string, len(r.backends))
	for i, b := range r.backends {
		keys[i] = b.Key
	}
	return keys
}

// Methods describes every registered backend in registration order.
func (r *Registry[R]) Methods() []MethodInfo {
	methods := make([]MethodInfo, len(r.backends))
	for i, b := range r.backends {
		methods[i] = MethodInfo{
			Key:       b.Key,
			Label:     b.Label,
			Available: b.Err == nil,
		}
		if b.Err != nil {
			methods[i].Reason = b.Err.Error()
		}
	}
	return methods
}
