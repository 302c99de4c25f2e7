package analysis

import (
	"context"
	"errors"
)

// TaskInfo names a task and its default method.
type TaskInfo struct {
	Name    string
	Subject string
	Default string
}

// Base implements Task on top of a Registry. Task packages embed it and
// register their backends on Registry.
type Base[R Result] struct {
	info     TaskInfo
	Registry *Registry[R]
	closers  []func() error
}

// NewBase creates a Base with an empty registry.
func NewBase[R Result](info TaskInfo) *Base[R] {
	return &Base[R]{
		info:     info,
		Registry: NewRegistry[R](info.Name),
	}
}

func (b *Base[R]) Name() string          { return b.info.Name }
func (b *Base[R]) Subject() string       { return b.info.Subject }
func (b *Base[R]) DefaultMethod() string { return b.info.Default }
func (b *Base[R]) Methods() []MethodInfo { return b.Registry.Methods() }

// Run dispatches req, using the default method when none is set.
func (b *Base[R]) Run(ctx context.Context, req Request) (R, error) {
	if req.Method == "" {
		req.Method = b.info.Default
	}
	return b.Registry.Run(ctx, req)
}

// Analyze implements Task.
func (b *Base[R]) Analyze(ctx context.Context, req Request) (Result, error) {
	r, err := b.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CheckMethod reports whether method can run on t without running it. An
// empty method checks the default.
func CheckMethod(t Task, method string) error {
	if method == "" {
		method = t.DefaultMethod()
	}
	methods := t.Methods()
	for _, m := range methods {
		if m.Key != method {
			continue
		}
		if m.Available {
			return nil
		}
		var err error
		if m.Reason != "" {
			err = errors.New(m.Reason)
		}
		return &UnavailableError{Method: m.Key, Label: m.Label, Err: err}
	}

	keys := make([]string, len(methods))
	for i, m := range methods {
		keys[i] = m.Key
	}
	return &InvalidMethodError{Method: method, Valid: keys}
}

// OnClose registers fn to be called by Close.
func (b *Base[R]) OnClose(fn func() error) {
	b.closers = append(b.closers, fn)
}

// Close releases every backend handle registered with OnClose.
func (b *Base[R]) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
