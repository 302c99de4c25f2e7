package analysis

import (
	"context"
	"io"
)

// Request is a single analysis request built per console iteration, CLI call,
// batch row or HTTP request.
type Request struct {
	Text   string `json:"text" yaml:"text"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	// Count is the number of items to return for tasks that rank output
	// (key phrases). Other tasks ignore it.
	Count int `json:"count,omitempty" yaml:"count,omitempty"`
}

// Result is the normalized output of a backend adapter.
type Result interface {
	// MethodLabel names the backend that produced the result.
	MethodLabel() string
	// Render prints the result in the console format.
	Render(w io.Writer)
}

// Labeler is implemented by results that can be scored against reference
// labels: entity texts, key phrases, a language code or a sentiment class.
type Labeler interface {
	Labels() []string
}

// MethodInfo describes one method of a task and whether its backend loaded.
type MethodInfo struct {
	Key       string `json:"key" yaml:"key"`
	Label     string `json:"label" yaml:"label"`
	Available bool   `json:"available" yaml:"available"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Task is one of the analysis tasks (entities, key phrases, language, sentiment).
type Task interface {
	// Name is the command and API name of the task, e.g. "sentiment".
	Name() string
	// Subject completes the console prompt "Enter the text for <subject>".
	Subject() string
	// DefaultMethod is used when no method is given.
	DefaultMethod() string
	// Methods lists the methods in menu order.
	Methods() []MethodInfo
	Analyze(ctx context.Context, req Request) (Result, error)
	Close() error
}

// Counter is implemented by tasks that take a result count from the user.
type Counter interface {
	CountPrompt() string
	DefaultCount() int
}
