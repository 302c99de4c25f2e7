//go:build !cgo

package sentiment

import (
	"context"
	"errors"
)

// ErrCGORequired is returned by the local transformers model in a build
// without CGO
var ErrCGORequired = errors.New("the transformers model requires CGO; build with CGO_ENABLED=1")

type transformers struct{}

func newTransformers() (*transformers, error) {
	return nil, ErrCGORequired
}

func (t *transformers) analyze(ctx context.Context, text string) (string, float64, error) {
	return "", 0, ErrCGORequired
}

func (t *transformers) Close() error {
	return nil
}
