//go:build !cgo

package entities

import (
	"context"
	"errors"
)

// ErrCGORequired is returned by the native backends in a build without CGO
var ErrCGORequired = errors.New("native NER backends require CGO; build with CGO_ENABLED=1")

type bertNER struct{}

func newBERT(modelID string) (*bertNER, error) {
	return nil, ErrCGORequired
}

func (b *bertNER) extract(ctx context.Context, text string) ([]Entity, error) {
	return nil, ErrCGORequired
}

func (b *bertNER) Close() error {
	return nil
}

type glinerNER struct{}

func newGliner(modelID string, labels []string) (*glinerNER, error) {
	return nil, ErrCGORequired
}

func (g *glinerNER) extract(ctx context.Context, text string) ([]Entity, error) {
	return nil, ErrCGORequired
}

func (g *glinerNER) Close() error {
	return nil
}
