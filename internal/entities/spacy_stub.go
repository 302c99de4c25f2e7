//go:build !cgo

package entities

import (
	"context"
)

type spacyNER struct{}

func newSpacy(model string) (*spacyNER, error) {
	return nil, ErrCGORequired
}

func (s *spacyNER) extract(ctx context.Context, text string) ([]Entity, error) {
	return nil, ErrCGORequired
}

func (s *spacyNER) Close() error {
	return nil
}
