// Package publish forwards finished parse results to external systems.
package publish

import (
	"context"
	"errors"

	"gnsslog/internal/parser"
)

// Sink receives one complete parse result, identified by its task id.
type Sink interface {
	Publish(ctx context.Context, id string, res parser.Result) error
	Close() error
}

// Multi fans out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, id string, res parser.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, id, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
