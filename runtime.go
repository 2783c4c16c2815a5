package rtsched

import (
	"context"
	"fmt"

	"github.com/viant/rtsched/model"
)

// Load reads the declaration at location through the meta service and
// creates a scheduler for it.
func Load(ctx context.Context, location string, options ...Option) (*Service, error) {
	s := newService(options)
	decl, err := s.appService.Load(ctx, location)
	if err != nil {
		return nil, s.reject(err)
	}
	if err = s.build(decl); err != nil {
		return nil, fmt.Errorf("invalid declaration %s: %w", location, err)
	}
	return s, nil
}

// Decode parses a YAML declaration and creates a scheduler for it.
func Decode(data []byte, options ...Option) (*Service, error) {
	s := newService(options)
	decl, err := s.appService.DecodeYAML(data)
	if err != nil {
		return nil, s.reject(fmt.Errorf("failed to decode declaration: %w", err))
	}
	if err = s.build(decl); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadApp reads a declaration without building a scheduler.
func LoadApp(ctx context.Context, location string, options ...Option) (*model.App, error) {
	return newService(options).appService.Load(ctx, location)
}
