package main

import (
	"context"
	"os"

	"github.com/viant/rtsched"
	"gopkg.in/yaml.v3"
)

func runValidate(ctx context.Context, args []string) error {
	f := newFlags("validate")
	location, err := f.parse(args)
	if err != nil {
		return err
	}
	options, err := f.options(ctx, f.logger())
	if err != nil {
		return err
	}
	srv, err := rtsched.Load(ctx, location, options...)
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err = encoder.Encode(srv.Registry().Report()); err != nil {
		return err
	}
	return encoder.Close()
}
