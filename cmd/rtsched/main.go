// Command rtsched validates and simulates scheduler declarations.
//
//	rtsched validate [-config file] blinky.yaml
//	rtsched simulate [-config file] [-v n] blinky.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/viant/rtsched"
	"github.com/viant/rtsched/service/meta"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var err error
	switch os.Args[1] {
	case "validate":
		err = runValidate(ctx, os.Args[2:])
	case "simulate":
		err = runSimulate(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: rtsched validate|simulate [flags] <declaration URL>")
}

type flags struct {
	set       *flag.FlagSet
	config    string
	verbosity int
	trace     string
}

func newFlags(name string) *flags {
	f := &flags{set: flag.NewFlagSet(name, flag.ContinueOnError)}
	f.set.StringVar(&f.config, "config", "", "scheduler config YAML URL")
	f.set.IntVar(&f.verbosity, "v", 0, "log verbosity")
	f.set.StringVar(&f.trace, "trace", "", "write dispatch spans to this file")
	return f
}

func (f *flags) parse(args []string) (string, error) {
	if err := f.set.Parse(args); err != nil {
		return "", err
	}
	if f.set.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one declaration URL", f.set.Name())
	}
	return f.set.Arg(0), nil
}

func (f *flags) logger() logr.Logger {
	stdr.SetVerbosity(f.verbosity)
	return stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds))
}

func (f *flags) options(ctx context.Context, logger logr.Logger) ([]rtsched.Option, error) {
	options := []rtsched.Option{rtsched.WithLogger(logger)}
	if f.config != "" {
		config := rtsched.DefaultConfig()
		if err := meta.New(nil, "").Load(ctx, f.config, config); err != nil {
			return nil, err
		}
		options = append(options, rtsched.WithConfig(config))
	}
	if f.trace != "" {
		options = append(options, rtsched.WithTracing("rtsched", "dev", f.trace))
	}
	return options, nil
}
