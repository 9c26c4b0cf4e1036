//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// The rep3 command compiles tensor programs into replicated
// three-party protocols and runs them with in-process parties.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markkurossi/rep3/compiler"
	"github.com/markkurossi/rep3/compiler/utils"
	"github.com/markkurossi/rep3/env"
)

// Exit statuses.
const (
	exitError    = 1
	exitInternal = 2
)

// options holds the global flags of all commands.
type options struct {
	configFile string
	verbose    bool
	debug      bool
	protocol   string
	fixedPoint uint8
	entry      string

	config *env.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return status(cmd.ExecuteContext(ctx), stderr)
}

// status reports err to stderr and returns its exit status.
func status(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ie *utils.InternalError
	if errors.As(err, &ie) {
		fmt.Fprintf(stderr, "%s\n", ie)
		return exitInternal
	}
	var diag *utils.Diagnostic
	if !errors.As(err, &diag) {
		// Diagnostics are already logged at their source location.
		fmt.Fprintf(stderr, "rep3: %s\n", err)
	}
	return exitError
}

func newRootCommand() *cobra.Command {
	opts := new(options)

	cmd := &cobra.Command{
		Use:           "rep3",
		Short:         "Replicated three-party MPC compiler",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&opts.debug, "debug", false, "debug logging")
	flags.StringVar(&opts.protocol, "protocol", "generic",
		"nonlinear protocol (generic|aby3)")
	flags.Uint8Var(&opts.fixedPoint, "fixed-point", 15,
		"fractional bits of fixed values")
	flags.StringVar(&opts.entry, "entry", compiler.DefaultEntry,
		"entry function")

	cmd.AddCommand(newDumpCommand(opts))
	cmd.AddCommand(newLowerCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newRunCommand(opts))

	return cmd
}

func (opts *options) init(cmd *cobra.Command) error {
	var err error
	if len(opts.configFile) > 0 {
		opts.config, err = env.Load(opts.configFile)
		if err != nil {
			return err
		}
	} else {
		opts.config = env.NewConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("protocol") {
		opts.config.Protocol = opts.protocol
	}
	if flags.Changed("fixed-point") {
		opts.config.FixedPoint = opts.fixedPoint
	}
	if opts.verbose {
		opts.config.Verbose = true
	}
	if err := opts.config.Validate(); err != nil {
		return err
	}

	logrus.SetOutput(cmd.ErrOrStderr())
	if opts.debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func (opts *options) compiler(cmd *cobra.Command) *compiler.Compiler {
	c := compiler.New(opts.config.Params())
	c.SetOutput(cmd.ErrOrStderr())
	return c
}
