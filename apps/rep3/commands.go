//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markkurossi/rep3/compiler"
	"github.com/markkurossi/rep3/compiler/rss"
	"github.com/markkurossi/rep3/party"
)

func (opts *options) lower(cmd *cobra.Command, file string) (
	*compiler.Program, error) {

	c := opts.compiler(cmd)
	g, err := c.CompileFile(file, opts.entry)
	if err != nil {
		return nil, err
	}
	return c.Lower(g)
}

// nopCloser adds a no-op Close to a command output.
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func newDumpCommand(opts *options) *cobra.Command {
	var printAST bool

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the high-level graph of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := opts.config.Params()
			if printAST {
				params.ASTOut = nopCloser{cmd.OutOrStdout()}
			}
			defer params.Close()

			c := compiler.New(params)
			c.SetOutput(cmd.ErrOrStderr())
			g, err := c.CompileFile(args[0], opts.entry)
			if err != nil {
				return err
			}
			if !printAST {
				g.PP(cmd.OutOrStdout(), nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printAST, "ast", false,
		"print the parsed functions instead of the graph")
	return cmd
}

func newLowerCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lower FILE",
		Short: "Print the per-party graph of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := opts.lower(cmd, args[0])
			if err != nil {
				return err
			}
			prog.Local.PP(cmd.OutOrStdout(), prog.Lowering.Annotate())
			return nil
		},
	}
}

func newStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Print the operation and communication counts of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := opts.lower(cmd, args[0])
			if err != nil {
				return err
			}
			rss.NewStats(prog.Local).Print(cmd.OutOrStdout())
			return nil
		},
	}
}

func newRunCommand(opts *options) *cobra.Command {
	var inputs []string

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program with three in-process parties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := opts.lower(cmd, args[0])
			if err != nil {
				return err
			}
			values, err := parseInputs(prog.IO, inputs)
			if err != nil {
				return err
			}
			shares, err := prog.IO.Share(values, opts.config.GetRandom())
			if err != nil {
				return err
			}
			source, err := opts.config.Source()
			if err != nil {
				return err
			}
			outputs, report, err := party.Run(cmd.Context(), prog.Local,
				shares, source)
			if err != nil {
				return err
			}
			result, err := prog.IO.Reveal(outputs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			seen := make(map[int]bool)
			for _, slot := range prog.IO.Outputs {
				if seen[slot.Index] {
					continue
				}
				seen[slot.Index] = true
				fmt.Fprintf(out, "output %d: %s\n", slot.Index,
					formatOutput(slot, result[slot.Index]))
			}
			if opts.config.Verbose {
				report.Print(cmd.ErrOrStderr())
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil,
		"input slot values: SLOT=V,V,...")
	return cmd
}
