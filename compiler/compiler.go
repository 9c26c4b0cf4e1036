//
// compiler.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package compiler compiles tensor programs into high-level graphs
// and lowers them into per-party replicated-sharing protocols.
package compiler

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/rep3/compiler/aby3"
	"github.com/markkurossi/rep3/compiler/ast"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/compiler/rss"
	"github.com/markkurossi/rep3/compiler/utils"
)

// DefaultEntry is the default entry function name.
const DefaultEntry = "main"

// Protocols lists the names of the lowering protocols.
var Protocols = []string{"generic", "aby3"}

// Protocol returns the lowering protocol of the name.
func Protocol(name string) (rss.Protocol, error) {
	switch name {
	case "generic":
		return rss.NewGeneric(), nil
	case "aby3":
		return aby3.New(), nil
	default:
		return nil, errors.Newf("unknown protocol %q", name)
	}
}

// Compiler implements the tensor program compiler.
type Compiler struct {
	params *utils.Params
	logger *utils.Logger
}

// New creates a new compiler instance. Diagnostics are written to
// stderr.
func New(params *utils.Params) *Compiler {
	return &Compiler{
		params: params,
		logger: utils.NewLogger(os.Stderr),
	}
}

// SetOutput sets the diagnostics output.
func (c *Compiler) SetOutput(out io.Writer) {
	c.logger = utils.NewLogger(out)
}

// Compile compiles the entry function of the program code.
func (c *Compiler) Compile(code, entry string) (*hl.Graph, error) {
	return c.compile("{data}", strings.NewReader(code), entry)
}

// CompileFile compiles the entry function of the program file.
func (c *Compiler) CompileFile(file, entry string) (*hl.Graph, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.compile(file, f, entry)
}

func (c *Compiler) compile(source string, in io.Reader, entry string) (
	*hl.Graph, error) {

	pkg, err := NewParser(source, c.logger, in).Parse()
	if err != nil {
		return nil, err
	}
	if c.params.ASTOut != nil {
		pkg.Fprint(c.params.ASTOut)
	}
	g, err := pkg.Compile(c.logger, c.params, entry)
	if err != nil {
		return nil, err
	}
	if c.params.HLOut != nil {
		g.PP(c.params.HLOut, nil)
	}
	return g, nil
}

// Program is a lowered program.
type Program struct {
	HL       *hl.Graph
	Local    *local.Graph
	IO       *rss.IOMap
	Lowering *rss.Lowering
}

// Lower lowers the high-level graph g with the protocol of the
// compiler params.
func (c *Compiler) Lower(g *hl.Graph) (*Program, error) {
	proto, err := Protocol(c.params.Protocol)
	if err != nil {
		return nil, err
	}
	lowering := rss.NewLowering(g, proto, c.params)
	lg, iomap, err := lowering.Lower()
	if err != nil {
		return nil, err
	}
	if c.params.LocalOut != nil {
		lg.PP(c.params.LocalOut, lowering.Annotate())
	}
	if c.params.StatsOut != nil {
		rss.NewStats(lg).Print(c.params.StatsOut)
	}
	return &Program{
		HL:       g,
		Local:    lg,
		IO:       iomap,
		Lowering: lowering,
	}, nil
}

// Builtins returns the names of the builtin functions.
func Builtins() []string {
	return ast.Builtins()
}
