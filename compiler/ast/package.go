//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package ast

import (
	"io"
	"maps"
	"slices"

	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Package implements a compilation unit.
type Package struct {
	Source    string
	Functions map[string]*Func
}

// NewPackage creates a new package.
func NewPackage(source string) *Package {
	return &Package{
		Source:    source,
		Functions: make(map[string]*Func),
	}
}

// Fprint prints the package functions to w in source order.
func (pkg *Package) Fprint(w io.Writer) {
	funcs := slices.SortedFunc(maps.Values(pkg.Functions),
		func(a, b *Func) int {
			if a.Loc.Line != b.Loc.Line {
				return a.Loc.Line - b.Loc.Line
			}
			return a.Loc.Col - b.Loc.Col
		})
	for _, f := range funcs {
		f.Fprint(w, 0)
	}
}

// Compile compiles the entry function into a high-level graph. The
// function arguments are the input slots 0, 1, ... in argument order
// and the returned values the output slots.
func (pkg *Package) Compile(logger *utils.Logger, params *utils.Params,
	entry string) (g *hl.Graph, err error) {

	defer utils.Recover(&err)

	f, ok := pkg.Functions[entry]
	if !ok {
		return nil, logger.Errorf(utils.Point{
			Source: pkg.Source,
		}, "function %s not defined", entry)
	}

	b := hl.NewBuilder(hl.NewGraph(), params.FixedPoint)
	ctx := NewCodegen(logger, pkg, b)
	ctx.pushScope()

	for idx, arg := range f.Args {
		if arg.Type == nil {
			return nil, ctx.Errorf(arg.Loc, "argument %s: missing type",
				arg.Name)
		}
		var fp uint8
		if arg.Type.Tag != TagBits && !arg.Type.Integer {
			fp = params.FixedPoint
		}
		h := b.Input(idx, b.TypeOf(arg.Type.Tag.Kind(), fp, arg.Type.Shape))
		ctx.bind(arg.Name, handle(h))
	}

	_, err = f.Body.HL(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.result == nil {
		return nil, ctx.Errorf(f, "%s: missing return", f.Name)
	}
	for idx, v := range ctx.result {
		v, err = ctx.Materialize(f, v)
		if err != nil {
			return nil, err
		}
		b.Output(v.Handle, idx)
	}
	return b.Graph(), nil
}
