//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ast

import (
	"slices"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Builtin implements a predeclared function.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	HL      HL
}

// HL generates the high-level operations of a builtin call.
type HL func(ctx *Codegen, loc utils.Locator, args []Value) (Value, error)

var builtins = make(map[string]Builtin)

func init() {
	for _, bi := range []Builtin{
		{Name: "p2a", MinArgs: 1, MaxArgs: 1, HL: p2aHL},
		{Name: "a2b", MinArgs: 1, MaxArgs: 1, HL: a2bHL},
		{Name: "b2a", MinArgs: 1, MaxArgs: 2, HL: b2aHL},
		{Name: "dot", MinArgs: 2, MaxArgs: 2, HL: dotHL},
		{Name: "transpose", MinArgs: 1, MaxArgs: 2, HL: transposeHL},
		{Name: "reshape", MinArgs: 2, MaxArgs: 2, HL: reshapeHL},
		{Name: "broadcast", MinArgs: 3, MaxArgs: 3, HL: broadcastHL},
		{Name: "slice", MinArgs: 3, MaxArgs: 4, HL: sliceHL},
		{Name: "concat", MinArgs: 1, MaxArgs: -1, HL: concatHL},
		{Name: "truncate", MinArgs: 2, MaxArgs: 2, HL: truncateHL},
		{Name: "shr", MinArgs: 2, MaxArgs: 2, HL: shrHL},
		{Name: "bitreverse", MinArgs: 1, MaxArgs: 1, HL: bitReverseHL},
		{Name: "inverse", MinArgs: 1, MaxArgs: 1, HL: inverseHL},
		{Name: "msb", MinArgs: 1, MaxArgs: 1, HL: msbHL},
		{Name: "max", MinArgs: 2, MaxArgs: 2, HL: maxHL},
		{Name: "select", MinArgs: 3, MaxArgs: 3, HL: selectHL},
		{Name: "iota", MinArgs: 2, MaxArgs: 2, HL: iotaHL},
	} {
		builtins[bi.Name] = bi
	}
}

// Builtins returns the names of the predeclared functions.
func Builtins() []string {
	var names []string
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func value(ctx *Codegen, loc utils.Locator, v Value,
	kinds ...hl.Kind) (graph.Handle, error) {

	v, err := ctx.Materialize(loc, v)
	if err != nil {
		return graph.Invalid, err
	}
	if len(kinds) > 0 && !slices.Contains(kinds, ctx.kind(v)) {
		return graph.Invalid, ctx.Unsupported(loc, "%s of %v",
			callName(loc), ctx.kind(v))
	}
	return v.Handle, nil
}

func callName(loc utils.Locator) string {
	if call, ok := loc.(*Call); ok {
		return call.Name
	}
	return "call"
}

func attr(ctx *Codegen, loc utils.Locator, v Value) ([]int, error) {
	if v.Attr == nil {
		return nil, ctx.Errorf(loc, "%s: expected integer list",
			callName(loc))
	}
	return v.Attr, nil
}

// shapeAttr returns the shape list argument v. All sizes must be
// positive.
func shapeAttr(ctx *Codegen, loc utils.Locator, v Value) ([]int, error) {
	shape, err := attr(ctx, loc, v)
	if err != nil {
		return nil, err
	}
	for _, d := range shape {
		if d <= 0 {
			return nil, ctx.Errorf(loc, "%s: invalid shape %v",
				callName(loc), hl.FormatList(shape))
		}
	}
	return shape, nil
}

func small(ctx *Codegen, loc utils.Locator, v Value, limit int) (
	uint8, error) {

	list, err := attr(ctx, loc, v)
	if err != nil {
		return 0, err
	}
	if len(list) != 1 || list[0] < 0 || list[0] >= limit {
		return 0, ctx.Errorf(loc, "%s: invalid argument %v",
			callName(loc), hl.FormatList(list))
	}
	return uint8(list[0]), nil
}

func p2aHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	x, err := value(ctx, loc, args[0], hl.Public)
	if err != nil {
		return Value{}, err
	}
	return handle(ctx.B.P2A(x)), nil
}

func a2bHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	x, err := value(ctx, loc, args[0], hl.SecretArith, hl.Public)
	if err != nil {
		return Value{}, err
	}
	return handle(hl.ToBits(ctx.B, x)), nil
}

func b2aHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	x, err := value(ctx, loc, args[0], hl.SecretBits)
	if err != nil {
		return Value{}, err
	}
	var fp uint8
	if len(args) > 1 {
		fp, err = small(ctx, loc, args[1], 32)
		if err != nil {
			return Value{}, err
		}
	}
	return handle(ctx.B.B2A(x, fp)), nil
}

func dotHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	l, err := value(ctx, loc, args[0], hl.SecretArith, hl.Public)
	if err != nil {
		return Value{}, err
	}
	r, err := value(ctx, loc, args[1], hl.SecretArith, hl.Public)
	if err != nil {
		return Value{}, err
	}
	g := ctx.B.Graph()
	ls := g.Shape(l)
	rs := g.Shape(r)
	if len(ls) != 2 || len(rs) != 2 || ls[1] != rs[0] {
		return Value{}, ctx.Errorf(loc, "dot: shape mismatch %v and %v",
			hl.FormatList(ls), hl.FormatList(rs))
	}
	return handle(hl.Dot(ctx.B, l, r)), nil
}

func transposeHL(ctx *Codegen, loc utils.Locator, args []Value) (
	Value, error) {

	x, err := value(ctx, loc, args[0])
	if err != nil {
		return Value{}, err
	}
	rank := len(ctx.B.Graph().Shape(x))
	var perm []int
	if len(args) > 1 {
		perm, err = attr(ctx, loc, args[1])
		if err != nil {
			return Value{}, err
		}
		if !permutation(perm, rank) {
			return Value{}, ctx.Errorf(loc,
				"transpose: invalid permutation %v for rank %d",
				hl.FormatList(perm), rank)
		}
	} else {
		for i := 0; i < rank; i++ {
			perm = append(perm, rank-1-i)
		}
	}
	return handle(ctx.B.Transpose(x, perm)), nil
}

func permutation(perm []int, rank int) bool {
	if len(perm) != rank {
		return false
	}
	seen := make([]bool, rank)
	for _, p := range perm {
		if p < 0 || p >= rank || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

func reshapeHL(ctx *Codegen, loc utils.Locator, args []Value) (
	Value, error) {

	x, err := value(ctx, loc, args[0])
	if err != nil {
		return Value{}, err
	}
	shape, err := shapeAttr(ctx, loc, args[1])
	if err != nil {
		return Value{}, err
	}
	in := ctx.B.Graph().Shape(x)
	if graph.NumElements(in) != graph.NumElements(shape) {
		return Value{}, ctx.Errorf(loc, "reshape: %v to %v",
			hl.FormatList(in), hl.FormatList(shape))
	}
	return handle(ctx.B.Reshape(x, shape)), nil
}

func broadcastHL(ctx *Codegen, loc utils.Locator, args []Value) (
	Value, error) {

	x, err := value(ctx, loc, args[0])
	if err != nil {
		return Value{}, err
	}
	dims, err := attr(ctx, loc, args[1])
	if err != nil {
		return Value{}, err
	}
	shape, err := shapeAttr(ctx, loc, args[2])
	if err != nil {
		return Value{}, err
	}
	in := ctx.B.Graph().Shape(x)
	if len(dims) != len(in) {
		return Value{}, ctx.Errorf(loc, "broadcast: %d dims for rank %d",
			len(dims), len(in))
	}
	for i, d := range dims {
		if d < 0 || d >= len(shape) || (i > 0 && d <= dims[i-1]) ||
			(in[i] != 1 && in[i] != shape[d]) {
			return Value{}, ctx.Errorf(loc,
				"broadcast: invalid dims %v for %v to %v",
				hl.FormatList(dims), hl.FormatList(in),
				hl.FormatList(shape))
		}
	}
	return handle(ctx.B.Broadcast(x, dims, shape)), nil
}

func sliceHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	x, err := value(ctx, loc, args[0])
	if err != nil {
		return Value{}, err
	}
	var lists [3][]int
	for i := 1; i < len(args); i++ {
		lists[i-1], err = attr(ctx, loc, args[i])
		if err != nil {
			return Value{}, err
		}
	}
	in := ctx.B.Graph().Shape(x)
	start, end, strides := lists[0], lists[1], lists[2]
	if strides == nil {
		strides = hl.UnitStrides(len(in))
	}
	if len(start) != len(in) || len(end) != len(in) ||
		len(strides) != len(in) {
		return Value{}, ctx.Errorf(loc, "slice: invalid rank for %v",
			hl.FormatList(in))
	}
	for i := range in {
		if start[i] < 0 || start[i] > end[i] || end[i] > in[i] ||
			strides[i] <= 0 {
			return Value{}, ctx.Errorf(loc,
				"slice: invalid range %v:%v:%v for %v",
				hl.FormatList(start), hl.FormatList(end),
				hl.FormatList(strides), hl.FormatList(in))
		}
	}
	return handle(ctx.B.Slice(x, start, end, strides)), nil
}

func concatHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	var dim int
	if last := args[len(args)-1]; last.Attr != nil {
		d, err := small(ctx, loc, last, 64)
		if err != nil {
			return Value{}, err
		}
		dim = int(d)
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return Value{}, ctx.Errorf(loc, "concat: no operands")
	}
	var xs []graph.Handle
	var kind hl.Kind
	var fp uint8
	var shape []int
	for idx, arg := range args {
		x, err := value(ctx, loc, arg)
		if err != nil {
			return Value{}, err
		}
		t := ctx.B.Graph().Type(x)
		s := ctx.B.Graph().Shape(x)
		if idx == 0 {
			kind, fp, shape = t.Kind, t.FixedPoint, s
			if dim >= len(shape) {
				return Value{}, ctx.Errorf(loc,
					"concat: axis %d for rank %d", dim, len(shape))
			}
		} else if t.Kind != kind || t.FixedPoint != fp ||
			!sameExcept(shape, s, dim) {
			return Value{}, ctx.Errorf(loc,
				"concat: operand %d type mismatch", idx)
		}
		xs = append(xs, x)
	}
	return handle(ctx.B.Concat(dim, xs...)), nil
}

func sameExcept(a, b []int, dim int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if i != dim && a[i] != b[i] {
			return false
		}
	}
	return true
}

func truncateHL(ctx *Codegen, loc utils.Locator, args []Value) (
	Value, error) {

	x, err := value(ctx, loc, args[0], hl.SecretArith, hl.Public)
	if err != nil {
		return Value{}, err
	}
	bits, err := small(ctx, loc, args[1], 256)
	if err != nil {
		return Value{}, err
	}
	fp := ctx.B.Graph().Type(x).FixedPoint
	if bits == 0 || bits > fp {
		return Value{}, ctx.Errorf(loc,
			"truncate: %d bits for fixed point %d", bits, fp)
	}
	return handle(hl.Truncate(ctx.B, x, bits)), nil
}

func shrHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	x, err := value(ctx, loc, args[0], hl.SecretBits)
	if err != nil {
		return Value{}, err
	}
	bits, err := small(ctx, loc, args[1], 64)
	if err != nil {
		return Value{}, err
	}
	return handle(ctx.B.ShiftRight(x, bits)), nil
}

func bitReverseHL(ctx *Codegen, loc utils.Locator, args []Value) (
	Value, error) {

	x, err := value(ctx, loc, args[0], hl.SecretBits)
	if err != nil {
		return Value{}, err
	}
	return handle(ctx.B.BitReverse(x)), nil
}

func inverseHL(ctx *Codegen, loc utils.Locator, args []Value) (
	Value, error) {

	x, err := value(ctx, loc, args[0], hl.Public)
	if err != nil {
		return Value{}, err
	}
	return handle(ctx.B.Inverse(x)), nil
}

func msbHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	x, err := value(ctx, loc, args[0], hl.SecretArith, hl.Public)
	if err != nil {
		return Value{}, err
	}
	return handle(hl.MSB(ctx.B, x)), nil
}

func maxHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	l, r, err := ctx.operands(loc, args[0], args[1], true)
	if err != nil {
		return Value{}, err
	}
	lt := ctx.Type(l)
	rt := ctx.Type(r)
	if !arith(lt.Kind) || !arith(rt.Kind) {
		return Value{}, ctx.Unsupported(loc, "max of %v and %v",
			lt.Kind, rt.Kind)
	}
	if lt.FixedPoint != rt.FixedPoint {
		return Value{}, ctx.Errorf(loc, "max: fixed point mismatch %d and %d",
			lt.FixedPoint, rt.FixedPoint)
	}
	return handle(hl.Max(ctx.B, l.Handle, r.Handle)), nil
}

func selectHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	l, r, err := ctx.operands(loc, args[1], args[2], true)
	if err != nil {
		return Value{}, err
	}
	which, err := value(ctx, loc, args[0], hl.SecretArith, hl.Public)
	if err != nil {
		return Value{}, err
	}
	lt := ctx.Type(l)
	rt := ctx.Type(r)
	wt := ctx.B.Graph().Type(which)
	if !arith(lt.Kind) || !arith(rt.Kind) {
		return Value{}, ctx.Unsupported(loc, "select of %v and %v",
			lt.Kind, rt.Kind)
	}
	if lt.FixedPoint != rt.FixedPoint || wt.FixedPoint != 0 {
		return Value{}, ctx.Errorf(loc, "select: fixed point mismatch")
	}
	if !slices.Equal(ctx.Shape(l), ctx.B.Graph().Shape(which)) {
		return Value{}, ctx.Errorf(loc, "select: shape mismatch")
	}
	return handle(hl.Select(ctx.B, which, l.Handle, r.Handle)), nil
}

func iotaHL(ctx *Codegen, loc utils.Locator, args []Value) (Value, error) {
	shape, err := shapeAttr(ctx, loc, args[1])
	if err != nil {
		return Value{}, err
	}
	dim, err := small(ctx, loc, args[0], len(shape))
	if err != nil {
		return Value{}, err
	}
	return handle(hl.Iota(ctx.B, int(dim), shape)), nil
}
