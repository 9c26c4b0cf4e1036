//
// codegen.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ast

import (
	"fmt"
	"slices"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/utils"
)

// maxDepth limits the nesting of inlined function calls.
const maxDepth = 64

// Value is the result of an expression: a graph value, an untyped
// literal waiting for the type of its context, or an attribute list.
type Value struct {
	Handle graph.Handle
	Lit    *Constant
	Attr   []int
}

// Typed tests if the value is a graph value.
func (v Value) Typed() bool {
	return v.Lit == nil && v.Attr == nil
}

func handle(h graph.Handle) Value {
	return Value{
		Handle: h,
	}
}

// Codegen implements the code generation context.
type Codegen struct {
	logger  *utils.Logger
	Package *Package
	B       *hl.Builder
	scopes  []map[string]Value
	result  []Value
	depth   int
}

// NewCodegen creates a new code generation context.
func NewCodegen(logger *utils.Logger, pkg *Package, b *hl.Builder) *Codegen {
	return &Codegen{
		logger:  logger,
		Package: pkg,
		B:       b,
	}
}

// Errorf logs an error message at the source location.
func (ctx *Codegen) Errorf(locator utils.Locator, format string,
	a ...interface{}) error {
	return ctx.logger.Errorf(locator.Location(), format, a...)
}

// Unsupported reports a construct that has no lowering.
func (ctx *Codegen) Unsupported(locator utils.Locator, format string,
	a ...interface{}) error {
	return ctx.Errorf(locator, "unsupported operation %q",
		fmt.Sprintf(format, a...))
}

func (ctx *Codegen) pushScope() {
	ctx.scopes = append(ctx.scopes, make(map[string]Value))
}

func (ctx *Codegen) popScope() {
	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
}

func (ctx *Codegen) bind(name string, v Value) {
	ctx.scopes[len(ctx.scopes)-1][name] = v
}

func (ctx *Codegen) lookup(name string) (Value, bool) {
	v, ok := ctx.scopes[len(ctx.scopes)-1][name]
	return v, ok
}

// Type returns the type of the graph value v.
func (ctx *Codegen) Type(v Value) hl.Type {
	return ctx.B.Graph().Type(v.Handle)
}

// Shape returns the shape of the graph value v.
func (ctx *Codegen) Shape(v Value) []int {
	return ctx.B.Graph().Shape(v.Handle)
}

func (ctx *Codegen) kind(v Value) hl.Kind {
	return ctx.Type(v).Kind
}

func arith(k hl.Kind) bool {
	return k == hl.SecretArith || k == hl.Public
}

// encode encodes the literal with fixedPoint fractional bits.
func encode(lit *Constant, fixedPoint uint8) uint64 {
	switch v := lit.Value.(type) {
	case int64:
		return uint64(v) << fixedPoint
	case float64:
		return hl.EncodeFloat(v, fixedPoint)
	default:
		panic(fmt.Sprintf("invalid literal %T", lit.Value))
	}
}

// constant creates a public constant of the literal, scaled by
// fixedPoint and repeated to shape.
func (ctx *Codegen) constant(lit *Constant, fixedPoint uint8,
	shape []int) Value {

	values := make([]uint64, graph.NumElements(shape))
	v := encode(lit, fixedPoint)
	for i := range values {
		values[i] = v
	}
	return handle(ctx.B.Constant(values,
		ctx.B.TypeOf(hl.Public, fixedPoint, shape)))
}

// Materialize converts the value into a graph value. Integer
// literals become integer scalars and float literals fixed-point
// scalars of the default scale.
func (ctx *Codegen) Materialize(loc utils.Locator, v Value) (Value,
	error) {

	if v.Attr != nil {
		return v, ctx.Errorf(loc, "list %v used as value",
			hl.FormatList(v.Attr))
	}
	if v.Lit == nil {
		return v, nil
	}
	if _, ok := v.Lit.Value.(float64); ok {
		return ctx.constant(v.Lit, ctx.B.FixedPoint(), nil), nil
	}
	return ctx.constant(v.Lit, 0, nil), nil
}

// operands converts the operands of an elementwise binary operation
// into graph values of the same shape. A literal takes the shape of
// the other operand and its scale for additive operations. Scalars
// are broadcast to the shape of the other operand.
func (ctx *Codegen) operands(loc utils.Locator, l, r Value,
	additive bool) (Value, Value, error) {

	var err error
	switch {
	case l.Lit != nil && r.Typed():
		l = ctx.literal(l.Lit, r, additive)
	case r.Lit != nil && l.Typed():
		r = ctx.literal(r.Lit, l, additive)
	}
	l, err = ctx.Materialize(loc, l)
	if err != nil {
		return l, r, err
	}
	r, err = ctx.Materialize(loc, r)
	if err != nil {
		return l, r, err
	}

	ls := ctx.Shape(l)
	rs := ctx.Shape(r)
	switch {
	case len(ls) == 0 && len(rs) > 0:
		l = handle(ctx.B.Broadcast(l.Handle, nil, rs))
	case len(rs) == 0 && len(ls) > 0:
		r = handle(ctx.B.Broadcast(r.Handle, nil, ls))
	case !slices.Equal(ls, rs):
		return l, r, ctx.Errorf(loc, "shape mismatch %v and %v",
			hl.FormatList(ls), hl.FormatList(rs))
	}
	return l, r, nil
}

func (ctx *Codegen) literal(lit *Constant, like Value,
	additive bool) Value {

	var fp uint8
	if additive {
		fp = ctx.Type(like).FixedPoint
	} else if _, ok := lit.Value.(float64); ok {
		fp = ctx.B.FixedPoint()
	}
	return ctx.constant(lit, fp, ctx.Shape(like))
}

// HL implements the AST.HL.
func (ast List) HL(ctx *Codegen) ([]Value, error) {
	for _, stmt := range ast {
		if ctx.result != nil {
			return nil, ctx.Errorf(stmt, "unreachable code")
		}
		_, err := stmt.HL(ctx)
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// HL implements the AST.HL.
func (ast *Assign) HL(ctx *Codegen) ([]Value, error) {
	values, err := ast.Expr.HL(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) != len(ast.Names) {
		return nil, ctx.Errorf(ast, "assignment mismatch: %d variables, %d values",
			len(ast.Names), len(values))
	}
	for idx, name := range ast.Names {
		if values[idx].Attr != nil {
			return nil, ctx.Errorf(ast, "list assigned to %s", name)
		}
		if name == "_" {
			continue
		}
		ctx.bind(name, values[idx])
	}
	return nil, nil
}

// HL implements the AST.HL.
func (ast *Return) HL(ctx *Codegen) ([]Value, error) {
	result := make([]Value, 0, len(ast.Exprs))
	for _, expr := range ast.Exprs {
		v, err := ctx.Value(expr)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	ctx.result = result
	return nil, nil
}

// Value evaluates the single-valued expression.
func (ctx *Codegen) Value(expr AST) (Value, error) {
	values, err := expr.HL(ctx)
	if err != nil {
		return Value{}, err
	}
	if len(values) != 1 {
		return Value{}, ctx.Errorf(expr,
			"%s: expected single value, got %d", expr, len(values))
	}
	return values[0], nil
}

// HL implements the AST.HL.
func (ast *Call) HL(ctx *Codegen) ([]Value, error) {
	var args []Value
	for _, expr := range ast.Exprs {
		v, err := ctx.Value(expr)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	f, ok := ctx.Package.Functions[ast.Name]
	if ok {
		return ctx.inline(ast, f, args)
	}
	bi, ok := builtins[ast.Name]
	if !ok {
		return nil, ctx.Unsupported(ast, "%s", ast.Name)
	}
	if len(args) < bi.MinArgs || (bi.MaxArgs >= 0 && len(args) > bi.MaxArgs) {
		return nil, ctx.Errorf(ast, "%s: invalid number of arguments %d",
			ast.Name, len(args))
	}
	v, err := bi.HL(ctx, ast, args)
	if err != nil {
		return nil, err
	}
	return []Value{v}, nil
}

func (ctx *Codegen) inline(call *Call, f *Func, args []Value) (
	[]Value, error) {

	if len(args) != len(f.Args) {
		return nil, ctx.Errorf(call, "%s: expected %d arguments, got %d",
			f.Name, len(f.Args), len(args))
	}
	if ctx.depth >= maxDepth {
		return nil, ctx.Errorf(call, "%s: call depth exceeds %d",
			f.Name, maxDepth)
	}
	for idx, arg := range args {
		if arg.Attr != nil {
			return nil, ctx.Errorf(call, "%s: list argument %s",
				f.Name, f.Args[idx].Name)
		}
	}

	ctx.depth++
	ctx.pushScope()
	defer func() {
		ctx.popScope()
		ctx.depth--
	}()

	for idx, arg := range f.Args {
		ctx.bind(arg.Name, args[idx])
	}
	_, err := f.Body.HL(ctx)
	if err != nil {
		return nil, err
	}
	result := ctx.result
	ctx.result = nil
	if result == nil {
		return nil, ctx.Errorf(f, "%s: missing return", f.Name)
	}
	return result, nil
}

// HL implements the AST.HL.
func (ast *Binary) HL(ctx *Codegen) ([]Value, error) {
	l, err := ctx.Value(ast.Left)
	if err != nil {
		return nil, err
	}
	r, err := ctx.Value(ast.Right)
	if err != nil {
		return nil, err
	}
	if l.Lit != nil && r.Lit != nil {
		lit, err := ctx.fold(ast, l.Lit, r.Lit)
		if err != nil {
			return nil, err
		}
		return []Value{{Lit: lit}}, nil
	}

	additive := ast.Op != BinaryMult
	l, r, err = ctx.operands(ast, l, r, additive)
	if err != nil {
		return nil, err
	}
	lt := ctx.Type(l)
	rt := ctx.Type(r)

	b := ctx.B
	var result graph.Handle

	switch ast.Op {
	case BinaryPlus, BinaryMinus, BinaryMult,
		BinaryLt, BinaryLe, BinaryGt, BinaryGe, BinaryEq:
		if !arith(lt.Kind) || !arith(rt.Kind) {
			return nil, ctx.Unsupported(ast, "%v %s %v", lt.Kind, ast.Op,
				rt.Kind)
		}
		if ast.Op != BinaryMult && lt.FixedPoint != rt.FixedPoint {
			return nil, ctx.Errorf(ast, "fixed point mismatch %d and %d",
				lt.FixedPoint, rt.FixedPoint)
		}
		switch ast.Op {
		case BinaryPlus:
			result = hl.Add(b, l.Handle, r.Handle)
		case BinaryMinus:
			result = hl.Subtract(b, l.Handle, r.Handle)
		case BinaryMult:
			result = hl.Multiply(b, l.Handle, r.Handle)
		case BinaryLt:
			result = hl.Less(b, l.Handle, r.Handle)
		case BinaryLe:
			result = hl.GreaterEqual(b, r.Handle, l.Handle)
		case BinaryGt:
			result = hl.Greater(b, l.Handle, r.Handle)
		case BinaryGe:
			result = hl.GreaterEqual(b, l.Handle, r.Handle)
		case BinaryEq:
			result = hl.Equal(b, l.Handle, r.Handle)
		}

	case BinaryBitAnd, BinaryBitOr, BinaryBitXor:
		if lt.Kind != hl.SecretBits || rt.Kind != hl.SecretBits {
			return nil, ctx.Unsupported(ast, "%v %s %v", lt.Kind, ast.Op,
				rt.Kind)
		}
		switch ast.Op {
		case BinaryBitAnd:
			result = hl.And(b, l.Handle, r.Handle)
		case BinaryBitOr:
			result = hl.Or(b, l.Handle, r.Handle)
		case BinaryBitXor:
			result = hl.Xor(b, l.Handle, r.Handle)
		}

	default:
		return nil, ctx.Unsupported(ast, "%s", ast.Op)
	}
	return []Value{handle(result)}, nil
}

// fold evaluates the binary operation of two literals.
func (ctx *Codegen) fold(ast *Binary, l, r *Constant) (*Constant, error) {
	li, lok := l.Value.(int64)
	ri, rok := r.Value.(int64)
	if lok && rok {
		var v int64
		switch ast.Op {
		case BinaryPlus:
			v = li + ri
		case BinaryMinus:
			v = li - ri
		case BinaryMult:
			v = li * ri
		default:
			return nil, ctx.Unsupported(ast, "%s on literals", ast.Op)
		}
		return &Constant{Loc: ast.Loc, Value: v}, nil
	}
	lf := toFloat(l)
	rf := toFloat(r)
	var v float64
	switch ast.Op {
	case BinaryPlus:
		v = lf + rf
	case BinaryMinus:
		v = lf - rf
	case BinaryMult:
		v = lf * rf
	default:
		return nil, ctx.Unsupported(ast, "%s on literals", ast.Op)
	}
	return &Constant{Loc: ast.Loc, Value: v}, nil
}

func toFloat(lit *Constant) float64 {
	if i, ok := lit.Value.(int64); ok {
		return float64(i)
	}
	return lit.Value.(float64)
}

// HL implements the AST.HL.
func (ast *Unary) HL(ctx *Codegen) ([]Value, error) {
	v, err := ctx.Value(ast.Expr)
	if err != nil {
		return nil, err
	}
	if v.Lit != nil && ast.Type == UnaryMinus {
		lit := &Constant{
			Loc: ast.Loc,
		}
		switch n := v.Lit.Value.(type) {
		case int64:
			lit.Value = -n
		case float64:
			lit.Value = -n
		}
		return []Value{{Lit: lit}}, nil
	}
	v, err = ctx.Materialize(ast, v)
	if err != nil {
		return nil, err
	}
	k := ctx.kind(v)

	switch ast.Type {
	case UnaryMinus:
		if !arith(k) {
			return nil, ctx.Unsupported(ast, "-%v", k)
		}
		return []Value{handle(hl.Negate(ctx.B, v.Handle))}, nil

	default:
		if k != hl.SecretBits {
			return nil, ctx.Unsupported(ast, "^%v", k)
		}
		return []Value{handle(hl.Not(ctx.B, v.Handle))}, nil
	}
}

// HL implements the AST.HL.
func (ast *VariableRef) HL(ctx *Codegen) ([]Value, error) {
	v, ok := ctx.lookup(ast.Name)
	if !ok {
		return nil, ctx.Errorf(ast, "undefined: %s", ast.Name)
	}
	return []Value{v}, nil
}

// HL implements the AST.HL.
func (ast *Constant) HL(ctx *Codegen) ([]Value, error) {
	return []Value{{Lit: ast}}, nil
}

// HL implements the AST.HL.
func (ast *Attribute) HL(ctx *Codegen) ([]Value, error) {
	values := ast.Values
	if values == nil {
		values = []int{}
	}
	return []Value{{Attr: values}}, nil
}
