//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"slices"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Builder creates operations into a graph and enforces the type
// rules of the dialect. Rule violations are internal compiler errors.
type Builder struct {
	g          *Graph
	fixedPoint uint8
}

// NewBuilder creates a builder for the graph g. The fixedPoint
// specifies the default scale of fixed-point values.
func NewBuilder(g *Graph, fixedPoint uint8) *Builder {
	return &Builder{
		g:          g,
		fixedPoint: fixedPoint,
	}
}

// Graph returns the graph of the builder.
func (b *Builder) Graph() *Graph {
	return b.g
}

// FixedPoint returns the default fixed-point scale.
func (b *Builder) FixedPoint() uint8 {
	return b.fixedPoint
}

// TypeOf creates a type with an interned shape.
func (b *Builder) TypeOf(kind Kind, fixedPoint uint8, shape []int) Type {
	if kind == SecretBits && fixedPoint != 0 {
		utils.ICE("bits type with fixed point %d", fixedPoint)
	}
	return Type{
		Kind:       kind,
		FixedPoint: fixedPoint,
		Shape:      b.g.attrs.PushShape(shape),
	}
}

func (b *Builder) expect(name string, x graph.Handle, kind Kind) Type {
	t := b.g.Type(x)
	if t.Kind != kind {
		utils.ICE("%s: operand %v is %v, expected %v", name, x, t.Kind, kind)
	}
	return t
}

func (b *Builder) binary(name string, l, r graph.Handle, lk, rk Kind) (
	Type, Type) {

	lt := b.expect(name, l, lk)
	rt := b.expect(name, r, rk)
	if lt.Shape != rt.Shape {
		utils.ICE("%s: shape mismatch %v and %v", name,
			b.g.attrs.Shape(lt.Shape), b.g.attrs.Shape(rt.Shape))
	}
	return lt, rt
}

func (b *Builder) additive(name string, l, r graph.Handle, lk, rk Kind) Type {
	lt, rt := b.binary(name, l, r, lk, rk)
	if lt.FixedPoint != rt.FixedPoint {
		utils.ICE("%s: fixed point mismatch %d and %d", name,
			lt.FixedPoint, rt.FixedPoint)
	}
	return lt
}

func sumFixedPoint(name string, a, b uint8) uint8 {
	sum := int(a) + int(b)
	if sum > 255 {
		utils.ICE("%s: fixed point overflow %d", name, sum)
	}
	return uint8(sum)
}

func (b *Builder) multiplicative(name string, l, r graph.Handle,
	lk, rk Kind) Type {

	lt, rt := b.binary(name, l, r, lk, rk)
	lt.FixedPoint = sumFixedPoint(name, lt.FixedPoint, rt.FixedPoint)
	return lt
}

func (b *Builder) dot(name string, l, r graph.Handle, lk, rk Kind) Type {
	lt := b.expect(name, l, lk)
	rt := b.expect(name, r, rk)
	ls := b.g.attrs.Shape(lt.Shape)
	rs := b.g.attrs.Shape(rt.Shape)
	if len(ls) != 2 || len(rs) != 2 {
		utils.ICE("%s: rank-2 operands required, got %v and %v",
			name, ls, rs)
	}
	if ls[1] != rs[0] {
		utils.ICE("%s: inner dimension mismatch %v and %v", name, ls, rs)
	}
	return Type{
		Kind:       lk,
		FixedPoint: sumFixedPoint(name, lt.FixedPoint, rt.FixedPoint),
		Shape:      b.g.attrs.PushShape([]int{ls[0], rs[1]}),
	}
}

// Input creates an input of the slot index.
func (b *Builder) Input(index int, t Type) graph.Handle {
	if index < 0 {
		utils.ICE("input: negative slot %d", index)
	}
	return push(b.g, &b.g.inputs, OpInput, t, InputOp{
		Type:  t,
		Index: index,
	})
}

// Output writes x to the output slot index.
func (b *Builder) Output(x graph.Handle, index int) graph.Handle {
	b.g.Type(x)
	if index < 0 {
		utils.ICE("output: negative slot %d", index)
	}
	return push(b.g, &b.g.outputs, OpOutput, Type{}, OutputOp{
		Operand: x,
		Index:   index,
	}, x)
}

// Constant creates a public constant.
func (b *Builder) Constant(values []uint64, t Type) graph.Handle {
	if t.Kind != Public {
		utils.ICE("constant: non-public type %v", t.Kind)
	}
	shape := b.g.attrs.Shape(t.Shape)
	if len(values) != graph.NumElements(shape) {
		utils.ICE("constant: %d values for shape %v", len(values), shape)
	}
	return push(b.g, &b.g.constants, OpConstant, t, ConstantOp{
		Type:  t,
		Value: b.g.attrs.PushDense(values),
	})
}

// NegateA negates a secret arithmetic value.
func (b *Builder) NegateA(x graph.Handle) graph.Handle {
	t := b.expect("negate_a", x, SecretArith)
	return push(b.g, &b.g.negateAs, OpNegateA, t,
		NegateAOp{Unary{Type: t, Operand: x}}, x)
}

// NegateP negates a public value.
func (b *Builder) NegateP(x graph.Handle) graph.Handle {
	t := b.expect("negate_p", x, Public)
	return push(b.g, &b.g.negatePs, OpNegateP, t,
		NegatePOp{Unary{Type: t, Operand: x}}, x)
}

// Inverse computes the fixed-point reciprocal of a public value.
func (b *Builder) Inverse(x graph.Handle) graph.Handle {
	t := b.expect("inverse", x, Public)
	return push(b.g, &b.g.inverses, OpInverse, t,
		InverseOp{Unary{Type: t, Operand: x}}, x)
}

func checkTruncate(name string, t Type, bits uint8) Type {
	if bits == 0 {
		utils.ICE("%s: zero bits", name)
	}
	if bits > t.FixedPoint {
		utils.ICE("%s: %d bits exceeds fixed point %d", name, bits,
			t.FixedPoint)
	}
	t.FixedPoint -= bits
	return t
}

// TruncateA rescales a secret arithmetic value by bits.
func (b *Builder) TruncateA(x graph.Handle, bits uint8) graph.Handle {
	t := checkTruncate("truncate_a", b.expect("truncate_a", x, SecretArith),
		bits)
	return push(b.g, &b.g.truncateAs, OpTruncateA, t, TruncateAOp{
		Unary: Unary{Type: t, Operand: x},
		Bits:  bits,
	}, x)
}

// TruncateP rescales a public value by bits.
func (b *Builder) TruncateP(x graph.Handle, bits uint8) graph.Handle {
	t := checkTruncate("truncate_p", b.expect("truncate_p", x, Public),
		bits)
	return push(b.g, &b.g.truncatePs, OpTruncateP, t, TruncatePOp{
		Unary: Unary{Type: t, Operand: x},
		Bits:  bits,
	}, x)
}

// NotB complements a secret bit vector.
func (b *Builder) NotB(x graph.Handle) graph.Handle {
	t := b.expect("not_b", x, SecretBits)
	return push(b.g, &b.g.notBs, OpNotB, t,
		NotBOp{Unary{Type: t, Operand: x}}, x)
}

// BitReverse reverses the bit order of a secret bit vector.
func (b *Builder) BitReverse(x graph.Handle) graph.Handle {
	t := b.expect("bit_reverse", x, SecretBits)
	return push(b.g, &b.g.bitReverses, OpBitReverse, t,
		BitReverseOp{Unary{Type: t, Operand: x}}, x)
}

// ShiftRight shifts a secret bit vector logically right. Zero bits
// return the operand.
func (b *Builder) ShiftRight(x graph.Handle, bits uint8) graph.Handle {
	t := b.expect("shift_right", x, SecretBits)
	if bits == 0 {
		return x
	}
	if bits >= 64 {
		utils.ICE("shift_right: %d bits", bits)
	}
	return push(b.g, &b.g.shiftRights, OpShiftRight, t, ShiftRightOp{
		Unary: Unary{Type: t, Operand: x},
		Bits:  bits,
	}, x)
}

// P2A converts a public value into a secret arithmetic value.
func (b *Builder) P2A(x graph.Handle) graph.Handle {
	t := b.expect("p2a", x, Public)
	t.Kind = SecretArith
	return push(b.g, &b.g.p2as, OpP2A, t,
		P2AOp{Unary{Type: t, Operand: x}}, x)
}

// A2B converts a secret arithmetic value into a secret bit vector.
// The fixed-point scale is dropped.
func (b *Builder) A2B(x graph.Handle) graph.Handle {
	t := b.expect("a2b", x, SecretArith)
	t.Kind = SecretBits
	t.FixedPoint = 0
	return push(b.g, &b.g.a2bs, OpA2B, t,
		A2BOp{Unary{Type: t, Operand: x}}, x)
}

// B2A converts a secret bit vector into a secret arithmetic value of
// the scale fixedPoint.
func (b *Builder) B2A(x graph.Handle, fixedPoint uint8) graph.Handle {
	t := b.expect("b2a", x, SecretBits)
	t.Kind = SecretArith
	t.FixedPoint = fixedPoint
	return push(b.g, &b.g.b2as, OpB2A, t,
		B2AOp{Unary{Type: t, Operand: x}}, x)
}

// Broadcast broadcasts x into shape. Operand axis i maps to result
// axis dims[i] and must have the result size or size 1.
func (b *Builder) Broadcast(x graph.Handle, dims, shape []int) graph.Handle {
	t := b.g.Type(x)
	in := b.g.attrs.Shape(t.Shape)
	CheckBroadcast(in, dims, shape)
	t.Shape = b.g.attrs.PushShape(shape)
	return push(b.g, &b.g.broadcasts, OpBroadcast, t, BroadcastOp{
		Unary: Unary{Type: t, Operand: x},
		Dims:  b.g.attrs.PushSizes(dims),
	}, x)
}

// Reshape changes the shape of x keeping the element count.
func (b *Builder) Reshape(x graph.Handle, shape []int) graph.Handle {
	t := b.g.Type(x)
	in := b.g.attrs.Shape(t.Shape)
	if graph.NumElements(in) != graph.NumElements(shape) {
		utils.ICE("reshape: %v to %v", in, shape)
	}
	t.Shape = b.g.attrs.PushShape(shape)
	return push(b.g, &b.g.reshapes, OpReshape, t,
		ReshapeOp{Unary{Type: t, Operand: x}}, x)
}

// CheckBroadcast checks that dims maps the operand shape in into
// shape. The dims must be strictly increasing result axes and each
// operand axis must have the result size or size 1.
func CheckBroadcast(in, dims, shape []int) {
	if len(dims) != len(in) {
		utils.ICE("broadcast: %d dims for rank %d", len(dims), len(in))
	}
	for i, d := range dims {
		if d < 0 || d >= len(shape) || (i > 0 && d <= dims[i-1]) {
			utils.ICE("broadcast: invalid dims %v for shape %v", dims, shape)
		}
		if in[i] != shape[d] && in[i] != 1 {
			utils.ICE("broadcast: axis %d size %d to %d", i, in[i], shape[d])
		}
	}
}

// SliceShape checks slice bounds against the shape in and returns
// the result shape.
func SliceShape(in, start, end, strides []int) []int {
	if len(start) != len(in) || len(end) != len(in) ||
		len(strides) != len(in) {
		utils.ICE("slice: bounds %v:%v:%v for shape %v",
			start, end, strides, in)
	}
	shape := make([]int, len(in))
	for i := range in {
		if strides[i] < 1 {
			utils.ICE("slice: non-positive stride %d", strides[i])
		}
		if start[i] < 0 || start[i] > end[i] || end[i] > in[i] {
			utils.ICE("slice: axis %d range [%d:%d] of %d",
				i, start[i], end[i], in[i])
		}
		shape[i] = (end[i] - start[i] + strides[i] - 1) / strides[i]
	}
	return shape
}

// UnitStrides returns strides of one for a rank.
func UnitStrides(rank int) []int {
	strides := make([]int, rank)
	for i := range strides {
		strides[i] = 1
	}
	return strides
}

// Slice selects the strided range [start, end) of x. A nil strides
// selects unit strides.
func (b *Builder) Slice(x graph.Handle, start, end, strides []int) graph.Handle {
	t := b.g.Type(x)
	in := b.g.attrs.Shape(t.Shape)
	if strides == nil {
		strides = UnitStrides(len(in))
	}
	t.Shape = b.g.attrs.PushShape(SliceShape(in, start, end, strides))
	return push(b.g, &b.g.slices, OpSlice, t, SliceOp{
		Unary:   Unary{Type: t, Operand: x},
		Start:   b.g.attrs.PushSizes(start),
		End:     b.g.attrs.PushSizes(end),
		Strides: b.g.attrs.PushSizes(strides),
	}, x)
}

// TransposeShape checks the permutation and returns the result
// shape.
func TransposeShape(in, perm []int) []int {
	if len(perm) != len(in) {
		utils.ICE("transpose: perm %v for shape %v", perm, in)
	}
	shape := make([]int, len(in))
	seen := make([]bool, len(in))
	for i, p := range perm {
		if p < 0 || p >= len(in) || seen[p] {
			utils.ICE("transpose: invalid permutation %v", perm)
		}
		seen[p] = true
		shape[p] = in[i]
	}
	return shape
}

// Transpose moves axis i of x to the result axis perm[i].
func (b *Builder) Transpose(x graph.Handle, perm []int) graph.Handle {
	t := b.g.Type(x)
	t.Shape = b.g.attrs.PushShape(
		TransposeShape(b.g.attrs.Shape(t.Shape), perm))
	return push(b.g, &b.g.transposes, OpTranspose, t, TransposeOp{
		Unary: Unary{Type: t, Operand: x},
		Perm:  b.g.attrs.PushSizes(perm),
	}, x)
}

// AddAA adds two secret arithmetic values.
func (b *Builder) AddAA(l, r graph.Handle) graph.Handle {
	t := b.additive("add_aa", l, r, SecretArith, SecretArith)
	return push(b.g, &b.g.addAAs, OpAddAA, t,
		AddAAOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// AddAP adds a public value to a secret arithmetic value.
func (b *Builder) AddAP(l, r graph.Handle) graph.Handle {
	t := b.additive("add_ap", l, r, SecretArith, Public)
	return push(b.g, &b.g.addAPs, OpAddAP, t,
		AddAPOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// AddPP adds two public values.
func (b *Builder) AddPP(l, r graph.Handle) graph.Handle {
	t := b.additive("add_pp", l, r, Public, Public)
	return push(b.g, &b.g.addPPs, OpAddPP, t,
		AddPPOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// MultiplyAA multiplies two secret arithmetic values. The result
// scale is the sum of the operand scales.
func (b *Builder) MultiplyAA(l, r graph.Handle) graph.Handle {
	t := b.multiplicative("multiply_aa", l, r, SecretArith, SecretArith)
	return push(b.g, &b.g.mulAAs, OpMultiplyAA, t,
		MultiplyAAOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// MultiplyAP multiplies a secret arithmetic value by a public value.
func (b *Builder) MultiplyAP(l, r graph.Handle) graph.Handle {
	t := b.multiplicative("multiply_ap", l, r, SecretArith, Public)
	return push(b.g, &b.g.mulAPs, OpMultiplyAP, t,
		MultiplyAPOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// MultiplyPP multiplies two public values.
func (b *Builder) MultiplyPP(l, r graph.Handle) graph.Handle {
	t := b.multiplicative("multiply_pp", l, r, Public, Public)
	return push(b.g, &b.g.mulPPs, OpMultiplyPP, t,
		MultiplyPPOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// XorBB computes the exclusive or of two secret bit vectors.
func (b *Builder) XorBB(l, r graph.Handle) graph.Handle {
	t, _ := b.binary("xor_bb", l, r, SecretBits, SecretBits)
	return push(b.g, &b.g.xorBBs, OpXorBB, t,
		XorBBOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// AndBB computes the conjunction of two secret bit vectors.
func (b *Builder) AndBB(l, r graph.Handle) graph.Handle {
	t, _ := b.binary("and_bb", l, r, SecretBits, SecretBits)
	return push(b.g, &b.g.andBBs, OpAndBB, t,
		AndBBOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// DotAA computes the matrix product of two secret arithmetic values.
func (b *Builder) DotAA(l, r graph.Handle) graph.Handle {
	t := b.dot("dot_aa", l, r, SecretArith, SecretArith)
	return push(b.g, &b.g.dotAAs, OpDotAA, t,
		DotAAOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// DotAP computes the matrix product of a secret arithmetic value
// and a public value.
func (b *Builder) DotAP(l, r graph.Handle) graph.Handle {
	t := b.dot("dot_ap", l, r, SecretArith, Public)
	return push(b.g, &b.g.dotAPs, OpDotAP, t,
		DotAPOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// DotPP computes the matrix product of two public values.
func (b *Builder) DotPP(l, r graph.Handle) graph.Handle {
	t := b.dot("dot_pp", l, r, Public, Public)
	return push(b.g, &b.g.dotPPs, OpDotPP, t,
		DotPPOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// ConcatShape checks the operand shapes and returns the shape of
// their concatenation along dim.
func ConcatShape(dim int, shapes ...[]int) []int {
	if len(shapes) == 0 {
		utils.ICE("concat: no operands")
	}
	result := slices.Clone(shapes[0])
	if dim < 0 || dim >= len(result) {
		utils.ICE("concat: axis %d for rank %d", dim, len(result))
	}
	for _, s := range shapes[1:] {
		if len(s) != len(result) {
			utils.ICE("concat: rank mismatch %v and %v", shapes[0], s)
		}
		for i := range s {
			if i == dim {
				result[i] += s[i]
			} else if s[i] != result[i] {
				utils.ICE("concat: axis %d mismatch %v and %v",
					i, shapes[0], s)
			}
		}
	}
	return result
}

// Concat concatenates xs along the axis dim.
func (b *Builder) Concat(dim int, xs ...graph.Handle) graph.Handle {
	if len(xs) == 0 {
		utils.ICE("concat: no operands")
	}
	t := b.g.Type(xs[0])
	var shapes [][]int
	for _, x := range xs {
		xt := b.g.Type(x)
		if xt.Kind != t.Kind || xt.FixedPoint != t.FixedPoint {
			utils.ICE("concat: operand %v type mismatch", x)
		}
		shapes = append(shapes, b.g.attrs.Shape(xt.Shape))
	}
	t.Shape = b.g.attrs.PushShape(ConcatShape(dim, shapes...))
	return push(b.g, &b.g.concats, OpConcat, t, ConcatOp{
		Type:     t,
		Operands: slices.Clone(xs),
		Dim:      dim,
	}, xs...)
}
