//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package local

import (
	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Builder creates operations into a per-party graph. Operands must
// live on the same party as the operation except for casts.
type Builder struct {
	g        *Graph
	counters [NumParties]uint64
}

// NewBuilder creates a builder for the graph g.
func NewBuilder(g *Graph) *Builder {
	return &Builder{
		g: g,
	}
}

// Graph returns the graph of the builder.
func (b *Builder) Graph() *Graph {
	return b.g
}

// TypeOf creates a type with an interned shape.
func (b *Builder) TypeOf(holder int, shape []int) Type {
	if holder < 0 || holder >= NumParties {
		utils.ICE("invalid holder p%d", holder)
	}
	return Type{
		Holder: uint8(holder),
		Shape:  b.g.attrs.PushShape(shape),
	}
}

// Counter returns the next randomness seed of the pair.
func (b *Builder) Counter(pair Pair) uint64 {
	return b.counters[pair.Index()]
}

func (b *Builder) binary(name string, l, r graph.Handle) Type {
	lt := b.g.Type(l)
	rt := b.g.Type(r)
	if lt.Holder != rt.Holder {
		utils.ICE("%s: operands on p%d and p%d", name, lt.Holder, rt.Holder)
	}
	if lt.Shape != rt.Shape {
		utils.ICE("%s: shape mismatch %v and %v", name,
			b.g.attrs.Shape(lt.Shape), b.g.attrs.Shape(rt.Shape))
	}
	return lt
}

// Input reads the share tuple of the input slot index on the party
// of t.
func (b *Builder) Input(index, tuple int, t Type) graph.Handle {
	if index < 0 || tuple < 0 || tuple >= NumParties {
		utils.ICE("input: invalid slot %d tuple %d", index, tuple)
	}
	return push(b.g, &b.g.inputs, OpInput, t, InputOp{
		Type:  t,
		Index: index,
		Tuple: tuple,
	})
}

// Output writes x as the share tuple of the output slot index.
func (b *Builder) Output(x graph.Handle, index, tuple int) graph.Handle {
	t := b.g.Type(x)
	if index < 0 || tuple < 0 || tuple >= NumParties {
		utils.ICE("output: invalid slot %d tuple %d", index, tuple)
	}
	return push(b.g, &b.g.outputs, OpOutput, t, OutputOp{
		Operand: x,
		Index:   index,
		Tuple:   tuple,
	}, x)
}

// Constant creates a constant on the party of t.
func (b *Builder) Constant(values []uint64, t Type) graph.Handle {
	shape := b.g.attrs.Shape(t.Shape)
	if len(values) != graph.NumElements(shape) {
		utils.ICE("constant: %d values for shape %v", len(values), shape)
	}
	return push(b.g, &b.g.constants, OpConstant, t, ConstantOp{
		Type:  t,
		Value: b.g.attrs.PushDense(values),
	})
}

// Zeros creates a zero constant on the holder.
func (b *Builder) Zeros(holder int, shape []int) graph.Handle {
	return b.Constant(make([]uint64, graph.NumElements(shape)),
		b.TypeOf(holder, shape))
}

// Random draws correlated randomness of the shape for the parties p
// and q. It returns the handles on p and q, in that order, which
// evaluate to identical values. Every draw advances the counter of
// the pair by the element count.
func (b *Builder) Random(p, q int, shape []int) (graph.Handle, graph.Handle) {
	pair := NewPair(p, q)
	ref := b.g.attrs.PushShape(shape)
	seed := b.counters[pair.Index()]
	b.counters[pair.Index()] += uint64(graph.NumElements(shape))

	lo := push(b.g, &b.g.randoms, OpRandom, Type{Holder: pair.P, Shape: ref},
		RandomOp{
			Type: Type{Holder: pair.P, Shape: ref},
			Pair: pair,
			Seed: seed,
		})
	hi := push(b.g, &b.g.randoms, OpRandom, Type{Holder: pair.Q, Shape: ref},
		RandomOp{
			Type: Type{Holder: pair.Q, Shape: ref},
			Pair: pair,
			Seed: seed,
		})
	if p > q {
		return hi, lo
	}
	return lo, hi
}

// Cast sends x to the party holder.
func (b *Builder) Cast(x graph.Handle, holder int) graph.Handle {
	t := b.g.Type(x)
	if int(t.Holder) == holder {
		utils.ICE("cast: %v already on p%d", x, holder)
	}
	rt := b.TypeOf(holder, b.g.attrs.Shape(t.Shape))
	return push(b.g, &b.g.casts, OpCast, rt,
		CastOp{Unary{Type: rt, Operand: x}}, x)
}

// Negate negates x.
func (b *Builder) Negate(x graph.Handle) graph.Handle {
	t := b.g.Type(x)
	return push(b.g, &b.g.negates, OpNegate, t,
		NegateOp{Unary{Type: t, Operand: x}}, x)
}

// Not complements x.
func (b *Builder) Not(x graph.Handle) graph.Handle {
	t := b.g.Type(x)
	return push(b.g, &b.g.nots, OpNot, t,
		NotOp{Unary{Type: t, Operand: x}}, x)
}

// BitReverse reverses the bit order of x.
func (b *Builder) BitReverse(x graph.Handle) graph.Handle {
	t := b.g.Type(x)
	return push(b.g, &b.g.bitReverses, OpBitReverse, t,
		BitReverseOp{Unary{Type: t, Operand: x}}, x)
}

func (b *Builder) shift(name string, x graph.Handle, bits uint8) Shift {
	if bits >= 64 {
		utils.ICE("%s: %d bits", name, bits)
	}
	return Shift{
		Unary: Unary{Type: b.g.Type(x), Operand: x},
		Bits:  bits,
	}
}

// AShiftRight shifts x arithmetically right.
func (b *Builder) AShiftRight(x graph.Handle, bits uint8) graph.Handle {
	op := AShiftRightOp{b.shift(OpAShiftRight.String(), x, bits)}
	return push(b.g, &b.g.ashiftRights, OpAShiftRight, op.Type, op, x)
}

// LShiftRight shifts x logically right.
func (b *Builder) LShiftRight(x graph.Handle, bits uint8) graph.Handle {
	op := LShiftRightOp{b.shift(OpLShiftRight.String(), x, bits)}
	return push(b.g, &b.g.lshiftRights, OpLShiftRight, op.Type, op, x)
}

// ShiftLeft shifts x left.
func (b *Builder) ShiftLeft(x graph.Handle, bits uint8) graph.Handle {
	op := ShiftLeftOp{b.shift(OpShiftLeft.String(), x, bits)}
	return push(b.g, &b.g.shiftLefts, OpShiftLeft, op.Type, op, x)
}

// Inverse computes the fixed-point reciprocal of x at the scale
// fixedPoint.
func (b *Builder) Inverse(x graph.Handle, fixedPoint uint8) graph.Handle {
	if fixedPoint >= 32 {
		utils.ICE("inverse: fixed point %d", fixedPoint)
	}
	t := b.g.Type(x)
	return push(b.g, &b.g.inverses, OpInverse, t, InverseOp{
		Unary:      Unary{Type: t, Operand: x},
		FixedPoint: fixedPoint,
	}, x)
}

// Broadcast broadcasts x into shape. Operand axis i maps to result
// axis dims[i].
func (b *Builder) Broadcast(x graph.Handle, dims, shape []int) graph.Handle {
	t := b.g.Type(x)
	in := b.g.attrs.Shape(t.Shape)
	hl.CheckBroadcast(in, dims, shape)
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

// Slice selects the strided range [start, end) of x.
func (b *Builder) Slice(x graph.Handle, start, end, strides []int) graph.Handle {
	t := b.g.Type(x)
	in := b.g.attrs.Shape(t.Shape)
	if strides == nil {
		strides = hl.UnitStrides(len(in))
	}
	t.Shape = b.g.attrs.PushShape(hl.SliceShape(in, start, end, strides))
	return push(b.g, &b.g.slices, OpSlice, t, SliceOp{
		Unary:   Unary{Type: t, Operand: x},
		Start:   b.g.attrs.PushSizes(start),
		End:     b.g.attrs.PushSizes(end),
		Strides: b.g.attrs.PushSizes(strides),
	}, x)
}

// Transpose moves axis i of x to the result axis perm[i].
func (b *Builder) Transpose(x graph.Handle, perm []int) graph.Handle {
	t := b.g.Type(x)
	t.Shape = b.g.attrs.PushShape(
		hl.TransposeShape(b.g.attrs.Shape(t.Shape), perm))
	return push(b.g, &b.g.transposes, OpTranspose, t, TransposeOp{
		Unary: Unary{Type: t, Operand: x},
		Perm:  b.g.attrs.PushSizes(perm),
	}, x)
}

// Add computes l+r.
func (b *Builder) Add(l, r graph.Handle) graph.Handle {
	t := b.binary(OpAdd.String(), l, r)
	return push(b.g, &b.g.adds, OpAdd, t,
		AddOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// Subtract computes l-r.
func (b *Builder) Subtract(l, r graph.Handle) graph.Handle {
	t := b.binary(OpSubtract.String(), l, r)
	return push(b.g, &b.g.subtracts, OpSubtract, t,
		SubtractOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// Multiply computes the elementwise product l*r.
func (b *Builder) Multiply(l, r graph.Handle) graph.Handle {
	t := b.binary(OpMultiply.String(), l, r)
	return push(b.g, &b.g.multiplies, OpMultiply, t,
		MultiplyOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// Xor computes l^r.
func (b *Builder) Xor(l, r graph.Handle) graph.Handle {
	t := b.binary(OpXor.String(), l, r)
	return push(b.g, &b.g.xors, OpXor, t,
		XorOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// And computes l&r.
func (b *Builder) And(l, r graph.Handle) graph.Handle {
	t := b.binary(OpAnd.String(), l, r)
	return push(b.g, &b.g.ands, OpAnd, t,
		AndOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// Matmul computes the matrix product of the rank-2 values l and r.
func (b *Builder) Matmul(l, r graph.Handle) graph.Handle {
	lt := b.g.Type(l)
	rt := b.g.Type(r)
	if lt.Holder != rt.Holder {
		utils.ICE("matmul: operands on p%d and p%d", lt.Holder, rt.Holder)
	}
	ls := b.g.attrs.Shape(lt.Shape)
	rs := b.g.attrs.Shape(rt.Shape)
	if len(ls) != 2 || len(rs) != 2 || ls[1] != rs[0] {
		utils.ICE("matmul: shapes %v and %v", ls, rs)
	}
	t := b.TypeOf(int(lt.Holder), []int{ls[0], rs[1]})
	return push(b.g, &b.g.matmuls, OpMatmul, t,
		MatmulOp{Binary{Type: t, Left: l, Right: r}}, l, r)
}

// Concat concatenates xs along axis dim.
func (b *Builder) Concat(dim int, xs ...graph.Handle) graph.Handle {
	if len(xs) == 0 {
		utils.ICE("concat: no operands")
	}
	holder := b.g.Type(xs[0]).Holder
	shapes := make([][]int, len(xs))
	for i, x := range xs {
		t := b.g.Type(x)
		if t.Holder != holder {
			utils.ICE("concat: operands on p%d and p%d", holder, t.Holder)
		}
		shapes[i] = b.g.attrs.Shape(t.Shape)
	}
	t := b.TypeOf(int(holder), hl.ConcatShape(dim, shapes...))
	return push(b.g, &b.g.concats, OpConcat, t, ConcatOp{
		Type:     t,
		Operands: append([]graph.Handle(nil), xs...),
		Dim:      dim,
	}, xs...)
}
