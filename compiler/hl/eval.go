//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/tensor"
)

// Evaluation errors.
var (
	ErrMissingInput       = errors.New("missing input")
	ErrInputShape         = errors.New("input shape mismatch")
	ErrInconsistentOutput = errors.New("inconsistent output")
)

// Evaluate runs the graph on plaintext inputs and returns the output
// slot values. Secret values are evaluated as their plaintext.
func Evaluate(g *Graph, inputs map[int]*tensor.Tensor) (
	map[int]*tensor.Tensor, error) {

	e := &evaluator{
		g:       g,
		inputs:  inputs,
		values:  make([]*tensor.Tensor, g.Len()),
		outputs: make(map[int]*tensor.Tensor),
	}
	for i := 0; i < g.Len() && e.err == nil; i++ {
		g.Visit(graph.Handle(i), e)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.outputs, nil
}

type evaluator struct {
	g       *Graph
	inputs  map[int]*tensor.Tensor
	values  []*tensor.Tensor
	outputs map[int]*tensor.Tensor
	err     error
}

func (e *evaluator) v(h graph.Handle) *tensor.Tensor {
	return e.values[h]
}

func (e *evaluator) sizes(ref graph.SizesRef) []int {
	return e.g.attrs.Sizes(ref)
}

func (e *evaluator) Input(h graph.Handle, op InputOp) {
	in, ok := e.inputs[op.Index]
	if !ok {
		e.err = errors.Wrapf(ErrMissingInput, "slot %d", op.Index)
		return
	}
	shape := e.g.attrs.Shape(op.Type.Shape)
	if !slices.Equal(in.Shape, shape) {
		e.err = errors.Wrapf(ErrInputShape, "slot %d: got %v, expected %v",
			op.Index, in.Shape, shape)
		return
	}
	e.values[h] = in
}

func (e *evaluator) Output(h graph.Handle, op OutputOp) {
	v := e.v(op.Operand)
	prev, ok := e.outputs[op.Index]
	if ok && !prev.Equal(v) {
		e.err = errors.Wrapf(ErrInconsistentOutput, "slot %d: %v and %v",
			op.Index, prev, v)
		return
	}
	e.outputs[op.Index] = v
}

func (e *evaluator) Constant(h graph.Handle, op ConstantOp) {
	e.values[h] = tensor.New(e.g.attrs.Shape(op.Type.Shape),
		slices.Clone(e.g.attrs.Dense(op.Value)))
}

func (e *evaluator) NegateA(h graph.Handle, op NegateAOp) {
	e.values[h] = e.v(op.Operand).Neg()
}

func (e *evaluator) NegateP(h graph.Handle, op NegatePOp) {
	e.values[h] = e.v(op.Operand).Neg()
}

func (e *evaluator) Inverse(h graph.Handle, op InverseOp) {
	e.values[h] = e.v(op.Operand).Inverse(int64(1) << op.Type.FixedPoint)
}

func (e *evaluator) TruncateA(h graph.Handle, op TruncateAOp) {
	e.values[h] = e.v(op.Operand).AShiftRight(uint(op.Bits))
}

func (e *evaluator) TruncateP(h graph.Handle, op TruncatePOp) {
	e.values[h] = e.v(op.Operand).AShiftRight(uint(op.Bits))
}

func (e *evaluator) NotB(h graph.Handle, op NotBOp) {
	e.values[h] = e.v(op.Operand).Not()
}

func (e *evaluator) BitReverse(h graph.Handle, op BitReverseOp) {
	e.values[h] = e.v(op.Operand).BitReverse()
}

func (e *evaluator) ShiftRight(h graph.Handle, op ShiftRightOp) {
	e.values[h] = e.v(op.Operand).LShiftRight(uint(op.Bits))
}

func (e *evaluator) P2A(h graph.Handle, op P2AOp) {
	e.values[h] = e.v(op.Operand)
}

func (e *evaluator) A2B(h graph.Handle, op A2BOp) {
	e.values[h] = e.v(op.Operand)
}

func (e *evaluator) B2A(h graph.Handle, op B2AOp) {
	e.values[h] = e.v(op.Operand)
}

func (e *evaluator) Broadcast(h graph.Handle, op BroadcastOp) {
	e.values[h] = e.v(op.Operand).Broadcast(e.sizes(op.Dims),
		e.g.attrs.Shape(op.Type.Shape))
}

func (e *evaluator) Reshape(h graph.Handle, op ReshapeOp) {
	e.values[h] = e.v(op.Operand).Reshape(e.g.attrs.Shape(op.Type.Shape))
}

func (e *evaluator) Slice(h graph.Handle, op SliceOp) {
	e.values[h] = e.v(op.Operand).Slice(e.sizes(op.Start), e.sizes(op.End),
		e.sizes(op.Strides))
}

func (e *evaluator) Transpose(h graph.Handle, op TransposeOp) {
	e.values[h] = e.v(op.Operand).Transpose(e.sizes(op.Perm))
}

func (e *evaluator) AddAA(h graph.Handle, op AddAAOp) {
	e.values[h] = tensor.Add(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) AddAP(h graph.Handle, op AddAPOp) {
	e.values[h] = tensor.Add(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) AddPP(h graph.Handle, op AddPPOp) {
	e.values[h] = tensor.Add(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) MultiplyAA(h graph.Handle, op MultiplyAAOp) {
	e.values[h] = tensor.Mul(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) MultiplyAP(h graph.Handle, op MultiplyAPOp) {
	e.values[h] = tensor.Mul(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) MultiplyPP(h graph.Handle, op MultiplyPPOp) {
	e.values[h] = tensor.Mul(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) XorBB(h graph.Handle, op XorBBOp) {
	e.values[h] = tensor.Xor(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) AndBB(h graph.Handle, op AndBBOp) {
	e.values[h] = tensor.And(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) DotAA(h graph.Handle, op DotAAOp) {
	e.values[h] = tensor.Matmul(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) DotAP(h graph.Handle, op DotAPOp) {
	e.values[h] = tensor.Matmul(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) DotPP(h graph.Handle, op DotPPOp) {
	e.values[h] = tensor.Matmul(e.v(op.Left), e.v(op.Right))
}

func (e *evaluator) Concat(h graph.Handle, op ConcatOp) {
	var ts []*tensor.Tensor
	for _, x := range op.Operands {
		ts = append(ts, e.v(x))
	}
	e.values[h] = tensor.Concat(op.Dim, ts...)
}
