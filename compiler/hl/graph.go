//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package hl implements the high-level typed dialect. Values are
// secret arithmetic shares, secret bit vectors, or public tensors of
// 64-bit fixed-point elements.
package hl

import (
	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Graph holds a high-level operation graph. Each operation kind has
// its own storage list and nodes are never modified once created.
type Graph struct {
	attrs graph.Attrs
	nodes graph.Nodes[OpKind]
	types []Type

	inputs      []InputOp
	outputs     []OutputOp
	constants   []ConstantOp
	negateAs    []NegateAOp
	negatePs    []NegatePOp
	inverses    []InverseOp
	truncateAs  []TruncateAOp
	truncatePs  []TruncatePOp
	notBs       []NotBOp
	bitReverses []BitReverseOp
	shiftRights []ShiftRightOp
	p2as        []P2AOp
	a2bs        []A2BOp
	b2as        []B2AOp
	broadcasts  []BroadcastOp
	reshapes    []ReshapeOp
	slices      []SliceOp
	transposes  []TransposeOp
	addAAs      []AddAAOp
	addAPs      []AddAPOp
	addPPs      []AddPPOp
	mulAAs      []MultiplyAAOp
	mulAPs      []MultiplyAPOp
	mulPPs      []MultiplyPPOp
	xorBBs      []XorBBOp
	andBBs      []AndBBOp
	dotAAs      []DotAAOp
	dotAPs      []DotAPOp
	dotPPs      []DotPPOp
	concats     []ConcatOp
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return new(Graph)
}

func push[T any](g *Graph, list *[]T, kind OpKind, t Type, op T,
	operands ...graph.Handle) graph.Handle {

	h := g.nodes.Push(kind, len(*list), operands...)
	*list = append(*list, op)
	g.types = append(g.types, t)
	return h
}

// Attrs returns the attribute tables of the graph.
func (g *Graph) Attrs() *graph.Attrs {
	return &g.attrs
}

// Len returns the number of operations in the graph.
func (g *Graph) Len() int {
	return g.nodes.Len()
}

// Kind returns the operation kind of the handle h.
func (g *Graph) Kind(h graph.Handle) OpKind {
	return g.nodes.Node(h).Kind
}

// Operands returns the operand handles of the operation h.
func (g *Graph) Operands(h graph.Handle) []graph.Handle {
	return g.nodes.Operands(h)
}

// Type returns the result type of the operation h. Outputs have no
// result type.
func (g *Graph) Type(h graph.Handle) Type {
	if g.nodes.Node(h).Kind == OpOutput {
		utils.ICE("%v: output has no result type", h)
	}
	return g.types[h]
}

// Shape returns the result shape of the operation h.
func (g *Graph) Shape(h graph.Handle) []int {
	return g.attrs.Shape(g.Type(h).Shape)
}

// Inputs returns the input operations in creation order.
func (g *Graph) Inputs() []InputOp {
	return g.inputs
}

// Outputs returns the output operations in creation order.
func (g *Graph) Outputs() []OutputOp {
	return g.outputs
}

// Visit calls the visitor method of the operation kind of h.
func (g *Graph) Visit(h graph.Handle, v Visitor) {
	node := g.nodes.Node(h)
	off := node.Offset

	switch node.Kind {
	case OpInput:
		v.Input(h, g.inputs[off])
	case OpOutput:
		v.Output(h, g.outputs[off])
	case OpConstant:
		v.Constant(h, g.constants[off])
	case OpNegateA:
		v.NegateA(h, g.negateAs[off])
	case OpNegateP:
		v.NegateP(h, g.negatePs[off])
	case OpInverse:
		v.Inverse(h, g.inverses[off])
	case OpTruncateA:
		v.TruncateA(h, g.truncateAs[off])
	case OpTruncateP:
		v.TruncateP(h, g.truncatePs[off])
	case OpNotB:
		v.NotB(h, g.notBs[off])
	case OpBitReverse:
		v.BitReverse(h, g.bitReverses[off])
	case OpShiftRight:
		v.ShiftRight(h, g.shiftRights[off])
	case OpP2A:
		v.P2A(h, g.p2as[off])
	case OpA2B:
		v.A2B(h, g.a2bs[off])
	case OpB2A:
		v.B2A(h, g.b2as[off])
	case OpBroadcast:
		v.Broadcast(h, g.broadcasts[off])
	case OpReshape:
		v.Reshape(h, g.reshapes[off])
	case OpSlice:
		v.Slice(h, g.slices[off])
	case OpTranspose:
		v.Transpose(h, g.transposes[off])
	case OpAddAA:
		v.AddAA(h, g.addAAs[off])
	case OpAddAP:
		v.AddAP(h, g.addAPs[off])
	case OpAddPP:
		v.AddPP(h, g.addPPs[off])
	case OpMultiplyAA:
		v.MultiplyAA(h, g.mulAAs[off])
	case OpMultiplyAP:
		v.MultiplyAP(h, g.mulAPs[off])
	case OpMultiplyPP:
		v.MultiplyPP(h, g.mulPPs[off])
	case OpXorBB:
		v.XorBB(h, g.xorBBs[off])
	case OpAndBB:
		v.AndBB(h, g.andBBs[off])
	case OpDotAA:
		v.DotAA(h, g.dotAAs[off])
	case OpDotAP:
		v.DotAP(h, g.dotAPs[off])
	case OpDotPP:
		v.DotPP(h, g.dotPPs[off])
	case OpConcat:
		v.Concat(h, g.concats[off])
	default:
		utils.ICE("%v: unknown operation kind %v", h, node.Kind)
	}
}

// Walk visits all operations in increasing handle order.
func (g *Graph) Walk(v Visitor) {
	for h := 0; h < g.Len(); h++ {
		g.Visit(graph.Handle(h), v)
	}
}
