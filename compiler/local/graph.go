//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package local implements the per-party dialect. Every value lives
// on exactly one party and all operations are local except casts,
// which move a value between parties.
package local

import (
	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Graph holds a per-party operation graph.
type Graph struct {
	attrs graph.Attrs
	nodes graph.Nodes[OpKind]
	types []Type

	inputs       []InputOp
	outputs      []OutputOp
	constants    []ConstantOp
	randoms      []RandomOp
	casts        []CastOp
	negates      []NegateOp
	nots         []NotOp
	bitReverses  []BitReverseOp
	ashiftRights []AShiftRightOp
	lshiftRights []LShiftRightOp
	shiftLefts   []ShiftLeftOp
	inverses     []InverseOp
	broadcasts   []BroadcastOp
	reshapes     []ReshapeOp
	slices       []SliceOp
	transposes   []TransposeOp
	adds         []AddOp
	subtracts    []SubtractOp
	multiplies   []MultiplyOp
	xors         []XorOp
	ands         []AndOp
	matmuls      []MatmulOp
	concats      []ConcatOp
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

// Type returns the result type of the operation h.
func (g *Graph) Type(h graph.Handle) Type {
	if g.nodes.Node(h).Kind == OpOutput {
		utils.ICE("%v: output has no result type", h)
	}
	return g.types[h]
}

// Holder returns the party executing the operation h. Outputs are
// executed by the holder of their operand and casts by the receiving
// party.
func (g *Graph) Holder(h graph.Handle) int {
	g.nodes.Node(h)
	return int(g.types[h].Holder)
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
	case OpRandom:
		v.Random(h, g.randoms[off])
	case OpCast:
		v.Cast(h, g.casts[off])
	case OpNegate:
		v.Negate(h, g.negates[off])
	case OpNot:
		v.Not(h, g.nots[off])
	case OpBitReverse:
		v.BitReverse(h, g.bitReverses[off])
	case OpAShiftRight:
		v.AShiftRight(h, g.ashiftRights[off])
	case OpLShiftRight:
		v.LShiftRight(h, g.lshiftRights[off])
	case OpShiftLeft:
		v.ShiftLeft(h, g.shiftLefts[off])
	case OpInverse:
		v.Inverse(h, g.inverses[off])
	case OpBroadcast:
		v.Broadcast(h, g.broadcasts[off])
	case OpReshape:
		v.Reshape(h, g.reshapes[off])
	case OpSlice:
		v.Slice(h, g.slices[off])
	case OpTranspose:
		v.Transpose(h, g.transposes[off])
	case OpAdd:
		v.Add(h, g.adds[off])
	case OpSubtract:
		v.Subtract(h, g.subtracts[off])
	case OpMultiply:
		v.Multiply(h, g.multiplies[off])
	case OpXor:
		v.Xor(h, g.xors[off])
	case OpAnd:
		v.And(h, g.ands[off])
	case OpMatmul:
		v.Matmul(h, g.matmuls[off])
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
