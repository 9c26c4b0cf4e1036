//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"fmt"

	"github.com/markkurossi/rep3/compiler/graph"
)

// OpKind enumerates the closed set of high-level operations.
type OpKind uint8

// High-level operation kinds.
const (
	OpInput OpKind = iota
	OpOutput
	OpConstant
	OpNegateA
	OpNegateP
	OpInverse
	OpTruncateA
	OpTruncateP
	OpNotB
	OpBitReverse
	OpShiftRight
	OpP2A
	OpA2B
	OpB2A
	OpBroadcast
	OpReshape
	OpSlice
	OpTranspose
	OpAddAA
	OpAddAP
	OpAddPP
	OpMultiplyAA
	OpMultiplyAP
	OpMultiplyPP
	OpXorBB
	OpAndBB
	OpDotAA
	OpDotAP
	OpDotPP
	OpConcat
	numOpKinds
)

var opNames = [numOpKinds]string{
	OpInput:      "input",
	OpOutput:     "output",
	OpConstant:   "constant",
	OpNegateA:    "negate_a",
	OpNegateP:    "negate_p",
	OpInverse:    "inverse",
	OpTruncateA:  "truncate_a",
	OpTruncateP:  "truncate_p",
	OpNotB:       "not_b",
	OpBitReverse: "bit_reverse",
	OpShiftRight: "shift_right",
	OpP2A:        "p2a",
	OpA2B:        "a2b",
	OpB2A:        "b2a",
	OpBroadcast:  "broadcast",
	OpReshape:    "reshape",
	OpSlice:      "slice",
	OpTranspose:  "transpose",
	OpAddAA:      "add_aa",
	OpAddAP:      "add_ap",
	OpAddPP:      "add_pp",
	OpMultiplyAA: "multiply_aa",
	OpMultiplyAP: "multiply_ap",
	OpMultiplyPP: "multiply_pp",
	OpXorBB:      "xor_bb",
	OpAndBB:      "and_bb",
	OpDotAA:      "dot_aa",
	OpDotAP:      "dot_ap",
	OpDotPP:      "dot_pp",
	OpConcat:     "concat",
}

func (k OpKind) String() string {
	if k < numOpKinds {
		return opNames[k]
	}
	return fmt.Sprintf("{OpKind %d}", k)
}

// InputOp reads the input slot Index.
type InputOp struct {
	Type  Type
	Index int
}

// OutputOp writes Operand to the output slot Index. Outputs are graph
// sinks without a result type.
type OutputOp struct {
	Operand graph.Handle
	Index   int
}

// ConstantOp is a public constant tensor.
type ConstantOp struct {
	Type  Type
	Value graph.DenseRef
}

// Unary holds the fields common to single operand operations.
type Unary struct {
	Type    Type
	Operand graph.Handle
}

// Binary holds the fields common to two operand operations.
type Binary struct {
	Type  Type
	Left  graph.Handle
	Right graph.Handle
}

// Unary operations.
type (
	NegateAOp    struct{ Unary }
	NegatePOp    struct{ Unary }
	InverseOp    struct{ Unary }
	NotBOp       struct{ Unary }
	BitReverseOp struct{ Unary }
	P2AOp        struct{ Unary }
	A2BOp        struct{ Unary }
	B2AOp        struct{ Unary }
	ReshapeOp    struct{ Unary }
)

// TruncateAOp rescales a secret fixed-point value by Bits.
type TruncateAOp struct {
	Unary
	Bits uint8
}

// TruncatePOp rescales a public fixed-point value by Bits.
type TruncatePOp struct {
	Unary
	Bits uint8
}

// ShiftRightOp shifts a bit vector logically right by Bits.
type ShiftRightOp struct {
	Unary
	Bits uint8
}

// BroadcastOp maps operand axis i to result axis Dims[i].
type BroadcastOp struct {
	Unary
	Dims graph.SizesRef
}

// SliceOp selects the strided range [Start, End) of the operand.
type SliceOp struct {
	Unary
	Start   graph.SizesRef
	End     graph.SizesRef
	Strides graph.SizesRef
}

// TransposeOp moves operand axis i to result axis Perm[i].
type TransposeOp struct {
	Unary
	Perm graph.SizesRef
}

// Binary operations.
type (
	AddAAOp      struct{ Binary }
	AddAPOp      struct{ Binary }
	AddPPOp      struct{ Binary }
	MultiplyAAOp struct{ Binary }
	MultiplyAPOp struct{ Binary }
	MultiplyPPOp struct{ Binary }
	XorBBOp      struct{ Binary }
	AndBBOp      struct{ Binary }
	DotAAOp      struct{ Binary }
	DotAPOp      struct{ Binary }
	DotPPOp      struct{ Binary }
)

// ConcatOp concatenates its operands along axis Dim.
type ConcatOp struct {
	Type     Type
	Operands []graph.Handle
	Dim      int
}

// Visitor receives the concretely typed operation of a handle. Every
// implementation must handle every operation kind.
type Visitor interface {
	Input(h graph.Handle, op InputOp)
	Output(h graph.Handle, op OutputOp)
	Constant(h graph.Handle, op ConstantOp)
	NegateA(h graph.Handle, op NegateAOp)
	NegateP(h graph.Handle, op NegatePOp)
	Inverse(h graph.Handle, op InverseOp)
	TruncateA(h graph.Handle, op TruncateAOp)
	TruncateP(h graph.Handle, op TruncatePOp)
	NotB(h graph.Handle, op NotBOp)
	BitReverse(h graph.Handle, op BitReverseOp)
	ShiftRight(h graph.Handle, op ShiftRightOp)
	P2A(h graph.Handle, op P2AOp)
	A2B(h graph.Handle, op A2BOp)
	B2A(h graph.Handle, op B2AOp)
	Broadcast(h graph.Handle, op BroadcastOp)
	Reshape(h graph.Handle, op ReshapeOp)
	Slice(h graph.Handle, op SliceOp)
	Transpose(h graph.Handle, op TransposeOp)
	AddAA(h graph.Handle, op AddAAOp)
	AddAP(h graph.Handle, op AddAPOp)
	AddPP(h graph.Handle, op AddPPOp)
	MultiplyAA(h graph.Handle, op MultiplyAAOp)
	MultiplyAP(h graph.Handle, op MultiplyAPOp)
	MultiplyPP(h graph.Handle, op MultiplyPPOp)
	XorBB(h graph.Handle, op XorBBOp)
	AndBB(h graph.Handle, op AndBBOp)
	DotAA(h graph.Handle, op DotAAOp)
	DotAP(h graph.Handle, op DotAPOp)
	DotPP(h graph.Handle, op DotPPOp)
	Concat(h graph.Handle, op ConcatOp)
}
