//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package local

import (
	"fmt"

	"github.com/markkurossi/rep3/compiler/graph"
)

// OpKind enumerates the closed set of per-party operations.
type OpKind uint8

// Per-party operation kinds.
const (
	OpInput OpKind = iota
	OpOutput
	OpConstant
	OpRandom
	OpCast
	OpNegate
	OpNot
	OpBitReverse
	OpAShiftRight
	OpLShiftRight
	OpShiftLeft
	OpInverse
	OpBroadcast
	OpReshape
	OpSlice
	OpTranspose
	OpAdd
	OpSubtract
	OpMultiply
	OpXor
	OpAnd
	OpMatmul
	OpConcat
	numOpKinds
)

var opNames = [numOpKinds]string{
	OpInput:       "input",
	OpOutput:      "output",
	OpConstant:    "constant",
	OpRandom:      "random",
	OpCast:        "cast",
	OpNegate:      "negate",
	OpNot:         "not",
	OpBitReverse:  "bit_reverse",
	OpAShiftRight: "ashr",
	OpLShiftRight: "lshr",
	OpShiftLeft:   "shl",
	OpInverse:     "inverse",
	OpBroadcast:   "broadcast",
	OpReshape:     "reshape",
	OpSlice:       "slice",
	OpTranspose:   "transpose",
	OpAdd:         "add",
	OpSubtract:    "subtract",
	OpMultiply:    "multiply",
	OpXor:         "xor",
	OpAnd:         "and",
	OpMatmul:      "matmul",
	OpConcat:      "concat",
}

// OpKinds returns all operation kinds in order.
func OpKinds() []OpKind {
	result := make([]OpKind, numOpKinds)
	for i := range result {
		result[i] = OpKind(i)
	}
	return result
}

func (k OpKind) String() string {
	if k < numOpKinds {
		return opNames[k]
	}
	return fmt.Sprintf("{OpKind %d}", k)
}

// InputOp reads the share tuple Tuple of the input slot Index.
type InputOp struct {
	Type  Type
	Index int
	Tuple int
}

// OutputOp writes Operand as the share tuple Tuple of the output
// slot Index.
type OutputOp struct {
	Operand graph.Handle
	Index   int
	Tuple   int
}

// ConstantOp is a constant tensor.
type ConstantOp struct {
	Type  Type
	Value graph.DenseRef
}

// RandomOp draws correlated randomness of the party pair. The two
// random operations of one draw share Pair and Seed and evaluate to
// identical values.
type RandomOp struct {
	Type Type
	Pair Pair
	Seed uint64
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

// Shift holds the fields of shift operations.
type Shift struct {
	Unary
	Bits uint8
}

// Unary operations.
type (
	CastOp       struct{ Unary }
	NegateOp     struct{ Unary }
	NotOp        struct{ Unary }
	BitReverseOp struct{ Unary }
	ReshapeOp    struct{ Unary }
)

// Shift operations.
type (
	AShiftRightOp struct{ Shift }
	LShiftRightOp struct{ Shift }
	ShiftLeftOp   struct{ Shift }
)

// InverseOp computes the fixed-point reciprocal at the scale
// FixedPoint.
type InverseOp struct {
	Unary
	FixedPoint uint8
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
	AddOp      struct{ Binary }
	SubtractOp struct{ Binary }
	MultiplyOp struct{ Binary }
	XorOp      struct{ Binary }
	AndOp      struct{ Binary }
	MatmulOp   struct{ Binary }
)

// ConcatOp concatenates its operands along axis Dim.
type ConcatOp struct {
	Type     Type
	Operands []graph.Handle
	Dim      int
}

// Visitor receives the concretely typed operation of a handle.
type Visitor interface {
	Input(h graph.Handle, op InputOp)
	Output(h graph.Handle, op OutputOp)
	Constant(h graph.Handle, op ConstantOp)
	Random(h graph.Handle, op RandomOp)
	Cast(h graph.Handle, op CastOp)
	Negate(h graph.Handle, op NegateOp)
	Not(h graph.Handle, op NotOp)
	BitReverse(h graph.Handle, op BitReverseOp)
	AShiftRight(h graph.Handle, op AShiftRightOp)
	LShiftRight(h graph.Handle, op LShiftRightOp)
	ShiftLeft(h graph.Handle, op ShiftLeftOp)
	Inverse(h graph.Handle, op InverseOp)
	Broadcast(h graph.Handle, op BroadcastOp)
	Reshape(h graph.Handle, op ReshapeOp)
	Slice(h graph.Handle, op SliceOp)
	Transpose(h graph.Handle, op TransposeOp)
	Add(h graph.Handle, op AddOp)
	Subtract(h graph.Handle, op SubtractOp)
	Multiply(h graph.Handle, op MultiplyOp)
	Xor(h graph.Handle, op XorOp)
	And(h graph.Handle, op AndOp)
	Matmul(h graph.Handle, op MatmulOp)
	Concat(h graph.Handle, op ConcatOp)
}
