//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package local

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/tensor"
)

// ErrInconsistentOutput is returned when two parties write different
// values to the same output share tuple.
var ErrInconsistentOutput = hl.ErrInconsistentOutput

// Key identifies a share tuple of an I/O slot.
type Key struct {
	Index int
	Tuple int
}

// Values holds I/O share tuples.
type Values map[Key]*tensor.Tensor

// Merge merges the values o into v. Duplicate keys must have equal
// values.
func (v Values) Merge(o Values) error {
	for k, val := range o {
		prev, ok := v[k]
		if ok && !prev.Equal(val) {
			return errors.Wrapf(ErrInconsistentOutput,
				"slot %d tuple %d: %v and %v", k.Index, k.Tuple, prev, val)
		}
		v[k] = val
	}
	return nil
}

// Source generates correlated randomness. Fill must be a function of
// the pair and seed so that both holders of a draw observe the same
// values.
type Source interface {
	Fill(pair Pair, seed uint64, out []uint64)
}

// Transport moves cast values between parties. Values between a
// directed party pair are delivered in the order they are sent.
type Transport interface {
	Send(to int, v *tensor.Tensor) error
	Receive(from int, shape []int) (*tensor.Tensor, error)
}

// Executor runs a per-party graph on concrete tensors.
type Executor struct {
	Graph     *Graph
	Source    Source
	Transport Transport

	// Party selects the operations of one party. A negative value
	// runs the operations of all parties in one process and casts
	// copy values locally.
	Party int

	values  []*tensor.Tensor
	inputs  Values
	outputs Values
	err     error
}

// NewExecutor creates an executor that runs all parties in one
// process.
func NewExecutor(g *Graph, source Source) *Executor {
	return &Executor{
		Graph:  g,
		Source: source,
		Party:  -1,
	}
}

// NewPartyExecutor creates an executor for the operations of party.
func NewPartyExecutor(g *Graph, party int, source Source,
	transport Transport) *Executor {

	return &Executor{
		Graph:     g,
		Source:    source,
		Transport: transport,
		Party:     party,
	}
}

// Run executes the graph with the input share tuples and returns the
// output share tuples written by the executed parties.
func (e *Executor) Run(inputs Values) (Values, error) {
	if e.Party >= 0 && e.Transport == nil {
		return nil, errors.Newf("p%d: no transport", e.Party)
	}
	e.values = make([]*tensor.Tensor, e.Graph.Len())
	e.inputs = inputs
	e.outputs = make(Values)
	e.err = nil

	for i := 0; i < e.Graph.Len() && e.err == nil; i++ {
		h := graph.Handle(i)
		if !e.executes(h) {
			continue
		}
		e.Graph.Visit(h, e)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.outputs, nil
}

// Value returns the computed value of h. It returns nil for values
// of other parties.
func (e *Executor) Value(h graph.Handle) *tensor.Tensor {
	return e.values[h]
}

func (e *Executor) executes(h graph.Handle) bool {
	if e.Party < 0 || e.Graph.Holder(h) == e.Party {
		return true
	}
	if e.Graph.Kind(h) == OpCast {
		return e.Graph.Holder(e.Graph.Operands(h)[0]) == e.Party
	}
	return false
}

func (e *Executor) v(h graph.Handle) *tensor.Tensor {
	return e.values[h]
}

func (e *Executor) shape(t Type) []int {
	return e.Graph.attrs.Shape(t.Shape)
}

func (e *Executor) sizes(ref graph.SizesRef) []int {
	return e.Graph.attrs.Sizes(ref)
}

func (e *Executor) Input(h graph.Handle, op InputOp) {
	key := Key{
		Index: op.Index,
		Tuple: op.Tuple,
	}
	in, ok := e.inputs[key]
	if !ok {
		e.err = errors.Wrapf(hl.ErrMissingInput, "p%d: slot %d tuple %d",
			op.Type.Holder, op.Index, op.Tuple)
		return
	}
	shape := e.shape(op.Type)
	if !slices.Equal(in.Shape, shape) {
		e.err = errors.Wrapf(hl.ErrInputShape,
			"slot %d tuple %d: got %v, expected %v",
			op.Index, op.Tuple, in.Shape, shape)
		return
	}
	e.values[h] = in
}

func (e *Executor) Output(h graph.Handle, op OutputOp) {
	e.err = e.outputs.Merge(Values{
		Key{Index: op.Index, Tuple: op.Tuple}: e.v(op.Operand),
	})
}

func (e *Executor) Constant(h graph.Handle, op ConstantOp) {
	e.values[h] = tensor.New(e.shape(op.Type),
		slices.Clone(e.Graph.attrs.Dense(op.Value)))
}

func (e *Executor) Random(h graph.Handle, op RandomOp) {
	shape := e.shape(op.Type)
	out := make([]uint64, graph.NumElements(shape))
	e.Source.Fill(op.Pair, op.Seed, out)
	e.values[h] = tensor.New(shape, out)
}

func (e *Executor) Cast(h graph.Handle, op CastOp) {
	if e.Party < 0 {
		e.values[h] = e.v(op.Operand)
		return
	}
	from := e.Graph.Holder(op.Operand)
	to := int(op.Type.Holder)

	if from == e.Party {
		if err := e.Transport.Send(to, e.v(op.Operand)); err != nil {
			e.err = errors.Wrapf(err, "%v: p%d->p%d", h, from, to)
		}
		return
	}
	v, err := e.Transport.Receive(from, e.shape(op.Type))
	if err != nil {
		e.err = errors.Wrapf(err, "%v: p%d->p%d", h, from, to)
		return
	}
	e.values[h] = v
}

func (e *Executor) Negate(h graph.Handle, op NegateOp) {
	e.values[h] = e.v(op.Operand).Neg()
}

func (e *Executor) Not(h graph.Handle, op NotOp) {
	e.values[h] = e.v(op.Operand).Not()
}

func (e *Executor) BitReverse(h graph.Handle, op BitReverseOp) {
	e.values[h] = e.v(op.Operand).BitReverse()
}

func (e *Executor) AShiftRight(h graph.Handle, op AShiftRightOp) {
	e.values[h] = e.v(op.Operand).AShiftRight(uint(op.Bits))
}

func (e *Executor) LShiftRight(h graph.Handle, op LShiftRightOp) {
	e.values[h] = e.v(op.Operand).LShiftRight(uint(op.Bits))
}

func (e *Executor) ShiftLeft(h graph.Handle, op ShiftLeftOp) {
	e.values[h] = e.v(op.Operand).ShiftLeft(uint(op.Bits))
}

func (e *Executor) Inverse(h graph.Handle, op InverseOp) {
	e.values[h] = e.v(op.Operand).Inverse(int64(1) << op.FixedPoint)
}

func (e *Executor) Broadcast(h graph.Handle, op BroadcastOp) {
	e.values[h] = e.v(op.Operand).Broadcast(e.sizes(op.Dims),
		e.shape(op.Type))
}

func (e *Executor) Reshape(h graph.Handle, op ReshapeOp) {
	e.values[h] = e.v(op.Operand).Reshape(e.shape(op.Type))
}

func (e *Executor) Slice(h graph.Handle, op SliceOp) {
	e.values[h] = e.v(op.Operand).Slice(e.sizes(op.Start), e.sizes(op.End),
		e.sizes(op.Strides))
}

func (e *Executor) Transpose(h graph.Handle, op TransposeOp) {
	e.values[h] = e.v(op.Operand).Transpose(e.sizes(op.Perm))
}

func (e *Executor) Add(h graph.Handle, op AddOp) {
	e.values[h] = tensor.Add(e.v(op.Left), e.v(op.Right))
}

func (e *Executor) Subtract(h graph.Handle, op SubtractOp) {
	e.values[h] = tensor.Sub(e.v(op.Left), e.v(op.Right))
}

func (e *Executor) Multiply(h graph.Handle, op MultiplyOp) {
	e.values[h] = tensor.Mul(e.v(op.Left), e.v(op.Right))
}

func (e *Executor) Xor(h graph.Handle, op XorOp) {
	e.values[h] = tensor.Xor(e.v(op.Left), e.v(op.Right))
}

func (e *Executor) And(h graph.Handle, op AndOp) {
	e.values[h] = tensor.And(e.v(op.Left), e.v(op.Right))
}

func (e *Executor) Matmul(h graph.Handle, op MatmulOp) {
	e.values[h] = tensor.Matmul(e.v(op.Left), e.v(op.Right))
}

func (e *Executor) Concat(h graph.Handle, op ConcatOp) {
	operands := make([]*tensor.Tensor, len(op.Operands))
	for i, o := range op.Operands {
		operands[i] = e.v(o)
	}
	e.values[h] = tensor.Concat(op.Dim, operands...)
}
