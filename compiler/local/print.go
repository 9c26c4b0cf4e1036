//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package local

import (
	"fmt"
	"io"
	"strings"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
)

// PP prints the graph to out, one operation per line in handle
// order. If annotate is not nil, its non-empty results are appended
// to the lines as comments.
func (g *Graph) PP(out io.Writer, annotate func(h graph.Handle) string) {
	p := &printer{
		g: g,
	}
	for i := 0; i < g.Len(); i++ {
		h := graph.Handle(i)
		p.sb.Reset()
		g.Visit(h, p)
		fmt.Fprintf(out, "%v = %s", h, p.sb.String())
		if annotate != nil {
			if note := annotate(h); len(note) > 0 {
				fmt.Fprintf(out, " // %s", note)
			}
		}
		fmt.Fprintln(out)
	}
}

// FormatType formats the type t.
func (g *Graph) FormatType(t Type) string {
	return g.formatType(t)
}

type printer struct {
	g  *Graph
	sb strings.Builder
}

func (p *printer) operands(name string, operands []graph.Handle,
	attrs []string, t Type) {

	p.sb.WriteString(name)
	var types []string
	for i, op := range operands {
		if i > 0 {
			p.sb.WriteRune(',')
		}
		fmt.Fprintf(&p.sb, " %v", op)
		types = append(types, p.g.formatType(p.g.Type(op)))
	}
	for _, attr := range attrs {
		p.sb.WriteString(", ")
		p.sb.WriteString(attr)
	}
	fmt.Fprintf(&p.sb, " : (%s) -> %s", strings.Join(types, ", "),
		p.g.formatType(t))
}

func (p *printer) unary(name string, op Unary, attrs ...string) {
	p.operands(name, []graph.Handle{op.Operand}, attrs, op.Type)
}

func (p *printer) binary(name string, op Binary) {
	p.operands(name, []graph.Handle{op.Left, op.Right}, nil, op.Type)
}

func (p *printer) shift(name string, op Shift) {
	p.unary(name, op.Unary, fmt.Sprintf("bits = %d", op.Bits))
}

func (p *printer) sizes(name string, ref graph.SizesRef) string {
	return fmt.Sprintf("%s = %s", name, hl.FormatList(p.g.attrs.Sizes(ref)))
}

func (p *printer) Input(h graph.Handle, op InputOp) {
	fmt.Fprintf(&p.sb, "input index = %d, tuple = %d : %s",
		op.Index, op.Tuple, p.g.formatType(op.Type))
}

func (p *printer) Output(h graph.Handle, op OutputOp) {
	fmt.Fprintf(&p.sb, "output %v, index = %d, tuple = %d : %s",
		op.Operand, op.Index, op.Tuple, p.g.formatType(p.g.Type(op.Operand)))
}

func (p *printer) Constant(h graph.Handle, op ConstantOp) {
	data := p.g.attrs.Dense(op.Value)
	values := make([]int64, len(data))
	for i, v := range data {
		values[i] = int64(v)
	}
	fmt.Fprintf(&p.sb, "constant value = %s : %s", hl.FormatList(values),
		p.g.formatType(op.Type))
}

func (p *printer) Random(h graph.Handle, op RandomOp) {
	fmt.Fprintf(&p.sb, "random pair = %v, seed = %d : %s", op.Pair, op.Seed,
		p.g.formatType(op.Type))
}

func (p *printer) Cast(h graph.Handle, op CastOp) {
	p.unary(OpCast.String(), op.Unary)
}

func (p *printer) Negate(h graph.Handle, op NegateOp) {
	p.unary(OpNegate.String(), op.Unary)
}

func (p *printer) Not(h graph.Handle, op NotOp) {
	p.unary(OpNot.String(), op.Unary)
}

func (p *printer) BitReverse(h graph.Handle, op BitReverseOp) {
	p.unary(OpBitReverse.String(), op.Unary)
}

func (p *printer) AShiftRight(h graph.Handle, op AShiftRightOp) {
	p.shift(OpAShiftRight.String(), op.Shift)
}

func (p *printer) LShiftRight(h graph.Handle, op LShiftRightOp) {
	p.shift(OpLShiftRight.String(), op.Shift)
}

func (p *printer) ShiftLeft(h graph.Handle, op ShiftLeftOp) {
	p.shift(OpShiftLeft.String(), op.Shift)
}

func (p *printer) Inverse(h graph.Handle, op InverseOp) {
	p.unary(OpInverse.String(), op.Unary,
		fmt.Sprintf("fixed_point = %d", op.FixedPoint))
}

func (p *printer) Broadcast(h graph.Handle, op BroadcastOp) {
	p.unary(OpBroadcast.String(), op.Unary, p.sizes("dims", op.Dims))
}

func (p *printer) Reshape(h graph.Handle, op ReshapeOp) {
	p.unary(OpReshape.String(), op.Unary)
}

func (p *printer) Slice(h graph.Handle, op SliceOp) {
	p.unary(OpSlice.String(), op.Unary, p.sizes("start", op.Start),
		p.sizes("end", op.End), p.sizes("strides", op.Strides))
}

func (p *printer) Transpose(h graph.Handle, op TransposeOp) {
	p.unary(OpTranspose.String(), op.Unary, p.sizes("perm", op.Perm))
}

func (p *printer) Add(h graph.Handle, op AddOp) {
	p.binary(OpAdd.String(), op.Binary)
}

func (p *printer) Subtract(h graph.Handle, op SubtractOp) {
	p.binary(OpSubtract.String(), op.Binary)
}

func (p *printer) Multiply(h graph.Handle, op MultiplyOp) {
	p.binary(OpMultiply.String(), op.Binary)
}

func (p *printer) Xor(h graph.Handle, op XorOp) {
	p.binary(OpXor.String(), op.Binary)
}

func (p *printer) And(h graph.Handle, op AndOp) {
	p.binary(OpAnd.String(), op.Binary)
}

func (p *printer) Matmul(h graph.Handle, op MatmulOp) {
	p.binary(OpMatmul.String(), op.Binary)
}

func (p *printer) Concat(h graph.Handle, op ConcatOp) {
	p.operands(OpConcat.String(), op.Operands,
		[]string{fmt.Sprintf("dim = %d", op.Dim)}, op.Type)
}
