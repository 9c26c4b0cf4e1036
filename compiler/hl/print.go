//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"fmt"
	"io"
	"strings"

	"github.com/markkurossi/rep3/compiler/graph"
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

// FormatList formats a list attribute as [a, b, ...].
func FormatList[E int | uint64 | int64](list []E) string {
	var sb strings.Builder
	sb.WriteRune('[')
	for i, v := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", v)
	}
	sb.WriteRune(']')
	return sb.String()
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

func (p *printer) sizes(name string, ref graph.SizesRef) string {
	return fmt.Sprintf("%s = %s", name, FormatList(p.g.attrs.Sizes(ref)))
}

func (p *printer) Input(h graph.Handle, op InputOp) {
	fmt.Fprintf(&p.sb, "input index = %d : %s", op.Index,
		p.g.formatType(op.Type))
}

func (p *printer) Output(h graph.Handle, op OutputOp) {
	fmt.Fprintf(&p.sb, "output %v, index = %d : %s", op.Operand, op.Index,
		p.g.formatType(p.g.Type(op.Operand)))
}

func (p *printer) Constant(h graph.Handle, op ConstantOp) {
	data := p.g.attrs.Dense(op.Value)
	values := make([]int64, len(data))
	for i, v := range data {
		values[i] = int64(v)
	}
	fmt.Fprintf(&p.sb, "constant value = %s : %s", FormatList(values),
		p.g.formatType(op.Type))
}

func (p *printer) NegateA(h graph.Handle, op NegateAOp) {
	p.unary(OpNegateA.String(), op.Unary)
}

func (p *printer) NegateP(h graph.Handle, op NegatePOp) {
	p.unary(OpNegateP.String(), op.Unary)
}

func (p *printer) Inverse(h graph.Handle, op InverseOp) {
	p.unary(OpInverse.String(), op.Unary)
}

func (p *printer) TruncateA(h graph.Handle, op TruncateAOp) {
	p.unary(OpTruncateA.String(), op.Unary, fmt.Sprintf("bits = %d", op.Bits))
}

func (p *printer) TruncateP(h graph.Handle, op TruncatePOp) {
	p.unary(OpTruncateP.String(), op.Unary, fmt.Sprintf("bits = %d", op.Bits))
}

func (p *printer) NotB(h graph.Handle, op NotBOp) {
	p.unary(OpNotB.String(), op.Unary)
}

func (p *printer) BitReverse(h graph.Handle, op BitReverseOp) {
	p.unary(OpBitReverse.String(), op.Unary)
}

func (p *printer) ShiftRight(h graph.Handle, op ShiftRightOp) {
	p.unary(OpShiftRight.String(), op.Unary,
		fmt.Sprintf("bits = %d", op.Bits))
}

func (p *printer) P2A(h graph.Handle, op P2AOp) {
	p.unary(OpP2A.String(), op.Unary)
}

func (p *printer) A2B(h graph.Handle, op A2BOp) {
	p.unary(OpA2B.String(), op.Unary)
}

func (p *printer) B2A(h graph.Handle, op B2AOp) {
	p.unary(OpB2A.String(), op.Unary)
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

func (p *printer) AddAA(h graph.Handle, op AddAAOp) {
	p.binary(OpAddAA.String(), op.Binary)
}

func (p *printer) AddAP(h graph.Handle, op AddAPOp) {
	p.binary(OpAddAP.String(), op.Binary)
}

func (p *printer) AddPP(h graph.Handle, op AddPPOp) {
	p.binary(OpAddPP.String(), op.Binary)
}

func (p *printer) MultiplyAA(h graph.Handle, op MultiplyAAOp) {
	p.binary(OpMultiplyAA.String(), op.Binary)
}

func (p *printer) MultiplyAP(h graph.Handle, op MultiplyAPOp) {
	p.binary(OpMultiplyAP.String(), op.Binary)
}

func (p *printer) MultiplyPP(h graph.Handle, op MultiplyPPOp) {
	p.binary(OpMultiplyPP.String(), op.Binary)
}

func (p *printer) XorBB(h graph.Handle, op XorBBOp) {
	p.binary(OpXorBB.String(), op.Binary)
}

func (p *printer) AndBB(h graph.Handle, op AndBBOp) {
	p.binary(OpAndBB.String(), op.Binary)
}

func (p *printer) DotAA(h graph.Handle, op DotAAOp) {
	p.binary(OpDotAA.String(), op.Binary)
}

func (p *printer) DotAP(h graph.Handle, op DotAPOp) {
	p.binary(OpDotAP.String(), op.Binary)
}

func (p *printer) DotPP(h graph.Handle, op DotPPOp) {
	p.binary(OpDotPP.String(), op.Binary)
}

func (p *printer) Concat(h graph.Handle, op ConcatOp) {
	p.operands(OpConcat.String(), op.Operands,
		[]string{fmt.Sprintf("dim = %d", op.Dim)}, op.Type)
}
