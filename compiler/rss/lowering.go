//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rss

import (
	"slices"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/compiler/utils"
)

// Lowering lowers one high-level graph into a per-party graph.
type Lowering struct {
	ID     uuid.UUID
	src    *hl.Graph
	proto  Protocol
	params *utils.Params
	log    *logrus.Entry

	b      *local.Builder
	io     *IOMap
	plain  []Plain
	cipher []Cipher
	origin []graph.Handle
}

// NewLowering creates a lowering session for the graph src.
func NewLowering(src *hl.Graph, proto Protocol,
	params *utils.Params) *Lowering {

	id := uuid.New()
	return &Lowering{
		ID:     id,
		src:    src,
		proto:  proto,
		params: params,
		log: logrus.WithFields(logrus.Fields{
			"session":  id.String(),
			"protocol": proto.Name(),
		}),
		b:      local.NewBuilder(local.NewGraph()),
		io:     new(IOMap),
		plain:  make([]Plain, src.Len()),
		cipher: make([]Cipher, src.Len()),
	}
}

// Lower lowers the graph. The per-party graph has every high-level
// input and output slot of the source graph.
func (l *Lowering) Lower() (g *local.Graph, m *IOMap, err error) {
	defer utils.Recover(&err)

	v := &visitor{
		Lowering: l,
	}
	for i := 0; i < l.src.Len(); i++ {
		h := graph.Handle(i)
		start := l.b.Graph().Len()
		l.src.Visit(h, v)
		for j := start; j < l.b.Graph().Len(); j++ {
			l.origin = append(l.origin, h)
		}
	}
	if l.params != nil && l.params.Verbose {
		l.log.Infof("lowered %d operations into %d", l.src.Len(),
			l.b.Graph().Len())
	}
	return l.b.Graph(), l.io, nil
}

// Origin returns the high-level operation that produced the
// per-party operation h.
func (l *Lowering) Origin(h graph.Handle) graph.Handle {
	if h < 0 || int(h) >= len(l.origin) {
		return graph.Invalid
	}
	return l.origin[h]
}

// Annotate returns an annotation function for local.Graph.PP that
// names the originating high-level operations.
func (l *Lowering) Annotate() func(h graph.Handle) string {
	var prev graph.Handle = graph.Invalid
	return func(h graph.Handle) string {
		o := l.Origin(h)
		if o == prev || o == graph.Invalid {
			return ""
		}
		prev = o
		return o.String() + " " + l.src.Kind(o).String()
	}
}

type visitor struct {
	*Lowering
}

func (v *visitor) shape(t hl.Type) []int {
	return v.src.Attrs().Shape(t.Shape)
}

func (v *visitor) sizes(ref graph.SizesRef) []int {
	return v.src.Attrs().Sizes(ref)
}

func (v *visitor) secret(h graph.Handle) bool {
	return v.src.Type(h).Kind.Secret()
}

func (v *visitor) debug(h graph.Handle, kind hl.OpKind) {
	v.log.WithField("op", kind.String()).Debugf("%v: %s", h,
		v.src.FormatType(v.src.Type(h)))
}

// each applies the local operation f to every handle of x.
func (v *visitor) each(h, x graph.Handle,
	f func(h graph.Handle) graph.Handle) {

	if v.secret(x) {
		v.cipher[h] = v.cipher[x].Map(f)
	} else {
		v.plain[h] = v.plain[x].Map(f)
	}
}

func (v *visitor) Input(h graph.Handle, op hl.InputOp) {
	shape := v.shape(op.Type)
	v.io.Inputs = append(v.io.Inputs, Slot{
		Index:      op.Index,
		Kind:       op.Type.Kind,
		FixedPoint: op.Type.FixedPoint,
		Shape:      slices.Clone(shape),
	})
	for i := 0; i < local.NumParties; i++ {
		t := v.b.TypeOf(i, shape)
		if op.Type.Kind.Secret() {
			v.cipher[h][i][0] = v.b.Input(op.Index, i, t)
			v.cipher[h][i][1] = v.b.Input(op.Index, Next(i), t)
		} else {
			v.plain[h][i] = v.b.Input(op.Index, 0, t)
		}
	}
}

func (v *visitor) Output(h graph.Handle, op hl.OutputOp) {
	t := v.src.Type(op.Operand)
	v.io.Outputs = append(v.io.Outputs, Slot{
		Index:      op.Index,
		Kind:       t.Kind,
		FixedPoint: t.FixedPoint,
		Shape:      slices.Clone(v.shape(t)),
	})
	for i := 0; i < local.NumParties; i++ {
		if t.Kind.Secret() {
			c := v.cipher[op.Operand]
			v.b.Output(c[i][0], op.Index, i)
			v.b.Output(c[i][1], op.Index, Next(i))
		} else {
			v.b.Output(v.plain[op.Operand][i], op.Index, 0)
		}
	}
}

func (v *visitor) Constant(h graph.Handle, op hl.ConstantOp) {
	values := v.src.Attrs().Dense(op.Value)
	shape := v.shape(op.Type)
	for i := 0; i < local.NumParties; i++ {
		v.plain[h][i] = v.b.Constant(values, v.b.TypeOf(i, shape))
	}
}

func (v *visitor) NegateA(h graph.Handle, op hl.NegateAOp) {
	v.cipher[h] = v.cipher[op.Operand].Map(v.b.Negate)
}

func (v *visitor) NegateP(h graph.Handle, op hl.NegatePOp) {
	v.plain[h] = v.plain[op.Operand].Map(v.b.Negate)
}

func (v *visitor) Inverse(h graph.Handle, op hl.InverseOp) {
	v.plain[h] = v.plain[op.Operand].Map(func(x graph.Handle) graph.Handle {
		return v.b.Inverse(x, op.Type.FixedPoint)
	})
}

func (v *visitor) TruncateA(h graph.Handle, op hl.TruncateAOp) {
	v.debug(h, hl.OpTruncateA)
	v.cipher[h] = v.proto.Truncate(v.b, v.cipher[op.Operand], op.Bits)
}

func (v *visitor) TruncateP(h graph.Handle, op hl.TruncatePOp) {
	v.plain[h] = v.plain[op.Operand].Map(func(x graph.Handle) graph.Handle {
		return v.b.AShiftRight(x, op.Bits)
	})
}

func (v *visitor) NotB(h graph.Handle, op hl.NotBOp) {
	v.cipher[h] = v.cipher[op.Operand].Map(v.b.Not)
}

func (v *visitor) BitReverse(h graph.Handle, op hl.BitReverseOp) {
	v.cipher[h] = v.cipher[op.Operand].Map(v.b.BitReverse)
}

func (v *visitor) ShiftRight(h graph.Handle, op hl.ShiftRightOp) {
	v.cipher[h] = v.cipher[op.Operand].Map(func(x graph.Handle) graph.Handle {
		return v.b.LShiftRight(x, op.Bits)
	})
}

func (v *visitor) P2A(h graph.Handle, op hl.P2AOp) {
	p := v.plain[op.Operand]
	v.cipher[h] = Embed(v.b, 2, p[2], p[1])
}

func (v *visitor) A2B(h graph.Handle, op hl.A2BOp) {
	v.debug(h, hl.OpA2B)
	v.cipher[h] = v.proto.A2B(v.b, v.cipher[op.Operand])
}

func (v *visitor) B2A(h graph.Handle, op hl.B2AOp) {
	v.debug(h, hl.OpB2A)
	v.cipher[h] = v.proto.B2A(v.b, v.cipher[op.Operand])
}

func (v *visitor) Broadcast(h graph.Handle, op hl.BroadcastOp) {
	dims := v.sizes(op.Dims)
	shape := v.shape(op.Type)
	v.each(h, op.Operand, func(x graph.Handle) graph.Handle {
		return v.b.Broadcast(x, dims, shape)
	})
}

func (v *visitor) Reshape(h graph.Handle, op hl.ReshapeOp) {
	shape := v.shape(op.Type)
	v.each(h, op.Operand, func(x graph.Handle) graph.Handle {
		return v.b.Reshape(x, shape)
	})
}

func (v *visitor) Slice(h graph.Handle, op hl.SliceOp) {
	start := v.sizes(op.Start)
	end := v.sizes(op.End)
	strides := v.sizes(op.Strides)
	v.each(h, op.Operand, func(x graph.Handle) graph.Handle {
		return v.b.Slice(x, start, end, strides)
	})
}

func (v *visitor) Transpose(h graph.Handle, op hl.TransposeOp) {
	perm := v.sizes(op.Perm)
	v.each(h, op.Operand, func(x graph.Handle) graph.Handle {
		return v.b.Transpose(x, perm)
	})
}

func (v *visitor) AddAA(h graph.Handle, op hl.AddAAOp) {
	v.cipher[h] = v.cipher[op.Left].Zip(v.cipher[op.Right], v.b.Add)
}

// AddAP adds the public value to share 0 only. Both copies of the
// share are updated to keep the sharing replicated.
func (v *visitor) AddAP(h graph.Handle, op hl.AddAPOp) {
	c := v.cipher[op.Left]
	p := v.plain[op.Right]
	c[0][0] = v.b.Add(c[0][0], p[0])
	c[2][1] = v.b.Add(c[2][1], p[2])
	v.cipher[h] = c
}

func (v *visitor) AddPP(h graph.Handle, op hl.AddPPOp) {
	v.plain[h] = v.plain[op.Left].Zip(v.plain[op.Right], v.b.Add)
}

func (v *visitor) MultiplyAA(h graph.Handle, op hl.MultiplyAAOp) {
	v.debug(h, hl.OpMultiplyAA)
	v.cipher[h] = v.proto.Multiply(v.b, v.cipher[op.Left],
		v.cipher[op.Right])
}

// scale applies f to every share and the public copy of the share
// holder.
func (v *visitor) scale(c Cipher, p Plain, f Combine) Cipher {
	var result Cipher
	for i := range c {
		for k := range c[i] {
			result[i][k] = f(c[i][k], p[i])
		}
	}
	return result
}

func (v *visitor) MultiplyAP(h graph.Handle, op hl.MultiplyAPOp) {
	v.cipher[h] = v.scale(v.cipher[op.Left], v.plain[op.Right],
		v.b.Multiply)
}

func (v *visitor) MultiplyPP(h graph.Handle, op hl.MultiplyPPOp) {
	v.plain[h] = v.plain[op.Left].Zip(v.plain[op.Right], v.b.Multiply)
}

func (v *visitor) XorBB(h graph.Handle, op hl.XorBBOp) {
	v.cipher[h] = v.cipher[op.Left].Zip(v.cipher[op.Right], v.b.Xor)
}

func (v *visitor) AndBB(h graph.Handle, op hl.AndBBOp) {
	v.debug(h, hl.OpAndBB)
	v.cipher[h] = v.proto.And(v.b, v.cipher[op.Left], v.cipher[op.Right])
}

func (v *visitor) DotAA(h graph.Handle, op hl.DotAAOp) {
	v.debug(h, hl.OpDotAA)
	v.cipher[h] = v.proto.Matmul(v.b, v.cipher[op.Left], v.cipher[op.Right])
}

func (v *visitor) DotAP(h graph.Handle, op hl.DotAPOp) {
	v.cipher[h] = v.scale(v.cipher[op.Left], v.plain[op.Right], v.b.Matmul)
}

func (v *visitor) DotPP(h graph.Handle, op hl.DotPPOp) {
	v.plain[h] = v.plain[op.Left].Zip(v.plain[op.Right], v.b.Matmul)
}

func (v *visitor) Concat(h graph.Handle, op hl.ConcatOp) {
	handles := make([]graph.Handle, len(op.Operands))
	if op.Type.Kind.Secret() {
		for i := 0; i < local.NumParties; i++ {
			for k := 0; k < 2; k++ {
				for j, x := range op.Operands {
					handles[j] = v.cipher[x][i][k]
				}
				v.cipher[h][i][k] = v.b.Concat(op.Dim, handles...)
			}
		}
		return
	}
	for i := 0; i < local.NumParties; i++ {
		for j, x := range op.Operands {
			handles[j] = v.plain[x][i]
		}
		v.plain[h][i] = v.b.Concat(op.Dim, handles...)
	}
}
