//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/utils"
)

func kinds(b *Builder, l, r graph.Handle) (Kind, Kind) {
	return b.g.Type(l).Kind, b.g.Type(r).Kind
}

// Add adds two arithmetic values of any secrecy.
func Add(b *Builder, l, r graph.Handle) graph.Handle {
	switch lk, rk := kinds(b, l, r); {
	case lk == SecretArith && rk == SecretArith:
		return b.AddAA(l, r)
	case lk == SecretArith && rk == Public:
		return b.AddAP(l, r)
	case lk == Public && rk == SecretArith:
		return b.AddAP(r, l)
	case lk == Public && rk == Public:
		return b.AddPP(l, r)
	default:
		utils.ICE("add: invalid kinds %v and %v", lk, rk)
		return graph.Invalid
	}
}

// Negate negates an arithmetic value.
func Negate(b *Builder, x graph.Handle) graph.Handle {
	switch k := b.g.Type(x).Kind; k {
	case SecretArith:
		return b.NegateA(x)
	case Public:
		return b.NegateP(x)
	default:
		utils.ICE("negate: invalid kind %v", k)
		return graph.Invalid
	}
}

// Subtract computes l-r as l+(-r).
func Subtract(b *Builder, l, r graph.Handle) graph.Handle {
	return Add(b, l, Negate(b, r))
}

// Truncate rescales an arithmetic value by bits.
func Truncate(b *Builder, x graph.Handle, bits uint8) graph.Handle {
	switch k := b.g.Type(x).Kind; k {
	case SecretArith:
		return b.TruncateA(x, bits)
	case Public:
		return b.TruncateP(x, bits)
	default:
		utils.ICE("truncate: invalid kind %v", k)
		return graph.Invalid
	}
}

func (b *Builder) rescale(x graph.Handle) graph.Handle {
	fp := b.g.Type(x).FixedPoint
	if fp > b.fixedPoint {
		return Truncate(b, x, fp-b.fixedPoint)
	}
	return x
}

// Multiply multiplies two arithmetic values and truncates the result
// back to the default scale of the builder.
func Multiply(b *Builder, l, r graph.Handle) graph.Handle {
	var result graph.Handle

	switch lk, rk := kinds(b, l, r); {
	case lk == SecretArith && rk == SecretArith:
		result = b.MultiplyAA(l, r)
	case lk == SecretArith && rk == Public:
		result = b.MultiplyAP(l, r)
	case lk == Public && rk == SecretArith:
		result = b.MultiplyAP(r, l)
	case lk == Public && rk == Public:
		result = b.MultiplyPP(l, r)
	default:
		utils.ICE("multiply: invalid kinds %v and %v", lk, rk)
	}
	return b.rescale(result)
}

// Dot computes the matrix product of two arithmetic values and
// truncates the result back to the default scale of the builder.
func Dot(b *Builder, l, r graph.Handle) graph.Handle {
	var result graph.Handle

	switch lk, rk := kinds(b, l, r); {
	case lk == SecretArith && rk == SecretArith:
		result = b.DotAA(l, r)
	case lk == SecretArith && rk == Public:
		result = b.DotAP(l, r)
	case lk == Public && rk == SecretArith:
		// P*A = (A^T * P^T)^T
		perm := []int{1, 0}
		result = b.Transpose(
			b.DotAP(b.Transpose(r, perm), b.Transpose(l, perm)), perm)
	case lk == Public && rk == Public:
		result = b.DotPP(l, r)
	default:
		utils.ICE("dot: invalid kinds %v and %v", lk, rk)
	}
	return b.rescale(result)
}

// Xor computes the exclusive or of two bit vectors.
func Xor(b *Builder, l, r graph.Handle) graph.Handle {
	return b.XorBB(l, r)
}

// And computes the conjunction of two bit vectors.
func And(b *Builder, l, r graph.Handle) graph.Handle {
	return b.AndBB(l, r)
}

// Or computes the disjunction of two bit vectors as l^(r^(l&r)).
func Or(b *Builder, l, r graph.Handle) graph.Handle {
	return b.XorBB(l, b.XorBB(r, b.AndBB(l, r)))
}

// Not complements a bit vector.
func Not(b *Builder, x graph.Handle) graph.Handle {
	return b.NotB(x)
}

// ToBits converts an arithmetic value of any secrecy into a secret
// bit vector.
func ToBits(b *Builder, x graph.Handle) graph.Handle {
	switch k := b.g.Type(x).Kind; k {
	case SecretBits:
		return x
	case Public:
		return b.A2B(b.P2A(x))
	default:
		return b.A2B(x)
	}
}

// MSB extracts the sign bit of an arithmetic value as a bit vector
// of value 0 or 1.
func MSB(b *Builder, x graph.Handle) graph.Handle {
	return b.ShiftRight(ToBits(b, x), 63)
}

func lessBits(b *Builder, l, r graph.Handle) graph.Handle {
	return MSB(b, Subtract(b, l, r))
}

func notLessBits(b *Builder, l, r graph.Handle) graph.Handle {
	return b.ShiftRight(b.NotB(ToBits(b, Subtract(b, l, r))), 63)
}

// Less returns 1 where l < r and 0 elsewhere as a secret arithmetic
// integer.
func Less(b *Builder, l, r graph.Handle) graph.Handle {
	return b.B2A(lessBits(b, l, r), 0)
}

// Greater returns 1 where l > r.
func Greater(b *Builder, l, r graph.Handle) graph.Handle {
	return b.B2A(lessBits(b, r, l), 0)
}

// GreaterEqual returns 1 where l >= r.
func GreaterEqual(b *Builder, l, r graph.Handle) graph.Handle {
	return b.B2A(notLessBits(b, l, r), 0)
}

// Equal returns 1 where l == r.
func Equal(b *Builder, l, r graph.Handle) graph.Handle {
	return b.B2A(b.AndBB(notLessBits(b, l, r), notLessBits(b, r, l)), 0)
}

// Select returns l where which is 1 and r where which is 0. The
// selector must be an integer (fixed point 0).
func Select(b *Builder, which, l, r graph.Handle) graph.Handle {
	diff := Subtract(b, l, r)
	return Add(b, r, Multiply(b, diff, which))
}

// Max returns the elementwise maximum of l and r.
func Max(b *Builder, l, r graph.Handle) graph.Handle {
	return Select(b, Greater(b, l, r), l, r)
}

// EncodeFloat encodes v as a fixed-point ring element.
func EncodeFloat(v float64, fixedPoint uint8) uint64 {
	return uint64(int64(v * float64(int64(1)<<fixedPoint)))
}

// DecodeFloat decodes a fixed-point ring element.
func DecodeFloat(v uint64, fixedPoint uint8) float64 {
	return float64(int64(v)) / float64(int64(1)<<fixedPoint)
}

// ConstantFloat creates a public fixed-point constant in the default
// scale of the builder.
func ConstantFloat(b *Builder, values []float64, shape []int) graph.Handle {
	data := make([]uint64, len(values))
	for i, v := range values {
		data[i] = EncodeFloat(v, b.fixedPoint)
	}
	return b.Constant(data, b.TypeOf(Public, b.fixedPoint, shape))
}

// ConstantInt creates a public integer constant.
func ConstantInt(b *Builder, values []int64, shape []int) graph.Handle {
	data := make([]uint64, len(values))
	for i, v := range values {
		data[i] = uint64(v)
	}
	return b.Constant(data, b.TypeOf(Public, 0, shape))
}

// Iota creates a public integer tensor counting 0, 1, ... along the
// axis dim.
func Iota(b *Builder, dim int, shape []int) graph.Handle {
	n := shape[dim]
	data := make([]int64, n)
	for i := range data {
		data[i] = int64(i)
	}
	result := ConstantInt(b, data, []int{n})
	if len(shape) != 1 {
		result = b.Broadcast(result, []int{dim}, shape)
	}
	return result
}
