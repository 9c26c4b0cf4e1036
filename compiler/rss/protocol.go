//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rss

import (
	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/local"
)

// Protocol implements the nonlinear operations of the lowering. All
// linear operations are lowered locally by the Lowering.
type Protocol interface {
	// Name returns the protocol name.
	Name() string

	// Multiply computes the elementwise product of arithmetic
	// sharings.
	Multiply(b *local.Builder, x, y Cipher) Cipher

	// Matmul computes the matrix product of arithmetic sharings.
	Matmul(b *local.Builder, x, y Cipher) Cipher

	// And computes the bitwise AND of boolean sharings.
	And(b *local.Builder, x, y Cipher) Cipher

	// Truncate shifts an arithmetic sharing arithmetically right by
	// bits. The result may be off by one.
	Truncate(b *local.Builder, x Cipher, bits uint8) Cipher

	// A2B converts an arithmetic sharing into a boolean sharing.
	A2B(b *local.Builder, x Cipher) Cipher

	// B2A converts a boolean sharing into an arithmetic sharing.
	B2A(b *local.Builder, x Cipher) Cipher
}

// Generic implements the protocol with the textbook replicated
// sharing constructions.
type Generic struct {
	truncations int
}

// NewGeneric creates a new generic protocol.
func NewGeneric() *Generic {
	return new(Generic)
}

// Name implements Protocol.Name.
func (p *Generic) Name() string {
	return "generic"
}

// Multiply implements Protocol.Multiply.
func (p *Generic) Multiply(b *local.Builder, x, y Cipher) Cipher {
	masks := ZeroShares(b, Shape(b, x), 1, b.Subtract)
	return Mult(b, x, y, b.Add, b.Multiply, masks)
}

// Matmul implements Protocol.Matmul.
func (p *Generic) Matmul(b *local.Builder, x, y Cipher) Cipher {
	xs := Shape(b, x)
	ys := Shape(b, y)
	masks := ZeroShares(b, []int{xs[0], ys[1]}, 1, b.Subtract)
	return Mult(b, x, y, b.Add, b.Matmul, masks)
}

// And implements Protocol.And.
func (p *Generic) And(b *local.Builder, x, y Cipher) Cipher {
	masks := ZeroShares(b, Shape(b, x), 1, b.Xor)
	return Mult(b, x, y, b.Xor, b.And, masks)
}

// Truncate implements Protocol.Truncate. The combiner party rotates
// between invocations to balance the work.
func (p *Generic) Truncate(b *local.Builder, x Cipher, bits uint8) Cipher {
	c := p.truncations % local.NumParties
	p.truncations++
	return TruncateAt(b, x, bits, c)
}

// A2B implements Protocol.A2B. Each arithmetic share is embedded as
// a boolean sharing and the three sharings are added with two
// adders.
func (p *Generic) A2B(b *local.Builder, x Cipher) Cipher {
	var shares [local.NumParties]Cipher
	for j := range shares {
		onJ, onPrev := x.Share(j)
		shares[j] = Embed(b, j, onJ, onPrev)
	}
	and := func(l, r Cipher) Cipher {
		return p.And(b, l, r)
	}
	sum := KoggeStone(b, shares[0], shares[1], and)
	return KoggeStone(b, sum, shares[2], and)
}

// B2A implements Protocol.B2A. The parties 0 and 2 draw the share a
// and the parties 1 and 2 the share c. The boolean difference
// t = x - a - c is revealed to the parties 0 and 1, giving the
// arithmetic sharing (a, t, c).
func (p *Generic) B2A(b *local.Builder, x Cipher) Cipher {
	shape := Shape(b, x)
	a2, a0 := b.Random(2, 0, shape)
	c1, c2 := b.Random(1, 2, shape)

	negA := Embed(b, 0, b.Negate(a0), b.Negate(a2))
	negC := Embed(b, 2, b.Negate(c2), b.Negate(c1))

	and := func(l, r Cipher) Cipher {
		return p.And(b, l, r)
	}
	t := KoggeStone(b, KoggeStone(b, x, negA, and), negC, and)

	t0 := reveal(b, t, 0, 1, 1)
	t1 := reveal(b, t, 1, 0, 0)

	return Cipher{
		{a0, t0},
		{t1, c1},
		{c2, a2},
	}
}

// reveal opens the boolean sharing t on party i. The missing share
// is received from the party from, slot k.
func reveal(b *local.Builder, t Cipher, i, from, k int) graph.Handle {
	missing := b.Cast(t[from][k], i)
	return b.Xor(b.Xor(t[i][0], t[i][1]), missing)
}
