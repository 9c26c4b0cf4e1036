//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package aby3 implements the ABY3 variant of the replicated sharing
// protocol. It uses a different mask pairing for multiplication, a
// fixed truncation combiner, and cheaper share conversions that need
// only one adder each.
package aby3

import (
	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/compiler/rss"
)

// Combiner is the party combining shares in truncation.
const Combiner = 1

// Protocol implements the ABY3 nonlinear operations.
type Protocol struct{}

// New creates a new ABY3 protocol.
func New() *Protocol {
	return new(Protocol)
}

// Name implements rss.Protocol.Name.
func (p *Protocol) Name() string {
	return "aby3"
}

// masks creates the multiplication masks r_i - r_{i+1} where party i
// shares r_i with party i-1.
func masks(b *local.Builder, shape []int, combine rss.Combine) rss.Plain {
	return rss.ZeroShares(b, shape, local.NumParties-1, combine)
}

// Multiply implements rss.Protocol.Multiply.
func (p *Protocol) Multiply(b *local.Builder, x, y rss.Cipher) rss.Cipher {
	return rss.Mult(b, x, y, b.Add, b.Multiply,
		masks(b, rss.Shape(b, x), b.Subtract))
}

// Matmul implements rss.Protocol.Matmul.
func (p *Protocol) Matmul(b *local.Builder, x, y rss.Cipher) rss.Cipher {
	xs := rss.Shape(b, x)
	ys := rss.Shape(b, y)
	return rss.Mult(b, x, y, b.Add, b.Matmul,
		masks(b, []int{xs[0], ys[1]}, b.Subtract))
}

// And implements rss.Protocol.And.
func (p *Protocol) And(b *local.Builder, x, y rss.Cipher) rss.Cipher {
	return rss.Mult(b, x, y, b.Xor, b.And, masks(b, rss.Shape(b, x), b.Xor))
}

// Truncate implements rss.Protocol.Truncate.
func (p *Protocol) Truncate(b *local.Builder, x rss.Cipher,
	bits uint8) rss.Cipher {

	return rss.TruncateAt(b, x, bits, Combiner)
}

func (p *Protocol) adder(b *local.Builder) func(l, r rss.Cipher) rss.Cipher {
	return func(l, r rss.Cipher) rss.Cipher {
		return p.And(b, l, r)
	}
}

// A2B implements rss.Protocol.A2B. Share 1 is embedded as a boolean
// sharing. Party 2 reshares the sum of the shares 2 and 0 and one
// adder combines the two sharings.
func (p *Protocol) A2B(b *local.Builder, x rss.Cipher) rss.Cipher {
	onJ, onPrev := x.Share(1)
	x1 := rss.Embed(b, 1, onJ, onPrev)
	x20 := reshare(b, b.Add(x[2][0], x[2][1]))
	return rss.KoggeStone(b, x1, x20, p.adder(b))
}

// B2A implements rss.Protocol.B2A. The shares 2 and 0 are drawn as
// pairwise randomness and party 2 reshares their negated sum. One
// adder computes share 1 which is opened to its holders.
func (p *Protocol) B2A(b *local.Builder, x rss.Cipher) rss.Cipher {
	shape := rss.Shape(b, x)
	x2p1, x2p2 := b.Random(1, 2, shape)
	x0p2, x0p0 := b.Random(2, 0, shape)

	y := reshare(b, b.Negate(b.Add(x2p2, x0p2)))
	t := rss.KoggeStone(b, x, y, p.adder(b))

	x1p0 := b.Xor(b.Xor(t[0][0], t[0][1]), b.Cast(t[1][1], 0))
	x1p1 := b.Xor(b.Xor(t[1][0], t[1][1]), b.Cast(t[2][1], 1))

	return rss.Cipher{
		{x0p0, x1p0},
		{x1p1, x2p1},
		{x2p2, x0p2},
	}
}

// reshare creates a boolean sharing of the value v of party 2 from a
// zero sharing.
func reshare(b *local.Builder, v graph.Handle) rss.Cipher {
	z := rss.ZeroShares(b, b.Graph().Shape(v), 1, b.Xor)
	w := b.Xor(v, z[2])
	return rss.Cipher{
		{z[0], b.Cast(z[1], 0)},
		{z[1], b.Cast(w, 1)},
		{w, b.Cast(z[0], 2)},
	}
}
