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

// Combine combines two values on the same party.
type Combine func(l, r graph.Handle) graph.Handle

// ZeroShares creates per-party masks that combine to zero. Party i
// draws randomness r_i with the party i+dir and its mask is the
// combination of r_i and r_{i-dir}. The combine function must be
// subtraction for arithmetic masks and xor for boolean masks.
func ZeroShares(b *local.Builder, shape []int, dir int,
	combine Combine) Plain {

	var own, other Plain
	for i := 0; i < local.NumParties; i++ {
		peer := (i + dir) % local.NumParties
		own[i], other[peer] = b.Random(i, peer, shape)
	}
	var result Plain
	for i := range result {
		result[i] = combine(own[i], other[i])
	}
	return result
}

// Mult computes the replicated product template over the ring of add
// and mul. Party i computes
//
//	z_i = x_i*y_i + x_i*y_{i+1} + x_{i+1}*y_i + masks[i]
//
// and sends z_i to the party i-1. The masks must combine to zero.
func Mult(b *local.Builder, x, y Cipher, add, mul Combine,
	masks Plain) Cipher {

	var z Plain
	for i := range z {
		t := add(mul(x[i][0], y[i][0]), mul(x[i][0], y[i][1]))
		t = add(t, mul(x[i][1], y[i][0]))
		z[i] = add(t, masks[i])
	}
	var result Cipher
	for i := range result {
		result[i][0] = z[i]
		result[i][1] = b.Cast(z[Next(i)], i)
	}
	return result
}

// KoggeStone adds the boolean sharings x and y with a parallel prefix
// adder of six rounds. The and function computes the secret AND of
// two boolean sharings.
func KoggeStone(b *local.Builder, x, y Cipher,
	and func(l, r Cipher) Cipher) Cipher {

	const rounds = 6

	p := x.Zip(y, b.Xor)
	g := and(x, y)
	for i := 0; i < rounds; i++ {
		bits := uint8(1) << i
		tmp := and(p, shiftLeft(b, g, bits))
		if i < rounds-1 {
			p = and(p, shiftLeft(b, p, bits))
		}
		g = g.Zip(tmp, b.Xor)
	}
	return x.Zip(y, b.Xor).Zip(shiftLeft(b, g, 1), b.Xor)
}

func shiftLeft(b *local.Builder, c Cipher, bits uint8) Cipher {
	return c.Map(func(h graph.Handle) graph.Handle {
		return b.ShiftLeft(h, bits)
	})
}

// TruncateAt truncates the arithmetic sharing x by bits with party c
// as the combiner. Party c shifts the sum of its two shares and
// re-splits it with randomness shared with party c+1. The remaining
// share is shifted locally by both of its holders. The result differs
// from the shifted secret by at most one.
func TruncateAt(b *local.Builder, x Cipher, bits uint8, c int) Cipher {
	n := Next(c)
	nn := Next(n)
	ashr := func(h graph.Handle) graph.Handle {
		return b.AShiftRight(h, bits)
	}

	t := ashr(b.Add(x[c][0], x[c][1]))
	rc, rn := b.Random(c, n, Shape(b, x))
	yc := b.Subtract(t, rc)

	var result Cipher
	result[c][0] = yc
	result[c][1] = rc
	result[n][0] = rn
	result[n][1] = ashr(x[n][1])
	result[nn][0] = ashr(x[nn][0])
	result[nn][1] = b.Cast(yc, nn)
	return result
}
