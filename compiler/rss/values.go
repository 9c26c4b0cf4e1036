//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package rss lowers high-level graphs into per-party graphs of the
// three-party replicated secret sharing protocol. A secret x is split
// into shares x0, x1, x2 and party i holds the shares x_i and
// x_{i+1}. The nonlinear operations are delegated to a Protocol.
package rss

import (
	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/local"
)

// Plain is a public value replicated on all parties: Plain[i] is the
// copy of party i.
type Plain [local.NumParties]graph.Handle

// Cipher is a replicated secret sharing: Cipher[i][0] is share i and
// Cipher[i][1] is share i+1, both on party i.
type Cipher [local.NumParties][2]graph.Handle

// Next returns the party following i.
func Next(i int) int {
	return (i + 1) % local.NumParties
}

// Prev returns the party preceding i.
func Prev(i int) int {
	return (i + local.NumParties - 1) % local.NumParties
}

// Map applies f to every share handle of c.
func (c Cipher) Map(f func(h graph.Handle) graph.Handle) Cipher {
	var result Cipher
	for i := range c {
		for j := range c[i] {
			result[i][j] = f(c[i][j])
		}
	}
	return result
}

// Zip combines the share handles of c and o with f.
func (c Cipher) Zip(o Cipher, f func(l, r graph.Handle) graph.Handle) Cipher {
	var result Cipher
	for i := range c {
		for j := range c[i] {
			result[i][j] = f(c[i][j], o[i][j])
		}
	}
	return result
}

// Share returns the two handles of share j: the copy on party j and
// the copy on party j-1.
func (c Cipher) Share(j int) (graph.Handle, graph.Handle) {
	return c[j][0], c[Prev(j)][1]
}

// Map applies f to every copy of p.
func (p Plain) Map(f func(h graph.Handle) graph.Handle) Plain {
	var result Plain
	for i := range p {
		result[i] = f(p[i])
	}
	return result
}

// Zip combines the copies of p and o with f.
func (p Plain) Zip(o Plain, f func(l, r graph.Handle) graph.Handle) Plain {
	var result Plain
	for i := range p {
		result[i] = f(p[i], o[i])
	}
	return result
}

// Shape returns the shape of the cipher c.
func Shape(b *local.Builder, c Cipher) []int {
	return b.Graph().Shape(c[0][0])
}

// Zeros creates a zero value of the shape on the holder. Shaped
// zeros are broadcast from a scalar constant.
func Zeros(b *local.Builder, holder int, shape []int) graph.Handle {
	zero := b.Constant([]uint64{0}, b.TypeOf(holder, nil))
	if len(shape) == 0 {
		return zero
	}
	return b.Broadcast(zero, nil, shape)
}

// Embed creates a sharing whose share j has the copies onJ (on party
// j) and onPrev (on party j-1) and whose other shares are zero.
func Embed(b *local.Builder, j int, onJ, onPrev graph.Handle) Cipher {
	shape := b.Graph().Shape(onJ)
	var result Cipher
	for i := range result {
		for k := range result[i] {
			switch {
			case i == j && k == 0:
				result[i][k] = onJ
			case i == Prev(j) && k == 1:
				result[i][k] = onPrev
			default:
				result[i][k] = Zeros(b, i, shape)
			}
		}
	}
	return result
}
