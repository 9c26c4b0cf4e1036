//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package local

import (
	"fmt"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/utils"
)

// NumParties is the number of protocol parties.
const NumParties = 3

// Type defines the type of a per-party value: the party holding the
// value and its shape. Secrecy is not part of the type.
type Type struct {
	Holder uint8
	Shape  graph.ShapeRef
}

// Pair is an unordered party pair with P < Q.
type Pair struct {
	P uint8
	Q uint8
}

// NewPair creates the canonical pair of the parties p and q.
func NewPair(p, q int) Pair {
	if p == q || p < 0 || q < 0 || p >= NumParties || q >= NumParties {
		utils.ICE("invalid party pair (%d,%d)", p, q)
	}
	if p > q {
		p, q = q, p
	}
	return Pair{
		P: uint8(p),
		Q: uint8(q),
	}
}

// Index returns a dense index 0..2 of the pair.
func (p Pair) Index() int {
	return int(p.P) + int(p.Q) - 1
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d,%d)", p.P, p.Q)
}

func (g *Graph) formatType(t Type) string {
	return fmt.Sprintf("p%d.tensor<%su64>", t.Holder,
		hl.FormatShape(g.attrs.Shape(t.Shape)))
}
