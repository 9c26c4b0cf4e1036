//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package graph implements the kernel shared by the compiler
// dialects: dense node handles in topological order, per-kind node
// storage, and hash-consed attribute tables.
package graph

import (
	"fmt"

	"github.com/markkurossi/rep3/compiler/utils"
)

// Handle identifies a node within one graph instance. Handles are
// assigned densely from zero and every operand of a node has a
// smaller handle than the node itself.
type Handle int32

// Invalid is the zero value for unset handles.
const Invalid Handle = -1

func (h Handle) String() string {
	return fmt.Sprintf("%%%d", h)
}

// Node locates a node in the per-kind storage of its dialect.
type Node[K ~uint8] struct {
	Kind   K
	Offset int32
}

// Nodes holds the nodes of one graph in handle order.
type Nodes[K ~uint8] struct {
	nodes    []Node[K]
	operands [][]Handle
}

// Push appends a node and returns its fresh handle. Nodes are never
// deduplicated.
func (n *Nodes[K]) Push(kind K, offset int, operands ...Handle) Handle {
	h := Handle(len(n.nodes))
	for _, op := range operands {
		if op < 0 || op >= h {
			utils.ICE("%v: operand %v violates topological order", h, op)
		}
	}
	n.nodes = append(n.nodes, Node[K]{
		Kind:   kind,
		Offset: int32(offset),
	})
	n.operands = append(n.operands, operands)
	return h
}

// Len returns the number of nodes.
func (n *Nodes[K]) Len() int {
	return len(n.nodes)
}

// Node returns the node of the handle h.
func (n *Nodes[K]) Node(h Handle) Node[K] {
	if h < 0 || int(h) >= len(n.nodes) {
		utils.ICE("invalid handle %v", h)
	}
	return n.nodes[h]
}

// Operands returns the operand handles of the node h.
func (n *Nodes[K]) Operands(h Handle) []Handle {
	n.Node(h)
	return n.operands[h]
}

// NumElements returns the element count of a tensor of the shape.
func NumElements(shape []int) int {
	count := 1
	for _, d := range shape {
		count *= d
	}
	return count
}
