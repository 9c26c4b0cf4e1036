//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rss

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/local"
)

// Stats contains statistics about a per-party graph.
type Stats struct {
	// Ops counts operations by kind and party.
	Ops map[local.OpKind]*[local.NumParties]int

	// Casts counts cast elements by sending and receiving party.
	Casts [local.NumParties][local.NumParties]int

	// Messages counts casts by sending and receiving party.
	Messages [local.NumParties][local.NumParties]int

	// Random counts random elements by holding party.
	Random [local.NumParties]int

	// Rounds is the length of the longest chain of dependent casts.
	Rounds int
}

// NewStats computes the statistics of the graph g.
func NewStats(g *local.Graph) *Stats {
	stats := &Stats{
		Ops: make(map[local.OpKind]*[local.NumParties]int),
	}
	depth := make([]int, g.Len())

	for i := 0; i < g.Len(); i++ {
		h := graph.Handle(i)
		kind := g.Kind(h)
		counts, ok := stats.Ops[kind]
		if !ok {
			counts = new([local.NumParties]int)
			stats.Ops[kind] = counts
		}
		counts[g.Holder(h)]++

		for _, op := range g.Operands(h) {
			depth[h] = max(depth[h], depth[op])
		}
		switch kind {
		case local.OpCast:
			from := g.Holder(g.Operands(h)[0])
			n := graph.NumElements(g.Shape(h))
			stats.Casts[from][g.Holder(h)] += n
			stats.Messages[from][g.Holder(h)]++
			depth[h]++
			stats.Rounds = max(stats.Rounds, depth[h])

		case local.OpRandom:
			// Both holders of a draw are counted.
			stats.Random[g.Holder(h)] += graph.NumElements(g.Shape(h))
		}
	}
	return stats
}

// Sent returns the number of elements party sends.
func (stats *Stats) Sent(party int) int {
	var sum int
	for _, n := range stats.Casts[party] {
		sum += n
	}
	return sum
}

// Print prints the statistics to out.
func (stats *Stats) Print(out io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	for i := 0; i < local.NumParties; i++ {
		tab.Header(fmt.Sprintf("p%d", i)).SetAlign(tabulate.MR)
	}

	var total [local.NumParties]int
	for _, kind := range local.OpKinds() {
		counts, ok := stats.Ops[kind]
		if !ok {
			continue
		}
		row := tab.Row()
		row.Column(kind.String())
		for i, n := range counts {
			row.Column(fmt.Sprintf("%v", n))
			total[i] += n
		}
	}
	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	for _, n := range total {
		row.Column(fmt.Sprintf("%v", n)).SetFormat(tabulate.FmtBold)
	}

	row = tab.Row()
	row.Column("Sent").SetFormat(tabulate.FmtItalic)
	for i := 0; i < local.NumParties; i++ {
		row.Column(fmt.Sprintf("%v", stats.Sent(i))).
			SetFormat(tabulate.FmtItalic)
	}
	row = tab.Row()
	row.Column("Random").SetFormat(tabulate.FmtItalic)
	for i := 0; i < local.NumParties; i++ {
		row.Column(fmt.Sprintf("%v", stats.Random[i])).
			SetFormat(tabulate.FmtItalic)
	}
	tab.Print(out)

	fmt.Fprintf(out, "rounds: %v\n", stats.Rounds)
}
