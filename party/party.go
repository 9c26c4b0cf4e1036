//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package party runs the three protocol parties of a per-party graph
// concurrently. Each party executes its own operations and casts are
// delivered as messages between the parties.
package party

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/text/superscript"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/p2p"
)

// Name returns the display name of the party id.
func Name(id int) string {
	return "P" + superscript.Itoa(id)
}

// Run runs the parties of the graph g. The parties read their share
// tuples from inputs and draw correlated randomness from source. The
// output share tuples of all parties are merged and the duplicate
// tuples must be equal.
func Run(ctx context.Context, g *local.Graph, inputs local.Values,
	source local.Source) (local.Values, *Report, error) {

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var networks [local.NumParties]*p2p.Network
	var conns [local.NumParties][local.NumParties]*p2p.Conn

	for i := range networks {
		networks[i] = p2p.NewNetwork(i,
			logrus.WithField("party", Name(i)))
	}
	for p := 0; p < local.NumParties; p++ {
		for q := p + 1; q < local.NumParties; q++ {
			conns[p][q], conns[q][p] = p2p.Pipe()
		}
	}

	report := &Report{
		Start: time.Now(),
	}
	var results [local.NumParties]local.Values

	eg, egctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	go func() {
		select {
		case <-egctx.Done():
			for _, nw := range networks {
				nw.Abort()
			}
		case <-done:
		}
	}()

	for i := 0; i < local.NumParties; i++ {
		eg.Go(func() error {
			log := logrus.WithField("party", Name(i))
			nw := networks[i]
			for peer := 0; peer < local.NumParties; peer++ {
				if peer == i {
					continue
				}
				if err := nw.AddPeer(peer, conns[i][peer]); err != nil {
					return errors.Wrapf(err, "%s: connect", Name(i))
				}
			}
			log.Debugf("running %d operations", countOps(g, i))

			start := time.Now()
			exec := local.NewPartyExecutor(g, i, source, nw)
			out, err := exec.Run(inputs)
			if err != nil {
				return errors.Wrapf(err, "%s", Name(i))
			}
			results[i] = out
			report.Parties[i] = Stats{
				ID:       i,
				Ops:      countOps(g, i),
				Duration: time.Since(start),
				IO:       nw.Stats(),
			}
			log.Debugf("done in %v", report.Parties[i].Duration)
			return nil
		})
	}
	err := eg.Wait()
	close(done)
	report.Duration = time.Since(report.Start)

	for _, nw := range networks {
		nw.Close()
	}
	if err != nil {
		return nil, nil, err
	}

	merged := make(local.Values)
	for _, out := range results {
		if err := merged.Merge(out); err != nil {
			return nil, nil, err
		}
	}
	return merged, report, nil
}

func countOps(g *local.Graph, party int) int {
	var count int
	for i := 0; i < g.Len(); i++ {
		if g.Holder(graph.Handle(i)) == party {
			count++
		}
	}
	return count
}
