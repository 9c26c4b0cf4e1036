//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"

	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/p2p"
)

// FileSize specifies a data size in bytes.
type FileSize uint64

func (s FileSize) String() string {
	if s > 1000*1000*1000*1000 {
		return fmt.Sprintf("%dTB", s/(1000*1000*1000*1000))
	} else if s > 1000*1000*1000 {
		return fmt.Sprintf("%dGB", s/(1000*1000*1000))
	} else if s > 1000*1000 {
		return fmt.Sprintf("%dMB", s/(1000*1000))
	} else if s > 1000 {
		return fmt.Sprintf("%dkB", s/1000)
	} else {
		return fmt.Sprintf("%dB", s)
	}
}

// Stats contains the execution statistics of one party.
type Stats struct {
	ID       int
	Ops      int
	Duration time.Duration
	IO       p2p.IOStats
}

// Report contains the execution statistics of a run.
type Report struct {
	Start    time.Time
	Duration time.Duration
	Parties  [local.NumParties]Stats
}

// Print prints the report to out.
func (r *Report) Print(out io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Party").SetAlign(tabulate.ML)
	tab.Header("Ops").SetAlign(tabulate.MR)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("Sent").SetAlign(tabulate.MR)
	tab.Header("Rcvd").SetAlign(tabulate.MR)
	tab.Header("Flcd").SetAlign(tabulate.MR)

	var sent, recvd uint64
	for _, p := range r.Parties {
		row := tab.Row()
		row.Column(Name(p.ID))
		row.Column(fmt.Sprintf("%v", p.Ops))
		row.Column(p.Duration.String())
		if p.IO.Sent == nil {
			row.Column("")
			row.Column("")
			row.Column("")
			continue
		}
		row.Column(FileSize(p.IO.Sent.Load()).String())
		row.Column(FileSize(p.IO.Recvd.Load()).String())
		row.Column(fmt.Sprintf("%v", p.IO.Flushed.Load()))
		sent += p.IO.Sent.Load()
		recvd += p.IO.Recvd.Load()
	}
	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column("")
	row.Column(r.Duration.String()).SetFormat(tabulate.FmtBold)
	row.Column(FileSize(sent).String()).SetFormat(tabulate.FmtBold)
	row.Column(FileSize(recvd).String()).SetFormat(tabulate.FmtBold)
	row.Column("")

	tab.Print(out)
}
