//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"io"
)

// Pipe creates a pair of in-process connections. Messages sent to one
// endpoint are received from the other. Aborting either endpoint
// fails the pending operations of both with ErrAborted.
func Pipe() (*Conn, *Conn) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	return NewConn(&pipe{r: ar, w: bw}), NewConn(&pipe{r: br, w: aw})
}

type pipe struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipe) Close() error {
	p.r.Close()
	return p.w.Close()
}

func (p *pipe) Abort(err error) error {
	p.r.CloseWithError(err)
	return p.w.CloseWithError(err)
}

func (p *pipe) Read(data []byte) (n int, err error) {
	return p.r.Read(data)
}

func (p *pipe) Write(data []byte) (n int, err error) {
	return p.w.Write(data)
}
