//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements framed message connections between the
// protocol parties.
package p2p

import (
	"encoding/binary"
	"io"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/rep3/tensor"
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024
	maxRank      = 64
)

// ErrAborted is returned from operations of aborted pipe connections.
var ErrAborted = errors.New("connection aborted")

// aborter is implemented by connections that can fail pending
// operations of both endpoints with an error.
type aborter interface {
	Abort(err error) error
}

// Conn implements a protocol connection.
type Conn struct {
	conn      io.ReadWriter
	WriteBuf  []byte
	WritePos  int
	ReadBuf   []byte
	ReadStart int
	ReadEnd   int
	Stats     IOStats

	fromWriter chan []byte
	toWriter   chan []byte
	writerErr  error
}

// IOStats implements I/O statistics.
type IOStats struct {
	Sent    *atomic.Uint64
	Recvd   *atomic.Uint64
	Flushed *atomic.Uint64
}

// NewIOStats creates a new I/O statistics object.
func NewIOStats() IOStats {
	return IOStats{
		Sent:    new(atomic.Uint64),
		Recvd:   new(atomic.Uint64),
		Flushed: new(atomic.Uint64),
	}
}

// Add adds the argument stats to this IOStats and returns the sum.
func (stats IOStats) Add(o IOStats) IOStats {
	sent := new(atomic.Uint64)
	sent.Store(stats.Sent.Load() + o.Sent.Load())

	recvd := new(atomic.Uint64)
	recvd.Store(stats.Recvd.Load() + o.Recvd.Load())

	flushed := new(atomic.Uint64)
	flushed.Store(stats.Flushed.Load() + o.Flushed.Load())

	return IOStats{
		Sent:    sent,
		Recvd:   recvd,
		Flushed: flushed,
	}
}

// Sum returns sum of sent and received bytes.
func (stats IOStats) Sum() uint64 {
	return stats.Sent.Load() + stats.Recvd.Load()
}

// NewConn creates a new connection around the argument connection.
func NewConn(conn io.ReadWriter) *Conn {
	c := &Conn{
		conn:       conn,
		ReadBuf:    make([]byte, readBufSize),
		fromWriter: make(chan []byte, numBuffers),
		toWriter:   make(chan []byte, numBuffers),
		Stats:      NewIOStats(),
	}

	go c.writer()

	c.WriteBuf = <-c.fromWriter

	return c
}

func (c *Conn) writer() {
	for i := 0; i < numBuffers; i++ {
		c.fromWriter <- make([]byte, writeBufSize)
	}

	for buf := range c.toWriter {
		_, err := c.conn.Write(buf)
		if err != nil {
			c.writerErr = err
		}
		c.fromWriter <- buf[0:cap(buf)]
	}
	close(c.fromWriter)
}

// NeedSpace ensures the write buffer has space for count bytes. The
// function flushes the output if needed.
func (c *Conn) NeedSpace(count int) error {
	if c.WritePos+count > len(c.WriteBuf) {
		return c.Flush()
	}
	return nil
}

// Flush flushed any pending data in the connection.
func (c *Conn) Flush() error {
	if c.WritePos > 0 {
		c.Stats.Sent.Add(uint64(c.WritePos))
		c.toWriter <- c.WriteBuf[0:c.WritePos]

		next := <-c.fromWriter
		if c.writerErr != nil {
			return c.writerErr
		}

		c.WriteBuf = next
		c.WritePos = 0
		c.Stats.Flushed.Add(1)
	}
	return nil
}

// Fill fills the input buffer from the connection. Any unused data in
// the buffer is moved to the beginning of the buffer.
func (c *Conn) Fill(n int) error {
	if c.ReadStart < c.ReadEnd {
		copy(c.ReadBuf[0:], c.ReadBuf[c.ReadStart:c.ReadEnd])
		c.ReadEnd -= c.ReadStart
		c.ReadStart = 0
	} else {
		c.ReadStart = 0
		c.ReadEnd = 0
	}
	for c.ReadStart+n > c.ReadEnd {
		got, err := c.conn.Read(c.ReadBuf[c.ReadEnd:])
		if err != nil {
			return err
		}
		c.Stats.Recvd.Add(uint64(got))
		c.ReadEnd += got
	}
	return nil
}

// Close flushes any pending data and closes the connection.
func (c *Conn) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	// Wait that flush completes.
	close(c.toWriter)
	for range c.fromWriter {
	}
	if c.writerErr != nil {
		return c.writerErr
	}
	closer, ok := c.conn.(io.Closer)
	if ok {
		return closer.Close()
	}
	return nil
}

// Abort closes the underlying connection without flushing pending
// data. Blocked reads and writes of both endpoints fail. The
// connection must still be closed with Close.
func (c *Conn) Abort() error {
	if a, ok := c.conn.(aborter); ok {
		return a.Abort(ErrAborted)
	}
	closer, ok := c.conn.(io.Closer)
	if ok {
		return closer.Close()
	}
	return nil
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	if err := c.NeedSpace(4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(c.WriteBuf[c.WritePos:], uint32(val))
	c.WritePos += 4
	return nil
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	if c.ReadStart+4 > c.ReadEnd {
		if err := c.Fill(4); err != nil {
			return 0, err
		}
	}
	val := binary.BigEndian.Uint32(c.ReadBuf[c.ReadStart:])
	c.ReadStart += 4

	return int(val), nil
}

// SendUint64s sends the uint64 values. The count of values is not
// sent.
func (c *Conn) SendUint64s(vals []uint64) error {
	for _, v := range vals {
		if err := c.NeedSpace(8); err != nil {
			return err
		}
		binary.BigEndian.PutUint64(c.WriteBuf[c.WritePos:], v)
		c.WritePos += 8
	}
	return nil
}

// ReceiveUint64s receives len(vals) uint64 values.
func (c *Conn) ReceiveUint64s(vals []uint64) error {
	for i := range vals {
		if c.ReadStart+8 > c.ReadEnd {
			if err := c.Fill(8); err != nil {
				return err
			}
		}
		vals[i] = binary.BigEndian.Uint64(c.ReadBuf[c.ReadStart:])
		c.ReadStart += 8
	}
	return nil
}

// SendTensor sends the tensor shape and elements.
func (c *Conn) SendTensor(t *tensor.Tensor) error {
	if err := c.SendUint32(len(t.Shape)); err != nil {
		return err
	}
	for _, d := range t.Shape {
		if err := c.SendUint32(d); err != nil {
			return err
		}
	}
	return c.SendUint64s(t.Data)
}

// ReceiveTensor receives a tensor.
func (c *Conn) ReceiveTensor() (*tensor.Tensor, error) {
	rank, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if rank > maxRank {
		return nil, errors.Newf("invalid tensor rank %d", rank)
	}
	shape := make([]int, rank)
	for i := range shape {
		shape[i], err = c.ReceiveUint32()
		if err != nil {
			return nil, err
		}
	}
	result := tensor.Zeros(shape)
	if err := c.ReceiveUint64s(result.Data); err != nil {
		return nil, err
	}
	return result, nil
}
