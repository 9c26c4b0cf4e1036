//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/markkurossi/rep3/tensor"
)

// Network implements the peer connections of one party. It delivers
// values to peers in the order they are sent.
type Network struct {
	ID    int
	m     sync.Mutex
	Peers map[int]*Peer
	log   *logrus.Entry
}

// NewNetwork creates a new network for the party id.
func NewNetwork(id int, log *logrus.Entry) *Network {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Network{
		ID:    id,
		Peers: make(map[int]*Peer),
		log:   log,
	}
}

// Close closes all peer connections.
func (nw *Network) Close() error {
	nw.m.Lock()
	defer nw.m.Unlock()

	var result error
	for _, peer := range nw.Peers {
		if err := peer.Close(); err != nil && result == nil {
			result = err
		}
	}
	return result
}

// Abort aborts all peer connections. Blocked sends and receives
// fail.
func (nw *Network) Abort() {
	nw.m.Lock()
	defer nw.m.Unlock()

	for _, peer := range nw.Peers {
		peer.conn.Abort()
	}
}

// AddPeer adds the peer id connected over conn. The parties exchange
// their IDs and the peer must identify itself as id.
func (nw *Network) AddPeer(id int, conn *Conn) error {
	nw.m.Lock()
	_, ok := nw.Peers[id]
	nw.m.Unlock()
	if ok {
		return errors.Newf("p%d: peer %d already connected", nw.ID, id)
	}

	if err := conn.SendUint32(nw.ID); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	peerID, err := conn.ReceiveUint32()
	if err != nil {
		return err
	}
	if peerID != id {
		return errors.Newf("p%d: expected peer %d, got %d", nw.ID, id, peerID)
	}
	nw.log.Debugf("p%d: connected to peer %d", nw.ID, id)

	nw.m.Lock()
	nw.Peers[id] = &Peer{
		id:   id,
		conn: conn,
	}
	nw.m.Unlock()
	return nil
}

// Stats returns the I/O stats from the network.
func (nw *Network) Stats() IOStats {
	nw.m.Lock()
	defer nw.m.Unlock()

	result := NewIOStats()
	for _, peer := range nw.Peers {
		result = result.Add(peer.conn.Stats)
	}
	return result
}

func (nw *Network) peer(id int) (*Peer, error) {
	nw.m.Lock()
	defer nw.m.Unlock()

	peer, ok := nw.Peers[id]
	if !ok {
		return nil, errors.Newf("p%d: unknown peer %d", nw.ID, id)
	}
	return peer, nil
}

// Send sends the value v to the peer to.
func (nw *Network) Send(to int, v *tensor.Tensor) error {
	peer, err := nw.peer(to)
	if err != nil {
		return err
	}
	return peer.Send(v)
}

// Receive receives a value of the shape from the peer from.
func (nw *Network) Receive(from int, shape []int) (*tensor.Tensor, error) {
	peer, err := nw.peer(from)
	if err != nil {
		return nil, err
	}
	v, err := peer.conn.ReceiveTensor()
	if err != nil {
		return nil, err
	}
	if !slices.Equal(v.Shape, shape) {
		return nil, errors.Newf("p%d: received shape %v from %d, expected %v",
			nw.ID, v.Shape, from, shape)
	}
	return v, nil
}

// Peer implements a peer connection.
type Peer struct {
	id   int
	conn *Conn
}

// ID returns the party ID of the peer.
func (peer *Peer) ID() int {
	return peer.id
}

// Stats returns the I/O stats of the peer connection.
func (peer *Peer) Stats() IOStats {
	return peer.conn.Stats
}

// Close closes the peer connection.
func (peer *Peer) Close() error {
	return peer.conn.Close()
}

// Send sends the value v to the peer and flushes the connection.
func (peer *Peer) Send(v *tensor.Tensor) error {
	if err := peer.conn.SendTensor(v); err != nil {
		return err
	}
	return peer.conn.Flush()
}
