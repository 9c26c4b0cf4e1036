//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"testing"

	"github.com/markkurossi/rep3/tensor"
)

func TestNetwork(t *testing.T) {
	n0 := NewNetwork(0, nil)
	n1 := NewNetwork(1, nil)
	c0, c1 := Pipe()

	errc := make(chan error)
	go func() {
		errc <- n1.AddPeer(0, c1)
	}()
	if err := n0.AddPeer(1, c0); err != nil {
		t.Fatalf("AddPeer: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("AddPeer: %v", err)
	}

	v := tensor.Ints([]int{2, 2}, 1, -2, 3, -4)
	go func() {
		errc <- n0.Send(1, v)
	}()
	got, err := n1.Receive(0, []int{2, 2})
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !got.Equal(v) {
		t.Errorf("Receive: got %v, expected %v", got, v)
	}
	if n0.Stats().Sent.Load() == 0 || n1.Stats().Recvd.Load() == 0 {
		t.Errorf("IOStats not updated")
	}

	go func() {
		errc <- n0.Send(1, v)
	}()
	if _, err := n1.Receive(0, []int{4}); err == nil {
		t.Errorf("shape mismatch not detected")
	}
	<-errc

	if err := n0.Send(2, v); err == nil {
		t.Errorf("unknown peer accepted")
	}

	n0.Abort()
	n1.Abort()
	n0.Close()
	n1.Close()
}

func TestHandshake(t *testing.T) {
	n0 := NewNetwork(0, nil)
	n2 := NewNetwork(2, nil)
	c0, c2 := Pipe()

	errc := make(chan error)
	go func() {
		errc <- n2.AddPeer(0, c2)
	}()
	if err := n0.AddPeer(1, c0); err == nil {
		t.Errorf("wrong peer ID accepted")
	}
	<-errc
}
