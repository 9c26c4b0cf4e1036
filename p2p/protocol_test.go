//
// protocol_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"
	"testing"

	"github.com/markkurossi/rep3/tensor"
)

var tests = []interface{}{
	uint32(44),
	make([]uint64, 64*1024),
	[]uint64{1, 1 << 63, 0xdeadbeef},
	tensor.Ints([]int{2, 3}, 1, -2, 3, -4, 5, -6),
	tensor.Scalar(114514),
	tensor.Iota([]int{300, 300}, 7),
}

func writer(c *Conn) {
	for _, test := range tests {
		switch d := test.(type) {
		case uint32:
			if err := c.SendUint32(int(d)); err != nil {
				fmt.Printf("SendUint32: %v\n", err)
			}

		case []uint64:
			if err := c.SendUint64s(d); err != nil {
				fmt.Printf("SendUint64s: %v\n", err)
			}

		case *tensor.Tensor:
			if err := c.SendTensor(d); err != nil {
				fmt.Printf("SendTensor: %v\n", err)
			}

		default:
			fmt.Printf("writer: invalid data: %v(%T)\n", test, test)
		}
	}
	if err := c.Flush(); err != nil {
		fmt.Printf("Flush: %v\n", err)
	}
}

func TestProtocol(t *testing.T) {
	cw, c := Pipe()

	go writer(cw)

	for _, test := range tests {
		switch d := test.(type) {
		case uint32:
			v, err := c.ReceiveUint32()
			if err != nil {
				t.Fatalf("ReceiveUint32: %v", err)
			}
			if v != int(d) {
				t.Errorf("ReceiveUint32: got %v, expected %v", v, d)
			}

		case []uint64:
			v := make([]uint64, len(d))
			if err := c.ReceiveUint64s(v); err != nil {
				t.Fatalf("ReceiveUint64s: %v", err)
			}
			for i := range v {
				if v[i] != d[i] {
					t.Errorf("ReceiveUint64s: got %v, expected %v", v, d)
					break
				}
			}

		case *tensor.Tensor:
			v, err := c.ReceiveTensor()
			if err != nil {
				t.Fatalf("ReceiveTensor: %v", err)
			}
			if !v.Equal(d) {
				t.Errorf("ReceiveTensor: got %v, expected %v", v.Shape, d.Shape)
			}

		default:
			t.Errorf("invalid value: %v(%T)", test, test)
		}
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
