//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"errors"
	"testing"

	"github.com/markkurossi/rep3/tensor"
)

func TestEvaluateFixedPoint(t *testing.T) {
	b := NewBuilder(NewGraph(), 15)
	ty := b.TypeOf(SecretArith, 15, nil)
	x := b.Input(0, ty)
	y := b.Input(1, ty)
	b.Output(Subtract(b, x, y), 0)
	b.Output(Multiply(b, x, y), 1)

	out, err := Evaluate(b.Graph(), map[int]*tensor.Tensor{
		0: tensor.Scalar(EncodeFloat(0.5, 15)),
		1: tensor.Scalar(EncodeFloat(1.5, 15)),
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v := DecodeFloat(out[0].At(), 15); v != -1.0 {
		t.Errorf("0.5-1.5: got %v", v)
	}
	if v := DecodeFloat(out[1].At(), 15); v != 0.75 {
		t.Errorf("0.5*1.5: got %v", v)
	}
}

func TestEvaluateBits(t *testing.T) {
	b := NewBuilder(NewGraph(), 0)
	ty := b.TypeOf(Public, 0, nil)
	x := ToBits(b, b.Input(0, ty))
	y := ToBits(b, b.Input(1, ty))
	b.Output(Or(b, x, y), 0)

	out, err := Evaluate(b.Graph(), map[int]*tensor.Tensor{
		0: tensor.Scalar(114),
		1: tensor.Scalar(514),
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v := out[0].At(); v != 114|514 {
		t.Errorf("114|514: got %v", v)
	}
}

func TestEvaluateCompare(t *testing.T) {
	b := NewBuilder(NewGraph(), 8)
	ty := b.TypeOf(SecretArith, 8, []int{3})
	x := b.Input(0, ty)
	y := b.Input(1, ty)
	b.Output(Less(b, x, y), 0)
	b.Output(Equal(b, x, y), 1)
	b.Output(Max(b, x, y), 2)

	enc := func(vals ...float64) *tensor.Tensor {
		data := make([]uint64, len(vals))
		for i, v := range vals {
			data[i] = EncodeFloat(v, 8)
		}
		return tensor.New([]int{3}, data)
	}
	out, err := Evaluate(b.Graph(), map[int]*tensor.Tensor{
		0: enc(1, -2, 3),
		1: enc(2, -2, -1),
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !out[0].Equal(tensor.Ints([]int{3}, 1, 0, 0)) {
		t.Errorf("Less: %v", out[0])
	}
	if !out[1].Equal(tensor.Ints([]int{3}, 0, 1, 0)) {
		t.Errorf("Equal: %v", out[1])
	}
	if !out[2].Equal(enc(2, -2, 3)) {
		t.Errorf("Max: %v", out[2])
	}
}

func TestEvaluateErrors(t *testing.T) {
	b := NewBuilder(NewGraph(), 0)
	x := b.Input(0, b.TypeOf(Public, 0, []int{2}))
	b.Output(x, 0)
	b.Output(b.NegateP(x), 0)

	_, err := Evaluate(b.Graph(), nil)
	if !errors.Is(err, ErrMissingInput) {
		t.Errorf("missing input: got %v", err)
	}
	_, err = Evaluate(b.Graph(), map[int]*tensor.Tensor{
		0: tensor.Zeros([]int{3}),
	})
	if !errors.Is(err, ErrInputShape) {
		t.Errorf("input shape: got %v", err)
	}
	_, err = Evaluate(b.Graph(), map[int]*tensor.Tensor{
		0: tensor.Ints([]int{2}, 1, 2),
	})
	if !errors.Is(err, ErrInconsistentOutput) {
		t.Errorf("inconsistent output: got %v", err)
	}
	if _, err = Evaluate(b.Graph(), map[int]*tensor.Tensor{
		0: tensor.Zeros([]int{2}),
	}); err != nil {
		t.Errorf("equal duplicate outputs: %v", err)
	}
}
