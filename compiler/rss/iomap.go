//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rss

import (
	"encoding/binary"
	"io"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/tensor"
)

// Slot describes an I/O slot of a lowered graph.
type Slot struct {
	Index      int
	Kind       hl.Kind
	FixedPoint uint8
	Shape      []int
}

// IOMap describes the input and output slots of a lowered graph.
// Public slots use the share tuple 0. Secret slots use the tuples 0,
// 1, and 2, one per share.
type IOMap struct {
	Inputs  []Slot
	Outputs []Slot
}

// Input returns the input slot index.
func (m *IOMap) Input(index int) (Slot, bool) {
	for _, slot := range m.Inputs {
		if slot.Index == index {
			return slot, true
		}
	}
	return Slot{}, false
}

// Share splits the plaintext inputs into share tuples. The random
// shares are read from rand.
func (m *IOMap) Share(inputs map[int]*tensor.Tensor, rand io.Reader) (
	local.Values, error) {

	result := make(local.Values)
	for _, slot := range m.Inputs {
		v, ok := inputs[slot.Index]
		if !ok {
			return nil, errors.Wrapf(hl.ErrMissingInput, "slot %d",
				slot.Index)
		}
		if !slices.Equal(v.Shape, slot.Shape) {
			return nil, errors.Wrapf(hl.ErrInputShape,
				"slot %d: got %v, expected %v", slot.Index, v.Shape,
				slot.Shape)
		}
		if !slot.Kind.Secret() {
			result[local.Key{Index: slot.Index}] = v
			continue
		}
		s0, err := random(v.Shape, rand)
		if err != nil {
			return nil, err
		}
		s1, err := random(v.Shape, rand)
		if err != nil {
			return nil, err
		}
		var s2 *tensor.Tensor
		if slot.Kind == hl.SecretBits {
			s2 = tensor.Xor(tensor.Xor(v, s0), s1)
		} else {
			s2 = tensor.Sub(tensor.Sub(v, s0), s1)
		}
		for tuple, s := range []*tensor.Tensor{s0, s1, s2} {
			result[local.Key{Index: slot.Index, Tuple: tuple}] = s
		}
	}
	return result, nil
}

func random(shape []int, rand io.Reader) (*tensor.Tensor, error) {
	t := tensor.Zeros(shape)
	buf := make([]byte, 8*len(t.Data))
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, errors.Wrap(err, "random shares")
	}
	for i := range t.Data {
		t.Data[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	return t, nil
}

// Reveal reconstructs the plaintext outputs from share tuples.
func (m *IOMap) Reveal(outputs local.Values) (map[int]*tensor.Tensor, error) {
	result := make(map[int]*tensor.Tensor)
	for _, slot := range m.Outputs {
		if !slot.Kind.Secret() {
			v, ok := outputs[local.Key{Index: slot.Index}]
			if !ok {
				return nil, errors.Newf("missing output slot %d", slot.Index)
			}
			result[slot.Index] = v
			continue
		}
		var v *tensor.Tensor
		for tuple := 0; tuple < local.NumParties; tuple++ {
			s, ok := outputs[local.Key{Index: slot.Index, Tuple: tuple}]
			if !ok {
				return nil, errors.Newf("missing output slot %d tuple %d",
					slot.Index, tuple)
			}
			switch {
			case v == nil:
				v = s
			case slot.Kind == hl.SecretBits:
				v = tensor.Xor(v, s)
			default:
				v = tensor.Add(v, s)
			}
		}
		result[slot.Index] = v
	}
	return result, nil
}
