//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/rss"
	"github.com/markkurossi/rep3/tensor"
)

// parseInputs parses the input arguments SLOT=V,V,... into plaintext
// input tensors of the slots of m.
func parseInputs(m *rss.IOMap, args []string) (
	map[int]*tensor.Tensor, error) {

	result := make(map[int]*tensor.Tensor)
	for _, arg := range args {
		idx := strings.IndexByte(arg, '=')
		if idx < 0 {
			return nil, errors.Newf("invalid input %q: expected SLOT=VALUES",
				arg)
		}
		index, err := strconv.Atoi(arg[:idx])
		if err != nil {
			return nil, errors.Wrapf(err, "input %q", arg)
		}
		slot, ok := m.Input(index)
		if !ok {
			return nil, errors.Newf("unknown input slot %d", index)
		}
		if _, ok := result[index]; ok {
			return nil, errors.Newf("input slot %d set more than once", index)
		}
		v, err := parseValues(slot, strings.Split(arg[idx+1:], ","))
		if err != nil {
			return nil, errors.Wrapf(err, "input slot %d", index)
		}
		result[index] = v
	}
	for _, slot := range m.Inputs {
		if _, ok := result[slot.Index]; !ok {
			return nil, errors.Newf("input slot %d not set", slot.Index)
		}
	}
	return result, nil
}

func parseValues(slot rss.Slot, values []string) (*tensor.Tensor, error) {
	n := tensor.NumElements(slot.Shape)
	if len(values) != n {
		return nil, errors.Newf("expected %d values, got %d", n, len(values))
	}
	data := make([]uint64, n)
	for i, str := range values {
		str = strings.TrimSpace(str)
		switch {
		case slot.Kind == hl.SecretBits:
			v, err := strconv.ParseUint(str, 0, 64)
			if err != nil {
				return nil, err
			}
			data[i] = v

		case slot.FixedPoint > 0:
			v, err := strconv.ParseFloat(str, 64)
			if err != nil {
				return nil, err
			}
			data[i] = hl.EncodeFloat(v, slot.FixedPoint)

		default:
			v, err := strconv.ParseInt(str, 0, 64)
			if err != nil {
				return nil, err
			}
			data[i] = uint64(v)
		}
	}
	return tensor.New(slot.Shape, data), nil
}

// formatOutput formats the output value by the type of its slot.
func formatOutput(slot rss.Slot, v *tensor.Tensor) string {
	return v.Format(func(e uint64) string {
		switch {
		case slot.Kind == hl.SecretBits:
			return fmt.Sprintf("%#x", e)
		case slot.FixedPoint > 0:
			return strconv.FormatFloat(hl.DecodeFloat(e, slot.FixedPoint),
				'g', -1, 64)
		default:
			return strconv.FormatInt(int64(e), 10)
		}
	})
}
