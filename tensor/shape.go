//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package tensor

import (
	"fmt"
	"slices"
)

// Broadcast broadcasts t into shape. Input axis i maps to output axis
// dims[i]; input axes of size 1 are repeated.
func (t *Tensor) Broadcast(dims, shape []int) *Tensor {
	if len(dims) != len(t.Shape) {
		panic(fmt.Sprintf("tensor.Broadcast: dims %v for shape %v",
			dims, t.Shape))
	}
	result := Zeros(shape)
	in := make([]int, len(t.Shape))
	pos := 0
	forEach(shape, func(idx []int) {
		for i, d := range dims {
			if t.Shape[i] == 1 {
				in[i] = 0
			} else {
				in[i] = idx[d]
			}
		}
		result.Data[pos] = t.At(in...)
		pos++
	})
	return result
}

// Reshape returns t with a new shape of the same element count.
func (t *Tensor) Reshape(shape []int) *Tensor {
	if NumElements(shape) != len(t.Data) {
		panic(fmt.Sprintf("tensor.Reshape: %v to %v", t.Shape, shape))
	}
	return New(shape, slices.Clone(t.Data))
}

// Slice returns the strided slice [start, end) of t. The strides
// argument may be nil for unit strides.
func (t *Tensor) Slice(start, end, strides []int) *Tensor {
	if len(start) != len(t.Shape) || len(end) != len(t.Shape) {
		panic(fmt.Sprintf("tensor.Slice: [%v:%v] for shape %v",
			start, end, t.Shape))
	}
	shape := make([]int, len(t.Shape))
	for i := range shape {
		s := 1
		if strides != nil {
			s = strides[i]
		}
		shape[i] = (end[i] - start[i] + s - 1) / s
	}
	result := Zeros(shape)
	in := make([]int, len(shape))
	pos := 0
	forEach(shape, func(idx []int) {
		for i := range idx {
			s := 1
			if strides != nil {
				s = strides[i]
			}
			in[i] = start[i] + idx[i]*s
		}
		result.Data[pos] = t.At(in...)
		pos++
	})
	return result
}

// Transpose permutes the axes of t. Input axis i becomes output axis
// perm[i].
func (t *Tensor) Transpose(perm []int) *Tensor {
	if len(perm) != len(t.Shape) {
		panic(fmt.Sprintf("tensor.Transpose: perm %v for shape %v",
			perm, t.Shape))
	}
	shape := make([]int, len(t.Shape))
	for i, p := range perm {
		shape[p] = t.Shape[i]
	}
	result := Zeros(shape)
	in := make([]int, len(shape))
	pos := 0
	forEach(shape, func(idx []int) {
		for i, p := range perm {
			in[i] = idx[p]
		}
		result.Data[pos] = t.At(in...)
		pos++
	})
	return result
}

// Concat concatenates the tensors along axis dim.
func Concat(dim int, ts ...*Tensor) *Tensor {
	if len(ts) == 0 {
		panic("tensor.Concat: no operands")
	}
	shape := slices.Clone(ts[0].Shape)
	shape[dim] = 0
	for _, t := range ts {
		shape[dim] += t.Shape[dim]
	}
	result := Zeros(shape)
	out := make([]int, len(shape))
	var base int
	for _, t := range ts {
		pos := 0
		forEach(t.Shape, func(idx []int) {
			copy(out, idx)
			out[dim] += base
			result.Set(t.Data[pos], out...)
			pos++
		})
		base += t.Shape[dim]
	}
	return result
}

// Matmul returns the matrix product of the rank-2 tensors a and b.
func Matmul(a, b *Tensor) *Tensor {
	if len(a.Shape) != 2 || len(b.Shape) != 2 || a.Shape[1] != b.Shape[0] {
		panic(fmt.Sprintf("tensor.Matmul: shapes %v and %v",
			a.Shape, b.Shape))
	}
	m, k, n := a.Shape[0], a.Shape[1], b.Shape[1]
	result := Zeros([]int{m, n})
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum uint64
			for l := 0; l < k; l++ {
				sum += a.Data[i*k+l] * b.Data[l*n+j]
			}
			result.Data[i*n+j] = sum
		}
	}
	return result
}
