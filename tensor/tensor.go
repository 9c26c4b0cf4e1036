//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package tensor implements dense N-dimensional tensors over the ring
// of 64-bit integers. Arithmetic wraps modulo 2^64 and signed
// operations interpret elements as two's complement values.
package tensor

import (
	"fmt"
	"slices"
	"strings"
)

// Tensor is a dense row-major tensor. A tensor with empty shape is a
// scalar with exactly one element.
type Tensor struct {
	Shape []int
	Data  []uint64
}

// NumElements returns the number of elements in a tensor of the
// argument shape.
func NumElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// New creates a tensor from shape and data. The function panics if
// the data length does not match the shape.
func New(shape []int, data []uint64) *Tensor {
	if len(data) != NumElements(shape) {
		panic(fmt.Sprintf("tensor.New: %d elements for shape %v",
			len(data), shape))
	}
	return &Tensor{
		Shape: slices.Clone(shape),
		Data:  data,
	}
}

// Zeros creates a zero tensor.
func Zeros(shape []int) *Tensor {
	return New(shape, make([]uint64, NumElements(shape)))
}

// Scalar creates a scalar tensor.
func Scalar(v uint64) *Tensor {
	return New(nil, []uint64{v})
}

// Ints creates a tensor from signed values.
func Ints(shape []int, values ...int64) *Tensor {
	data := make([]uint64, len(values))
	for i, v := range values {
		data[i] = uint64(v)
	}
	return New(shape, data)
}

// Iota creates a tensor whose elements are start, start+1, ... in
// row-major order.
func Iota(shape []int, start uint64) *Tensor {
	t := Zeros(shape)
	for i := range t.Data {
		t.Data[i] = start + uint64(i)
	}
	return t
}

// Rank returns the number of axes.
func (t *Tensor) Rank() int {
	return len(t.Shape)
}

// Strides returns the row-major element strides of the tensor.
func (t *Tensor) Strides() []int {
	return strides(t.Shape)
}

func strides(shape []int) []int {
	result := make([]int, len(shape))
	s := 1
	for i := len(shape) - 1; i >= 0; i-- {
		result[i] = s
		s *= shape[i]
	}
	return result
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: index %v for shape %v", idx, t.Shape))
	}
	var off, s int = 0, 1
	for i := len(idx) - 1; i >= 0; i-- {
		if idx[i] < 0 || idx[i] >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range %v",
				idx, t.Shape))
		}
		off += idx[i] * s
		s *= t.Shape[i]
	}
	return off
}

// At returns the element at the multi-index idx.
func (t *Tensor) At(idx ...int) uint64 {
	return t.Data[t.offset(idx)]
}

// Int64 returns the element at idx as a signed value.
func (t *Tensor) Int64(idx ...int) int64 {
	return int64(t.At(idx...))
}

// Set sets the element at idx.
func (t *Tensor) Set(v uint64, idx ...int) {
	t.Data[t.offset(idx)] = v
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{
		Shape: slices.Clone(t.Shape),
		Data:  slices.Clone(t.Data),
	}
}

// Equal tests if the tensors have the same shape and elements.
func (t *Tensor) Equal(o *Tensor) bool {
	return slices.Equal(t.Shape, o.Shape) && slices.Equal(t.Data, o.Data)
}

func (t *Tensor) String() string {
	var sb strings.Builder
	t.format(&sb, 0, 0, func(v uint64) string {
		return fmt.Sprintf("%d", int64(v))
	})
	return sb.String()
}

// Format formats the tensor with the element formatter f.
func (t *Tensor) Format(f func(v uint64) string) string {
	var sb strings.Builder
	t.format(&sb, 0, 0, f)
	return sb.String()
}

func (t *Tensor) format(sb *strings.Builder, axis, off int,
	f func(v uint64) string) {

	if axis == len(t.Shape) {
		sb.WriteString(f(t.Data[off]))
		return
	}
	stride := NumElements(t.Shape[axis+1:])
	sb.WriteRune('[')
	for i := 0; i < t.Shape[axis]; i++ {
		if i > 0 {
			sb.WriteRune(' ')
		}
		t.format(sb, axis+1, off+i*stride, f)
	}
	sb.WriteRune(']')
}

// forEach calls f for each multi-index of shape in row-major order.
// The index slice is reused between calls.
func forEach(shape []int, f func(idx []int)) {
	n := NumElements(shape)
	if n == 0 {
		return
	}
	idx := make([]int, len(shape))
	for i := 0; i < n; i++ {
		f(idx)
		for a := len(idx) - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < shape[a] {
				break
			}
			idx[a] = 0
		}
	}
}
