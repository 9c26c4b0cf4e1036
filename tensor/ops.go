//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package tensor

import (
	"fmt"
	"math/bits"
	"slices"
)

func (t *Tensor) unary(f func(v uint64) uint64) *Tensor {
	result := &Tensor{
		Shape: slices.Clone(t.Shape),
		Data:  make([]uint64, len(t.Data)),
	}
	for i, v := range t.Data {
		result.Data[i] = f(v)
	}
	return result
}

func binary(name string, a, b *Tensor, f func(a, b uint64) uint64) *Tensor {
	if !slices.Equal(a.Shape, b.Shape) {
		panic(fmt.Sprintf("tensor.%s: shape mismatch %v and %v",
			name, a.Shape, b.Shape))
	}
	result := &Tensor{
		Shape: slices.Clone(a.Shape),
		Data:  make([]uint64, len(a.Data)),
	}
	for i := range a.Data {
		result.Data[i] = f(a.Data[i], b.Data[i])
	}
	return result
}

// Add returns a+b.
func Add(a, b *Tensor) *Tensor {
	return binary("Add", a, b, func(a, b uint64) uint64 { return a + b })
}

// Sub returns a-b.
func Sub(a, b *Tensor) *Tensor {
	return binary("Sub", a, b, func(a, b uint64) uint64 { return a - b })
}

// Mul returns the elementwise product a*b.
func Mul(a, b *Tensor) *Tensor {
	return binary("Mul", a, b, func(a, b uint64) uint64 { return a * b })
}

// Xor returns a^b.
func Xor(a, b *Tensor) *Tensor {
	return binary("Xor", a, b, func(a, b uint64) uint64 { return a ^ b })
}

// And returns a&b.
func And(a, b *Tensor) *Tensor {
	return binary("And", a, b, func(a, b uint64) uint64 { return a & b })
}

// Neg returns -t.
func (t *Tensor) Neg() *Tensor {
	return t.unary(func(v uint64) uint64 { return -v })
}

// Not returns the bitwise complement of t.
func (t *Tensor) Not() *Tensor {
	return t.unary(func(v uint64) uint64 { return ^v })
}

// BitReverse reverses the bit order of every element.
func (t *Tensor) BitReverse() *Tensor {
	return t.unary(bits.Reverse64)
}

// AShiftRight shifts every element arithmetically right by n bits.
func (t *Tensor) AShiftRight(n uint) *Tensor {
	return t.unary(func(v uint64) uint64 { return uint64(int64(v) >> n) })
}

// LShiftRight shifts every element logically right by n bits.
func (t *Tensor) LShiftRight(n uint) *Tensor {
	return t.unary(func(v uint64) uint64 { return v >> n })
}

// ShiftLeft shifts every element left by n bits.
func (t *Tensor) ShiftLeft(n uint) *Tensor {
	return t.unary(func(v uint64) uint64 { return v << n })
}

// Inverse computes the fixed-point reciprocal scale*scale/v with
// signed division. Zero elements map to zero.
func (t *Tensor) Inverse(scale int64) *Tensor {
	num := scale * scale
	return t.unary(func(v uint64) uint64 {
		if v == 0 {
			return 0
		}
		return uint64(num / int64(v))
	})
}
