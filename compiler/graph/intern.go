//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package graph

import (
	"slices"

	"github.com/markkurossi/rep3/compiler/utils"
)

// ShapeRef references an interned axis-size list.
type ShapeRef int32

// SizesRef references an interned index list such as broadcast
// dimensions, slice bounds, or transpose permutations.
type SizesRef int32

// DenseRef references an interned flat constant data array.
type DenseRef int32

// Element defines the element types of interned lists.
type Element interface {
	~int | ~uint64
}

const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

// Interner stores lists by content: pushing a list equal to an
// already stored one returns the existing handle.
type Interner[E Element, H ~int32] struct {
	items  [][]E
	bucket map[uint64][]H
}

func hash[E Element](list []E) uint64 {
	h := fnvOffset
	mix := func(v uint64) {
		for i := 0; i < 8; i++ {
			h ^= v & 0xff
			h *= fnvPrime
			v >>= 8
		}
	}
	mix(uint64(len(list)))
	for _, e := range list {
		mix(uint64(e))
	}
	return h
}

// Push interns the list and returns its handle. The table keeps a
// private copy of the list.
func (in *Interner[E, H]) Push(list []E) H {
	if in.bucket == nil {
		in.bucket = make(map[uint64][]H)
	}
	key := hash(list)
	for _, h := range in.bucket[key] {
		if slices.Equal(in.items[h], list) {
			return h
		}
	}
	h := H(len(in.items))
	in.items = append(in.items, slices.Clone(list))
	in.bucket[key] = append(in.bucket[key], h)
	return h
}

// Get returns the list of the handle h. The result must not be
// modified.
func (in *Interner[E, H]) Get(h H) []E {
	if h < 0 || int(h) >= len(in.items) {
		utils.ICE("invalid attribute handle %d", h)
	}
	return in.items[h]
}

// Len returns the number of distinct lists.
func (in *Interner[E, H]) Len() int {
	return len(in.items)
}

// Attrs holds the attribute tables of one graph instance.
type Attrs struct {
	shapes Interner[int, ShapeRef]
	sizes  Interner[int, SizesRef]
	dense  Interner[uint64, DenseRef]
}

// PushShape interns an axis-size list.
func (a *Attrs) PushShape(shape []int) ShapeRef {
	for _, d := range shape {
		if d < 0 {
			utils.ICE("negative axis size in shape %v", shape)
		}
	}
	return a.shapes.Push(shape)
}

// Shape returns the axis sizes of the shape reference.
func (a *Attrs) Shape(ref ShapeRef) []int {
	return a.shapes.Get(ref)
}

// PushSizes interns an index list.
func (a *Attrs) PushSizes(sizes []int) SizesRef {
	return a.sizes.Push(sizes)
}

// Sizes returns the index list of the reference.
func (a *Attrs) Sizes(ref SizesRef) []int {
	return a.sizes.Get(ref)
}

// PushDense interns constant data.
func (a *Attrs) PushDense(data []uint64) DenseRef {
	return a.dense.Push(data)
}

// Dense returns the constant data of the reference.
func (a *Attrs) Dense(ref DenseRef) []uint64 {
	return a.dense.Get(ref)
}
