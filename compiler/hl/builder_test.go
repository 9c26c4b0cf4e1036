//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package hl

import (
	"slices"
	"testing"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/utils"
)

func expectICE(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*utils.InternalError); !ok {
			t.Errorf("%s: expected internal compiler error, got %v", name, r)
		}
	}()
	f()
}

func TestTypeRules(t *testing.T) {
	b := NewBuilder(NewGraph(), 15)
	g := b.Graph()

	a := b.Input(0, b.TypeOf(SecretArith, 15, []int{2, 3}))
	p := b.Input(1, b.TypeOf(Public, 15, []int{2, 3}))
	q := b.Input(2, b.TypeOf(Public, 10, []int{2, 3}))
	bits := b.Input(3, b.TypeOf(SecretBits, 0, []int{2, 3}))

	if g.Type(a).Shape != g.Type(p).Shape {
		t.Errorf("equal shapes are not interned to one handle")
	}

	m := b.MultiplyAP(a, p)
	if fp := g.Type(m).FixedPoint; fp != 30 {
		t.Errorf("multiply fixed point: got %d, expected 30", fp)
	}
	if k := g.Type(b.AddAP(a, p)).Kind; k != SecretArith {
		t.Errorf("add_ap kind: %v", k)
	}
	tr := b.TruncateA(m, 15)
	if fp := g.Type(tr).FixedPoint; fp != 15 {
		t.Errorf("truncate fixed point: got %d", fp)
	}
	if g.Type(b.A2B(a)).FixedPoint != 0 {
		t.Errorf("a2b keeps fixed point")
	}
	if g.Type(b.B2A(bits, 7)).FixedPoint != 7 {
		t.Errorf("b2a fixed point")
	}
	if b.ShiftRight(bits, 0) != bits {
		t.Errorf("shift_right by zero creates an operation")
	}

	expectICE(t, "add fixed point", func() { b.AddAP(a, q) })
	expectICE(t, "add kinds", func() { b.AddAA(a, p) })
	expectICE(t, "xor kinds", func() { b.XorBB(a, bits) })
	expectICE(t, "truncate zero", func() { b.TruncateA(a, 0) })
	expectICE(t, "truncate overflow", func() { b.TruncateA(a, 16) })
	expectICE(t, "constant secret", func() {
		b.Constant([]uint64{1}, b.TypeOf(SecretArith, 0, nil))
	})
	expectICE(t, "output type", func() {
		g.Type(b.Output(a, 0))
	})
}

func TestShapeRules(t *testing.T) {
	b := NewBuilder(NewGraph(), 0)
	g := b.Graph()

	x := b.Input(0, b.TypeOf(SecretArith, 0, []int{2, 3}))
	y := b.Input(1, b.TypeOf(SecretArith, 0, []int{3, 4}))

	if s := g.Shape(b.DotAA(x, y)); !slices.Equal(s, []int{2, 4}) {
		t.Errorf("dot shape: %v", s)
	}
	if s := g.Shape(b.Transpose(x, []int{1, 0})); !slices.Equal(s, []int{3, 2}) {
		t.Errorf("transpose shape: %v", s)
	}
	if s := g.Shape(b.Slice(x, []int{0, 0}, []int{2, 3}, []int{1, 2})); !slices.Equal(s, []int{2, 2}) {
		t.Errorf("slice shape: %v", s)
	}
	row := b.Input(2, b.TypeOf(SecretArith, 0, []int{1, 3}))
	if s := g.Shape(b.Broadcast(row, []int{0, 1}, []int{4, 3})); !slices.Equal(s, []int{4, 3}) {
		t.Errorf("broadcast shape: %v", s)
	}
	if s := g.Shape(b.Concat(0, x, row)); !slices.Equal(s, []int{3, 3}) {
		t.Errorf("concat shape: %v", s)
	}

	expectICE(t, "dot inner", func() { b.DotAA(x, x) })
	expectICE(t, "dot rank", func() { b.DotAA(b.Reshape(x, []int{6}), y) })
	expectICE(t, "reshape count", func() { b.Reshape(x, []int{5}) })
	expectICE(t, "negative stride", func() {
		b.Slice(x, []int{0, 0}, []int{2, 3}, []int{1, -1})
	})
	expectICE(t, "broadcast size", func() {
		b.Broadcast(x, []int{0, 1}, []int{2, 4})
	})
	expectICE(t, "broadcast order", func() {
		b.Broadcast(x, []int{1, 0}, []int{3, 2})
	})
	expectICE(t, "broadcast repeated axis", func() {
		b.Broadcast(row, []int{1, 1}, []int{3, 3})
	})
	expectICE(t, "permutation", func() { b.Transpose(x, []int{0, 0}) })
	expectICE(t, "concat axis", func() { b.Concat(1, x, row) })
	expectICE(t, "elementwise shape", func() { b.AddAA(x, y) })
}

func TestTopologicalOrder(t *testing.T) {
	b := NewBuilder(NewGraph(), 15)
	x := b.Input(0, b.TypeOf(SecretArith, 15, []int{4}))
	y := b.P2A(ConstantFloat(b, []float64{1, 2, 3, 4}, []int{4}))
	z := Multiply(b, Add(b, x, y), x)
	b.Output(Less(b, z, y), 0)

	g := b.Graph()
	for i := 0; i < g.Len(); i++ {
		h := graph.Handle(i)
		for _, op := range g.Operands(h) {
			if op >= h {
				t.Errorf("%v: operand %v is not older", h, op)
			}
		}
	}
}
