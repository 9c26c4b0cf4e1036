//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package tensor

import (
	"math/bits"
	"testing"
)

func TestIndexing(t *testing.T) {
	x := Iota([]int{2, 3}, 1)
	if x.At(0, 0) != 1 || x.At(1, 2) != 6 {
		t.Fatalf("At: got %v", x)
	}
	x.Set(42, 1, 0)
	if x.Data[3] != 42 {
		t.Errorf("Set: got %v", x.Data)
	}
	if s := Scalar(7); s.At() != 7 || len(s.Shape) != 0 {
		t.Errorf("scalar: %v", s)
	}
}

func TestElementwise(t *testing.T) {
	a := Ints([]int{2}, 114, -514)
	b := Ints([]int{2}, 1919, 810)

	if got := Add(a, b); got.Int64(0) != 114+1919 || got.Int64(1) != -514+810 {
		t.Errorf("Add: %v", got)
	}
	if got := Sub(a, b); got.Int64(0) != 114-1919 {
		t.Errorf("Sub: %v", got)
	}
	if got := Mul(a, b); got.Int64(1) != -514*810 {
		t.Errorf("Mul: %v", got)
	}
	if got := a.Neg(); got.Int64(0) != -114 {
		t.Errorf("Neg: %v", got)
	}
	if got := a.AShiftRight(1); got.Int64(1) != -257 {
		t.Errorf("AShiftRight: %v", got)
	}
	if got := a.LShiftRight(63); got.At(1) != 1 {
		t.Errorf("LShiftRight: %v", got)
	}
	if got := a.BitReverse(); got.At(0) != bits.Reverse64(114) {
		t.Errorf("BitReverse: %v", got)
	}
	inv := Ints([]int{2}, 114*1024, 514*1024).Inverse(1024)
	if inv.Int64(0) != 1024/114 || inv.Int64(1) != 1024/514 {
		t.Errorf("Inverse: %v", inv)
	}
}

func TestStructural(t *testing.T) {
	x := Iota([]int{2, 3}, 0)

	tr := x.Transpose([]int{1, 0})
	if tr.Shape[0] != 3 || tr.At(2, 1) != x.At(1, 2) {
		t.Errorf("Transpose: %v", tr)
	}

	sl := x.Slice([]int{0, 0}, []int{2, 3}, []int{1, 2})
	if sl.Shape[1] != 2 || sl.At(1, 1) != 5 {
		t.Errorf("Slice: %v", sl)
	}

	row := Iota([]int{3}, 10)
	bc := row.Broadcast([]int{1}, []int{2, 3})
	if bc.At(1, 2) != 12 || bc.At(0, 0) != 10 {
		t.Errorf("Broadcast: %v", bc)
	}
	sc := Scalar(5).Broadcast(nil, []int{2, 2})
	if sc.At(1, 1) != 5 {
		t.Errorf("Broadcast scalar: %v", sc)
	}

	cc := Concat(1, x, Iota([]int{2, 1}, 100))
	if cc.Shape[1] != 4 || cc.At(1, 3) != 101 || cc.At(1, 2) != 5 {
		t.Errorf("Concat: %v", cc)
	}

	rs := x.Reshape([]int{3, 2})
	if rs.At(2, 1) != 5 {
		t.Errorf("Reshape: %v", rs)
	}
}

func TestMatmul(t *testing.T) {
	a := Ints([]int{2, 1}, 114, 514)
	b := Ints([]int{1, 2}, 1919, 810)
	got := Matmul(a, b)
	expected := Ints([]int{2, 2}, 218766, 92340, 986366, 416340)
	if !got.Equal(expected) {
		t.Errorf("Matmul: got %v, expected %v", got, expected)
	}
}

func TestString(t *testing.T) {
	x := Ints([]int{2, 2}, 1, -2, 3, 4)
	if s := x.String(); s != "[[1 -2] [3 4]]" {
		t.Errorf("String: got %q", s)
	}
}
