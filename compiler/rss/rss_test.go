//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package rss

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/rep3/compiler/graph"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/prg"
	"github.com/markkurossi/rep3/tensor"
)

func lower(t *testing.T, g *hl.Graph, proto Protocol) (*local.Graph, *IOMap) {
	t.Helper()
	lg, iomap, err := NewLowering(g, proto, nil).Lower()
	require.NoError(t, err)
	return lg, iomap
}

func run(t *testing.T, g *hl.Graph, proto Protocol,
	inputs map[int]*tensor.Tensor) map[int]*tensor.Tensor {

	t.Helper()
	lg, iomap := lower(t, g, proto)
	shares, err := iomap.Share(inputs, rand.NewChaCha8([32]byte{42}))
	require.NoError(t, err)
	out, err := local.NewExecutor(lg, prg.Counter{}).Run(shares)
	require.NoError(t, err)
	result, err := iomap.Reveal(out)
	require.NoError(t, err)
	return result
}

func TestMultiply(t *testing.T) {
	b := hl.NewBuilder(hl.NewGraph(), 0)
	shape := []int{1}
	x := b.Input(0, b.TypeOf(hl.SecretArith, 0, shape))
	y := b.Input(1, b.TypeOf(hl.SecretArith, 0, shape))
	b.Output(b.MultiplyAA(x, y), 0)

	result := run(t, b.Graph(), NewGeneric(), map[int]*tensor.Tensor{
		0: tensor.Ints(shape, 114514),
		1: tensor.Ints(shape, 271828),
	})
	require.Equal(t, int64(114514*271828), result[0].Int64(0))
}

func TestMatmul(t *testing.T) {
	b := hl.NewBuilder(hl.NewGraph(), 0)
	x := b.Input(0, b.TypeOf(hl.SecretArith, 0, []int{2, 1}))
	y := b.Input(1, b.TypeOf(hl.SecretArith, 0, []int{1, 2}))
	b.Output(b.DotAA(x, y), 0)

	result := run(t, b.Graph(), NewGeneric(), map[int]*tensor.Tensor{
		0: tensor.Ints([]int{2, 1}, 114, 514),
		1: tensor.Ints([]int{1, 2}, 1919, 810),
	})
	require.Equal(t, tensor.Ints([]int{2, 2}, 218766, 92340, 986366, 416340),
		result[0])
}

func TestBits(t *testing.T) {
	b := hl.NewBuilder(hl.NewGraph(), 0)
	shape := []int{2}
	x := b.Input(0, b.TypeOf(hl.SecretBits, 0, shape))
	y := b.Input(1, b.TypeOf(hl.SecretBits, 0, shape))
	b.Output(b.AndBB(x, y), 0)
	b.Output(b.XorBB(x, y), 1)
	b.Output(b.NotB(x), 2)

	result := run(t, b.Graph(), NewGeneric(), map[int]*tensor.Tensor{
		0: tensor.Ints(shape, 114, -1),
		1: tensor.Ints(shape, 514, 1919),
	})
	require.Equal(t, tensor.Ints(shape, 114&514, 1919), result[0])
	require.Equal(t, tensor.Ints(shape, 114^514, ^1919), result[1])
	require.Equal(t, tensor.Ints(shape, ^114, 0), result[2])
}

func TestRedundancy(t *testing.T) {
	b := hl.NewBuilder(hl.NewGraph(), 0)
	x := b.Input(0, b.TypeOf(hl.SecretArith, 0, []int{3}))
	p := b.Input(1, b.TypeOf(hl.Public, 0, []int{3}))
	b.Output(b.AddAP(x, p), 0)

	lg, iomap := lower(t, b.Graph(), NewGeneric())
	require.Len(t, lg.Outputs(), 2*local.NumParties)

	tuples := make(map[int]int)
	for _, out := range lg.Outputs() {
		tuples[out.Tuple]++
	}
	for tuple := 0; tuple < local.NumParties; tuple++ {
		require.Equal(t, 2, tuples[tuple], "tuple %d", tuple)
	}

	shares, err := iomap.Share(map[int]*tensor.Tensor{
		0: tensor.Ints([]int{3}, 1, 2, 3),
		1: tensor.Ints([]int{3}, 10, 20, 30),
	}, rand.NewChaCha8([32]byte{}))
	require.NoError(t, err)

	// Share 1 is an input of parties 0 and 1. A corrupted copy on
	// party 1 makes the two writes of output tuple 1 disagree.
	corrupted := make(local.Values)
	for k, v := range shares {
		corrupted[k] = v
	}
	key := local.Key{Index: 0, Tuple: 1}
	corrupted[key] = tensor.Add(shares[key], tensor.Ints([]int{3}, 1, 1, 1))

	merged := make(local.Values)
	for party, in := range []local.Values{shares, corrupted} {
		out, err := local.NewPartyExecutor(lg, party, prg.Counter{},
			noTransport{}).Run(in)
		require.NoError(t, err)
		if party == 0 {
			require.NoError(t, merged.Merge(out))
			continue
		}
		require.ErrorIs(t, merged.Merge(out), local.ErrInconsistentOutput)
	}
}

type noTransport struct{}

func (noTransport) Send(to int, v *tensor.Tensor) error {
	return errors.New("unexpected send")
}

func (noTransport) Receive(from int, shape []int) (*tensor.Tensor, error) {
	return nil, errors.New("unexpected receive")
}

func conversionValues() *tensor.Tensor {
	values := make([]int64, 0, 10010)
	for i := int64(0); i < 10000; i++ {
		values = append(values, i)
	}
	values = append(values, -1, -2, -114514, 1<<62, -1<<63,
		1<<63-1, 271828, -271828, 3, -3)
	return tensor.Ints([]int{len(values)}, values...)
}

func testConversions(t *testing.T, proto Protocol) {
	x := conversionValues()

	b := hl.NewBuilder(hl.NewGraph(), 0)
	in := b.Input(0, b.TypeOf(hl.SecretArith, 0, x.Shape))
	bits := b.A2B(in)
	b.Output(bits, 0)
	b.Output(b.B2A(bits, 0), 1)

	result := run(t, b.Graph(), proto, map[int]*tensor.Tensor{0: x})
	require.True(t, x.Equal(result[0]), "a2b")
	require.True(t, x.Equal(result[1]), "b2a")
}

func TestConversions(t *testing.T) {
	testConversions(t, NewGeneric())
}

func testTruncate(t *testing.T, proto Protocol) {
	shape := []int{6}
	x := tensor.Ints(shape, 114514<<15, -114514<<15, 1<<40+12345,
		-(1<<40 + 54321), 32767, -32769)

	b := hl.NewBuilder(hl.NewGraph(), 15)
	in := b.Input(0, b.TypeOf(hl.SecretArith, 15, shape))
	for i := 0; i < local.NumParties; i++ {
		b.Output(b.TruncateA(in, 15), i)
	}
	result := run(t, b.Graph(), proto, map[int]*tensor.Tensor{0: x})

	expected := x.AShiftRight(15)
	for i := 0; i < local.NumParties; i++ {
		for j := range expected.Data {
			diff := result[i].Int64(j) - expected.Int64(j)
			require.LessOrEqual(t, diff, int64(1), "output %d[%d]", i, j)
			require.GreaterOrEqual(t, diff, int64(-1), "output %d[%d]", i, j)
		}
	}
}

func TestTruncate(t *testing.T) {
	testTruncate(t, NewGeneric())
}

func TestCombinerRotates(t *testing.T) {
	b := hl.NewBuilder(hl.NewGraph(), 15)
	in := b.Input(0, b.TypeOf(hl.SecretArith, 15, []int{1}))
	for i := 0; i < local.NumParties; i++ {
		b.Output(b.TruncateA(in, 15), i)
	}
	lg, _ := lower(t, b.Graph(), NewGeneric())
	stats := NewStats(lg)
	for from := 0; from < local.NumParties; from++ {
		require.Equal(t, 1, stats.Sent(from), "p%d", from)
	}
}

// testPublicSecret checks that the lowered graph computes the same
// values as the plaintext evaluator.
func testPublicSecret(t *testing.T, proto Protocol) {
	b := hl.NewBuilder(hl.NewGraph(), 8)
	shape := []int{2, 2}
	sa := b.Input(0, b.TypeOf(hl.SecretArith, 8, shape))
	pa := b.Input(1, b.TypeOf(hl.Public, 8, shape))

	sum := hl.Add(b, sa, pa)
	b.Output(sum, 0)
	b.Output(hl.Add(b, b.P2A(pa), sa), 1)
	b.Output(b.MultiplyAP(sa, pa), 2)
	b.Output(b.Transpose(b.Slice(sum, []int{0, 1}, []int{2, 2}, nil),
		[]int{1, 0}), 3)
	b.Output(b.Concat(0, sa, b.NegateA(sa)), 4)
	b.Output(b.DotAP(sa, b.Inverse(pa)), 5)
	b.Output(hl.Less(b, sa, pa), 6)
	b.Output(hl.Max(b, sa, b.P2A(pa)), 7)
	b.Output(b.Broadcast(b.Reshape(pa, []int{4}), []int{1},
		[]int{2, 4}), 8)
	b.Output(b.BitReverse(b.ShiftRight(b.A2B(sa), 3)), 9)

	inputs := map[int]*tensor.Tensor{
		0: tensor.Ints(shape, 1<<8, -3<<8, 5<<7, 7),
		1: tensor.Ints(shape, 2<<8, -3<<8, 1<<8, -9<<8),
	}
	expected, err := hl.Evaluate(b.Graph(), inputs)
	require.NoError(t, err)

	result := run(t, b.Graph(), proto, inputs)
	require.Len(t, result, len(expected))
	for slot, v := range expected {
		require.Equal(t, v, result[slot], "slot %d", slot)
	}
}

func TestPublicSecret(t *testing.T) {
	testPublicSecret(t, NewGeneric())
}

func TestKoggeStone(t *testing.T) {
	b := local.NewBuilder(local.NewGraph())
	var x, y Cipher
	for i := range x {
		for j := range x[i] {
			tt := b.TypeOf(i, []int{1})
			x[i][j] = b.Input(0, j, tt)
			y[i][j] = b.Input(1, j, tt)
		}
	}
	var ands int
	KoggeStone(b, x, y, func(l, r Cipher) Cipher {
		ands++
		return l.Zip(r, b.And)
	})
	// The generate AND, six carry rounds and five propagate rounds.
	require.Equal(t, 12, ands)
}

func TestStats(t *testing.T) {
	b := hl.NewBuilder(hl.NewGraph(), 0)
	x := b.Input(0, b.TypeOf(hl.SecretArith, 0, []int{4}))
	b.Output(b.MultiplyAA(x, x), 0)

	lg, _ := lower(t, b.Graph(), NewGeneric())
	stats := NewStats(lg)
	require.Equal(t, 1, stats.Rounds)
	for i := 0; i < local.NumParties; i++ {
		require.Equal(t, 4, stats.Sent(i))
		require.Equal(t, 8, stats.Random[i])
		require.Equal(t, 1, stats.Messages[i][Prev(i)])
	}

	var sb strings.Builder
	stats.Print(&sb)
	require.Contains(t, sb.String(), "multiply")
	require.Contains(t, sb.String(), "rounds: 1")
}

func TestAnnotate(t *testing.T) {
	b := hl.NewBuilder(hl.NewGraph(), 0)
	x := b.Input(0, b.TypeOf(hl.Public, 0, nil))
	b.Output(b.P2A(x), 0)

	l := NewLowering(b.Graph(), NewGeneric(), nil)
	lg, _, err := l.Lower()
	require.NoError(t, err)
	require.Equal(t, graph.Handle(0), l.Origin(0))
	require.Equal(t, graph.Handle(2), l.Origin(graph.Handle(lg.Len()-1)))
	require.Equal(t, graph.Invalid, l.Origin(graph.Handle(lg.Len())))

	var sb strings.Builder
	lg.PP(&sb, l.Annotate())
	require.Contains(t, sb.String(), "// %1 p2a")
}
