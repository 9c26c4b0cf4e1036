//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/rep3/compiler/aby3"
	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/compiler/rss"
	"github.com/markkurossi/rep3/prg"
	"github.com/markkurossi/rep3/tensor"
)

func program() *hl.Graph {
	b := hl.NewBuilder(hl.NewGraph(), 0)
	x := b.Input(0, b.TypeOf(hl.SecretArith, 0, []int{2, 2}))
	y := b.Input(1, b.TypeOf(hl.SecretArith, 0, []int{2, 2}))
	p := b.Input(2, b.TypeOf(hl.Public, 0, []int{2, 2}))

	b.Output(b.DotAA(x, y), 0)
	b.Output(b.MultiplyAP(x, p), 1)
	b.Output(b.B2A(b.AndBB(b.A2B(x), b.A2B(y)), 0), 2)
	b.Output(p, 3)
	return b.Graph()
}

func inputs() map[int]*tensor.Tensor {
	return map[int]*tensor.Tensor{
		0: tensor.Ints([]int{2, 2}, 1, -2, 3, 114514),
		1: tensor.Ints([]int{2, 2}, 5, 6, -7, 1919),
		2: tensor.Ints([]int{2, 2}, 9, 10, 11, 12),
	}
}

func TestRun(t *testing.T) {
	for _, proto := range []rss.Protocol{rss.NewGeneric(), aby3.New()} {
		t.Run(proto.Name(), func(t *testing.T) {
			src := program()
			g, iomap, err := rss.NewLowering(src, proto, nil).Lower()
			require.NoError(t, err)

			shares, err := iomap.Share(inputs(),
				rand.NewChaCha8([32]byte{1}))
			require.NoError(t, err)

			expected, err := local.NewExecutor(g, prg.Counter{}).Run(shares)
			require.NoError(t, err)

			out, report, err := Run(context.Background(), g, shares,
				prg.Counter{})
			require.NoError(t, err)
			require.Len(t, out, len(expected))
			for k, v := range expected {
				require.Equal(t, v, out[k], "output %v", k)
			}

			result, err := iomap.Reveal(out)
			require.NoError(t, err)
			plain, err := hl.Evaluate(src, inputs())
			require.NoError(t, err)
			for i, v := range plain {
				require.Equal(t, v, result[i], "output %d", i)
			}

			var total int
			for i, p := range report.Parties {
				require.Equal(t, i, p.ID)
				require.NotZero(t, p.IO.Sent.Load())
				total += p.Ops
			}
			require.Equal(t, g.Len(), total)

			var buf bytes.Buffer
			report.Print(&buf)
			require.True(t, strings.Contains(buf.String(), Name(2)))
			require.True(t, strings.Contains(buf.String(), "Total"))
		})
	}
}

func TestRunChaCha20(t *testing.T) {
	src := program()
	g, iomap, err := rss.NewLowering(src, aby3.New(), nil).Lower()
	require.NoError(t, err)

	shares, err := iomap.Share(inputs(), rand.NewChaCha8([32]byte{2}))
	require.NoError(t, err)

	source, err := prg.NewChaCha20(make([]byte, prg.KeySize))
	require.NoError(t, err)

	out, _, err := Run(context.Background(), g, shares, source)
	require.NoError(t, err)

	result, err := iomap.Reveal(out)
	require.NoError(t, err)
	plain, err := hl.Evaluate(src, inputs())
	require.NoError(t, err)
	require.Equal(t, plain, result)
}

func TestRunMissingInput(t *testing.T) {
	g, _, err := rss.NewLowering(program(), rss.NewGeneric(), nil).Lower()
	require.NoError(t, err)

	_, _, err = Run(context.Background(), g, local.Values{}, prg.Counter{})
	require.ErrorIs(t, err, hl.ErrMissingInput)
}

func TestRunCanceled(t *testing.T) {
	g, iomap, err := rss.NewLowering(program(), rss.NewGeneric(), nil).Lower()
	require.NoError(t, err)
	shares, err := iomap.Share(inputs(), rand.NewChaCha8([32]byte{3}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = Run(ctx, g, shares, prg.Counter{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFileSize(t *testing.T) {
	require.Equal(t, "512B", FileSize(512).String())
	require.Equal(t, "2kB", FileSize(2048).String())
	require.Equal(t, "3MB", FileSize(3*1000*1000+1).String())
	require.Equal(t, "P¹", Name(1))
}
