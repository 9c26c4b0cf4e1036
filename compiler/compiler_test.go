//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package compiler

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/rep3/compiler/hl"
	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/compiler/utils"
	"github.com/markkurossi/rep3/prg"
	"github.com/markkurossi/rep3/tensor"
)

type buffer struct {
	bytes.Buffer
}

func (b *buffer) Close() error {
	return nil
}

func newCompiler(protocol string) (*Compiler, *bytes.Buffer) {
	params := utils.NewParams()
	params.Protocol = protocol
	c := New(params)
	out := new(bytes.Buffer)
	c.SetOutput(out)
	return c, out
}

func fixed(shape []int, values ...float64) *tensor.Tensor {
	data := make([]uint64, len(values))
	for i, v := range values {
		data[i] = hl.EncodeFloat(v, 15)
	}
	return tensor.New(shape, data)
}

// execute compiles and runs the code with each protocol and compares
// the revealed outputs with the plaintext evaluation. The outputs
// may differ by tolerance units from truncation.
func execute(t *testing.T, code string, inputs map[int]*tensor.Tensor,
	tolerance int64) map[int]*tensor.Tensor {

	t.Helper()

	var expected map[int]*tensor.Tensor
	for _, proto := range Protocols {
		c, out := newCompiler(proto)
		g, err := c.Compile(code, DefaultEntry)
		require.NoError(t, err, out.String())

		if expected == nil {
			expected, err = hl.Evaluate(g, inputs)
			require.NoError(t, err)
		}

		prog, err := c.Lower(g)
		require.NoError(t, err)
		shares, err := prog.IO.Share(inputs, rand.NewChaCha8([32]byte{7}))
		require.NoError(t, err)
		outputs, err := local.NewExecutor(prog.Local, prg.Counter{}).
			Run(shares)
		require.NoError(t, err)
		result, err := prog.IO.Reveal(outputs)
		require.NoError(t, err)

		require.Len(t, result, len(expected))
		for idx, e := range expected {
			r := result[idx]
			require.Equal(t, e.Shape, r.Shape, "%s: output %d", proto, idx)
			for i := range e.Data {
				diff := int64(e.Data[i] - r.Data[i])
				if diff < 0 {
					diff = -diff
				}
				require.LessOrEqual(t, diff, tolerance,
					"%s: output %d: %v != %v", proto, idx, r, e)
			}
		}
	}
	return expected
}

func TestCompileFixed(t *testing.T) {
	result := execute(t, `
func main(a secret fixed[2], b public fixed[2]) {
    c = a + p2a(b)
    return c, a2b(c), c * 0.5 - 1, a * b
}`, map[int]*tensor.Tensor{
		0: fixed([]int{2}, 1.5, -2.25),
		1: fixed([]int{2}, 2.25, 0.75),
	}, 1)

	require.Equal(t, fixed([]int{2}, 3.75, -1.5), result[0])
	require.Equal(t, fixed([]int{2}, 3.75, -1.5).Data, result[1].Data)
	require.Equal(t, fixed([]int{2}, 0.875, -1.75), result[2])
	require.Equal(t, fixed([]int{2}, 3.375, -1.6875), result[3])
}

func TestCompileInt(t *testing.T) {
	result := execute(t, `
func main(a secret int[3], b secret int[3], p public int[3]) {
    return a < b, a >= b, a == b, max(a, b), select(a <= p, a, b),
        a * b - p, -a * 3
}`, map[int]*tensor.Tensor{
		0: tensor.Ints([]int{3}, 1, 5, -7),
		1: tensor.Ints([]int{3}, 2, 5, -8),
		2: tensor.Ints([]int{3}, 0, 9, -7),
	}, 0)

	require.Equal(t, tensor.Ints([]int{3}, 1, 0, 0), result[0])
	require.Equal(t, tensor.Ints([]int{3}, 0, 1, 1), result[1])
	require.Equal(t, tensor.Ints([]int{3}, 0, 1, 0), result[2])
	require.Equal(t, tensor.Ints([]int{3}, 2, 5, -7), result[3])
	require.Equal(t, tensor.Ints([]int{3}, 2, 5, -7), result[4])
	require.Equal(t, tensor.Ints([]int{3}, 2, 16, 63), result[5])
	require.Equal(t, tensor.Ints([]int{3}, -3, -15, 21), result[6])
}

func TestCompileBits(t *testing.T) {
	result := execute(t, `
func main(x bits[2], y bits[2]) {
    return x & y, x | y, x ^ ^y, shr(x, [3]), bitreverse(y), b2a(x & y)
}`, map[int]*tensor.Tensor{
		0: tensor.New([]int{2}, []uint64{0b1100, 0xff00}),
		1: tensor.New([]int{2}, []uint64{0b1010, 0x0ff0}),
	}, 0)

	require.Equal(t, []uint64{0b1000, 0x0f00}, result[0].Data)
	require.Equal(t, []uint64{0b1110, 0xfff0}, result[1].Data)
	require.Equal(t, []uint64{^uint64(0b0110), ^uint64(0xf0f0)},
		result[2].Data)
	require.Equal(t, []uint64{0b1, 0x1fe0}, result[3].Data)
	require.Equal(t, []uint64{0b1000, 0x0f00}, result[5].Data)
}

func TestCompileStructural(t *testing.T) {
	result := execute(t, `
func main(a secret int[2, 3], m public int[3, 2]) {
    s, u = split(a)
    return transpose(a), reshape(a, [3, 2]), dot(a, m), concat(a, a, [0]),
        s, u, broadcast(slice(a, [0, 0], [1, 3]), [0, 1], [2, 3]),
        a + iota([1], [2, 3])
}

// split returns the even columns and the middle column.
func split(x) {
    return slice(x, [0, 0], [2, 3], [1, 2]), slice(x, [0, 1], [2, 2])
}`, map[int]*tensor.Tensor{
		0: tensor.Ints([]int{2, 3}, 1, 2, 3, 4, 5, 6),
		1: tensor.Ints([]int{3, 2}, 1, 0, 0, 1, 1, 1),
	}, 0)

	require.Equal(t, tensor.Ints([]int{3, 2}, 1, 4, 2, 5, 3, 6), result[0])
	require.Equal(t, tensor.Ints([]int{3, 2}, 1, 2, 3, 4, 5, 6), result[1])
	require.Equal(t, tensor.Ints([]int{2, 2}, 4, 5, 10, 11), result[2])
	require.Equal(t, []int{4, 3}, result[3].Shape)
	require.Equal(t, tensor.Ints([]int{2, 2}, 1, 3, 4, 6), result[4])
	require.Equal(t, tensor.Ints([]int{2, 1}, 2, 5), result[5])
	require.Equal(t, tensor.Ints([]int{2, 3}, 1, 2, 3, 1, 2, 3), result[6])
	require.Equal(t, tensor.Ints([]int{2, 3}, 1, 3, 5, 4, 6, 8), result[7])
}

func TestDumps(t *testing.T) {
	c, _ := newCompiler("aby3")
	astOut := new(buffer)
	hlOut := new(buffer)
	localOut := new(buffer)
	statsOut := new(buffer)
	c.params.ASTOut = astOut
	c.params.HLOut = hlOut
	c.params.LocalOut = localOut
	c.params.StatsOut = statsOut

	g, err := c.Compile(`
func main(a secret int[2], b public int[2]) {
    return a + p2a(b)
}`, DefaultEntry)
	require.NoError(t, err)
	_, err = c.Lower(g)
	require.NoError(t, err)

	require.Contains(t, astOut.String(), "func main(a secret int[2], b public int[2]) {")
	require.Contains(t, hlOut.String(), "p2a")
	require.Contains(t, localOut.String(), "// %2 p2a")
	require.Contains(t, statsOut.String(), "rounds: 0")

	c.params.Close()
	require.Nil(t, c.params.ASTOut)
	require.Nil(t, c.params.HLOut)
}

func TestProtocol(t *testing.T) {
	for _, name := range Protocols {
		proto, err := Protocol(name)
		require.NoError(t, err)
		require.Equal(t, name, proto.Name())
	}
	_, err := Protocol("gmw")
	require.Error(t, err)

	c, _ := newCompiler("gmw")
	g, err := c.Compile("func main() {\n return 1\n}", DefaultEntry)
	require.NoError(t, err)
	_, err = c.Lower(g)
	require.Error(t, err)
}

func TestUnsupported(t *testing.T) {
	c, out := newCompiler("generic")
	_, err := c.Compile(`func main(a secret int[2]) {
    return foo(a)
}`, DefaultEntry)
	require.Error(t, err)

	var diag *utils.Diagnostic
	require.True(t, errors.As(err, &diag))
	require.Equal(t, `unsupported operation "foo"`, diag.Msg)
	require.Equal(t, 2, diag.Loc.Line)
	require.True(t, strings.HasPrefix(out.String(),
		`{data}:2:11: unsupported operation "foo"`), out.String())
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		code string
		msg  string
	}{
		{
			"func main(a secret int[2]) {\n return a & a\n}",
			`unsupported operation "arith & arith"`,
		},
		{
			"func main(a bits[2]) {\n return -a\n}",
			`unsupported operation "-bits"`,
		},
		{
			"func main(a public int[2]) {\n return b2a(a)\n}",
			`unsupported operation "b2a of public"`,
		},
		{
			"func main(a secret int[2], b secret int[3]) {\n return a + b\n}",
			"shape mismatch [2] and [3]",
		},
		{
			"func main(a secret int[2], b secret fixed[2]) {\n return a + b\n}",
			"fixed point mismatch 0 and 15",
		},
		{
			"func main(a secret int[2]) {\n return c\n}",
			"undefined: c",
		},
		{
			"func main(a secret int[2]) {\n return a\n b = a\n}",
			"unreachable code",
		},
		{
			"func main(a secret int[2]) {\n b, c = a\n return b\n}",
			"assignment mismatch: 2 variables, 1 values",
		},
		{
			"func main(a) {\n return a\n}",
			"argument a: missing type",
		},
		{
			"func main(a secret int[2]) {\n b = a\n}",
			"main: missing return",
		},
		{
			"func main(a secret int[2]) {\n return f(a)\n}\n" +
				"func f(x) {\n return f(x)\n}",
			"f: call depth exceeds 64",
		},
		{
			"func main(a secret int[2, 3]) {\n return reshape(a, [4])\n}",
			"reshape: [2, 3] to [4]",
		},
		{
			"func main(a secret int[2, 3]) {\n return transpose(a, [0, 0])\n}",
			"transpose: invalid permutation [0, 0] for rank 2",
		},
		{
			"func main(a secret int[2]) {\n return slice(a, [1], [0])\n}",
			"slice: invalid range [1]:[0]:[1] for [2]",
		},
		{
			"func main(a secret int[2]) {\n return truncate(a, [1])\n}",
			"truncate: 1 bits for fixed point 0",
		},
		{
			"func main(a secret int[2]) {\n return a + [1]\n}",
			"list [1] used as value",
		},
		{
			"func main(a secret int[2]) {\n return a + iota([0], [-3])\n}",
			"iota: invalid shape [-3]",
		},
		{
			"func main(a secret int[2, 3]) {\n return reshape(a, [-2, -3])\n}",
			"reshape: invalid shape [-2, -3]",
		},
		{
			"func main(a secret int[2]) {\n return broadcast(a, [0], [-1])\n}",
			"broadcast: invalid shape [-1]",
		},
	}
	for _, test := range tests {
		c, _ := newCompiler("generic")
		_, err := c.Compile(test.code, DefaultEntry)
		require.Error(t, err, test.code)

		var diag *utils.Diagnostic
		require.True(t, errors.As(err, &diag), test.code)
		require.Equal(t, test.msg, diag.Msg, test.code)
	}

	c, _ := newCompiler("generic")
	_, err := c.Compile("func f() {\n return 1\n}", DefaultEntry)
	require.Error(t, err)
	require.Contains(t, err.Error(), "function main not defined")
}

func TestCompileFile(t *testing.T) {
	c, _ := newCompiler("generic")
	_, err := c.CompileFile("testdata/missing.rep3", DefaultEntry)
	require.Error(t, err)

	g, err := c.CompileFile("testdata/average.rep3", DefaultEntry)
	require.NoError(t, err)
	result, err := hl.Evaluate(g, map[int]*tensor.Tensor{
		0: fixed([]int{4}, 1, 2, 3, 4),
	})
	require.NoError(t, err)
	require.Equal(t, fixed(nil, 2.5).Data, result[0].Data)
}
