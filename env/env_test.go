//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/rep3/compiler/local"
	"github.com/markkurossi/rep3/prg"
)

func TestDefaults(t *testing.T) {
	config, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, "generic", config.Protocol)
	require.Equal(t, RandomCounter, config.Randomness)
	require.Equal(t, uint8(15), config.FixedPoint)

	params := config.Params()
	require.Equal(t, uint8(15), params.FixedPoint)
	require.False(t, params.Verbose)

	source, err := config.Source()
	require.NoError(t, err)
	require.IsType(t, prg.Counter{}, source)
}

func TestLoad(t *testing.T) {
	key := strings.Repeat("ab", prg.KeySize)
	path := filepath.Join(t.TempDir(), "rep3.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`protocol: aby3
randomness: chacha20
key: `+key+`
fixed_point: 12
verbose: true
`), 0644))

	config, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "aby3", config.Protocol)
	require.Equal(t, uint8(12), config.Params().FixedPoint)
	require.True(t, config.Params().Verbose)

	source, err := config.Source()
	require.NoError(t, err)

	expected, err := prg.NewChaCha20(bytes.Repeat([]byte{0xab}, prg.KeySize))
	require.NoError(t, err)

	pair := local.NewPair(0, 2)
	a := make([]uint64, 5)
	b := make([]uint64, 5)
	source.Fill(pair, 3, a)
	expected.Fill(pair, 3, b)
	require.Equal(t, b, a)
}

func TestRandomKey(t *testing.T) {
	config, err := Parse([]byte("randomness: chacha20\n"))
	require.NoError(t, err)
	config.Rand = bytes.NewReader(make([]byte, prg.KeySize))

	source, err := config.Source()
	require.NoError(t, err)

	expected, err := prg.NewChaCha20(make([]byte, prg.KeySize))
	require.NoError(t, err)

	a := make([]uint64, 3)
	b := make([]uint64, 3)
	source.Fill(local.NewPair(1, 2), 0, a)
	expected.Fill(local.NewPair(1, 2), 0, b)
	require.Equal(t, b, a)

	config.Rand = bytes.NewReader(nil)
	_, err = config.Source()
	require.Error(t, err)
}

func TestInvalid(t *testing.T) {
	for _, data := range []string{
		"protocol: gmw\n",
		"randomness: aes\n",
		"fixed_point: 40\n",
		"key: xyz\n",
		"key: abcd\n",
		"protocol: [\n",
	} {
		_, err := Parse([]byte(data))
		require.Error(t, err, data)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
